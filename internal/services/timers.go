package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/example/kaskroutek/internal/models"
	"github.com/example/kaskroutek/internal/store"
	"github.com/example/kaskroutek/internal/validation"
)

// Default lead time before a slot during which it cannot be chosen.
const (
	DefaultPickupCutoff   = 30 * time.Minute
	DefaultShippingCutoff = 60 * time.Minute
)

// SlotOption is a selectable slot for today.
type SlotOption struct {
	ID        uuid.UUID `json:"id"`
	Time      string    `json:"time"`
	Timestamp time.Time `json:"timestamp"`
}

// ParseTimeOfDay accepts "15:04" and "15:04:05".
func ParseTimeOfDay(value string) (hour, minute int, err error) {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, perr := time.Parse(layout, value); perr == nil {
			return t.Hour(), t.Minute(), nil
		}
	}
	return 0, 0, fmt.Errorf("invalid time of day %q", value)
}

// slotTime places slot on the calendar day of now, in now's location.
func slotTime(slot models.TimerSlot, now time.Time) (time.Time, error) {
	hour, minute, err := ParseTimeOfDay(slot.TimeOfDay)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := now.Date()
	return time.Date(y, m, d, hour, minute, 0, 0, now.Location()), nil
}

// SelectableSlots filters slots down to those a customer may pick right now:
// today's active slots that have not passed and are not inside the cutoff window.
// A slot exactly at now stays selectable. The result is sorted by time.
func SelectableSlots(slots []models.TimerSlot, now time.Time, cutoff time.Duration) []SlotOption {
	options := make([]SlotOption, 0, len(slots))
	for _, slot := range slots {
		if slot.DayOfWeek != int(now.Weekday()) || !slot.Active {
			continue
		}
		at, err := slotTime(slot, now)
		if err != nil {
			continue
		}
		diff := at.Sub(now)
		if diff < 0 || insideCutoff(diff, cutoff) {
			continue
		}
		options = append(options, SlotOption{
			ID:        slot.ID,
			Time:      at.Format("15:04"),
			Timestamp: at,
		})
	}
	sort.SliceStable(options, func(i, j int) bool {
		return options[i].Timestamp.Before(options[j].Timestamp)
	})
	return options
}

// DesiredActive reports whether slot should be active at now: false only strictly inside the cutoff window.
func DesiredActive(slot models.TimerSlot, now time.Time, cutoff time.Duration) bool {
	at, err := slotTime(slot, now)
	if err != nil {
		return slot.Active
	}
	return !insideCutoff(at.Sub(now), cutoff)
}

// insideCutoff reports 0 < diff < cutoff. A zero cutoff disables the window.
func insideCutoff(diff, cutoff time.Duration) bool {
	return cutoff > 0 && diff > 0 && diff < cutoff
}

// TimerResolver serves slot availability and keeps the stored active flags current.
type TimerResolver struct {
	store    store.Store
	validate *validatorv10.Validate
	loc      *time.Location
	now      func() time.Time
	cutoffs  map[models.TimerKind]time.Duration
}

// NewTimerResolver constructs TimerResolver.
func NewTimerResolver(s store.Store, loc *time.Location, pickupCutoff, shippingCutoff time.Duration) *TimerResolver {
	if loc == nil {
		loc = time.UTC
	}
	return &TimerResolver{
		store:    s,
		validate: validation.New(),
		loc:      loc,
		now:      time.Now,
		cutoffs: map[models.TimerKind]time.Duration{
			models.TimerPickup:   pickupCutoff,
			models.TimerShipping: shippingCutoff,
		},
	}
}

// Cutoff returns the lead time configured for kind.
func (r *TimerResolver) Cutoff(kind models.TimerKind) time.Duration {
	return r.cutoffs[kind]
}

func (r *TimerResolver) localNow() time.Time {
	return r.now().In(r.loc)
}

// Available returns the slots of kind selectable right now.
func (r *TimerResolver) Available(ctx context.Context, kind models.TimerKind) ([]SlotOption, error) {
	if !kind.Valid() {
		return nil, invalid("kind", "must be pickup or shipping")
	}
	now := r.localNow()
	slots, err := r.store.ListTimerSlotsForDay(ctx, kind, now.Weekday())
	if err != nil {
		return nil, storeErr("list timer slots", err)
	}
	return SelectableSlots(slots, now, r.cutoffs[kind]), nil
}

// Recompute flips the active flag of today's slots of kind whose desired state changed.
// It returns how many slots were written.
func (r *TimerResolver) Recompute(ctx context.Context, kind models.TimerKind) (int, error) {
	if !kind.Valid() {
		return 0, invalid("kind", "must be pickup or shipping")
	}
	now := r.localNow()
	slots, err := r.store.ListTimerSlotsForDay(ctx, kind, now.Weekday())
	if err != nil {
		return 0, storeErr("list timer slots", err)
	}

	changed := 0
	for _, slot := range slots {
		desired := DesiredActive(slot, now, r.cutoffs[kind])
		if desired == slot.Active {
			continue
		}
		if err := r.store.SetTimerActive(ctx, kind, slot.ID, desired); err != nil {
			return changed, storeErr("update timer slot", err)
		}
		changed++
	}
	return changed, nil
}

// RecomputeAll runs Recompute for every timer kind.
func (r *TimerResolver) RecomputeAll(ctx context.Context) (map[models.TimerKind]int, error) {
	result := make(map[models.TimerKind]int, len(models.TimerKinds))
	for _, kind := range models.TimerKinds {
		changed, err := r.Recompute(ctx, kind)
		if err != nil {
			return result, err
		}
		result[kind] = changed
	}
	return result, nil
}

// Run recomputes every interval until ctx is cancelled.
func (r *TimerResolver) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if changed, err := r.RecomputeAll(ctx); err != nil {
				log.Printf("[Timers] Recompute failed: %v", err)
			} else if changed[models.TimerPickup]+changed[models.TimerShipping] > 0 {
				log.Printf("[Timers] Recomputed slots: %v", changed)
			}
		}
	}
}

// SlotInput is the admin payload for a timer slot.
type SlotInput struct {
	DayOfWeek *int   `json:"day_of_week" validate:"required,min=0,max=6"`
	TimeOfDay string `json:"time" validate:"required,hhmm"`
	Active    *bool  `json:"active"`
}

func (r *TimerResolver) checkSlot(kind models.TimerKind, in SlotInput) error {
	if !kind.Valid() {
		return invalid("kind", "must be pickup or shipping")
	}
	if err := r.validate.Struct(in); err != nil {
		return &ValidationError{Fields: validation.Fields(err)}
	}
	return nil
}

// ListSlots returns every slot of kind ordered by day and time.
func (r *TimerResolver) ListSlots(ctx context.Context, kind models.TimerKind) ([]models.TimerSlot, error) {
	if !kind.Valid() {
		return nil, invalid("kind", "must be pickup or shipping")
	}
	slots, err := r.store.ListTimerSlots(ctx, kind)
	if err != nil {
		return nil, storeErr("list timer slots", err)
	}
	return slots, nil
}

// CreateSlot adds a slot. Slots are active unless the input says otherwise.
func (r *TimerResolver) CreateSlot(ctx context.Context, kind models.TimerKind, in SlotInput) (*models.TimerSlot, error) {
	if err := r.checkSlot(kind, in); err != nil {
		return nil, err
	}
	slot := &models.TimerSlot{
		DayOfWeek: *in.DayOfWeek,
		TimeOfDay: in.TimeOfDay,
		Active:    in.Active == nil || *in.Active,
	}
	if err := r.store.CreateTimerSlot(ctx, kind, slot); err != nil {
		return nil, storeErr("create timer slot", err)
	}
	return slot, nil
}

// UpdateSlot replaces day, time and, when given, the active flag of a slot.
func (r *TimerResolver) UpdateSlot(ctx context.Context, kind models.TimerKind, id uuid.UUID, in SlotInput) (*models.TimerSlot, error) {
	if err := r.checkSlot(kind, in); err != nil {
		return nil, err
	}
	slot, err := r.store.GetTimerSlot(ctx, kind, id)
	if err != nil {
		return nil, storeErr("load timer slot", err)
	}
	slot.DayOfWeek = *in.DayOfWeek
	slot.TimeOfDay = in.TimeOfDay
	if in.Active != nil {
		slot.Active = *in.Active
	}
	if err := r.store.UpdateTimerSlot(ctx, kind, slot); err != nil {
		return nil, storeErr("update timer slot", err)
	}
	return slot, nil
}

// DeleteSlot removes a slot.
func (r *TimerResolver) DeleteSlot(ctx context.Context, kind models.TimerKind, id uuid.UUID) error {
	if !kind.Valid() {
		return invalid("kind", "must be pickup or shipping")
	}
	if err := r.store.DeleteTimerSlot(ctx, kind, id); err != nil {
		return storeErr("delete timer slot", err)
	}
	return nil
}
