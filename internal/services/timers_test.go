package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/kaskroutek/internal/models"
	"github.com/example/kaskroutek/internal/store"
)

var tunis = func() *time.Location {
	loc, err := time.LoadLocation("Africa/Tunis")
	if err != nil {
		return time.FixedZone("CET", 3600)
	}
	return loc
}()

// wednesday returns 2024-06-05 at hh:mm in Tunis.
func wednesday(hh, mm int) time.Time {
	return time.Date(2024, time.June, 5, hh, mm, 0, 0, tunis)
}

func TestSelectableSlotsCutoffWindow(t *testing.T) {
	slot := models.TimerSlot{DayOfWeek: int(time.Wednesday), TimeOfDay: "14:00", Active: true}

	cases := []struct {
		name    string
		now     time.Time
		visible bool
	}{
		{"inside cutoff", wednesday(13, 40), false},
		{"exactly at cutoff", wednesday(13, 30), true},
		{"at slot time", wednesday(14, 0), true},
		{"passed", wednesday(14, 1), false},
		{"well before", wednesday(9, 0), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := SelectableSlots([]models.TimerSlot{slot}, tc.now, 30*time.Minute)
			if (len(got) == 1) != tc.visible {
				t.Fatalf("visible = %v, want %v", len(got) == 1, tc.visible)
			}
		})
	}
}

func TestSelectableSlotsFiltersAndSorts(t *testing.T) {
	now := wednesday(8, 0)
	slots := []models.TimerSlot{
		{DayOfWeek: int(time.Wednesday), TimeOfDay: "12:30", Active: true},
		{DayOfWeek: int(time.Wednesday), TimeOfDay: "09:15", Active: true},
		{DayOfWeek: int(time.Wednesday), TimeOfDay: "10:00", Active: false},
		{DayOfWeek: int(time.Thursday), TimeOfDay: "11:00", Active: true},
		{DayOfWeek: int(time.Wednesday), TimeOfDay: "bogus", Active: true},
	}

	got := SelectableSlots(slots, now, 30*time.Minute)
	if len(got) != 2 {
		t.Fatalf("expected 2 slots, got %+v", got)
	}
	if got[0].Time != "09:15" || got[1].Time != "12:30" {
		t.Fatalf("unexpected order %+v", got)
	}
	want := time.Date(2024, time.June, 5, 9, 15, 0, 0, tunis)
	if !got[0].Timestamp.Equal(want) {
		t.Fatalf("timestamp %s, want %s", got[0].Timestamp, want)
	}
}

func TestSelectableSlotsWithoutCutoff(t *testing.T) {
	slot := models.TimerSlot{DayOfWeek: int(time.Wednesday), TimeOfDay: "14:00", Active: true}
	if got := SelectableSlots([]models.TimerSlot{slot}, wednesday(13, 55), 0); len(got) != 1 {
		t.Fatal("zero cutoff must not hide upcoming slots")
	}
}

func TestDesiredActive(t *testing.T) {
	slot := models.TimerSlot{DayOfWeek: int(time.Wednesday), TimeOfDay: "14:00", Active: true}
	cases := map[time.Time]bool{
		wednesday(12, 59): true,
		wednesday(13, 0):  true,
		wednesday(13, 1):  false,
		wednesday(13, 59): false,
		wednesday(14, 0):  true,
		wednesday(15, 0):  true,
	}
	for now, want := range cases {
		if got := DesiredActive(slot, now, 60*time.Minute); got != want {
			t.Errorf("DesiredActive at %s = %v, want %v", now.Format("15:04"), got, want)
		}
	}
}

func newResolver(t *testing.T, now time.Time) (*TimerResolver, *store.MemoryStore) {
	t.Helper()
	s := store.NewMemoryStore()
	r := NewTimerResolver(s, tunis, DefaultPickupCutoff, DefaultShippingCutoff)
	r.now = func() time.Time { return now }
	return r, s
}

func TestRecomputeWritesOnlyChangedSlotsForToday(t *testing.T) {
	ctx := context.Background()
	r, s := newResolver(t, wednesday(13, 40))

	soon := &models.TimerSlot{DayOfWeek: int(time.Wednesday), TimeOfDay: "14:00", Active: true}
	later := &models.TimerSlot{DayOfWeek: int(time.Wednesday), TimeOfDay: "18:00", Active: true}
	stale := &models.TimerSlot{DayOfWeek: int(time.Wednesday), TimeOfDay: "10:00", Active: false}
	otherDay := &models.TimerSlot{DayOfWeek: int(time.Thursday), TimeOfDay: "14:00", Active: true}
	for _, slot := range []*models.TimerSlot{soon, later, stale, otherDay} {
		if err := s.CreateTimerSlot(ctx, models.TimerPickup, slot); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	before := map[string]time.Time{}
	for _, slot := range []*models.TimerSlot{soon, later, stale, otherDay} {
		before[slot.ID.String()] = slot.UpdatedAt
	}

	changed, err := r.Recompute(ctx, models.TimerPickup)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if changed != 2 {
		t.Fatalf("expected 2 writes, got %d", changed)
	}

	check := func(slot *models.TimerSlot, active bool) {
		t.Helper()
		got, err := s.GetTimerSlot(ctx, models.TimerPickup, slot.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.Active != active {
			t.Fatalf("slot %s active = %v, want %v", slot.TimeOfDay, got.Active, active)
		}
	}
	check(soon, false)
	check(later, true)
	check(stale, true)
	check(otherDay, true)

	got, _ := s.GetTimerSlot(ctx, models.TimerPickup, later.ID)
	if !got.UpdatedAt.Equal(before[later.ID.String()]) {
		t.Fatal("unchanged slot was written")
	}
	got, _ = s.GetTimerSlot(ctx, models.TimerPickup, otherDay.ID)
	if !got.UpdatedAt.Equal(before[otherDay.ID.String()]) {
		t.Fatal("slot of another day was written")
	}

	again, err := r.Recompute(ctx, models.TimerPickup)
	if err != nil || again != 0 {
		t.Fatalf("recompute must be idempotent, got %d writes (%v)", again, err)
	}
}

func TestRecomputeUsesKindCutoff(t *testing.T) {
	ctx := context.Background()
	r, s := newResolver(t, wednesday(13, 15))

	pickup := &models.TimerSlot{DayOfWeek: int(time.Wednesday), TimeOfDay: "14:00", Active: true}
	shipping := &models.TimerSlot{DayOfWeek: int(time.Wednesday), TimeOfDay: "14:00", Active: true}
	_ = s.CreateTimerSlot(ctx, models.TimerPickup, pickup)
	_ = s.CreateTimerSlot(ctx, models.TimerShipping, shipping)

	changed, err := r.RecomputeAll(ctx)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if changed[models.TimerPickup] != 0 || changed[models.TimerShipping] != 1 {
		t.Fatalf("unexpected writes %v", changed)
	}

	available, err := r.Available(ctx, models.TimerShipping)
	if err != nil || len(available) != 0 {
		t.Fatalf("shipping slot inside its 60 minute window must be hidden: %v %v", available, err)
	}
	available, err = r.Available(ctx, models.TimerPickup)
	if err != nil || len(available) != 1 {
		t.Fatalf("pickup slot outside its 30 minute window must be visible: %v %v", available, err)
	}
}

func TestSlotCRUDValidation(t *testing.T) {
	ctx := context.Background()
	r, _ := newResolver(t, wednesday(8, 0))

	day := 7
	if _, err := r.CreateSlot(ctx, models.TimerPickup, SlotInput{DayOfWeek: &day, TimeOfDay: "10:00"}); err == nil {
		t.Fatal("expected day validation error")
	}
	day = 0
	if _, err := r.CreateSlot(ctx, models.TimerPickup, SlotInput{DayOfWeek: &day, TimeOfDay: "25:00"}); err == nil {
		t.Fatal("expected time validation error")
	}
	if _, err := r.CreateSlot(ctx, "delivery", SlotInput{DayOfWeek: &day, TimeOfDay: "10:00"}); err == nil {
		t.Fatal("expected kind validation error")
	}

	slot, err := r.CreateSlot(ctx, models.TimerPickup, SlotInput{DayOfWeek: &day, TimeOfDay: "10:00"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !slot.Active || slot.DayOfWeek != 0 {
		t.Fatalf("unexpected slot %+v", slot)
	}

	inactive := false
	day = 3
	updated, err := r.UpdateSlot(ctx, models.TimerPickup, slot.ID, SlotInput{DayOfWeek: &day, TimeOfDay: "11:30", Active: &inactive})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Active || updated.TimeOfDay != "11:30" || updated.DayOfWeek != 3 {
		t.Fatalf("unexpected update %+v", updated)
	}

	if err := r.DeleteSlot(ctx, models.TimerPickup, slot.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := r.DeleteSlot(ctx, models.TimerPickup, slot.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestParseTimeOfDay(t *testing.T) {
	if h, m, err := ParseTimeOfDay("07:45:00"); err != nil || h != 7 || m != 45 {
		t.Fatalf("got %d:%d %v", h, m, err)
	}
	if _, _, err := ParseTimeOfDay("7h45"); err == nil {
		t.Fatal("expected error")
	}
}
