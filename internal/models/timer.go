package models

// TimerKind selects one of the two slot collections.
type TimerKind string

const (
	TimerPickup   TimerKind = "pickup"
	TimerShipping TimerKind = "shipping"
)

// TimerKinds lists every slot collection.
var TimerKinds = []TimerKind{TimerPickup, TimerShipping}

// Valid reports whether k is a known collection.
func (k TimerKind) Valid() bool {
	return k == TimerPickup || k == TimerShipping
}

// Table returns the table backing the collection.
func (k TimerKind) Table() string {
	if k == TimerShipping {
		return "shipping_timers_delivery"
	}
	return "shipping_timers"
}

// TimerSlot is a weekly pickup or shipping slot. DayOfWeek follows time.Weekday (0 = Sunday).
type TimerSlot struct {
	BaseModel
	DayOfWeek int    `gorm:"not null;index" json:"day_of_week"`
	TimeOfDay string `gorm:"size:5;not null" json:"time"`
	Active    bool   `gorm:"not null" json:"active"`
}
