package domain

import (
	"time"

	"github.com/m04kA/SMC-CheckoutService/pkg/types"
)

// DaySchedule is the salon's working hours for one weekday.
type DaySchedule struct {
	IsOpen    bool
	OpenTime  *types.TimeString
	CloseTime *types.TimeString
}

// Contains returns true if the whole [start, end) range lies inside
// working hours. A closed day contains nothing.
func (d DaySchedule) Contains(start, end types.TimeString) bool {
	if !d.IsOpen || d.OpenTime == nil || d.CloseTime == nil {
		return false
	}
	if start.IsBefore(*d.OpenTime) {
		return false
	}
	if end.IsAfter(*d.CloseTime) {
		return false
	}
	return true
}

// BusinessHours is the weekly working-hours schedule.
type BusinessHours struct {
	Monday    DaySchedule
	Tuesday   DaySchedule
	Wednesday DaySchedule
	Thursday  DaySchedule
	Friday    DaySchedule
	Saturday  DaySchedule
	Sunday    DaySchedule
}

// ForDay returns the schedule for the weekday of the given date.
func (h BusinessHours) ForDay(date time.Time) DaySchedule {
	switch date.Weekday() {
	case time.Monday:
		return h.Monday
	case time.Tuesday:
		return h.Tuesday
	case time.Wednesday:
		return h.Wednesday
	case time.Thursday:
		return h.Thursday
	case time.Friday:
		return h.Friday
	case time.Saturday:
		return h.Saturday
	case time.Sunday:
		return h.Sunday
	default:
		return DaySchedule{IsOpen: false}
	}
}

// BookingPolicy bounds when an appointment may be booked.
type BookingPolicy struct {
	AdvanceBookingDays      int // 0 = unlimited horizon
	MinBookingNoticeMinutes int
	MaxConcurrentBookings   int // salon-wide chair capacity per moment
}

// HasAdvanceBookingLimit returns true if the booking horizon is bounded.
func (p BookingPolicy) HasAdvanceBookingLimit() bool {
	return p.AdvanceBookingDays > 0
}

// DefaultPolicy returns the policy used when none is stored.
func DefaultPolicy() BookingPolicy {
	return BookingPolicy{
		AdvanceBookingDays:      DefaultAdvanceBookingDays,
		MinBookingNoticeMinutes: DefaultMinBookingNoticeMinutes,
		MaxConcurrentBookings:   DefaultMaxConcurrentBookings,
	}
}
