package domain

import (
	"time"

	"github.com/m04kA/SMC-CheckoutService/pkg/types"
)

// BookingStatus represents the status of a committed booking.
type BookingStatus string

const (
	StatusPending            BookingStatus = "pending"
	StatusConfirmed          BookingStatus = "confirmed"
	StatusCompleted          BookingStatus = "completed"
	StatusCancelledByUser    BookingStatus = "cancelled_by_user"
	StatusCancelledByCompany BookingStatus = "cancelled_by_company"
	StatusNoShow             BookingStatus = "no_show"
)

// PaymentMethod is the payment method chosen at checkout. Only the choice
// is recorded here, capture happens outside this service.
type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentCard   PaymentMethod = "card"
	PaymentOnline PaymentMethod = "online"
)

// IsValid returns true for a known payment method.
func (m PaymentMethod) IsValid() bool {
	return m == PaymentCash || m == PaymentCard || m == PaymentOnline
}

// Booking is the committed appointment aggregate: header, per-service lines
// with price and staff snapshots, per-product lines with price and quantity
// snapshots, and the initial payment record. It is created only by the commit
// pipeline and is immutable afterwards except for status transitions, which
// are owned by the admin surface.
type Booking struct {
	ID        int64
	Reference string // external booking reference (UUID)

	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	Notes         *string

	AppointmentDate time.Time
	StartTime       types.TimeString
	EndTime         types.TimeString
	DurationMinutes int

	Services []ServiceLine
	Products []ProductLine
	Payment  PaymentRecord

	TotalPrice float64
	Status     BookingStatus

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ServiceLine is one booked service with its staff assignment and the
// price/duration snapshot taken at selection time.
type ServiceLine struct {
	ID              int64
	BookingID       int64
	ServiceID       int64
	StaffID         int64
	ServiceName     string
	StaffName       string
	Price           float64
	DurationMinutes int
}

// ProductLine is one retail product with the price snapshot taken at
// selection time.
type ProductLine struct {
	ID          int64
	BookingID   int64
	ProductID   int64
	ProductName string
	UnitPrice   float64
	Quantity    int
}

// Subtotal returns the line total.
func (p ProductLine) Subtotal() float64 {
	return p.UnitPrice * float64(p.Quantity)
}

// PaymentRecord is the initial payment row written alongside the booking.
type PaymentRecord struct {
	ID        int64
	BookingID int64
	Method    PaymentMethod
	Amount    float64
	Status    string
}

// IsActive returns true if the booking still occupies its slot.
func (b *Booking) IsActive() bool {
	return b.Status != StatusCancelledByUser &&
		b.Status != StatusCancelledByCompany &&
		b.Status != StatusNoShow
}

// Window returns the booking's appointment window.
func (b *Booking) Window() AppointmentWindow {
	return AppointmentWindow{
		Date:      b.AppointmentDate,
		StartTime: b.StartTime,
		EndTime:   b.EndTime,
	}
}

// AppointmentWindow is a concrete date plus start/end time range.
type AppointmentWindow struct {
	Date      time.Time
	StartTime types.TimeString
	EndTime   types.TimeString
}

// Overlaps returns true if two windows on the same date truly intersect.
// Touching boundaries (one ends exactly where the other starts) do not count.
func (w AppointmentWindow) Overlaps(other AppointmentWindow) bool {
	if !isSameDay(w.Date, other.Date) {
		return false
	}
	return w.StartTime.IsBefore(other.EndTime) && other.StartTime.IsBefore(w.EndTime)
}

func isSameDay(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
