package domain

// Default booking policy values
const (
	DefaultAdvanceBookingDays      = 30
	DefaultMinBookingNoticeMinutes = 60
	DefaultMaxConcurrentBookings   = 1
)

// Business validation constants
const (
	MinProductQuantity = 1
	MaxProductQuantity = 50
	MaxNotesLength     = 500

	MinAdvanceBookingDays = 0
	MaxAdvanceBookingDays = 365
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// InactiveStatuses lists the statuses that free up a booking's slot.
// Used when counting overlapping appointments.
var InactiveStatuses = []BookingStatus{
	StatusCancelledByUser,
	StatusCancelledByCompany,
	StatusNoShow,
}

// PaymentMethods lists all accepted payment methods.
var PaymentMethods = []PaymentMethod{
	PaymentCash,
	PaymentCard,
	PaymentOnline,
}
