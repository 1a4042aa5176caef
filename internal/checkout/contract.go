package checkout

import (
	"context"
	"time"

	"github.com/m04kA/SMC-CheckoutService/internal/domain"
	"github.com/m04kA/SMC-CheckoutService/internal/integrations/catalogservice"
	"github.com/m04kA/SMC-CheckoutService/pkg/types"
)

// CatalogReader is the read-only catalog surface the orchestrator needs to
// snapshot prices, durations and names at selection time.
type CatalogReader interface {
	GetService(ctx context.Context, serviceID int64) (*catalogservice.Service, error)
	GetProduct(ctx context.Context, productID int64) (*catalogservice.Product, error)
}

// AvailabilityChecker answers staff and slot availability questions.
// Boolean answers and backend failures are distinct: a failed check is an
// error, never a silent false.
type AvailabilityChecker interface {
	// EligibleStaff returns staff qualified for the service, optionally
	// filtered to those free on the given date. An empty list is a valid
	// answer.
	EligibleStaff(ctx context.Context, serviceID int64, date *time.Time) ([]catalogservice.Staff, error)

	// CheckStaffAvailability reports whether the staff member is free in
	// the given window.
	CheckStaffAvailability(ctx context.Context, staffID int64, date time.Time, start, end types.TimeString) (bool, error)

	// CheckSlotConflict reports whether the salon-wide capacity is exhausted
	// in the given window (true = conflict).
	CheckSlotConflict(ctx context.Context, date time.Time, start, end types.TimeString) (bool, error)

	// ValidateWindow checks the window against business hours, the
	// advance-booking horizon and the minimum booking notice.
	ValidateWindow(ctx context.Context, window domain.AppointmentWindow, now time.Time) error
}

// Committer performs the single durable write of the flow. Implementations
// wrap conflicts in ErrConflictAtCommit and other write failures in
// ErrCommitFailed.
type Committer interface {
	Commit(ctx context.Context, selection Selection) (reference string, err error)
}

// TimeProvider abstracts the current time for testing.
type TimeProvider interface {
	Now() time.Time
}

// RealTimeProvider is the production TimeProvider.
type RealTimeProvider struct{}

// Now returns the current time.
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}

// Logger is the leveled printf logger consumed by the orchestrator.
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
