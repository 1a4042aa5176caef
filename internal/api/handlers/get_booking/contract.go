package get_booking

import (
	"context"

	"github.com/m04kA/SMC-CheckoutService/internal/domain"
)

type BookingsService interface {
	GetByReference(ctx context.Context, reference string) (*domain.Booking, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
