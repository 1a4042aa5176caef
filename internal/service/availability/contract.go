package availability

import (
	"context"
	"time"

	"github.com/m04kA/SMC-CheckoutService/internal/domain"
	"github.com/m04kA/SMC-CheckoutService/internal/integrations/catalogservice"
)

// CatalogClient интерфейс клиента CatalogService
type CatalogClient interface {
	GetEligibleStaff(ctx context.Context, serviceID int64) ([]catalogservice.Staff, error)
}

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	GetStaffWindows(ctx context.Context, staffID int64, date time.Time) ([]domain.AppointmentWindow, error)
	GetDayWindows(ctx context.Context, date time.Time) ([]domain.AppointmentWindow, error)
}

// ScheduleRepository интерфейс репозитория расписания салона
type ScheduleRepository interface {
	GetBusinessHours(ctx context.Context) (*domain.BusinessHours, error)
	GetPolicy(ctx context.Context) (*domain.BookingPolicy, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
