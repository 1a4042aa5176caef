package commit_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-CheckoutService/internal/domain"
	"github.com/m04kA/SMC-CheckoutService/pkg/types"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
}

// AvailabilityChecker интерфейс проверки доступности. Внутри транзакции
// commit-пайплайна проверки авторитетны: репозиторий под ними блокирует
// строки записей (FOR UPDATE).
type AvailabilityChecker interface {
	CheckStaffAvailability(ctx context.Context, staffID int64, date time.Time, start, end types.TimeString) (bool, error)
	CheckSlotConflict(ctx context.Context, date time.Time, start, end types.TimeString) (bool, error)
	ValidateWindow(ctx context.Context, window domain.AppointmentWindow, now time.Time) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
