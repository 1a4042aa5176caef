package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-CheckoutService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-CheckoutService/internal/infra/storage/appointment"
)

// Service сервис чтения зафиксированных бронирований
type Service struct {
	appointments AppointmentRepository
	logger       Logger
}

// NewService создает новый сервис бронирований
func NewService(appointments AppointmentRepository, logger Logger) *Service {
	return &Service{
		appointments: appointments,
		logger:       logger,
	}
}

// GetByReference возвращает бронирование по публичной ссылке подтверждения
func (s *Service) GetByReference(ctx context.Context, reference string) (*domain.Booking, error) {
	booking, err := s.appointments.GetByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrBookingNotFound) {
			return nil, fmt.Errorf("%w: reference=%s", ErrBookingNotFound, reference)
		}
		s.logger.Error("Bookings: GetByReference - storage error: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return booking, nil
}
