package commit_booking

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-CheckoutService/internal/checkout"
	"github.com/m04kA/SMC-CheckoutService/internal/domain"
)

// UseCase use case фиксации бронирования: единственная точка durable-записи.
// Повторно проверяет доступность внутри сериализуемой транзакции (ловит
// устаревшие consultative-проверки и параллельные бронирования), затем
// пишет заголовок записи, строки услуг/товаров и платёжную запись одной
// логической операцией.
type UseCase struct {
	appointmentRepo AppointmentRepository
	availability    AvailabilityChecker
	txManager       TransactionManager
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	availability AvailabilityChecker,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointmentRepo: appointmentRepo,
		availability:    availability,
		txManager:       txManager,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// WithTimeProvider заменяет источник времени (для тестов)
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Commit реализует checkout.Committer поверх Execute
func (uc *UseCase) Commit(ctx context.Context, selection checkout.Selection) (string, error) {
	resp, err := uc.Execute(ctx, &Request{Selection: selection})
	if err != nil {
		return "", err
	}
	return resp.Reference, nil
}

// Execute выполняет use case фиксации бронирования.
// Никаких автоматических повторов: слепой retry записи рискует дублем.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	sel := req.Selection

	uc.logger.Info("CommitBooking: services=%d, products=%d, date=%s, time=%s, total=%.2f",
		len(sel.Services), len(sel.Products), sel.Date.Format(domain.DateFormat), sel.StartTime, sel.Total())

	// 1. Повторная валидация selection: все шаги до Payment включительно
	if err := validateSelection(sel); err != nil {
		uc.logger.Warn("CommitBooking: validation failed: %v", err)
		return nil, err
	}

	window, err := sel.Window()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	now := uc.timeProvider.Now()

	var result *domain.Booking

	// 2. Авторитетная проверка и multi-row запись в одной сериализуемой
	// транзакции. Репозиторий внутри транзакции блокирует строки записей
	// (FOR UPDATE), параллельный commit на тот же слот сериализуется БД.
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 2.1. Окно всё ещё валидно (часы/горизонт/нотис могли уплыть)
		if err := uc.availability.ValidateWindow(txCtx, window, now); err != nil {
			uc.logger.Warn("CommitBooking: window revalidation failed: %v", err)
			return fmt.Errorf("%w: %v", checkout.ErrConflictAtCommit, err)
		}

		// 2.2. Каждый назначенный мастер всё ещё свободен
		for _, svc := range sel.Services {
			free, err := uc.availability.CheckStaffAvailability(txCtx, *svc.StaffID, window.Date, window.StartTime, window.EndTime)
			if err != nil {
				uc.logger.Error("CommitBooking: staff recheck failed for id=%d: %v", *svc.StaffID, err)
				return fmt.Errorf("%w: staff recheck: %v", checkout.ErrCommitFailed, err)
			}
			if !free {
				uc.logger.Warn("CommitBooking: staff id=%d (%s) no longer available", *svc.StaffID, svc.StaffName)
				return fmt.Errorf("%w: staff id=%d (%s) is no longer available",
					checkout.ErrConflictAtCommit, *svc.StaffID, svc.StaffName)
			}
		}

		// 2.3. Общесалонная вместимость
		conflict, err := uc.availability.CheckSlotConflict(txCtx, window.Date, window.StartTime, window.EndTime)
		if err != nil {
			uc.logger.Error("CommitBooking: slot recheck failed: %v", err)
			return fmt.Errorf("%w: slot recheck: %v", checkout.ErrCommitFailed, err)
		}
		if conflict {
			uc.logger.Warn("CommitBooking: slot %s %s-%s no longer available",
				window.Date.Format(domain.DateFormat), window.StartTime, window.EndTime)
			return fmt.Errorf("%w: slot %s %s-%s is no longer available",
				checkout.ErrConflictAtCommit, window.Date.Format(domain.DateFormat), window.StartTime, window.EndTime)
		}

		// 2.4. Собираем агрегат и пишем все строки
		booking := buildBooking(sel, window)

		created, err := uc.appointmentRepo.Create(txCtx, booking)
		if err != nil {
			uc.logger.Error("CommitBooking: failed to create booking: %v", err)
			return fmt.Errorf("%w: %v", checkout.ErrCommitFailed, err)
		}

		result = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("CommitBooking: booking id=%d committed, reference=%s", result.ID, result.Reference)

	return &Response{
		BookingID:       result.ID,
		Reference:       result.Reference,
		Status:          string(result.Status),
		AppointmentDate: result.AppointmentDate,
		StartTime:       result.StartTime,
		EndTime:         result.EndTime,
		DurationMinutes: result.DurationMinutes,
		TotalPrice:      result.TotalPrice,
		CreatedAt:       result.CreatedAt,
	}, nil
}

// buildBooking собирает domain.Booking из selection со снапшотами цен,
// мастеров и количеств, зафиксированными на момент выбора
func buildBooking(sel checkout.Selection, window domain.AppointmentWindow) *domain.Booking {
	booking := &domain.Booking{
		Reference:       uuid.NewString(),
		CustomerName:    sel.Customer.Name,
		CustomerEmail:   sel.Customer.Email,
		CustomerPhone:   sel.Customer.Phone,
		Notes:           sel.Customer.Notes,
		AppointmentDate: window.Date,
		StartTime:       window.StartTime,
		EndTime:         window.EndTime,
		DurationMinutes: sel.Duration(),
		TotalPrice:      sel.Total(),
		Status:          domain.StatusConfirmed,
	}

	for _, svc := range sel.Services {
		booking.Services = append(booking.Services, domain.ServiceLine{
			ServiceID:       svc.ServiceID,
			StaffID:         *svc.StaffID,
			ServiceName:     svc.ServiceName,
			StaffName:       svc.StaffName,
			Price:           svc.PriceAtSelection,
			DurationMinutes: svc.DurationMinutes,
		})
	}

	for _, p := range sel.Products {
		booking.Products = append(booking.Products, domain.ProductLine{
			ProductID:   p.ProductID,
			ProductName: p.ProductName,
			UnitPrice:   p.PriceAtSelection,
			Quantity:    p.Quantity,
		})
	}

	booking.Payment = domain.PaymentRecord{
		Method: sel.Payment,
		Amount: booking.TotalPrice,
		Status: "pending",
	}

	return booking
}
