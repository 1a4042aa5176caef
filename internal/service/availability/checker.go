package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-CheckoutService/internal/domain"
	"github.com/m04kA/SMC-CheckoutService/internal/infra/storage/schedule"
	"github.com/m04kA/SMC-CheckoutService/internal/integrations/catalogservice"
	"github.com/m04kA/SMC-CheckoutService/pkg/types"
)

// Checker отвечает на вопросы доступности: свободен ли мастер в окне,
// есть ли свободное кресло, укладывается ли окно в рабочие часы и горизонт.
//
// Проверки через Checker - консультативные (быстрый отказ в UI). Повторная
// проверка внутри сериализуемой транзакции commit-пайплайна авторитетна:
// вызванный оттуда Checker читает строки с блокировкой FOR UPDATE.
type Checker struct {
	catalog      CatalogClient
	appointments AppointmentRepository
	schedule     ScheduleRepository
	logger       Logger
}

// NewChecker создает новый экземпляр проверки доступности
func NewChecker(
	catalog CatalogClient,
	appointments AppointmentRepository,
	scheduleRepo ScheduleRepository,
	logger Logger,
) *Checker {
	return &Checker{
		catalog:      catalog,
		appointments: appointments,
		schedule:     scheduleRepo,
		logger:       logger,
	}
}

// EligibleStaff возвращает мастеров, квалифицированных для услуги.
// Если указана дата, список дополнительно фильтруется по занятости в этот
// день (грубый фильтр; точная проверка по окну - CheckStaffAvailability).
// Пустой список - валидный ответ "никто не подходит", не ошибка.
func (c *Checker) EligibleStaff(ctx context.Context, serviceID int64, date *time.Time) ([]catalogservice.Staff, error) {
	staff, err := c.catalog.GetEligibleStaff(ctx, serviceID)
	if err != nil {
		c.logger.Error("Availability: failed to fetch eligible staff for service id=%d: %v", serviceID, err)
		return nil, fmt.Errorf("%w: eligible staff for service id=%d: %v", ErrCheckFailed, serviceID, err)
	}

	if date == nil {
		return staff, nil
	}

	free := make([]catalogservice.Staff, 0, len(staff))
	for _, member := range staff {
		windows, err := c.appointments.GetStaffWindows(ctx, member.ID, *date)
		if err != nil {
			c.logger.Error("Availability: failed to fetch windows for staff id=%d: %v", member.ID, err)
			return nil, fmt.Errorf("%w: staff id=%d windows: %v", ErrCheckFailed, member.ID, err)
		}
		if len(windows) == 0 {
			free = append(free, member)
		}
	}

	c.logger.Info("Availability: service id=%d has %d eligible staff (%d free on %s)",
		serviceID, len(staff), len(free), date.Format(domain.DateFormat))
	return free, nil
}

// CheckStaffAvailability проверяет, что у мастера нет записи,
// пересекающейся с окном [start, end) на указанную дату. Граничные случаи
// (запись заканчивается ровно в start) пересечением не считаются.
func (c *Checker) CheckStaffAvailability(ctx context.Context, staffID int64, date time.Time, start, end types.TimeString) (bool, error) {
	windows, err := c.appointments.GetStaffWindows(ctx, staffID, date)
	if err != nil {
		c.logger.Error("Availability: failed to fetch windows for staff id=%d: %v", staffID, err)
		return false, fmt.Errorf("%w: staff id=%d: %v", ErrCheckFailed, staffID, err)
	}

	requested := domain.AppointmentWindow{Date: date, StartTime: start, EndTime: end}
	for _, w := range windows {
		if w.Overlaps(requested) {
			return false, nil
		}
	}
	return true, nil
}

// CheckSlotConflict проверяет общесалонную вместимость: число активных
// записей, пересекающихся с окном, против MaxConcurrentBookings политики.
// true означает конфликт (свободных кресел нет).
func (c *Checker) CheckSlotConflict(ctx context.Context, date time.Time, start, end types.TimeString) (bool, error) {
	policy, err := c.getPolicy(ctx)
	if err != nil {
		return false, err
	}

	windows, err := c.appointments.GetDayWindows(ctx, date)
	if err != nil {
		c.logger.Error("Availability: failed to fetch day windows for %s: %v", date.Format(domain.DateFormat), err)
		return false, fmt.Errorf("%w: day windows: %v", ErrCheckFailed, err)
	}

	requested := domain.AppointmentWindow{Date: date, StartTime: start, EndTime: end}
	overlapping := 0
	for _, w := range windows {
		if w.Overlaps(requested) {
			overlapping++
		}
	}

	if overlapping >= policy.MaxConcurrentBookings {
		c.logger.Warn("Availability: slot %s %s-%s full, %d/%d chairs taken",
			date.Format(domain.DateFormat), start, end, overlapping, policy.MaxConcurrentBookings)
		return true, nil
	}
	return false, nil
}

// ValidateWindow проверяет окно записи против рабочих часов, горизонта
// предварительной записи и минимального интервала до начала.
// Дата ровно на границе горизонта (день N из N) валидна.
func (c *Checker) ValidateWindow(ctx context.Context, window domain.AppointmentWindow, now time.Time) error {
	hours, err := c.schedule.GetBusinessHours(ctx)
	if err != nil {
		c.logger.Error("Availability: failed to fetch business hours: %v", err)
		return fmt.Errorf("%w: business hours: %v", ErrCheckFailed, err)
	}

	day := hours.ForDay(window.Date)
	if !day.IsOpen {
		return fmt.Errorf("%w: %s", ErrSalonClosed, window.Date.Format(domain.DateFormat))
	}
	if !day.Contains(window.StartTime, window.EndTime) {
		return fmt.Errorf("%w: %s-%s", ErrOutsideBusinessHours, window.StartTime, window.EndTime)
	}

	policy, err := c.getPolicy(ctx)
	if err != nil {
		return err
	}

	if isDateInPast(window.Date, now) {
		return fmt.Errorf("%w: %s", ErrDateInPast, window.Date.Format(domain.DateFormat))
	}

	if policy.HasAdvanceBookingLimit() {
		maxDate := startOfDay(now).AddDate(0, 0, policy.AdvanceBookingDays)
		if startOfDay(window.Date).After(maxDate) {
			return fmt.Errorf("%w: can only book %d days in advance", ErrBeyondHorizon, policy.AdvanceBookingDays)
		}
	}

	if isSameDay(window.Date, now) {
		currentTime := types.NewTimeString(now)
		minAllowed, err := currentTime.AddMinutes(policy.MinBookingNoticeMinutes)
		if err != nil {
			// Минимально допустимое время уходит за полночь: сегодня уже
			// слишком поздно для записи.
			return fmt.Errorf("%w: must book at least %d minutes in advance", ErrTooSoon, policy.MinBookingNoticeMinutes)
		}
		if window.StartTime.IsBefore(minAllowed) {
			return fmt.Errorf("%w: must book at least %d minutes in advance", ErrTooSoon, policy.MinBookingNoticeMinutes)
		}
	}

	return nil
}

func (c *Checker) getPolicy(ctx context.Context) (*domain.BookingPolicy, error) {
	policy, err := c.schedule.GetPolicy(ctx)
	if err != nil {
		if errors.Is(err, schedule.ErrPolicyNotFound) {
			def := domain.DefaultPolicy()
			return &def, nil
		}
		c.logger.Error("Availability: failed to fetch booking policy: %v", err)
		return nil, fmt.Errorf("%w: booking policy: %v", ErrCheckFailed, err)
	}
	return policy, nil
}

func isSameDay(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

func isDateInPast(date, now time.Time) bool {
	return startOfDay(date).Before(startOfDay(now))
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
