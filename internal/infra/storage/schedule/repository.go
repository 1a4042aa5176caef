package schedule

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/m04kA/SMC-CheckoutService/internal/domain"
	"github.com/m04kA/SMC-CheckoutService/pkg/psqlbuilder"
	"github.com/m04kA/SMC-CheckoutService/pkg/txmanager"
	"github.com/m04kA/SMC-CheckoutService/pkg/types"
)

// Repository репозиторий рабочих часов и политики бронирования
type Repository struct {
	db txmanager.DBExecutor
}

// NewRepository создает новый экземпляр репозитория расписания
func NewRepository(db txmanager.DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetBusinessHours возвращает недельное расписание салона.
// Дни без строки в business_hours считаются выходными.
func (r *Repository) GetBusinessHours(ctx context.Context) (*domain.BusinessHours, error) {
	executor := txmanager.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("weekday", "is_open", "open_time", "close_time").
		From("business_hours").
		OrderBy("weekday ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetBusinessHours - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetBusinessHours - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	var hours domain.BusinessHours
	found := false

	for rows.Next() {
		var weekday int
		var day domain.DaySchedule
		var openTime, closeTime sql.NullString

		if err := rows.Scan(&weekday, &day.IsOpen, &openTime, &closeTime); err != nil {
			return nil, fmt.Errorf("%w: GetBusinessHours - scan row: %v", ErrScanRow, err)
		}

		if openTime.Valid {
			ts, err := types.NewTimeStringFromString(trimToHHMM(openTime.String))
			if err != nil {
				return nil, fmt.Errorf("%w: GetBusinessHours - invalid open_time: %v", ErrScanRow, err)
			}
			day.OpenTime = &ts
		}
		if closeTime.Valid {
			ts, err := types.NewTimeStringFromString(trimToHHMM(closeTime.String))
			if err != nil {
				return nil, fmt.Errorf("%w: GetBusinessHours - invalid close_time: %v", ErrScanRow, err)
			}
			day.CloseTime = &ts
		}

		setDay(&hours, time.Weekday(weekday), day)
		found = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetBusinessHours - rows error: %v", ErrScanRow, err)
	}

	if !found {
		return nil, ErrScheduleNotFound
	}

	return &hours, nil
}

// GetPolicy возвращает политику бронирования (горизонт, минимальный
// интервал до записи, вместимость). Хранится одной строкой; при её
// отсутствии вызывающая сторона использует domain.DefaultPolicy().
func (r *Repository) GetPolicy(ctx context.Context) (*domain.BookingPolicy, error) {
	executor := txmanager.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"advance_booking_days",
		"min_booking_notice_minutes",
		"max_concurrent_bookings",
	).
		From("booking_policy").
		OrderBy("id ASC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetPolicy - build select query: %v", ErrBuildQuery, err)
	}

	var policy domain.BookingPolicy
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&policy.AdvanceBookingDays,
		&policy.MinBookingNoticeMinutes,
		&policy.MaxConcurrentBookings,
	)
	if err == sql.ErrNoRows {
		return nil, ErrPolicyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetPolicy - scan policy: %v", ErrScanRow, err)
	}

	return &policy, nil
}

func setDay(hours *domain.BusinessHours, weekday time.Weekday, day domain.DaySchedule) {
	switch weekday {
	case time.Monday:
		hours.Monday = day
	case time.Tuesday:
		hours.Tuesday = day
	case time.Wednesday:
		hours.Wednesday = day
	case time.Thursday:
		hours.Thursday = day
	case time.Friday:
		hours.Friday = day
	case time.Saturday:
		hours.Saturday = day
	case time.Sunday:
		hours.Sunday = day
	}
}

// trimToHHMM обрезает значение TIME колонки ("10:00:00") до "HH:MM"
func trimToHHMM(s string) string {
	if len(s) > 5 {
		return s[:5]
	}
	return s
}
