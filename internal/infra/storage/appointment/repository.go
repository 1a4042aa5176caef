package appointment

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-CheckoutService/internal/domain"
	"github.com/m04kA/SMC-CheckoutService/pkg/psqlbuilder"
	"github.com/m04kA/SMC-CheckoutService/pkg/txmanager"
	"github.com/m04kA/SMC-CheckoutService/pkg/types"
)

// Repository репозиторий для работы с записями (appointments)
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория записей
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает бронирование целиком: заголовок записи, строки услуг
// со снапшотами цены и мастера, строки товаров и платежную запись.
//
// Атомарность multi-row записи обеспечивается вызывающей стороной:
// метод ДОЛЖЕН вызываться внутри транзакции (txmanager.DoSerializable),
// иначе частичная запись станет видимой при сбое между INSERT'ами.
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := txmanager.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("appointments").
		Columns(
			"reference",
			"customer_name",
			"customer_email",
			"customer_phone",
			"notes",
			"appointment_date",
			"start_time",
			"end_time",
			"duration_minutes",
			"total_price",
			"status",
		).
		Values(
			booking.Reference,
			booking.CustomerName,
			booking.CustomerEmail,
			booking.CustomerPhone,
			booking.Notes,
			booking.AppointmentDate,
			booking.StartTime,
			booking.EndTime,
			booking.DurationMinutes,
			booking.TotalPrice,
			booking.Status,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&booking.ID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	for i := range booking.Services {
		line := &booking.Services[i]
		line.BookingID = booking.ID
		if err := r.insertServiceLine(ctx, executor, line); err != nil {
			return nil, err
		}
	}

	for i := range booking.Products {
		line := &booking.Products[i]
		line.BookingID = booking.ID
		if err := r.insertProductLine(ctx, executor, line); err != nil {
			return nil, err
		}
	}

	booking.Payment.BookingID = booking.ID
	if err := r.insertPayment(ctx, executor, &booking.Payment); err != nil {
		return nil, err
	}

	return booking, nil
}

func (r *Repository) insertServiceLine(ctx context.Context, executor DBExecutor, line *domain.ServiceLine) error {
	query, args, err := psqlbuilder.Insert("appointment_services").
		Columns("booking_id", "service_id", "staff_id", "service_name", "staff_name", "price", "duration_minutes").
		Values(line.BookingID, line.ServiceID, line.StaffID, line.ServiceName, line.StaffName, line.Price, line.DurationMinutes).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: insertServiceLine - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&line.ID); err != nil {
		return fmt.Errorf("%w: insertServiceLine - execute insert: %v", ErrExecQuery, err)
	}
	return nil
}

func (r *Repository) insertProductLine(ctx context.Context, executor DBExecutor, line *domain.ProductLine) error {
	query, args, err := psqlbuilder.Insert("appointment_products").
		Columns("booking_id", "product_id", "product_name", "unit_price", "quantity").
		Values(line.BookingID, line.ProductID, line.ProductName, line.UnitPrice, line.Quantity).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: insertProductLine - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&line.ID); err != nil {
		return fmt.Errorf("%w: insertProductLine - execute insert: %v", ErrExecQuery, err)
	}
	return nil
}

func (r *Repository) insertPayment(ctx context.Context, executor DBExecutor, payment *domain.PaymentRecord) error {
	query, args, err := psqlbuilder.Insert("payments").
		Columns("booking_id", "method", "amount", "status").
		Values(payment.BookingID, payment.Method, payment.Amount, payment.Status).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: insertPayment - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&payment.ID); err != nil {
		return fmt.Errorf("%w: insertPayment - execute insert: %v", ErrExecQuery, err)
	}
	return nil
}

// GetByReference получает бронирование по внешней ссылке вместе со
// строками услуг, товаров и платежной записью
func (r *Repository) GetByReference(ctx context.Context, reference string) (*domain.Booking, error) {
	executor := txmanager.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"reference",
		"customer_name",
		"customer_email",
		"customer_phone",
		"notes",
		"appointment_date",
		"start_time",
		"end_time",
		"duration_minutes",
		"total_price",
		"status",
		"created_at",
		"updated_at",
	).
		From("appointments").
		Where(squirrel.Eq{"reference": reference}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByReference - build select query: %v", ErrBuildQuery, err)
	}

	var booking domain.Booking
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&booking.ID,
		&booking.Reference,
		&booking.CustomerName,
		&booking.CustomerEmail,
		&booking.CustomerPhone,
		&booking.Notes,
		&booking.AppointmentDate,
		&booking.StartTime,
		&booking.EndTime,
		&booking.DurationMinutes,
		&booking.TotalPrice,
		&booking.Status,
		&createdAt,
		&updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByReference - scan booking: %v", ErrScanRow, err)
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	if booking.Services, err = r.getServiceLines(ctx, executor, booking.ID); err != nil {
		return nil, err
	}
	if booking.Products, err = r.getProductLines(ctx, executor, booking.ID); err != nil {
		return nil, err
	}
	if err = r.getPayment(ctx, executor, &booking); err != nil {
		return nil, err
	}

	return &booking, nil
}

func (r *Repository) getServiceLines(ctx context.Context, executor DBExecutor, bookingID int64) ([]domain.ServiceLine, error) {
	query, args, err := psqlbuilder.Select(
		"id", "booking_id", "service_id", "staff_id", "service_name", "staff_name", "price", "duration_minutes",
	).
		From("appointment_services").
		Where(squirrel.Eq{"booking_id": bookingID}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: getServiceLines - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: getServiceLines - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	lines := make([]domain.ServiceLine, 0)
	for rows.Next() {
		var line domain.ServiceLine
		if err := rows.Scan(
			&line.ID,
			&line.BookingID,
			&line.ServiceID,
			&line.StaffID,
			&line.ServiceName,
			&line.StaffName,
			&line.Price,
			&line.DurationMinutes,
		); err != nil {
			return nil, fmt.Errorf("%w: getServiceLines - scan line: %v", ErrScanRow, err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: getServiceLines - rows error: %v", ErrScanRow, err)
	}

	return lines, nil
}

func (r *Repository) getProductLines(ctx context.Context, executor DBExecutor, bookingID int64) ([]domain.ProductLine, error) {
	query, args, err := psqlbuilder.Select(
		"id", "booking_id", "product_id", "product_name", "unit_price", "quantity",
	).
		From("appointment_products").
		Where(squirrel.Eq{"booking_id": bookingID}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: getProductLines - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: getProductLines - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	lines := make([]domain.ProductLine, 0)
	for rows.Next() {
		var line domain.ProductLine
		if err := rows.Scan(
			&line.ID,
			&line.BookingID,
			&line.ProductID,
			&line.ProductName,
			&line.UnitPrice,
			&line.Quantity,
		); err != nil {
			return nil, fmt.Errorf("%w: getProductLines - scan line: %v", ErrScanRow, err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: getProductLines - rows error: %v", ErrScanRow, err)
	}

	return lines, nil
}

func (r *Repository) getPayment(ctx context.Context, executor DBExecutor, booking *domain.Booking) error {
	query, args, err := psqlbuilder.Select("id", "booking_id", "method", "amount", "status").
		From("payments").
		Where(squirrel.Eq{"booking_id": booking.ID}).
		OrderBy("id ASC").
		Limit(1).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: getPayment - build select query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&booking.Payment.ID,
		&booking.Payment.BookingID,
		&booking.Payment.Method,
		&booking.Payment.Amount,
		&booking.Payment.Status,
	)
	if err == sql.ErrNoRows {
		// Платежная запись пишется вместе с бронированием, её отсутствие -
		// повреждённые данные
		return fmt.Errorf("%w: getPayment - no payment row for booking id=%d", ErrScanRow, booking.ID)
	}
	if err != nil {
		return fmt.Errorf("%w: getPayment - scan payment: %v", ErrScanRow, err)
	}
	return nil
}

// GetStaffWindows возвращает окна активных записей указанного мастера на дату.
// Внутри транзакции строки записей блокируются (FOR UPDATE), чтобы
// авторитетная проверка на commit не гонялась с параллельными бронированиями.
func (r *Repository) GetStaffWindows(ctx context.Context, staffID int64, date time.Time) ([]domain.AppointmentWindow, error) {
	executor := txmanager.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select("a.appointment_date", "a.start_time", "a.end_time").
		From("appointments a").
		Join("appointment_services s ON s.booking_id = a.id").
		Where(squirrel.Eq{"s.staff_id": staffID}).
		Where(squirrel.Eq{"a.appointment_date": date}).
		Where(squirrel.NotEq{"a.status": inactiveStatusStrings()}).
		OrderBy("a.start_time ASC")

	if txmanager.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE OF a")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetStaffWindows - build select query: %v", ErrBuildQuery, err)
	}

	return r.scanWindows(ctx, executor, query, args, "GetStaffWindows")
}

// GetDayWindows возвращает окна всех активных записей салона на дату.
// Используется для проверки общей вместимости (число кресел).
func (r *Repository) GetDayWindows(ctx context.Context, date time.Time) ([]domain.AppointmentWindow, error) {
	executor := txmanager.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select("appointment_date", "start_time", "end_time").
		From("appointments").
		Where(squirrel.Eq{"appointment_date": date}).
		Where(squirrel.NotEq{"status": inactiveStatusStrings()}).
		OrderBy("start_time ASC")

	if txmanager.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetDayWindows - build select query: %v", ErrBuildQuery, err)
	}

	return r.scanWindows(ctx, executor, query, args, "GetDayWindows")
}

func (r *Repository) scanWindows(ctx context.Context, executor DBExecutor, query string, args []interface{}, op string) ([]domain.AppointmentWindow, error) {
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s - execute query: %v", ErrExecQuery, op, err)
	}
	defer rows.Close()

	windows := make([]domain.AppointmentWindow, 0)
	for rows.Next() {
		var w domain.AppointmentWindow
		var start, end types.TimeString
		if err := rows.Scan(&w.Date, &start, &end); err != nil {
			return nil, fmt.Errorf("%w: %s - scan window: %v", ErrScanRow, op, err)
		}
		w.StartTime = start
		w.EndTime = end
		windows = append(windows, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows error: %v", ErrScanRow, op, err)
	}

	return windows, nil
}

func inactiveStatusStrings() []string {
	statuses := make([]string, len(domain.InactiveStatuses))
	for i, s := range domain.InactiveStatuses {
		statuses[i] = string(s)
	}
	return statuses
}
