package schedule

import "errors"

var (
	// ErrScheduleNotFound возвращается, когда рабочие часы не настроены
	ErrScheduleNotFound = errors.New("schedule.repository: business hours not found")

	// ErrPolicyNotFound возвращается, когда политика бронирования не настроена
	ErrPolicyNotFound = errors.New("schedule.repository: booking policy not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("schedule.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("schedule.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("schedule.repository: failed to scan row")
)
