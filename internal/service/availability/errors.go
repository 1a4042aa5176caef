package availability

import "errors"

var (
	// ErrCheckFailed возвращается при ошибке бэкенда во время проверки
	// доступности. Никогда не приводится к false: вызывающая сторона
	// обязана показать ошибку и предложить повтор, а не молча пропустить
	// конфликтующее бронирование.
	ErrCheckFailed = errors.New("availability: check failed")

	// ErrSalonClosed возвращается, когда салон закрыт в выбранную дату
	ErrSalonClosed = errors.New("availability: salon is closed on this date")

	// ErrOutsideBusinessHours возвращается, когда окно записи выходит за
	// рабочие часы
	ErrOutsideBusinessHours = errors.New("availability: slot is outside business hours")

	// ErrDateInPast возвращается для даты в прошлом
	ErrDateInPast = errors.New("availability: date is in the past")

	// ErrBeyondHorizon возвращается, когда дата превышает горизонт
	// предварительной записи
	ErrBeyondHorizon = errors.New("availability: date is beyond the booking horizon")

	// ErrTooSoon возвращается, когда запись нарушает минимальный интервал
	// до начала
	ErrTooSoon = errors.New("availability: too late to book this slot")
)
