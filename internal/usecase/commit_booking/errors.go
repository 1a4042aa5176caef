package commit_booking

import "errors"

// Ошибки таксономии commit-пайплайна (конфликт при повторной проверке,
// отказ записи) определены в пакете checkout и оборачиваются этим usecase,
// чтобы оркестратор мог маршрутизировать их без импорта usecase-слоя.
var (
	// ErrInvalidInput возвращается, когда selection не проходит повторную
	// валидацию шагов перед записью
	ErrInvalidInput = errors.New("commit_booking: invalid selection")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("commit_booking: internal error")
)
