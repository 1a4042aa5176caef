package commit_booking

import (
	"time"

	"github.com/m04kA/SMC-CheckoutService/internal/checkout"
	"github.com/m04kA/SMC-CheckoutService/pkg/types"
)

// Request модель запроса на фиксацию бронирования
type Request struct {
	Selection checkout.Selection // Снапшот selection завершённой checkout-сессии
}

// Response модель ответа с созданным бронированием
type Response struct {
	BookingID       int64            // ID созданного бронирования
	Reference       string           // Внешняя ссылка бронирования (UUID)
	Status          string           // Статус бронирования
	AppointmentDate time.Time        // Дата записи
	StartTime       types.TimeString // Время начала
	EndTime         types.TimeString // Время окончания
	DurationMinutes int              // Суммарная длительность услуг
	TotalPrice      float64          // Итоговая сумма
	CreatedAt       time.Time        // Время создания
}
