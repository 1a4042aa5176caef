package commit_checkout

import (
	"github.com/m04kA/SMC-CheckoutService/internal/api/handlers"
)

// CommitResponse результат успешной фиксации: публичная ссылка
// подтверждения и состояние сессии на шаге confirmation
type CommitResponse struct {
	BookingReference string                          `json:"bookingReference"`
	State            *handlers.CheckoutStateResponse `json:"state"`
}
