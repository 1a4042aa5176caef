package update_payment

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-CheckoutService/internal/api/handlers"
	"github.com/m04kA/SMC-CheckoutService/internal/checkout"
	"github.com/m04kA/SMC-CheckoutService/internal/domain"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgSessionNotFound    = "checkout-сессия не найдена или истекла"
	msgInvalidMethod      = "неизвестный способ оплаты, допустимы cash, card, online"
)

type Handler struct {
	registry SessionRegistry
	logger   Logger
}

func NewHandler(registry SessionRegistry, logger Logger) *Handler {
	return &Handler{
		registry: registry,
		logger:   logger,
	}
}

// Handle PUT /api/v1/checkout-sessions/{sessionId}/payment
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	var req UpdatePaymentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /checkout-sessions/{id}/payment - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	session, err := h.registry.Get(sessionID)
	if err != nil {
		h.logger.Warn("PUT /checkout-sessions/{id}/payment - Session not found: session_id=%s", sessionID)
		handlers.RespondNotFound(w, msgSessionNotFound)
		return
	}

	var state *handlers.CheckoutStateResponse
	err = session.Do(func(o *checkout.Orchestrator) error {
		if err := o.SetPayment(domain.PaymentMethod(req.Method)); err != nil {
			return err
		}
		state = handlers.CheckoutStateFrom(session.ID, o)
		return nil
	})
	if err != nil {
		h.logger.Warn("PUT /checkout-sessions/{id}/payment - Invalid method %q: session_id=%s", req.Method, sessionID)
		handlers.RespondBadRequest(w, msgInvalidMethod)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, state)
}
