package update_customer

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-CheckoutService/internal/api/handlers"
	"github.com/m04kA/SMC-CheckoutService/internal/checkout"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgSessionNotFound    = "checkout-сессия не найдена или истекла"
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

// Handle PUT /api/v1/checkout-sessions/{sessionId}/customer
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	var req UpdateCustomerRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /checkout-sessions/{id}/customer - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	session, err := h.registry.Get(sessionID)
	if err != nil {
		h.logger.Warn("PUT /checkout-sessions/{id}/customer - Session not found: session_id=%s", sessionID)
		handlers.RespondNotFound(w, msgSessionNotFound)
		return
	}

	var state *handlers.CheckoutStateResponse
	_ = session.Do(func(o *checkout.Orchestrator) error {
		o.SetCustomer(checkout.CustomerInfo{
			Name:  req.Name,
			Email: req.Email,
			Phone: req.Phone,
			Notes: req.Notes,
		})
		state = handlers.CheckoutStateFrom(session.ID, o)
		return nil
	})

	handlers.RespondJSON(w, http.StatusOK, state)
}
