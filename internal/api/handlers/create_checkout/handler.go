package create_checkout

import (
	"net/http"

	"github.com/m04kA/SMC-CheckoutService/internal/api/handlers"
	"github.com/m04kA/SMC-CheckoutService/internal/checkout"
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

// Handle POST /api/v1/checkout-sessions
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	session := h.registry.Create()

	var state *handlers.CheckoutStateResponse
	_ = session.Do(func(o *checkout.Orchestrator) error {
		state = handlers.CheckoutStateFrom(session.ID, o)
		return nil
	})

	h.logger.Info("POST /checkout-sessions - Session created: session_id=%s", session.ID)
	handlers.RespondJSON(w, http.StatusCreated, state)
}
