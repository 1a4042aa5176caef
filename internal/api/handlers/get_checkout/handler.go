package get_checkout

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-CheckoutService/internal/api/handlers"
	"github.com/m04kA/SMC-CheckoutService/internal/checkout"
)

const (
	msgSessionNotFound = "checkout-сессия не найдена или истекла"
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

// Handle GET /api/v1/checkout-sessions/{sessionId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	session, err := h.registry.Get(sessionID)
	if err != nil {
		h.logger.Warn("GET /checkout-sessions/{id} - Session not found: session_id=%s", sessionID)
		handlers.RespondNotFound(w, msgSessionNotFound)
		return
	}

	var state *handlers.CheckoutStateResponse
	_ = session.Do(func(o *checkout.Orchestrator) error {
		state = handlers.CheckoutStateFrom(session.ID, o)
		return nil
	})

	handlers.RespondJSON(w, http.StatusOK, state)
}
