package delete_checkout

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-CheckoutService/internal/api/handlers"
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

// Handle DELETE /api/v1/checkout-sessions/{sessionId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	if _, err := h.registry.Get(sessionID); err != nil {
		h.logger.Warn("DELETE /checkout-sessions/{id} - Session not found: session_id=%s", sessionID)
		handlers.RespondNotFound(w, msgSessionNotFound)
		return
	}

	h.registry.Delete(sessionID)
	h.logger.Info("DELETE /checkout-sessions/{id} - Session deleted: session_id=%s", sessionID)
	w.WriteHeader(http.StatusNoContent)
}
