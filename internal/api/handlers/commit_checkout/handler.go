package commit_checkout

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-CheckoutService/internal/api/handlers"
	"github.com/m04kA/SMC-CheckoutService/internal/checkout"
)

const (
	msgSessionNotFound  = "checkout-сессия не найдена или истекла"
	msgSelectionInvalid = "бронирование заполнено не полностью"
	msgCommitInFlight   = "фиксация бронирования уже выполняется"
	msgConflictAtCommit = "выбранное время стало недоступно, выберите другой слот"
	msgCommitFailed     = "не удалось зафиксировать бронирование, попробуйте ещё раз"
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

// Handle POST /api/v1/checkout-sessions/{sessionId}/commit
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	session, err := h.registry.Get(sessionID)
	if err != nil {
		h.logger.Warn("POST /checkout-sessions/{id}/commit - Session not found: session_id=%s", sessionID)
		handlers.RespondNotFound(w, msgSessionNotFound)
		return
	}

	var (
		reference string
		state     *handlers.CheckoutStateResponse
	)
	err = session.Do(func(o *checkout.Orchestrator) error {
		ref, err := o.Commit(r.Context())
		// Состояние отдаём и при конфликте: сессия уже вернулась на
		// datetime с сохранённым выбором, UI показывает его сразу
		state = handlers.CheckoutStateFrom(session.ID, o)
		if err != nil {
			return err
		}
		reference = ref
		return nil
	})
	if err != nil {
		var verr *checkout.ValidationError
		switch {
		case errors.As(err, &verr):
			h.logger.Warn("POST /checkout-sessions/{id}/commit - Selection invalid: session_id=%s, error=%v", sessionID, verr)
			handlers.RespondValidationError(w, msgSelectionInvalid, verr.Error())

		case errors.Is(err, checkout.ErrCommitInFlight):
			h.logger.Warn("POST /checkout-sessions/{id}/commit - Commit already in flight: session_id=%s", sessionID)
			handlers.RespondConflict(w, msgCommitInFlight)

		case errors.Is(err, checkout.ErrConflictAtCommit):
			h.logger.Warn("POST /checkout-sessions/{id}/commit - Conflict at commit: session_id=%s, error=%v", sessionID, err)
			handlers.RespondJSON(w, http.StatusConflict, handlers.ErrorResponse{Error: msgConflictAtCommit})

		default:
			h.logger.Error("POST /checkout-sessions/{id}/commit - Commit failed: session_id=%s, error=%v", sessionID, err)
			handlers.RespondError(w, http.StatusInternalServerError, msgCommitFailed)
		}
		return
	}

	h.logger.Info("POST /checkout-sessions/{id}/commit - Booking committed: session_id=%s, reference=%s", sessionID, reference)
	handlers.RespondJSON(w, http.StatusCreated, &CommitResponse{
		BookingReference: reference,
		State:            state,
	})
}
