package navigate_checkout

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-CheckoutService/internal/api/handlers"
	"github.com/m04kA/SMC-CheckoutService/internal/checkout"
	"github.com/m04kA/SMC-CheckoutService/internal/service/availability"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgSessionNotFound    = "checkout-сессия не найдена или истекла"
	msgStepNotValid       = "текущий шаг заполнен не полностью"
	msgUnknownStep        = "неизвестный шаг checkout"
	msgForwardJump        = "переход на этот шаг пока недоступен"
	msgCommitInFlight     = "фиксация бронирования уже выполняется"
	msgSalonClosed        = "салон закрыт в выбранную дату"
	msgOutsideHours       = "выбранное время вне рабочих часов салона"
	msgDateInPast         = "выбранная дата уже прошла"
	msgBeyondHorizon      = "дата слишком далеко в будущем"
	msgTooSoon            = "слишком поздно для записи на это время"
	msgStaffUnavailable   = "мастер занят в выбранное время"
	msgSlotUnavailable    = "выбранный временной слот занят"
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

// HandleAdvance POST /api/v1/checkout-sessions/{sessionId}/advance
func (h *Handler) HandleAdvance(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	session, err := h.registry.Get(sessionID)
	if err != nil {
		h.logger.Warn("POST /checkout-sessions/{id}/advance - Session not found: session_id=%s", sessionID)
		handlers.RespondNotFound(w, msgSessionNotFound)
		return
	}

	var state *handlers.CheckoutStateResponse
	err = session.Do(func(o *checkout.Orchestrator) error {
		if err := o.Advance(r.Context()); err != nil {
			return err
		}
		state = handlers.CheckoutStateFrom(session.ID, o)
		return nil
	})
	if err != nil {
		h.respondNavigationError(w, "advance", sessionID, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, state)
}

// HandleGoTo POST /api/v1/checkout-sessions/{sessionId}/step
func (h *Handler) HandleGoTo(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	var req GoToRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /checkout-sessions/{id}/step - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	target, err := checkout.ParseStep(req.Step)
	if err != nil {
		h.logger.Warn("POST /checkout-sessions/{id}/step - Unknown step %q: session_id=%s", req.Step, sessionID)
		handlers.RespondBadRequest(w, msgUnknownStep)
		return
	}

	session, err := h.registry.Get(sessionID)
	if err != nil {
		h.logger.Warn("POST /checkout-sessions/{id}/step - Session not found: session_id=%s", sessionID)
		handlers.RespondNotFound(w, msgSessionNotFound)
		return
	}

	var state *handlers.CheckoutStateResponse
	err = session.Do(func(o *checkout.Orchestrator) error {
		if err := o.GoTo(r.Context(), target); err != nil {
			return err
		}
		state = handlers.CheckoutStateFrom(session.ID, o)
		return nil
	})
	if err != nil {
		h.respondNavigationError(w, "step", sessionID, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, state)
}

// HandleReset POST /api/v1/checkout-sessions/{sessionId}/reset
func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	session, err := h.registry.Get(sessionID)
	if err != nil {
		h.logger.Warn("POST /checkout-sessions/{id}/reset - Session not found: session_id=%s", sessionID)
		handlers.RespondNotFound(w, msgSessionNotFound)
		return
	}

	var state *handlers.CheckoutStateResponse
	_ = session.Do(func(o *checkout.Orchestrator) error {
		o.Reset()
		state = handlers.CheckoutStateFrom(session.ID, o)
		return nil
	})

	h.logger.Info("POST /checkout-sessions/{id}/reset - Session reset: session_id=%s", sessionID)
	handlers.RespondJSON(w, http.StatusOK, state)
}

// respondNavigationError единая раскладка ошибок навигации по HTTP статусам.
// Невыполненные предикаты и отклонённое расписание — 400, занятость мастера
// или слота — 409, сбой проверки доступности — 500.
func (h *Handler) respondNavigationError(w http.ResponseWriter, route, sessionID string, err error) {
	var verr *checkout.ValidationError
	if errors.As(err, &verr) {
		h.logger.Warn("POST /checkout-sessions/{id}/%s - Step not valid: session_id=%s, error=%v", route, sessionID, verr)
		handlers.RespondValidationError(w, msgStepNotValid, verr.Error())
		return
	}

	switch {
	case errors.Is(err, checkout.ErrCommitInFlight):
		handlers.RespondConflict(w, msgCommitInFlight)

	case errors.Is(err, checkout.ErrForwardJump):
		h.logger.Warn("POST /checkout-sessions/{id}/%s - Forward jump rejected: session_id=%s, error=%v", route, sessionID, err)
		handlers.RespondBadRequest(w, msgForwardJump)

	case errors.Is(err, availability.ErrSalonClosed):
		handlers.RespondBadRequest(w, msgSalonClosed)

	case errors.Is(err, availability.ErrOutsideBusinessHours):
		handlers.RespondBadRequest(w, msgOutsideHours)

	case errors.Is(err, availability.ErrDateInPast):
		handlers.RespondBadRequest(w, msgDateInPast)

	case errors.Is(err, availability.ErrBeyondHorizon):
		handlers.RespondBadRequest(w, msgBeyondHorizon)

	case errors.Is(err, availability.ErrTooSoon):
		handlers.RespondBadRequest(w, msgTooSoon)

	case errors.Is(err, checkout.ErrStaffUnavailable):
		h.logger.Warn("POST /checkout-sessions/{id}/%s - Staff unavailable: session_id=%s, error=%v", route, sessionID, err)
		handlers.RespondConflict(w, msgStaffUnavailable)

	case errors.Is(err, checkout.ErrSlotUnavailable):
		h.logger.Warn("POST /checkout-sessions/{id}/%s - Slot unavailable: session_id=%s, error=%v", route, sessionID, err)
		handlers.RespondConflict(w, msgSlotUnavailable)

	default:
		h.logger.Error("POST /checkout-sessions/{id}/%s - Failed: session_id=%s, error=%v", route, sessionID, err)
		handlers.RespondInternalError(w)
	}
}
