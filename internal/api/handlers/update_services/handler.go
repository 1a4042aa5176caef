package update_services

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-CheckoutService/internal/api/handlers"
	"github.com/m04kA/SMC-CheckoutService/internal/checkout"
	"github.com/m04kA/SMC-CheckoutService/internal/integrations/catalogservice"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgSessionNotFound    = "checkout-сессия не найдена или истекла"
	msgServiceNotFound    = "услуга не найдена"
	msgStaffNotEligible   = "мастер не выполняет выбранную услугу"
	msgStaffUnavailable   = "мастер занят в выбранное время"
	msgInvalidSelection   = "некорректный выбор услуг"
	msgCommitInFlight     = "фиксация бронирования уже выполняется"
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

// Handle PUT /api/v1/checkout-sessions/{sessionId}/services
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	var req UpdateServicesRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /checkout-sessions/{id}/services - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	session, err := h.registry.Get(sessionID)
	if err != nil {
		h.logger.Warn("PUT /checkout-sessions/{id}/services - Session not found: session_id=%s", sessionID)
		handlers.RespondNotFound(w, msgSessionNotFound)
		return
	}

	var state *handlers.CheckoutStateResponse
	err = session.Do(func(o *checkout.Orchestrator) error {
		requested := make(map[int64]ServiceItem, len(req.Services))
		for _, item := range req.Services {
			requested[item.ServiceID] = item
		}

		// Снимаем услуги, которых больше нет в списке
		for _, id := range o.Selection().ServiceIDs() {
			if _, keep := requested[id]; !keep {
				o.UnselectService(id)
			}
		}

		// Добавляем новые и назначаем мастеров
		for _, item := range req.Services {
			if err := o.SelectService(r.Context(), item.ServiceID); err != nil {
				return err
			}
			if item.StaffID != nil {
				if err := o.AssignStaff(r.Context(), item.ServiceID, *item.StaffID); err != nil {
					return err
				}
			}
		}

		state = handlers.CheckoutStateFrom(session.ID, o)
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, catalogservice.ErrServiceNotFound):
			h.logger.Warn("PUT /checkout-sessions/{id}/services - Service not found: session_id=%s", sessionID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, checkout.ErrStaffNotEligible):
			h.logger.Warn("PUT /checkout-sessions/{id}/services - Staff not eligible: session_id=%s, error=%v", sessionID, err)
			handlers.RespondConflict(w, msgStaffNotEligible)

		case errors.Is(err, checkout.ErrStaffUnavailable):
			h.logger.Warn("PUT /checkout-sessions/{id}/services - Staff unavailable: session_id=%s, error=%v", sessionID, err)
			handlers.RespondConflict(w, msgStaffUnavailable)

		case errors.Is(err, checkout.ErrInvalidSelection):
			h.logger.Warn("PUT /checkout-sessions/{id}/services - Invalid selection: session_id=%s, error=%v", sessionID, err)
			handlers.RespondBadRequest(w, msgInvalidSelection)

		case errors.Is(err, checkout.ErrCommitInFlight):
			handlers.RespondConflict(w, msgCommitInFlight)

		default:
			h.logger.Error("PUT /checkout-sessions/{id}/services - Failed: session_id=%s, error=%v", sessionID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, state)
}
