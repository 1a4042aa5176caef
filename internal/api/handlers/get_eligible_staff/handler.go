package get_eligible_staff

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-CheckoutService/internal/api/handlers"
	"github.com/m04kA/SMC-CheckoutService/internal/checkout"
	"github.com/m04kA/SMC-CheckoutService/internal/integrations/catalogservice"
)

const (
	msgSessionNotFound    = "checkout-сессия не найдена или истекла"
	msgInvalidServiceID   = "некорректный идентификатор услуги"
	msgServiceNotSelected = "услуга не выбрана в этой сессии"
	msgServiceNotFound    = "услуга не найдена"
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

// Handle GET /api/v1/checkout-sessions/{sessionId}/services/{serviceId}/eligible-staff
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sessionID := vars["sessionId"]

	serviceID, err := strconv.ParseInt(vars["serviceId"], 10, 64)
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidServiceID)
		return
	}

	session, err := h.registry.Get(sessionID)
	if err != nil {
		h.logger.Warn("GET .../eligible-staff - Session not found: session_id=%s", sessionID)
		handlers.RespondNotFound(w, msgSessionNotFound)
		return
	}

	var staff []catalogservice.Staff
	err = session.Do(func(o *checkout.Orchestrator) error {
		list, err := o.EligibleStaff(r.Context(), serviceID)
		if err != nil {
			return err
		}
		staff = list
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrInvalidSelection):
			h.logger.Warn("GET .../eligible-staff - Service not selected: session_id=%s, service_id=%d", sessionID, serviceID)
			handlers.RespondBadRequest(w, msgServiceNotSelected)

		case errors.Is(err, catalogservice.ErrServiceNotFound):
			handlers.RespondNotFound(w, msgServiceNotFound)

		default:
			h.logger.Error("GET .../eligible-staff - Failed: session_id=%s, service_id=%d, error=%v", sessionID, serviceID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, FromStaffList(serviceID, staff))
}
