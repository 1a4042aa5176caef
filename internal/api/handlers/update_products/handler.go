package update_products

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
	msgProductNotFound    = "товар не найден"
	msgInvalidQuantity    = "некорректное количество товара"
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

// Handle PUT /api/v1/checkout-sessions/{sessionId}/products
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	var req UpdateProductsRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /checkout-sessions/{id}/products - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	session, err := h.registry.Get(sessionID)
	if err != nil {
		h.logger.Warn("PUT /checkout-sessions/{id}/products - Session not found: session_id=%s", sessionID)
		handlers.RespondNotFound(w, msgSessionNotFound)
		return
	}

	var state *handlers.CheckoutStateResponse
	err = session.Do(func(o *checkout.Orchestrator) error {
		requested := make(map[int64]bool, len(req.Products))
		for _, item := range req.Products {
			requested[item.ProductID] = true
		}

		for _, p := range o.Selection().Products {
			if !requested[p.ProductID] {
				o.UnselectProduct(p.ProductID)
			}
		}

		for _, item := range req.Products {
			if err := o.SelectProduct(r.Context(), item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		state = handlers.CheckoutStateFrom(session.ID, o)
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, catalogservice.ErrProductNotFound):
			h.logger.Warn("PUT /checkout-sessions/{id}/products - Product not found: session_id=%s", sessionID)
			handlers.RespondNotFound(w, msgProductNotFound)

		case errors.Is(err, checkout.ErrInvalidSelection):
			h.logger.Warn("PUT /checkout-sessions/{id}/products - Invalid quantity: session_id=%s, error=%v", sessionID, err)
			handlers.RespondBadRequest(w, msgInvalidQuantity)

		default:
			h.logger.Error("PUT /checkout-sessions/{id}/products - Failed: session_id=%s, error=%v", sessionID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, state)
}
