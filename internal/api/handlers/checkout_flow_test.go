package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CheckoutService/internal/api/handlers"
	commitCheckoutHandler "github.com/m04kA/SMC-CheckoutService/internal/api/handlers/commit_checkout"
	createCheckoutHandler "github.com/m04kA/SMC-CheckoutService/internal/api/handlers/create_checkout"
	getCheckoutHandler "github.com/m04kA/SMC-CheckoutService/internal/api/handlers/get_checkout"
	getEligibleStaffHandler "github.com/m04kA/SMC-CheckoutService/internal/api/handlers/get_eligible_staff"
	navigateCheckoutHandler "github.com/m04kA/SMC-CheckoutService/internal/api/handlers/navigate_checkout"
	updateCustomerHandler "github.com/m04kA/SMC-CheckoutService/internal/api/handlers/update_customer"
	updatePaymentHandler "github.com/m04kA/SMC-CheckoutService/internal/api/handlers/update_payment"
	updateProductsHandler "github.com/m04kA/SMC-CheckoutService/internal/api/handlers/update_products"
	updateScheduleHandler "github.com/m04kA/SMC-CheckoutService/internal/api/handlers/update_schedule"
	updateServicesHandler "github.com/m04kA/SMC-CheckoutService/internal/api/handlers/update_services"
	"github.com/m04kA/SMC-CheckoutService/internal/checkout"
	"github.com/m04kA/SMC-CheckoutService/internal/domain"
	"github.com/m04kA/SMC-CheckoutService/internal/integrations/catalogservice"
	"github.com/m04kA/SMC-CheckoutService/internal/service/sessions"
	"github.com/m04kA/SMC-CheckoutService/pkg/types"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

type fakeCatalog struct{}

func (fakeCatalog) GetService(_ context.Context, id int64) (*catalogservice.Service, error) {
	switch id {
	case 1:
		return &catalogservice.Service{ID: 1, Name: "Haircut", Price: 1500, DurationMinutes: 30, IsActive: true}, nil
	case 2:
		return &catalogservice.Service{ID: 2, Name: "Coloring", Price: 4000, DurationMinutes: 45, IsActive: true}, nil
	}
	return nil, fmt.Errorf("%w: id=%d", catalogservice.ErrServiceNotFound, id)
}

func (fakeCatalog) GetProduct(_ context.Context, id int64) (*catalogservice.Product, error) {
	if id == 7 {
		return &catalogservice.Product{ID: 7, Name: "Shampoo", Price: 800, IsActive: true}, nil
	}
	return nil, fmt.Errorf("%w: id=%d", catalogservice.ErrProductNotFound, id)
}

type fakeAvailability struct{}

func (fakeAvailability) EligibleStaff(_ context.Context, serviceID int64, _ *time.Time) ([]catalogservice.Staff, error) {
	if serviceID == 1 {
		return []catalogservice.Staff{{ID: 10, Name: "Anna"}, {ID: 11, Name: "Olga"}}, nil
	}
	return []catalogservice.Staff{{ID: 11, Name: "Olga"}}, nil
}

func (fakeAvailability) CheckStaffAvailability(context.Context, int64, time.Time, types.TimeString, types.TimeString) (bool, error) {
	return true, nil
}

func (fakeAvailability) CheckSlotConflict(context.Context, time.Time, types.TimeString, types.TimeString) (bool, error) {
	return false, nil
}

func (fakeAvailability) ValidateWindow(context.Context, domain.AppointmentWindow, time.Time) error {
	return nil
}

type fakeCommitter struct {
	err error
}

func (f *fakeCommitter) Commit(context.Context, checkout.Selection) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "ref-123", nil
}

func newTestRouter(committer *fakeCommitter) *mux.Router {
	log := nopLogger{}
	factory := func() *checkout.Orchestrator {
		return checkout.NewOrchestrator(fakeCatalog{}, fakeAvailability{}, committer, log).
			WithTimeProvider(fixedTime{now: time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)})
	}
	registry := sessions.NewService(factory, time.Hour, nil, log)

	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/checkout-sessions", createCheckoutHandler.NewHandler(registry, log).Handle).Methods(http.MethodPost)
	api.HandleFunc("/checkout-sessions/{sessionId}", getCheckoutHandler.NewHandler(registry, log).Handle).Methods(http.MethodGet)
	api.HandleFunc("/checkout-sessions/{sessionId}/services", updateServicesHandler.NewHandler(registry, log).Handle).Methods(http.MethodPut)
	api.HandleFunc("/checkout-sessions/{sessionId}/products", updateProductsHandler.NewHandler(registry, log).Handle).Methods(http.MethodPut)
	api.HandleFunc("/checkout-sessions/{sessionId}/schedule", updateScheduleHandler.NewHandler(registry, log).Handle).Methods(http.MethodPut)
	api.HandleFunc("/checkout-sessions/{sessionId}/customer", updateCustomerHandler.NewHandler(registry, log).Handle).Methods(http.MethodPut)
	api.HandleFunc("/checkout-sessions/{sessionId}/payment", updatePaymentHandler.NewHandler(registry, log).Handle).Methods(http.MethodPut)
	api.HandleFunc("/checkout-sessions/{sessionId}/services/{serviceId}/eligible-staff",
		getEligibleStaffHandler.NewHandler(registry, log).Handle).Methods(http.MethodGet)

	navigate := navigateCheckoutHandler.NewHandler(registry, log)
	api.HandleFunc("/checkout-sessions/{sessionId}/advance", navigate.HandleAdvance).Methods(http.MethodPost)
	api.HandleFunc("/checkout-sessions/{sessionId}/step", navigate.HandleGoTo).Methods(http.MethodPost)
	api.HandleFunc("/checkout-sessions/{sessionId}/reset", navigate.HandleReset).Methods(http.MethodPost)
	api.HandleFunc("/checkout-sessions/{sessionId}/commit", commitCheckoutHandler.NewHandler(registry, log).Handle).Methods(http.MethodPost)
	return r
}

func doJSON(t *testing.T, router *mux.Router, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeState(t *testing.T, rec *httptest.ResponseRecorder) *handlers.CheckoutStateResponse {
	t.Helper()
	var state handlers.CheckoutStateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	return &state
}

func TestCheckoutFlow_EndToEnd(t *testing.T) {
	router := newTestRouter(&fakeCommitter{})

	// Создание сессии
	rec := doJSON(t, router, http.MethodPost, "/api/v1/checkout-sessions", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	state := decodeState(t, rec)
	sessionID := state.SessionID
	require.NotEmpty(t, sessionID)
	assert.Equal(t, "services", state.Step)

	base := "/api/v1/checkout-sessions/" + sessionID

	// Выбор услуг с мастерами
	rec = doJSON(t, router, http.MethodPut, base+"/services", map[string]interface{}{
		"services": []map[string]interface{}{
			{"serviceId": 1, "staffId": 10},
			{"serviceId": 2, "staffId": 11},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	state = decodeState(t, rec)
	assert.Len(t, state.Services, 2)
	assert.Equal(t, 75, state.DurationMinutes)
	assert.Equal(t, 5500.0, state.TotalPrice)

	// Подходящие мастера для услуги
	rec = doJSON(t, router, http.MethodGet, base+"/services/1/eligible-staff", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// services -> products
	rec = doJSON(t, router, http.MethodPost, base+"/advance", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "products", decodeState(t, rec).Step)

	// Товары
	rec = doJSON(t, router, http.MethodPut, base+"/products", map[string]interface{}{
		"products": []map[string]interface{}{{"productId": 7, "quantity": 2}},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 7100.0, decodeState(t, rec).TotalPrice)

	// products -> datetime
	rec = doJSON(t, router, http.MethodPost, base+"/advance", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Дата и время
	rec = doJSON(t, router, http.MethodPut, base+"/schedule", map[string]interface{}{
		"date": "2026-09-15", "startTime": "10:00",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	state = decodeState(t, rec)
	require.NotNil(t, state.EndTime)
	assert.Equal(t, "11:15", *state.EndTime)

	// datetime -> customer_info
	rec = doJSON(t, router, http.MethodPost, base+"/advance", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Контакты
	rec = doJSON(t, router, http.MethodPut, base+"/customer", map[string]interface{}{
		"name": "Ivan", "email": "ivan@example.com", "phone": "+79991234567",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// customer_info -> payment
	rec = doJSON(t, router, http.MethodPost, base+"/advance", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Оплата
	rec = doJSON(t, router, http.MethodPut, base+"/payment", map[string]interface{}{"method": "card"})
	require.Equal(t, http.StatusOK, rec.Code)

	// Фиксация
	rec = doJSON(t, router, http.MethodPost, base+"/commit", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var commitResp struct {
		BookingReference string                          `json:"bookingReference"`
		State            *handlers.CheckoutStateResponse `json:"state"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &commitResp))
	assert.Equal(t, "ref-123", commitResp.BookingReference)
	assert.Equal(t, "confirmation", commitResp.State.Step)

	// Сессия осталась жива и стоит на confirmation
	rec = doJSON(t, router, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	state = decodeState(t, rec)
	assert.Equal(t, "confirmation", state.Step)
	require.NotNil(t, state.BookingReference)
	assert.Equal(t, "ref-123", *state.BookingReference)
}

func TestCheckoutFlow_AdvanceBlockedReturnsDetails(t *testing.T) {
	router := newTestRouter(&fakeCommitter{})

	rec := doJSON(t, router, http.MethodPost, "/api/v1/checkout-sessions", nil)
	sessionID := decodeState(t, rec).SessionID

	// Услуга без мастера: advance отбивается с конкретной причиной
	base := "/api/v1/checkout-sessions/" + sessionID
	rec = doJSON(t, router, http.MethodPut, base+"/services", map[string]interface{}{
		"services": []map[string]interface{}{{"serviceId": 2}},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, base+"/advance", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var errResp handlers.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Contains(t, errResp.Details, "Coloring")
}

func TestCheckoutFlow_ConflictAtCommit(t *testing.T) {
	committer := &fakeCommitter{err: fmt.Errorf("%w: slot taken", checkout.ErrConflictAtCommit)}
	router := newTestRouter(committer)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/checkout-sessions", nil)
	sessionID := decodeState(t, rec).SessionID
	base := "/api/v1/checkout-sessions/" + sessionID

	doJSON(t, router, http.MethodPut, base+"/services", map[string]interface{}{
		"services": []map[string]interface{}{{"serviceId": 1, "staffId": 10}},
	})
	doJSON(t, router, http.MethodPut, base+"/schedule", map[string]interface{}{
		"date": "2026-09-15", "startTime": "10:00",
	})
	doJSON(t, router, http.MethodPut, base+"/customer", map[string]interface{}{
		"name": "Ivan", "email": "ivan@example.com", "phone": "+79991234567",
	})
	doJSON(t, router, http.MethodPut, base+"/payment", map[string]interface{}{"method": "cash"})

	rec = doJSON(t, router, http.MethodPost, base+"/commit", nil)
	require.Equal(t, http.StatusConflict, rec.Code)

	// Сессия вернулась на выбор времени, остальное сохранено
	rec = doJSON(t, router, http.MethodGet, base, nil)
	state := decodeState(t, rec)
	assert.Equal(t, "datetime", state.Step)
	assert.Len(t, state.Services, 1)
	require.NotNil(t, state.PaymentMethod)
	assert.Equal(t, "cash", *state.PaymentMethod)
}

func TestCheckoutFlow_UnknownSession(t *testing.T) {
	router := newTestRouter(&fakeCommitter{})

	rec := doJSON(t, router, http.MethodGet, "/api/v1/checkout-sessions/no-such-id", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/checkout-sessions/no-such-id/advance", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
