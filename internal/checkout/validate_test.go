package checkout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CheckoutService/internal/domain"
)

func assignedSelection(t *testing.T) Selection {
	t.Helper()
	sel := NewSelection().
		SelectService(1, "Haircut", 1500, 30).
		SelectService(2, "Coloring", 4000, 45)
	sel, err := sel.AssignStaff(1, 10, "Anna")
	require.NoError(t, err)
	sel, err = sel.AssignStaff(2, 11, "Olga")
	require.NoError(t, err)
	return sel
}

func TestValidateStep_Services(t *testing.T) {
	// Пустой selection: услуги не выбраны
	verr := NewSelection().ValidateStep(StepServices)
	require.NotNil(t, verr)
	assert.Equal(t, StepServices, verr.Step)
	assert.Equal(t, "services", verr.Field)

	// Услуга без мастера: ошибка называет конкретную услугу
	sel := NewSelection().SelectService(2, "Coloring", 4000, 45)
	verr = sel.ValidateStep(StepServices)
	require.NotNil(t, verr)
	assert.Equal(t, "staff", verr.Field)
	assert.Contains(t, verr.Reason, "id=2")
	assert.Contains(t, verr.Reason, "Coloring")

	// Все услуги с мастерами - шаг валиден
	assert.Nil(t, assignedSelection(t).ValidateStep(StepServices))
}

func TestValidateStep_ProductsAlwaysValid(t *testing.T) {
	assert.Nil(t, NewSelection().ValidateStep(StepProducts))
	assert.Nil(t, assignedSelection(t).ValidateStep(StepProducts))
}

func TestValidateStep_DateTime(t *testing.T) {
	sel := assignedSelection(t)

	verr := sel.ValidateStep(StepDateTime)
	require.NotNil(t, verr)
	assert.Equal(t, "date", verr.Field)

	sel = sel.SetSchedule(time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC), "")
	verr = sel.ValidateStep(StepDateTime)
	require.NotNil(t, verr)
	assert.Equal(t, "start_time", verr.Field)

	// Окно вылезает за полночь
	late := sel.SetSchedule(time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC), "23:45")
	verr = late.ValidateStep(StepDateTime)
	require.NotNil(t, verr)
	assert.Contains(t, verr.Reason, "end time")

	sel = sel.SetSchedule(time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC), "10:00")
	assert.Nil(t, sel.ValidateStep(StepDateTime))
}

func TestValidateStep_Customer(t *testing.T) {
	tests := []struct {
		name      string
		customer  CustomerInfo
		wantField string
	}{
		{name: "empty name", customer: CustomerInfo{Email: "a@b.com", Phone: "+79991234567"}, wantField: "name"},
		{name: "blank name", customer: CustomerInfo{Name: "   ", Email: "a@b.com", Phone: "+79991234567"}, wantField: "name"},
		{name: "empty email", customer: CustomerInfo{Name: "Ivan", Phone: "+79991234567"}, wantField: "email"},
		{name: "malformed email", customer: CustomerInfo{Name: "Ivan", Email: "not-an-email", Phone: "+79991234567"}, wantField: "email"},
		{name: "empty phone", customer: CustomerInfo{Name: "Ivan", Email: "a@b.com"}, wantField: "phone"},
		{name: "short phone", customer: CustomerInfo{Name: "Ivan", Email: "a@b.com", Phone: "12345"}, wantField: "phone"},
		{name: "phone with letters", customer: CustomerInfo{Name: "Ivan", Email: "a@b.com", Phone: "+7999abc4567"}, wantField: "phone"},
		{name: "valid", customer: CustomerInfo{Name: "Ivan", Email: "a@b.com", Phone: "+7 (999) 123-45-67"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := NewSelection().SetCustomer(tt.customer)
			verr := sel.ValidateStep(StepCustomerInfo)
			if tt.wantField == "" {
				assert.Nil(t, verr)
				return
			}
			require.NotNil(t, verr)
			assert.Equal(t, tt.wantField, verr.Field)
		})
	}
}

func TestValidateStep_Payment(t *testing.T) {
	verr := NewSelection().ValidateStep(StepPayment)
	require.NotNil(t, verr)
	assert.Equal(t, "payment_method", verr.Field)

	sel := NewSelection().SetPayment(domain.PaymentMethod("crypto"))
	verr = sel.ValidateStep(StepPayment)
	require.NotNil(t, verr)
	assert.Contains(t, verr.Reason, "crypto")

	for _, method := range domain.PaymentMethods {
		assert.Nil(t, NewSelection().SetPayment(method).ValidateStep(StepPayment))
	}
}

func TestValidateStep_ConfirmationNeverAdvanceable(t *testing.T) {
	verr := assignedSelection(t).ValidateStep(StepConfirmation)
	require.NotNil(t, verr)
}

func TestParseStep(t *testing.T) {
	for step, name := range map[Step]string{
		StepServices:     "services",
		StepProducts:     "products",
		StepDateTime:     "datetime",
		StepCustomerInfo: "customer_info",
		StepPayment:      "payment",
		StepConfirmation: "confirmation",
	} {
		parsed, err := ParseStep(name)
		require.NoError(t, err)
		assert.Equal(t, step, parsed)
		assert.Equal(t, name, step.String())
	}

	_, err := ParseStep("unknown")
	assert.Error(t, err)
}
