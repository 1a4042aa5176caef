package checkout

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CheckoutService/internal/domain"
	"github.com/m04kA/SMC-CheckoutService/internal/integrations/catalogservice"
	"github.com/m04kA/SMC-CheckoutService/pkg/types"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

type fakeCatalog struct {
	services map[int64]*catalogservice.Service
	products map[int64]*catalogservice.Product
}

func (f *fakeCatalog) GetService(_ context.Context, id int64) (*catalogservice.Service, error) {
	if s, ok := f.services[id]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("%w: id=%d", catalogservice.ErrServiceNotFound, id)
}

func (f *fakeCatalog) GetProduct(_ context.Context, id int64) (*catalogservice.Product, error) {
	if p, ok := f.products[id]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("%w: id=%d", catalogservice.ErrProductNotFound, id)
}

type fakeAvailability struct {
	eligible      map[int64][]catalogservice.Staff
	eligibleCalls int

	busyStaff map[int64]bool
	staffErr  error

	slotConflict bool
	slotErr      error

	windowErr error
}

func (f *fakeAvailability) EligibleStaff(_ context.Context, serviceID int64, _ *time.Time) ([]catalogservice.Staff, error) {
	f.eligibleCalls++
	return f.eligible[serviceID], nil
}

func (f *fakeAvailability) CheckStaffAvailability(_ context.Context, staffID int64, _ time.Time, _, _ types.TimeString) (bool, error) {
	if f.staffErr != nil {
		return false, f.staffErr
	}
	return !f.busyStaff[staffID], nil
}

func (f *fakeAvailability) CheckSlotConflict(_ context.Context, _ time.Time, _, _ types.TimeString) (bool, error) {
	if f.slotErr != nil {
		return false, f.slotErr
	}
	return f.slotConflict, nil
}

func (f *fakeAvailability) ValidateWindow(_ context.Context, _ domain.AppointmentWindow, _ time.Time) error {
	return f.windowErr
}

type fakeCommitter struct {
	reference string
	err       error
	calls     int
	last      Selection
}

func (f *fakeCommitter) Commit(_ context.Context, selection Selection) (string, error) {
	f.calls++
	f.last = selection
	if f.err != nil {
		return "", f.err
	}
	return f.reference, nil
}

func newTestOrchestrator() (*Orchestrator, *fakeCatalog, *fakeAvailability, *fakeCommitter) {
	catalog := &fakeCatalog{
		services: map[int64]*catalogservice.Service{
			1: {ID: 1, Name: "Haircut", Price: 1500, DurationMinutes: 30, IsActive: true},
			2: {ID: 2, Name: "Coloring", Price: 4000, DurationMinutes: 45, IsActive: true},
		},
		products: map[int64]*catalogservice.Product{
			7: {ID: 7, Name: "Shampoo", Price: 800, IsActive: true},
		},
	}
	avail := &fakeAvailability{
		eligible: map[int64][]catalogservice.Staff{
			1: {{ID: 10, Name: "Anna"}, {ID: 11, Name: "Olga"}},
			2: {{ID: 11, Name: "Olga"}},
		},
		busyStaff: map[int64]bool{},
	}
	committer := &fakeCommitter{reference: "ref-123"}

	o := NewOrchestrator(catalog, avail, committer, nopLogger{}).
		WithTimeProvider(fixedTime{now: time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)})
	return o, catalog, avail, committer
}

// fillToPayment проводит сессию до шага payment включительно.
func fillToPayment(t *testing.T, o *Orchestrator) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, o.SelectService(ctx, 1))
	require.NoError(t, o.SelectService(ctx, 2))
	require.NoError(t, o.AssignStaff(ctx, 1, 10))
	require.NoError(t, o.AssignStaff(ctx, 2, 11))
	require.NoError(t, o.Advance(ctx)) // services -> products

	require.NoError(t, o.SelectProduct(ctx, 7, 2))
	require.NoError(t, o.Advance(ctx)) // products -> datetime

	require.NoError(t, o.SetSchedule(time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC), "10:00"))
	require.NoError(t, o.Advance(ctx)) // datetime -> customer_info

	o.SetCustomer(CustomerInfo{Name: "Ivan", Email: "ivan@example.com", Phone: "+79991234567"})
	require.NoError(t, o.Advance(ctx)) // customer_info -> payment

	require.NoError(t, o.SetPayment(domain.PaymentCard))
	require.Equal(t, StepPayment, o.Step())
}

func TestOrchestrator_HappyPath(t *testing.T) {
	o, _, _, committer := newTestOrchestrator()
	ctx := context.Background()

	fillToPayment(t, o)

	sel := o.Selection()
	assert.Equal(t, 1500.0+4000.0+1600.0, sel.Total())
	assert.Equal(t, 75, sel.Duration())
	end, err := sel.EndTime()
	require.NoError(t, err)
	assert.Equal(t, "11:15", end.String())

	reference, err := o.Commit(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ref-123", reference)
	assert.Equal(t, StepConfirmation, o.Step())
	assert.Equal(t, "ref-123", o.LastReference())
	assert.Equal(t, 1, committer.calls)

	// Зафиксированный selection передан целиком
	assert.Len(t, committer.last.Services, 2)
	assert.Len(t, committer.last.Products, 1)

	// Selection сессии очищен
	assert.Empty(t, o.Selection().Services)
	assert.Empty(t, o.Selection().Products)
}

func TestOrchestrator_AdvanceBlockedByUnassignedStaff(t *testing.T) {
	o, _, _, _ := newTestOrchestrator()
	ctx := context.Background()

	require.NoError(t, o.SelectService(ctx, 2))

	err := o.Advance(ctx)
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, StepServices, verr.Step)
	assert.Contains(t, verr.Reason, "id=2")
	assert.Contains(t, verr.Reason, "Coloring")
	assert.Equal(t, StepServices, o.Step())
}

func TestOrchestrator_AssignStaffNotEligible(t *testing.T) {
	o, _, _, _ := newTestOrchestrator()
	ctx := context.Background()

	require.NoError(t, o.SelectService(ctx, 2))

	// Anna (id=10) не входит в eligible-список услуги 2
	err := o.AssignStaff(ctx, 2, 10)
	assert.ErrorIs(t, err, ErrStaffNotEligible)

	err = o.AssignStaff(ctx, 99, 10)
	assert.ErrorIs(t, err, ErrInvalidSelection)
}

func TestOrchestrator_EligibleStaffCached(t *testing.T) {
	o, _, avail, _ := newTestOrchestrator()
	ctx := context.Background()

	require.NoError(t, o.SelectService(ctx, 1))

	_, err := o.EligibleStaff(ctx, 1)
	require.NoError(t, err)
	_, err = o.EligibleStaff(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, avail.eligibleCalls)

	// Смена даты сбрасывает кэш
	require.NoError(t, o.SetSchedule(time.Date(2026, 9, 16, 0, 0, 0, 0, time.UTC), "10:00"))
	_, err = o.EligibleStaff(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, avail.eligibleCalls)
}

func TestOrchestrator_AdvisoryStaffCheckOnAssign(t *testing.T) {
	o, _, avail, _ := newTestOrchestrator()
	ctx := context.Background()

	require.NoError(t, o.SelectService(ctx, 1))
	require.NoError(t, o.SetSchedule(time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC), "10:00"))

	avail.busyStaff[10] = true
	err := o.AssignStaff(ctx, 1, 10)
	assert.ErrorIs(t, err, ErrStaffUnavailable)

	// Без выбранной даты advisory-проверка не выполняется
	o2, _, avail2, _ := newTestOrchestrator()
	avail2.busyStaff[10] = true
	require.NoError(t, o2.SelectService(ctx, 1))
	assert.NoError(t, o2.AssignStaff(ctx, 1, 10))
}

func TestOrchestrator_ScheduleChecksOnAdvance(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*Orchestrator, *fakeAvailability) {
		o, _, avail, _ := newTestOrchestrator()
		require.NoError(t, o.SelectService(ctx, 1))
		require.NoError(t, o.AssignStaff(ctx, 1, 10))
		require.NoError(t, o.Advance(ctx))
		require.NoError(t, o.Advance(ctx))
		require.Equal(t, StepDateTime, o.Step())
		require.NoError(t, o.SetSchedule(time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC), "10:00"))
		return o, avail
	}

	t.Run("window rejected", func(t *testing.T) {
		o, avail := setup(t)
		avail.windowErr = errors.New("salon closed")
		err := o.Advance(ctx)
		require.Error(t, err)
		assert.Equal(t, StepDateTime, o.Step())
	})

	t.Run("staff busy", func(t *testing.T) {
		o, avail := setup(t)
		avail.busyStaff[10] = true
		err := o.Advance(ctx)
		assert.ErrorIs(t, err, ErrStaffUnavailable)
		assert.Equal(t, StepDateTime, o.Step())
	})

	t.Run("salon capacity exhausted", func(t *testing.T) {
		o, avail := setup(t)
		avail.slotConflict = true
		err := o.Advance(ctx)
		assert.ErrorIs(t, err, ErrSlotUnavailable)
		assert.Equal(t, StepDateTime, o.Step())
	})

	t.Run("backend failure propagates", func(t *testing.T) {
		o, avail := setup(t)
		avail.slotErr = errors.New("db down")
		err := o.Advance(ctx)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrSlotUnavailable)
		assert.Equal(t, StepDateTime, o.Step())
	})

	t.Run("all checks pass", func(t *testing.T) {
		o, _ := setup(t)
		require.NoError(t, o.Advance(ctx))
		assert.Equal(t, StepCustomerInfo, o.Step())
	})
}

func TestOrchestrator_ServiceSetChangeInvalidatesSchedule(t *testing.T) {
	o, _, _, _ := newTestOrchestrator()
	ctx := context.Background()

	require.NoError(t, o.SelectService(ctx, 1))
	require.NoError(t, o.AssignStaff(ctx, 1, 10))
	require.NoError(t, o.Advance(ctx))
	require.NoError(t, o.Advance(ctx))
	require.NoError(t, o.SetSchedule(time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC), "10:00"))

	// Добавление услуги меняет суммарную длительность - расписание сброшено
	require.NoError(t, o.SelectService(ctx, 2))

	sel := o.Selection()
	assert.True(t, sel.Date.IsZero())
	assert.True(t, sel.StartTime.IsZero())

	// Повторный выбор уже выбранной услуги ничего не сбрасывает
	require.NoError(t, o.SetSchedule(time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC), "10:00"))
	require.NoError(t, o.SelectService(ctx, 1))
	assert.False(t, o.Selection().Date.IsZero())
}

func TestOrchestrator_GoTo(t *testing.T) {
	o, _, _, _ := newTestOrchestrator()
	ctx := context.Background()

	fillToPayment(t, o)

	// Назад свободно
	require.NoError(t, o.GoTo(ctx, StepServices))
	assert.Equal(t, StepServices, o.Step())

	// Вперёд по валидной цепочке
	require.NoError(t, o.GoTo(ctx, StepPayment))
	assert.Equal(t, StepPayment, o.Step())

	// Confirmation через навигацию недостижим
	err := o.GoTo(ctx, StepConfirmation)
	assert.ErrorIs(t, err, ErrForwardJump)
}

func TestOrchestrator_GoToForwardBlockedByInvalidStep(t *testing.T) {
	o, _, _, _ := newTestOrchestrator()
	ctx := context.Background()

	require.NoError(t, o.SelectService(ctx, 1))
	require.NoError(t, o.AssignStaff(ctx, 1, 10))

	// Прыжок к оплате мимо незаполненного datetime
	err := o.GoTo(ctx, StepPayment)
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, StepDateTime, verr.Step)
	assert.Equal(t, StepServices, o.Step())
}

func TestOrchestrator_ConflictAtCommitReturnsToDateTime(t *testing.T) {
	o, _, _, committer := newTestOrchestrator()
	ctx := context.Background()

	fillToPayment(t, o)
	committer.err = fmt.Errorf("%w: slot taken", ErrConflictAtCommit)

	_, err := o.Commit(ctx)
	assert.ErrorIs(t, err, ErrConflictAtCommit)
	assert.Equal(t, StepDateTime, o.Step())

	// Всё, кроме подтверждения, сохранено
	sel := o.Selection()
	assert.Len(t, sel.Services, 2)
	assert.Len(t, sel.Products, 1)
	assert.Equal(t, "Ivan", sel.Customer.Name)
	assert.Equal(t, domain.PaymentCard, sel.Payment)

	// После выбора нового времени commit проходит
	committer.err = nil
	require.NoError(t, o.SetSchedule(time.Date(2026, 9, 16, 0, 0, 0, 0, time.UTC), "12:00"))
	require.NoError(t, o.GoTo(ctx, StepPayment))

	reference, err := o.Commit(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ref-123", reference)
	assert.Equal(t, StepConfirmation, o.Step())
}

func TestOrchestrator_CommitFailureKeepsStep(t *testing.T) {
	o, _, _, committer := newTestOrchestrator()
	ctx := context.Background()

	fillToPayment(t, o)
	committer.err = fmt.Errorf("%w: write failed", ErrCommitFailed)

	_, err := o.Commit(ctx)
	assert.ErrorIs(t, err, ErrCommitFailed)

	// Никакого автоматического повтора и никакой потери выбора
	assert.Equal(t, StepPayment, o.Step())
	assert.Equal(t, 1, committer.calls)
	assert.Len(t, o.Selection().Services, 2)
}

func TestOrchestrator_CommitValidatesWholeSelection(t *testing.T) {
	o, _, _, committer := newTestOrchestrator()
	ctx := context.Background()

	require.NoError(t, o.SelectService(ctx, 1))

	_, err := o.Commit(ctx)
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, 0, committer.calls)
}

func TestOrchestrator_AdvanceFromPaymentOnlyViaCommit(t *testing.T) {
	o, _, _, _ := newTestOrchestrator()
	ctx := context.Background()

	fillToPayment(t, o)

	err := o.Advance(ctx)
	require.Error(t, err)
	assert.Equal(t, StepPayment, o.Step())
}

func TestOrchestrator_Reset(t *testing.T) {
	o, _, _, _ := newTestOrchestrator()

	fillToPayment(t, o)
	o.Reset()

	assert.Equal(t, StepServices, o.Step())
	assert.Empty(t, o.Selection().Services)
	assert.Empty(t, o.Selection().Products)
	assert.True(t, o.Selection().Date.IsZero())
	assert.Equal(t, "", o.LastReference())
}

func TestOrchestrator_StepChangeCallback(t *testing.T) {
	o, _, _, _ := newTestOrchestrator()
	ctx := context.Background()

	var transitions []string
	o.OnStepChange = func(from, to Step) {
		transitions = append(transitions, fmt.Sprintf("%s->%s", from, to))
	}

	fillToPayment(t, o)
	_, err := o.Commit(ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"services->products",
		"products->datetime",
		"datetime->customer_info",
		"customer_info->payment",
		"payment->confirmation",
	}, transitions)
}
