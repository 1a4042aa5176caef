package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-CheckoutService/internal/domain"
	"github.com/m04kA/SMC-CheckoutService/internal/integrations/catalogservice"
	"github.com/m04kA/SMC-CheckoutService/pkg/types"
)

// Orchestrator drives one checkout session through the linear step flow
// Services → Products → DateTime → CustomerInfo → Payment → Confirmation.
// Forward navigation is gated by per-step predicates; backward navigation is
// free within already-validated steps. The orchestrator owns the session's
// Selection exclusively and is not safe for concurrent use: the session
// registry serializes access.
type Orchestrator struct {
	catalog      CatalogReader
	availability AvailabilityChecker
	committer    Committer
	timeProvider TimeProvider
	logger       Logger

	selection Selection
	step      Step

	// highestValidated is the highest step whose predicate has held at
	// least once; -1 until the first successful Advance. Backward GoTo is
	// bounded by it.
	highestValidated int

	// eligible caches per-service eligible staff for the session. The cache
	// key includes the chosen date: changing the date drops it.
	eligible     map[int64][]catalogservice.Staff
	eligibleDate time.Time

	commitInFlight bool
	lastReference  string

	// UI event callbacks, optional.
	OnStepChange    func(from, to Step)
	OnCommitSuccess func(reference string)
	OnCommitError   func(err error)
}

// NewOrchestrator creates an orchestrator with an empty selection at the
// Services step.
func NewOrchestrator(
	catalog CatalogReader,
	availability AvailabilityChecker,
	committer Committer,
	logger Logger,
) *Orchestrator {
	return &Orchestrator{
		catalog:          catalog,
		availability:     availability,
		committer:        committer,
		timeProvider:     &RealTimeProvider{},
		logger:           logger,
		selection:        NewSelection(),
		step:             StepServices,
		highestValidated: -1,
		eligible:         make(map[int64][]catalogservice.Staff),
	}
}

// WithTimeProvider replaces the time source, used in tests.
func (o *Orchestrator) WithTimeProvider(tp TimeProvider) *Orchestrator {
	o.timeProvider = tp
	return o
}

// Step returns the current step.
func (o *Orchestrator) Step() Step {
	return o.step
}

// Selection returns a snapshot of the current selection. Selection is a
// value, so the caller cannot mutate session state through it.
func (o *Orchestrator) Selection() Selection {
	return o.selection
}

// LastReference returns the booking reference of the last successful commit,
// empty before any commit.
func (o *Orchestrator) LastReference() string {
	return o.lastReference
}

// CommitInFlight reports whether a commit call is outstanding.
func (o *Orchestrator) CommitInFlight() bool {
	return o.commitInFlight
}

// SelectService adds a service to the selection, snapshotting its current
// price and duration from the catalog.
func (o *Orchestrator) SelectService(ctx context.Context, serviceID int64) error {
	if o.selection.HasService(serviceID) {
		return nil
	}

	service, err := o.catalog.GetService(ctx, serviceID)
	if err != nil {
		o.logger.Error("Checkout: failed to fetch service id=%d: %v", serviceID, err)
		return err
	}

	updated := o.selection.SelectService(service.ID, service.Name, service.Price, service.DurationMinutes)
	o.applyServiceSetChange(updated)
	o.logger.Info("Checkout: service id=%d (%s) selected, total=%.2f", service.ID, service.Name, o.selection.Total())
	return nil
}

// UnselectService removes a service and its staff assignment.
func (o *Orchestrator) UnselectService(serviceID int64) {
	if !o.selection.HasService(serviceID) {
		return
	}
	updated := o.selection.UnselectService(serviceID)
	o.applyServiceSetChange(updated)
	o.logger.Info("Checkout: service id=%d unselected", serviceID)
}

// applyServiceSetChange installs a new selection and, when the set of chosen
// services actually changed, invalidates everything derived from it: the
// schedule, the eligible-staff cache and the validation watermark. Products,
// customer info and payment survive.
func (o *Orchestrator) applyServiceSetChange(updated Selection) {
	if o.selection.SameServiceSet(updated) {
		o.selection = updated
		return
	}

	o.selection = updated.ClearSchedule()
	o.eligible = make(map[int64][]catalogservice.Staff)
	o.eligibleDate = time.Time{}
	if o.highestValidated > int(StepServices) {
		o.highestValidated = int(StepServices) - 1
	}
}

// AssignStaff assigns a staff member to a chosen service. The staff member
// must appear in the service's eligible list; when a date is already chosen,
// an advisory availability check runs as well. The commit-time recheck stays
// authoritative.
func (o *Orchestrator) AssignStaff(ctx context.Context, serviceID, staffID int64) error {
	if !o.selection.HasService(serviceID) {
		return fmt.Errorf("%w: service id=%d is not selected", ErrInvalidSelection, serviceID)
	}

	eligible, err := o.EligibleStaff(ctx, serviceID)
	if err != nil {
		return err
	}

	var staff *catalogservice.Staff
	for i := range eligible {
		if eligible[i].ID == staffID {
			staff = &eligible[i]
			break
		}
	}
	if staff == nil {
		o.logger.Warn("Checkout: staff id=%d is not eligible for service id=%d", staffID, serviceID)
		return fmt.Errorf("%w: staff id=%d, service id=%d", ErrStaffNotEligible, staffID, serviceID)
	}

	if !o.selection.Date.IsZero() && !o.selection.StartTime.IsZero() {
		window, err := o.selection.Window()
		if err == nil {
			free, err := o.availability.CheckStaffAvailability(ctx, staffID, window.Date, window.StartTime, window.EndTime)
			if err != nil {
				o.logger.Error("Checkout: advisory availability check failed for staff id=%d: %v", staffID, err)
				return err
			}
			if !free {
				o.logger.Warn("Checkout: staff id=%d is busy in the chosen slot", staffID)
				return fmt.Errorf("%w: staff id=%d", ErrStaffUnavailable, staffID)
			}
		}
	}

	updated, err := o.selection.AssignStaff(serviceID, staffID, staff.Name)
	if err != nil {
		return err
	}
	o.selection = updated
	o.logger.Info("Checkout: staff id=%d (%s) assigned to service id=%d", staffID, staff.Name, serviceID)
	return nil
}

// SelectProduct adds a product with the given quantity (0 defaults to 1),
// snapshotting its current price from the catalog.
func (o *Orchestrator) SelectProduct(ctx context.Context, productID int64, quantity int) error {
	product, err := o.catalog.GetProduct(ctx, productID)
	if err != nil {
		o.logger.Error("Checkout: failed to fetch product id=%d: %v", productID, err)
		return err
	}

	updated, err := o.selection.SelectProduct(product.ID, product.Name, product.Price, quantity)
	if err != nil {
		return err
	}
	o.selection = updated
	o.logger.Info("Checkout: product id=%d (%s) x%d selected", product.ID, product.Name, quantity)
	return nil
}

// UnselectProduct removes a product from the selection.
func (o *Orchestrator) UnselectProduct(productID int64) {
	o.selection = o.selection.UnselectProduct(productID)
}

// SetSchedule sets the appointment date and start time. Changing the date
// drops the eligible-staff cache and requires the date/time step to be
// re-validated.
func (o *Orchestrator) SetSchedule(date time.Time, start types.TimeString) error {
	if err := start.Validate(); err != nil {
		return newValidationError(StepDateTime, "start_time", "invalid start time: %v", err)
	}

	dateChanged := !o.selection.Date.Equal(date)
	o.selection = o.selection.SetSchedule(date, start)

	if dateChanged {
		o.eligible = make(map[int64][]catalogservice.Staff)
		o.eligibleDate = time.Time{}
	}
	if o.highestValidated > int(StepProducts) {
		o.highestValidated = int(StepProducts)
	}
	return nil
}

// SetCustomer sets the customer contact details.
func (o *Orchestrator) SetCustomer(customer CustomerInfo) {
	o.selection = o.selection.SetCustomer(customer)
}

// SetPayment records the chosen payment method.
func (o *Orchestrator) SetPayment(method domain.PaymentMethod) error {
	if !method.IsValid() {
		return newValidationError(StepPayment, "payment_method", "unknown payment method %q", string(method))
	}
	o.selection = o.selection.SetPayment(method)
	return nil
}

// EligibleStaff returns staff qualified for a chosen service, fetched lazily
// and cached for the session. When a date is chosen the list is additionally
// filtered to staff free on that date; the cache is keyed by that date.
func (o *Orchestrator) EligibleStaff(ctx context.Context, serviceID int64) ([]catalogservice.Staff, error) {
	if !o.selection.HasService(serviceID) {
		return nil, fmt.Errorf("%w: service id=%d is not selected", ErrInvalidSelection, serviceID)
	}

	if !o.eligibleDate.Equal(o.selection.Date) {
		o.eligible = make(map[int64][]catalogservice.Staff)
		o.eligibleDate = o.selection.Date
	}

	if cached, ok := o.eligible[serviceID]; ok {
		return cached, nil
	}

	var date *time.Time
	if !o.selection.Date.IsZero() {
		d := o.selection.Date
		date = &d
	}

	staff, err := o.availability.EligibleStaff(ctx, serviceID, date)
	if err != nil {
		o.logger.Error("Checkout: failed to fetch eligible staff for service id=%d: %v", serviceID, err)
		return nil, err
	}

	o.eligible[serviceID] = staff
	return staff, nil
}

// StepValid evaluates the pure predicate of a step against the current
// selection without advancing.
func (o *Orchestrator) StepValid(step Step) *ValidationError {
	return o.selection.ValidateStep(step)
}

// Advance validates the current step and moves to the next one. On a
// predicate failure the step does not change and the specific unmet
// condition is returned as a *ValidationError. For the date/time step the
// schedule and availability checks run here as well; their backend failures
// propagate unchanged so the UI can offer a retry.
func (o *Orchestrator) Advance(ctx context.Context) error {
	if o.commitInFlight {
		return ErrCommitInFlight
	}
	if o.step == StepConfirmation {
		return newValidationError(o.step, "step", "confirmation is terminal")
	}

	if verr := o.selection.ValidateStep(o.step); verr != nil {
		o.logger.Warn("Checkout: advance from %s blocked: %s", o.step, verr.Reason)
		return verr
	}

	if o.step == StepDateTime {
		if err := o.checkSchedule(ctx); err != nil {
			return err
		}
	}

	if o.step == StepPayment {
		// Payment is left by committing, not by advancing.
		return newValidationError(o.step, "step", "confirmation is reached by committing the booking")
	}

	o.moveTo(o.step.next(), true)
	return nil
}

// checkSchedule runs the I/O half of the date/time predicate: business
// hours, horizon and notice via the schedule, then advisory staff and
// slot-capacity checks against current persisted data.
func (o *Orchestrator) checkSchedule(ctx context.Context) error {
	window, err := o.selection.Window()
	if err != nil {
		return newValidationError(StepDateTime, "start_time", "cannot derive window: %v", err)
	}

	now := o.timeProvider.Now()
	if err := o.availability.ValidateWindow(ctx, window, now); err != nil {
		o.logger.Warn("Checkout: window %s %s-%s rejected: %v",
			window.Date.Format(domain.DateFormat), window.StartTime, window.EndTime, err)
		return err
	}

	for _, svc := range o.selection.Services {
		if svc.StaffID == nil {
			continue
		}
		free, err := o.availability.CheckStaffAvailability(ctx, *svc.StaffID, window.Date, window.StartTime, window.EndTime)
		if err != nil {
			o.logger.Error("Checkout: availability check failed for staff id=%d: %v", *svc.StaffID, err)
			return err
		}
		if !free {
			o.logger.Warn("Checkout: staff id=%d busy in %s-%s", *svc.StaffID, window.StartTime, window.EndTime)
			return fmt.Errorf("%w: staff id=%d (%s)", ErrStaffUnavailable, *svc.StaffID, svc.StaffName)
		}
	}

	conflict, err := o.availability.CheckSlotConflict(ctx, window.Date, window.StartTime, window.EndTime)
	if err != nil {
		o.logger.Error("Checkout: slot conflict check failed: %v", err)
		return err
	}
	if conflict {
		o.logger.Warn("Checkout: salon capacity exhausted in %s-%s", window.StartTime, window.EndTime)
		return fmt.Errorf("%w: %s %s-%s", ErrSlotUnavailable,
			window.Date.Format(domain.DateFormat), window.StartTime, window.EndTime)
	}

	return nil
}

// GoTo jumps to the given step. Backward jumps are allowed to any step that
// has already been validated (or the current one). Forward jumps are allowed
// only when the predicate of every intervening step holds, including the
// schedule checks for the date/time step. Confirmation is never reachable
// through GoTo.
func (o *Orchestrator) GoTo(ctx context.Context, target Step) error {
	if o.commitInFlight {
		return ErrCommitInFlight
	}
	if target == StepConfirmation {
		return fmt.Errorf("%w: confirmation is reached only by committing", ErrForwardJump)
	}

	if target <= o.step {
		if int(target) > o.highestValidated+1 {
			return fmt.Errorf("%w: step %s has not been reached yet", ErrForwardJump, target)
		}
		o.moveTo(target, false)
		return nil
	}

	for s := o.step; s < target; s++ {
		if verr := o.selection.ValidateStep(s); verr != nil {
			return verr
		}
		if s == StepDateTime {
			if err := o.checkSchedule(ctx); err != nil {
				return err
			}
		}
		if int(s) > o.highestValidated {
			o.highestValidated = int(s)
		}
	}

	o.moveTo(target, false)
	return nil
}

// Reset discards the selection and returns to the Services step. An
// in-flight commit is not cancelled: if it later succeeds the booking exists
// without a session, which is logged and kept (the write is authoritative).
func (o *Orchestrator) Reset() {
	if o.commitInFlight {
		o.logger.Warn("Checkout: reset while commit in flight, a late success will be kept as an orphaned booking")
	}
	o.selection = NewSelection()
	o.eligible = make(map[int64][]catalogservice.Staff)
	o.eligibleDate = time.Time{}
	o.highestValidated = -1
	o.lastReference = ""
	o.moveTo(StepServices, false)
}

// Commit re-validates the whole selection and hands it to the commit
// pipeline. On success the session moves to Confirmation and the selection
// is cleared. On ErrConflictAtCommit the session returns to the date/time
// step with every other choice preserved. No automatic retry happens on any
// failure: a blind retry of a write risks duplicate bookings.
func (o *Orchestrator) Commit(ctx context.Context) (string, error) {
	if o.commitInFlight {
		return "", ErrCommitInFlight
	}

	for s := StepServices; s <= StepPayment; s++ {
		if verr := o.selection.ValidateStep(s); verr != nil {
			o.logger.Warn("Checkout: commit blocked by %s: %s", s, verr.Reason)
			return "", verr
		}
	}

	o.commitInFlight = true
	defer func() { o.commitInFlight = false }()

	reference, err := o.committer.Commit(ctx, o.selection)
	if err != nil {
		if o.OnCommitError != nil {
			o.OnCommitError(err)
		}
		if errors.Is(err, ErrConflictAtCommit) {
			o.logger.Warn("Checkout: conflict at commit, returning to %s: %v", StepDateTime, err)
			o.highestValidated = int(StepProducts)
			o.moveTo(StepDateTime, false)
			return "", err
		}
		o.logger.Error("Checkout: commit failed: %v", err)
		return "", err
	}

	o.logger.Info("Checkout: booking committed, reference=%s", reference)
	o.lastReference = reference
	o.selection = NewSelection()
	o.eligible = make(map[int64][]catalogservice.Staff)
	o.eligibleDate = time.Time{}
	o.highestValidated = int(StepPayment)
	if o.OnCommitSuccess != nil {
		o.OnCommitSuccess(reference)
	}
	o.moveTo(StepConfirmation, false)
	return reference, nil
}

func (o *Orchestrator) moveTo(target Step, validated bool) {
	if validated && int(o.step) > o.highestValidated {
		o.highestValidated = int(o.step)
	}
	if target == o.step {
		return
	}
	from := o.step
	o.step = target
	if o.OnStepChange != nil {
		o.OnStepChange(from, target)
	}
}
