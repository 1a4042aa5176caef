package checkout

import (
	"net/mail"
	"strings"
)

// ValidateStep evaluates the pure part of a step's predicate against the
// selection. It returns nil when the step may be advanced past, or a
// ValidationError naming the first unmet condition. No I/O happens here;
// business-hours and horizon checks need the schedule and run in
// Orchestrator.Advance.
func (s Selection) ValidateStep(step Step) *ValidationError {
	switch step {
	case StepServices:
		return s.validateServices()
	case StepProducts:
		// Optional step, always valid.
		return nil
	case StepDateTime:
		return s.validateDateTime()
	case StepCustomerInfo:
		return s.validateCustomer()
	case StepPayment:
		return s.validatePayment()
	case StepConfirmation:
		// Terminal, reachable only through a successful commit.
		return newValidationError(step, "step", "confirmation is reached by committing, not by advancing")
	default:
		return newValidationError(step, "step", "unknown step")
	}
}

func (s Selection) validateServices() *ValidationError {
	if len(s.Services) == 0 {
		return newValidationError(StepServices, "services", "at least one service must be chosen")
	}
	for _, svc := range s.Services {
		if svc.StaffID == nil {
			return newValidationError(StepServices, "staff",
				"service id=%d (%s) has no staff assignment", svc.ServiceID, svc.ServiceName)
		}
	}
	return nil
}

func (s Selection) validateDateTime() *ValidationError {
	if s.Date.IsZero() {
		return newValidationError(StepDateTime, "date", "appointment date is not set")
	}
	if s.StartTime.IsZero() {
		return newValidationError(StepDateTime, "start_time", "start time is not set")
	}
	if err := s.StartTime.Validate(); err != nil {
		return newValidationError(StepDateTime, "start_time", "invalid start time: %v", err)
	}
	if _, err := s.EndTime(); err != nil {
		return newValidationError(StepDateTime, "start_time", "cannot derive end time: %v", err)
	}
	return nil
}

func (s Selection) validateCustomer() *ValidationError {
	if strings.TrimSpace(s.Customer.Name) == "" {
		return newValidationError(StepCustomerInfo, "name", "customer name is required")
	}
	if strings.TrimSpace(s.Customer.Email) == "" {
		return newValidationError(StepCustomerInfo, "email", "customer email is required")
	}
	if _, err := mail.ParseAddress(s.Customer.Email); err != nil {
		return newValidationError(StepCustomerInfo, "email", "malformed email address %q", s.Customer.Email)
	}
	if strings.TrimSpace(s.Customer.Phone) == "" {
		return newValidationError(StepCustomerInfo, "phone", "customer phone is required")
	}
	if !isValidPhone(s.Customer.Phone) {
		return newValidationError(StepCustomerInfo, "phone", "malformed phone number %q", s.Customer.Phone)
	}
	return nil
}

func (s Selection) validatePayment() *ValidationError {
	if s.Payment == "" {
		return newValidationError(StepPayment, "payment_method", "payment method is not chosen")
	}
	if !s.Payment.IsValid() {
		return newValidationError(StepPayment, "payment_method", "unknown payment method %q", string(s.Payment))
	}
	return nil
}

// isValidPhone accepts an optional leading "+" and at least 7 digits,
// ignoring spaces, dashes and parentheses.
func isValidPhone(phone string) bool {
	digits := 0
	for i, r := range phone {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '+' && i == 0:
		case r == ' ' || r == '-' || r == '(' || r == ')':
		default:
			return false
		}
	}
	return digits >= 7 && digits <= 15
}
