package checkout

import "fmt"

// Step is one stage of the linear checkout flow.
type Step int

const (
	StepServices Step = iota
	StepProducts
	StepDateTime
	StepCustomerInfo
	StepPayment
	StepConfirmation
)

var stepNames = map[Step]string{
	StepServices:     "services",
	StepProducts:     "products",
	StepDateTime:     "datetime",
	StepCustomerInfo: "customer_info",
	StepPayment:      "payment",
	StepConfirmation: "confirmation",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("step(%d)", int(s))
}

// ParseStep converts a wire name back into a Step.
func ParseStep(name string) (Step, error) {
	for step, n := range stepNames {
		if n == name {
			return step, nil
		}
	}
	return 0, fmt.Errorf("checkout: unknown step %q", name)
}

// next returns the following step. Confirmation is terminal.
func (s Step) next() Step {
	if s >= StepConfirmation {
		return StepConfirmation
	}
	return s + 1
}
