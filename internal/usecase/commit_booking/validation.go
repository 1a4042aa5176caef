package commit_booking

import (
	"fmt"

	"github.com/m04kA/SMC-CheckoutService/internal/checkout"
)

// validateSelection повторно проверяет чистые предикаты всех шагов.
// Оркестратор делает то же самое перед вызовом, но usecase - единственная
// точка записи и не доверяет вызывающей стороне.
func validateSelection(sel checkout.Selection) error {
	for step := checkout.StepServices; step <= checkout.StepPayment; step++ {
		if verr := sel.ValidateStep(step); verr != nil {
			return fmt.Errorf("%w: step %s: %s", ErrInvalidInput, verr.Step, verr.Reason)
		}
	}
	return nil
}
