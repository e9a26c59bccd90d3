package ledger

import (
	"github.com/frahmantamala/budget-story/internal"
)

// IncomeRequest is the payload of PUT /ledger/income. Income is a pointer so
// a missing field is told apart from zero.
type IncomeRequest struct {
	Income *float64 `json:"income"`
}

func (dto IncomeRequest) Validate() error {
	if dto.Income == nil {
		return internal.NewValidationFieldError("income", "income is required", internal.ErrCodeInvalidIncome)
	}
	return nil
}

// ExpenseRequest is the payload for creating or replacing an expense.
type ExpenseRequest struct {
	Name     string   `json:"name"`
	Value    *float64 `json:"value"`
	Category string   `json:"category"`
}

func (dto ExpenseRequest) Validate() error {
	if dto.Value == nil {
		return internal.NewValidationFieldError("value", "value is required", internal.ErrCodeInvalidValue)
	}
	return nil
}

// MutationResponse wraps the ledger produced by a change. Warning is set when
// the change is live but could not be written to storage.
type MutationResponse struct {
	Ledger  Ledger `json:"ledger"`
	Warning string `json:"warning,omitempty"`
}
