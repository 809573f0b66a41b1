package swap

import (
	"go-currency-swap/convert"
	"go-currency-swap/domain"
)

// Snapshot is a consistent view of a machine and everything derived from it
type Snapshot struct {
	// Version increases with every state change
	Version uint64

	From domain.Slot
	To   domain.Slot

	Rate          domain.Rate
	RateAvailable bool

	Fee           string
	ReceiveAmount string
	Errors        []domain.ValidationError

	IsFromAmountCalculating bool
	IsToAmountCalculating   bool
}

// FieldError returns the message for field, or "" when it has none
func (s Snapshot) FieldError(field domain.Field) string {
	for _, e := range s.Errors {
		if e.Field == field {
			return e.Message
		}
	}
	return ""
}

// CanExchange reports whether the exchange action should be enabled: both
// amounts are present and non-zero and nothing fails validation.
func (s Snapshot) CanExchange() bool {
	if s.From.Amount == "" || s.To.Amount == "" {
		return false
	}
	if convert.Parse(s.From.Amount) == 0 || convert.Parse(s.To.Amount) == 0 {
		return false
	}
	return len(s.Errors) == 0
}
