package domain

// Currency a currency code
type Currency string

// Rate an exchange rate
type Rate float64

// Rates maps a currency to its rate against a common base unit
type Rates map[Currency]Rate

// Slot one side of a conversion. Amount is the raw text the user typed
// (or the formatted counterpart), never a parsed number.
type Slot struct {
	Currency Currency `json:"currency"`
	Amount   string   `json:"amount"`
}

// Pair the from/to state of a swap form
type Pair struct {
	From Slot `json:"from"`
	To   Slot `json:"to"`
}

// Field identifies the amount field a validation error belongs to
type Field string

const (
	FromAmount Field = "from_amount"
	ToAmount   Field = "to_amount"
)

// ValidationError an advisory error scoped to one amount field
type ValidationError struct {
	Field   Field  `json:"field"`
	Message string `json:"message"`
}

// Exchanged the result of a one-shot conversion
type Exchanged struct {
	Rate    Rate
	Amount  string
	Fee     string
	Receive string
}
