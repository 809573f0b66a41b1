package swap

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-kit/log"

	"go-currency-swap/domain"
	"go-currency-swap/validate"
)

// DefaultDebounce is the quiet period before an amount edit is propagated
const DefaultDebounce = 300 * time.Millisecond

// Config configures a Machine. It is copied by New and never changes for
// the lifetime of the machine.
type Config struct {
	FeePercent          float64
	InitialFromCurrency domain.Currency
	InitialToCurrency   domain.Currency
	Rates               domain.Rates
	// CurrencyOptions is the ordered list fallback currencies are picked from
	CurrencyOptions []domain.Currency

	// OnSwapSuccess is invoked by OnHandleExchange. Optional.
	OnSwapSuccess func()

	// Zero values select validate.DefaultMinExchangeable,
	// validate.DefaultMaxIntegerDigits and validate.DefaultMaxDecimalDigits.
	MinExchangeableAmount float64
	MaxIntegerDigits      int
	MaxDecimalDigits      int

	// Debounce defaults to DefaultDebounce
	Debounce time.Duration

	// Location receives the currency pair after every currency change.
	// Publish is called with the machine locked and must not call back
	// into the machine.
	Location LocationSync

	Logger log.Logger
}

var (
	ErrNoCurrencyOptions = errors.New("no currency options configured")
	ErrNoRates           = errors.New("no rates configured")
)

func (c Config) withDefaults() (Config, error) {
	if len(c.CurrencyOptions) == 0 {
		return c, ErrNoCurrencyOptions
	}
	if len(c.Rates) == 0 {
		return c, ErrNoRates
	}
	if c.FeePercent < 0 || c.FeePercent > 100 {
		return c, fmt.Errorf("fee percent %v: must be between 0 and 100", c.FeePercent)
	}
	if c.MinExchangeableAmount < 0 {
		return c, fmt.Errorf("minimum exchangeable amount %v: must not be negative", c.MinExchangeableAmount)
	}

	if c.MinExchangeableAmount == 0 {
		c.MinExchangeableAmount = validate.DefaultMinExchangeable
	}
	if c.MaxIntegerDigits <= 0 {
		c.MaxIntegerDigits = validate.DefaultMaxIntegerDigits
	}
	if c.MaxDecimalDigits <= 0 {
		c.MaxDecimalDigits = validate.DefaultMaxDecimalDigits
	}
	if c.Debounce <= 0 {
		c.Debounce = DefaultDebounce
	}
	if c.Location == nil {
		c.Location = nopLocation{}
	}
	if c.Logger == nil {
		c.Logger = log.NewNopLogger()
	}

	c.CurrencyOptions = append([]domain.Currency(nil), c.CurrencyOptions...)
	rates := make(domain.Rates, len(c.Rates))
	for k, v := range c.Rates {
		rates[k] = v
	}
	c.Rates = rates

	return c, nil
}

// Limits returns the validation limits of the configuration
func (c Config) Limits() validate.Limits {
	return validate.Limits{
		MinExchangeable:  c.MinExchangeableAmount,
		MaxIntegerDigits: c.MaxIntegerDigits,
		MaxDecimalDigits: c.MaxDecimalDigits,
	}
}
