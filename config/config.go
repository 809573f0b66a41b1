// Package config loads the service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"go-currency-swap/domain"
	"go-currency-swap/rates"
	"go-currency-swap/swap"
	"go-currency-swap/validate"
)

// Config holds runtime options for the swap service
type Config struct {
	HTTPAddr  string // listen address, e.g. :8080
	PublicURL string // base of shareable links, e.g. http://localhost:8080/swap

	FeePercent      float64
	Rates           domain.Rates
	CurrencyOptions []domain.Currency
	InitialFrom     domain.Currency
	InitialTo       domain.Currency

	MinExchangeable  float64
	MaxIntegerDigits int
	MaxDecimalDigits int

	Debounce   time.Duration
	SessionTTL time.Duration
}

// Default returns the configuration used when nothing is set
func Default() Config {
	return Config{
		HTTPAddr:         ":8080",
		PublicURL:        "http://localhost:8080/swap",
		FeePercent:       1,
		Rates:            rates.Default(),
		CurrencyOptions:  rates.DefaultOptions(),
		InitialFrom:      "MYR",
		InitialTo:        "EUR",
		MinExchangeable:  validate.DefaultMinExchangeable,
		MaxIntegerDigits: validate.DefaultMaxIntegerDigits,
		MaxDecimalDigits: validate.DefaultMaxDecimalDigits,
		Debounce:         swap.DefaultDebounce,
		SessionTTL:       30 * time.Minute,
	}
}

// Load reads the SWAP_* environment variables on top of Default
func Load() (Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (Config, error) {
	cfg := Default()
	var err error

	if v := getenv("SWAP_HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := getenv("SWAP_PUBLIC_URL"); v != "" {
		cfg.PublicURL = v
	}
	if v := getenv("SWAP_RATES"); v != "" {
		cfg.Rates, cfg.CurrencyOptions, err = rates.Parse(v)
		if err != nil {
			return cfg, fmt.Errorf("SWAP_RATES: %w", err)
		}
	}
	if v := getenv("SWAP_CURRENCY_OPTIONS"); v != "" {
		cfg.CurrencyOptions = rates.ParseOptions(v)
	}
	if v := getenv("SWAP_INITIAL_FROM"); v != "" {
		cfg.InitialFrom = domain.Currency(v)
	}
	if v := getenv("SWAP_INITIAL_TO"); v != "" {
		cfg.InitialTo = domain.Currency(v)
	}

	floats := []struct {
		key string
		dst *float64
	}{
		{"SWAP_FEE_PERCENT", &cfg.FeePercent},
		{"SWAP_MIN_EXCHANGEABLE", &cfg.MinExchangeable},
	}
	for _, f := range floats {
		if v := getenv(f.key); v != "" {
			if *f.dst, err = strconv.ParseFloat(v, 64); err != nil {
				return cfg, fmt.Errorf("%v: %w", f.key, err)
			}
		}
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"SWAP_MAX_INTEGER_DIGITS", &cfg.MaxIntegerDigits},
		{"SWAP_MAX_DECIMAL_DIGITS", &cfg.MaxDecimalDigits},
	}
	for _, i := range ints {
		if v := getenv(i.key); v != "" {
			if *i.dst, err = strconv.Atoi(v); err != nil {
				return cfg, fmt.Errorf("%v: %w", i.key, err)
			}
		}
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"SWAP_DEBOUNCE", &cfg.Debounce},
		{"SWAP_SESSION_TTL", &cfg.SessionTTL},
	}
	for _, d := range durations {
		if v := getenv(d.key); v != "" {
			if *d.dst, err = time.ParseDuration(v); err != nil {
				return cfg, fmt.Errorf("%v: %w", d.key, err)
			}
		}
	}

	return cfg, cfg.Validate()
}

// Validate checks the configuration and settles the initial currencies:
// one that is not a currency option is replaced by the first usable option.
func (c *Config) Validate() error {
	if len(c.CurrencyOptions) == 0 {
		return fmt.Errorf("no currency options configured")
	}
	if c.FeePercent < 0 || c.FeePercent > 100 {
		return fmt.Errorf("fee percent %v: must be between 0 and 100", c.FeePercent)
	}
	if c.MinExchangeable < 0 {
		return fmt.Errorf("minimum exchangeable amount %v: must not be negative", c.MinExchangeable)
	}
	if c.Debounce <= 0 {
		return fmt.Errorf("debounce %v: must be positive", c.Debounce)
	}

	if !rates.Contains(c.CurrencyOptions, c.InitialFrom) {
		c.InitialFrom = c.CurrencyOptions[0]
	}
	if !rates.Contains(c.CurrencyOptions, c.InitialTo) || c.InitialTo == c.InitialFrom {
		c.InitialTo = rates.Fallback(c.CurrencyOptions, c.InitialFrom)
	}
	return nil
}

// Swap returns the swap machine configuration every session starts from
func (c Config) Swap() swap.Config {
	return swap.Config{
		FeePercent:            c.FeePercent,
		InitialFromCurrency:   c.InitialFrom,
		InitialToCurrency:     c.InitialTo,
		Rates:                 c.Rates,
		CurrencyOptions:       c.CurrencyOptions,
		MinExchangeableAmount: c.MinExchangeable,
		MaxIntegerDigits:      c.MaxIntegerDigits,
		MaxDecimalDigits:      c.MaxDecimalDigits,
		Debounce:              c.Debounce,
	}
}

// Limits returns the amount limits
func (c Config) Limits() validate.Limits {
	return validate.Limits{
		MinExchangeable:  c.MinExchangeable,
		MaxIntegerDigits: c.MaxIntegerDigits,
		MaxDecimalDigits: c.MaxDecimalDigits,
	}
}
