package rates

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"go-currency-swap/domain"
)

// defaultOrder is the order currencies are offered in when no explicit
// option list is configured.
var defaultOrder = []domain.Currency{"HKD", "AUD", "MYR", "GBP", "EUR", "IDR", "NZD", "CNY", "CZK", "AED"}

var defaultTable = domain.Rates{
	"HKD": 7.798926,
	"AUD": 1.487089,
	"MYR": 4.375,
	"GBP": 0.761538,
	"EUR": 0.899038,
	"IDR": 15538.905259,
	"NZD": 1.625053,
	"CNY": 7.1369,
	"CZK": 22.549,
	"AED": 3.672815,
}

// Default returns a copy of the built-in rate table
func Default() domain.Rates {
	table := make(domain.Rates, len(defaultTable))
	for k, v := range defaultTable {
		table[k] = v
	}
	return table
}

// DefaultOptions returns the currencies of the built-in table in display order
func DefaultOptions() []domain.Currency {
	return append([]domain.Currency(nil), defaultOrder...)
}

// Resolve computes the rate converting one unit of from into units of to.
// The bool is false when either currency is missing from the table or has a
// non-positive rate. Identical currencies always resolve to 1.
func Resolve(from, to domain.Currency, table domain.Rates) (domain.Rate, bool) {
	if from == to {
		return 1, true
	}

	fromRate, ok := table[from]
	if !ok || !usable(fromRate) {
		return 0, false
	}
	toRate, ok := table[to]
	if !ok || !usable(toRate) {
		return 0, false
	}

	return toRate / fromRate, true
}

func usable(r domain.Rate) bool {
	f := float64(r)
	return f > 0 && !math.IsInf(f, 0) && !math.IsNaN(f)
}

// Parse reads a rate table written as "MYR=4.375,EUR=0.899038".
// Currencies are returned in the order they appear.
func Parse(s string) (domain.Rates, []domain.Currency, error) {
	table := domain.Rates{}
	var order []domain.Currency

	for _, entry := range strings.Split(s, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			return nil, nil, fmt.Errorf("rate entry [%v]: expected CODE=RATE", entry)
		}
		code := domain.Currency(strings.ToUpper(strings.TrimSpace(parts[0])))
		if code == "" {
			return nil, nil, fmt.Errorf("rate entry [%v]: empty currency code", entry)
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, nil, fmt.Errorf("bad rate value [%v]: %w", code, err)
		}
		if !usable(domain.Rate(f)) {
			return nil, nil, fmt.Errorf("bad rate value [%v]: must be positive", code)
		}
		if _, dup := table[code]; dup {
			return nil, nil, fmt.Errorf("rate entry [%v]: duplicate currency", code)
		}
		table[code] = domain.Rate(f)
		order = append(order, code)
	}

	if len(table) == 0 {
		return nil, nil, fmt.Errorf("rate table is empty")
	}
	return table, order, nil
}

// ParseOptions reads a comma separated currency list such as "USD,EUR"
func ParseOptions(s string) []domain.Currency {
	var options []domain.Currency
	for _, code := range strings.Split(s, ",") {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code != "" {
			options = append(options, domain.Currency(code))
		}
	}
	return options
}

// Contains reports whether c is one of options
func Contains(options []domain.Currency, c domain.Currency) bool {
	for _, o := range options {
		if o == c {
			return true
		}
	}
	return false
}

// Fallback picks the first option that differs from exclude, or the first
// option when none do. It returns "" for an empty option list.
func Fallback(options []domain.Currency, exclude domain.Currency) domain.Currency {
	for _, o := range options {
		if o != exclude {
			return o
		}
	}
	if len(options) > 0 {
		return options[0]
	}
	return ""
}
