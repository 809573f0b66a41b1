package validate

import (
	"regexp"
	"strconv"
	"strings"

	"go-currency-swap/convert"
	"go-currency-swap/domain"
)

const (
	DefaultMinExchangeable  = 0.000001
	DefaultMaxIntegerDigits = 17
	DefaultMaxDecimalDigits = 6
)

const (
	msgTooLarge   = "Amount too large"
	msgReceiveLow = "Amount to receive is too low"
)

// Limits bounds accepted amounts
type Limits struct {
	MinExchangeable  float64
	MaxIntegerDigits int
	MaxDecimalDigits int
}

// DefaultLimits returns the limits used when none are configured
func DefaultLimits() Limits {
	return Limits{
		MinExchangeable:  DefaultMinExchangeable,
		MaxIntegerDigits: DefaultMaxIntegerDigits,
		MaxDecimalDigits: DefaultMaxDecimalDigits,
	}
}

// MinimumMessage is the error shown when the from amount is below min
func MinimumMessage(min float64) string {
	return "Minimum amount is " + strconv.FormatFloat(min, 'f', -1, 64)
}

// Amounts checks both amount texts and returns every applicable error,
// from side first. Empty text is never an error. An amount with too many
// integer digits is reported as too large and not also as too small.
func Amounts(from, to string, limits Limits) []domain.ValidationError {
	var errs []domain.ValidationError

	if msg, bad := check(from, limits, MinimumMessage(limits.MinExchangeable)); bad {
		errs = append(errs, domain.ValidationError{Field: domain.FromAmount, Message: msg})
	}
	if msg, bad := check(to, limits, msgReceiveLow); bad {
		errs = append(errs, domain.ValidationError{Field: domain.ToAmount, Message: msg})
	}

	return errs
}

func check(text string, limits Limits, tooLow string) (string, bool) {
	if text == "" {
		return "", false
	}
	if integerDigits(text) > limits.MaxIntegerDigits {
		return msgTooLarge, true
	}
	// NaN compares false, so unparsable text is not flagged here
	if convert.Parse(text) < limits.MinExchangeable {
		return tooLow, true
	}
	return "", false
}

func integerDigits(text string) int {
	integer, _, _ := strings.Cut(text, ".")
	return len(integer)
}

var numericInput = regexp.MustCompile(`^\d*\.?\d*$`)

// IsValidNumericInput reports whether text is a complete or partial
// decimal number: digits with at most one decimal point.
func IsValidNumericInput(text string) bool {
	return text == "" || numericInput.MatchString(text)
}

// IsWithinDigitLimits reports whether text has at most maxInteger digits
// before the decimal point and maxDecimal after it. A limit of zero or
// less is not enforced.
func IsWithinDigitLimits(text string, maxInteger, maxDecimal int) bool {
	if text == "" {
		return true
	}
	integer, fraction, _ := strings.Cut(text, ".")
	if maxInteger > 0 && len(integer) > maxInteger {
		return false
	}
	if maxDecimal > 0 && len(fraction) > maxDecimal {
		return false
	}
	return true
}

// Sanitize prepares a raw keystroke result for the swap machine: thousands
// separators are removed and the remainder must pass the numeric and digit
// limit checks. The bool is false when the input must be rejected.
func Sanitize(raw string, limits Limits) (string, bool) {
	text := strings.ReplaceAll(raw, ",", "")
	if !IsValidNumericInput(text) {
		return "", false
	}
	if !IsWithinDigitLimits(text, limits.MaxIntegerDigits, limits.MaxDecimalDigits) {
		return "", false
	}
	return text, true
}
