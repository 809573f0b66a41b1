package convert

import (
	"math"
	"strconv"
	"strings"

	"go-currency-swap/domain"
)

// decimals is the number of fractional digits kept for non-integral results
const decimals = 6

// Parse reads amount text as a number. Empty text is zero; text that is not
// a number yields NaN.
func Parse(text string) float64 {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// Format renders a computed amount. Zero renders as empty text, integers
// without a fractional part, anything else to six decimals with trailing
// zeros stripped. The bool is false for NaN and infinities, which must not
// be written into state.
func Format(v float64) (string, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "", false
	}
	if v == 0 {
		return "", true
	}
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', -1, 64), true
	}

	s := strconv.FormatFloat(v, 'f', decimals, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	return s, true
}

// Forward converts amount text in the from currency into the to currency.
// ok reports whether the rate could be resolved; when it is false, or the
// result is not finite, the returned bool is false and the caller keeps the
// previous counterpart amount.
func Forward(text string, rate domain.Rate, ok bool) (string, bool) {
	if !ok {
		return "", false
	}
	return Format(Parse(text) * float64(rate))
}

// Inverse converts amount text in the to currency back into the from currency.
func Inverse(text string, rate domain.Rate, ok bool) (string, bool) {
	if !ok || rate == 0 {
		return "", false
	}
	return Format(Parse(text) / float64(rate))
}

// Fee computes the fee charged on a to amount and the amount left to
// receive, both formatted. An empty or zero amount yields empty text.
func Fee(toAmount string, feePercent float64) (fee string, receive string) {
	output := Parse(toAmount)
	fee, _ = Format(output * feePercent / 100)
	receive, _ = Format(output - Parse(fee))
	return fee, receive
}
