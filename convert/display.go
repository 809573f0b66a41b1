package convert

import (
	"math/big"
	"strings"

	"github.com/leekchan/accounting"

	"go-currency-swap/domain"
)

// FormatWithCommas adds thousands separators to the integer part of amount
// text. The fractional part, including a trailing decimal point, is kept as
// typed so the display never changes the numeric meaning.
func FormatWithCommas(text string) string {
	if text == "" {
		return ""
	}

	integer, fraction, hasPoint := strings.Cut(text, ".")
	if integer != "" {
		if r, ok := new(big.Rat).SetString(integer); ok && r.IsInt() {
			integer = accounting.FormatNumber(r, 0, ",", ".")
		}
	}

	if !hasPoint {
		return integer
	}
	return integer + "." + fraction
}

// FormatRate renders an exchange rate for display, or empty text when the
// rate is unavailable.
func FormatRate(rate domain.Rate, ok bool) string {
	if !ok {
		return ""
	}
	s, _ := Format(float64(rate))
	return FormatWithCommas(s)
}
