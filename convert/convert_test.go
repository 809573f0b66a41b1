package convert

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-currency-swap/domain"
	"go-currency-swap/rates"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name   string
		value  float64
		want   string
		wantOk bool
	}{
		{"zero", 0, "", true},
		{"integer", 100, "100", true},
		{"large integer", 1e17, "100000000000000000", true},
		{"fraction", 20.549428571428571, "20.549429", true},
		{"trailing zeros", 100.5, "100.5", true},
		{"rounds to integer", 20.0000001, "20", true},
		{"rounds to zero", 0.0000001, "0", true},
		{"nan", math.NaN(), "", false},
		{"inf", math.Inf(1), "", false},
		{"negative inf", math.Inf(-1), "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Format(tt.value)
			assert.Equal(t, tt.wantOk, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse(t *testing.T) {
	assert.Equal(t, 0.0, Parse(""))
	assert.Equal(t, 12.5, Parse("12.5"))
	assert.Equal(t, 1.0, Parse("1."))
	assert.Equal(t, 0.5, Parse(".5"))
	assert.True(t, math.IsNaN(Parse(".")))
	assert.True(t, math.IsNaN(Parse("abc")))
}

func TestForwardInverse(t *testing.T) {
	got, ok := Forward("10", 2, true)
	assert.True(t, ok)
	assert.Equal(t, "20", got)

	got, ok = Inverse("10", 4, true)
	assert.True(t, ok)
	assert.Equal(t, "2.5", got)

	got, ok = Forward("", 2, true)
	assert.True(t, ok)
	assert.Equal(t, "", got)

	_, ok = Forward("10", 0, false)
	assert.False(t, ok)
	_, ok = Inverse("10", 0, false)
	assert.False(t, ok)
	_, ok = Forward(".", 2, true)
	assert.False(t, ok)
}

func TestForward_ScenarioA(t *testing.T) {
	table := domain.Rates{"MYR": 4.375, "EUR": 0.899038}
	rate, ok := rates.Resolve("MYR", "EUR", table)
	require.True(t, ok)

	got, ok := Forward("100", rate, ok)
	require.True(t, ok)
	assert.InDelta(t, 100/4.375*0.899038, Parse(got), 1e-6)
}

func TestForward_RoundTrip(t *testing.T) {
	table := rates.Default()
	for _, amount := range []string{"1", "100", "12345.678901", "0.5"} {
		for _, from := range rates.DefaultOptions() {
			for _, to := range rates.DefaultOptions() {
				rate, ok := rates.Resolve(from, to, table)
				there, ok := Forward(amount, rate, ok)
				require.True(t, ok)

				rate, ok = rates.Resolve(from, to, table)
				back, ok := Inverse(there, rate, ok)
				require.True(t, ok)

				// six decimal places of rounding on the way there, scaled by the rate on the way back
				tolerance := 1e-6/float64(rate) + 1e-6
				assert.InDelta(t, Parse(amount), Parse(back), tolerance, "%v %v -> %v", amount, from, to)
			}
		}
	}
}

func TestFee(t *testing.T) {
	fee, receive := Fee("100", 1)
	assert.Equal(t, "1", fee)
	assert.Equal(t, "99", receive)

	fee, receive = Fee("", 1)
	assert.Equal(t, "", fee)
	assert.Equal(t, "", receive)

	fee, receive = Fee("0", 1)
	assert.Equal(t, "", fee)
	assert.Equal(t, "", receive)

	fee, receive = Fee("20.549429", 1)
	assert.Equal(t, "0.205494", fee)
	assert.Equal(t, "20.343935", receive)
}

func TestFormatWithCommas(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"0", "0"},
		{"999", "999"},
		{"1000", "1,000"},
		{"1234567.891", "1,234,567.891"},
		{"1234.", "1,234."},
		{".5", ".5"},
		{"12345678901234567", "12,345,678,901,234,567"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatWithCommas(tt.in))
		})
	}
}

func TestFormatRate(t *testing.T) {
	assert.Equal(t, "", FormatRate(0, false))
	assert.Equal(t, "3,551.749773", FormatRate(3551.7497734857143, true))
	assert.Equal(t, "1", FormatRate(1, true))
}
