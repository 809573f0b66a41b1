package rates

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-currency-swap/domain"
)

func TestResolve(t *testing.T) {
	table := domain.Rates{
		"USD": 1.0,
		"FOO": 2.0,
		"BAR": 4.0,
		"NIL": 0,
		"NEG": -1,
	}

	tests := []struct {
		name   string
		from   domain.Currency
		to     domain.Currency
		want   domain.Rate
		wantOk bool
	}{
		{"usd -> foo", "USD", "FOO", 2.0, true},
		{"foo -> bar", "FOO", "BAR", 2.0, true},
		{"bar -> foo", "BAR", "FOO", 0.5, true},
		{"same currency", "FOO", "FOO", 1.0, true},
		{"same unknown currency", "XYZ", "XYZ", 1.0, true},
		{"unknown to", "USD", "XYZ", 0, false},
		{"unknown from", "XYZ", "USD", 0, false},
		{"zero rate", "NIL", "USD", 0, false},
		{"negative rate", "USD", "NEG", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Resolve(tt.from, tt.to, table)
			assert.Equal(t, tt.wantOk, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_InverseConsistency(t *testing.T) {
	table := Default()
	for _, from := range DefaultOptions() {
		for _, to := range DefaultOptions() {
			forward, ok := Resolve(from, to, table)
			require.True(t, ok)
			back, ok := Resolve(to, from, table)
			require.True(t, ok)
			assert.InDelta(t, 1.0, float64(forward*back), 1e-12, "%v <-> %v", from, to)
		}
	}
}

func TestResolve_RejectsNaN(t *testing.T) {
	table := domain.Rates{"USD": 1, "BAD": domain.Rate(math.NaN())}
	_, ok := Resolve("USD", "BAD", table)
	assert.False(t, ok)
}

func TestParse(t *testing.T) {
	table, order, err := Parse(" myr=4.375, EUR = 0.899038 ,")
	require.NoError(t, err)
	assert.Equal(t, domain.Rates{"MYR": 4.375, "EUR": 0.899038}, table)
	assert.Equal(t, []domain.Currency{"MYR", "EUR"}, order)

	bad := []string{"", "MYR", "MYR=abc", "MYR=0", "=1", "MYR=1,MYR=2"}
	for _, s := range bad {
		_, _, err := Parse(s)
		assert.Error(t, err, s)
	}
}

func TestDefault_IsCopy(t *testing.T) {
	table := Default()
	table["MYR"] = 1
	assert.Equal(t, domain.Rate(4.375), Default()["MYR"])
	assert.Len(t, DefaultOptions(), len(table))
}

func TestFallback(t *testing.T) {
	options := []domain.Currency{"USD", "EUR"}
	assert.Equal(t, domain.Currency("EUR"), Fallback(options, "USD"))
	assert.Equal(t, domain.Currency("USD"), Fallback(options, "EUR"))
	assert.Equal(t, domain.Currency("USD"), Fallback(options, "GBP"))
	assert.Equal(t, domain.Currency("USD"), Fallback([]domain.Currency{"USD"}, "USD"))
	assert.Equal(t, domain.Currency(""), Fallback(nil, "USD"))
}

func TestParseOptions(t *testing.T) {
	assert.Equal(t, []domain.Currency{"USD", "EUR"}, ParseOptions("usd, EUR,,"))
	assert.True(t, Contains([]domain.Currency{"USD"}, "USD"))
	assert.False(t, Contains([]domain.Currency{"USD"}, "EUR"))
}
