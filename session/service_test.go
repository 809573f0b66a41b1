package session

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/go-kit/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-currency-swap/domain"
	"go-currency-swap/rates"
	"go-currency-swap/swap"
)

func template() swap.Config {
	return swap.Config{
		FeePercent:          1,
		InitialFromCurrency: "MYR",
		InitialToCurrency:   "EUR",
		Rates:               rates.Default(),
		CurrencyOptions:     rates.DefaultOptions(),
		Debounce:            time.Hour,
	}
}

func TestService_CreateGetClose(t *testing.T) {
	ctx := context.Background()
	s := NewService(template(), "http://localhost/swap", time.Minute, log.NewNopLogger())

	sess, err := s.Create(ctx, "GBP", "IDR")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, domain.Currency("GBP"), sess.Machine.FromCurrency().Currency)
	assert.Equal(t, domain.Currency("IDR"), sess.Machine.ToCurrency().Currency)
	assert.Equal(t, "http://localhost/swap?from=GBP&to=IDR", sess.Link())

	got, err := s.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Same(t, sess, got)

	sess.Machine.OnFromAmountChange("100")
	require.NoError(t, s.Close(ctx, sess.ID))
	assert.True(t, sess.Machine.Disposed())
	assert.False(t, sess.Machine.IsToAmountCalculating())

	_, err = s.Get(ctx, sess.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(s.Close(ctx, sess.ID), ErrNotFound))
}

func TestService_CreateFallsBackToDefaults(t *testing.T) {
	s := NewService(template(), "/swap", time.Minute, log.NewNopLogger())

	sess, err := s.Create(context.Background(), "XYZ", "")
	require.NoError(t, err)
	assert.Equal(t, domain.Currency("MYR"), sess.Machine.FromCurrency().Currency)
	assert.Equal(t, domain.Currency("EUR"), sess.Machine.ToCurrency().Currency)
}

func TestService_LinkTracksCurrencies(t *testing.T) {
	s := NewService(template(), "/swap", time.Minute, log.NewNopLogger())

	sess, err := s.Create(context.Background(), "", "")
	require.NoError(t, err)

	sess.Machine.OnToCurrencyChange("GBP")
	assert.Equal(t, "/swap?from=MYR&to=GBP", sess.Link())
}

func TestService_ExchangeCounted(t *testing.T) {
	s := NewService(template(), "/swap", time.Minute, log.NewNopLogger())

	sess, err := s.Create(context.Background(), "", "")
	require.NoError(t, err)

	sess.Machine.OnHandleExchange()
	sess.Machine.OnHandleExchange()
	assert.Equal(t, 2, sess.Exchanges())
}

func TestService_IdleSessionsExpire(t *testing.T) {
	ctx := context.Background()
	s := NewService(template(), "/swap", 20*time.Millisecond, log.NewNopLogger())

	sess, err := s.Create(ctx, "", "")
	require.NoError(t, err)

	assert.Eventually(t, sess.Machine.Disposed, time.Second, 5*time.Millisecond)
	_, err = s.Get(ctx, sess.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestService_CloseAll(t *testing.T) {
	ctx := context.Background()
	s := NewService(template(), "/swap", time.Minute, log.NewNopLogger())

	a, err := s.Create(ctx, "", "")
	require.NoError(t, err)
	b, err := s.Create(ctx, "", "")
	require.NoError(t, err)

	assert.Equal(t, 2, s.CloseAll(ctx))
	assert.True(t, a.Machine.Disposed())
	assert.True(t, b.Machine.Disposed())
}

func TestService_InvalidTemplate(t *testing.T) {
	cfg := template()
	cfg.CurrencyOptions = nil
	s := NewService(cfg, "/swap", time.Minute, log.NewNopLogger())

	_, err := s.Create(context.Background(), "", "")
	assert.True(t, errors.Is(err, swap.ErrNoCurrencyOptions))
}

func TestLoggingService(t *testing.T) {
	var buf bytes.Buffer
	s := NewLoggingService(log.NewLogfmtLogger(&buf), NewService(template(), "/swap", time.Minute, log.NewNopLogger()))

	sess, err := s.Create(context.Background(), "", "")
	require.NoError(t, err)
	_ = s.Close(context.Background(), "missing")

	out := buf.String()
	assert.True(t, strings.Contains(out, "method=create"))
	assert.True(t, strings.Contains(out, "session="+sess.ID))
	assert.True(t, strings.Contains(out, "method=close session=missing"))
}
