package exchange

import (
	"context"
	"errors"
	"fmt"

	"go-currency-swap/convert"
	"go-currency-swap/domain"
	"go-currency-swap/rates"
)

// ErrRateUnavailable is returned when no rate exists for a currency pair
var ErrRateUnavailable = errors.New("rate not available")

// ErrInvalidAmount is returned for amount text that is not a number
var ErrInvalidAmount = errors.New("invalid amount")

// Service interface for converting an amount from one currency to another
type Service interface {
	Convert(ctx context.Context, amount string, from domain.Currency, to domain.Currency) (domain.Exchanged, error)
}

// service converts with a fixed rate table and fee
type service struct {
	// rates the table every conversion is resolved against
	rates domain.Rates

	// feePercent charged on the converted amount
	feePercent float64
}

// NewService constructs a valid Service
func NewService(table domain.Rates, feePercent float64) Service {
	return &service{
		rates:      table,
		feePercent: feePercent,
	}
}

// Convert computes a conversion from one currency to another, along with
// the fee and the amount left to receive.
func (s *service) Convert(_ context.Context, amount string, from domain.Currency, to domain.Currency) (domain.Exchanged, error) {
	rate, ok := rates.Resolve(from, to, s.rates)
	if !ok {
		return domain.Exchanged{}, fmt.Errorf("convert [%v -> %v]: %w", from, to, ErrRateUnavailable)
	}

	converted, ok := convert.Forward(amount, rate, ok)
	if !ok {
		return domain.Exchanged{}, fmt.Errorf("convert [%v]: %w", amount, ErrInvalidAmount)
	}
	fee, receive := convert.Fee(converted, s.feePercent)

	result := domain.Exchanged{
		Rate:    rate,
		Amount:  converted,
		Fee:     fee,
		Receive: receive,
	}

	return result, nil
}
