package swap

import (
	"fmt"
	"net/url"
	"sync"

	"go-currency-swap/domain"
	"go-currency-swap/rates"
)

// LocationSync reflects the selected currency pair somewhere the host can
// address again later, such as a shareable link.
type LocationSync interface {
	Publish(from, to domain.Currency)
}

// LocationFunc adapts a function to LocationSync
type LocationFunc func(from, to domain.Currency)

func (f LocationFunc) Publish(from, to domain.Currency) { f(from, to) }

type nopLocation struct{}

func (nopLocation) Publish(_, _ domain.Currency) {}

// QuerySync keeps a link whose "from" and "to" query parameters track the
// selected pair. Other query parameters of the base link are preserved.
type QuerySync struct {
	mu   sync.RWMutex
	base url.URL
	link string
}

// NewQuerySync parses base as the link to decorate
func NewQuerySync(base string) (*QuerySync, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parsing link base: %w", err)
	}
	return &QuerySync{base: *u, link: u.String()}, nil
}

func (q *QuerySync) Publish(from, to domain.Currency) {
	u := q.base
	values := u.Query()
	values.Set("from", string(from))
	values.Set("to", string(to))
	u.RawQuery = values.Encode()

	q.mu.Lock()
	defer q.mu.Unlock()
	q.link = u.String()
}

// Link returns the most recently published link
func (q *QuerySync) Link() string {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.link
}

// InitialPair re-derives the currency pair from link query parameters.
// A parameter is used only when it names one of options; otherwise the
// corresponding default applies.
func InitialPair(query url.Values, options []domain.Currency, defaultFrom, defaultTo domain.Currency) (domain.Currency, domain.Currency) {
	pick := func(param string, fallback domain.Currency) domain.Currency {
		c := domain.Currency(query.Get(param))
		if c != "" && rates.Contains(options, c) {
			return c
		}
		return fallback
	}
	return pick("from", defaultFrom), pick("to", defaultTo)
}
