// Package session keeps the swap machines of open conversion forms in
// memory and tears them down when they are closed or left idle.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/go-kit/log"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"go-currency-swap/domain"
	"go-currency-swap/swap"
)

// ErrNotFound is returned for unknown, closed or expired sessions
var ErrNotFound = errors.New("session not found")

// Session one open conversion form
type Session struct {
	ID      string
	Machine *swap.Machine
	Created time.Time

	link      *swap.QuerySync
	exchanges int32
}

// Link returns the shareable link for the session's current currency pair
func (s *Session) Link() string {
	return s.link.Link()
}

// Exchanges returns how many exchanges were completed in the session
func (s *Session) Exchanges() int {
	return int(atomic.LoadInt32(&s.exchanges))
}

// Service manages sessions
type Service interface {
	// Create opens a session. Currencies that are empty or not among the
	// configured options are replaced by the configured initial currencies.
	Create(ctx context.Context, from domain.Currency, to domain.Currency) (*Session, error)
	Get(ctx context.Context, id string) (*Session, error)
	Close(ctx context.Context, id string) error
	// CloseAll disposes every open session
	CloseAll(ctx context.Context) int
}

// service stores sessions in an expiring cache. Every Get renews the idle
// timeout; expiry and Close both dispose the session's machine.
type service struct {
	// template every session's machine is configured from
	template swap.Config

	// linkBase the link QuerySync decorates with the currency pair
	linkBase string

	sessions *cache.Cache

	logger log.Logger
}

// NewService returns a new session Service. Idle sessions are disposed
// after ttl.
func NewService(template swap.Config, linkBase string, ttl time.Duration, logger log.Logger) Service {
	cleanup := ttl / 2
	if cleanup > time.Minute {
		cleanup = time.Minute
	}

	s := &service{
		template: template,
		linkBase: linkBase,
		sessions: cache.New(ttl, cleanup),
		logger:   logger,
	}
	s.sessions.OnEvicted(s.evicted)
	return s
}

func (s *service) evicted(id string, v interface{}) {
	sess, ok := v.(*Session)
	if !ok {
		return
	}
	sess.Machine.Dispose()
	s.logger.Log("msg", "session disposed", "session", id, "exchanges", sess.Exchanges())
}

func (s *service) Create(_ context.Context, from domain.Currency, to domain.Currency) (*Session, error) {
	link, err := swap.NewQuerySync(s.linkBase)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	sess := &Session{
		ID:      uuid.NewString(),
		Created: time.Now(),
		link:    link,
	}

	cfg := s.template
	cfg.InitialFromCurrency, cfg.InitialToCurrency = s.initialPair(from, to)
	cfg.Location = link
	cfg.Logger = log.With(s.logger, "session", sess.ID)
	cfg.OnSwapSuccess = func() {
		atomic.AddInt32(&sess.exchanges, 1)
		s.logger.Log("msg", "exchange completed", "session", sess.ID)
	}

	sess.Machine, err = swap.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.sessions.SetDefault(sess.ID, sess)
	return sess, nil
}

func (s *service) initialPair(from, to domain.Currency) (domain.Currency, domain.Currency) {
	query := url.Values{
		"from": {string(from)},
		"to":   {string(to)},
	}
	return swap.InitialPair(query, s.template.CurrencyOptions, s.template.InitialFromCurrency, s.template.InitialToCurrency)
}

func (s *service) Get(_ context.Context, id string) (*Session, error) {
	v, ok := s.sessions.Get(id)
	if !ok {
		return nil, fmt.Errorf("get [%v]: %w", id, ErrNotFound)
	}
	sess := v.(*Session)

	// renew the idle timeout
	s.sessions.SetDefault(id, sess)
	return sess, nil
}

func (s *service) Close(_ context.Context, id string) error {
	if _, ok := s.sessions.Get(id); !ok {
		return fmt.Errorf("close [%v]: %w", id, ErrNotFound)
	}
	s.sessions.Delete(id)
	return nil
}

func (s *service) CloseAll(_ context.Context) int {
	items := s.sessions.Items()
	for id := range items {
		s.sessions.Delete(id)
	}
	return len(items)
}
