package session

import (
	"context"
	"time"

	"github.com/go-kit/log"

	"go-currency-swap/domain"
)

// loggingService decorates a session.Service with logging
type loggingService struct {
	next   Service
	logger log.Logger
}

// NewLoggingService return a new logging service
func NewLoggingService(logger log.Logger, s Service) Service {
	return &loggingService{
		next:   s,
		logger: logger,
	}
}

func (s *loggingService) Create(ctx context.Context, from domain.Currency, to domain.Currency) (sess *Session, err error) {
	defer func(begin time.Time) {
		id := ""
		if sess != nil {
			id = sess.ID
		}
		s.logger.Log(
			"method", "create",
			"from", from,
			"to", to,
			"session", id,
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Create(ctx, from, to)
}

func (s *loggingService) Get(ctx context.Context, id string) (sess *Session, err error) {
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "get",
			"session", id,
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Get(ctx, id)
}

func (s *loggingService) Close(ctx context.Context, id string) (err error) {
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "close",
			"session", id,
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Close(ctx, id)
}

func (s *loggingService) CloseAll(ctx context.Context) (n int) {
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "close_all",
			"closed", n,
			"took", time.Since(begin),
		)
	}(time.Now())
	return s.next.CloseAll(ctx)
}
