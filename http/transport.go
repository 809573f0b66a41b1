package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-kit/log"
	"github.com/gorilla/websocket"

	"go-currency-swap/config"
	"go-currency-swap/convert"
	"go-currency-swap/domain"
	"go-currency-swap/exchange"
	"go-currency-swap/rates"
	"go-currency-swap/session"
	"go-currency-swap/swap"
	"go-currency-swap/validate"
)

// Server dependencies for HTTP Server functions
type Server struct {
	Service  exchange.Service
	Sessions session.Service
	Config   config.Config
	Logger   log.Logger

	router   chi.Router
	upgrader websocket.Upgrader
}

func NewServer(s exchange.Service, sessions session.Service, cfg config.Config, logger log.Logger) *Server {
	server := &Server{
		Service:  s,
		Sessions: sessions,
		Config:   cfg,
		Logger:   logger,
		router:   chi.NewRouter(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	server.routes()
	return server
}

func (s *Server) routes() {
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	s.router.Post("/api/convert", s.convert())
	s.router.Get("/api/rates", s.rates())

	s.router.Route("/api/sessions", func(r chi.Router) {
		r.Post("/", s.createSession())
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.withSession(s.getSession))
			r.Delete("/", s.closeSession())
			r.Put("/{side}/amount", s.withSession(s.changeAmount))
			r.Put("/{side}/currency", s.withSession(s.changeCurrency))
			r.Post("/swap", s.withSession(s.swap))
			r.Post("/exchange", s.withSession(s.exchange))
			r.Post("/flush", s.withSession(s.flush))
			r.Get("/ws", s.withSession(s.stream))
		})
	})
}

func (s *Server) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(rw, r)
}

// convert produces HTTP handler for one-shot currency conversions
func (s *Server) convert() http.HandlerFunc {

	// request for unmarshalling JSON requests posted by clients
	type request struct {
		FromCurrency domain.Currency
		ToCurrency   domain.Currency
		Amount       json.Number
	}

	// response for marshalling JSON responses to return to clients
	type response struct {
		Exchange domain.Rate `json:"exchange"`
		Amount   string      `json:"amount"`
		Original string      `json:"original"`
		Fee      string      `json:"fee"`
		Receive  string      `json:"receive"`
	}

	return func(rw http.ResponseWriter, r *http.Request) {
		var request request
		if !decode(rw, r, &request) {
			return
		}

		amount, ok := validate.Sanitize(request.Amount.String(), s.Config.Limits())
		if !ok {
			writeError(rw, http.StatusUnprocessableEntity, "invalid amount")
			return
		}

		result, err := s.Service.Convert(r.Context(), amount, request.FromCurrency, request.ToCurrency)
		if err != nil {
			writeError(rw, http.StatusBadRequest, "failed conversion")
			return
		}

		writeJSON(rw, http.StatusOK, response{
			Exchange: result.Rate,
			Amount:   result.Amount,
			Original: amount,
			Fee:      result.Fee,
			Receive:  result.Receive,
		})
	}
}

func (s *Server) rates() http.HandlerFunc {
	type response struct {
		Rates      domain.Rates      `json:"rates"`
		Options    []domain.Currency `json:"options"`
		FeePercent float64           `json:"fee_percent"`
	}

	return func(rw http.ResponseWriter, r *http.Request) {
		writeJSON(rw, http.StatusOK, response{
			Rates:      s.Config.Rates,
			Options:    s.Config.CurrencyOptions,
			FeePercent: s.Config.FeePercent,
		})
	}
}

func (s *Server) createSession() http.HandlerFunc {
	type request struct {
		From domain.Currency
		To   domain.Currency
	}

	return func(rw http.ResponseWriter, r *http.Request) {
		var request request
		if r.ContentLength != 0 && !decode(rw, r, &request) {
			return
		}

		sess, err := s.Sessions.Create(r.Context(), request.From, request.To)
		if err != nil {
			writeError(rw, http.StatusInternalServerError, "failed to create session")
			return
		}
		writeJSON(rw, http.StatusCreated, s.view(sess, sess.Machine.Snapshot()))
	}
}

func (s *Server) closeSession() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		err := s.Sessions.Close(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			s.sessionError(rw, err)
			return
		}
		rw.WriteHeader(http.StatusNoContent)
	}
}

// sessionHandler handles a request for an existing session
type sessionHandler func(rw http.ResponseWriter, r *http.Request, sess *session.Session)

func (s *Server) withSession(h sessionHandler) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		sess, err := s.Sessions.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			s.sessionError(rw, err)
			return
		}
		h(rw, r, sess)
	}
}

func (s *Server) sessionError(rw http.ResponseWriter, err error) {
	if errors.Is(err, session.ErrNotFound) {
		writeError(rw, http.StatusNotFound, "session not found")
		return
	}
	writeError(rw, http.StatusInternalServerError, "session failure")
}

func (s *Server) getSession(rw http.ResponseWriter, _ *http.Request, sess *session.Session) {
	writeJSON(rw, http.StatusOK, s.view(sess, sess.Machine.Snapshot()))
}

// valueRequest the body of field updates
type valueRequest struct {
	Value string
}

func (s *Server) changeAmount(rw http.ResponseWriter, r *http.Request, sess *session.Session) {
	var request valueRequest
	if !decode(rw, r, &request) {
		return
	}
	amount, ok := validate.Sanitize(request.Value, s.Config.Limits())
	if !ok {
		writeError(rw, http.StatusUnprocessableEntity, "invalid amount")
		return
	}

	switch chi.URLParam(r, "side") {
	case "from":
		sess.Machine.OnFromAmountChange(amount)
	case "to":
		sess.Machine.OnToAmountChange(amount)
	default:
		writeError(rw, http.StatusNotFound, "unknown side")
		return
	}
	writeJSON(rw, http.StatusOK, s.view(sess, sess.Machine.Snapshot()))
}

func (s *Server) changeCurrency(rw http.ResponseWriter, r *http.Request, sess *session.Session) {
	var request valueRequest
	if !decode(rw, r, &request) {
		return
	}
	currency := domain.Currency(request.Value)
	if !rates.Contains(s.Config.CurrencyOptions, currency) {
		writeError(rw, http.StatusUnprocessableEntity, "unknown currency")
		return
	}

	switch chi.URLParam(r, "side") {
	case "from":
		sess.Machine.OnFromCurrencyChange(currency)
	case "to":
		sess.Machine.OnToCurrencyChange(currency)
	default:
		writeError(rw, http.StatusNotFound, "unknown side")
		return
	}
	writeJSON(rw, http.StatusOK, s.view(sess, sess.Machine.Snapshot()))
}

func (s *Server) swap(rw http.ResponseWriter, _ *http.Request, sess *session.Session) {
	sess.Machine.OnHandleSwap()
	writeJSON(rw, http.StatusOK, s.view(sess, sess.Machine.Snapshot()))
}

func (s *Server) exchange(rw http.ResponseWriter, _ *http.Request, sess *session.Session) {
	if !sess.Machine.Snapshot().CanExchange() {
		writeError(rw, http.StatusConflict, "exchange not allowed")
		return
	}
	sess.Machine.OnHandleExchange()
	writeJSON(rw, http.StatusOK, s.view(sess, sess.Machine.Snapshot()))
}

func (s *Server) flush(rw http.ResponseWriter, _ *http.Request, sess *session.Session) {
	sess.Machine.Flush()
	writeJSON(rw, http.StatusOK, s.view(sess, sess.Machine.Snapshot()))
}

// slotView one side of the form as presented to clients
type slotView struct {
	Currency domain.Currency `json:"currency"`
	Amount   string          `json:"amount"`
	Display  string          `json:"display"`
	Error    string          `json:"error,omitempty"`
	Loading  bool            `json:"loading"`
}

// snapshotView the session state as presented to clients
type snapshotView struct {
	ID      string   `json:"id"`
	Version uint64   `json:"version"`
	From    slotView `json:"from"`
	To      slotView `json:"to"`

	Rate        *domain.Rate `json:"rate"`
	RateDisplay string       `json:"rate_display"`

	Fee            string `json:"fee"`
	FeeDisplay     string `json:"fee_display"`
	ReceiveAmount  string `json:"receive_amount"`
	ReceiveDisplay string `json:"receive_display"`

	Errors      []domain.ValidationError `json:"errors"`
	CanExchange bool                     `json:"can_exchange"`
	Exchanges   int                      `json:"exchanges"`
	Link        string                   `json:"link"`
}

func (s *Server) view(sess *session.Session, snap swap.Snapshot) snapshotView {
	v := snapshotView{
		ID:      sess.ID,
		Version: snap.Version,
		From: slotView{
			Currency: snap.From.Currency,
			Amount:   snap.From.Amount,
			Display:  convert.FormatWithCommas(snap.From.Amount),
			Error:    snap.FieldError(domain.FromAmount),
			Loading:  snap.IsFromAmountCalculating,
		},
		To: slotView{
			Currency: snap.To.Currency,
			Amount:   snap.To.Amount,
			Display:  convert.FormatWithCommas(snap.To.Amount),
			Error:    snap.FieldError(domain.ToAmount),
			Loading:  snap.IsToAmountCalculating,
		},
		RateDisplay:    "Rate not available",
		Fee:            snap.Fee,
		FeeDisplay:     summary(snap, snap.Fee),
		ReceiveAmount:  snap.ReceiveAmount,
		ReceiveDisplay: summary(snap, snap.ReceiveAmount),
		Errors:         snap.Errors,
		CanExchange:    snap.CanExchange(),
		Exchanges:      sess.Exchanges(),
		Link:           sess.Link(),
	}
	if snap.RateAvailable {
		rate := snap.Rate
		v.Rate = &rate
		v.RateDisplay = convert.FormatRate(snap.Rate, true)
	}
	if v.Errors == nil {
		v.Errors = []domain.ValidationError{}
	}
	return v
}

// summary renders the fee and receive lines: a dash while any field is
// invalid, otherwise the amount with separators or 0 when empty.
func summary(snap swap.Snapshot, amount string) string {
	if len(snap.Errors) > 0 {
		return "-"
	}
	if amount == "" {
		return "0"
	}
	return convert.FormatWithCommas(amount)
}

func decode(rw http.ResponseWriter, r *http.Request, v interface{}) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(rw, http.StatusBadRequest, "invalid json")
		return false
	}
	return true
}

func writeJSON(rw http.ResponseWriter, status int, v interface{}) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	_ = json.NewEncoder(rw).Encode(v)
}

func writeError(rw http.ResponseWriter, status int, msg string) {
	writeJSON(rw, status, map[string]string{"error": msg})
}

// Shutdown closes every open session
func (s *Server) Shutdown(ctx context.Context) {
	n := s.Sessions.CloseAll(ctx)
	s.Logger.Log("msg", "closed sessions", "count", n)
}
