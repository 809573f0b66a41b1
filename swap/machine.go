// Package swap implements the two-sided currency conversion form: two
// currency slots whose amounts are kept consistent through a rate table.
package swap

import (
	"sync"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"go-currency-swap/convert"
	"go-currency-swap/debounce"
	"go-currency-swap/domain"
	"go-currency-swap/rates"
	"go-currency-swap/validate"
)

type side int

const (
	fromSide side = iota
	toSide
)

// edit is an amount typed into one side, waiting to be propagated to the other
type edit struct {
	side side
	text string
	seq  uint64
}

// Machine owns the state of one conversion form. All methods are safe for
// concurrent use; amount propagation runs on a timer goroutine after the
// debounce period.
type Machine struct {
	cfg    Config
	limits validate.Limits
	logger log.Logger

	// mu guards everything below
	mu              sync.Mutex
	state           domain.Pair
	fromCalculating bool
	toCalculating   bool
	version         uint64
	// seq identifies the latest amount edit; a propagation carrying an older
	// seq has been superseded
	seq             uint64
	disposed        bool
	subscribers     map[int]func(Snapshot)
	nextSubscriber  int

	// propagate is shared by both sides so the latest edit always wins
	propagate *debounce.Func[edit]

	// notifyMu guards notified, the last version sent to subscribers
	notifyMu sync.Mutex
	notified uint64
}

// New constructs a Machine with empty amounts and the configured initial
// currencies. The initial pair is published to the configured LocationSync.
func New(cfg Config) (*Machine, error) {
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}

	m := &Machine{
		cfg:    cfg,
		limits: cfg.Limits(),
		logger: cfg.Logger,
		state: domain.Pair{
			From: domain.Slot{Currency: cfg.InitialFromCurrency},
			To:   domain.Slot{Currency: cfg.InitialToCurrency},
		},
		subscribers: map[int]func(Snapshot){},
	}
	m.propagate = debounce.New(cfg.Debounce, m.recompute)
	cfg.Location.Publish(m.state.From.Currency, m.state.To.Currency)
	return m, nil
}

// Config returns the configuration the machine was built with
func (m *Machine) Config() Config {
	return m.cfg
}

// FromCurrency returns the from slot
func (m *Machine) FromCurrency() domain.Slot {
	return m.Snapshot().From
}

// ToCurrency returns the to slot
func (m *Machine) ToCurrency() domain.Slot {
	return m.Snapshot().To
}

// CurrentRate returns the rate for the selected pair. The bool is false
// when the rate is not available.
func (m *Machine) CurrentRate() (domain.Rate, bool) {
	s := m.Snapshot()
	return s.Rate, s.RateAvailable
}

// Fee returns the formatted fee charged on the to amount
func (m *Machine) Fee() string {
	return m.Snapshot().Fee
}

// ReceiveAmount returns the to amount less the fee
func (m *Machine) ReceiveAmount() string {
	return m.Snapshot().ReceiveAmount
}

// Errors returns the validation errors for both amounts, from side first
func (m *Machine) Errors() []domain.ValidationError {
	return m.Snapshot().Errors
}

// IsFromAmountCalculating reports whether the from amount is waiting on a
// debounced recomputation
func (m *Machine) IsFromAmountCalculating() bool {
	return m.Snapshot().IsFromAmountCalculating
}

// IsToAmountCalculating reports whether the to amount is waiting on a
// debounced recomputation
func (m *Machine) IsToAmountCalculating() bool {
	return m.Snapshot().IsToAmountCalculating
}

// Snapshot returns the current state and all derived values
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot()
}

// snapshot derives the public view. m.mu must be held.
func (m *Machine) snapshot() Snapshot {
	rate, ok := rates.Resolve(m.state.From.Currency, m.state.To.Currency, m.cfg.Rates)
	fee, receive := convert.Fee(m.state.To.Amount, m.cfg.FeePercent)

	return Snapshot{
		Version:                 m.version,
		From:                    m.state.From,
		To:                      m.state.To,
		Rate:                    rate,
		RateAvailable:           ok,
		Fee:                     fee,
		ReceiveAmount:           receive,
		Errors:                  validate.Amounts(m.state.From.Amount, m.state.To.Amount, m.limits),
		IsFromAmountCalculating: m.fromCalculating,
		IsToAmountCalculating:   m.toCalculating,
	}
}

// OnFromAmountChange stores text as the from amount right away and
// schedules the to amount to be recomputed once typing pauses.
func (m *Machine) OnFromAmountChange(text string) {
	m.amountChange(edit{side: fromSide, text: text})
}

// OnToAmountChange stores text as the to amount right away and schedules
// the from amount to be recomputed once typing pauses.
func (m *Machine) OnToAmountChange(text string) {
	m.amountChange(edit{side: toSide, text: text})
}

func (m *Machine) amountChange(e edit) {
	m.mu.Lock()
	if m.disposed {
		m.mu.Unlock()
		return
	}

	if e.side == fromSide {
		m.state.From.Amount = e.text
	} else {
		m.state.To.Amount = e.text
	}
	// a newer edit on either side supersedes whatever was pending
	m.toCalculating = e.side == fromSide
	m.fromCalculating = e.side == toSide
	m.seq++
	e.seq = m.seq
	m.propagate.Call(e)

	snap := m.commit()
	m.mu.Unlock()

	m.notify(snap)
}

// recompute runs after the debounce period with the latest edit. A timer
// may fire just before a newer edit, a currency change or Dispose takes the
// lock, so edits that are no longer the latest are dropped here.
func (m *Machine) recompute(e edit) {
	m.mu.Lock()
	if m.disposed || e.seq != m.seq {
		m.mu.Unlock()
		return
	}

	rate, ok := rates.Resolve(m.state.From.Currency, m.state.To.Currency, m.cfg.Rates)
	var (
		out       string
		converted bool
	)
	switch e.side {
	case fromSide:
		out, converted = convert.Forward(e.text, rate, ok)
		if converted {
			m.state.To.Amount = out
		}
		m.toCalculating = false
	case toSide:
		out, converted = convert.Inverse(e.text, rate, ok)
		if converted {
			m.state.From.Amount = out
		}
		m.fromCalculating = false
	}

	level.Debug(m.logger).Log(
		"msg", "recomputed amount",
		"from", m.state.From.Currency,
		"to", m.state.To.Currency,
		"amount", e.text,
		"rate_available", ok,
		"converted_amount", out,
		"converted", converted,
	)

	snap := m.commit()
	m.mu.Unlock()

	m.notify(snap)
}

// OnFromCurrencyChange selects the from currency. If it collides with the to
// currency, the to side falls back to another option. The to amount is
// recomputed immediately; when the rate is unavailable it is left as is but
// the currency selection still applies.
func (m *Machine) OnFromCurrencyChange(c domain.Currency) {
	m.currencyChange(fromSide, c)
}

// OnToCurrencyChange selects the to currency, moving the from side to a
// fallback on collision, and recomputes the to amount from the from amount.
func (m *Machine) OnToCurrencyChange(c domain.Currency) {
	m.currencyChange(toSide, c)
}

func (m *Machine) currencyChange(s side, c domain.Currency) {
	m.mu.Lock()
	if m.disposed {
		m.mu.Unlock()
		return
	}

	// reselecting the current currency is a no-op unless both sides hold it
	if (s == fromSide && c == m.state.From.Currency || s == toSide && c == m.state.To.Currency) &&
		m.state.From.Currency != m.state.To.Currency {
		m.mu.Unlock()
		return
	}

	next := m.settled()
	switch s {
	case fromSide:
		next.From.Currency = c
		if c == next.To.Currency {
			next.To.Currency = rates.Fallback(m.cfg.CurrencyOptions, c)
		}
	case toSide:
		next.To.Currency = c
		if c == next.From.Currency {
			next.From.Currency = rates.Fallback(m.cfg.CurrencyOptions, c)
		}
	}

	rate, ok := rates.Resolve(next.From.Currency, next.To.Currency, m.cfg.Rates)
	if out, converted := convert.Forward(next.From.Amount, rate, ok); converted {
		next.To.Amount = out
	} else {
		level.Debug(m.logger).Log("msg", "rate not available", "from", next.From.Currency, "to", next.To.Currency)
	}

	m.dropPending()
	m.state = next
	m.cfg.Location.Publish(next.From.Currency, next.To.Currency)

	snap := m.commit()
	m.mu.Unlock()

	m.notify(snap)
}

// settled returns the state as it will be once the pending amount edit has
// propagated under the current pair. A pending from edit needs nothing: the
// callers recompute the to amount from the from amount anyway. m.mu must be held.
func (m *Machine) settled() domain.Pair {
	next := m.state
	if m.fromCalculating {
		rate, ok := rates.Resolve(next.From.Currency, next.To.Currency, m.cfg.Rates)
		if out, converted := convert.Inverse(next.To.Amount, rate, ok); converted {
			next.From.Amount = out
		}
	}
	return next
}

// dropPending discards the pending amount edit once its effect has been
// folded into the state. m.mu must be held.
func (m *Machine) dropPending() {
	m.seq++
	m.propagate.Cancel()
	m.fromCalculating = false
	m.toCalculating = false
}

// OnHandleSwap exchanges the two currencies. The from amount is kept and
// the to amount recomputed for the new pair. If the new pair has no rate
// nothing changes at all.
func (m *Machine) OnHandleSwap() {
	m.mu.Lock()
	if m.disposed {
		m.mu.Unlock()
		return
	}

	current := m.settled()
	next := domain.Pair{
		From: domain.Slot{Currency: current.To.Currency, Amount: current.From.Amount},
		To:   domain.Slot{Currency: current.From.Currency},
	}
	rate, ok := rates.Resolve(next.From.Currency, next.To.Currency, m.cfg.Rates)
	out, converted := convert.Forward(next.From.Amount, rate, ok)
	if !converted {
		level.Debug(m.logger).Log("msg", "swap aborted, rate not available", "from", next.From.Currency, "to", next.To.Currency)
		m.mu.Unlock()
		return
	}
	next.To.Amount = out

	m.dropPending()
	m.state = next
	m.cfg.Location.Publish(next.From.Currency, next.To.Currency)

	snap := m.commit()
	m.mu.Unlock()

	m.notify(snap)
}

// OnHandleExchange signals a completed exchange to the configured callback.
// It does not change any state.
func (m *Machine) OnHandleExchange() {
	m.mu.Lock()
	disposed := m.disposed
	m.mu.Unlock()

	if disposed || m.cfg.OnSwapSuccess == nil {
		return
	}
	m.cfg.OnSwapSuccess()
}

// Flush propagates a pending amount edit now instead of waiting for the
// debounce period. It reports whether anything was pending.
func (m *Machine) Flush() bool {
	return m.propagate.Flush()
}

// Subscribe registers fn to receive a snapshot after every state change.
// fn runs outside the machine lock; it may read the machine but must not
// call a mutating operation synchronously.
// The returned function removes the subscription.
func (m *Machine) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextSubscriber
	m.nextSubscriber++
	m.subscribers[id] = fn

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subscribers, id)
	}
}

// Dispose ends the session: a pending amount propagation is cancelled and
// every later operation is ignored. Dispose may be called more than once.
func (m *Machine) Dispose() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.disposed {
		return
	}
	m.disposed = true
	m.seq++
	m.propagate.Cancel()
	m.fromCalculating = false
	m.toCalculating = false
	m.subscribers = map[int]func(Snapshot){}
}

// Disposed reports whether Dispose has been called
func (m *Machine) Disposed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.disposed
}

// commit bumps the version and returns the new snapshot. m.mu must be held.
func (m *Machine) commit() Snapshot {
	m.version++
	return m.snapshot()
}

func (m *Machine) notify(snap Snapshot) {
	m.notifyMu.Lock()
	defer m.notifyMu.Unlock()

	// a newer change already delivered a fresher view
	if snap.Version <= m.notified {
		return
	}
	m.notified = snap.Version

	m.mu.Lock()
	subs := make([]func(Snapshot), 0, len(m.subscribers))
	for _, fn := range m.subscribers {
		subs = append(subs, fn)
	}
	m.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}
