// Package risk implements the per-account admission gate with a one-way
// session kill switch.
package risk

import (
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"trading-control/internal/events"
)

// orderWindowCap bounds the sliding order-timestamp window.
const orderWindowCap = 1000

// BreachBroker is the slice of the venue interface the breach path needs.
// Both safety calls are made unconditionally when the switch trips.
type BreachBroker interface {
	CancelOpenOrders(account string)
	FlattenPositions(account string)
}

// AuditSink receives one durable record per breach, independent of the bus.
type AuditSink interface {
	Append(kind string, detail map[string]any) error
}

// Manager is the admission gate for a single account. All operations on one
// instance are serialized by its mutex; instances for different accounts
// never contend. Session-scoped state resets the first time any operation
// observes a new UTC calendar date.
type Manager struct {
	account string
	rules   RuleConfig
	broker  BreachBroker
	bus     *events.Bus
	audit   AuditSink

	// Parsed once at construction; a malformed value degrades only the
	// flatten-at-close rule.
	closeMinute int // minutes since local midnight, -1 when unconfigured
	tz          *time.Location

	mu             sync.Mutex
	killSwitch     bool
	sessionDate    string // UTC "2006-01-02", empty before first operation
	tradeCount     int
	intradayPeak   *float64
	flattenedToday bool
	orderTimes     []time.Time
}

// NewManager builds the gate for one account. A malformed close time or an
// unknown timezone is logged and treated as "rule unconfigured" so the
// remaining rules keep functioning.
func NewManager(account string, rules RuleConfig, broker BreachBroker, bus *events.Bus, audit AuditSink) *Manager {
	m := &Manager{
		account:     account,
		rules:       rules,
		broker:      broker,
		bus:         bus,
		audit:       audit,
		closeMinute: -1,
	}
	if rules.CloseTime != "" {
		if t, err := time.Parse("15:04", rules.CloseTime); err == nil {
			m.closeMinute = t.Hour()*60 + t.Minute()
		} else {
			log.Warn().Str("account", account).Str("close_time", rules.CloseTime).
				Msg("invalid close time, flatten-at-close disabled")
		}
	}
	if rules.Timezone != "" {
		if loc, err := time.LoadLocation(rules.Timezone); err == nil {
			m.tz = loc
		} else {
			log.Warn().Str("account", account).Str("timezone", rules.Timezone).
				Msg("unknown timezone, close time read as UTC")
		}
	}
	return m
}

// Account returns the account this gate guards.
func (m *Manager) Account() string { return m.account }

// trip latches the kill switch, announces the breach, and winds the account
// down. Re-trips within one session are silent no-ops. Caller holds m.mu.
func (m *Manager) trip(reason string) {
	if m.killSwitch {
		return
	}
	m.killSwitch = true
	log.Error().Str("account", m.account).Str("reason", reason).Msg("risk breach")
	if m.bus != nil {
		m.bus.Publish(events.CategoryRiskBreach, map[string]any{
			"account": m.account,
			"reason":  reason,
		})
	}
	if m.audit != nil {
		if err := m.audit.Append("risk.breach", map[string]any{
			"account": m.account,
			"reason":  reason,
		}); err != nil {
			log.Error().Err(err).Msg("audit append failed")
		}
	}
	m.broker.CancelOpenOrders(m.account)
	m.broker.FlattenPositions(m.account)
}

// ensureSession rolls the session on the first operation of a new UTC day.
// Caller holds m.mu.
func (m *Manager) ensureSession(now time.Time) {
	if now.IsZero() {
		now = time.Now()
	}
	current := now.UTC().Format(time.DateOnly)
	if m.sessionDate != current {
		m.sessionDate = current
		m.tradeCount = 0
		m.intradayPeak = nil
		m.flattenedToday = false
		m.killSwitch = false
	}
}

// Evaluate checks the snapshot against every configured rule in order and
// reports whether order flow is admitted. It fails closed when already
// tripped, and the first violated rule trips the switch and short-circuits.
func (m *Manager) Evaluate(state AccountState) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ensureSession(state.Timestamp)
	if m.killSwitch {
		return false
	}

	if m.rules.MaxDailyLossPct != nil && state.Balance > 0 {
		dd := (state.Balance - state.Equity) / state.Balance * 100
		if dd > *m.rules.MaxDailyLossPct {
			m.trip("max_daily_loss_pct")
			return false
		}
	}

	if m.rules.MaxIntradayLossPct != nil && state.Equity > 0 {
		if m.intradayPeak == nil || state.Equity > *m.intradayPeak {
			peak := state.Equity
			m.intradayPeak = &peak
		} else if *m.intradayPeak > 0 {
			dd := (*m.intradayPeak - state.Equity) / *m.intradayPeak * 100
			if dd > *m.rules.MaxIntradayLossPct {
				m.trip("max_intraday_loss_pct")
				return false
			}
		}
	}

	if m.rules.MaxPositions != nil && len(state.Positions) > *m.rules.MaxPositions {
		m.trip("max_positions")
		return false
	}

	if m.rules.ContractsPerSymbol != nil {
		for _, pos := range state.Positions {
			if math.Abs(pos.Qty) > float64(*m.rules.ContractsPerSymbol) {
				m.trip("contracts_per_symbol")
				return false
			}
		}
	}

	return true
}

// CheckOrdersPerMinute records an order timestamp in the sliding window and
// trips when more than the configured cap land within 60 seconds. A nil cap
// is a no-op that admits.
func (m *Manager) CheckOrdersPerMinute(now time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.rules.MaxOrdersPerMin == nil {
		return true
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	if len(m.orderTimes) == orderWindowCap {
		m.orderTimes = m.orderTimes[1:]
	}
	m.orderTimes = append(m.orderTimes, now)
	cutoff := now.Add(-time.Minute)
	for len(m.orderTimes) > 0 && m.orderTimes[0].Before(cutoff) {
		m.orderTimes = m.orderTimes[1:]
	}

	if len(m.orderTimes) > *m.rules.MaxOrdersPerMin {
		m.trip("max_orders_per_min")
		return false
	}
	return true
}

// RecordTrade increments the session trade counter; exceeding the configured
// day-trade cap trips the switch.
func (m *Manager) RecordTrade(now time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ensureSession(now)
	if m.rules.MaxDayTrades == nil {
		return true
	}
	m.tradeCount++
	if m.tradeCount > *m.rules.MaxDayTrades {
		m.trip("max_day_trades")
		return false
	}
	return true
}

// ShouldFlattenForClose reports whether the scheduled end-of-day wind-down
// should fire. It fires at most once per session, cancels open orders and
// flattens positions when it does, and never touches the kill switch.
func (m *Manager) ShouldFlattenForClose(now time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ensureSession(now)
	if m.rules.FlattenAtClose == nil || !*m.rules.FlattenAtClose || m.closeMinute < 0 {
		return false
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	local := now.UTC()
	if m.tz != nil {
		local = now.In(m.tz)
	}

	if m.flattenedToday {
		return false
	}
	if local.Hour()*60+local.Minute() >= m.closeMinute {
		m.flattenedToday = true
		log.Info().Str("account", m.account).Msg("flatten at close triggered")
		m.broker.CancelOpenOrders(m.account)
		m.broker.FlattenPositions(m.account)
		return true
	}
	return false
}

// Tripped reports whether the kill switch is latched.
func (m *Manager) Tripped() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.killSwitch
}

// Status returns a snapshot of the session state.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Status{
		Account:        m.account,
		Armed:          !m.killSwitch,
		SessionDate:    m.sessionDate,
		TradeCount:     m.tradeCount,
		FlattenedToday: m.flattenedToday,
	}
}
