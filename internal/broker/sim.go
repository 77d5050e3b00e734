package broker

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const simStartingCash = 100000.0

// OrderRecord is a sim order's lifetime state.
type OrderRecord struct {
	ID     string
	Symbol string
	Side   Side
	Qty    float64
	Price  *float64
	Status string // open, filled, cancelled
}

// Sim is an in-memory venue used for dry runs and tests. Every order is
// accepted and recorded as open; fills are not simulated. The venue applies
// a request rate limit the way a real gateway would.
type Sim struct {
	name    string
	limiter *rate.Limiter

	mu        sync.Mutex
	orders    map[string]*OrderRecord
	positions map[string][]Position
	balances  map[string]Balance
}

// NewSim creates a simulated venue. rps bounds PlaceOrder throughput; rps <= 0
// means unlimited.
func NewSim(name string, rps float64) *Sim {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	return &Sim{
		name:      name,
		limiter:   rate.NewLimiter(limit, max(int(rps), 1)),
		orders:    make(map[string]*OrderRecord),
		positions: make(map[string][]Position),
		balances:  make(map[string]Balance),
	}
}

func (s *Sim) nextID() string {
	return fmt.Sprintf("%s-%s", s.name, uuid.NewString())
}

func (s *Sim) PlaceOrder(ctx context.Context, account string, spec OrderSpec) (Placement, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return Placement{}, fmt.Errorf("sim %s: rate limit wait: %w", s.name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec := &OrderRecord{
		ID:     s.nextID(),
		Symbol: spec.Symbol,
		Side:   spec.Side,
		Qty:    spec.Qty,
		Price:  spec.Price,
		Status: "open",
	}
	s.orders[rec.ID] = rec
	s.positions[account] = append(s.positions[account], Position{
		Symbol: spec.Symbol,
		Qty:    spec.Qty,
		Side:   string(spec.Side),
	})

	bal, ok := s.balances[account]
	if !ok {
		bal = Balance{Cash: simStartingCash, Equity: simStartingCash}
	}
	px := 100.0
	if spec.Price != nil {
		px = *spec.Price
	}
	bal.Equity -= spec.Qty * px
	s.balances[account] = bal

	log.Debug().Str("venue", s.name).Str("account", account).
		Str("order_id", rec.ID).Str("symbol", spec.Symbol).
		Str("side", string(spec.Side)).Float64("qty", spec.Qty).
		Msg("sim order placed")

	return Placement{OrderID: rec.ID, Status: rec.Status}, nil
}

func (s *Sim) CancelOrder(ctx context.Context, account, orderID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.orders[orderID]
	if !ok {
		return false, nil
	}
	rec.Status = "cancelled"
	return true, nil
}

func (s *Sim) Positions(account string) []Position {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Position, len(s.positions[account]))
	copy(out, s.positions[account])
	return out
}

func (s *Sim) Balance(account string) Balance {
	s.mu.Lock()
	defer s.mu.Unlock()
	if bal, ok := s.balances[account]; ok {
		return bal
	}
	return Balance{Cash: simStartingCash, Equity: simStartingCash}
}

// CancelOpenOrders cancels every open order on the venue.
func (s *Sim) CancelOpenOrders(account string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.orders {
		if rec.Status == "open" {
			rec.Status = "cancelled"
		}
	}
	log.Info().Str("venue", s.name).Str("account", account).Msg("sim cancel all open orders")
}

// FlattenPositions clears the account's position list.
func (s *Sim) FlattenPositions(account string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.positions[account] = nil
	log.Info().Str("venue", s.name).Str("account", account).Msg("sim flatten positions")
}

// Order returns a copy of an order's record, for tests and status queries.
func (s *Sim) Order(orderID string) (OrderRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.orders[orderID]
	if !ok {
		return OrderRecord{}, false
	}
	return *rec, true
}
