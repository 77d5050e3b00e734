// Package broker defines the venue-agnostic execution interface and the
// registry of configured venues.
package broker

import "context"

// Side of an order. Quantity is always a magnitude; direction lives here.
type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

// OrderSpec describes an order to be placed on a venue.
type OrderSpec struct {
	Symbol      string
	Side        Side
	Qty         float64
	Type        string // MARKET, LIMIT, STOP
	TimeInForce string
	Price       *float64 // nil for market orders
	Stop        *float64
	Tag         string // free-form strategy annotation
}

// Placement is the venue's answer to a placed order.
type Placement struct {
	OrderID string
	Status  string
}

// Position is a single open position on a venue account.
type Position struct {
	Symbol string  `json:"symbol"`
	Qty    float64 `json:"qty"`
	Side   string  `json:"side,omitempty"`
}

// Balance is a venue account's cash and equity.
type Balance struct {
	Cash   float64 `json:"cash"`
	Equity float64 `json:"equity"`
}

// Client abstracts a trading venue. CancelOpenOrders and FlattenPositions are
// called unconditionally on a risk breach, so any venue wired into the risk
// layer must implement them for real; NopSafety provides the no-op default
// for venues that cannot.
type Client interface {
	PlaceOrder(ctx context.Context, account string, spec OrderSpec) (Placement, error)
	CancelOrder(ctx context.Context, account, orderID string) (bool, error)
	Positions(account string) []Position
	Balance(account string) Balance

	CancelOpenOrders(account string)
	FlattenPositions(account string)
}

// NopSafety is an embeddable default for the two safety operations.
type NopSafety struct{}

func (NopSafety) CancelOpenOrders(string) {}
func (NopSafety) FlattenPositions(string) {}
