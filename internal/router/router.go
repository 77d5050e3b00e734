// Package router maps strategy names to execution venues and turns order
// intents into placed orders. Routing is a pure mapping problem; admission is
// the caller's responsibility and the router never consults the risk gate.
package router

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"trading-control/internal/broker"
	"trading-control/internal/events"
)

// ErrUnknownStrategy reports a strategy with no registered route. It is a
// configuration error, not a runtime one.
type ErrUnknownStrategy struct {
	Strategy string
}

func (e ErrUnknownStrategy) Error() string {
	return fmt.Sprintf("strategy %q has no registered route", e.Strategy)
}

// Route binds a strategy name to the account and venue that execute it.
type Route struct {
	Strategy string
	Account  string
	Venue    string
}

// OrderIntent is what a strategy asks for, before routing.
type OrderIntent struct {
	Symbol string
	Side   broker.Side
	Qty    float64
	Type   string
	Price  *float64
	Stop   *float64
	Tag    string
}

// AuditSink receives one durable record per submission and cancellation.
type AuditSink interface {
	Append(kind string, detail map[string]any) error
}

// Router resolves strategies to venues. The route map is built once from
// configuration and is immutable afterwards, so reads need no locking.
type Router struct {
	routes map[string]Route
	venues *broker.Registry
	bus    *events.Bus
	audit  AuditSink
}

// AccountRoutes is the slice of account configuration the router consumes:
// each account executes the strategies listed under it on its venue.
type AccountRoutes struct {
	Name       string
	Venue      string
	Strategies []string
}

// New builds the route table. A strategy listed under two accounts takes the
// last one; accounts are applied in declaration order.
func New(accounts []AccountRoutes, venues *broker.Registry, bus *events.Bus, audit AuditSink) *Router {
	routes := make(map[string]Route)
	for _, acct := range accounts {
		for _, strat := range acct.Strategies {
			routes[strat] = Route{Strategy: strat, Account: acct.Name, Venue: acct.Venue}
		}
	}
	return &Router{routes: routes, venues: venues, bus: bus, audit: audit}
}

// Lookup returns the route for a strategy.
func (r *Router) Lookup(strategy string) (Route, error) {
	route, ok := r.routes[strategy]
	if !ok {
		return Route{}, ErrUnknownStrategy{Strategy: strategy}
	}
	return route, nil
}

// SubmitOrders places one order per intent on the strategy's venue and
// returns the venue order ids in input order. Unknown strategies and venues
// fail before any order is placed; a venue failure mid-list propagates with
// the ids placed so far.
func (r *Router) SubmitOrders(ctx context.Context, strategy string, intents []OrderIntent) ([]string, error) {
	route, err := r.Lookup(strategy)
	if err != nil {
		return nil, err
	}
	client, err := r.venues.Get(route.Venue)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(intents))
	for _, intent := range intents {
		spec := broker.OrderSpec{
			Symbol:      intent.Symbol,
			Side:        intent.Side,
			Qty:         intent.Qty,
			Type:        intent.Type,
			TimeInForce: "DAY",
			Price:       intent.Price,
			Stop:        intent.Stop,
			Tag:         intent.Tag,
		}
		placed, err := client.PlaceOrder(ctx, route.Account, spec)
		if err != nil {
			return ids, fmt.Errorf("place order on %s: %w", route.Venue, err)
		}
		ids = append(ids, placed.OrderID)

		detail := map[string]any{
			"venue":   route.Venue,
			"account": route.Account,
			"symbol":  intent.Symbol,
			"side":    string(intent.Side),
			"qty":     intent.Qty,
			"type":    intent.Type,
			"tag":     intent.Tag,
		}
		if r.audit != nil {
			if err := r.audit.Append("create_order", detail); err != nil {
				log.Error().Err(err).Msg("audit append failed")
			}
		}
		if r.bus != nil {
			r.bus.Publish(events.CategoryOrderSubmitted, detail)
		}
		log.Info().Str("strategy", strategy).Str("venue", route.Venue).
			Str("symbol", intent.Symbol).Str("side", string(intent.Side)).
			Float64("qty", intent.Qty).Str("order_id", placed.OrderID).
			Msg("order submitted")
	}
	return ids, nil
}

// CancelOrder cancels a previously placed order on the strategy's venue and
// reports whether the venue acknowledged the cancel.
func (r *Router) CancelOrder(ctx context.Context, strategy, orderID string) (bool, error) {
	route, err := r.Lookup(strategy)
	if err != nil {
		return false, err
	}
	client, err := r.venues.Get(route.Venue)
	if err != nil {
		return false, err
	}

	ok, err := client.CancelOrder(ctx, route.Account, orderID)
	if err != nil {
		return false, fmt.Errorf("cancel order on %s: %w", route.Venue, err)
	}

	detail := map[string]any{
		"venue":    route.Venue,
		"account":  route.Account,
		"order_id": orderID,
		"status":   ok,
	}
	if r.audit != nil {
		if err := r.audit.Append("cancel_order", detail); err != nil {
			log.Error().Err(err).Msg("audit append failed")
		}
	}
	if r.bus != nil {
		r.bus.Publish(events.CategoryOrderCancelled, detail)
	}
	return ok, nil
}
