// Package engine is the driver that glues admission, routing, and the
// scheduler together. It owns the one rule the router deliberately does not:
// risk is consulted first, and orders flow only when admitted.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"trading-control/internal/events"
	"trading-control/internal/risk"
	"trading-control/internal/router"
	"trading-control/internal/scheduler"
)

// Result is the outcome of a submission attempt. A risk denial is a
// first-class outcome, not an error.
type Result struct {
	Admitted bool
	Reason   string // set when not admitted
	OrderIDs []string
}

// Engine wires the control-plane components for live operation.
type Engine struct {
	Risks  *risk.Registry
	Router *router.Router
	Sched  *scheduler.Scheduler
	Bus    *events.Bus

	// PollInterval paces the scheduler loop; zero means one second.
	PollInterval time.Duration
}

// Submit is the single entry point for strategy order flow. It evaluates the
// account's risk gate against the supplied snapshot, checks the order rate,
// and only then routes; every placed order counts toward the session's
// day-trade tally.
func (e *Engine) Submit(ctx context.Context, strategy string, state risk.AccountState, intents []router.OrderIntent) (Result, error) {
	route, err := e.Router.Lookup(strategy)
	if err != nil {
		return Result{}, err
	}
	mgr := e.Risks.Get(route.Account)
	if mgr == nil {
		return Result{}, fmt.Errorf("account %q has no risk manager", route.Account)
	}

	if !mgr.Evaluate(state) {
		return Result{Admitted: false, Reason: "risk gate denied"}, nil
	}
	if !mgr.CheckOrdersPerMinute(state.Timestamp) {
		return Result{Admitted: false, Reason: "order rate exceeded"}, nil
	}

	ids, err := e.Router.SubmitOrders(ctx, strategy, intents)
	if err != nil {
		return Result{}, err
	}
	for range ids {
		mgr.RecordTrade(state.Timestamp)
	}
	return Result{Admitted: true, OrderIDs: ids}, nil
}

// Run polls the scheduler and the per-account flatten-at-close rule until ctx
// is cancelled. Lifecycle transitions are announced on the bus.
func (e *Engine) Run(ctx context.Context) {
	interval := e.PollInterval
	if interval <= 0 {
		interval = time.Second
	}

	e.Bus.Publish(events.CategoryLifecycle, map[string]any{"mode": "running"})
	defer e.Bus.Publish(events.CategoryLifecycle, map[string]any{"mode": "stopped"})

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			e.Tick(now.UTC())
		}
	}
}

// Tick runs one poll cycle: fire due scheduler tasks and check each account
// for its end-of-day wind-down. Exposed so tests and alternative drivers can
// step the engine with a synthetic clock.
func (e *Engine) Tick(now time.Time) {
	for _, task := range e.Sched.DueTasks(now) {
		log.Debug().Str("task", task.Name).Msg("firing scheduled task")
		task.Callback()
	}
	for _, account := range e.Risks.Accounts() {
		e.Risks.Get(account).ShouldFlattenForClose(now)
	}
}
