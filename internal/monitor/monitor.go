// Package monitor tails the event bus and surfaces risk breaches to an alert
// hook (log output by default).
package monitor

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"trading-control/internal/events"
)

// Monitor forwards risk.breach events to AlertFn. It consumes the bus from
// the current tail; historical events are not re-alerted.
type Monitor struct {
	Bus     *events.Bus
	AlertFn func(string)
}

// Start begins tailing in a goroutine that exits when ctx is cancelled.
func (m *Monitor) Start(ctx context.Context) {
	if m.Bus == nil {
		log.Warn().Msg("monitor has no bus; skipping")
		return
	}
	alert := m.AlertFn
	if alert == nil {
		alert = func(msg string) { log.Warn().Msg(msg) }
	}

	ch := m.Bus.Subscribe(ctx, m.Bus.LastID())
	go func() {
		for ev := range ch {
			if ev.Category != events.CategoryRiskBreach {
				continue
			}
			alert(formatBreach(ev))
		}
	}()
}

func formatBreach(ev events.Event) string {
	return fmt.Sprintf("risk breach on account %v: %v (event %d)",
		ev.Payload["account"], ev.Payload["reason"], ev.ID)
}
