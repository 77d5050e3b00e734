package monitor

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"trading-control/internal/events"
)

func TestMonitorAlertsOnBreachOnly(t *testing.T) {
	bus := events.NewBus(100)
	bus.Publish(events.CategoryRiskBreach, map[string]any{"account": "old", "reason": "stale"})

	alerts := make(chan string, 10)
	m := &Monitor{Bus: bus, AlertFn: func(s string) { alerts <- s }}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)

	bus.Publish(events.CategoryOrderSubmitted, map[string]any{"symbol": "ES"})
	bus.Publish(events.CategoryRiskBreach, map[string]any{"account": "main", "reason": "max_day_trades"})

	select {
	case msg := <-alerts:
		require.True(t, strings.Contains(msg, "main"))
		require.True(t, strings.Contains(msg, "max_day_trades"))
	case <-time.After(time.Second):
		t.Fatal("no alert for risk breach")
	}

	select {
	case msg := <-alerts:
		t.Fatalf("unexpected extra alert: %s", msg)
	case <-time.After(50 * time.Millisecond):
	}
}
