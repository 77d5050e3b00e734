package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 1000, cfg.BusCapacity)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("BUS_CAPACITY", "50")
	t.Setenv("POLL_INTERVAL_MS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9999", cfg.Port)
	assert.Equal(t, 50, cfg.BusCapacity)
	assert.Equal(t, 1000, cfg.PollIntervalMS, "bad int falls back to default")
}

func TestParseAccounts(t *testing.T) {
	raw := []byte(`
accounts:
  - name: main
    venue: sim
    base_currency: USD
    strategies: [momentum, vwap]
    risk:
      max_daily_loss_pct: 2.0
      max_day_trades: 3
      flatten_at_close: true
      close_time: "15:55"
      timezone: America/Chicago
  - name: hedge
    venue: sim
    strategies: [vix_hedge]
`)
	accounts, err := ParseAccounts(raw)
	require.NoError(t, err)
	require.Len(t, accounts, 2)

	main := accounts[0]
	assert.Equal(t, "sim", main.Venue)
	assert.Equal(t, []string{"momentum", "vwap"}, main.Strategies)
	require.NotNil(t, main.Risk.MaxDailyLossPct)
	assert.Equal(t, 2.0, *main.Risk.MaxDailyLossPct)
	require.NotNil(t, main.Risk.MaxDayTrades)
	assert.Equal(t, 3, *main.Risk.MaxDayTrades)
	assert.Equal(t, "15:55", main.Risk.CloseTime)

	// Unset rules stay nil, not zero.
	assert.Nil(t, accounts[1].Risk.MaxDailyLossPct)
	assert.Nil(t, accounts[1].Risk.MaxDayTrades)
}

func TestParseAccountsValidation(t *testing.T) {
	_, err := ParseAccounts([]byte("accounts:\n  - venue: sim\n"))
	require.Error(t, err)

	_, err = ParseAccounts([]byte("accounts:\n  - name: main\n"))
	require.Error(t, err)
}

const stylesYAML = `
styles:
  - name: scalper
    label: Scalper
    risk_score: 8
    risk_level: high
    description: Very short holds.
    holding_period: seconds to minutes
    target_markets: [futures]
    recommended_strategies: [momentum]
    position_sizing: {max_pct: 5}
    risk_controls: {max_day_trades: 20}
  - name: swing
    label: Swing
    risk_score: 3
    risk_level: medium
    description: Multi-day holds.
    holding_period: days
    target_markets: [equities]
    recommended_strategies: [breakout]
    position_sizing: {max_pct: 10}
    risk_controls: {max_daily_loss_pct: 2}
`

func TestParseStylesSortedByRiskScore(t *testing.T) {
	styles, err := ParseStyles([]byte(stylesYAML))
	require.NoError(t, err)
	require.Len(t, styles, 2)
	assert.Equal(t, "swing", styles[0].Name)
	assert.Equal(t, "scalper", styles[1].Name)
}

func TestParseStylesMissingFields(t *testing.T) {
	_, err := ParseStyles([]byte(`
styles:
  - name: broken
    risk_score: 1
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required fields")
	assert.Contains(t, err.Error(), "label")
}

func TestStyleLookup(t *testing.T) {
	styles, err := ParseStyles([]byte(stylesYAML))
	require.NoError(t, err)

	s, err := Style("SCALPER", styles)
	require.NoError(t, err)
	assert.Equal(t, "scalper", s.Name)

	s, err = Style("Swing", styles)
	require.NoError(t, err)
	assert.Equal(t, "swing", s.Name)

	_, err = Style("yolo", styles)
	require.Error(t, err)
}
