package risk

import "time"

// RuleConfig is the immutable per-account rule set. A nil field means the
// rule is not enforced; pointers rather than zero values because some
// thresholds are meaningfully zero.
type RuleConfig struct {
	MaxDailyLossPct    *float64 `yaml:"max_daily_loss_pct"`
	MaxIntradayLossPct *float64 `yaml:"max_intraday_loss_pct"`
	MaxPosValuePct     *float64 `yaml:"max_pos_value_pct"`
	MaxOrdersPerMin    *int     `yaml:"max_orders_per_min"`
	MaxPositions       *int     `yaml:"max_positions"`
	ContractsPerSymbol *int     `yaml:"contracts_per_symbol"`
	MaxLeverage        *float64 `yaml:"max_leverage"`
	HardStopPct        *float64 `yaml:"hard_stop_pct"`
	AllowShortVol      *bool    `yaml:"allow_short_vol"`
	MaxDayTrades       *int     `yaml:"max_day_trades"`
	FlattenAtClose     *bool    `yaml:"flatten_at_close"`
	CloseTime          string   `yaml:"close_time"` // "HH:MM"
	Timezone           string   `yaml:"timezone"`   // IANA name, UTC when empty
}

// PositionState is one open position as reported by the caller.
type PositionState struct {
	Symbol string  `json:"symbol"`
	Qty    float64 `json:"qty"`
}

// AccountState is a caller-supplied snapshot evaluated against the rules.
// The manager retains nothing from it except the intraday peak equity.
type AccountState struct {
	Balance   float64
	Equity    float64
	Positions []PositionState
	Timestamp time.Time // zero means "now"
}

// Status is a read-only view of a manager's session state for the API layer.
type Status struct {
	Account        string `json:"account"`
	Armed          bool   `json:"armed"`
	SessionDate    string `json:"session_date"`
	TradeCount     int    `json:"trade_count"`
	FlattenedToday bool   `json:"flattened_today"`
}
