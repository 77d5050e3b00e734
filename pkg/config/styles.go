package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// TradingStyle describes a risk profile and execution template for a desk.
type TradingStyle struct {
	Name                  string         `yaml:"name" json:"name"`
	Label                 string         `yaml:"label" json:"label"`
	RiskScore             int            `yaml:"risk_score" json:"risk_score"`
	RiskLevel             string         `yaml:"risk_level" json:"risk_level"`
	Description           string         `yaml:"description" json:"description"`
	HoldingPeriod         string         `yaml:"holding_period" json:"holding_period"`
	TargetMarkets         []string       `yaml:"target_markets" json:"target_markets"`
	RecommendedStrategies []string       `yaml:"recommended_strategies" json:"recommended_strategies"`
	PositionSizing        map[string]any `yaml:"position_sizing" json:"position_sizing,omitempty"`
	RiskControls          map[string]any `yaml:"risk_controls" json:"risk_controls,omitempty"`
	Notes                 string         `yaml:"notes" json:"notes,omitempty"`
}

// LoadStyles parses trading styles from YAML, validates required fields, and
// returns them sorted by risk score.
func LoadStyles(path string) ([]TradingStyle, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read trading styles: %w", err)
	}
	return ParseStyles(raw)
}

type stylesFile struct {
	Styles []TradingStyle `yaml:"styles"`
}

// ParseStyles is LoadStyles on in-memory YAML.
func ParseStyles(raw []byte) ([]TradingStyle, error) {
	var file stylesFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse trading styles yaml: %w", err)
	}
	for _, style := range file.Styles {
		if missing := missingStyleFields(style); len(missing) > 0 {
			return nil, fmt.Errorf("trading style %q missing required fields: %s",
				style.Name, strings.Join(missing, ", "))
		}
	}
	sort.SliceStable(file.Styles, func(i, j int) bool {
		return file.Styles[i].RiskScore < file.Styles[j].RiskScore
	})
	return file.Styles, nil
}

func missingStyleFields(s TradingStyle) []string {
	var missing []string
	for field, ok := range map[string]bool{
		"name":                   s.Name != "",
		"label":                  s.Label != "",
		"risk_level":             s.RiskLevel != "",
		"description":            s.Description != "",
		"holding_period":         s.HoldingPeriod != "",
		"target_markets":         len(s.TargetMarkets) > 0,
		"recommended_strategies": len(s.RecommendedStrategies) > 0,
	} {
		if !ok {
			missing = append(missing, field)
		}
	}
	sort.Strings(missing)
	return missing
}

// Style returns a trading style by name or label, case-insensitive.
func Style(name string, styles []TradingStyle) (TradingStyle, error) {
	normalized := strings.ToLower(name)
	for _, s := range styles {
		if strings.ToLower(s.Name) == normalized || strings.ToLower(s.Label) == normalized {
			return s, nil
		}
	}
	return TradingStyle{}, fmt.Errorf("trading style %q not found", name)
}
