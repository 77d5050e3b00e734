package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"trading-control/internal/risk"
)

// Account is one trading account definition: which venue executes it, which
// strategies route to it, and its risk rule set.
type Account struct {
	Name         string          `yaml:"name"`
	Venue        string          `yaml:"venue"`
	BaseCurrency string          `yaml:"base_currency"`
	Strategies   []string        `yaml:"strategies"`
	Risk         risk.RuleConfig `yaml:"risk"`
}

type accountsFile struct {
	Accounts []Account `yaml:"accounts"`
}

// LoadAccounts parses and validates the account definitions. Missing name or
// venue is a configuration error rejected up front.
func LoadAccounts(path string) ([]Account, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read accounts file: %w", err)
	}
	return ParseAccounts(raw)
}

// ParseAccounts is LoadAccounts on in-memory YAML, for tests and embedding.
func ParseAccounts(raw []byte) ([]Account, error) {
	var file accountsFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse accounts yaml: %w", err)
	}
	for i, acct := range file.Accounts {
		if acct.Name == "" {
			return nil, fmt.Errorf("account %d: name is required", i)
		}
		if acct.Venue == "" {
			return nil, fmt.Errorf("account %q: venue is required", acct.Name)
		}
	}
	return file.Accounts, nil
}
