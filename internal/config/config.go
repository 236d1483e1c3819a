package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/splitkit-dev/splitkit/internal/balance"
	"github.com/splitkit-dev/splitkit/internal/ledger"
	"github.com/splitkit-dev/splitkit/internal/money"
)

// FileName is the config file inside a trip directory.
const FileName = "trip.yaml"

// Config represents the top-level trip.yaml configuration.
type Config struct {
	Trip     TripConfig     `yaml:"trip"`
	Currency CurrencyConfig `yaml:"currency"`
	Split    SplitConfig    `yaml:"split"`
	Git      GitConfig      `yaml:"git"`
}

// TripConfig identifies the trip.
type TripConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	Code string `yaml:"code"`
}

// CurrencyConfig names the reference currency and the rates used to convert
// foreign amounts into it.
type CurrencyConfig struct {
	Reference string            `yaml:"reference"`
	Rates     map[string]string `yaml:"rates,omitempty"` // currency -> units of reference per unit
}

// SplitConfig controls validation and settlement tolerances.
type SplitConfig struct {
	Tolerance     int64  `yaml:"tolerance"` // minor units
	AllowMixed    bool   `yaml:"allow_mixed"`
	UnknownMember string `yaml:"unknown_member"` // "reject" or "skip"
}

// GitConfig controls git integration.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads a trip.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new trip.
func Default(tripName, code string) *Config {
	return &Config{
		Trip: TripConfig{
			ID:   uuid.NewString(),
			Name: tripName,
			Code: code,
		},
		Currency: CurrencyConfig{
			Reference: "HKD",
			Rates: map[string]string{
				"JPY": "0.053",
			},
		},
		Split: SplitConfig{
			Tolerance:     ledger.DefaultSplitTolerance,
			UnknownMember: string(balance.RejectUnknown),
		},
		Git: GitConfig{
			AutoCommit:  true,
			AuthorName:  "splitkit",
			AuthorEmail: "splitkit@localhost",
		},
	}
}

// Validate checks the values a hand-edited trip.yaml could get wrong.
func (c *Config) Validate() error {
	if c.Split.Tolerance < 0 {
		return fmt.Errorf("split.tolerance must not be negative, got %d", c.Split.Tolerance)
	}
	switch balance.UnknownMemberPolicy(c.Split.UnknownMember) {
	case "", balance.RejectUnknown, balance.SkipUnknown:
	default:
		return fmt.Errorf("split.unknown_member must be %q or %q, got %q",
			balance.RejectUnknown, balance.SkipUnknown, c.Split.UnknownMember)
	}
	for cur, r := range c.Currency.Rates {
		if _, err := money.ParseRate(r); err != nil {
			return fmt.Errorf("currency.rates.%s: %w", cur, err)
		}
	}
	return nil
}

// Policy returns the validation policy configured for the trip.
func (c *Config) Policy() ledger.Policy {
	return ledger.Policy{
		SplitTolerance: c.Split.Tolerance,
		AllowMixed:     c.Split.AllowMixed,
	}
}

// UnknownMembers returns the configured unknown member policy.
func (c *Config) UnknownMembers() balance.UnknownMemberPolicy {
	if c.Split.UnknownMember == "" {
		return balance.RejectUnknown
	}
	return balance.UnknownMemberPolicy(c.Split.UnknownMember)
}

// Rate returns the conversion rate from currency into the reference currency.
// The reference currency itself always converts at 1.
func (c *Config) Rate(currency string) (decimal.Decimal, error) {
	currency = strings.ToUpper(currency)
	if currency == "" || currency == strings.ToUpper(c.Currency.Reference) {
		return decimal.NewFromInt(1), nil
	}
	for cur, r := range c.Currency.Rates {
		if strings.EqualFold(cur, currency) {
			return money.ParseRate(r)
		}
	}
	return decimal.Zero, fmt.Errorf("no rate configured for %s (known: %s)", currency, strings.Join(c.currencies(), ", "))
}

func (c *Config) currencies() []string {
	out := []string{c.Currency.Reference}
	var rest []string
	for cur := range c.Currency.Rates {
		rest = append(rest, cur)
	}
	sort.Strings(rest)
	return append(out, rest...)
}
