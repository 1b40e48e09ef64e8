package employee

import (
	"context"
	"fmt"

	"github.com/viant/afs"
	"gopkg.in/yaml.v3"
)

// Config is a serialisable representation of the orchestration core's
// configuration.  The zero value is useful – all nested fields inherit their
// package defaults.
type Config struct {
	Store    StoreConfig    `json:"store" yaml:"store"`
	Task     TaskConfig     `json:"task" yaml:"task"`
	Approval ApprovalConfig `json:"approval" yaml:"approval"`
	Sweeper  SweeperConfig  `json:"sweeper" yaml:"sweeper"`
}

// StoreConfig selects where records are persisted.  An empty BaseURL keeps
// everything in memory; otherwise records live under
// {BaseURL}/tasks and {BaseURL}/approvals on any afs-supported scheme.
type StoreConfig struct {
	BaseURL string `json:"baseURL" yaml:"baseURL"`
}

type TaskConfig struct {
	// DefaultMaxIterations bounds tasks whose start request does not specify
	// a limit.
	DefaultMaxIterations int `json:"defaultMaxIterations" yaml:"defaultMaxIterations"`
}

type ApprovalConfig struct {
	// DefaultExpiryHours is applied when a create request carries no
	// deadline.
	DefaultExpiryHours int `json:"defaultExpiryHours" yaml:"defaultExpiryHours"`
	// ClaimTTLMinutes bounds how long an execution claim is honoured before
	// being treated as abandoned.
	ClaimTTLMinutes int `json:"claimTTLMinutes" yaml:"claimTTLMinutes"`
}

type SweeperConfig struct {
	IntervalMinutes   int `json:"intervalMinutes" yaml:"intervalMinutes"`
	StaleAfterMinutes int `json:"staleAfterMinutes" yaml:"staleAfterMinutes"`
}

// DefaultConfig returns a Config populated with the package defaults.
func DefaultConfig() *Config {
	return &Config{
		Task:     TaskConfig{DefaultMaxIterations: 10},
		Approval: ApprovalConfig{DefaultExpiryHours: 24, ClaimTTLMinutes: 5},
		Sweeper:  SweeperConfig{IntervalMinutes: 5, StaleAfterMinutes: 30},
	}
}

// Validate returns an error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if c.Task.DefaultMaxIterations < 0 {
		return fmt.Errorf("task.defaultMaxIterations cannot be negative")
	}
	if c.Approval.DefaultExpiryHours < 0 {
		return fmt.Errorf("approval.defaultExpiryHours cannot be negative")
	}
	if c.Approval.ClaimTTLMinutes < 0 {
		return fmt.Errorf("approval.claimTTLMinutes cannot be negative")
	}
	if c.Sweeper.IntervalMinutes < 0 || c.Sweeper.StaleAfterMinutes < 0 {
		return fmt.Errorf("sweeper intervals cannot be negative")
	}
	return nil
}

// LoadConfig reads a yaml config from any afs-supported URL (file, mem, s3,
// …).  Unset fields keep their defaults.
func LoadConfig(ctx context.Context, URL string) (*Config, error) {
	fs := afs.New()
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", URL, err)
	}
	config := DefaultConfig()
	if err = yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", URL, err)
	}
	if err = config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}
