// Copyright 2026 The Heirloom Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml"
	"github.com/spf13/viper"

	"gitlab.com/heirloomnetwork/heirloom/protocol"
)

// SweepPolicy names who may reclaim flooring residue after all
// beneficiaries have claimed.
type SweepPolicy string

const (
	// SweepToOwner returns dust to the vault owner's estate.
	SweepToOwner SweepPolicy = "owner"
	// SweepToLastClaimant awards dust to the last claiming beneficiary.
	SweepToLastClaimant SweepPolicy = "last-claimant"
)

// Config is the engine's policy configuration.
type Config struct {
	// MinCheckInExtension and MaxCheckInExtension bound how far a
	// check-in may push the deadline, measured from the check-in time.
	MinCheckInExtension time.Duration `toml:"min-check-in-extension" mapstructure:"min-check-in-extension"`
	MaxCheckInExtension time.Duration `toml:"max-check-in-extension" mapstructure:"max-check-in-extension"`

	// AnyoneMayTrigger permits any party to fire an expired switch,
	// instead of only the vault's executor.
	AnyoneMayTrigger bool `toml:"anyone-may-trigger" mapstructure:"anyone-may-trigger"`

	SweepPolicy SweepPolicy `toml:"sweep-policy" mapstructure:"sweep-policy" validate:"oneof=owner last-claimant"`

	// Admin holds the emergency capability, independent of any vault.
	Admin string `toml:"admin" mapstructure:"admin" validate:"heir-url"`

	// Custody is the identity that holds deposited assets.
	Custody string `toml:"custody" mapstructure:"custody" validate:"required,heir-url"`

	LogLevel string `toml:"log-level" mapstructure:"log-level"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		MinCheckInExtension: 24 * time.Hour,
		MaxCheckInExtension: 365 * 24 * time.Hour,
		AnyoneMayTrigger:    false,
		SweepPolicy:         SweepToOwner,
		Custody:             "heir://custody",
		LogLevel:            "info",
	}
}

// Validate checks the configuration for structural errors.
func (c *Config) Validate() error {
	if c.MinCheckInExtension <= 0 {
		return fmt.Errorf("min-check-in-extension must be positive")
	}
	if c.MaxCheckInExtension < c.MinCheckInExtension {
		return fmt.Errorf("max-check-in-extension %v is less than min %v", c.MaxCheckInExtension, c.MinCheckInExtension)
	}

	v, err := protocol.NewValidator()
	if err != nil {
		return err
	}
	return v.Struct(c)
}

// Load reads the configuration from the given file.
func Load(file string) (*Config, error) {
	c := Default()
	err := load(filepath.Dir(file), file, c)
	if err != nil {
		return nil, err
	}

	err = c.Validate()
	if err != nil {
		return nil, fmt.Errorf("validate: %v", err)
	}
	return c, nil
}

func load(dir, file string, c interface{}) error {
	v := viper.New()
	v.SetConfigFile(file)
	v.AddConfigPath(dir)
	err := v.ReadInConfig()
	if err != nil {
		return fmt.Errorf("read: %v", err)
	}

	err = v.Unmarshal(c)
	if err != nil {
		return fmt.Errorf("unmarshal: %v", err)
	}
	return nil
}

// Store writes the configuration to the given file.
func (c *Config) Store(file string) error {
	err := os.MkdirAll(filepath.Dir(file), 0700)
	if err != nil {
		return err
	}

	f, err := os.Create(file)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	return toml.NewEncoder(f).Encode(c)
}
