// SPDX-License-Identifier: BUSL-1.1

// Package config provides a reusable loader for vmcore's configuration
// files and environment variables, mirroring the teacher's
// pkg/config/config.go shape: a single struct unmarshaled by viper,
// merged with an optional environment-specific overlay and a .env
// file loaded via godotenv.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Version is the semantic version of this configuration package.
const Version = "v0.1.0"

// Config is the unified configuration for a vmcore process: which
// network version prices messages, the HAMT/AMT layout tunables in
// force, and logging.
type Config struct {
	VM struct {
		NetworkVersion int  `mapstructure:"network_version" json:"network_version"`
		NV27Dev        bool `mapstructure:"nv27_dev" json:"nv27_dev"`
		GasLimit       uint64 `mapstructure:"gas_limit" json:"gas_limit"`
	} `mapstructure:"vm" json:"vm"`

	HAMT struct {
		BitWidth      int    `mapstructure:"bit_width" json:"bit_width"`
		MaxArrayWidth int    `mapstructure:"max_array_width" json:"max_array_width"`
		MinDataDepth  int    `mapstructure:"min_data_depth" json:"min_data_depth"`
		HashAlgorithm string `mapstructure:"hash_algorithm" json:"hash_algorithm"`
	} `mapstructure:"hamt" json:"hamt"`

	AMT struct {
		BitWidth int `mapstructure:"bit_width" json:"bit_width"`
	} `mapstructure:"amt" json:"amt"`

	Logging struct {
		Level string `mapstructure:"level" json:"level"`
		File  string `mapstructure:"file" json:"file"`
	} `mapstructure:"logging" json:"logging"`
}

// AppConfig holds the configuration loaded via Load or LoadFromEnv.
var AppConfig Config

// setDefaults mirrors DefaultConfig of the hamt/amt packages plus the
// oldest supported network version, so a vmcore process run with no
// config file at all still boots with a usable, documented setting.
func setDefaults() {
	viper.SetDefault("vm.network_version", 21)
	viper.SetDefault("vm.nv27_dev", false)
	viper.SetDefault("vm.gas_limit", 10_000_000_000)
	viper.SetDefault("hamt.bit_width", 8)
	viper.SetDefault("hamt.max_array_width", 3)
	viper.SetDefault("hamt.min_data_depth", 0)
	viper.SetDefault("hamt.hash_algorithm", "sha2-256")
	viper.SetDefault("amt.bit_width", 3)
	viper.SetDefault("logging.level", "info")
}

// Load reads configuration files and merges any environment-specific
// overrides, storing the result in AppConfig. If env is empty, only
// the default configuration file (if present) is loaded; a missing
// config file is not an error since every field has a default.
func Load(env string) (*Config, error) {
	_ = godotenv.Load()

	setDefaults()
	viper.SetConfigName("vmcore")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("config")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("config: reading vmcore config: %w", err)
		}
	}

	if env != "" {
		viper.SetConfigName(env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("config: merging %s config: %w", env, err)
		}
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("VMCORE")

	if err := viper.Unmarshal(&AppConfig); err != nil {
		return nil, fmt.Errorf("config: unmarshaling config: %w", err)
	}
	return &AppConfig, nil
}

// LoadFromEnv loads configuration using the VMCORE_ENV environment
// variable to pick an overlay, matching the teacher's
// SYNN_ENV/LoadFromEnv convention.
func LoadFromEnv() (*Config, error) {
	return Load(envOrDefault("VMCORE_ENV", ""))
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
