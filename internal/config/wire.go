// SPDX-License-Identifier: BUSL-1.1

package config

import (
	"fmt"

	"synnergy-vmcore/amt"
	"synnergy-vmcore/gas"
	"synnergy-vmcore/hamt"
)

// NetworkVersion resolves the configured network version into the
// gas package's enum, applying the NV27Dev feature flag the same way
// Select itself interprets the package-level NV27DevEnabled switch.
func (c *Config) NetworkVersion() gas.NetworkVersion {
	gas.NV27DevEnabled = c.VM.NV27Dev
	return gas.NetworkVersion(c.VM.NetworkVersion)
}

// GasLimit returns the configured per-message gas limit as a Gas value.
func (c *Config) GasLimit() gas.Gas {
	return gas.Gas(c.VM.GasLimit)
}

// HAMTConfig converts the configured HAMT tunables into hamt.Config.
func (c *Config) HAMTConfig() hamt.Config {
	return hamt.Config{
		BitWidth:      c.HAMT.BitWidth,
		MaxArrayWidth: c.HAMT.MaxArrayWidth,
		MinDataDepth:  c.HAMT.MinDataDepth,
	}
}

// AMTConfig converts the configured AMT tunables into amt.Config.
func (c *Config) AMTConfig() amt.Config {
	return amt.Config{BitWidth: c.AMT.BitWidth}
}

// HAMTHashAlgorithm resolves the configured hash algorithm name into a
// hamt.HashAlgorithm implementation.
func (c *Config) HAMTHashAlgorithm() (hamt.HashAlgorithm, error) {
	switch c.HAMT.HashAlgorithm {
	case "", "sha2-256":
		return hamt.SHA256Hash{}, nil
	case "blake2b-256":
		return hamt.Blake2b256Hash{}, nil
	default:
		return nil, fmt.Errorf("config: unknown hamt.hash_algorithm %q", c.HAMT.HashAlgorithm)
	}
}
