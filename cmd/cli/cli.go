// SPDX-License-Identifier: BUSL-1.1

// Package cli implements vmcore's cobra subcommand groups: gas, hamt,
// and amt. Each group follows the teacher's package-level-state-plus-
// PersistentPreRunE-init idiom (cmd/cli/distribution.go): a
// sync.Once-guarded init loads configuration once per process, and
// every subcommand reads the resulting package-level config rather
// than threading it through every call.
package cli

import (
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"synnergy-vmcore/internal/config"
)

var (
	cliCfg  *config.Config
	cliOnce sync.Once
	cliErr  error
	cliLog  = logrus.StandardLogger().WithField("component", "cli")
)

// cliInit lazily loads configuration the first time any vmcore
// subcommand runs, mirroring distInit's sync.Once guard so repeated
// PersistentPreRunE invocations across nested subcommands don't reload
// config on every call.
func cliInit(_ *cobra.Command, _ []string) error {
	cliOnce.Do(func() {
		cliCfg, cliErr = config.LoadFromEnv()
	})
	return cliErr
}
