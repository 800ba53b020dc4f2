// SPDX-License-Identifier: BUSL-1.1

// Command vmcore is the operator-facing entry point for the gas price
// list and persistent trie packages: a thin cobra shell around the
// gas, hamt, and amt subcommand groups, grounded on the teacher's
// cmd/synnergy/main.go root-command layout.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"synnergy-vmcore/cmd/cli"
)

func main() {
	rootCmd := &cobra.Command{Use: "vmcore"}
	rootCmd.AddCommand(cli.GasCmd)
	rootCmd.AddCommand(cli.HamtCmd)
	rootCmd.AddCommand(cli.AmtCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
