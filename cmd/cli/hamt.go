// SPDX-License-Identifier: BUSL-1.1

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"synnergy-vmcore/hamt"
	"synnergy-vmcore/ipld"
)

// HamtCmd groups subcommands that build a HAMT over a throwaway
// in-memory blockstore for a single invocation, to exercise the data
// structure's API and print its resulting root CID.
var HamtCmd = &cobra.Command{
	Use:               "hamt",
	Short:             "exercise the persistent HAMT",
	PersistentPreRunE: cliInit,
}

var hamtPutCmd = &cobra.Command{
	Use:   "put key=value [key=value...]",
	Short: "insert entries into a fresh HAMT and print its root CID",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store := ipld.NewMemBlockstore()
		hashAlg, err := cliCfg.HAMTHashAlgorithm()
		if err != nil {
			return err
		}
		m, err := hamt.New(store, cliCfg.HAMTConfig(), hashAlg)
		if err != nil {
			return err
		}
		for _, pair := range args {
			key, value, ok := strings.Cut(pair, "=")
			if !ok {
				return fmt.Errorf("malformed entry %q, want key=value", pair)
			}
			if err := m.Set(ctx, []byte(key), []byte(value)); err != nil {
				return err
			}
		}
		root, err := m.Flush(ctx)
		if err != nil {
			return err
		}
		cliLog.WithField("entries", len(args)).Info("flushed hamt")
		fmt.Println(root.String())
		return nil
	},
}

var hamtGetCmd = &cobra.Command{
	Use:   "get key=value [key=value...] -- lookup",
	Short: "insert the given entries, then look up one key and print its value",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store := ipld.NewMemBlockstore()
		hashAlg, err := cliCfg.HAMTHashAlgorithm()
		if err != nil {
			return err
		}
		m, err := hamt.New(store, cliCfg.HAMTConfig(), hashAlg)
		if err != nil {
			return err
		}
		lookup := args[len(args)-1]
		for _, pair := range args[:len(args)-1] {
			key, value, ok := strings.Cut(pair, "=")
			if !ok {
				return fmt.Errorf("malformed entry %q, want key=value", pair)
			}
			if err := m.Set(ctx, []byte(key), []byte(value)); err != nil {
				return err
			}
		}
		v, ok, err := m.Get(ctx, []byte(lookup))
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("key %q not found", lookup)
		}
		fmt.Println(string(v))
		return nil
	},
}

func init() {
	HamtCmd.AddCommand(hamtPutCmd, hamtGetCmd)
}
