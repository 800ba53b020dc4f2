// SPDX-License-Identifier: BUSL-1.1

package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"synnergy-vmcore/amt"
	"synnergy-vmcore/ipld"
)

// AmtCmd groups subcommands that build an AMT over a throwaway
// in-memory blockstore for a single invocation, to exercise the data
// structure's API and print its resulting root CID or diff.
var AmtCmd = &cobra.Command{
	Use:               "amt",
	Short:             "exercise the persistent AMT",
	PersistentPreRunE: cliInit,
}

var amtSetCmd = &cobra.Command{
	Use:   "set index=value [index=value...]",
	Short: "insert entries into a fresh AMT and print its root CID",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store := ipld.NewMemBlockstore()
		a, err := amt.New(store, cliCfg.AMTConfig())
		if err != nil {
			return err
		}
		for _, pair := range args {
			idx, value, err := parseIndexedPair(pair)
			if err != nil {
				return err
			}
			if err := a.Set(ctx, idx, value); err != nil {
				return err
			}
		}
		root, err := a.Flush(ctx)
		if err != nil {
			return err
		}
		cliLog.WithField("entries", len(args)).Info("flushed amt")
		fmt.Printf("root=%s count=%d height=%d\n", root.String(), a.Count(), a.Height())
		return nil
	},
}

var amtGetCmd = &cobra.Command{
	Use:   "get index=value [index=value...] -- lookup",
	Short: "insert the given entries, then look up one index and print its value",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store := ipld.NewMemBlockstore()
		a, err := amt.New(store, cliCfg.AMTConfig())
		if err != nil {
			return err
		}
		lookup, err := strconv.ParseUint(args[len(args)-1], 10, 64)
		if err != nil {
			return fmt.Errorf("lookup index: %w", err)
		}
		for _, pair := range args[:len(args)-1] {
			idx, value, err := parseIndexedPair(pair)
			if err != nil {
				return err
			}
			if err := a.Set(ctx, idx, value); err != nil {
				return err
			}
		}
		v, ok, err := a.Get(ctx, lookup)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("index %d not found", lookup)
		}
		fmt.Println(string(v))
		return nil
	},
}

var amtDiffCmd = &cobra.Command{
	Use:   "diff <prev-entries> -- <curr-entries>",
	Short: "build two AMTs from two comma-separated index=value lists and print their diff",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		prevStore := ipld.NewMemBlockstore()
		currStore := ipld.NewMemBlockstore()

		prev, err := buildAmt(ctx, prevStore, args[0])
		if err != nil {
			return fmt.Errorf("prev: %w", err)
		}
		curr, err := buildAmt(ctx, currStore, args[1])
		if err != nil {
			return fmt.Errorf("curr: %w", err)
		}

		changes, err := amt.Diff(ctx, prev, curr)
		if err != nil {
			return err
		}
		for _, c := range changes {
			fmt.Printf("%s key=%d before=%q after=%q\n", c.Kind, c.Key, c.Before, c.After)
		}
		if len(changes) == 0 {
			fmt.Println("no changes")
		}
		return nil
	},
}

// buildAmt parses a comma-separated list of index=value entries and
// sets them all on a fresh AMT backed by store.
func buildAmt(ctx context.Context, store ipld.Blockstore, spec string) (*amt.Amt, error) {
	a, err := amt.New(store, cliCfg.AMTConfig())
	if err != nil {
		return nil, err
	}
	if spec == "" {
		return a, nil
	}
	for _, pair := range strings.Split(spec, ",") {
		idx, value, err := parseIndexedPair(pair)
		if err != nil {
			return nil, err
		}
		if err := a.Set(ctx, idx, value); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func parseIndexedPair(pair string) (uint64, []byte, error) {
	idxStr, value, ok := strings.Cut(pair, "=")
	if !ok {
		return 0, nil, fmt.Errorf("malformed entry %q, want index=value", pair)
	}
	idx, err := strconv.ParseUint(idxStr, 10, 64)
	if err != nil {
		return 0, nil, fmt.Errorf("index %q: %w", idxStr, err)
	}
	return idx, []byte(value), nil
}

func init() {
	AmtCmd.AddCommand(amtSetCmd, amtGetCmd, amtDiffCmd)
}
