// SPDX-License-Identifier: BUSL-1.1

// Command gaslint checks that every HashAlgorithm, SignatureType, and
// PoStProofType variant the gas package knows about is priced in
// every network-version price list, giving spec.md §9's "exhaustive
// at compile time" requirement a concrete, runnable check: a variant
// added to an enum without a matching price entry fails this command
// rather than silently falling back to a zero charge. Grounded on the
// teacher's cmd/opcode-lint/main.go, which checks for duplicate
// opcodes and names the same way this checks for missing price
// entries.
package main

import (
	"fmt"
	"os"

	"synnergy-vmcore/gas"
)

func main() {
	lists := gas.NamedPriceLists()
	failed := false

	for _, name := range []string{"watermelon", "teep"} {
		p, ok := lists[name]
		if !ok {
			fmt.Fprintf(os.Stderr, "gaslint: no price list named %q\n", name)
			failed = true
			continue
		}
		report := gas.CheckExhaustiveness(p)
		fmt.Println(report)
		if !report.OK() {
			failed = true
		}
	}

	for _, proofType := range gas.AllSealProofTypes() {
		for _, name := range []string{"watermelon", "teep"} {
			p := lists[name]
			direct := gas.CheckSealProofCoverage(p, proofType)
			fmt.Printf("%s: seal proof type %d priced directly: %v\n", name, proofType, direct)
		}
	}

	if failed {
		os.Exit(1)
	}
	fmt.Println("gaslint: all price lists exhaustive")
}
