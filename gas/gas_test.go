// SPDX-License-Identifier: BUSL-1.1

package gas

import (
	"math"
	"testing"
)

func TestGasAddSaturates(t *testing.T) {
	got := Gas(math.MaxUint64 - 5).Add(Gas(10))
	if got != Gas(math.MaxUint64) {
		t.Fatalf("expected saturation at MaxUint64, got %d", got)
	}
}

func TestGasSubFloors(t *testing.T) {
	got := Gas(5).Sub(Gas(10))
	if got != Zero {
		t.Fatalf("expected floor at zero, got %d", got)
	}
}

func TestGasMulSaturates(t *testing.T) {
	got := Gas(math.MaxUint64 / 2).MulUint64(3)
	if got != Gas(math.MaxUint64) {
		t.Fatalf("expected saturation at MaxUint64, got %d", got)
	}
}

func TestGasMulNegativeIsZero(t *testing.T) {
	got := Gas(100).Mul(-1)
	if got != Zero {
		t.Fatalf("expected zero for negative multiplier, got %d", got)
	}
}

func TestToWholeGasFloors(t *testing.T) {
	if got := Gas(1999).ToWholeGas(); got != 1 {
		t.Fatalf("expected 1 whole gas, got %d", got)
	}
}

func TestStepCostLookup(t *testing.T) {
	costs := StepCost{
		{Start: 10, Cost: NewGas(1)},
		{Start: 20, Cost: NewGas(2)},
	}

	cases := []struct {
		x    uint64
		want Gas
	}{
		{0, Zero},
		{5, Zero},
		{10, NewGas(1)},
		{11, NewGas(1)},
		{19, NewGas(1)},
		{20, NewGas(2)},
		{100, NewGas(2)},
	}
	for _, c := range cases {
		if got := costs.Lookup(c.x); got != c.want {
			t.Fatalf("Lookup(%d) = %d, want %d", c.x, got, c.want)
		}
	}
}

func TestStepCostEmpty(t *testing.T) {
	var costs StepCost
	if got := costs.Lookup(0); got != Zero {
		t.Fatalf("Lookup(0) on empty StepCost = %d, want 0", got)
	}
	if got := costs.Lookup(10); got != Zero {
		t.Fatalf("Lookup(10) on empty StepCost = %d, want 0", got)
	}
}

func TestStepCostZeroStart(t *testing.T) {
	costs := StepCost{{Start: 0, Cost: NewGas(1)}}
	if got := costs.Lookup(0); got != NewGas(1) {
		t.Fatalf("Lookup(0) = %d, want %d", got, NewGas(1))
	}
	if got := costs.Lookup(10); got != NewGas(1) {
		t.Fatalf("Lookup(10) = %d, want %d", got, NewGas(1))
	}
}

func TestOnBlockOpenReadWrite(t *testing.T) {
	// Matches the reference implementation's explicit 10 gas/byte check.
	if got := watermelonPrices.OnBlockOpen(10, 0).Total(); got != NewGas(100) {
		t.Fatalf("OnBlockOpen(10, 0).Total() = %d, want %d", got, NewGas(100))
	}
	if got := watermelonPrices.OnBlockCreate(10, 0).Total(); got != NewGas(100) {
		t.Fatalf("OnBlockCreate(10, 0).Total() = %d, want %d", got, NewGas(100))
	}
}

func TestSelectByNetworkVersion(t *testing.T) {
	for _, nv := range []NetworkVersion{NV21, NV22, NV23, NV24} {
		pl, err := Select(nv)
		if err != nil {
			t.Fatalf("Select(%d): %v", nv, err)
		}
		if pl.Name != "watermelon" {
			t.Fatalf("Select(%d).Name = %q, want watermelon", nv, pl.Name)
		}
	}
	for _, nv := range []NetworkVersion{NV25, NV26} {
		pl, err := Select(nv)
		if err != nil {
			t.Fatalf("Select(%d): %v", nv, err)
		}
		if pl.Name != "teep" {
			t.Fatalf("Select(%d).Name = %q, want teep", nv, pl.Name)
		}
	}
}

func TestSelectNV27RequiresDevFlag(t *testing.T) {
	NV27DevEnabled = false
	if _, err := Select(NV27); err == nil {
		t.Fatal("expected error selecting NV27 without nv27-dev enabled")
	}
	NV27DevEnabled = true
	defer func() { NV27DevEnabled = false }()
	pl, err := Select(NV27)
	if err != nil {
		t.Fatalf("Select(NV27) with dev flag: %v", err)
	}
	if pl.Name != "teep" {
		t.Fatalf("Select(NV27).Name = %q, want teep", pl.Name)
	}
}

func TestSelectUnknownVersion(t *testing.T) {
	if _, err := Select(NetworkVersion(999)); err == nil {
		t.Fatal("expected error for unrecognized network version")
	}
}

// TestAggregatePoRepRegular mirrors the reference implementation's
// test_aggregate_porep_gas_charges for the 32GiB regular PoRep table.
func TestAggregatePoRepRegular(t *testing.T) {
	baseCost32GiB := NewGas(449900)
	cases := []struct {
		sectors int
		want    Gas
	}{
		{1, baseCost32GiB},
		{3, baseCost32GiB.MulUint64(3)},
		{4, baseCost32GiB.MulUint64(4).Add(NewGas(103994170))},
		{7, baseCost32GiB.MulUint64(7).Add(NewGas(112356810))},
		{13, baseCost32GiB.MulUint64(13).Add(NewGas(122912610))},
		{26, baseCost32GiB.MulUint64(26).Add(NewGas(137559930))},
		{52, baseCost32GiB.MulUint64(52).Add(NewGas(162039100))},
		{65, baseCost32GiB.MulUint64(65).Add(NewGas(162039100))},
	}
	for _, pl := range []*PriceList{watermelonPrices, teepPrices} {
		for _, c := range cases {
			got := pl.OnVerifyAggregateSeals(StackedDRG32GiBV1P1, c.sectors).Total()
			if got != c.want {
				t.Fatalf("%s: OnVerifyAggregateSeals(32GiB, %d) = %d, want %d", pl.Name, c.sectors, got, c.want)
			}
		}
	}
}

// TestNiPoRepAggregate mirrors test_niporep_aggregate_gas_charges.
func TestNiPoRepAggregate(t *testing.T) {
	perSectorCost32GiB := NewGas(44990 * 126)
	cases := []struct {
		sectors int
		want    Gas
	}{
		{1, perSectorCost32GiB.Add(NewGas(112356810))},
		{2, perSectorCost32GiB.MulUint64(2).Add(NewGas(122912610))},
		{3, perSectorCost32GiB.MulUint64(3).Add(NewGas(137559930))},
		{9, perSectorCost32GiB.MulUint64(9).Add(NewGas(210960780))},
		{33, perSectorCost32GiB.MulUint64(33).Add(NewGas(528274980))},
		{65, perSectorCost32GiB.MulUint64(65).Add(NewGas(528274980))},
	}
	for _, c := range cases {
		got := teepPrices.OnVerifyAggregateSeals(NiPoRepP2Feat32GiB, c.sectors).Total()
		if got != c.want {
			t.Fatalf("OnVerifyAggregateSeals(NiPoRep32GiB, %d) = %d, want %d", c.sectors, got, c.want)
		}
	}
}

// TestNiPoRepSingleSectorMatchesFIP matches the FIP-0092 worked example.
func TestNiPoRepSingleSectorMatchesFIP(t *testing.T) {
	got32 := teepPrices.OnVerifyAggregateSeals(NiPoRepP2Feat32GiB, 1).Total()
	if want := NewGas(118025550); got32 != want {
		t.Fatalf("32GiB NI-PoRep single sector = %d, want %d", got32, want)
	}
	got64 := teepPrices.OnVerifyAggregateSeals(NiPoRepP2Feat64GiB, 1).Total()
	if want := NewGas(115329958); got64 != want {
		t.Fatalf("64GiB NI-PoRep single sector = %d, want %d", got64, want)
	}
}

// TestUnknownSealProofFallsBack confirms unrecognized proof types fall
// back to StackedDRG32GiBV1P1 rather than charging zero.
func TestUnknownSealProofFallsBack(t *testing.T) {
	unknown := SealProofType(999)
	gotUnknown := watermelonPrices.OnVerifyAggregateSeals(unknown, 1).Total()
	gotKnown := watermelonPrices.OnVerifyAggregateSeals(StackedDRG32GiBV1P1, 1).Total()
	if gotUnknown != gotKnown {
		t.Fatalf("unknown seal proof charge %d does not match 32GiB fallback %d", gotUnknown, gotKnown)
	}
}

// TestOnActorEventSaturates confirms a pathological entry count
// saturates the charge instead of overflowing.
func TestOnActorEventSaturates(t *testing.T) {
	charge := watermelonPrices.OnActorEvent(math.MaxInt, 0, 0)
	if charge.Total() != Gas(math.MaxUint64) {
		t.Fatalf("expected saturated max charge, got %d", charge.Total())
	}
}

func TestLedgerChargeOutOfGas(t *testing.T) {
	l := NewLedger(NewGas(10))
	if err := l.Charge(NewGasCharge("small", NewGas(5), Zero)); err != nil {
		t.Fatalf("unexpected error on affordable charge: %v", err)
	}
	if got := l.Remaining(); got != NewGas(5) {
		t.Fatalf("Remaining() = %d, want %d", got, NewGas(5))
	}
	err := l.Charge(NewGasCharge("too-big", NewGas(6), Zero))
	if err == nil {
		t.Fatal("expected OutOfGas error")
	}
	if !IsOutOfGas(err) {
		t.Fatalf("expected IsOutOfGas(err) to be true, got %v", err)
	}
	if got := l.Remaining(); got != Zero {
		t.Fatalf("Remaining() after OutOfGas = %d, want 0", got)
	}
}

func TestInstructionRulesRejectsUnsupported(t *testing.T) {
	rules := watermelonPrices.Instructions()
	for _, inst := range []Instruction{
		InstUnsupportedException,
		InstUnsupportedTailCall,
		InstUnsupportedReference,
		InstUnsupportedAtomic,
		InstUnsupportedSIMD,
	} {
		if _, err := rules.Cost(inst); err != ErrUnsupportedOperation {
			t.Fatalf("Cost(%d) = %v, want ErrUnsupportedOperation", inst, err)
		}
	}
}

func TestInstructionRulesFreeControlFlow(t *testing.T) {
	rules := watermelonPrices.Instructions()
	cost, err := rules.Cost(InstControlFlowFree)
	if err != nil {
		t.Fatalf("Cost(InstControlFlowFree): %v", err)
	}
	if cost.Kind != CostFree {
		t.Fatalf("expected CostFree, got %v", cost.Kind)
	}
}
