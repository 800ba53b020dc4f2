// SPDX-License-Identifier: BUSL-1.1

package gas

// GasCharge is a single priced event: a named charge split into the
// compute portion (CPU work done now) and the other portion (storage,
// I/O, or anything billed but not spent on the CPU). Splitting the two
// lets the ledger and any future refund logic treat them differently
// without losing the event's name for diagnostics.
type GasCharge struct {
	Name    string
	Compute Gas
	Other   Gas
}

// NewGasCharge builds a charge from its two components.
func NewGasCharge(name string, compute, other Gas) GasCharge {
	return GasCharge{Name: name, Compute: compute, Other: other}
}

// Total is the amount actually debited from the ledger for this charge.
func (c GasCharge) Total() Gas {
	return c.Compute.Add(c.Other)
}

// WithExtra adds additional compute gas to a charge, returning a new
// charge with the same name. Used where a single logical event (e.g. an
// aggregate seal verification) has both a flat base and a per-unit
// component computed separately.
func (c GasCharge) WithExtra(extraCompute Gas) GasCharge {
	c.Compute = c.Compute.Add(extraCompute)
	return c
}

// ScalingCost is a flat-plus-linear cost shape: Flat + Scale*n.
type ScalingCost struct {
	Flat  Gas
	Scale Gas
}

// Apply computes Flat + Scale*n, saturating.
func (s ScalingCost) Apply(n uint64) Gas {
	return s.Flat.Add(s.Scale.MulUint64(n))
}

// Fixed returns a ScalingCost charging exactly flat regardless of n.
func Fixed(flat Gas) ScalingCost {
	return ScalingCost{Flat: flat}
}

// ZeroScalingCost is the cost shape that always charges nothing.
var ZeroScalingCost = ScalingCost{}

// Step is one rung of a StepCost ladder: the cost charged once x is at
// least Start, until the next higher Start is reached.
type Step struct {
	Start uint64
	Cost  Gas
}

// StepCost is a piecewise-constant cost ladder keyed by an ascending
// input value (e.g. sector count, proof size). Steps need not be
// supplied in sorted order; Lookup scans for the greatest Start <= x.
type StepCost []Step

// Lookup returns the cost of the step with the greatest Start <= x, or
// zero if x is below every step's Start. Steps are not required to be
// pre-sorted by the caller.
func (s StepCost) Lookup(x uint64) Gas {
	var best Gas
	var bestStart uint64
	found := false
	for _, step := range s {
		if step.Start > x {
			continue
		}
		if !found || step.Start >= bestStart {
			bestStart = step.Start
			best = step.Cost
			found = true
		}
	}
	return best
}
