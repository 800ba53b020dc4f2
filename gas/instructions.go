// SPDX-License-Identifier: BUSL-1.1

package gas

import "fmt"

// Instruction groups the WASM MVP plus bulk-memory operator surface
// into the categories this price list meters. Individual operators
// that share a cost (e.g. every integer comparison) collapse onto one
// Instruction value; the bytecode scanner is responsible for mapping a
// raw opcode byte to the right one.
type Instruction int

const (
	// Control flow priced at zero per FIP-0032 (nop/block/loop/...).
	InstControlFlowFree Instruction = iota
	InstBranch
	InstBranchConditional
	InstBranchTable
	InstCall
	InstCallIndirect

	// Stack/locals/globals/constants.
	InstDrop
	InstConstLike
	InstLocalAccess
	InstGlobalAccess
	InstSelect

	// Math.
	InstMathDefault

	// Memory.
	InstLoad
	InstStore
	InstTableCopyLike
	InstTableFillLike
	InstMemoryGrow
	InstMemoryFill
	InstMemoryCopyLike
	InstDropHint
	InstSizeQuery

	// Unsupported families — installing a module that uses any of
	// these must fail.
	InstUnsupportedException
	InstUnsupportedTailCall
	InstUnsupportedReference
	InstUnsupportedAtomic
	InstUnsupportedSIMD
)

// ErrUnsupportedOperation is returned when a module's bytecode contains
// an instruction from one of the unsupported families.
var ErrUnsupportedOperation = fmt.Errorf("gas: unsupported operation")

// CostKind classifies the shape of an instruction's cost.
type CostKind int

const (
	CostFree CostKind = iota
	CostFixed
	CostLinear
)

// Cost is the resolved price of a single instruction occurrence: a
// fixed base, plus (for CostLinear) a per-unit rate applied to a
// runtime-determined unit count the bytecode scanner does not itself
// know (e.g. bytes copied), which is why InstructionRules separates
// "base" from "perUnit" rather than collapsing them ahead of time.
type Cost struct {
	Kind    CostKind
	Base    Gas
	PerUnit Gas
}

// InstructionRules prices every instruction category using the same
// tunables as the reference price list's WasmGasPrices. Two network
// versions share the same InstructionRules value in this price list;
// only the data, not the shape, ever changes between them.
type InstructionRules struct {
	Prices WasmGasPrices
}

// Cost resolves the price of one instruction. An unsupported
// instruction returns ErrUnsupportedOperation rather than a Cost,
// mirroring the reference implementation's decision to reject the
// module at install time rather than price the operation.
func (r InstructionRules) Cost(inst Instruction) (Cost, error) {
	p := r.Prices
	switch inst {
	case InstControlFlowFree, InstDrop:
		return Cost{Kind: CostFree}, nil

	case InstBranch:
		return Cost{Kind: CostFixed, Base: p.JumpUnconditional}, nil
	case InstBranchConditional:
		return Cost{Kind: CostFixed, Base: p.JumpConditional}, nil
	case InstBranchTable:
		return Cost{Kind: CostFixed, Base: p.JumpIndirect.Add(p.MemoryAccessCost)}, nil
	case InstCall:
		return Cost{Kind: CostFixed, Base: p.JumpUnconditional.Add(p.Call)}, nil
	case InstCallIndirect:
		return Cost{Kind: CostFixed, Base: p.JumpIndirect.Add(p.MemoryAccessCost).Add(p.Call)}, nil

	case InstConstLike, InstLocalAccess, InstGlobalAccess, InstSelect,
		InstDropHint, InstSizeQuery:
		return Cost{Kind: CostFixed, Base: p.InstructionDefault}, nil

	case InstMathDefault:
		return Cost{Kind: CostFixed, Base: p.MathDefault}, nil

	case InstLoad:
		return Cost{Kind: CostFixed, Base: p.InstructionDefault.Add(p.MemoryAccessCost)}, nil
	case InstStore:
		return Cost{Kind: CostFixed, Base: p.InstructionDefault.Add(p.MemoryFillBaseCost)}, nil

	case InstTableCopyLike:
		return Cost{
			Kind:    CostLinear,
			Base:    p.InstructionDefault.Add(p.MemoryAccessCost),
			PerUnit: p.MemoryCopyPerByteCost.MulUint64(tableElementSize),
		}, nil
	case InstTableFillLike:
		return Cost{
			Kind:    CostLinear,
			Base:    p.InstructionDefault.Add(p.MemoryFillBaseCost),
			PerUnit: p.MemoryFillPerByteCost.MulUint64(tableElementSize),
		}, nil
	case InstMemoryGrow:
		// Operates on whole 64KiB pages, unlike every other linear cost here.
		const wasmPageSize = 65536
		return Cost{
			Kind:    CostLinear,
			Base:    p.InstructionDefault.Add(p.MemoryFillBaseCost),
			PerUnit: p.MemoryFillPerByteCost.MulUint64(wasmPageSize),
		}, nil
	case InstMemoryFill:
		return Cost{
			Kind:    CostLinear,
			Base:    p.InstructionDefault.Add(p.MemoryFillBaseCost),
			PerUnit: p.MemoryFillPerByteCost,
		}, nil
	case InstMemoryCopyLike:
		return Cost{
			Kind:    CostLinear,
			Base:    p.InstructionDefault.Add(p.MemoryAccessCost),
			PerUnit: p.MemoryCopyPerByteCost,
		}, nil

	case InstUnsupportedException, InstUnsupportedTailCall,
		InstUnsupportedReference, InstUnsupportedAtomic, InstUnsupportedSIMD:
		return Cost{}, ErrUnsupportedOperation

	default:
		return Cost{}, fmt.Errorf("gas: unknown instruction %d", inst)
	}
}

// Instructions returns the InstructionRules derived from this price
// list's WASM tunables.
func (p *PriceList) Instructions() InstructionRules {
	return InstructionRules{Prices: p.WasmRules}
}

// IsUnsupported reports whether inst belongs to one of the families a
// module must never be installed with.
func IsUnsupported(inst Instruction) bool {
	switch inst {
	case InstUnsupportedException, InstUnsupportedTailCall,
		InstUnsupportedReference, InstUnsupportedAtomic, InstUnsupportedSIMD:
		return true
	default:
		return false
	}
}
