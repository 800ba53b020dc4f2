// SPDX-License-Identifier: BUSL-1.1

// Package bytecode validates a WASM module's instruction stream at
// install time: it rejects modules that use an unsupported operator
// family (exceptions, tail calls, reference types, atomics, SIMD)
// before the module is ever compiled, and it confirms the module
// compiles at all using a real WASM engine.
package bytecode

import (
	"fmt"

	"synnergy-vmcore/gas"
)

// opInfo describes how many immediate bytes follow an opcode, and
// which Instruction category it belongs to. Opcodes requiring a LEB128
// immediate are handled specially (immLEB); opcodes requiring a fixed
// immediate use immFixed with the byte count.
type opKind int

const (
	immNone opKind = iota
	immLEB
	immFixed
	immBlockType
	immMemArg
)

type opInfo struct {
	inst Instruction
	kind opKind
	// fixedLen is the number of fixed immediate bytes, used when kind == immFixed.
	fixedLen int
}

// Instruction is a local alias kept for readability; it is the same
// gas.Instruction category the price list's InstructionRules consumes.
type Instruction = gas.Instruction

// opcodeTable maps single-byte WASM opcodes to their category. The
// prefixed extension spaces (0xFC bulk-memory/sat-trunc, 0xFD SIMD,
// 0xFE threads/atomics) are handled separately in scanPrefixed.
var opcodeTable = map[byte]opInfo{
	0x00: {inst: gas.InstControlFlowFree, kind: immNone},             // unreachable
	0x01: {inst: gas.InstControlFlowFree, kind: immNone},             // nop
	0x02: {inst: gas.InstControlFlowFree, kind: immBlockType},        // block
	0x03: {inst: gas.InstControlFlowFree, kind: immBlockType},        // loop
	0x04: {inst: gas.InstControlFlowFree, kind: immBlockType},        // if
	0x05: {inst: gas.InstControlFlowFree, kind: immNone},             // else

	// Exception-handling proposal: try/catch/throw/rethrow/delegate.
	// Rejected outright; this repo's engine never unwinds a WASM frame.
	0x06: {inst: gas.InstUnsupportedException, kind: immNone}, // try
	0x07: {inst: gas.InstUnsupportedException, kind: immNone}, // catch
	0x08: {inst: gas.InstUnsupportedException, kind: immNone}, // throw
	0x09: {inst: gas.InstUnsupportedException, kind: immNone}, // rethrow
	0x0A: {inst: gas.InstUnsupportedException, kind: immNone}, // delegate (reserved)

	0x0B: {inst: gas.InstControlFlowFree, kind: immNone},             // end
	0x0C: {inst: gas.InstBranch, kind: immLEB},                       // br
	0x0D: {inst: gas.InstBranchConditional, kind: immLEB},            // br_if
	0x0E: {inst: gas.InstBranchTable, kind: immLEB},                  // br_table (simplified: one LEB)
	0x0F: {inst: gas.InstControlFlowFree, kind: immNone},             // return
	0x10: {inst: gas.InstCall, kind: immLEB},                         // call
	0x11: {inst: gas.InstCallIndirect, kind: immLEB},                 // call_indirect (simplified)

	// Tail-call proposal: return_call/return_call_indirect. Rejected
	// outright; this engine's call stack accounting assumes every call
	// leaves a frame behind.
	0x12: {inst: gas.InstUnsupportedTailCall, kind: immNone}, // return_call
	0x13: {inst: gas.InstUnsupportedTailCall, kind: immNone}, // return_call_indirect

	0x1A: {inst: gas.InstDrop, kind: immNone},        // drop
	0x1B: {inst: gas.InstSelect, kind: immNone},      // select
	0x1C: {inst: gas.InstSelect, kind: immLEB},       // select t*

	0x20: {inst: gas.InstLocalAccess, kind: immLEB},  // local.get
	0x21: {inst: gas.InstLocalAccess, kind: immLEB},  // local.set
	0x22: {inst: gas.InstLocalAccess, kind: immLEB},  // local.tee
	0x23: {inst: gas.InstGlobalAccess, kind: immLEB}, // global.get
	0x24: {inst: gas.InstGlobalAccess, kind: immLEB}, // global.set

	0x25: {inst: gas.InstLoad, kind: immLEB}, // table.get
	0x26: {inst: gas.InstStore, kind: immLEB}, // table.set

	0x28: {inst: gas.InstLoad, kind: immMemArg}, // i32.load
	0x29: {inst: gas.InstLoad, kind: immMemArg}, // i64.load
	0x2A: {inst: gas.InstLoad, kind: immMemArg}, // f32.load
	0x2B: {inst: gas.InstLoad, kind: immMemArg}, // f64.load
	0x2C: {inst: gas.InstLoad, kind: immMemArg}, // i32.load8_s
	0x2D: {inst: gas.InstLoad, kind: immMemArg}, // i32.load8_u
	0x2E: {inst: gas.InstLoad, kind: immMemArg}, // i32.load16_s
	0x2F: {inst: gas.InstLoad, kind: immMemArg}, // i32.load16_u
	0x30: {inst: gas.InstLoad, kind: immMemArg}, // i64.load8_s
	0x31: {inst: gas.InstLoad, kind: immMemArg}, // i64.load8_u
	0x32: {inst: gas.InstLoad, kind: immMemArg}, // i64.load16_s
	0x33: {inst: gas.InstLoad, kind: immMemArg}, // i64.load16_u
	0x34: {inst: gas.InstLoad, kind: immMemArg}, // i64.load32_s
	0x35: {inst: gas.InstLoad, kind: immMemArg}, // i64.load32_u

	0x36: {inst: gas.InstStore, kind: immMemArg}, // i32.store
	0x37: {inst: gas.InstStore, kind: immMemArg}, // i64.store
	0x38: {inst: gas.InstStore, kind: immMemArg}, // f32.store
	0x39: {inst: gas.InstStore, kind: immMemArg}, // f64.store
	0x3A: {inst: gas.InstStore, kind: immMemArg}, // i32.store8
	0x3B: {inst: gas.InstStore, kind: immMemArg}, // i32.store16
	0x3C: {inst: gas.InstStore, kind: immMemArg}, // i64.store8
	0x3D: {inst: gas.InstStore, kind: immMemArg}, // i64.store16
	0x3E: {inst: gas.InstStore, kind: immMemArg}, // i64.store32

	0x3F: {inst: gas.InstSizeQuery, kind: immFixed, fixedLen: 1}, // memory.size
	0x40: {inst: gas.InstMemoryGrow, kind: immFixed, fixedLen: 1}, // memory.grow

	0x41: {inst: gas.InstConstLike, kind: immLEB},      // i32.const
	0x42: {inst: gas.InstConstLike, kind: immLEB},      // i64.const
	0x43: {inst: gas.InstConstLike, kind: immFixed, fixedLen: 4}, // f32.const
	0x44: {inst: gas.InstConstLike, kind: immFixed, fixedLen: 8}, // f64.const

	// Reference-types proposal: ref.null/ref.is_null/ref.func. Rejected
	// outright; this engine has no externref/funcref value space.
	0xD0: {inst: gas.InstUnsupportedReference, kind: immNone}, // ref.null
	0xD1: {inst: gas.InstUnsupportedReference, kind: immNone}, // ref.is_null
	0xD2: {inst: gas.InstUnsupportedReference, kind: immNone}, // ref.func
}

// classifyMath covers the large contiguous comparison/arithmetic opcode
// block (0x45..0xC4) that the reference price list prices uniformly as
// math_default / instruction_default.
func classifyMath(op byte) (opInfo, bool) {
	if op >= 0x45 && op <= 0xBF {
		return opInfo{inst: gas.InstMathDefault, kind: immNone}, true
	}
	if op >= 0xC0 && op <= 0xC4 {
		return opInfo{inst: gas.InstMathDefault, kind: immNone}, true
	}
	return opInfo{}, false
}

// Scan walks a single function body's instruction stream (the bytes
// between a func's locals declaration and its terminating 0x0B at
// depth zero) and returns the first unsupported instruction it finds,
// or nil if the body only uses supported operators.
func Scan(code []byte) error {
	i := 0
	for i < len(code) {
		op := code[i]
		i++

		if op == 0xFC || op == 0xFD || op == 0xFE {
			next, err := scanPrefixed(op, code, i)
			if err != nil {
				return err
			}
			i = next
			continue
		}

		info, ok := opcodeTable[op]
		if !ok {
			info, ok = classifyMath(op)
		}
		if !ok {
			return fmt.Errorf("bytecode: unrecognized opcode 0x%02x at offset %d", op, i-1)
		}
		if gas.IsUnsupported(info.inst) {
			return fmt.Errorf("%w: opcode 0x%02x at offset %d", gas.ErrUnsupportedOperation, op, i-1)
		}

		switch info.kind {
		case immLEB:
			n, err := skipLEB128(code, i)
			if err != nil {
				return err
			}
			i = n
		case immFixed:
			i += info.fixedLen
		case immBlockType:
			n, err := skipLEB128(code, i)
			if err != nil {
				return err
			}
			i = n
		case immMemArg:
			a, err := skipLEB128(code, i)
			if err != nil {
				return err
			}
			o, err := skipLEB128(code, a)
			if err != nil {
				return err
			}
			i = o
		}
		if i > len(code) {
			return fmt.Errorf("bytecode: truncated instruction stream")
		}
	}
	return nil
}

// scanPrefixed handles the 0xFC (bulk memory / saturating truncation),
// 0xFD (SIMD), and 0xFE (threads/atomics) extension opcode spaces. Every
// 0xFD and 0xFE opcode is unsupported outright; 0xFC carries both
// supported bulk-memory operations and the (supported) saturating
// truncation instructions.
func scanPrefixed(prefix byte, code []byte, i int) (int, error) {
	if prefix == 0xFD {
		return 0, fmt.Errorf("%w: SIMD opcode at offset %d", gas.ErrUnsupportedOperation, i-1)
	}
	if prefix == 0xFE {
		return 0, fmt.Errorf("%w: atomic opcode at offset %d", gas.ErrUnsupportedOperation, i-1)
	}

	sub, next, err := readLEB128(code, i)
	if err != nil {
		return 0, err
	}
	i = next

	switch sub {
	case 0, 1, 2, 3, 4, 5, 6, 7: // trunc_sat variants
		return i, nil
	case 8: // memory.init
		a, err := skipLEB128(code, i)
		if err != nil {
			return 0, err
		}
		return a + 1, nil
	case 9: // data.drop
		return skipLEB128(code, i)
	case 10: // memory.copy
		return i + 2, nil
	case 11: // memory.fill
		return i + 1, nil
	case 12: // table.init
		a, err := skipLEB128(code, i)
		if err != nil {
			return 0, err
		}
		return skipLEB128(code, a)
	case 13: // elem.drop
		return skipLEB128(code, i)
	case 14: // table.copy
		a, err := skipLEB128(code, i)
		if err != nil {
			return 0, err
		}
		return skipLEB128(code, a)
	case 15, 16: // table.grow, table.size
		return skipLEB128(code, i)
	case 17: // table.fill
		return skipLEB128(code, i)
	default:
		return 0, fmt.Errorf("bytecode: unrecognized 0xFC sub-opcode %d at offset %d", sub, i)
	}
}

func skipLEB128(code []byte, i int) (int, error) {
	_, next, err := readLEB128(code, i)
	return next, err
}

func readLEB128(code []byte, i int) (uint64, int, error) {
	var result uint64
	var shift uint
	for {
		if i >= len(code) {
			return 0, 0, fmt.Errorf("bytecode: truncated LEB128 at offset %d", i)
		}
		b := code[i]
		i++
		result |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			break
		}
		shift += 7
		if shift >= 64 {
			return 0, 0, fmt.Errorf("bytecode: LEB128 too long at offset %d", i)
		}
	}
	return result, i, nil
}
