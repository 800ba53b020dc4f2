// SPDX-License-Identifier: BUSL-1.1

package bytecode

import (
	"errors"
	"testing"

	"synnergy-vmcore/gas"
)

func TestScanAcceptsSupportedSequence(t *testing.T) {
	// local.get 0; i32.const 1; i32.add; drop; end
	code := []byte{
		0x20, 0x00, // local.get 0
		0x41, 0x01, // i32.const 1
		0x6A,       // i32.add
		0x1A,       // drop
		0x0B,       // end
	}
	if err := Scan(code); err != nil {
		t.Fatalf("Scan returned unexpected error: %v", err)
	}
}

func TestScanRejectsAtomicOpcode(t *testing.T) {
	// atomic.fence lives in the 0xFE prefix space.
	code := []byte{0xFE, 0x03, 0x00}
	err := Scan(code)
	if err == nil {
		t.Fatal("expected error for atomic opcode, got nil")
	}
	if !errors.Is(err, gas.ErrUnsupportedOperation) {
		t.Fatalf("error %v does not wrap ErrUnsupportedOperation", err)
	}
}

func TestScanRejectsExceptionHandlingOpcodes(t *testing.T) {
	for _, op := range []byte{0x06, 0x07, 0x08, 0x09, 0x0A} {
		err := Scan([]byte{op})
		if err == nil {
			t.Fatalf("expected error for exception opcode 0x%02x, got nil", op)
		}
		if !errors.Is(err, gas.ErrUnsupportedOperation) {
			t.Fatalf("error %v for opcode 0x%02x does not wrap ErrUnsupportedOperation", err, op)
		}
	}
}

func TestScanRejectsTailCallOpcodes(t *testing.T) {
	for _, op := range []byte{0x12, 0x13} {
		err := Scan([]byte{op})
		if err == nil {
			t.Fatalf("expected error for tail-call opcode 0x%02x, got nil", op)
		}
		if !errors.Is(err, gas.ErrUnsupportedOperation) {
			t.Fatalf("error %v for opcode 0x%02x does not wrap ErrUnsupportedOperation", err, op)
		}
	}
}

func TestScanRejectsReferenceTypeOpcodes(t *testing.T) {
	for _, op := range []byte{0xD0, 0xD1, 0xD2} {
		err := Scan([]byte{op})
		if err == nil {
			t.Fatalf("expected error for reference-type opcode 0x%02x, got nil", op)
		}
		if !errors.Is(err, gas.ErrUnsupportedOperation) {
			t.Fatalf("error %v for opcode 0x%02x does not wrap ErrUnsupportedOperation", err, op)
		}
	}
}

func TestScanRejectsSIMDOpcode(t *testing.T) {
	code := []byte{0xFD, 0x00}
	err := Scan(code)
	if err == nil {
		t.Fatal("expected error for SIMD opcode, got nil")
	}
	if !errors.Is(err, gas.ErrUnsupportedOperation) {
		t.Fatalf("error %v does not wrap ErrUnsupportedOperation", err)
	}
}

func TestScanAcceptsBulkMemorySaturatingTrunc(t *testing.T) {
	// 0xFC with sub-opcode 0 (i32.trunc_sat_f32_s) is supported.
	code := []byte{0xFC, 0x00}
	if err := Scan(code); err != nil {
		t.Fatalf("Scan returned unexpected error for trunc_sat: %v", err)
	}
}

func TestScanAcceptsMemoryCopyAndFill(t *testing.T) {
	// memory.copy (sub 10) takes two fixed reserved bytes.
	copyCode := []byte{0xFC, 10, 0x00, 0x00}
	if err := Scan(copyCode); err != nil {
		t.Fatalf("Scan(memory.copy): %v", err)
	}
	// memory.fill (sub 11) takes one fixed reserved byte.
	fillCode := []byte{0xFC, 11, 0x00}
	if err := Scan(fillCode); err != nil {
		t.Fatalf("Scan(memory.fill): %v", err)
	}
}

func TestScanRejectsUnrecognizedOpcode(t *testing.T) {
	code := []byte{0xFF}
	if err := Scan(code); err == nil {
		t.Fatal("expected error for unrecognized opcode, got nil")
	}
}

func TestScanRejectsTruncatedLEB128(t *testing.T) {
	// local.get with no operand byte at all.
	code := []byte{0x20}
	if err := Scan(code); err == nil {
		t.Fatal("expected error for truncated LEB128 operand, got nil")
	}
}

func TestScanRejectsTruncatedMemArg(t *testing.T) {
	// i32.load needs align+offset LEB128 pairs; give it nothing.
	code := []byte{0x28}
	if err := Scan(code); err == nil {
		t.Fatal("expected error for truncated memarg, got nil")
	}
}

func TestScanAcceptsMathDefaultRange(t *testing.T) {
	// i32.add (0x6A) and i32.eqz (0x45) both fall in the uniform math range.
	code := []byte{0x45, 0x6A}
	if err := Scan(code); err != nil {
		t.Fatalf("Scan returned unexpected error for math opcodes: %v", err)
	}
}

func TestScanAcceptsCallAndCallIndirect(t *testing.T) {
	code := []byte{
		0x10, 0x02, // call 2
		0x11, 0x00, // call_indirect (simplified single LEB)
	}
	if err := Scan(code); err != nil {
		t.Fatalf("Scan returned unexpected error for calls: %v", err)
	}
}

func TestScanAcceptsBlockTypes(t *testing.T) {
	// block (void) ... end ... end
	code := []byte{0x02, 0x40, 0x0B, 0x0B}
	if err := Scan(code); err != nil {
		t.Fatalf("Scan returned unexpected error for block: %v", err)
	}
}
