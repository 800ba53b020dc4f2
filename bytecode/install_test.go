// SPDX-License-Identifier: BUSL-1.1

package bytecode

import "testing"

func TestSkipLocalsDeclarationsNoLocals(t *testing.T) {
	// zero local-declaration groups, then the instruction stream begins.
	body := []byte{0x00, 0x0B}
	n, err := skipLocalsDeclarations(body)
	if err != nil {
		t.Fatalf("skipLocalsDeclarations: %v", err)
	}
	if n != 1 {
		t.Fatalf("skipLocalsDeclarations = %d, want 1", n)
	}
}

func TestSkipLocalsDeclarationsWithLocals(t *testing.T) {
	// one group: 2 locals of type i32 (0x7F), then end.
	body := []byte{0x01, 0x02, 0x7F, 0x0B}
	n, err := skipLocalsDeclarations(body)
	if err != nil {
		t.Fatalf("skipLocalsDeclarations: %v", err)
	}
	if n != 3 {
		t.Fatalf("skipLocalsDeclarations = %d, want 3", n)
	}
	if body[n] != 0x0B {
		t.Fatalf("instruction stream does not start at end opcode, got 0x%02x", body[n])
	}
}

func TestSplitFunctionBodiesSingleEmptyFunction(t *testing.T) {
	// code section: 1 function, body size 2, no locals, single `end`.
	codeSection := []byte{
		0x01,       // function count
		0x02,       // body size
		0x00,       // local decl count
		0x0B,       // end
	}
	bodies, err := splitFunctionBodies(codeSection)
	if err != nil {
		t.Fatalf("splitFunctionBodies: %v", err)
	}
	if len(bodies) != 1 {
		t.Fatalf("got %d bodies, want 1", len(bodies))
	}
	if len(bodies[0]) != 1 || bodies[0][0] != 0x0B {
		t.Fatalf("unexpected body contents: %v", bodies[0])
	}
}

func TestSplitFunctionBodiesOverrunIsRejected(t *testing.T) {
	codeSection := []byte{
		0x01, // function count
		0x05, // body size, larger than remaining bytes
		0x00,
	}
	if _, err := splitFunctionBodies(codeSection); err == nil {
		t.Fatal("expected error for function body overrunning code section")
	}
}

func TestCodeSectionBodiesRejectsNonWasm(t *testing.T) {
	if _, err := codeSectionBodies([]byte("not wasm")); err == nil {
		t.Fatal("expected error for non-WASM input")
	}
}

func TestCodeSectionBodiesMissingCodeSection(t *testing.T) {
	// valid header, no sections at all.
	module := []byte("\x00asm\x01\x00\x00\x00")
	bodies, err := codeSectionBodies(module)
	if err != nil {
		t.Fatalf("codeSectionBodies: %v", err)
	}
	if bodies != nil {
		t.Fatalf("expected nil bodies for module with no code section, got %v", bodies)
	}
}

func TestCodeSectionBodiesFindsCodeSection(t *testing.T) {
	// header + one custom section (id 0, empty) + code section (id 10)
	// containing a single trivial function body.
	codeSectionContents := []byte{
		0x01,       // function count
		0x02,       // body size
		0x00,       // local decl count
		0x0B,       // end
	}
	module := []byte("\x00asm\x01\x00\x00\x00")
	module = append(module, 0x00, 0x00) // custom section id 0, size 0
	module = append(module, wasmSectionCode, byte(len(codeSectionContents)))
	module = append(module, codeSectionContents...)

	bodies, err := codeSectionBodies(module)
	if err != nil {
		t.Fatalf("codeSectionBodies: %v", err)
	}
	if len(bodies) != 1 {
		t.Fatalf("got %d bodies, want 1", len(bodies))
	}
	if len(bodies[0]) != 1 || bodies[0][0] != 0x0B {
		t.Fatalf("unexpected body contents: %v", bodies[0])
	}
}
