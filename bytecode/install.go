// SPDX-License-Identifier: BUSL-1.1

package bytecode

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/wasmerio/wasmer-go/wasmer"
)

var installLog = logrus.StandardLogger().WithField("component", "bytecode.Install")

// Module is a validated, compiled WASM module ready for execution.
type Module struct {
	compiled *wasmer.Module
	size     int
}

// Size returns the raw byte size of the installed module.
func (m *Module) Size() int { return m.size }

// Install validates a raw WASM module's instruction stream, then
// compiles it with a real WASM engine to confirm it is well-formed.
// Code sections are located with a minimal section walk; each
// function body found is handed to Scan. Installation fails the
// moment either step rejects the module, mirroring the reference
// implementation's "must cause installation to fail" requirement for
// any unsupported operator family.
func Install(wasmBytes []byte) (*Module, error) {
	bodies, err := codeSectionBodies(wasmBytes)
	if err != nil {
		return nil, fmt.Errorf("bytecode: locating code section: %w", err)
	}
	for idx, body := range bodies {
		if err := Scan(body); err != nil {
			installLog.WithField("function_index", idx).Warn("rejecting module: unsupported operation")
			return nil, fmt.Errorf("bytecode: function %d: %w", idx, err)
		}
	}

	engine := wasmer.NewEngine()
	store := wasmer.NewStore(engine)
	compiled, err := wasmer.NewModule(store, wasmBytes)
	if err != nil {
		return nil, fmt.Errorf("bytecode: module failed to compile: %w", err)
	}

	return &Module{compiled: compiled, size: len(wasmBytes)}, nil
}

// Compiled exposes the underlying wasmer module for an execution
// engine to instantiate.
func (m *Module) Compiled() *wasmer.Module {
	return m.compiled
}

const wasmSectionCode = 10

// codeSectionBodies performs a minimal WASM binary section walk to
// find the code section and split it into individual function bodies,
// each stripped of its locals declarations (the part Scan needs to
// see is the instruction stream that follows).
func codeSectionBodies(module []byte) ([][]byte, error) {
	if len(module) < 8 || string(module[0:4]) != "\x00asm" {
		return nil, fmt.Errorf("bytecode: not a WASM binary")
	}
	i := 8
	for i < len(module) {
		sectionID := module[i]
		i++
		size, next, err := readLEB128(module, i)
		if err != nil {
			return nil, err
		}
		i = next
		end := i + int(size)
		if end > len(module) {
			return nil, fmt.Errorf("bytecode: section %d overruns module", sectionID)
		}
		if sectionID == wasmSectionCode {
			return splitFunctionBodies(module[i:end])
		}
		i = end
	}
	return nil, nil
}

func splitFunctionBodies(codeSection []byte) ([][]byte, error) {
	count, i, err := readLEB128(codeSection, 0)
	if err != nil {
		return nil, err
	}
	bodies := make([][]byte, 0, count)
	for n := uint64(0); n < count; n++ {
		bodySize, next, err := readLEB128(codeSection, i)
		if err != nil {
			return nil, err
		}
		bodyEnd := next + int(bodySize)
		if bodyEnd > len(codeSection) {
			return nil, fmt.Errorf("bytecode: function body %d overruns code section", n)
		}
		body := codeSection[next:bodyEnd]
		instrStart, err := skipLocalsDeclarations(body)
		if err != nil {
			return nil, err
		}
		bodies = append(bodies, body[instrStart:])
		i = bodyEnd
	}
	return bodies, nil
}

func skipLocalsDeclarations(body []byte) (int, error) {
	count, i, err := readLEB128(body, 0)
	if err != nil {
		return 0, err
	}
	for n := uint64(0); n < count; n++ {
		_, next, err := readLEB128(body, i)
		if err != nil {
			return 0, err
		}
		i = next + 1 // value type byte
	}
	return i, nil
}
