package avm

import (
	"fmt"

	"github.com/holiman/uint256"
)

// Assembler builds bytecode from opcode/operand lists using the registered wire formats.
type Assembler struct {
	code []byte
	err  error
}

func NewAssembler() *Assembler {
	return &Assembler{}
}

// PC returns the offset the next instruction will be emitted at.
func (a *Assembler) PC() uint32 {
	return uint32(len(a.code))
}

// Emit encodes opcode with one value per wire field, flags included.
func (a *Assembler) Emit(opcode byte, fields ...uint64) *Assembler {
	spec := InstrSpecs[opcode]
	if spec == nil {
		a.fail(fmt.Errorf("unknown opcode 0x%02x", opcode))
		return a
	}
	if len(fields) != len(spec.Operands) {
		a.fail(fmt.Errorf("%s takes %d fields, got %d", spec.Name, len(spec.Operands), len(fields)))
		return a
	}
	vals := make([]uint256.Int, len(fields))
	for i, f := range fields {
		vals[i].SetUint64(f)
	}
	return a.emit(spec, vals)
}

// Set emits the SET variant matching the immediate width, e.g. SET_FF for wide values.
func (a *Assembler) Set(opcode byte, indirect uint16, dst uint32, tag Tag, value *uint256.Int) *Assembler {
	spec := InstrSpecs[opcode]
	if spec == nil || len(spec.Operands) != 4 || !spec.Operands[3].isImmediate() {
		a.fail(fmt.Errorf("opcode 0x%02x is not a SET variant", opcode))
		return a
	}
	vals := make([]uint256.Int, 4)
	vals[0].SetUint64(uint64(indirect))
	vals[1].SetUint64(uint64(dst))
	vals[2].SetUint64(uint64(tag))
	vals[3].Set(value)
	return a.emit(spec, vals)
}

func (a *Assembler) emit(spec *InstructionSpec, vals []uint256.Int) *Assembler {
	a.code = append(a.code, spec.Opcode)
	for i, t := range spec.Operands {
		n := t.Size()
		if vals[i].BitLen() > 8*n {
			a.fail(fmt.Errorf("%s field %d: value %s exceeds %d bytes", spec.Name, i, vals[i].Dec(), n))
		}
		b := vals[i].Bytes32()
		a.code = append(a.code, b[32-n:]...)
	}
	return a
}

func (a *Assembler) fail(err error) {
	if a.err == nil {
		a.err = err
	}
}

// Bytes returns the assembled code or the first encoding error.
func (a *Assembler) Bytes() ([]byte, error) {
	if a.err != nil {
		return nil, a.err
	}
	return a.code, nil
}

// MustBytes panics on an encoding error.
func (a *Assembler) MustBytes() []byte {
	code, err := a.Bytes()
	if err != nil {
		panic(err)
	}
	return code
}
