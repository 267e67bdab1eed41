package avm

import (
	"fmt"

	"github.com/colorfulnotion/avm/avmerrors"
)

// AddressingMode of a single memory operand.
type AddressingMode uint8

const (
	Direct   AddressingMode = 0
	Indirect AddressingMode = 1 << 0
	Relative AddressingMode = 1 << 1
)

// mode returns the addressing mode of the j-th memory operand. With a w-bit flags field,
// bit j marks indirect and bit w/2+j marks relative.
func (i *Instruction) mode(j int) AddressingMode {
	if i.flagBits == 0 {
		return Direct
	}
	half := i.flagBits / 2
	if uint(j) >= half {
		return Direct
	}
	var m AddressingMode
	if i.Indirect&(1<<uint(j)) != 0 {
		m |= Indirect
	}
	if i.Indirect&(1<<(half+uint(j))) != 0 {
		m |= Relative
	}
	return m
}

// resolveOperands maps memory operands to final addresses. Literal operands are copied unchanged.
// Relative resolution adds the base address M[0] first, then indirect resolution dereferences.
func resolveOperands(mem *Memory, instr *Instruction) ([]uint32, error) {
	out := make([]uint32, len(instr.Operands))
	addrIdx := 0
	for k, op := range instr.Operands {
		if !instr.isAddr[k] {
			out[k] = op
			continue
		}
		mode := instr.mode(addrIdx)
		addrIdx++
		addr := uint64(op)
		if mode&Relative != 0 {
			base, err := mem.GetU32(0)
			if err != nil {
				return nil, fmt.Errorf("relative operand %d: %w", k, err)
			}
			addr += uint64(base)
			if addr > MaxMemoryAddress {
				return nil, fmt.Errorf("%w: base %d + offset %d", avmerrors.ErrAddressOutOfRange, base, op)
			}
		}
		if mode&Indirect != 0 {
			target, err := mem.GetU32(uint32(addr))
			if err != nil {
				return nil, fmt.Errorf("indirect operand %d: %w", k, err)
			}
			addr = uint64(target)
		}
		out[k] = uint32(addr)
	}
	return out, nil
}
