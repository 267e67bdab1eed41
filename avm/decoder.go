package avm

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/colorfulnotion/avm/avmerrors"
	"github.com/colorfulnotion/avm/common"
	"github.com/holiman/uint256"
)

// Instruction is one decoded instruction.
type Instruction struct {
	Opcode   byte
	PC       uint32
	Size     uint32
	Indirect uint16
	// flagBits is the width of the addressing flags field, 0 if absent.
	flagBits uint
	// Operands holds every non-flag, non-immediate field in wire order.
	Operands []uint32
	// isAddr marks which entries of Operands are memory offsets.
	isAddr    []bool
	Immediate uint256.Int
}

func (i *Instruction) Name() string {
	return opcode_str(i.Opcode)
}

func (i *Instruction) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s", i.Name())
	if i.flagBits > 0 && i.Indirect != 0 {
		fmt.Fprintf(&sb, " ind=0x%x", i.Indirect)
	}
	for j, op := range i.Operands {
		if i.isAddr[j] {
			fmt.Fprintf(&sb, " @%d", op)
		} else {
			fmt.Fprintf(&sb, " %d", op)
		}
	}
	spec := InstrSpecs[i.Opcode]
	for _, t := range spec.Operands {
		if t.isImmediate() {
			fmt.Fprintf(&sb, " #%s", i.Immediate.Dec())
		}
	}
	return sb.String()
}

// Decode reads the instruction starting at pc.
func Decode(code []byte, pc uint32) (*Instruction, error) {
	if uint64(pc) >= uint64(len(code)) {
		return nil, fmt.Errorf("%w: pc=%d size=%d", avmerrors.ErrInvalidPC, pc, len(code))
	}
	opcode := code[pc]
	spec := InstrSpecs[opcode]
	if spec == nil {
		return nil, fmt.Errorf("%w: 0x%02x at pc=%d", avmerrors.ErrInvalidOpcode, opcode, pc)
	}
	if uint64(pc)+uint64(spec.size) > uint64(len(code)) {
		return nil, fmt.Errorf("%w: %s at pc=%d needs %d bytes", avmerrors.ErrInstructionOutOfRange, spec.Name, pc, spec.size)
	}

	instr := &Instruction{Opcode: opcode, PC: pc, Size: uint32(spec.size)}
	pos := int(pc) + 1
	for _, t := range spec.Operands {
		n := t.Size()
		raw := code[pos : pos+n]
		pos += n
		switch {
		case t.isFlags():
			instr.Indirect = uint16(readUint(raw))
			instr.flagBits = uint(8 * n)
		case t.isImmediate():
			instr.Immediate.SetBytes(raw)
		case t == ArgTag:
			tag, err := TagFromByte(uint32(raw[0]))
			if err != nil {
				return nil, err
			}
			instr.Operands = append(instr.Operands, uint32(tag))
			instr.isAddr = append(instr.isAddr, false)
		default:
			instr.Operands = append(instr.Operands, uint32(readUint(raw)))
			instr.isAddr = append(instr.isAddr, t.isAddress())
		}
	}
	return instr, nil
}

// readUint reads a big-endian unsigned integer of at most 8 bytes.
func readUint(b []byte) uint64 {
	switch len(b) {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(binary.BigEndian.Uint16(b))
	case 4:
		return uint64(binary.BigEndian.Uint32(b))
	default:
		return binary.BigEndian.Uint64(b)
	}
}

// Program is a bytecode blob with memoized decoding.
type Program struct {
	Code    []byte
	Hash    common.Hash
	decoded map[uint32]*Instruction
}

func NewProgram(code []byte) *Program {
	return &Program{
		Code:    code,
		Hash:    common.Blake2Hash(code),
		decoded: make(map[uint32]*Instruction),
	}
}

// InstructionAt decodes, or returns the cached decoding of, the instruction at pc.
func (p *Program) InstructionAt(pc uint32) (*Instruction, error) {
	if instr, ok := p.decoded[pc]; ok {
		return instr, nil
	}
	instr, err := Decode(p.Code, pc)
	if err != nil {
		return nil, err
	}
	p.decoded[pc] = instr
	return instr, nil
}

// Disassemble decodes code linearly from offset 0.
func Disassemble(code []byte) ([]*Instruction, error) {
	var out []*Instruction
	for pc := uint32(0); uint64(pc) < uint64(len(code)); {
		instr, err := Decode(code, pc)
		if err != nil {
			return out, err
		}
		out = append(out, instr)
		pc += instr.Size
	}
	return out, nil
}
