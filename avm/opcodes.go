package avm

import "fmt"

// Compute - Arithmetic
const (
	ADD_8   = 0x00
	ADD_16  = 0x01
	SUB_8   = 0x02
	SUB_16  = 0x03
	MUL_8   = 0x04
	MUL_16  = 0x05
	DIV_8   = 0x06
	DIV_16  = 0x07
	FDIV_8  = 0x08
	FDIV_16 = 0x09
)

// Compute - Comparison
const (
	EQ_8   = 0x0a
	EQ_16  = 0x0b
	LT_8   = 0x0c
	LT_16  = 0x0d
	LTE_8  = 0x0e
	LTE_16 = 0x0f
)

// Compute - Bitwise
const (
	AND_8  = 0x10
	AND_16 = 0x11
	OR_8   = 0x12
	OR_16  = 0x13
	XOR_8  = 0x14
	XOR_16 = 0x15
	NOT_8  = 0x16
	NOT_16 = 0x17
	SHL_8  = 0x18
	SHL_16 = 0x19
	SHR_8  = 0x1a
	SHR_16 = 0x1b
)

// Compute - Type Conversions
const (
	CAST_8  = 0x1c
	CAST_16 = 0x1d
)

// Execution Environment
const (
	GETENVVAR_16   = 0x1e
	CALLDATACOPY   = 0x1f
	SUCCESSCOPY    = 0x20
	RETURNDATASIZE = 0x21
	RETURNDATACOPY = 0x22
)

// Machine State - Control Flow
const (
	JUMP_32        = 0x23
	JUMPI_32       = 0x24
	INTERNALCALL   = 0x25
	INTERNALRETURN = 0x26
)

// Machine State - Memory
const (
	SET_8   = 0x27
	SET_16  = 0x28
	SET_32  = 0x29
	SET_64  = 0x2a
	SET_128 = 0x2b
	SET_FF  = 0x2c
	MOV_8   = 0x2d
	MOV_16  = 0x2e
)

// World State
const (
	SLOAD               = 0x2f
	SSTORE              = 0x30
	NOTEHASHEXISTS      = 0x31
	EMITNOTEHASH        = 0x32
	NULLIFIEREXISTS     = 0x33
	EMITNULLIFIER       = 0x34
	L1TOL2MSGEXISTS     = 0x35
	GETCONTRACTINSTANCE = 0x36
	EMITPUBLICLOG       = 0x37
	SENDL2TOL1MSG       = 0x38
)

// External Calls
const (
	CALL       = 0x39
	STATICCALL = 0x3a
	RETURN     = 0x3b
	REVERT_8   = 0x3c
	REVERT_16  = 0x3d
)

// Misc
const (
	DEBUGLOG = 0x3e
)

// Gadgets
const (
	POSEIDON2PERM     = 0x3f
	SHA256COMPRESSION = 0x40
	KECCAKF1600       = 0x41
	ECADD             = 0x42
	TORADIXBE         = 0x43
)

// OperandType describes one field of an instruction's wire encoding.
type OperandType uint8

const (
	ArgIndirect8  OperandType = iota // addressing flags, 1 byte
	ArgIndirect16                    // addressing flags, 2 bytes
	ArgAddr8                         // memory offset subject to addressing
	ArgAddr16
	ArgU8 // literal operands
	ArgU16
	ArgU32
	ArgTag
	ArgImm8 // SET immediates
	ArgImm16
	ArgImm32
	ArgImm64
	ArgImm128
	ArgImmFF
)

var operandSizes = map[OperandType]int{
	ArgIndirect8: 1, ArgIndirect16: 2,
	ArgAddr8: 1, ArgAddr16: 2,
	ArgU8: 1, ArgU16: 2, ArgU32: 4, ArgTag: 1,
	ArgImm8: 1, ArgImm16: 2, ArgImm32: 4, ArgImm64: 8, ArgImm128: 16, ArgImmFF: 32,
}

func (t OperandType) Size() int {
	return operandSizes[t]
}

func (t OperandType) isFlags() bool {
	return t == ArgIndirect8 || t == ArgIndirect16
}

func (t OperandType) isAddress() bool {
	return t == ArgAddr8 || t == ArgAddr16
}

func (t OperandType) isImmediate() bool {
	return t >= ArgImm8
}

// InstructionSpec is the wire format of one opcode.
type InstructionSpec struct {
	Opcode   byte
	Name     string
	Operands []OperandType
	size     int
}

// Size is the encoded length including the opcode byte.
func (s *InstructionSpec) Size() int {
	return s.size
}

var InstrSpecs [256]*InstructionSpec

type InstructionBuilder struct {
	spec *InstructionSpec
}

// RegisterInstr creates a new instruction specification with the given opcode and name
func RegisterInstr(opcode byte, name string) *InstructionBuilder {
	spec := &InstructionSpec{Opcode: opcode, Name: name, size: 1}
	InstrSpecs[opcode] = spec
	return &InstructionBuilder{spec: spec}
}

// Args sets the operand layout of the instruction
func (b *InstructionBuilder) Args(args ...OperandType) *InstructionBuilder {
	b.spec.Operands = args
	b.spec.size = 1
	for _, a := range args {
		b.spec.size += a.Size()
	}
	return b
}

func opcode_str(opcode byte) string {
	if spec := InstrSpecs[opcode]; spec != nil {
		return spec.Name
	}
	return fmt.Sprintf("UNKNOWN_%02x", opcode)
}

// OpcodeName returns the mnemonic of an opcode byte.
func OpcodeName(opcode byte) string {
	return opcode_str(opcode)
}

const (
	i8  = ArgIndirect8
	i16 = ArgIndirect16
	a8  = ArgAddr8
	a16 = ArgAddr16
)

func init() {
	threeOps := []struct {
		op8, op16 byte
		name      string
	}{
		{ADD_8, ADD_16, "ADD"}, {SUB_8, SUB_16, "SUB"}, {MUL_8, MUL_16, "MUL"},
		{DIV_8, DIV_16, "DIV"}, {FDIV_8, FDIV_16, "FDIV"},
		{EQ_8, EQ_16, "EQ"}, {LT_8, LT_16, "LT"}, {LTE_8, LTE_16, "LTE"},
		{AND_8, AND_16, "AND"}, {OR_8, OR_16, "OR"}, {XOR_8, XOR_16, "XOR"},
		{SHL_8, SHL_16, "SHL"}, {SHR_8, SHR_16, "SHR"},
	}
	for _, o := range threeOps {
		RegisterInstr(o.op8, o.name+"_8").Args(i8, a8, a8, a8)
		RegisterInstr(o.op16, o.name+"_16").Args(i8, a16, a16, a16)
	}
	RegisterInstr(NOT_8, "NOT_8").Args(i8, a8, a8)
	RegisterInstr(NOT_16, "NOT_16").Args(i8, a16, a16)
	RegisterInstr(CAST_8, "CAST_8").Args(i8, a8, a8, ArgTag)
	RegisterInstr(CAST_16, "CAST_16").Args(i8, a16, a16, ArgTag)

	RegisterInstr(GETENVVAR_16, "GETENVVAR_16").Args(i8, a16, ArgU8)
	RegisterInstr(CALLDATACOPY, "CALLDATACOPY").Args(i8, a16, a16, a16)
	RegisterInstr(SUCCESSCOPY, "SUCCESSCOPY").Args(i8, a16)
	RegisterInstr(RETURNDATASIZE, "RETURNDATASIZE").Args(i8, a16)
	RegisterInstr(RETURNDATACOPY, "RETURNDATACOPY").Args(i8, a16, a16, a16)

	RegisterInstr(JUMP_32, "JUMP_32").Args(ArgU32)
	RegisterInstr(JUMPI_32, "JUMPI_32").Args(i8, a16, ArgU32)
	RegisterInstr(INTERNALCALL, "INTERNALCALL").Args(ArgU32)
	RegisterInstr(INTERNALRETURN, "INTERNALRETURN")

	RegisterInstr(SET_8, "SET_8").Args(i8, a8, ArgTag, ArgImm8)
	RegisterInstr(SET_16, "SET_16").Args(i8, a16, ArgTag, ArgImm16)
	RegisterInstr(SET_32, "SET_32").Args(i8, a16, ArgTag, ArgImm32)
	RegisterInstr(SET_64, "SET_64").Args(i8, a16, ArgTag, ArgImm64)
	RegisterInstr(SET_128, "SET_128").Args(i8, a16, ArgTag, ArgImm128)
	RegisterInstr(SET_FF, "SET_FF").Args(i8, a16, ArgTag, ArgImmFF)
	RegisterInstr(MOV_8, "MOV_8").Args(i8, a8, a8)
	RegisterInstr(MOV_16, "MOV_16").Args(i8, a16, a16)

	RegisterInstr(SLOAD, "SLOAD").Args(i8, a16, a16)
	RegisterInstr(SSTORE, "SSTORE").Args(i8, a16, a16)
	RegisterInstr(NOTEHASHEXISTS, "NOTEHASHEXISTS").Args(i8, a16, a16, a16)
	RegisterInstr(EMITNOTEHASH, "EMITNOTEHASH").Args(i8, a16)
	RegisterInstr(NULLIFIEREXISTS, "NULLIFIEREXISTS").Args(i8, a16, a16, a16)
	RegisterInstr(EMITNULLIFIER, "EMITNULLIFIER").Args(i8, a16)
	RegisterInstr(L1TOL2MSGEXISTS, "L1TOL2MSGEXISTS").Args(i8, a16, a16, a16)
	RegisterInstr(GETCONTRACTINSTANCE, "GETCONTRACTINSTANCE").Args(i8, a16, a16, a16, ArgU8)
	RegisterInstr(EMITPUBLICLOG, "EMITPUBLICLOG").Args(i8, a16, a16)
	RegisterInstr(SENDL2TOL1MSG, "SENDL2TOL1MSG").Args(i8, a16, a16)

	RegisterInstr(CALL, "CALL").Args(i16, a16, a16, a16, a16, a16)
	RegisterInstr(STATICCALL, "STATICCALL").Args(i16, a16, a16, a16, a16, a16)
	RegisterInstr(RETURN, "RETURN").Args(i8, a16, a16)
	RegisterInstr(REVERT_8, "REVERT_8").Args(i8, a8, a8)
	RegisterInstr(REVERT_16, "REVERT_16").Args(i8, a16, a16)

	RegisterInstr(DEBUGLOG, "DEBUGLOG").Args(i8, a16, a16, a16, ArgU16)

	RegisterInstr(POSEIDON2PERM, "POSEIDON2PERM").Args(i8, a16, a16)
	RegisterInstr(SHA256COMPRESSION, "SHA256COMPRESSION").Args(i8, a16, a16, a16)
	RegisterInstr(KECCAKF1600, "KECCAKF1600").Args(i8, a16, a16)
	RegisterInstr(ECADD, "ECADD").Args(i16, a16, a16, a16, a16, a16, a16, a16)
	RegisterInstr(TORADIXBE, "TORADIXBE").Args(i16, a16, a16, a16, a16, a16)
}
