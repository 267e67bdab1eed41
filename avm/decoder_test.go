package avm

import (
	"testing"

	"github.com/colorfulnotion/avm/avmerrors"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestEveryOpcodeHasHandlerAndGas(t *testing.T) {
	n := 0
	for op := 0; op < 256; op++ {
		spec := InstrSpecs[op]
		if spec == nil {
			require.Equal(t, "UNKNOWN_"+spec2hex(byte(op)), OpcodeName(byte(op)))
			continue
		}
		n++
		require.NotNil(t, dispatchTable[op], spec.Name)
		cost := GasCostOf(byte(op))
		require.NotZero(t, cost.BaseL2, spec.Name)
	}
	require.Equal(t, TORADIXBE+1, n)
}

func spec2hex(b byte) string {
	const digits = "0123456789abcdef"
	return string([]byte{digits[b>>4], digits[b&0xf]})
}

func TestDecodeBigEndianOperands(t *testing.T) {
	code := []byte{ADD_16, 0x03, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06}
	instr, err := Decode(code, 0)
	require.NoError(t, err)
	require.Equal(t, "ADD_16", instr.Name())
	require.Equal(t, uint16(0x03), instr.Indirect)
	require.Equal(t, []uint32{0x0102, 0x0304, 0x0506}, instr.Operands)
	require.Equal(t, uint32(8), instr.Size)

	code = asm().Emit(JUMP_32, 0xdeadbeef).MustBytes()
	instr, err = Decode(code, 0)
	require.NoError(t, err)
	require.Equal(t, []uint32{0xdeadbeef}, instr.Operands)
}

func TestDecodeSetImmediates(t *testing.T) {
	wide := new(uint256.Int).SubUint64(FieldModulus, 1)
	code, err := asm().
		Emit(SET_8, 0, 1, uint64(TagU8), 0xab).
		Emit(SET_128, 0, 2, uint64(TagU128), 0x0102030405060708).
		Set(SET_FF, 0, 3, TagFF, wide).
		Bytes()
	require.NoError(t, err)

	instrs, err := Disassemble(code)
	require.NoError(t, err)
	require.Len(t, instrs, 3)
	require.Equal(t, uint64(0xab), instrs[0].Immediate.Uint64())
	require.Equal(t, uint64(0x0102030405060708), instrs[1].Immediate.Uint64())
	require.True(t, instrs[2].Immediate.Eq(wide))
	require.Equal(t, []uint32{3, uint32(TagFF)}, instrs[2].Operands)
	require.Contains(t, instrs[0].String(), "SET_8 @1 2 #171")
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		code []byte
		pc   uint32
		want error
	}{
		{"pc past end", []byte{INTERNALRETURN}, 1, avmerrors.ErrInvalidPC},
		{"unknown opcode", []byte{0xff}, 0, avmerrors.ErrInvalidOpcode},
		{"truncated", []byte{ADD_8, 0, 1, 2}, 0, avmerrors.ErrInstructionOutOfRange},
		{"bad tag", []byte{SET_8, 0, 1, 9, 0}, 0, avmerrors.ErrInvalidTag},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.code, tt.pc)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestProgramMemoizesDecoding(t *testing.T) {
	p := NewProgram(asm().Emit(INTERNALRETURN).MustBytes())
	a, err := p.InstructionAt(0)
	require.NoError(t, err)
	b, err := p.InstructionAt(0)
	require.NoError(t, err)
	require.Same(t, a, b)
}

func TestAssemblerRejectsBadInput(t *testing.T) {
	_, err := asm().Emit(0xff).Bytes()
	require.Error(t, err)
	_, err = asm().Emit(ADD_8, 0, 1).Bytes()
	require.Error(t, err)
	_, err = asm().Emit(ADD_8, 0, 256, 1, 2).Bytes()
	require.Error(t, err)
	_, err = asm().Set(ADD_8, 0, 1, TagFF, uint256.NewInt(1)).Bytes()
	require.Error(t, err)
}

func TestResolveOperands(t *testing.T) {
	mem := NewMemory()
	mem.Set(0, NewU32(200))
	mem.Set(5, NewU32(100))
	mem.Set(205, NewU32(300))
	mem.Set(6, word(TagU8, 1))

	tests := []struct {
		name     string
		indirect uint64
		dst      uint64
		want     uint32
		err      error
	}{
		{"direct", 0x00, 5, 5, nil},
		{"indirect", 0x01, 5, 100, nil},
		{"relative", 0x10, 5, 205, nil},
		{"relative then indirect", 0x11, 5, 300, nil},
		{"indirect through non-u32", 0x01, 6, 0, avmerrors.ErrTagMismatch},
		{"flags of other operands ignored", 0x0e, 5, 5, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code := asm().Emit(SET_16, tt.indirect, tt.dst, uint64(TagU8), 1).MustBytes()
			instr, err := Decode(code, 0)
			require.NoError(t, err)
			ops, err := resolveOperands(mem, instr)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			// tag operand passes through unchanged
			require.Equal(t, []uint32{tt.want, uint32(TagU8)}, ops)
		})
	}
}

func TestResolveOperandsCountsAddressesOnly(t *testing.T) {
	mem := NewMemory()
	mem.Set(7, NewU32(70))
	// CAST_8 operands: src, dst, tag. Bit 1 marks dst indirect.
	code := asm().Emit(CAST_8, 0x02, 3, 7, uint64(TagU16)).MustBytes()
	instr, err := Decode(code, 0)
	require.NoError(t, err)
	ops, err := resolveOperands(mem, instr)
	require.NoError(t, err)
	require.Equal(t, []uint32{3, 70, uint32(TagU16)}, ops)
}

func TestRelativeRequiresU32Base(t *testing.T) {
	mem := NewMemory()
	mem.Set(0, word(TagU64, 10))
	instr, err := Decode(asm().Emit(SET_16, 0x10, 5, uint64(TagU8), 1).MustBytes(), 0)
	require.NoError(t, err)
	_, err = resolveOperands(mem, instr)
	require.ErrorIs(t, err, avmerrors.ErrTagMismatch)
}

func TestRelativeOverflow(t *testing.T) {
	mem := NewMemory()
	mem.Set(0, NewU32(0xffffffff))
	instr, err := Decode(asm().Emit(SET_16, 0x10, 5, uint64(TagU8), 1).MustBytes(), 0)
	require.NoError(t, err)
	_, err = resolveOperands(mem, instr)
	require.ErrorIs(t, err, avmerrors.ErrAddressOutOfRange)
}
