package avm

import (
	"errors"
	"testing"

	"github.com/colorfulnotion/avm/avmerrors"
	"github.com/colorfulnotion/avm/types"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestAddWrapsU8(t *testing.T) {
	code := asm().
		Emit(SET_8, 0, 0, uint64(TagU8), 250).
		Emit(SET_8, 0, 1, uint64(TagU8), 10).
		Emit(ADD_8, 0, 0, 1, 2).
		ret(2, 1).MustBytes()
	out := mustReturn(t, code)
	require.Equal(t, []Word{word(TagU8, 4)}, out)
}

func TestSetFieldOne(t *testing.T) {
	code := asm().Emit(SET_FF, 0, 7, uint64(TagFF), 1).ret(7, 1).MustBytes()
	out := mustReturn(t, code)
	require.True(t, out[0].Equal(NewFieldUint64(1)))
}

func TestSetTruncatesImmediate(t *testing.T) {
	code := asm().
		Emit(SET_16, 0, 1, uint64(TagU8), 0x1234).
		Set(SET_FF, 0, 2, TagFF, new(uint256.Int).AddUint64(FieldModulus, 5)).
		ret(1, 2).MustBytes()
	out := mustReturn(t, code)
	require.True(t, out[0].Equal(word(TagU8, 0x34)))
	require.True(t, out[1].Equal(NewFieldUint64(5)))
}

func TestCastAndMov(t *testing.T) {
	code := asm().
		Emit(SET_16, 0, 1, uint64(TagU16), 0x1ff).
		Emit(CAST_8, 0, 1, 2, uint64(TagU8)).
		Emit(MOV_8, 0, 1, 3).
		Emit(NOT_8, 0, 2, 4).
		ret(2, 3).MustBytes()
	out := mustReturn(t, code)
	require.Equal(t, []Word{word(TagU8, 0xff), word(TagU16, 0x1ff), word(TagU8, 0x00)}, out)
}

func size(op byte) uint32 {
	return uint32(InstrSpecs[op].Size())
}

func TestJumpi(t *testing.T) {
	build := func(cond Word) []byte {
		a := asm().Set(SET_FF, 0, 1, cond.Tag(), &cond.value)
		target := a.PC() + size(JUMPI_32) + size(SET_64) + size(JUMP_32)
		end := target + size(SET_64)
		return a.Emit(JUMPI_32, 0, 1, uint64(target)).
			set(2, TagU8, 0xa).
			Emit(JUMP_32, uint64(end)).
			set(2, TagU8, 0xb).
			ret(2, 1).MustBytes()
	}
	require.True(t, mustReturn(t, build(NewFieldUint64(0)))[0].Equal(word(TagU8, 0xa)))
	require.True(t, mustReturn(t, build(word(TagU128, 2)))[0].Equal(word(TagU8, 0xb)))
	require.True(t, mustReturn(t, build(NewFieldUint64(9)))[0].Equal(word(TagU8, 0xb)))
}

func TestInternalCallStackDiscipline(t *testing.T) {
	a := asm()
	sub := 2*size(INTERNALCALL) + 2*size(SET_64) + size(RETURN)
	a.Emit(INTERNALCALL, uint64(sub)).
		set(1, TagU8, 1).
		Emit(INTERNALCALL, uint64(sub)).
		ret(1, 2)
	require.Equal(t, sub, a.PC())
	a.Emit(ADD_8, 0, 1, 1, 2).
		Emit(INTERNALRETURN)
	out := mustReturn(t, a.MustBytes())
	require.Equal(t, []Word{word(TagU8, 1), word(TagU8, 2)}, out)
}

func TestInternalReturnUnderflow(t *testing.T) {
	res, _, err := run(t, asm().Emit(INTERNALRETURN).MustBytes(), plenty)
	require.ErrorIs(t, err, avmerrors.ErrInternalStackUnderflow)
	require.True(t, res.Reverted)
	require.Empty(t, res.Output)
	require.Equal(t, types.Gas{}, res.GasLeft)
}

func TestRunningOffTheEndHalts(t *testing.T) {
	res, _, err := run(t, asm().set(1, TagU8, 1).MustBytes(), plenty)
	require.ErrorIs(t, err, avmerrors.ErrInvalidPC)
	require.True(t, res.Reverted)
}

func TestRevertOutput(t *testing.T) {
	code := asm().set(5, TagU64, 99).revert(5, 1).MustBytes()
	res, _, err := run(t, code, plenty)
	require.NoError(t, err, "an explicit revert is not an exceptional halt")
	require.True(t, res.Reverted)
	require.Nil(t, res.RevertReason)
	require.Equal(t, []Word{word(TagU64, 99)}, res.Output)
}

func TestGasConservation(t *testing.T) {
	code := asm().
		Emit(SET_8, 0, 1, uint64(TagU32), 2).
		Emit(SET_8, 0, 2, uint64(TagU32), 0).
		Emit(CALLDATACOPY, 0, 1, 2, 10).
		Emit(MUL_8, 0, 10, 11, 12).
		ret(12, 1).MustBytes()
	res, _, err := run(t, code, plenty)
	require.NoError(t, err)
	require.Equal(t, []Word{NewFieldUint64(11 * 22)}, res.Output)

	want := baseCost(SET_8, SET_8, CALLDATACOPY, MUL_8, SET_64, RETURN)
	want.L2 += 2*GasCostOf(CALLDATACOPY).DynL2 + 1*GasCostOf(RETURN).DynL2
	require.Equal(t, want, res.GasUsed)
	require.Equal(t, plenty.Sub(want), res.GasLeft)
}

func TestOutOfGasOnFirstUnaffordableInstruction(t *testing.T) {
	code := asm().
		set(1, TagU8, 1).
		set(2, TagU8, 2).
		ret(1, 1).MustBytes()
	// enough for both SETs but not the third
	gas := types.NewGas(2*GasCostOf(SET_64).BaseL2+GasCostOf(SET_64).BaseL2-1, 0)
	res, _, err := run(t, code, gas)
	require.ErrorIs(t, err, avmerrors.ErrOutOfGas)
	require.True(t, IsOutOfGas(err))
	require.True(t, res.Reverted)
	require.Equal(t, gas, res.GasUsed)
	require.Equal(t, types.Gas{}, res.GasLeft)
}

func TestOutOfDAGas(t *testing.T) {
	code := asm().
		Emit(SET_8, 0, 1, uint64(TagFF), 1).
		Emit(SSTORE, 0, 1, 1).
		ret(1, 0).MustBytes()
	res, world, err := run(t, code, types.NewGas(1_000_000, 511))
	require.ErrorIs(t, err, avmerrors.ErrOutOfGas)
	require.True(t, res.Reverted)
	stored := world.stored(self, 1)
	require.True(t, stored.IsZero())
}

func TestDynamicGasChargedBeforeEffects(t *testing.T) {
	// RETURN of 1000 words costs 3000 dynamic gas
	code := asm().ret(0, 1000).MustBytes()
	gas := baseCost(SET_64, RETURN).Add(types.NewGas(2999, 0))
	res, _, err := run(t, code, gas)
	require.ErrorIs(t, err, avmerrors.ErrOutOfGas)
	require.Empty(t, res.Output)
}

func TestStaticTopLevelSstore(t *testing.T) {
	world := newMockWorld()
	world.deploy(self, asm().
		Emit(SET_8, 0, 1, uint64(TagFF), 5).
		Emit(SSTORE, 0, 1, 1).
		ret(0, 0).MustBytes())
	vm := newTestVM(t, world, DefaultConfig())
	res, err := vm.Execute(testEnv(true), plenty)
	require.ErrorIs(t, err, avmerrors.ErrStaticCallViolation)
	require.True(t, res.Reverted)
	require.Empty(t, world.cur.storage)
}

func TestWorldStateFailureAborts(t *testing.T) {
	world := newMockWorld()
	world.ioErr = errors.Join(avmerrors.ErrWorldStateIO, errors.New("disk"))
	world.deploy(self, asm().
		Emit(SET_8, 0, 1, uint64(TagFF), 5).
		Emit(SLOAD, 0, 1, 2).
		ret(2, 1).MustBytes())
	vm := newTestVM(t, world, DefaultConfig())
	res, err := vm.Execute(testEnv(false), plenty)
	require.Nil(t, res)
	require.ErrorIs(t, err, avmerrors.ErrWorldStateIO)
}

func TestUnknownTopLevelContract(t *testing.T) {
	vm := newTestVM(t, newMockWorld(), DefaultConfig())
	res, err := vm.Execute(testEnv(false), plenty)
	require.ErrorIs(t, err, avmerrors.ErrUnknownOrCodelessContract)
	require.True(t, res.Reverted)
	require.Equal(t, plenty, res.GasUsed)
}

func TestProgramCacheReusesDecodings(t *testing.T) {
	world := newMockWorld()
	code := asm().ret(0, 0).MustBytes()
	world.deploy(self, code)
	vm := newTestVM(t, world, Config{ProgramCacheSize: 2})
	for i := 0; i < 3; i++ {
		_, err := vm.Execute(testEnv(false), plenty)
		require.NoError(t, err)
	}
	require.Equal(t, 1, vm.programs.Len())
	require.Same(t, vm.loadProgram(code), vm.loadProgram(append([]byte(nil), code...)))
}
