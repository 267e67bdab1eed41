package avm

import (
	"testing"

	"github.com/colorfulnotion/avm/avm/gadgets"
	"github.com/colorfulnotion/avm/avmerrors"
	"github.com/colorfulnotion/avm/types"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func field(v *uint256.Int) Word {
	return NewField(v)
}

func addrWord(a types.Address) Word {
	v := a.Uint256()
	return NewField(&v)
}

// setWord writes w at dst, whatever its width.
func (a *Assembler) setWord(dst uint32, w Word) *Assembler {
	v := w.Value()
	return a.Set(SET_FF, 0, dst, w.Tag(), &v)
}

func TestGetEnvVar(t *testing.T) {
	a := asm()
	for v := EnvAddress; v < numEnvVars; v++ {
		a.Emit(GETENVVAR_16, 0, uint64(v), uint64(v))
	}
	out := mustReturn(t, a.ret(0, uint32(numEnvVars)).MustBytes())

	fee := uint256.NewInt(77)
	require.Equal(t, []Word{
		addrWord(self), addrWord(sender), field(fee),
		NewFieldUint64(1), NewFieldUint64(1),
		NewU32(1), NewU64(1),
		word(TagU128, 0), word(TagU128, 0),
		NewU1(false),
	}, out[:EnvL2GasLeft])

	gasBeforeL2 := plenty.L2 - uint32(EnvL2GasLeft+1)*GasCostOf(GETENVVAR_16).BaseL2
	require.Equal(t, NewU32(gasBeforeL2), out[EnvL2GasLeft])
	require.Equal(t, NewU32(plenty.DA), out[EnvDAGasLeft])
}

func TestGetEnvVarInvalid(t *testing.T) {
	res, _, err := run(t, asm().Emit(GETENVVAR_16, 0, 1, uint64(numEnvVars)).MustBytes(), plenty)
	require.ErrorIs(t, err, avmerrors.ErrInvalidEnvVar)
	require.True(t, res.Reverted)
	require.Equal(t, plenty, res.GasUsed)
}

func TestCalldataCopyPadsWithZero(t *testing.T) {
	out := mustReturn(t, asm().
		set(1, TagU32, 4).
		set(2, TagU32, 1).
		Emit(CALLDATACOPY, 0, 1, 2, 10).
		ret(10, 4).MustBytes())
	require.Equal(t, []Word{NewFieldUint64(22), NewFieldUint64(0), NewFieldUint64(0), NewFieldUint64(0)}, out)
}

func TestCalldataCopyChargesPerWord(t *testing.T) {
	code := asm().
		set(1, TagU32, 10).
		set(2, TagU32, 0).
		Emit(CALLDATACOPY, 0, 1, 2, 10).
		ret(0, 0).MustBytes()
	res, _, err := run(t, code, plenty)
	require.NoError(t, err)
	want := baseCost(SET_64, SET_64, CALLDATACOPY, SET_64, RETURN).Add(types.NewGas(10*gasPerCopiedWord, 0))
	require.Equal(t, want, res.GasUsed)
}

func TestStorageReadWrite(t *testing.T) {
	world := newMockWorld()
	code := asm().
		set(1, TagU64, 1234).
		Emit(SET_8, 0, 2, uint64(TagFF), 7).
		Emit(SSTORE, 0, 1, 2).
		Emit(SLOAD, 0, 2, 3).
		Emit(SET_8, 0, 4, uint64(TagFF), 8).
		Emit(SLOAD, 0, 4, 5).
		ret(3, 3).MustBytes()
	_, res, err := runWith(t, world, DefaultConfig(), code, plenty)
	require.NoError(t, err)
	require.Equal(t, []Word{NewFieldUint64(1234), NewFieldUint64(8), NewFieldUint64(0)}, res.Output,
		"SLOAD always yields a field")
	require.Equal(t, *uint256.NewInt(1234), world.stored(self, 7))
}

func TestNoteHashExists(t *testing.T) {
	world := newMockWorld()
	world.cur.noteHashes = []uint256.Int{*uint256.NewInt(5), *uint256.NewInt(6)}
	code := asm().
		Emit(SET_8, 0, 1, uint64(TagFF), 6).
		set(2, TagU64, 1).
		set(3, TagU64, 0).
		set(4, TagU64, 9).
		Emit(NOTEHASHEXISTS, 0, 1, 2, 10).
		Emit(NOTEHASHEXISTS, 0, 1, 3, 11).
		Emit(NOTEHASHEXISTS, 0, 1, 4, 12).
		ret(10, 3).MustBytes()
	_, res, err := runWith(t, world, DefaultConfig(), code, plenty)
	require.NoError(t, err)
	require.Equal(t, []Word{NewU1(true), NewU1(false), NewU1(false)}, res.Output)
}

func TestL1ToL2MessageExists(t *testing.T) {
	world := newMockWorld()
	world.l1ToL2[3] = *uint256.NewInt(42)
	code := asm().
		Emit(SET_8, 0, 1, uint64(TagFF), 42).
		set(2, TagU64, 3).
		set(3, TagU64, 4).
		Emit(L1TOL2MSGEXISTS, 0, 1, 2, 10).
		Emit(L1TOL2MSGEXISTS, 0, 1, 3, 11).
		ret(10, 2).MustBytes()
	_, res, err := runWith(t, world, DefaultConfig(), code, plenty)
	require.NoError(t, err)
	require.Equal(t, []Word{NewU1(true), NewU1(false)}, res.Output)
}

func TestLeafIndexMustBeU64(t *testing.T) {
	code := asm().
		Emit(SET_8, 0, 1, uint64(TagFF), 6).
		set(2, TagU32, 0).
		Emit(NOTEHASHEXISTS, 0, 1, 2, 10).MustBytes()
	_, _, err := run(t, code, plenty)
	require.ErrorIs(t, err, avmerrors.ErrTagMismatch)
}

func TestGetContractInstance(t *testing.T) {
	world := newMockWorld()
	inst := &types.ContractInstance{Address: callee, Deployer: sender}
	inst.ContractClassID.SetUint64(99)
	inst.InitializationHash.SetUint64(7)
	world.instances[callee] = inst

	code := asm().
		setWord(1, addrWord(callee)).
		set(2, TagFF, 0xabcdef).
		Emit(GETCONTRACTINSTANCE, 0, 1, 10, 11, uint64(types.MemberDeployer)).
		Emit(GETCONTRACTINSTANCE, 0, 1, 12, 13, uint64(types.MemberClassID)).
		Emit(GETCONTRACTINSTANCE, 0, 1, 14, 15, uint64(types.MemberInitHash)).
		Emit(GETCONTRACTINSTANCE, 0, 2, 16, 17, uint64(types.MemberClassID)).
		ret(10, 8).MustBytes()
	_, res, err := runWith(t, world, DefaultConfig(), code, plenty)
	require.NoError(t, err)
	require.Equal(t, []Word{
		addrWord(sender), NewU1(true),
		NewFieldUint64(99), NewU1(true),
		NewFieldUint64(7), NewU1(true),
		NewFieldUint64(0), NewU1(false),
	}, res.Output)
}

func TestGetContractInstanceInvalidMember(t *testing.T) {
	code := asm().Emit(GETCONTRACTINSTANCE, 0, 1, 10, 11, 3).MustBytes()
	_, _, err := run(t, code, plenty)
	require.ErrorIs(t, err, avmerrors.ErrInvalidContractMember)
}

func TestEmitPublicLogAndMessage(t *testing.T) {
	world := newMockWorld()
	code := asm().
		Emit(SET_8, 0, 1, uint64(TagFF), 1).
		Emit(SET_8, 0, 2, uint64(TagU8), 2).
		Emit(SET_8, 0, 3, uint64(TagFF), 3).
		set(4, TagU32, 3).
		Emit(EMITPUBLICLOG, 0, 4, 1).
		Emit(SENDL2TOL1MSG, 0, 1, 3).
		ret(0, 0).MustBytes()
	_, res, err := runWith(t, world, DefaultConfig(), code, plenty)
	require.NoError(t, err)
	require.Equal(t, [][]uint256.Int{{*uint256.NewInt(1), *uint256.NewInt(2), *uint256.NewInt(3)}}, world.cur.logs)
	require.Equal(t, []uint256.Int{*uint256.NewInt(3)}, world.cur.messages)

	logCost := GasCostOf(EMITPUBLICLOG)
	msgCost := GasCostOf(SENDL2TOL1MSG)
	require.Equal(t, logCost.BaseDA+3*logCost.DynDA+msgCost.BaseDA, res.GasUsed.DA)
}

func TestMessageRecipientMustBeField(t *testing.T) {
	code := asm().
		Emit(SET_8, 0, 1, uint64(TagU8), 1).
		Emit(SENDL2TOL1MSG, 0, 1, 1).MustBytes()
	_, world, err := run(t, code, plenty)
	require.ErrorIs(t, err, avmerrors.ErrTagMismatch)
	require.Empty(t, world.cur.messages)
}

func TestNullifierEmitThenExists(t *testing.T) {
	world := newMockWorld()
	code := asm().
		Emit(SET_8, 0, 1, uint64(TagFF), 8).
		Emit(EMITNULLIFIER, 0, 1).
		Emit(GETENVVAR_16, 0, 2, uint64(EnvAddress)).
		setWord(3, addrWord(callee)).
		Emit(NULLIFIEREXISTS, 0, 1, 2, 10).
		Emit(NULLIFIEREXISTS, 0, 1, 3, 11).
		ret(10, 2).MustBytes()
	_, res, err := runWith(t, world, DefaultConfig(), code, plenty)
	require.NoError(t, err)
	require.Equal(t, []Word{NewU1(true), NewU1(false)}, res.Output, "nullifiers are scoped to the emitting contract")
}

func TestNullifierCollisionHalts(t *testing.T) {
	code := asm().
		Emit(SET_8, 0, 1, uint64(TagFF), 8).
		Emit(EMITNULLIFIER, 0, 1).
		Emit(EMITNULLIFIER, 0, 1).
		ret(0, 0).MustBytes()
	res, _, err := run(t, code, plenty)
	require.ErrorIs(t, err, avmerrors.ErrNullifierCollision)
	require.True(t, res.Reverted)
	require.Equal(t, plenty, res.GasUsed)
}

func TestDebugLogHasNoEffect(t *testing.T) {
	world := newMockWorld()
	code := asm().
		Emit(SET_8, 0, 1, uint64(TagU8), 'h').
		Emit(SET_8, 0, 2, uint64(TagU8), 'i').
		Emit(SET_8, 0, 3, uint64(TagFF), 5).
		set(4, TagU32, 1).
		Emit(DEBUGLOG, 0, 1, 3, 4, 2).
		ret(1, 2).MustBytes()
	_, res, err := runWith(t, world, DefaultConfig(), code, plenty)
	require.NoError(t, err)
	require.Equal(t, []Word{word(TagU8, 'h'), word(TagU8, 'i')}, res.Output)
	require.Empty(t, world.cur.logs)
	// two message chars and one field for DEBUGLOG, two words for RETURN
	require.Equal(t, baseCost(SET_8, SET_8, SET_8, SET_64, DEBUGLOG, SET_64, RETURN).Add(types.NewGas(5*gasPerCopiedWord, 0)), res.GasUsed)
}

func TestDebugLogChargesPerField(t *testing.T) {
	code := asm().
		set(4, TagU32, 5_000_000).
		Emit(DEBUGLOG, 0, 1, 3, 4, 0).
		ret(0, 0).MustBytes()
	gas := types.NewGas(1_000_000, 1_000)
	res, _, err := run(t, code, gas)
	require.ErrorIs(t, err, avmerrors.ErrOutOfGas)
	require.True(t, res.Reverted)
	require.Equal(t, gas, res.GasUsed)
}

func TestDebugLogFieldsCapped(t *testing.T) {
	code := asm().
		set(4, TagU32, MaxSliceSize+1).
		Emit(DEBUGLOG, 0, 1, 3, 4, 0).
		ret(0, 0).MustBytes()
	res, _, err := run(t, code, plenty)
	require.ErrorIs(t, err, avmerrors.ErrSliceTooLarge)
	require.True(t, res.Reverted)
}

func TestCalldataCopyCapped(t *testing.T) {
	code := asm().
		set(1, TagU32, MaxSliceSize+1).
		set(2, TagU32, 0).
		Emit(CALLDATACOPY, 0, 1, 2, 10).
		ret(0, 0).MustBytes()
	res, _, err := run(t, code, plenty)
	require.ErrorIs(t, err, avmerrors.ErrSliceTooLarge)
	require.True(t, res.Reverted)
}

func frWord(t *testing.T, h string) Word {
	t.Helper()
	var e fr.Element
	_, err := e.SetString(h)
	require.NoError(t, err)
	return WordFromFr(&e)
}

func TestPoseidon2PermOpcode(t *testing.T) {
	in := frWord(t, "0x9a807b615c4d3e2fa0b1c2d3e4f56789fedcba9876543210abcdef0123456789")
	a := asm()
	for i := 0; i < gadgets.Poseidon2Width; i++ {
		a.setWord(uint32(1+i), in)
	}
	out := mustReturn(t, a.Emit(POSEIDON2PERM, 0, 1, 10).ret(10, gadgets.Poseidon2Width).MustBytes())

	require.Equal(t, []Word{
		frWord(t, "0x2bf1eaf87f7d27e8dc4056e9af975985bccc89077a21891d6c7b6ccce0631f95"),
		frWord(t, "0x0c01fa1b8d0748becafbe452c0cb0231c38224ea824554c9362518eebdd5701f"),
		frWord(t, "0x018555a8eb50cf07f64b019ebaf3af3c925c93e631f3ecd455db07bbb52bbdd3"),
		frWord(t, "0x0cbea457c91c22c6c31fd89afd2541efc2edf31736b9f721e823b2165c90fd41"),
	}, out)
}

func TestSHA256CompressionOpcode(t *testing.T) {
	a := asm()
	for i, v := range gadgets.SHA256IV {
		a.set(uint32(20+i), TagU32, uint64(v))
	}
	block := [16]uint32{0: 0x61626380, 15: 24}
	for i, v := range block {
		a.set(uint32(40+i), TagU32, uint64(v))
	}
	out := mustReturn(t, a.Emit(SHA256COMPRESSION, 0, 60, 20, 40).ret(60, 8).MustBytes())
	want := []uint64{0xba7816bf, 0x8f01cfea, 0x414140de, 0x5dae2223, 0xb00361a3, 0x96177a9c, 0xb410ff61, 0xf20015ad}
	for i, w := range out {
		require.Equal(t, TagU32, w.Tag())
		require.Equal(t, want[i], w.Uint64())
	}
}

func TestSHA256CompressionRequiresU32(t *testing.T) {
	_, _, err := run(t, asm().Emit(SHA256COMPRESSION, 0, 60, 20, 40).MustBytes(), plenty)
	require.ErrorIs(t, err, avmerrors.ErrTagMismatch)
}

func TestKeccakF1600Opcode(t *testing.T) {
	a := asm()
	for i := 0; i < 25; i++ {
		a.set(uint32(100+i), TagU64, 0)
	}
	out := mustReturn(t, a.Emit(KECCAKF1600, 0, 200, 100).ret(200, 25).MustBytes())
	require.Equal(t, NewU64(0xF1258F7940E1DDE7), out[0])
	for _, w := range out {
		require.Equal(t, TagU64, w.Tag())
	}
}

func pointCode(a *Assembler, base uint32, p gadgets.Point) *Assembler {
	a.setWord(base, WordFromFr(&p.X)).setWord(base+1, WordFromFr(&p.Y))
	return a.setWord(base+2, NewU1(p.Infinity))
}

func TestECAddOpcode(t *testing.T) {
	g := gadgets.GrumpkinGenerator()
	tests := []struct {
		name string
		p, q gadgets.Point
		want []Word
	}{
		{"double", g, g, nil},
		{"identity", g, gadgets.InfinityPoint(), nil},
		{"inverse", g, g.Neg(), []Word{NewFieldUint64(0), NewFieldUint64(0), NewU1(true)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := pointCode(pointCode(asm(), 1, tt.p), 4, tt.q)
			out := mustReturn(t, a.Emit(ECADD, 0, 1, 2, 3, 4, 5, 6, 10).ret(10, 3).MustBytes())
			want := tt.want
			if want == nil {
				r := gadgets.AddPoints(tt.p, tt.q)
				want = []Word{WordFromFr(&r.X), WordFromFr(&r.Y), NewU1(false)}
			}
			require.Equal(t, want, out)
		})
	}
}

func TestECAddRejectsPointOffCurve(t *testing.T) {
	var bad gadgets.Point
	bad.X.SetUint64(2)
	bad.Y.SetUint64(2)
	a := pointCode(pointCode(asm(), 1, gadgets.GrumpkinGenerator()), 4, bad)
	_, _, err := run(t, a.Emit(ECADD, 0, 1, 2, 3, 4, 5, 6, 10).MustBytes(), plenty)
	require.ErrorIs(t, err, avmerrors.ErrPointNotOnCurve)
}

func TestToRadixBEOpcode(t *testing.T) {
	code := asm().
		set(1, TagFF, 300).
		set(2, TagU32, 16).
		set(3, TagU32, 3).
		set(4, TagU1, 0).
		Emit(TORADIXBE, 0, 1, 2, 3, 4, 10).
		ret(10, 3).MustBytes()
	res, _, err := run(t, code, plenty)
	require.NoError(t, err)
	require.Equal(t, []Word{word(TagU8, 1), word(TagU8, 2), word(TagU8, 12)}, res.Output)
	want := baseCost(SET_64, SET_64, SET_64, SET_64, TORADIXBE, SET_64, RETURN).
		Add(types.NewGas(3*gasPerCopiedWord+3*gasPerCopiedWord, 0))
	require.Equal(t, want, res.GasUsed)
}

// 300 is 0x12c: two limbs keep the low digits 0x2 and 0xc, the leading 0x1 is dropped.
func TestToRadixBEOpcodeTwoLimbsOf300(t *testing.T) {
	code := asm().
		set(1, TagFF, 300).
		set(2, TagU32, 16).
		set(3, TagU32, 2).
		set(4, TagU1, 0).
		Emit(TORADIXBE, 0, 1, 2, 3, 4, 10).
		ret(10, 2).MustBytes()
	res, _, err := run(t, code, plenty)
	require.NoError(t, err)
	require.Equal(t, []Word{word(TagU8, 2), word(TagU8, 12)}, res.Output)
	for _, w := range res.Output {
		require.Less(t, w.Uint64(), uint64(16), "every limb is a single radix digit")
	}
}

func TestToRadixBEOpcodeInvalidRadix(t *testing.T) {
	code := asm().
		set(1, TagFF, 300).
		set(2, TagU32, 300).
		set(3, TagU32, 3).
		set(4, TagU1, 0).
		Emit(TORADIXBE, 0, 1, 2, 3, 4, 10).MustBytes()
	res, _, err := run(t, code, plenty)
	require.ErrorIs(t, err, avmerrors.ErrInvalidRadixConversion)
	require.Empty(t, res.Output)
}
