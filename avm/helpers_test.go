package avm

import (
	"testing"

	"github.com/colorfulnotion/avm/types"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

const scratch = 1000

var (
	self     = types.AddressFromUint64(0x5e1f)
	sender   = types.AddressFromUint64(0xca11)
	plenty   = types.NewGas(10_000_000, 1_000_000)
	allTags  = []Tag{TagFF, TagU1, TagU8, TagU16, TagU32, TagU64, TagU128}
	intTags  = []Tag{TagU1, TagU8, TagU16, TagU32, TagU64, TagU128}
	calldata = []uint256.Int{*uint256.NewInt(11), *uint256.NewInt(22)}
)

func asm() *Assembler {
	return NewAssembler()
}

// set writes a small immediate of the given tag at a 16-bit offset.
func (a *Assembler) set(dst uint32, tag Tag, v uint64) *Assembler {
	return a.Emit(SET_64, 0, uint64(dst), uint64(tag), v)
}

// ret returns size words starting at offset.
func (a *Assembler) ret(offset, size uint32) *Assembler {
	return a.set(scratch, TagU32, uint64(size)).Emit(RETURN, 0, scratch, uint64(offset))
}

func (a *Assembler) revert(offset, size uint32) *Assembler {
	return a.set(scratch, TagU32, uint64(size)).Emit(REVERT_16, 0, scratch, uint64(offset))
}

func testEnv(static bool) *Environment {
	return &Environment{
		Address:        self,
		Sender:         sender,
		TransactionFee: *uint256.NewInt(77),
		Globals:        types.DefaultGlobalVariables(),
		IsStaticCall:   static,
		Calldata:       FieldCalldata(calldata),
	}
}

func newTestVM(t *testing.T, world *mockWorld, cfg Config) *Interpreter {
	t.Helper()
	vm, err := NewInterpreter(cfg, world)
	require.NoError(t, err)
	return vm
}

// run executes code as the top-level context of self.
func run(t *testing.T, code []byte, gas types.Gas) (*ContractCallResults, *mockWorld, error) {
	t.Helper()
	world := newMockWorld()
	world.deploy(self, code)
	vm := newTestVM(t, world, DefaultConfig())
	res, err := vm.Execute(testEnv(false), gas)
	require.NotNil(t, res)
	return res, world, err
}

// mustReturn runs code and requires a successful RETURN.
func mustReturn(t *testing.T, code []byte) []Word {
	t.Helper()
	res, _, err := run(t, code, plenty)
	require.NoError(t, err)
	require.False(t, res.Reverted)
	return res.Output
}

func word(tag Tag, v uint64) Word {
	return NewWordUint64(tag, v)
}

// baseCost sums the base costs of opcodes.
func baseCost(opcodes ...byte) types.Gas {
	var g types.Gas
	for _, op := range opcodes {
		c := GasCostOf(op)
		g = g.Add(types.NewGas(c.BaseL2, c.BaseDA))
	}
	return g
}
