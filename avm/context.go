package avm

import (
	"fmt"

	"github.com/colorfulnotion/avm/avmerrors"
	"github.com/colorfulnotion/avm/types"
	"github.com/holiman/uint256"
)

// EnvironmentVariable selects the value GETENVVAR_16 reads.
type EnvironmentVariable uint8

const (
	EnvAddress EnvironmentVariable = iota
	EnvSender
	EnvTransactionFee
	EnvChainID
	EnvVersion
	EnvBlockNumber
	EnvTimestamp
	EnvFeePerL2Gas
	EnvFeePerDAGas
	EnvIsStaticCall
	EnvL2GasLeft
	EnvDAGasLeft
	numEnvVars
)

// Environment is the immutable per-context record.
type Environment struct {
	Address        types.Address
	Sender         types.Address
	TransactionFee uint256.Int
	Globals        types.GlobalVariables
	IsStaticCall   bool
	Calldata       []Word
}

// nested derives the environment of a callee. Static mode is sticky.
func (e *Environment) nested(target types.Address, calldata []Word, static bool) *Environment {
	return &Environment{
		Address:        target,
		Sender:         e.Address,
		TransactionFee: e.TransactionFee,
		Globals:        e.Globals,
		IsStaticCall:   e.IsStaticCall || static,
		Calldata:       calldata,
	}
}

// FieldCalldata wraps raw values as field words.
func FieldCalldata(values []uint256.Int) []Word {
	out := make([]Word, len(values))
	for i := range values {
		out[i] = NewField(&values[i])
	}
	return out
}

// ContractCallResults is produced exactly once per context, at halt.
type ContractCallResults struct {
	Output       []Word
	Reverted     bool
	RevertReason error
	GasLeft      types.Gas
	GasUsed      types.Gas
}

// Context owns the environment, machine state, memory and gas of one contract call.
type Context struct {
	Env    *Environment
	Memory *Memory

	program      *Program
	gasAllocated types.Gas
	gasLeft      types.Gas
	gasCharged   types.Gas

	pc                uint32
	nextPc            uint32
	internalCallStack []uint32
	nestedCallSuccess bool
	nestedReturndata  []Word

	halted   bool
	reverted bool
	output   []Word
	haltErr  error

	depth int
	trace *types.CallTraceNode
}

func newContext(env *Environment, program *Program, gas types.Gas, depth int, trace *types.CallTraceNode) *Context {
	return &Context{
		Env:          env,
		Memory:       NewMemory(),
		program:      program,
		gasAllocated: gas,
		gasLeft:      gas,
		depth:        depth,
		trace:        trace,
	}
}

func (c *Context) PC() uint32 {
	return c.pc
}

func (c *Context) Halted() bool {
	return c.halted
}

// halt stops the loop with an explicit RETURN or REVERT.
func (c *Context) halt(output []Word, reverted bool) {
	c.halted = true
	c.reverted = reverted
	c.output = output
}

// exceptionalHalt behaves like REVERT with empty output and consumes all remaining gas.
func (c *Context) exceptionalHalt(err error) {
	c.halted = true
	c.reverted = true
	c.output = nil
	c.haltErr = err
	c.gasLeft = types.Gas{}
}

func (c *Context) result() *ContractCallResults {
	return &ContractCallResults{
		Output:       c.output,
		Reverted:     c.reverted,
		RevertReason: c.haltErr,
		GasLeft:      c.gasLeft,
		GasUsed:      c.gasAllocated.Sub(c.gasLeft),
	}
}

func (c *Context) envVar(v EnvironmentVariable) (Word, error) {
	env := c.Env
	switch v {
	case EnvAddress:
		a := env.Address.Uint256()
		return NewField(&a), nil
	case EnvSender:
		s := env.Sender.Uint256()
		return NewField(&s), nil
	case EnvTransactionFee:
		return NewField(&env.TransactionFee), nil
	case EnvChainID:
		return NewField(&env.Globals.ChainID), nil
	case EnvVersion:
		return NewField(&env.Globals.Version), nil
	case EnvBlockNumber:
		return NewU32(env.Globals.BlockNumber), nil
	case EnvTimestamp:
		return NewU64(env.Globals.Timestamp), nil
	case EnvFeePerL2Gas:
		return NewWord(TagU128, &env.Globals.GasFees.FeePerL2Gas), nil
	case EnvFeePerDAGas:
		return NewWord(TagU128, &env.Globals.GasFees.FeePerDAGas), nil
	case EnvIsStaticCall:
		return NewU1(env.IsStaticCall), nil
	case EnvL2GasLeft:
		return NewU32(c.gasLeft.L2), nil
	case EnvDAGasLeft:
		return NewU32(c.gasLeft.DA), nil
	default:
		return Word{}, fmt.Errorf("%w: %d", avmerrors.ErrInvalidEnvVar, v)
	}
}
