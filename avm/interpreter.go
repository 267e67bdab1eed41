package avm

import (
	"errors"
	"fmt"

	"github.com/colorfulnotion/avm/avmerrors"
	"github.com/colorfulnotion/avm/common"
	"github.com/colorfulnotion/avm/log"
	"github.com/colorfulnotion/avm/types"
	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	DefaultMaxCallDepth     = 1024
	DefaultProgramCacheSize = 256
)

// Config controls the interpreter's engineering limits.
type Config struct {
	MaxCallDepth     int
	ProgramCacheSize int
	Trace            bool
}

func DefaultConfig() Config {
	return Config{
		MaxCallDepth:     DefaultMaxCallDepth,
		ProgramCacheSize: DefaultProgramCacheSize,
	}
}

// Interpreter runs contexts to completion on an explicit stack. It is not safe for concurrent use.
type Interpreter struct {
	cfg      Config
	world    WorldState
	programs *lru.Cache[common.Hash, *Program]
	frames   []*Context
	trace    *types.CallTraceNode
}

func NewInterpreter(cfg Config, world WorldState) (*Interpreter, error) {
	if cfg.MaxCallDepth <= 0 {
		cfg.MaxCallDepth = DefaultMaxCallDepth
	}
	if cfg.ProgramCacheSize <= 0 {
		cfg.ProgramCacheSize = DefaultProgramCacheSize
	}
	cache, err := lru.New[common.Hash, *Program](cfg.ProgramCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create program cache: %w", err)
	}
	return &Interpreter{cfg: cfg, world: world, programs: cache}, nil
}

// loadProgram returns the decoded program for code, reusing earlier decodings of identical bytecode.
func (vm *Interpreter) loadProgram(code []byte) *Program {
	h := common.Blake2Hash(code)
	if p, ok := vm.programs.Get(h); ok {
		return p
	}
	p := NewProgram(code)
	vm.programs.Add(h, p)
	return p
}

// CallTrace returns the call tree of the last execution.
func (vm *Interpreter) CallTrace() *types.CallTraceNode {
	return vm.trace
}

// Execute runs the contract deployed at env.Address as a top-level context.
// An exceptional halt of the top-level context is returned as an error alongside the reverted result.
func (vm *Interpreter) Execute(env *Environment, gas types.Gas) (*ContractCallResults, error) {
	code, err := vm.world.GetBytecode(env.Address)
	if err != nil {
		if !avmerrors.IsExceptionalHalt(err) {
			return nil, err
		}
		vm.trace = &types.CallTraceNode{Address: env.Address, Sender: env.Sender, IsStatic: env.IsStaticCall,
			GasAllotted: gas, GasUsed: gas, Reverted: true, HaltReason: avmerrors.GetErrorName(err)}
		res := &ContractCallResults{Reverted: true, RevertReason: err, GasUsed: gas}
		return res, fmt.Errorf("top-level call to %s: %w", env.Address, err)
	}
	return vm.ExecuteBytecode(env, code, gas)
}

// ExecuteBytecode runs code as a top-level context for env.
func (vm *Interpreter) ExecuteBytecode(env *Environment, code []byte, gas types.Gas) (*ContractCallResults, error) {
	vm.trace = &types.CallTraceNode{Address: env.Address, Sender: env.Sender, IsStatic: env.IsStaticCall, GasAllotted: gas}
	root := newContext(env, vm.loadProgram(code), gas, 0, vm.trace)
	vm.frames = append(vm.frames[:0], root)

	for {
		c := vm.frames[len(vm.frames)-1]
		if !c.halted {
			if err := vm.step(c); err != nil {
				if !avmerrors.IsExceptionalHalt(err) {
					vm.abort()
					return nil, err
				}
				log.Debug(log.AvmInterpreter, "exceptional halt", "depth", c.depth, "pc", c.pc, "address", c.Env.Address, "err", err)
				c.exceptionalHalt(err)
			}
			continue
		}

		vm.frames = vm.frames[:len(vm.frames)-1]
		res := c.result()
		recordHalt(c, res)
		if len(vm.frames) == 0 {
			if res.RevertReason != nil {
				return res, fmt.Errorf("top-level context halted exceptionally: %w", res.RevertReason)
			}
			return res, nil
		}
		vm.returnToParent(vm.frames[len(vm.frames)-1], res)
	}
}

// abort drops every frame, closing the journal level each nested frame opened.
func (vm *Interpreter) abort() {
	for i := len(vm.frames) - 1; i > 0; i-- {
		vm.world.Revert()
	}
	vm.frames = vm.frames[:0]
}

// step fetches, charges and executes one instruction.
func (vm *Interpreter) step(c *Context) error {
	instr, err := c.program.InstructionAt(c.pc)
	if err != nil {
		return err
	}
	if err := c.chargeBase(instr.Opcode); err != nil {
		return err
	}
	operands, err := resolveOperands(c.Memory, instr)
	if err != nil {
		return err
	}
	if vm.cfg.Trace {
		log.Trace(log.AvmInterpreter, instr.Name(), "depth", c.depth, "pc", c.pc, "instr", instr.String(), "gasLeft", c.gasLeft)
	}
	c.nextPc = c.pc + instr.Size
	if err := dispatchTable[instr.Opcode](vm, c, instr, operands); err != nil {
		return err
	}
	if !c.halted {
		c.pc = c.nextPc
	}
	return nil
}

// returnToParent reconciles a finished nested context into its caller.
func (vm *Interpreter) returnToParent(parent *Context, res *ContractCallResults) {
	if res.Reverted {
		vm.world.Revert()
	} else {
		vm.world.Commit()
	}
	parent.gasLeft = parent.gasLeft.Add(res.GasLeft)
	parent.nestedCallSuccess = !res.Reverted
	parent.nestedReturndata = res.Output
	log.Debug(log.AvmCalls, "nested call returned", "depth", parent.depth+1, "success", !res.Reverted,
		"returndata", len(res.Output), "refund", res.GasLeft)
}

// failNested records a nested call that could not start. The allocation is consumed.
func (vm *Interpreter) failNested(parent *Context, node *types.CallTraceNode, err error) {
	parent.nestedCallSuccess = false
	parent.nestedReturndata = nil
	node.Reverted = true
	node.HaltReason = avmerrors.GetErrorName(err)
	node.GasUsed = node.GasAllotted
	log.Debug(log.AvmCalls, "nested call failed to start", "target", node.Address, "err", err)
}

func recordHalt(c *Context, res *ContractCallResults) {
	if c.trace == nil {
		return
	}
	c.trace.GasUsed = res.GasUsed
	c.trace.Reverted = res.Reverted
	c.trace.OutputLen = len(res.Output)
	if res.RevertReason != nil {
		c.trace.HaltReason = avmerrors.GetErrorName(res.RevertReason)
	}
}

// IsOutOfGas reports whether err is (or wraps) an out-of-gas halt.
func IsOutOfGas(err error) bool {
	return errors.Is(err, avmerrors.ErrOutOfGas)
}
