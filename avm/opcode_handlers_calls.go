package avm

import (
	"github.com/colorfulnotion/avm/avmerrors"
	"github.com/colorfulnotion/avm/log"
	"github.com/colorfulnotion/avm/types"
)

func handleCALL(vm *Interpreter, c *Context, instr *Instruction, ops []uint32) error {
	return vm.nestedCall(c, instr, ops, false)
}

func handleSTATICCALL(vm *Interpreter, c *Context, instr *Instruction, ops []uint32) error {
	return vm.nestedCall(c, instr, ops, true)
}

// nestedCall carves the child's gas out of the caller and pushes a new frame.
// Operands: l2Gas, daGas, address, argsSize, args.
func (vm *Interpreter) nestedCall(c *Context, instr *Instruction, ops []uint32, static bool) error {
	l2, err := c.Memory.GetU32(ops[0])
	if err != nil {
		return err
	}
	da, err := c.Memory.GetU32(ops[1])
	if err != nil {
		return err
	}
	addr, err := c.fieldAt(ops[2])
	if err != nil {
		return err
	}
	argsSize, err := c.Memory.GetU32(ops[3])
	if err != nil {
		return err
	}
	if err := c.chargeDynamic(instr.Opcode, uint64(argsSize)); err != nil {
		return err
	}
	args, err := c.Memory.GetSlice(ops[4], argsSize)
	if err != nil {
		return err
	}
	calldata := make([]Word, len(args))
	for i, w := range args {
		calldata[i] = w.Cast(TagFF)
	}

	allocated := types.NewGas(l2, da).Min(c.gasLeft)
	c.gasLeft = c.gasLeft.Sub(allocated)
	target := types.AddressFromUint256(&addr)
	env := c.Env.nested(target, calldata, static)

	node := c.trace.AddChild(&types.CallTraceNode{
		Address:     target,
		Sender:      c.Env.Address,
		IsStatic:    env.IsStaticCall,
		GasAllotted: allocated,
	})
	log.Debug(log.AvmCalls, instr.Name(), "depth", c.depth, "target", target, "gas", allocated, "args", len(calldata))

	if len(vm.frames) >= vm.cfg.MaxCallDepth {
		vm.failNested(c, node, avmerrors.ErrCallDepthExceeded)
		return nil
	}

	vm.world.Checkpoint()
	code, err := vm.world.GetBytecode(target)
	if err != nil {
		vm.world.Revert()
		if !avmerrors.IsExceptionalHalt(err) {
			return err
		}
		vm.failNested(c, node, err)
		return nil
	}
	child := newContext(env, vm.loadProgram(code), allocated, c.depth+1, node)
	vm.frames = append(vm.frames, child)
	return nil
}
