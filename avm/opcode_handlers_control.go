package avm

import (
	"fmt"

	"github.com/colorfulnotion/avm/avmerrors"
)

func handleJUMP(vm *Interpreter, c *Context, instr *Instruction, ops []uint32) error {
	c.nextPc = ops[0]
	return nil
}

// handleJUMPI branches on any nonzero condition regardless of its tag.
func handleJUMPI(vm *Interpreter, c *Context, instr *Instruction, ops []uint32) error {
	if !c.Memory.Get(ops[0]).IsZero() {
		c.nextPc = ops[1]
	}
	return nil
}

func handleINTERNALCALL(vm *Interpreter, c *Context, instr *Instruction, ops []uint32) error {
	c.internalCallStack = append(c.internalCallStack, c.nextPc)
	c.nextPc = ops[0]
	return nil
}

func handleINTERNALRETURN(vm *Interpreter, c *Context, instr *Instruction, ops []uint32) error {
	n := len(c.internalCallStack)
	if n == 0 {
		return fmt.Errorf("%w: pc=%d", avmerrors.ErrInternalStackUnderflow, c.pc)
	}
	c.nextPc = c.internalCallStack[n-1]
	c.internalCallStack = c.internalCallStack[:n-1]
	return nil
}

// haltWith reads retSize words at retOffset and stops the context.
func haltWith(c *Context, instr *Instruction, ops []uint32, reverted bool) error {
	size, err := c.Memory.GetU32(ops[0])
	if err != nil {
		return err
	}
	if err := c.chargeDynamic(instr.Opcode, uint64(size)); err != nil {
		return err
	}
	output, err := c.Memory.GetSlice(ops[1], size)
	if err != nil {
		return err
	}
	c.halt(output, reverted)
	return nil
}

func handleRETURN(vm *Interpreter, c *Context, instr *Instruction, ops []uint32) error {
	return haltWith(c, instr, ops, false)
}

func handleREVERT(vm *Interpreter, c *Context, instr *Instruction, ops []uint32) error {
	return haltWith(c, instr, ops, true)
}
