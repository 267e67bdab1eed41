package avm

// binaryHandler adapts an ALU function to the a, b, dst operand layout.
func binaryHandler(op func(a, b Word) (Word, error)) OpcodeHandler {
	return func(vm *Interpreter, c *Context, instr *Instruction, ops []uint32) error {
		res, err := op(c.Memory.Get(ops[0]), c.Memory.Get(ops[1]))
		if err != nil {
			return err
		}
		c.Memory.Set(ops[2], res)
		return nil
	}
}

func handleNOT(vm *Interpreter, c *Context, instr *Instruction, ops []uint32) error {
	res, err := Not(c.Memory.Get(ops[0]))
	if err != nil {
		return err
	}
	c.Memory.Set(ops[1], res)
	return nil
}

func handleCAST(vm *Interpreter, c *Context, instr *Instruction, ops []uint32) error {
	c.Memory.Set(ops[1], c.Memory.Get(ops[0]).Cast(Tag(ops[2])))
	return nil
}

func handleSET(vm *Interpreter, c *Context, instr *Instruction, ops []uint32) error {
	c.Memory.Set(ops[0], NewWord(Tag(ops[1]), &instr.Immediate))
	return nil
}

func handleMOV(vm *Interpreter, c *Context, instr *Instruction, ops []uint32) error {
	c.Memory.Set(ops[1], c.Memory.Get(ops[0]))
	return nil
}
