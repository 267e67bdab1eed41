package avm

func handleGETENVVAR(vm *Interpreter, c *Context, instr *Instruction, ops []uint32) error {
	w, err := c.envVar(EnvironmentVariable(ops[1]))
	if err != nil {
		return err
	}
	c.Memory.Set(ops[0], w)
	return nil
}

// copyPadded returns src[start:start+size], reading field 0 past the end of src.
func copyPadded(src []Word, start, size uint32) []Word {
	out := make([]Word, size)
	for i := uint32(0); i < size; i++ {
		idx := uint64(start) + uint64(i)
		if idx < uint64(len(src)) {
			out[i] = src[idx]
		} else {
			out[i] = NewFieldUint64(0)
		}
	}
	return out
}

// copyFrom implements CALLDATACOPY and RETURNDATACOPY: copySize, start, dst.
func copyFrom(c *Context, instr *Instruction, ops []uint32, src []Word) error {
	size, err := c.Memory.GetU32(ops[0])
	if err != nil {
		return err
	}
	start, err := c.Memory.GetU32(ops[1])
	if err != nil {
		return err
	}
	if err := c.chargeDynamic(instr.Opcode, uint64(size)); err != nil {
		return err
	}
	if err := checkRange(ops[2], size); err != nil {
		return err
	}
	return c.Memory.SetSlice(ops[2], copyPadded(src, start, size))
}

func handleCALLDATACOPY(vm *Interpreter, c *Context, instr *Instruction, ops []uint32) error {
	return copyFrom(c, instr, ops, c.Env.Calldata)
}

func handleRETURNDATACOPY(vm *Interpreter, c *Context, instr *Instruction, ops []uint32) error {
	return copyFrom(c, instr, ops, c.nestedReturndata)
}

func handleSUCCESSCOPY(vm *Interpreter, c *Context, instr *Instruction, ops []uint32) error {
	c.Memory.Set(ops[0], NewU1(c.nestedCallSuccess))
	return nil
}

func handleRETURNDATASIZE(vm *Interpreter, c *Context, instr *Instruction, ops []uint32) error {
	c.Memory.Set(ops[0], NewU32(uint32(len(c.nestedReturndata))))
	return nil
}
