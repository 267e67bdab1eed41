package avm

import (
	"fmt"
	"strings"

	"github.com/colorfulnotion/avm/avmerrors"
	"github.com/colorfulnotion/avm/log"
	"github.com/colorfulnotion/avm/types"
	"github.com/holiman/uint256"
)

func (c *Context) fieldAt(offset uint32) (uint256.Int, error) {
	w, err := c.Memory.GetAs(offset, TagFF)
	if err != nil {
		return uint256.Int{}, err
	}
	return w.value, nil
}

func (c *Context) u64At(offset uint32) (uint64, error) {
	w, err := c.Memory.GetAs(offset, TagU64)
	if err != nil {
		return 0, err
	}
	return w.Uint64(), nil
}

func handleSLOAD(vm *Interpreter, c *Context, instr *Instruction, ops []uint32) error {
	slot, err := c.fieldAt(ops[0])
	if err != nil {
		return err
	}
	value, err := vm.world.StorageRead(c.Env.Address, &slot)
	if err != nil {
		return err
	}
	c.Memory.Set(ops[1], NewField(&value))
	return nil
}

func handleSSTORE(vm *Interpreter, c *Context, instr *Instruction, ops []uint32) error {
	value := c.Memory.Get(ops[0]).Value()
	slot, err := c.fieldAt(ops[1])
	if err != nil {
		return err
	}
	return vm.world.StorageWrite(c.Env.Address, &slot, &value, c.Env.IsStaticCall)
}

func handleNOTEHASHEXISTS(vm *Interpreter, c *Context, instr *Instruction, ops []uint32) error {
	noteHash, err := c.fieldAt(ops[0])
	if err != nil {
		return err
	}
	leafIndex, err := c.u64At(ops[1])
	if err != nil {
		return err
	}
	exists, err := vm.world.NoteHashExists(&noteHash, leafIndex)
	if err != nil {
		return err
	}
	c.Memory.Set(ops[2], NewU1(exists))
	return nil
}

func handleEMITNOTEHASH(vm *Interpreter, c *Context, instr *Instruction, ops []uint32) error {
	noteHash, err := c.fieldAt(ops[0])
	if err != nil {
		return err
	}
	return vm.world.NoteHashAppend(c.Env.Address, &noteHash, c.Env.IsStaticCall)
}

func handleNULLIFIEREXISTS(vm *Interpreter, c *Context, instr *Instruction, ops []uint32) error {
	nullifier, err := c.fieldAt(ops[0])
	if err != nil {
		return err
	}
	address, err := c.fieldAt(ops[1])
	if err != nil {
		return err
	}
	exists, err := vm.world.NullifierExists(types.AddressFromUint256(&address), &nullifier)
	if err != nil {
		return err
	}
	c.Memory.Set(ops[2], NewU1(exists))
	return nil
}

func handleEMITNULLIFIER(vm *Interpreter, c *Context, instr *Instruction, ops []uint32) error {
	nullifier, err := c.fieldAt(ops[0])
	if err != nil {
		return err
	}
	return vm.world.NullifierAppend(c.Env.Address, &nullifier, c.Env.IsStaticCall)
}

func handleL1TOL2MSGEXISTS(vm *Interpreter, c *Context, instr *Instruction, ops []uint32) error {
	msgHash, err := c.fieldAt(ops[0])
	if err != nil {
		return err
	}
	leafIndex, err := c.u64At(ops[1])
	if err != nil {
		return err
	}
	exists, err := vm.world.L1ToL2MessageExists(&msgHash, leafIndex)
	if err != nil {
		return err
	}
	c.Memory.Set(ops[2], NewU1(exists))
	return nil
}

func handleGETCONTRACTINSTANCE(vm *Interpreter, c *Context, instr *Instruction, ops []uint32) error {
	member := types.ContractInstanceMember(ops[3])
	if !member.IsValid() {
		return fmt.Errorf("%w: %d", avmerrors.ErrInvalidContractMember, ops[3])
	}
	address, err := c.fieldAt(ops[0])
	if err != nil {
		return err
	}
	value, exists, err := vm.world.GetContractInstanceMember(types.AddressFromUint256(&address), member)
	if err != nil {
		return err
	}
	c.Memory.Set(ops[1], NewField(&value))
	c.Memory.Set(ops[2], NewU1(exists))
	return nil
}

func handleEMITPUBLICLOG(vm *Interpreter, c *Context, instr *Instruction, ops []uint32) error {
	size, err := c.Memory.GetU32(ops[0])
	if err != nil {
		return err
	}
	if err := c.chargeDynamic(instr.Opcode, uint64(size)); err != nil {
		return err
	}
	words, err := c.Memory.GetSlice(ops[1], size)
	if err != nil {
		return err
	}
	fields := make([]uint256.Int, len(words))
	for i, w := range words {
		fields[i] = w.value
	}
	return vm.world.PublicLogAppend(c.Env.Address, fields, c.Env.IsStaticCall)
}

func handleSENDL2TOL1MSG(vm *Interpreter, c *Context, instr *Instruction, ops []uint32) error {
	recipient, err := c.fieldAt(ops[0])
	if err != nil {
		return err
	}
	content, err := c.fieldAt(ops[1])
	if err != nil {
		return err
	}
	return vm.world.L2ToL1MessageAppend(c.Env.Address, &recipient, &content, c.Env.IsStaticCall)
}

// handleDEBUGLOG prints a message of u8 characters followed by a list of fields.
// Both the message and the fields are paid for per word.
func handleDEBUGLOG(vm *Interpreter, c *Context, instr *Instruction, ops []uint32) error {
	fieldsSize, err := c.Memory.GetU32(ops[2])
	if err != nil {
		return err
	}
	if err := c.chargeDynamic(instr.Opcode, uint64(ops[3])+uint64(fieldsSize)); err != nil {
		return err
	}
	msg, err := c.Memory.GetSlice(ops[0], ops[3])
	if err != nil {
		return err
	}
	fields, err := c.Memory.GetSlice(ops[1], fieldsSize)
	if err != nil {
		return err
	}
	var sb strings.Builder
	for _, w := range msg {
		sb.WriteByte(byte(w.Uint64()))
	}
	rendered := make([]string, len(fields))
	for i, f := range fields {
		v := f.Value()
		rendered[i] = v.Hex()
	}
	log.Debug(log.AvmDebugLog, sb.String(), "contract", c.Env.Address, "fields", rendered)
	return nil
}
