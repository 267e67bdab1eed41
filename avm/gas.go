package avm

import (
	"fmt"

	"github.com/colorfulnotion/avm/avmerrors"
	"github.com/colorfulnotion/avm/types"
)

// GasCost is the static and per-unit price of an opcode in both gas dimensions.
type GasCost struct {
	BaseL2 uint32
	BaseDA uint32
	DynL2  uint32
	DynDA  uint32
}

const (
	gasSimple        = 9
	gasArithHeavy    = 27
	gasPerCopiedWord = 3
)

var gasTable [256]GasCost

func init() {
	initGasTable()
}

func initGasTable() {
	for _, op := range []byte{
		ADD_8, ADD_16, SUB_8, SUB_16,
		EQ_8, EQ_16, LT_8, LT_16, LTE_8, LTE_16,
		AND_8, AND_16, OR_8, OR_16, XOR_8, XOR_16, NOT_8, NOT_16, SHL_8, SHL_16, SHR_8, SHR_16,
		CAST_8, CAST_16,
		GETENVVAR_16, SUCCESSCOPY, RETURNDATASIZE,
		JUMP_32, JUMPI_32, INTERNALCALL, INTERNALRETURN,
		SET_8, SET_16, SET_32, SET_64, SET_128, SET_FF, MOV_8, MOV_16,
	} {
		gasTable[op] = GasCost{BaseL2: gasSimple}
	}
	for _, op := range []byte{MUL_8, MUL_16, DIV_8, DIV_16, FDIV_8, FDIV_16} {
		gasTable[op] = GasCost{BaseL2: gasArithHeavy}
	}
	gasTable[CALLDATACOPY] = GasCost{BaseL2: gasArithHeavy, DynL2: gasPerCopiedWord}
	gasTable[RETURNDATACOPY] = GasCost{BaseL2: gasArithHeavy, DynL2: gasPerCopiedWord}

	gasTable[SLOAD] = GasCost{BaseL2: 129}
	gasTable[SSTORE] = GasCost{BaseL2: 1657, BaseDA: 512}
	gasTable[NOTEHASHEXISTS] = GasCost{BaseL2: 126}
	gasTable[EMITNOTEHASH] = GasCost{BaseL2: 1285, BaseDA: 512}
	gasTable[NULLIFIEREXISTS] = GasCost{BaseL2: 132}
	gasTable[EMITNULLIFIER] = GasCost{BaseL2: 1540, BaseDA: 512}
	gasTable[L1TOL2MSGEXISTS] = GasCost{BaseL2: 108}
	gasTable[GETCONTRACTINSTANCE] = GasCost{BaseL2: 1527}
	gasTable[EMITPUBLICLOG] = GasCost{BaseL2: 15, BaseDA: 1024, DynL2: 3, DynDA: 32}
	gasTable[SENDL2TOL1MSG] = GasCost{BaseL2: 209, BaseDA: 512}
	gasTable[DEBUGLOG] = GasCost{BaseL2: gasSimple, DynL2: gasPerCopiedWord}

	gasTable[CALL] = GasCost{BaseL2: 9936, DynL2: gasPerCopiedWord}
	gasTable[STATICCALL] = GasCost{BaseL2: 9936, DynL2: gasPerCopiedWord}
	gasTable[RETURN] = GasCost{BaseL2: 28, DynL2: gasPerCopiedWord}
	gasTable[REVERT_8] = GasCost{BaseL2: 28, DynL2: gasPerCopiedWord}
	gasTable[REVERT_16] = GasCost{BaseL2: 28, DynL2: gasPerCopiedWord}

	gasTable[POSEIDON2PERM] = GasCost{BaseL2: 360}
	gasTable[SHA256COMPRESSION] = GasCost{BaseL2: 12288}
	gasTable[KECCAKF1600] = GasCost{BaseL2: 58176}
	gasTable[ECADD] = GasCost{BaseL2: 270}
	gasTable[TORADIXBE] = GasCost{BaseL2: 24, DynL2: gasPerCopiedWord}
}

// GasCostOf returns the pricing of an opcode.
func GasCostOf(opcode byte) GasCost {
	return gasTable[opcode]
}

// consumeGas deducts l2/da from the remaining budget or fails without deducting.
func (c *Context) consumeGas(l2, da uint64) error {
	if l2 > uint64(c.gasLeft.L2) || da > uint64(c.gasLeft.DA) {
		return fmt.Errorf("%w: need {l2:%d da:%d}, have %v", avmerrors.ErrOutOfGas, l2, da, c.gasLeft)
	}
	c.gasLeft.L2 -= uint32(l2)
	c.gasLeft.DA -= uint32(da)
	c.gasCharged.L2 += uint32(l2)
	c.gasCharged.DA += uint32(da)
	return nil
}

func (c *Context) chargeBase(opcode byte) error {
	cost := gasTable[opcode]
	return c.consumeGas(uint64(cost.BaseL2), uint64(cost.BaseDA))
}

// chargeDynamic charges the per-unit cost of opcode for units items.
func (c *Context) chargeDynamic(opcode byte, units uint64) error {
	cost := gasTable[opcode]
	if cost.DynL2 == 0 && cost.DynDA == 0 {
		return nil
	}
	return c.consumeGas(uint64(cost.DynL2)*units, uint64(cost.DynDA)*units)
}

// GasCharged is the sum of base and dynamic costs of every executed instruction.
func (c *Context) GasCharged() types.Gas {
	return c.gasCharged
}

func (c *Context) GasLeft() types.Gas {
	return c.gasLeft
}
