package avm

import (
	"fmt"

	"github.com/colorfulnotion/avm/avmerrors"
)

func init() {
	initDispatchTable()
}

// OpcodeHandler executes one decoded instruction. ops holds the resolved operands.
type OpcodeHandler func(vm *Interpreter, c *Context, instr *Instruction, ops []uint32) error

var dispatchTable [256]OpcodeHandler

func handleInvalid(vm *Interpreter, c *Context, instr *Instruction, ops []uint32) error {
	return fmt.Errorf("%w: 0x%02x", avmerrors.ErrInvalidOpcode, instr.Opcode)
}

func initDispatchTable() {
	for i := range dispatchTable {
		dispatchTable[i] = handleInvalid
	}

	// Compute
	for _, op := range []byte{ADD_8, ADD_16} {
		dispatchTable[op] = binaryHandler(Add)
	}
	for _, op := range []byte{SUB_8, SUB_16} {
		dispatchTable[op] = binaryHandler(Sub)
	}
	for _, op := range []byte{MUL_8, MUL_16} {
		dispatchTable[op] = binaryHandler(Mul)
	}
	for _, op := range []byte{DIV_8, DIV_16} {
		dispatchTable[op] = binaryHandler(Div)
	}
	for _, op := range []byte{FDIV_8, FDIV_16} {
		dispatchTable[op] = binaryHandler(FDiv)
	}
	for _, op := range []byte{EQ_8, EQ_16} {
		dispatchTable[op] = binaryHandler(Eq)
	}
	for _, op := range []byte{LT_8, LT_16} {
		dispatchTable[op] = binaryHandler(Lt)
	}
	for _, op := range []byte{LTE_8, LTE_16} {
		dispatchTable[op] = binaryHandler(Lte)
	}
	for _, op := range []byte{AND_8, AND_16} {
		dispatchTable[op] = binaryHandler(And)
	}
	for _, op := range []byte{OR_8, OR_16} {
		dispatchTable[op] = binaryHandler(Or)
	}
	for _, op := range []byte{XOR_8, XOR_16} {
		dispatchTable[op] = binaryHandler(Xor)
	}
	for _, op := range []byte{SHL_8, SHL_16} {
		dispatchTable[op] = binaryHandler(Shl)
	}
	for _, op := range []byte{SHR_8, SHR_16} {
		dispatchTable[op] = binaryHandler(Shr)
	}
	dispatchTable[NOT_8] = handleNOT
	dispatchTable[NOT_16] = handleNOT
	dispatchTable[CAST_8] = handleCAST
	dispatchTable[CAST_16] = handleCAST

	// Execution Environment
	dispatchTable[GETENVVAR_16] = handleGETENVVAR
	dispatchTable[CALLDATACOPY] = handleCALLDATACOPY
	dispatchTable[SUCCESSCOPY] = handleSUCCESSCOPY
	dispatchTable[RETURNDATASIZE] = handleRETURNDATASIZE
	dispatchTable[RETURNDATACOPY] = handleRETURNDATACOPY

	// Control Flow
	dispatchTable[JUMP_32] = handleJUMP
	dispatchTable[JUMPI_32] = handleJUMPI
	dispatchTable[INTERNALCALL] = handleINTERNALCALL
	dispatchTable[INTERNALRETURN] = handleINTERNALRETURN

	// Memory
	for _, op := range []byte{SET_8, SET_16, SET_32, SET_64, SET_128, SET_FF} {
		dispatchTable[op] = handleSET
	}
	dispatchTable[MOV_8] = handleMOV
	dispatchTable[MOV_16] = handleMOV

	// World State
	dispatchTable[SLOAD] = handleSLOAD
	dispatchTable[SSTORE] = handleSSTORE
	dispatchTable[NOTEHASHEXISTS] = handleNOTEHASHEXISTS
	dispatchTable[EMITNOTEHASH] = handleEMITNOTEHASH
	dispatchTable[NULLIFIEREXISTS] = handleNULLIFIEREXISTS
	dispatchTable[EMITNULLIFIER] = handleEMITNULLIFIER
	dispatchTable[L1TOL2MSGEXISTS] = handleL1TOL2MSGEXISTS
	dispatchTable[GETCONTRACTINSTANCE] = handleGETCONTRACTINSTANCE
	dispatchTable[EMITPUBLICLOG] = handleEMITPUBLICLOG
	dispatchTable[SENDL2TOL1MSG] = handleSENDL2TOL1MSG

	// External Calls
	dispatchTable[CALL] = handleCALL
	dispatchTable[STATICCALL] = handleSTATICCALL
	dispatchTable[RETURN] = handleRETURN
	dispatchTable[REVERT_8] = handleREVERT
	dispatchTable[REVERT_16] = handleREVERT

	dispatchTable[DEBUGLOG] = handleDEBUGLOG

	// Gadgets
	dispatchTable[POSEIDON2PERM] = handlePOSEIDON2PERM
	dispatchTable[SHA256COMPRESSION] = handleSHA256COMPRESSION
	dispatchTable[KECCAKF1600] = handleKECCAKF1600
	dispatchTable[ECADD] = handleECADD
	dispatchTable[TORADIXBE] = handleTORADIXBE
}
