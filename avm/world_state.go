package avm

import (
	"github.com/colorfulnotion/avm/types"
	"github.com/holiman/uint256"
)

// WorldState is the adapter the interpreter mutates. Mutating calls receive the static flag
// of the executing context and fail with StaticCallViolation when it is set.
// Errors wrapping an exceptional-halt sentinel are contained at the context boundary;
// any other error aborts execution.
type WorldState interface {
	StorageRead(contract types.Address, slot *uint256.Int) (uint256.Int, error)
	StorageWrite(contract types.Address, slot, value *uint256.Int, isStatic bool) error

	NoteHashExists(noteHash *uint256.Int, leafIndex uint64) (bool, error)
	NoteHashAppend(contract types.Address, noteHash *uint256.Int, isStatic bool) error

	NullifierExists(contract types.Address, nullifier *uint256.Int) (bool, error)
	NullifierAppend(contract types.Address, nullifier *uint256.Int, isStatic bool) error

	L1ToL2MessageExists(msgHash *uint256.Int, leafIndex uint64) (bool, error)

	PublicLogAppend(contract types.Address, fields []uint256.Int, isStatic bool) error
	L2ToL1MessageAppend(contract types.Address, recipient, content *uint256.Int, isStatic bool) error

	GetContractInstanceMember(address types.Address, member types.ContractInstanceMember) (uint256.Int, bool, error)
	// GetBytecode returns the code of a deployed contract, counting its class towards the
	// per-transaction class limit.
	GetBytecode(address types.Address) ([]byte, error)

	// Checkpoint opens a journal level for a nested call. Commit folds it into the parent,
	// Revert discards every change made since the matching Checkpoint.
	Checkpoint()
	Commit()
	Revert()
}
