package statedb

import (
	"github.com/colorfulnotion/avm/types"
	"github.com/holiman/uint256"
)

// TreeStore is the persistent tree collaborator. Every key it sees is already siloed.
// Checkpoint, Commit and Revert nest: Revert discards every write since the matching Checkpoint.
type TreeStore interface {
	ReadPublicData(leafSlot *uint256.Int) (uint256.Int, error)
	WritePublicData(leafSlot, value *uint256.Int) error

	NoteHashAt(leafIndex uint64) (uint256.Int, bool, error)
	AppendNoteHash(uniqueNoteHash *uint256.Int) (uint64, error)

	HasNullifier(siloedNullifier *uint256.Int) (bool, error)
	InsertNullifier(siloedNullifier *uint256.Int) error

	L1ToL2MessageAt(leafIndex uint64) (uint256.Int, bool, error)

	Checkpoint()
	Commit()
	Revert()
}

// ContractSource resolves deployed instances and their classes.
type ContractSource interface {
	GetContractInstance(address types.Address) (*types.ContractInstance, bool, error)
	GetContractClass(classID *uint256.Int) (*types.ContractClass, bool, error)
}
