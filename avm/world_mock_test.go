package avm

import (
	"fmt"
	"maps"
	"slices"

	"github.com/colorfulnotion/avm/avmerrors"
	"github.com/colorfulnotion/avm/types"
	"github.com/holiman/uint256"
)

type slotKey struct {
	contract types.Address
	key      uint256.Int
}

type worldSnapshot struct {
	storage    map[slotKey]uint256.Int
	nullifiers map[slotKey]bool
	noteHashes []uint256.Int
	logs       [][]uint256.Int
	messages   []uint256.Int
}

func (s worldSnapshot) clone() worldSnapshot {
	return worldSnapshot{
		storage:    maps.Clone(s.storage),
		nullifiers: maps.Clone(s.nullifiers),
		noteHashes: slices.Clone(s.noteHashes),
		logs:       slices.Clone(s.logs),
		messages:   slices.Clone(s.messages),
	}
}

// mockWorld keeps unsiloed state and snapshots it on every checkpoint.
type mockWorld struct {
	cur       worldSnapshot
	stack     []worldSnapshot
	code      map[types.Address][]byte
	instances map[types.Address]*types.ContractInstance
	l1ToL2    map[uint64]uint256.Int
	ioErr     error

	checkpoints, commits, reverts int
}

func newMockWorld() *mockWorld {
	return &mockWorld{
		cur: worldSnapshot{
			storage:    make(map[slotKey]uint256.Int),
			nullifiers: make(map[slotKey]bool),
		},
		code:      make(map[types.Address][]byte),
		instances: make(map[types.Address]*types.ContractInstance),
		l1ToL2:    make(map[uint64]uint256.Int),
	}
}

func (w *mockWorld) deploy(addr types.Address, code []byte) {
	w.code[addr] = code
	w.instances[addr] = &types.ContractInstance{Address: addr}
}

func (w *mockWorld) stored(contract types.Address, slot uint64) uint256.Int {
	return w.cur.storage[slotKey{contract, *uint256.NewInt(slot)}]
}

func staticErr(op string) error {
	return fmt.Errorf("%w: %s", avmerrors.ErrStaticCallViolation, op)
}

func (w *mockWorld) StorageRead(contract types.Address, slot *uint256.Int) (uint256.Int, error) {
	if w.ioErr != nil {
		return uint256.Int{}, w.ioErr
	}
	return w.cur.storage[slotKey{contract, *slot}], nil
}

func (w *mockWorld) StorageWrite(contract types.Address, slot, value *uint256.Int, isStatic bool) error {
	if isStatic {
		return staticErr("storage write")
	}
	w.cur.storage[slotKey{contract, *slot}] = *value
	return nil
}

func (w *mockWorld) NoteHashExists(noteHash *uint256.Int, leafIndex uint64) (bool, error) {
	return leafIndex < uint64(len(w.cur.noteHashes)) && w.cur.noteHashes[leafIndex].Eq(noteHash), nil
}

func (w *mockWorld) NoteHashAppend(contract types.Address, noteHash *uint256.Int, isStatic bool) error {
	if isStatic {
		return staticErr("note hash")
	}
	w.cur.noteHashes = append(w.cur.noteHashes, *noteHash)
	return nil
}

func (w *mockWorld) NullifierExists(contract types.Address, nullifier *uint256.Int) (bool, error) {
	return w.cur.nullifiers[slotKey{contract, *nullifier}], nil
}

func (w *mockWorld) NullifierAppend(contract types.Address, nullifier *uint256.Int, isStatic bool) error {
	if isStatic {
		return staticErr("nullifier")
	}
	k := slotKey{contract, *nullifier}
	if w.cur.nullifiers[k] {
		return avmerrors.ErrNullifierCollision
	}
	w.cur.nullifiers[k] = true
	return nil
}

func (w *mockWorld) L1ToL2MessageExists(msgHash *uint256.Int, leafIndex uint64) (bool, error) {
	v, ok := w.l1ToL2[leafIndex]
	return ok && v.Eq(msgHash), nil
}

func (w *mockWorld) PublicLogAppend(contract types.Address, fields []uint256.Int, isStatic bool) error {
	if isStatic {
		return staticErr("public log")
	}
	w.cur.logs = append(w.cur.logs, fields)
	return nil
}

func (w *mockWorld) L2ToL1MessageAppend(contract types.Address, recipient, content *uint256.Int, isStatic bool) error {
	if isStatic {
		return staticErr("l2 to l1 message")
	}
	w.cur.messages = append(w.cur.messages, *content)
	return nil
}

func (w *mockWorld) GetContractInstanceMember(address types.Address, member types.ContractInstanceMember) (uint256.Int, bool, error) {
	inst, ok := w.instances[address]
	if !ok {
		return uint256.Int{}, false, nil
	}
	return inst.Member(member), true, nil
}

func (w *mockWorld) GetBytecode(address types.Address) ([]byte, error) {
	code, ok := w.code[address]
	if !ok || len(code) == 0 {
		return nil, fmt.Errorf("%w: %s", avmerrors.ErrUnknownOrCodelessContract, address)
	}
	return code, nil
}

func (w *mockWorld) Checkpoint() {
	w.checkpoints++
	w.stack = append(w.stack, w.cur.clone())
}

func (w *mockWorld) Commit() {
	w.commits++
	w.stack = w.stack[:len(w.stack)-1]
}

func (w *mockWorld) Revert() {
	w.reverts++
	w.cur = w.stack[len(w.stack)-1]
	w.stack = w.stack[:len(w.stack)-1]
}
