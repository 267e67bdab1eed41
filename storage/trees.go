package storage

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/colorfulnotion/avm/log"
	"github.com/holiman/uint256"
	"github.com/syndtr/goleveldb/leveldb"
)

// Key prefixes of the world-state trees.
const (
	prefixPublicData    = 'p'
	prefixNoteHash      = 'n'
	prefixNullifier     = 'N'
	prefixL1ToL2Message = 'm'
	prefixMeta          = 'c'
)

var (
	keyNoteHashCount      = []byte{prefixMeta, prefixNoteHash}
	keyL1ToL2MessageCount = []byte{prefixMeta, prefixL1ToL2Message}

	ErrOpenCheckpoint = errors.New("storage: flush with open checkpoints")
)

// Trees holds the public data, note hash, nullifier and L1-to-L2 message trees.
// Keys arrive already siloed. Writes are journaled per checkpoint; Flush persists them.
type Trees struct {
	state *overlay
}

// NewMemoryTrees returns trees held entirely in memory.
func NewMemoryTrees() *Trees {
	return &Trees{state: newOverlay(nil)}
}

// NewPersistentTrees returns trees backed by store. Writes stay buffered until Flush.
func NewPersistentTrees(store *PersistenceStore) *Trees {
	return &Trees{state: newOverlay(store)}
}

func slotKey(prefix byte, v *uint256.Int) []byte {
	b := v.Bytes32()
	return append([]byte{prefix}, b[:]...)
}

func indexKey(prefix byte, idx uint64) []byte {
	return binary.BigEndian.AppendUint64([]byte{prefix}, idx)
}

func decodeWord(b []byte) uint256.Int {
	var v uint256.Int
	v.SetBytes(b)
	return v
}

func encodeWord(v *uint256.Int) []byte {
	b := v.Bytes32()
	return b[:]
}

func (t *Trees) count(key []byte) (uint64, error) {
	b, ok, err := t.state.get(key)
	if err != nil || !ok {
		return 0, err
	}
	if len(b) != 8 {
		return 0, fmt.Errorf("corrupt counter %x", key)
	}
	return binary.BigEndian.Uint64(b), nil
}

func (t *Trees) appendLeaf(prefix byte, countKey []byte, leaf *uint256.Int) (uint64, error) {
	n, err := t.count(countKey)
	if err != nil {
		return 0, err
	}
	t.state.put(indexKey(prefix, n), encodeWord(leaf))
	t.state.put(countKey, binary.BigEndian.AppendUint64(nil, n+1))
	return n, nil
}

func (t *Trees) leafAt(prefix byte, idx uint64) (uint256.Int, bool, error) {
	b, ok, err := t.state.get(indexKey(prefix, idx))
	if err != nil || !ok {
		return uint256.Int{}, false, err
	}
	return decodeWord(b), true, nil
}

// ReadPublicData returns zero for a slot never written.
func (t *Trees) ReadPublicData(leafSlot *uint256.Int) (uint256.Int, error) {
	b, ok, err := t.state.get(slotKey(prefixPublicData, leafSlot))
	if err != nil || !ok {
		return uint256.Int{}, err
	}
	return decodeWord(b), nil
}

func (t *Trees) WritePublicData(leafSlot, value *uint256.Int) error {
	t.state.put(slotKey(prefixPublicData, leafSlot), encodeWord(value))
	return nil
}

func (t *Trees) NoteHashAt(leafIndex uint64) (uint256.Int, bool, error) {
	return t.leafAt(prefixNoteHash, leafIndex)
}

// AppendNoteHash appends at the next free leaf and returns its index.
func (t *Trees) AppendNoteHash(uniqueNoteHash *uint256.Int) (uint64, error) {
	return t.appendLeaf(prefixNoteHash, keyNoteHashCount, uniqueNoteHash)
}

func (t *Trees) NoteHashCount() (uint64, error) {
	return t.count(keyNoteHashCount)
}

func (t *Trees) HasNullifier(siloedNullifier *uint256.Int) (bool, error) {
	_, ok, err := t.state.get(slotKey(prefixNullifier, siloedNullifier))
	return ok, err
}

func (t *Trees) InsertNullifier(siloedNullifier *uint256.Int) error {
	t.state.put(slotKey(prefixNullifier, siloedNullifier), []byte{1})
	return nil
}

func (t *Trees) L1ToL2MessageAt(leafIndex uint64) (uint256.Int, bool, error) {
	return t.leafAt(prefixL1ToL2Message, leafIndex)
}

// AppendL1ToL2Message inserts a message leaf. Messages arrive from L1, never from public execution.
func (t *Trees) AppendL1ToL2Message(msgHash *uint256.Int) (uint64, error) {
	return t.appendLeaf(prefixL1ToL2Message, keyL1ToL2MessageCount, msgHash)
}

func (t *Trees) Checkpoint() {
	t.state.checkpoint()
}

func (t *Trees) Commit() {
	t.state.commit()
}

func (t *Trees) Revert() {
	t.state.revert()
}

// Flush writes every buffered change to the backing store in one batch.
// In-memory trees keep their state and only require that no checkpoint is open.
func (t *Trees) Flush() error {
	if t.state.depth() != 0 {
		return ErrOpenCheckpoint
	}
	if t.state.store == nil {
		return nil
	}
	batch := new(leveldb.Batch)
	for k, v := range t.state.dirty {
		batch.Put([]byte(k), v)
	}
	if err := t.state.store.Write(batch); err != nil {
		return err
	}
	log.Debug(log.Storage, "trees flushed", "keys", batch.Len())
	t.state.dirty = make(map[string][]byte)
	return nil
}
