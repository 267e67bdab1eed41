package statedb

import (
	"fmt"

	"github.com/colorfulnotion/avm/avm"
	"github.com/colorfulnotion/avm/avmerrors"
	"github.com/colorfulnotion/avm/log"
	"github.com/colorfulnotion/avm/types"
	"github.com/holiman/uint256"
)

// StateManager is the world-state adapter handed to the interpreter. It silos every key by
// contract address, enforces static-call isolation and per-transaction limits, and journals
// side effects so that a reverted call leaves no trace.
type StateManager struct {
	trees     TreeStore
	contracts ContractSource
	limits    types.SideEffectLimits

	firstNullifier uint256.Int
	effects        SideEffects
	counter        uint32
	marks          []mark

	// written slots, reference-counted by the trace entries that wrote them
	writtenSlots map[uint256.Int]int
	// class ids are counted once per transaction and survive reverts
	classIDs map[uint256.Int]struct{}
}

var _ avm.WorldState = (*StateManager)(nil)

func NewStateManager(trees TreeStore, contracts ContractSource, limits types.SideEffectLimits) *StateManager {
	return &StateManager{
		trees:        trees,
		contracts:    contracts,
		limits:       limits,
		writtenSlots: make(map[uint256.Int]int),
		classIDs:     make(map[uint256.Int]struct{}),
	}
}

// BeginTransaction clears the per-transaction state. firstNullifier seeds note hash nonces.
func (s *StateManager) BeginTransaction(firstNullifier *uint256.Int) {
	s.firstNullifier = *firstNullifier
	s.effects = SideEffects{}
	s.counter = 0
	s.marks = s.marks[:0]
	s.writtenSlots = make(map[uint256.Int]int)
	s.classIDs = make(map[uint256.Int]struct{})
}

// SideEffects returns a copy of the surviving trace.
func (s *StateManager) SideEffects() SideEffects {
	return s.effects.clone()
}

// Depth is the number of open checkpoints.
func (s *StateManager) Depth() int {
	return len(s.marks)
}

func (s *StateManager) Checkpoint() {
	s.marks = append(s.marks, s.effects.mark(s.counter))
	s.trees.Checkpoint()
}

func (s *StateManager) Commit() {
	if len(s.marks) == 0 {
		log.Warn(log.StateDB, "commit without checkpoint")
		return
	}
	s.marks = s.marks[:len(s.marks)-1]
	s.trees.Commit()
}

func (s *StateManager) Revert() {
	if len(s.marks) == 0 {
		log.Warn(log.StateDB, "revert without checkpoint")
		return
	}
	m := s.marks[len(s.marks)-1]
	s.marks = s.marks[:len(s.marks)-1]
	for _, w := range s.effects.PublicDataWrites[m.publicDataWrites:] {
		if s.writtenSlots[w.LeafSlot]--; s.writtenSlots[w.LeafSlot] <= 0 {
			delete(s.writtenSlots, w.LeafSlot)
		}
	}
	log.Debug(log.StateDB, "revert", "depth", len(s.marks), "dropped", s.effects.Len()-m.total())
	s.effects.truncate(m)
	s.counter = m.counter
	s.trees.Revert()
}

func (m mark) total() int {
	return m.publicDataWrites + m.noteHashes + m.nullifiers + m.publicLogs + m.l2ToL1Messages
}

func (s *StateManager) nextCounter() uint32 {
	c := s.counter
	s.counter++
	return c
}

func ioError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", avmerrors.ErrWorldStateIO, op, err)
}

func staticViolation(op string) error {
	return fmt.Errorf("%w: %s", avmerrors.ErrStaticCallViolation, op)
}

func limitExceeded(what string, limit uint32) error {
	return fmt.Errorf("%w: %s (max %d)", avmerrors.ErrResourceLimitExceeded, what, limit)
}

func (s *StateManager) StorageRead(contract types.Address, slot *uint256.Int) (uint256.Int, error) {
	leaf := PublicDataLeafSlot(contract, slot)
	v, err := s.trees.ReadPublicData(&leaf)
	if err != nil {
		return uint256.Int{}, ioError("read public data", err)
	}
	return v, nil
}

func (s *StateManager) StorageWrite(contract types.Address, slot, value *uint256.Int, isStatic bool) error {
	if isStatic {
		return staticViolation("storage write")
	}
	leaf := PublicDataLeafSlot(contract, slot)
	if _, seen := s.writtenSlots[leaf]; !seen && uint32(len(s.writtenSlots)) >= s.limits.MaxPublicDataWrites {
		return limitExceeded("public data writes", s.limits.MaxPublicDataWrites)
	}
	if err := s.trees.WritePublicData(&leaf, value); err != nil {
		return ioError("write public data", err)
	}
	s.writtenSlots[leaf]++
	s.effects.PublicDataWrites = append(s.effects.PublicDataWrites, types.PublicDataWrite{
		LeafSlot: leaf,
		Value:    *value,
		Counter:  s.nextCounter(),
	})
	log.Debug(log.StateDB, "storage write", "contract", contract, "slot", slot.Hex(), "value", value.Hex())
	return nil
}

// NoteHashExists checks a unique note hash against the leaf at leafIndex.
func (s *StateManager) NoteHashExists(noteHash *uint256.Int, leafIndex uint64) (bool, error) {
	leaf, ok, err := s.trees.NoteHashAt(leafIndex)
	if err != nil {
		return false, ioError("read note hash", err)
	}
	return ok && leaf.Eq(noteHash), nil
}

func (s *StateManager) NoteHashAppend(contract types.Address, noteHash *uint256.Int, isStatic bool) error {
	if isStatic {
		return staticViolation("note hash emission")
	}
	if uint32(len(s.effects.NoteHashes)) >= s.limits.MaxNoteHashes {
		return limitExceeded("note hashes", s.limits.MaxNoteHashes)
	}
	siloed := SiloNoteHash(contract, noteHash)
	nonce := NoteHashNonce(&s.firstNullifier, uint32(len(s.effects.NoteHashes)))
	unique := UniqueNoteHash(&nonce, &siloed)
	idx, err := s.trees.AppendNoteHash(&unique)
	if err != nil {
		return ioError("append note hash", err)
	}
	s.effects.NoteHashes = append(s.effects.NoteHashes, types.NoteHash{
		ContractAddress: contract,
		Value:           unique,
		Counter:         s.nextCounter(),
	})
	log.Debug(log.StateDB, "note hash", "contract", contract, "leafIndex", idx, "unique", unique.Hex())
	return nil
}

func (s *StateManager) NullifierExists(contract types.Address, nullifier *uint256.Int) (bool, error) {
	siloed := SiloNullifier(contract, nullifier)
	ok, err := s.trees.HasNullifier(&siloed)
	if err != nil {
		return false, ioError("read nullifier", err)
	}
	return ok, nil
}

func (s *StateManager) NullifierAppend(contract types.Address, nullifier *uint256.Int, isStatic bool) error {
	if isStatic {
		return staticViolation("nullifier emission")
	}
	if uint32(len(s.effects.Nullifiers)) >= s.limits.MaxNullifiers {
		return limitExceeded("nullifiers", s.limits.MaxNullifiers)
	}
	siloed := SiloNullifier(contract, nullifier)
	exists, err := s.trees.HasNullifier(&siloed)
	if err != nil {
		return ioError("read nullifier", err)
	}
	if exists {
		return fmt.Errorf("%w: %s", avmerrors.ErrNullifierCollision, siloed.Hex())
	}
	if err := s.trees.InsertNullifier(&siloed); err != nil {
		return ioError("insert nullifier", err)
	}
	s.effects.Nullifiers = append(s.effects.Nullifiers, types.Nullifier{
		ContractAddress: contract,
		Value:           siloed,
		Counter:         s.nextCounter(),
	})
	log.Debug(log.StateDB, "nullifier", "contract", contract, "siloed", siloed.Hex())
	return nil
}

func (s *StateManager) L1ToL2MessageExists(msgHash *uint256.Int, leafIndex uint64) (bool, error) {
	leaf, ok, err := s.trees.L1ToL2MessageAt(leafIndex)
	if err != nil {
		return false, ioError("read l1 to l2 message", err)
	}
	return ok && leaf.Eq(msgHash), nil
}

func (s *StateManager) PublicLogAppend(contract types.Address, fields []uint256.Int, isStatic bool) error {
	if isStatic {
		return staticViolation("public log emission")
	}
	if uint32(len(fields)) > s.limits.MaxPublicLogSizeInFields {
		return limitExceeded("public log size", s.limits.MaxPublicLogSizeInFields)
	}
	if uint32(len(s.effects.PublicLogs)) >= s.limits.MaxPublicLogs {
		return limitExceeded("public logs", s.limits.MaxPublicLogs)
	}
	s.effects.PublicLogs = append(s.effects.PublicLogs, types.PublicLog{
		ContractAddress: contract,
		Fields:          append([]uint256.Int(nil), fields...),
		Counter:         s.nextCounter(),
	})
	return nil
}

func (s *StateManager) L2ToL1MessageAppend(contract types.Address, recipient, content *uint256.Int, isStatic bool) error {
	if isStatic {
		return staticViolation("l2 to l1 message")
	}
	if uint32(len(s.effects.L2ToL1Messages)) >= s.limits.MaxL2ToL1Messages {
		return limitExceeded("l2 to l1 messages", s.limits.MaxL2ToL1Messages)
	}
	s.effects.L2ToL1Messages = append(s.effects.L2ToL1Messages, types.L2ToL1Message{
		ContractAddress: contract,
		Recipient:       *recipient,
		Content:         *content,
		Counter:         s.nextCounter(),
	})
	return nil
}

func (s *StateManager) GetContractInstanceMember(address types.Address, member types.ContractInstanceMember) (uint256.Int, bool, error) {
	inst, ok, err := s.contracts.GetContractInstance(address)
	if err != nil {
		return uint256.Int{}, false, ioError("read contract instance", err)
	}
	if !ok {
		return uint256.Int{}, false, nil
	}
	return inst.Member(member), true, nil
}

// GetBytecode resolves address to its class bytecode. Every distinct class retrieved in the
// transaction counts towards MaxContractClassCalls.
func (s *StateManager) GetBytecode(address types.Address) ([]byte, error) {
	inst, ok, err := s.contracts.GetContractInstance(address)
	if err != nil {
		return nil, ioError("read contract instance", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: no instance at %s", avmerrors.ErrUnknownOrCodelessContract, address)
	}
	class, ok, err := s.contracts.GetContractClass(&inst.ContractClassID)
	if err != nil {
		return nil, ioError("read contract class", err)
	}
	if !ok || len(class.Bytecode) == 0 {
		return nil, fmt.Errorf("%w: no bytecode for class %s", avmerrors.ErrUnknownOrCodelessContract, inst.ContractClassID.Hex())
	}
	if _, seen := s.classIDs[inst.ContractClassID]; !seen {
		if uint32(len(s.classIDs)) >= s.limits.MaxContractClassCalls {
			return nil, limitExceeded("unique contract classes", s.limits.MaxContractClassCalls)
		}
		s.classIDs[inst.ContractClassID] = struct{}{}
	}
	return class.Bytecode, nil
}
