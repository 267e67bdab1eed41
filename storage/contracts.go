package storage

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/colorfulnotion/avm/common"
	"github.com/colorfulnotion/avm/log"
	"github.com/colorfulnotion/avm/types"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/holiman/uint256"
)

const (
	prefixInstance = 'i'
	prefixClass    = 'k'
)

// ContractStore holds deployed instances and classes. With a backing store every
// registration is also persisted and lookups fall through to it.
type ContractStore struct {
	mu        sync.RWMutex
	store     *PersistenceStore
	instances map[types.Address]*types.ContractInstance
	classes   map[uint256.Int]*types.ContractClass
}

func NewContractStore(store *PersistenceStore) *ContractStore {
	return &ContractStore{
		store:     store,
		instances: make(map[types.Address]*types.ContractInstance),
		classes:   make(map[uint256.Int]*types.ContractClass),
	}
}

// ClassID is keccak256(bytecode) reduced into the field.
func ClassID(bytecode []byte) uint256.Int {
	h := common.Keccak256(bytecode)
	return reduce(h.Bytes())
}

func reduce(b []byte) uint256.Int {
	var e fr.Element
	e.SetBytes(b)
	out := e.Bytes()
	var v uint256.Int
	v.SetBytes32(out[:])
	return v
}

// DeriveAddress binds an instance address to its deployer, salt and class.
func DeriveAddress(deployer types.Address, salt, classID *uint256.Int) types.Address {
	buf := make([]byte, 0, 96)
	buf = append(buf, deployer[:]...)
	s, c := salt.Bytes32(), classID.Bytes32()
	buf = append(buf, s[:]...)
	buf = append(buf, c[:]...)
	h := common.Keccak256(buf)
	v := reduce(h.Bytes())
	return types.AddressFromUint256(&v)
}

// AddContract registers instance with its class bytecode. The class id is derived from the
// bytecode and overwrites instance.ContractClassID.
func (cs *ContractStore) AddContract(instance *types.ContractInstance, bytecode []byte) (*types.ContractClass, error) {
	class := &types.ContractClass{ID: ClassID(bytecode), Bytecode: append([]byte(nil), bytecode...)}
	inst := *instance
	inst.ContractClassID = class.ID

	cs.mu.Lock()
	defer cs.mu.Unlock()
	if cs.store != nil {
		if err := cs.persist(prefixClass, class.ID.Bytes32(), class); err != nil {
			return nil, err
		}
		if err := cs.persist(prefixInstance, inst.Address, &inst); err != nil {
			return nil, err
		}
	}
	cs.classes[class.ID] = class
	cs.instances[inst.Address] = &inst
	log.Debug(log.Storage, "contract added", "address", inst.Address, "class", class.ID.Hex(), "size", len(bytecode))
	return class, nil
}

// Deploy derives the address from deployer and salt and registers the contract.
func (cs *ContractStore) Deploy(deployer types.Address, salt *uint256.Int, bytecode []byte) (*types.ContractInstance, error) {
	classID := ClassID(bytecode)
	inst := &types.ContractInstance{
		Address:         DeriveAddress(deployer, salt, &classID),
		Salt:            *salt,
		Deployer:        deployer,
		ContractClassID: classID,
	}
	if _, err := cs.AddContract(inst, bytecode); err != nil {
		return nil, err
	}
	return inst, nil
}

func (cs *ContractStore) persist(prefix byte, id [32]byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode contract record: %w", err)
	}
	return cs.store.Put(append([]byte{prefix}, id[:]...), data)
}

func (cs *ContractStore) load(prefix byte, id [32]byte, v any) (bool, error) {
	if cs.store == nil {
		return false, nil
	}
	data, ok, err := cs.store.Get(append([]byte{prefix}, id[:]...))
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode contract record %x: %w", id, err)
	}
	return true, nil
}

func (cs *ContractStore) GetContractInstance(address types.Address) (*types.ContractInstance, bool, error) {
	cs.mu.RLock()
	inst, ok := cs.instances[address]
	cs.mu.RUnlock()
	if ok {
		return inst, true, nil
	}
	inst = new(types.ContractInstance)
	found, err := cs.load(prefixInstance, address, inst)
	if err != nil || !found {
		return nil, false, err
	}
	cs.mu.Lock()
	cs.instances[address] = inst
	cs.mu.Unlock()
	return inst, true, nil
}

func (cs *ContractStore) GetContractClass(classID *uint256.Int) (*types.ContractClass, bool, error) {
	cs.mu.RLock()
	class, ok := cs.classes[*classID]
	cs.mu.RUnlock()
	if ok {
		return class, true, nil
	}
	class = new(types.ContractClass)
	found, err := cs.load(prefixClass, classID.Bytes32(), class)
	if err != nil || !found {
		return nil, false, err
	}
	cs.mu.Lock()
	cs.classes[*classID] = class
	cs.mu.Unlock()
	return class, true, nil
}
