package statedb

import (
	"github.com/colorfulnotion/avm/avm/gadgets"
	"github.com/colorfulnotion/avm/types"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/holiman/uint256"
)

// Domain separators prepended to every siloing hash.
const (
	SeparatorNoteHashNonce   = 2
	SeparatorUniqueNoteHash  = 3
	SeparatorSiloedNoteHash  = 4
	SeparatorOuterNullifier  = 7
	SeparatorPublicLeafIndex = 23
)

func toFr(v *uint256.Int) fr.Element {
	var e fr.Element
	b := v.Bytes32()
	e.SetBytes(b[:])
	return e
}

func fromFr(e *fr.Element) uint256.Int {
	b := e.Bytes()
	var v uint256.Int
	v.SetBytes32(b[:])
	return v
}

func hashWithSeparator(separator uint64, inputs ...uint256.Int) uint256.Int {
	elems := make([]fr.Element, 0, len(inputs)+1)
	var sep fr.Element
	sep.SetUint64(separator)
	elems = append(elems, sep)
	for i := range inputs {
		elems = append(elems, toFr(&inputs[i]))
	}
	h := gadgets.Poseidon2Hash(elems...)
	return fromFr(&h)
}

// PublicDataLeafSlot namespaces a storage slot by contract address.
func PublicDataLeafSlot(contract types.Address, slot *uint256.Int) uint256.Int {
	return hashWithSeparator(SeparatorPublicLeafIndex, contract.Uint256(), *slot)
}

func SiloNoteHash(contract types.Address, noteHash *uint256.Int) uint256.Int {
	return hashWithSeparator(SeparatorSiloedNoteHash, contract.Uint256(), *noteHash)
}

// NoteHashNonce is unique per note hash within a transaction.
func NoteHashNonce(firstNullifier *uint256.Int, noteHashIndex uint32) uint256.Int {
	return hashWithSeparator(SeparatorNoteHashNonce, *firstNullifier, *uint256.NewInt(uint64(noteHashIndex)))
}

func UniqueNoteHash(nonce, siloedNoteHash *uint256.Int) uint256.Int {
	return hashWithSeparator(SeparatorUniqueNoteHash, *nonce, *siloedNoteHash)
}

func SiloNullifier(contract types.Address, nullifier *uint256.Int) uint256.Int {
	return hashWithSeparator(SeparatorOuterNullifier, contract.Uint256(), *nullifier)
}
