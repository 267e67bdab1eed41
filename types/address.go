package types

import (
	"encoding/json"

	"github.com/colorfulnotion/avm/common"
	"github.com/holiman/uint256"
)

// Address identifies a deployed contract. It is a field element stored big-endian.
type Address [32]byte

func AddressFromUint256(v *uint256.Int) Address {
	return Address(v.Bytes32())
}

func AddressFromUint64(v uint64) Address {
	return AddressFromUint256(uint256.NewInt(v))
}

func HexToAddress(s string) Address {
	return Address(common.HexToHash(s))
}

func (a Address) Uint256() uint256.Int {
	var v uint256.Int
	v.SetBytes32(a[:])
	return v
}

func (a Address) Hash() common.Hash {
	return common.Hash(a)
}

func (a Address) Hex() string {
	return common.Hash(a).Hex()
}

func (a Address) String() string {
	return common.Hash(a).String_short()
}

func (a Address) IsZero() bool {
	return a == Address{}
}

func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Hex())
}

func (a *Address) UnmarshalJSON(data []byte) error {
	var h common.Hash
	if err := h.UnmarshalJSON(data); err != nil {
		return err
	}
	*a = Address(h)
	return nil
}
