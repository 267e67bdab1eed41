package types

import "github.com/holiman/uint256"

// SideEffectLimits bound the side effects a single transaction may emit.
type SideEffectLimits struct {
	MaxNoteHashes            uint32 `json:"maxNoteHashes"`
	MaxNullifiers            uint32 `json:"maxNullifiers"`
	MaxL2ToL1Messages        uint32 `json:"maxL2ToL1Messages"`
	MaxPublicLogs            uint32 `json:"maxPublicLogs"`
	MaxPublicDataWrites      uint32 `json:"maxPublicDataWrites"`
	MaxContractClassCalls    uint32 `json:"maxContractClassCalls"`
	MaxPublicLogSizeInFields uint32 `json:"maxPublicLogSizeInFields"`
}

func DefaultSideEffectLimits() SideEffectLimits {
	return SideEffectLimits{
		MaxNoteHashes:            64,
		MaxNullifiers:            64,
		MaxL2ToL1Messages:        8,
		MaxPublicLogs:            8,
		MaxPublicDataWrites:      64,
		MaxContractClassCalls:    21,
		MaxPublicLogSizeInFields: 13,
	}
}

type PublicDataWrite struct {
	LeafSlot uint256.Int `json:"leafSlot"`
	Value    uint256.Int `json:"value"`
	Counter  uint32      `json:"counter"`
}

type NoteHash struct {
	ContractAddress Address     `json:"contractAddress"`
	Value           uint256.Int `json:"value"`
	Counter         uint32      `json:"counter"`
}

type Nullifier struct {
	ContractAddress Address     `json:"contractAddress"`
	Value           uint256.Int `json:"value"`
	Counter         uint32      `json:"counter"`
}

type PublicLog struct {
	ContractAddress Address       `json:"contractAddress"`
	Fields          []uint256.Int `json:"fields"`
	Counter         uint32        `json:"counter"`
}

type L2ToL1Message struct {
	ContractAddress Address     `json:"contractAddress"`
	Recipient       uint256.Int `json:"recipient"`
	Content         uint256.Int `json:"content"`
	Counter         uint32      `json:"counter"`
}
