package types

import "github.com/holiman/uint256"

// GasFees are u128 prices per unit of gas.
type GasFees struct {
	FeePerL2Gas uint256.Int `json:"feePerL2Gas"`
	FeePerDAGas uint256.Int `json:"feePerDaGas"`
}

// GlobalVariables are the block level values every context inherits.
type GlobalVariables struct {
	ChainID     uint256.Int `json:"chainId"`
	Version     uint256.Int `json:"version"`
	BlockNumber uint32      `json:"blockNumber"`
	Timestamp   uint64      `json:"timestamp"`
	GasFees     GasFees     `json:"gasFees"`
}

func DefaultGlobalVariables() GlobalVariables {
	g := GlobalVariables{BlockNumber: 1, Timestamp: 1}
	g.ChainID.SetUint64(1)
	g.Version.SetUint64(1)
	return g
}
