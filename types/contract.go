package types

import "github.com/holiman/uint256"

// ContractInstance is the deployed instance record addressed by GETCONTRACTINSTANCE.
type ContractInstance struct {
	Address            Address     `json:"address"`
	Salt               uint256.Int `json:"salt"`
	Deployer           Address     `json:"deployer"`
	ContractClassID    uint256.Int `json:"contractClassId"`
	InitializationHash uint256.Int `json:"initializationHash"`
}

// ContractClass holds the public bytecode shared by every instance of the class.
type ContractClass struct {
	ID       uint256.Int `json:"id"`
	Bytecode []byte      `json:"bytecode"`
}

// ContractInstanceMember selects the field GETCONTRACTINSTANCE reads.
type ContractInstanceMember uint8

const (
	MemberDeployer ContractInstanceMember = iota
	MemberClassID
	MemberInitHash
	numContractInstanceMembers
)

func (m ContractInstanceMember) IsValid() bool {
	return m < numContractInstanceMembers
}

// Member returns the requested field of the instance.
func (c *ContractInstance) Member(m ContractInstanceMember) uint256.Int {
	switch m {
	case MemberDeployer:
		return c.Deployer.Uint256()
	case MemberClassID:
		return c.ContractClassID
	case MemberInitHash:
		return c.InitializationHash
	default:
		return uint256.Int{}
	}
}
