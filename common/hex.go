package common

import (
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
)

func Bytes2Hex(d []byte) string {
	return hexutil.Encode(d)
}

// FromHex decodes a hex string with or without the 0x prefix.
func FromHex(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		s = "0x" + s
	}
	if len(s)%2 == 1 {
		s = "0x0" + s[2:]
	}
	return hexutil.Decode(s)
}

// LoadBytecode accepts either a hex literal or a path to a file holding hex or raw bytes.
func LoadBytecode(arg string) ([]byte, error) {
	if b, err := FromHex(arg); err == nil {
		return b, nil
	}
	raw, err := os.ReadFile(arg)
	if err != nil {
		return nil, fmt.Errorf("bytecode %q is neither hex nor a readable file: %w", arg, err)
	}
	if b, err := FromHex(string(raw)); err == nil {
		return b, nil
	}
	return raw, nil
}

// ParseFieldList parses a comma separated list of decimal or 0x-prefixed values.
func ParseFieldList(s string) ([]uint256.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]uint256.Int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		b, ok := new(big.Int).SetString(p, 0)
		if !ok || b.Sign() < 0 {
			return nil, fmt.Errorf("invalid value %q", p)
		}
		v, overflow := uint256.FromBig(b)
		if overflow {
			return nil, fmt.Errorf("value %q exceeds 256 bits", p)
		}
		out = append(out, *v)
	}
	return out, nil
}
