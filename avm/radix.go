package avm

import (
	"fmt"

	"github.com/colorfulnotion/avm/avmerrors"
	"github.com/holiman/uint256"
)

const (
	minRadix = 2
	maxRadix = 256
)

// ToRadixBE decomposes a field value into numLimbs big-endian digits of the given radix.
// Digits beyond numLimbs are dropped. Limbs are tagged u1 when outputBits is set, else u8.
func ToRadixBE(value Word, radix uint32, numLimbs uint32, outputBits bool) ([]Word, error) {
	if value.tag != TagFF {
		return nil, fmt.Errorf("%w: TORADIXBE source is %s", avmerrors.ErrTagMismatch, value.tag)
	}
	if radix < minRadix || radix > maxRadix {
		return nil, fmt.Errorf("%w: radix %d", avmerrors.ErrInvalidRadixConversion, radix)
	}
	if outputBits && radix != 2 {
		return nil, fmt.Errorf("%w: bit output requires radix 2, got %d", avmerrors.ErrInvalidRadixConversion, radix)
	}
	if numLimbs == 0 && !value.IsZero() {
		return nil, fmt.Errorf("%w: zero limbs for a nonzero value", avmerrors.ErrInvalidRadixConversion)
	}

	limbTag := TagU8
	if outputBits {
		limbTag = TagU1
	}
	out := make([]Word, numLimbs)
	rem := value.value
	r := uint256.NewInt(uint64(radix))
	var quot, digit uint256.Int
	for i := int(numLimbs) - 1; i >= 0; i-- {
		if rem.IsZero() {
			out[i] = NewWordUint64(limbTag, 0)
			continue
		}
		quot.DivMod(&rem, r, &digit)
		rem = quot
		out[i] = NewWord(limbTag, &digit)
	}
	return out, nil
}
