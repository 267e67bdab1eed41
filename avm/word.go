package avm

import (
	"fmt"

	"github.com/colorfulnotion/avm/avmerrors"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/holiman/uint256"
)

// Tag is the type marker attached to every memory word.
type Tag uint8

const (
	TagFF Tag = iota
	TagU1
	TagU8
	TagU16
	TagU32
	TagU64
	TagU128
	numTags
)

// FieldModulus is the BN254 scalar field prime.
var FieldModulus = uint256.MustFromDecimal("21888242871839275222246405745257275088548364400416034343698204186575808495617")

var tagBits = [numTags]uint{TagFF: 254, TagU1: 1, TagU8: 8, TagU16: 16, TagU32: 32, TagU64: 64, TagU128: 128}

var tagNames = [numTags]string{TagFF: "field", TagU1: "u1", TagU8: "u8", TagU16: "u16", TagU32: "u32", TagU64: "u64", TagU128: "u128"}

var tagMasks [numTags]uint256.Int

func init() {
	one := uint256.NewInt(1)
	for t := TagU1; t < numTags; t++ {
		tagMasks[t].Lsh(one, tagBits[t])
		tagMasks[t].Sub(&tagMasks[t], one)
	}
}

// TagFromByte validates a tag read from bytecode.
func TagFromByte(b uint32) (Tag, error) {
	if b >= uint32(numTags) {
		return 0, fmt.Errorf("%w: %d", avmerrors.ErrInvalidTag, b)
	}
	return Tag(b), nil
}

func (t Tag) IsValid() bool {
	return t < numTags
}

func (t Tag) IsIntegral() bool {
	return t != TagFF && t < numTags
}

// BitSize is the width of the tag. Field reports 254.
func (t Tag) BitSize() uint {
	return tagBits[t]
}

func (t Tag) String() string {
	if !t.IsValid() {
		return fmt.Sprintf("tag(%d)", uint8(t))
	}
	return tagNames[t]
}

// Word is a tagged memory value. The value is always reduced into the tag's range.
type Word struct {
	tag   Tag
	value uint256.Int
}

// NewWord builds a word, truncating integral values to the tag width and reducing field values mod p.
func NewWord(tag Tag, v *uint256.Int) Word {
	w := Word{tag: tag, value: *v}
	w.normalize()
	return w
}

func (w *Word) normalize() {
	if w.tag == TagFF {
		if !w.value.Lt(FieldModulus) {
			w.value.Mod(&w.value, FieldModulus)
		}
		return
	}
	w.value.And(&w.value, &tagMasks[w.tag])
}

func NewWordUint64(tag Tag, v uint64) Word {
	return NewWord(tag, uint256.NewInt(v))
}

func NewField(v *uint256.Int) Word {
	return NewWord(TagFF, v)
}

func NewFieldUint64(v uint64) Word {
	return NewWordUint64(TagFF, v)
}

func NewU1(b bool) Word {
	if b {
		return NewWordUint64(TagU1, 1)
	}
	return NewWordUint64(TagU1, 0)
}

func NewU8(v uint8) Word   { return NewWordUint64(TagU8, uint64(v)) }
func NewU16(v uint16) Word { return NewWordUint64(TagU16, uint64(v)) }
func NewU32(v uint32) Word { return NewWordUint64(TagU32, uint64(v)) }
func NewU64(v uint64) Word { return NewWordUint64(TagU64, v) }

// WordFromFr wraps a field element.
func WordFromFr(e *fr.Element) Word {
	b := e.Bytes()
	var v uint256.Int
	v.SetBytes32(b[:])
	return Word{tag: TagFF, value: v}
}

func (w Word) Tag() Tag {
	return w.tag
}

func (w Word) Value() uint256.Int {
	return w.value
}

// Uint64 returns the low 64 bits of the value.
func (w Word) Uint64() uint64 {
	return w.value.Uint64()
}

func (w Word) IsZero() bool {
	return w.value.IsZero()
}

// Fr returns the value as a field element.
func (w Word) Fr() fr.Element {
	var e fr.Element
	b := w.value.Bytes32()
	e.SetBytes(b[:])
	return e
}

// Equal compares tag and value together.
func (w Word) Equal(o Word) bool {
	return w.tag == o.tag && w.value.Eq(&o.value)
}

// Cast truncates when narrowing and zero-extends when widening. Casting to field
// reinterprets the value as a field element.
func (w Word) Cast(dst Tag) Word {
	return NewWord(dst, &w.value)
}

func (w Word) String() string {
	return fmt.Sprintf("%s(%s)", w.tag, w.value.Dec())
}
