package avm

import (
	"fmt"

	"github.com/colorfulnotion/avm/avmerrors"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/holiman/uint256"
)

func checkSameTag(a, b Word) error {
	if a.tag != b.tag {
		return fmt.Errorf("%w: %s vs %s", avmerrors.ErrTagMismatch, a.tag, b.tag)
	}
	return nil
}

func checkIntegral(w Word) error {
	if !w.tag.IsIntegral() {
		return fmt.Errorf("%w: %s", avmerrors.ErrNonIntegralType, w.tag)
	}
	return nil
}

// fieldOp applies op over fr for field operands.
func fieldOp(a, b Word, op func(z, x, y *fr.Element)) Word {
	x, y := a.Fr(), b.Fr()
	var z fr.Element
	op(&z, &x, &y)
	return WordFromFr(&z)
}

// Add wraps modulo 2^k for integral tags and modulo p for field.
func Add(a, b Word) (Word, error) {
	if err := checkSameTag(a, b); err != nil {
		return Word{}, err
	}
	if a.tag == TagFF {
		return fieldOp(a, b, func(z, x, y *fr.Element) { z.Add(x, y) }), nil
	}
	var v uint256.Int
	v.Add(&a.value, &b.value)
	return NewWord(a.tag, &v), nil
}

func Sub(a, b Word) (Word, error) {
	if err := checkSameTag(a, b); err != nil {
		return Word{}, err
	}
	if a.tag == TagFF {
		return fieldOp(a, b, func(z, x, y *fr.Element) { z.Sub(x, y) }), nil
	}
	var v uint256.Int
	v.Sub(&a.value, &b.value)
	return NewWord(a.tag, &v), nil
}

func Mul(a, b Word) (Word, error) {
	if err := checkSameTag(a, b); err != nil {
		return Word{}, err
	}
	if a.tag == TagFF {
		return fieldOp(a, b, func(z, x, y *fr.Element) { z.Mul(x, y) }), nil
	}
	var v uint256.Int
	v.Mul(&a.value, &b.value)
	return NewWord(a.tag, &v), nil
}

// Div is unsigned integer division and rejects field operands.
func Div(a, b Word) (Word, error) {
	if err := checkSameTag(a, b); err != nil {
		return Word{}, err
	}
	if err := checkIntegral(a); err != nil {
		return Word{}, err
	}
	if b.IsZero() {
		return Word{}, avmerrors.ErrDivisionByZero
	}
	var v uint256.Int
	v.Div(&a.value, &b.value)
	return NewWord(a.tag, &v), nil
}

// FDiv multiplies a by the field inverse of b.
func FDiv(a, b Word) (Word, error) {
	if err := checkSameTag(a, b); err != nil {
		return Word{}, err
	}
	if a.tag != TagFF {
		return Word{}, fmt.Errorf("%w: FDIV on %s", avmerrors.ErrTagMismatch, a.tag)
	}
	if b.IsZero() {
		return Word{}, avmerrors.ErrDivisionByZero
	}
	return fieldOp(a, b, func(z, x, y *fr.Element) { z.Div(x, y) }), nil
}

func Eq(a, b Word) (Word, error) {
	if err := checkSameTag(a, b); err != nil {
		return Word{}, err
	}
	return NewU1(a.value.Eq(&b.value)), nil
}

// Lt compares canonical integer values, including for field operands.
func Lt(a, b Word) (Word, error) {
	if err := checkSameTag(a, b); err != nil {
		return Word{}, err
	}
	return NewU1(a.value.Lt(&b.value)), nil
}

func Lte(a, b Word) (Word, error) {
	if err := checkSameTag(a, b); err != nil {
		return Word{}, err
	}
	return NewU1(!a.value.Gt(&b.value)), nil
}

func bitwise(a, b Word, op func(z, x, y *uint256.Int) *uint256.Int) (Word, error) {
	if err := checkSameTag(a, b); err != nil {
		return Word{}, err
	}
	if err := checkIntegral(a); err != nil {
		return Word{}, err
	}
	var v uint256.Int
	op(&v, &a.value, &b.value)
	return NewWord(a.tag, &v), nil
}

func And(a, b Word) (Word, error) {
	return bitwise(a, b, (*uint256.Int).And)
}

func Or(a, b Word) (Word, error) {
	return bitwise(a, b, (*uint256.Int).Or)
}

func Xor(a, b Word) (Word, error) {
	return bitwise(a, b, (*uint256.Int).Xor)
}

// Not flips every bit within the tag width.
func Not(a Word) (Word, error) {
	if err := checkIntegral(a); err != nil {
		return Word{}, err
	}
	var v uint256.Int
	v.Not(&a.value)
	return NewWord(a.tag, &v), nil
}

func checkShift(a, shift Word) error {
	if err := checkIntegral(a); err != nil {
		return err
	}
	if shift.tag != TagU8 {
		return fmt.Errorf("%w: shift amount is %s, expected u8", avmerrors.ErrTagMismatch, shift.tag)
	}
	return nil
}

// Shl shifts left within the tag width. Shifting by the width or more yields 0.
func Shl(a, shift Word) (Word, error) {
	if err := checkShift(a, shift); err != nil {
		return Word{}, err
	}
	n := uint(shift.Uint64())
	if n >= a.tag.BitSize() {
		return NewWordUint64(a.tag, 0), nil
	}
	var v uint256.Int
	v.Lsh(&a.value, n)
	return NewWord(a.tag, &v), nil
}

func Shr(a, shift Word) (Word, error) {
	if err := checkShift(a, shift); err != nil {
		return Word{}, err
	}
	n := uint(shift.Uint64())
	if n >= a.tag.BitSize() {
		return NewWordUint64(a.tag, 0), nil
	}
	var v uint256.Int
	v.Rsh(&a.value, n)
	return NewWord(a.tag, &v), nil
}
