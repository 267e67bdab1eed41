package avm

import (
	"fmt"

	"github.com/colorfulnotion/avm/avm/gadgets"
	"github.com/colorfulnotion/avm/avmerrors"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

func handlePOSEIDON2PERM(vm *Interpreter, c *Context, instr *Instruction, ops []uint32) error {
	in, err := c.Memory.GetSliceAs(ops[0], gadgets.Poseidon2Width, TagFF)
	if err != nil {
		return err
	}
	var state [gadgets.Poseidon2Width]fr.Element
	for i := range state {
		state[i] = in[i].Fr()
	}
	state = gadgets.Poseidon2Permutation(state)
	out := make([]Word, gadgets.Poseidon2Width)
	for i := range state {
		out[i] = WordFromFr(&state[i])
	}
	return c.Memory.SetSlice(ops[1], out)
}

// handleSHA256COMPRESSION operands: output, state, inputs.
func handleSHA256COMPRESSION(vm *Interpreter, c *Context, instr *Instruction, ops []uint32) error {
	stateWords, err := c.Memory.GetSliceAs(ops[1], 8, TagU32)
	if err != nil {
		return err
	}
	inputWords, err := c.Memory.GetSliceAs(ops[2], 16, TagU32)
	if err != nil {
		return err
	}
	var state [8]uint32
	var block [16]uint32
	for i := range state {
		state[i] = uint32(stateWords[i].Uint64())
	}
	for i := range block {
		block[i] = uint32(inputWords[i].Uint64())
	}
	res := gadgets.SHA256Compress(state, block)
	out := make([]Word, 8)
	for i, v := range res {
		out[i] = NewU32(v)
	}
	return c.Memory.SetSlice(ops[0], out)
}

// handleKECCAKF1600 operands: dst, input.
func handleKECCAKF1600(vm *Interpreter, c *Context, instr *Instruction, ops []uint32) error {
	in, err := c.Memory.GetSliceAs(ops[1], 25, TagU64)
	if err != nil {
		return err
	}
	var lanes [25]uint64
	for i := range lanes {
		lanes[i] = in[i].Uint64()
	}
	gadgets.KeccakF1600(&lanes)
	out := make([]Word, 25)
	for i, v := range lanes {
		out[i] = NewU64(v)
	}
	return c.Memory.SetSlice(ops[0], out)
}

func (c *Context) pointAt(xOff, yOff, infOff uint32) (gadgets.Point, error) {
	x, err := c.Memory.GetAs(xOff, TagFF)
	if err != nil {
		return gadgets.Point{}, err
	}
	y, err := c.Memory.GetAs(yOff, TagFF)
	if err != nil {
		return gadgets.Point{}, err
	}
	inf, err := c.Memory.GetAs(infOff, TagU1)
	if err != nil {
		return gadgets.Point{}, err
	}
	p := gadgets.Point{X: x.Fr(), Y: y.Fr(), Infinity: !inf.IsZero()}
	if !p.IsOnCurve() {
		return p, fmt.Errorf("%w: (%s, %s)", avmerrors.ErrPointNotOnCurve, x, y)
	}
	return p, nil
}

// handleECADD operands: p1x, p1y, p1inf, p2x, p2y, p2inf, dst. The result is written as x, y, inf.
func handleECADD(vm *Interpreter, c *Context, instr *Instruction, ops []uint32) error {
	p1, err := c.pointAt(ops[0], ops[1], ops[2])
	if err != nil {
		return err
	}
	p2, err := c.pointAt(ops[3], ops[4], ops[5])
	if err != nil {
		return err
	}
	r := gadgets.AddPoints(p1, p2)
	out := []Word{NewFieldUint64(0), NewFieldUint64(0), NewU1(true)}
	if !r.Infinity {
		out = []Word{WordFromFr(&r.X), WordFromFr(&r.Y), NewU1(false)}
	}
	return c.Memory.SetSlice(ops[6], out)
}

// handleTORADIXBE operands: src, radix, numLimbs, outputBits, dst.
func handleTORADIXBE(vm *Interpreter, c *Context, instr *Instruction, ops []uint32) error {
	radix, err := c.Memory.GetU32(ops[1])
	if err != nil {
		return err
	}
	numLimbs, err := c.Memory.GetU32(ops[2])
	if err != nil {
		return err
	}
	outputBits, err := c.Memory.GetAs(ops[3], TagU1)
	if err != nil {
		return err
	}
	if err := c.chargeDynamic(instr.Opcode, uint64(numLimbs)); err != nil {
		return err
	}
	if err := checkRange(ops[4], numLimbs); err != nil {
		return err
	}
	limbs, err := ToRadixBE(c.Memory.Get(ops[0]), radix, numLimbs, !outputBits.IsZero())
	if err != nil {
		return err
	}
	return c.Memory.SetSlice(ops[4], limbs)
}
