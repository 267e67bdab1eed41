package gadgets

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Poseidon2 over the BN254 scalar field with width 4, x^5 s-box,
// 8 full rounds and 56 partial rounds.
const (
	Poseidon2Width         = 4
	poseidon2FullRounds    = 8
	poseidon2PartialRounds = 56
	poseidon2Rate          = 3
)

var (
	poseidon2RC   [poseidon2FullRounds + poseidon2PartialRounds][Poseidon2Width]fr.Element
	poseidon2Diag [Poseidon2Width]fr.Element
)

func init() {
	for r := range poseidon2RoundConstantsHex {
		for i, h := range poseidon2RoundConstantsHex[r] {
			mustSetHex(&poseidon2RC[r][i], h)
		}
	}
	for i, h := range poseidon2InternalDiagHex {
		mustSetHex(&poseidon2Diag[i], h)
	}
}

func mustSetHex(e *fr.Element, h string) {
	if _, err := e.SetString(h); err != nil {
		panic(err)
	}
}

func sbox(x *fr.Element) {
	var x2 fr.Element
	x2.Square(x)
	x2.Square(&x2)
	x.Mul(x, &x2)
}

// matMulExternal multiplies by the M4 matrix
// [[5,7,1,3],[4,6,1,1],[1,3,5,7],[1,1,4,6]].
func matMulExternal(s *[Poseidon2Width]fr.Element) {
	var t0, t1, t2, t3, t4, t5, t6, t7 fr.Element
	t0.Add(&s[0], &s[1])
	t1.Add(&s[2], &s[3])
	t2.Double(&s[1]).Add(&t2, &t1)
	t3.Double(&s[3]).Add(&t3, &t0)
	t4.Double(&t1).Double(&t4).Add(&t4, &t3)
	t5.Double(&t0).Double(&t5).Add(&t5, &t2)
	t6.Add(&t3, &t5)
	t7.Add(&t2, &t4)
	s[0], s[1], s[2], s[3] = t6, t5, t7, t4
}

func matMulInternal(s *[Poseidon2Width]fr.Element) {
	var sum fr.Element
	for i := range s {
		sum.Add(&sum, &s[i])
	}
	for i := range s {
		s[i].Mul(&s[i], &poseidon2Diag[i]).Add(&s[i], &sum)
	}
}

func fullRound(s *[Poseidon2Width]fr.Element, r int) {
	for i := range s {
		s[i].Add(&s[i], &poseidon2RC[r][i])
		sbox(&s[i])
	}
	matMulExternal(s)
}

// Poseidon2Permutation permutes a 4 element state.
func Poseidon2Permutation(in [Poseidon2Width]fr.Element) [Poseidon2Width]fr.Element {
	s := in
	matMulExternal(&s)
	half := poseidon2FullRounds / 2
	r := 0
	for ; r < half; r++ {
		fullRound(&s, r)
	}
	for ; r < half+poseidon2PartialRounds; r++ {
		s[0].Add(&s[0], &poseidon2RC[r][0])
		sbox(&s[0])
		matMulInternal(&s)
	}
	for ; r < poseidon2FullRounds+poseidon2PartialRounds; r++ {
		fullRound(&s, r)
	}
	return s
}

// Poseidon2Hash absorbs inputs into a rate-3 sponge whose capacity is seeded with len(inputs) << 64.
func Poseidon2Hash(inputs ...fr.Element) fr.Element {
	var state [Poseidon2Width]fr.Element
	var iv fr.Element
	iv.SetUint64(uint64(len(inputs)))
	var shift fr.Element
	shift.SetUint64(1 << 32)
	shift.Square(&shift)
	state[poseidon2Rate].Mul(&iv, &shift)

	for i := 0; i < len(inputs); i += poseidon2Rate {
		for j := 0; j < poseidon2Rate && i+j < len(inputs); j++ {
			state[j].Add(&state[j], &inputs[i+j])
		}
		state = Poseidon2Permutation(state)
	}
	if len(inputs) == 0 {
		state = Poseidon2Permutation(state)
	}
	return state[0]
}
