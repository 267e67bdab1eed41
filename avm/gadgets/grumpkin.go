package gadgets

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Grumpkin is y^2 = x^3 - 17 over the BN254 scalar field.
var grumpkinB fr.Element

func init() {
	grumpkinB.SetUint64(17)
	grumpkinB.Neg(&grumpkinB)
}

// Point is an affine Grumpkin point. The point at infinity is flagged rather than encoded.
type Point struct {
	X        fr.Element
	Y        fr.Element
	Infinity bool
}

// GrumpkinGenerator returns the standard generator (1, sqrt(-16)).
func GrumpkinGenerator() Point {
	var p Point
	p.X.SetOne()
	p.Y.SetString("17631683881184975370165255887551781615748388533673675138860")
	return p
}

func InfinityPoint() Point {
	return Point{Infinity: true}
}

// IsOnCurve reports whether p satisfies the curve equation. Infinity is on the curve.
func (p Point) IsOnCurve() bool {
	if p.Infinity {
		return true
	}
	var lhs, rhs fr.Element
	lhs.Square(&p.Y)
	rhs.Square(&p.X).Mul(&rhs, &p.X).Add(&rhs, &grumpkinB)
	return lhs.Equal(&rhs)
}

// Neg returns -p.
func (p Point) Neg() Point {
	if p.Infinity {
		return p
	}
	q := p
	q.Y.Neg(&p.Y)
	return q
}

// AddPoints adds two affine points. Callers check IsOnCurve first.
func AddPoints(p, q Point) Point {
	if p.Infinity {
		return q
	}
	if q.Infinity {
		return p
	}
	var lambda, num, den fr.Element
	if p.X.Equal(&q.X) {
		var ySum fr.Element
		ySum.Add(&p.Y, &q.Y)
		if ySum.IsZero() {
			return InfinityPoint()
		}
		// doubling: lambda = 3x^2 / 2y
		var three fr.Element
		three.SetUint64(3)
		num.Square(&p.X).Mul(&num, &three)
		den.Double(&p.Y)
	} else {
		num.Sub(&q.Y, &p.Y)
		den.Sub(&q.X, &p.X)
	}
	den.Inverse(&den)
	lambda.Mul(&num, &den)

	var r Point
	r.X.Square(&lambda).Sub(&r.X, &p.X).Sub(&r.X, &q.X)
	r.Y.Sub(&p.X, &r.X).Mul(&r.Y, &lambda).Sub(&r.Y, &p.Y)
	return r
}
