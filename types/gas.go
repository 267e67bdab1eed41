package types

import "fmt"

// Gas is a two dimensional budget: L2 compute and data availability.
type Gas struct {
	L2 uint32 `json:"l2Gas"`
	DA uint32 `json:"daGas"`
}

func NewGas(l2, da uint32) Gas {
	return Gas{L2: l2, DA: da}
}

func (g Gas) Add(o Gas) Gas {
	return Gas{L2: g.L2 + o.L2, DA: g.DA + o.DA}
}

// Sub saturates at zero in each dimension.
func (g Gas) Sub(o Gas) Gas {
	return Gas{L2: subSat(g.L2, o.L2), DA: subSat(g.DA, o.DA)}
}

// Min returns the per-dimension minimum.
func (g Gas) Min(o Gas) Gas {
	return Gas{L2: min(g.L2, o.L2), DA: min(g.DA, o.DA)}
}

// Covers reports whether g can pay for cost in both dimensions.
func (g Gas) Covers(cost Gas) bool {
	return g.L2 >= cost.L2 && g.DA >= cost.DA
}

func (g Gas) IsZero() bool {
	return g.L2 == 0 && g.DA == 0
}

func (g Gas) String() string {
	return fmt.Sprintf("{l2:%d da:%d}", g.L2, g.DA)
}

func subSat(a, b uint32) uint32 {
	if b > a {
		return 0
	}
	return a - b
}
