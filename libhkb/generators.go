package libhkb

import (
	"math"
	"strings"

	"github.com/hkb3d/gohkb/gohkb"
	"github.com/pkg/errors"
)

// maxLinearOrder keeps a linear chain's orders exactly representable as float64.
const maxLinearOrder = float64(1 << 53)

// Geometric places element k at root + dir*(1 - Rate^k), converging to root + dir.
type Geometric struct {
	Rate float64
}

func (g Geometric) Name() string {
	return "geometric"
}

func (g Geometric) Step(order int64, root, dir gohkb.Vec3) (gohkb.Vec3, bool) {
	if order == gohkb.OrderInf {
		return root.Add(dir), true
	}
	t := 1 - math.Pow(g.Rate, float64(order))
	return root.Add(dir.Scale(t)), true
}

func (g Geometric) Inverse(bl, tr, root, dir gohkb.Vec3) int64 {
	enter, _, hit := Intersect(dir, root, bl, tr)
	if !hit || enter >= 1 {
		return gohkb.NotFound
	}

	// first k where 1 - Rate^k >= enter
	guess := int64(math.Ceil(math.Log(1-enter) / math.Log(g.Rate)))
	return firstInBox(g.Step, guess, bl, tr, root, dir)
}

// Linear places element k at root + dir*k and never converges.
type Linear struct{}

func (Linear) Name() string {
	return "linear"
}

func (Linear) Step(order int64, root, dir gohkb.Vec3) (gohkb.Vec3, bool) {
	if order == gohkb.OrderInf {
		return gohkb.Vec3{}, false
	}
	return root.Add(dir.Scale(float64(order))), true
}

func (l Linear) Inverse(bl, tr, root, dir gohkb.Vec3) int64 {
	enter, _, hit := Intersect(dir, root, bl, tr)
	if !hit || enter > maxLinearOrder {
		return gohkb.NotFound
	}
	return firstInBox(l.Step, int64(math.Ceil(enter)), bl, tr, root, dir)
}

// stepFunc is a StepGen's Step method.  Passing the method value keeps the generator off the heap.
type stepFunc func(order int64, root, dir gohkb.Vec3) (gohkb.Vec3, bool)

// firstInBox settles floating point error around a closed-form guess of the first order inside [bl, tr].
func firstInBox(step stepFunc, guess int64, bl, tr, root, dir gohkb.Vec3) int64 {
	start := guess - 1
	if start < 0 {
		start = 0
	}
	for k := start; k <= guess+1; k++ {
		if pos, ok := step(k, root, dir); ok && pos.In(bl, tr) {
			return k
		}
	}
	return gohkb.NotFound
}

// StepGenByName returns the step generator a world description names ("geometric" / "g" or "linear" / "l").
func StepGenByName(name string, rate float64) (gohkb.StepGen, error) {
	switch strings.ToLower(name) {
	case "g", "geometric":
		if rate <= 0 || rate >= 1 {
			return nil, errors.Wrapf(gohkb.ErrBadConfig, "geometric rate %v must be in (0,1)", rate)
		}
		return Geometric{Rate: rate}, nil
	case "l", "linear":
		return Linear{}, nil
	}
	return nil, errors.Wrapf(gohkb.ErrUnknownGenerator, "%q", name)
}

// UniformBranch returns a type generator giving every link the same color.
func UniformBranch(t gohkb.BranchType) gohkb.TypeGen {
	return func(order int64) gohkb.BranchType {
		return t
	}
}

// SignBranch colors a uniform chain by the sign of num: red when positive, blue when negative, green for zero.
func SignBranch(num int64) gohkb.BranchType {
	switch {
	case num > 0:
		return gohkb.Red
	case num < 0:
		return gohkb.Blue
	}
	return gohkb.Green
}

// FractionGen returns the type generator encoding num/den, backed by the given table.
func FractionGen(table *FractionTable, num, den int64) gohkb.TypeGen {
	return func(order int64) gohkb.BranchType {
		return table.Branch(order, num, den)
	}
}
