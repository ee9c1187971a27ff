package libhkb

import (
	"math"

	"github.com/hkb3d/gohkb/gohkb"
)

// exitTolerance lets a ray whose exit time is barely negative still count as a hit.
const exitTolerance = 1e-8

// Intersect finds where the ray R(t) = origin + dir*t meets the closed box [bl, tr].
//
// enter is the earliest time t >= 0 the ray is inside the box (0 if origin is already inside) and exit is
// the time it leaves.  An axis where dir has no component is satisfied when origin lies within that
// axis's slab and is a miss otherwise.
func Intersect(dir, origin, bl, tr gohkb.Vec3) (enter, exit float64, hit bool) {
	tmin := math.Inf(-1)
	tmax := math.Inf(+1)

	for axis := 0; axis < 3; axis++ {
		d := dir.At(axis)
		o := origin.At(axis)
		lo := bl.At(axis)
		hi := tr.At(axis)

		if math.Abs(d) < gohkb.Epsilon {
			if o < lo || o > hi {
				return 0, 0, false
			}
			continue
		}

		t1 := (lo - o) / d
		t2 := (hi - o) / d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
	}

	if tmax < -exitTolerance || tmax < tmin {
		return 0, 0, false
	}
	if tmin < 0 {
		tmin = 0
	}
	return tmin, tmax, true
}
