package worldgen

import (
	"io"
	"math"
	"math/rand"
	"sort"

	"github.com/hkb3d/gohkb/gohkb"
)

// Generate writes a random finite world as .hkb text.
func Generate(opts GenOpts, w io.Writer) error {
	return Format(w, Random(opts))
}

// Random builds a random finite world.
//
// Grounded nodes sit at y=0 and each gets at least one branch to an air node.  Remaining branches are
// split between extra ground branches (in proportion to the share of grounded nodes) and air-to-air
// branches.  The same seed always yields the same world.
func Random(opts GenOpts) *gohkb.WorldDesc {
	rng := rand.New(rand.NewSource(opts.Seed))
	normal := func(mean, dev float64) int {
		return int(mean + dev*rng.NormFloat64())
	}
	uniform := func(lo, hi float64) float64 {
		return round3(lo + (hi-lo)*rng.Float64())
	}

	numNodes := max(normal(opts.TotalNodes, opts.NodeNoise), 2)
	numGround := min(max(normal(opts.GroundedNodes, opts.NodeNoise), 1), numNodes-1)
	numAir := numNodes - numGround
	numEdges := max(int(float64(numNodes)*(opts.Density+opts.DensityNoise*rng.NormFloat64())), numGround)

	groundRatio := opts.GroundDensityRatio * float64(numGround) / float64(numNodes)
	groundEdges := max(int(float64(numEdges)*groundRatio), numGround)
	extraGroundEdges := groundEdges - numGround
	airEdges := numEdges - groundEdges

	desc := &gohkb.WorldDesc{
		Name:  "random",
		Nodes: make([]gohkb.NodeDesc, numNodes),
	}
	for i := range desc.Nodes {
		pos := gohkb.Vec3{
			X: uniform(-opts.XZRadius, opts.XZRadius),
			Z: uniform(-opts.XZRadius, opts.XZRadius),
		}
		if i >= numGround {
			pos.Y = math.Max(uniform(opts.YMin, opts.YMax), 1e-3)
		}
		desc.Nodes[i].Pos = pos
	}

	adj := make([]map[int]struct{}, numNodes)
	for i := range adj {
		adj[i] = make(map[int]struct{})
	}
	airNode := func() int {
		return numGround + rng.Intn(numAir)
	}

	for g := 0; g < numGround; g++ {
		adj[g][airNode()] = struct{}{}
	}
	for i := 0; i < extraGroundEdges; i++ {
		adj[rng.Intn(numGround)][airNode()] = struct{}{}
	}
	for i := 0; i < airEdges && numAir > 1; i++ {
		a, b := airNode(), airNode()
		for a == b {
			b = airNode()
		}
		adj[min(a, b)][max(a, b)] = struct{}{}
	}

	for i, others := range adj {
		sorted := make([]int, 0, len(others))
		for other := range others {
			sorted = append(sorted, other)
		}
		sort.Ints(sorted)
		for _, other := range sorted {
			desc.Nodes[i].Links = append(desc.Nodes[i].Links, gohkb.LinkDesc{
				To:   int32(other),
				Type: randomColor(rng, &opts),
			})
		}
	}
	return desc
}

func randomColor(rng *rand.Rand, opts *GenOpts) gohkb.BranchType {
	x := rng.Float64()
	switch {
	case x < opts.BlueRatio:
		return gohkb.Blue
	case x < opts.BlueRatio+opts.RedRatio:
		return gohkb.Red
	}
	return gohkb.Green
}

func round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}
