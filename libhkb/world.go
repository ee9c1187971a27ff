package libhkb

import (
	"fmt"
	"io"
	"sync"

	"github.com/hkb3d/gohkb/gohkb"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

// World is a Hackenbush graph: its nodes, the grounded nodes that seed every search, and its chains.
//
// A node not reachable from a grounded node over live edges never appears in a visibility query, so
// chopping an edge needs no separate pass to drop what falls.
type World struct {
	cfg       Config
	fractions *FractionTable

	mu     sync.Mutex
	nodes  []gohkb.Node
	ground []gohkb.Node
	chains []*ChainRoot
	edges  map[nodePair]*gohkb.Edge
}

type nodePair struct {
	a, b gohkb.Node
}

func NewWorld(cfg Config) *World {
	return &World{
		cfg:       cfg,
		fractions: Fractions,
		edges:     make(map[nodePair]*gohkb.Edge),
	}
}

func (world *World) Config() Config {
	return world.cfg
}

// Fractions returns the expansion table used by this world's fraction chains.
func (world *World) Fractions() *FractionTable {
	return world.fractions
}

// Grounded returns the nodes that seed visibility searches.
func (world *World) Grounded() []gohkb.Node {
	world.mu.Lock()
	defer world.mu.Unlock()
	return append([]gohkb.Node(nil), world.ground...)
}

func (world *World) Nodes() []gohkb.Node {
	world.mu.Lock()
	defer world.mu.Unlock()
	return append([]gohkb.Node(nil), world.nodes...)
}

func (world *World) Chains() []*ChainRoot {
	world.mu.Lock()
	defer world.mu.Unlock()
	return append([]*ChainRoot(nil), world.chains...)
}

// NumEdges returns the number of live ordinary edges.
func (world *World) NumEdges() int {
	world.mu.Lock()
	defer world.mu.Unlock()
	return len(world.edges)
}

// AddNode registers n, marking it grounded if it sits on the ground plane.
func (world *World) AddNode(n gohkb.Node) {
	world.mu.Lock()
	defer world.mu.Unlock()
	world.addNode(n)
}

func (world *World) addNode(n gohkb.Node) {
	world.nodes = append(world.nodes, n)
	if gohkb.IsGrounded(n) {
		world.ground = append(world.ground, n)
	}
	if root, isChain := n.(*ChainRoot); isChain {
		world.chains = append(world.chains, root)
	}
}

// Connect attaches an edge of type t between a and b, refusing a second edge between the same pair.
func (world *World) Connect(t gohkb.BranchType, a, b gohkb.Node) (*gohkb.Edge, error) {
	world.mu.Lock()
	defer world.mu.Unlock()
	return world.connect(t, a, b)
}

func (world *World) connect(t gohkb.BranchType, a, b gohkb.Node) (*gohkb.Edge, error) {
	if existing := world.edgeBetween(a, b); existing != nil {
		return nil, errors.Wrapf(gohkb.ErrDuplicateEdge, "%v -> %v", a.Pos(), b.Pos())
	}
	e, err := Attach(t, a, b)
	if err != nil {
		return nil, err
	}
	world.edges[nodePair{a, b}] = e
	return e, nil
}

func (world *World) edgeBetween(a, b gohkb.Node) *gohkb.Edge {
	if e := world.edges[nodePair{a, b}]; e != nil {
		return e
	}
	return world.edges[nodePair{b, a}]
}

// EdgeBetween returns the live ordinary edge connecting a and b, if any.
func (world *World) EdgeBetween(a, b gohkb.Node) *gohkb.Edge {
	world.mu.Lock()
	defer world.mu.Unlock()
	return world.edgeBetween(a, b)
}

// Build adds the nodes and edges of desc to this world.
//
// Entries that cannot be built are skipped and returned; everything else is still built.
func (world *World) Build(desc *gohkb.WorldDesc) []error {
	world.mu.Lock()
	defer world.mu.Unlock()

	var skipped []error
	skip := func(err error) {
		klog.Warningf("world %q: skipping: %v", desc.Name, err)
		skipped = append(skipped, err)
	}

	built := make([]gohkb.Node, len(desc.Nodes))
	for i, nd := range desc.Nodes {
		var n gohkb.Node
		if nd.Chain != nil {
			root, err := world.newChain(nd.Pos, nd.Chain)
			if err != nil {
				skip(errors.Wrapf(err, "chain at node %d", i))
			} else {
				n = root
			}
		}
		if n == nil {
			n = NewOrdinary(nd.Pos)
		}
		built[i] = n
		world.addNode(n)
	}

	numEdges := 0
	for i, nd := range desc.Nodes {
		for _, link := range nd.Links {
			if link.To < 0 || int(link.To) >= len(built) {
				skip(errors.Wrapf(gohkb.ErrBadNodeID, "node %d links to %d", i, link.To))
				continue
			}
			if _, err := world.connect(link.Type, built[i], built[link.To]); err != nil {
				skip(err)
				continue
			}
			numEdges++
		}
	}

	klog.V(2).Infof("world %q: built %d nodes, %d edges (%d grounded, %d chains)",
		desc.Name, len(built), numEdges, len(world.ground), len(world.chains))
	return skipped
}

func (world *World) newChain(pos gohkb.Vec3, cd *gohkb.ChainDesc) (*ChainRoot, error) {
	if cd.Dir.IsZero() {
		return nil, errors.Wrapf(gohkb.ErrZeroDirection, "chain root at %v", pos)
	}

	steps, err := StepGenByName(cd.Step, world.cfg.GeometricRate)
	if err != nil {
		return nil, err
	}

	opts := ChainOpts{
		Dir:   cd.Dir,
		Steps: steps,
	}

	num, den := cd.Num, cd.Den
	switch {
	case !cd.Fraction:
		opts.Types = UniformBranch(cd.Type)
	case den == 0:
		opts.Types = UniformBranch(SignBranch(num))
	case isPowerOfTwo(den):
		opts.Types = func(order int64) gohkb.BranchType {
			return DyadicBranch(order, num, den)
		}
		opts.Cap = DyadicLinks(num, den) + 1
	default:
		if err = ValidateFraction(num, den); err != nil {
			return nil, err
		}
		opts.Types = FractionGen(world.fractions, num, den)
	}

	return NewChainRoot(pos, opts), nil
}

// DefaultWorld describes a small world: a grounded green-blue stalk with a red branch to an all-green chain.
func DefaultWorld() *gohkb.WorldDesc {
	return &gohkb.WorldDesc{
		Name: "default",
		Nodes: []gohkb.NodeDesc{
			{
				Pos:   gohkb.Vec3{X: 8, Y: 0, Z: 0},
				Links: []gohkb.LinkDesc{{To: 1, Type: gohkb.Green}},
			}, {
				Pos:   gohkb.Vec3{X: 8, Y: 1, Z: 0},
				Links: []gohkb.LinkDesc{{To: 2, Type: gohkb.Blue}, {To: 3, Type: gohkb.Red}},
			}, {
				Pos: gohkb.Vec3{X: 8, Y: 2, Z: 0},
			}, {
				Pos: gohkb.Vec3{X: 8, Y: 2, Z: 1},
				Chain: &gohkb.ChainDesc{
					Dir:  gohkb.Vec3{X: 0, Y: 3, Z: 0},
					Step: "geometric",
					Type: gohkb.Green,
				},
			},
		},
	}
}

// LoadDefault builds DefaultWorld() into this world.
func (world *World) LoadDefault() {
	world.Build(DefaultWorld())
}

// VisibleNodes runs a bounded search from every grounded node and returns the nodes inside [bl, tr].
func (world *World) VisibleNodes(bl, tr gohkb.Vec3) gohkb.NodeSet {
	world.mu.Lock()
	defer world.mu.Unlock()
	return world.visibleNodes(bl, tr)
}

func (world *World) visibleNodes(bl, tr gohkb.Vec3) gohkb.NodeSet {
	s := gohkb.NewSearch(bl, tr)
	for _, g := range world.ground {
		s.Reset()
		s.Visit(g, world.cfg.MaxDepth)
	}
	return s.Found
}

// VisibleEdges returns the live edges of every node visible in [bl, tr].
func (world *World) VisibleEdges(bl, tr gohkb.Vec3) gohkb.EdgeSet {
	world.mu.Lock()
	defer world.mu.Unlock()
	return CollectEdges(world.visibleNodes(bl, tr), world.cfg.MaxBreadth)
}

// Chop removes e on behalf of p if p may remove an edge of that color.
//
// Returns false, leaving the graph unchanged, if the move is illegal or e is no longer live.
func (world *World) Chop(e *gohkb.Edge, p gohkb.Player) bool {
	world.mu.Lock()
	defer world.mu.Unlock()

	if e == nil || !e.Live || !e.Type.CanChop(p) {
		metricChops.WithLabelValues(p.String(), "rejected").Inc()
		return false
	}

	if e.Chain == nil {
		delete(world.edges, nodePair{e.A, e.B})
		delete(world.edges, nodePair{e.B, e.A})
	}
	Detach(e)

	metricChops.WithLabelValues(p.String(), "chopped").Inc()
	klog.V(2).Infof("chop: %v removed %v", p, e)
	return true
}

// Log writes each grounded node and the given number of layers beyond it.
func (world *World) Log(w io.Writer, layers uint8) error {
	for _, g := range world.Grounded() {
		if err := g.Log(w, layers, 0); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}
	return nil
}
