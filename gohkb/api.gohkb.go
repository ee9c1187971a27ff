package gohkb

import (
	"io"
	"math"
)

const (

	// DefaultMaxDepth bounds the number of hops a visibility search makes from a seed node.
	DefaultMaxDepth = int32(256)

	// DefaultMaxBreadth bounds how many edges a single node contributes when rendering.
	DefaultMaxBreadth = int32(256)

	// GeometricRate is the default ratio between successive gaps of a geometric chain.
	GeometricRate = 0.9

	// Epsilon absorbs floating point error in ray and box tests.
	Epsilon = 1e-7

	// OrderInf denotes the limit of an infinite chain (and an uncapped chain).
	OrderInf = int64(math.MaxInt64)

	// NotFound is returned by an inverse step generator when a chain misses a query box.
	NotFound = int64(math.MinInt64)
)

// BranchType is the color of an edge and is ordered RED < GREEN < BLUE.
type BranchType int8

const (
	Red     BranchType = -1
	Green   BranchType = 0
	Blue    BranchType = +1
	Invalid BranchType = 0x7F
)

// Player identifies who is making a move.
type Player int8

const (
	RedPlayer  Player = -1
	BluePlayer Player = +1
)

// Vec3 is a point or direction in world space.
type Vec3 struct {
	X, Y, Z float64
}

// Node is a vertex of the Hackenbush graph.
//
// Every node has a fixed position and takes part in visibility searches, render collection,
// logging, and the attach / detach protocol used by Attach() and Detach().
type Node interface {

	// Pos returns the fixed world position of this node.
	Pos() Vec3

	// Expand continues a visibility search past this node using the given remaining depth.
	// The search has already performed the box test on this node itself.
	//
	// Returns ErrNotQueryable if this node can only be reached through the chain that owns it.
	Expand(s *Search, depth int32) error

	// Render adds the edges incident to this node to the given set.
	Render(edges EdgeSet, maxBreadth int32)

	// Log writes a description of this node and up to the given number of layers of its neighbors.
	//
	// Returns ErrLogLayers if layers > 5.
	Log(w io.Writer, layers, counter uint8) error

	// Attach is offered a newly created edge and returns true if this node accepts it.
	Attach(e *Edge) bool

	// Detach removes the given edge from this node's incidence.  It is a no-op if the edge was never held.
	Detach(e *Edge)
}

// Chain is a node that owns a procedurally generated sequence of elements.
type Chain interface {
	Node

	// DetachOrder caps the chain at the given order, releasing every element at or beyond it.
	DetachOrder(order int64)
}

// Edge is an unordered connection between two nodes (a "branch").
//
// Edges are only ever handled by pointer; identity is pointer identity.
type Edge struct {
	A, B Node
	Type BranchType

	// Chain is set for links synthesized by a chain, in which case Order is the order of the
	// element nearer the chain root.
	Chain Chain
	Order int64

	// Live is set while the edge is attached to the graph.
	Live bool
}

// TypeGen maps a chain order to the color of the edge between that order and the next.
type TypeGen func(order int64) BranchType

// StepGen places chain elements along a ray (root + dir*t) and inverts that placement against a query box.
type StepGen interface {

	// Name identifies this generator in world descriptions and logs.
	Name() string

	// Step returns the position of the element of the given order.
	// For OrderInf, Step returns the limit position, or false if the chain does not converge.
	Step(order int64, root, dir Vec3) (Vec3, bool)

	// Inverse returns the first order whose position lies within [bl, tr], or NotFound.
	//
	// Whenever Inverse does not return NotFound, Step(Inverse(...)) lies within [bl, tr].
	Inverse(bl, tr, root, dir Vec3) int64
}

// Expansion is the binary expansion of a fraction in [0, 1): a finite prefix followed by a repeating period.
type Expansion struct {
	Prefix []bool
	Period []bool
}

// ExpansionStore persists computed expansions.  Its contents are pure derived data.
type ExpansionStore interface {
	LoadExpansion(num, den int64) (Expansion, bool)
	SaveExpansion(num, den int64, exp Expansion) error
}

// WorldDesc is the table a world is built from: node ids are indexes into Nodes.
type WorldDesc struct {
	Name  string
	Nodes []NodeDesc
}

// NodeDesc describes one node, its ordinary edges, and whether it anchors a chain.
type NodeDesc struct {
	Pos   Vec3
	Links []LinkDesc
	Chain *ChainDesc
}

// LinkDesc is an ordinary edge to another node id.
type LinkDesc struct {
	To   int32
	Type BranchType
}

// ChainDesc marks a node as a chain root.
//
// When Fraction is set, the chain encodes Num/Den (see FractionBranch); otherwise every link has color Type.
type ChainDesc struct {
	Dir      Vec3
	Step     string
	Type     BranchType
	Fraction bool
	Num      int64
	Den      int64
}
