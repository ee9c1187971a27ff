package gohkb

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

func (v Vec3) Add(u Vec3) Vec3 {
	return Vec3{v.X + u.X, v.Y + u.Y, v.Z + u.Z}
}

func (v Vec3) Sub(u Vec3) Vec3 {
	return Vec3{v.X - u.X, v.Y - u.Y, v.Z - u.Z}
}

func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// At returns the given axis component (0=X, 1=Y, 2=Z).
func (v Vec3) At(axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// IsZero returns true if every component of v is within Epsilon of zero.
func (v Vec3) IsZero() bool {
	return math.Abs(v.X) < Epsilon && math.Abs(v.Y) < Epsilon && math.Abs(v.Z) < Epsilon
}

// In returns true if v lies in the closed box [bl, tr].
func (v Vec3) In(bl, tr Vec3) bool {
	return v.X >= bl.X && v.X <= tr.X &&
		v.Y >= bl.Y && v.Y <= tr.Y &&
		v.Z >= bl.Z && v.Z <= tr.Z
}

func (v Vec3) Less(u Vec3) bool {
	if v.X != u.X {
		return v.X < u.X
	}
	if v.Y != u.Y {
		return v.Y < u.Y
	}
	return v.Z < u.Z
}

func (v Vec3) String() string {
	return fmt.Sprintf("(%g,%g,%g)", v.X, v.Y, v.Z)
}

// IsGrounded returns true if the given node sits on the ground plane.
func IsGrounded(n Node) bool {
	return n.Pos().Y == 0
}

func (t BranchType) String() string {
	switch t {
	case Red:
		return "red"
	case Green:
		return "green"
	case Blue:
		return "blue"
	case Invalid:
		return "invalid"
	}
	return fmt.Sprintf("BranchType(%d)", int8(t))
}

// Color returns the RGBA color used to present this branch type.
func (t BranchType) Color() [4]float32 {
	switch t {
	case Red:
		return [4]float32{1, 0, 0, 1}
	case Green:
		return [4]float32{0, 1, 0, 1}
	case Blue:
		return [4]float32{0, 0, 1, 1}
	case Invalid:
		return [4]float32{0, 0, 0, 1}
	default:
		return [4]float32{1, 1, 0, 1}
	}
}

// ParseBranchType maps 'r', 'g', 'b' to a BranchType.
func ParseBranchType(c byte) (BranchType, bool) {
	switch c {
	case 'r', 'R':
		return Red, true
	case 'g', 'G':
		return Green, true
	case 'b', 'B':
		return Blue, true
	}
	return Invalid, false
}

// Letter is the inverse of ParseBranchType.
func (t BranchType) Letter() byte {
	switch t {
	case Red:
		return 'r'
	case Green:
		return 'g'
	case Blue:
		return 'b'
	}
	return '?'
}

// Exclusive returns the branch type only this player may chop.
func (p Player) Exclusive() BranchType {
	return BranchType(p)
}

// Opponent returns the other player.
func (p Player) Opponent() Player {
	return -p
}

// CanChop returns true if the given player may remove an edge of type t.
//
// A player may chop any colored edge except those exclusive to the opponent.
func (t BranchType) CanChop(p Player) bool {
	switch t {
	case Red, Green, Blue:
		return t != p.Opponent().Exclusive()
	}
	return false
}

func (p Player) String() string {
	switch p {
	case RedPlayer:
		return "red"
	case BluePlayer:
		return "blue"
	}
	return fmt.Sprintf("Player(%d)", int8(p))
}

// Other returns the endpoint of e opposite n.
func (e *Edge) Other(n Node) Node {
	if e.A == n {
		return e.B
	}
	return e.A
}

func (e *Edge) String() string {
	return fmt.Sprintf("%v %v -> %v", e.Type, e.A.Pos(), e.B.Pos())
}

// NodeSet is an unordered set of nodes.
type NodeSet map[Node]struct{}

func (set NodeSet) Add(n Node) {
	set[n] = struct{}{}
}

func (set NodeSet) Has(n Node) bool {
	_, exists := set[n]
	return exists
}

func (set NodeSet) Remove(n Node) {
	delete(set, n)
}

// Clear removes all nodes while keeping the set's storage.
func (set NodeSet) Clear() {
	for n := range set {
		delete(set, n)
	}
}

// EdgeSet is an unordered set of edges.
type EdgeSet map[*Edge]struct{}

func (set EdgeSet) Add(e *Edge) {
	set[e] = struct{}{}
}

func (set EdgeSet) Has(e *Edge) bool {
	_, exists := set[e]
	return exists
}

func (set EdgeSet) Remove(e *Edge) {
	delete(set, e)
}

// Sorted returns the edges in a stable order (by endpoint positions, then type).
func (set EdgeSet) Sorted() []*Edge {
	edges := make([]*Edge, 0, len(set))
	for e := range set {
		edges = append(edges, e)
	}
	sort.Slice(edges, func(i, j int) bool {
		ei, ej := edges[i], edges[j]
		if pi, pj := ei.A.Pos(), ej.A.Pos(); pi != pj {
			return pi.Less(pj)
		}
		if pi, pj := ei.B.Pos(), ej.B.Pos(); pi != pj {
			return pi.Less(pj)
		}
		return ei.Type < ej.Type
	})
	return edges
}

// Bit returns the i-th binary digit after the point.
func (exp *Expansion) Bit(i int64) bool {
	n := int64(len(exp.Prefix))
	if i < n {
		return exp.Prefix[i]
	}
	return exp.Period[(i-n)%int64(len(exp.Period))]
}

func (exp *Expansion) String() string {
	var b strings.Builder
	b.WriteString("0.")
	for _, bit := range exp.Prefix {
		b.WriteByte(bitDigit(bit))
	}
	b.WriteByte('(')
	for _, bit := range exp.Period {
		b.WriteByte(bitDigit(bit))
	}
	b.WriteByte(')')
	return b.String()
}

func bitDigit(bit bool) byte {
	if bit {
		return '1'
	}
	return '0'
}
