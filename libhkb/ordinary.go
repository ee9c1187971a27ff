package libhkb

import (
	"fmt"
	"io"

	"github.com/hkb3d/gohkb/gohkb"
)

// Ordinary is a finite node holding an explicit set of incident edges.
type Ordinary struct {
	pos   gohkb.Vec3
	edges gohkb.EdgeSet
}

func NewOrdinary(pos gohkb.Vec3) *Ordinary {
	return &Ordinary{
		pos:   pos,
		edges: make(gohkb.EdgeSet),
	}
}

func (n *Ordinary) Pos() gohkb.Vec3 {
	return n.pos
}

// NumEdges returns the number of edges currently incident to n.
func (n *Ordinary) NumEdges() int {
	return len(n.edges)
}

func (n *Ordinary) Expand(s *gohkb.Search, depth int32) error {
	for e := range n.edges {
		s.Visit(e.Other(n), depth-1)
	}
	return nil
}

func (n *Ordinary) Render(edges gohkb.EdgeSet, maxBreadth int32) {
	count := int32(0)
	for e := range n.edges {
		if count >= maxBreadth {
			break
		}
		edges.Add(e)
		count++
	}
}

func (n *Ordinary) Log(w io.Writer, layers, counter uint8) error {
	if layers > 5 {
		return gohkb.ErrLogLayers
	}

	fmt.Fprintf(w, "ordinary @%v with %d edges", n.pos, len(n.edges))
	if layers == 0 {
		return nil
	}

	fmt.Fprint(w, " to")
	for _, e := range n.edges.Sorted() {
		fmt.Fprintln(w)
		writeTabs(w, counter+1)
		if err := e.Other(n).Log(w, layers-1, counter+1); err != nil {
			return err
		}
	}
	return nil
}

func (n *Ordinary) Attach(e *gohkb.Edge) bool {
	n.edges.Add(e)
	return true
}

func (n *Ordinary) Detach(e *gohkb.Edge) {
	n.edges.Remove(e)
}

func writeTabs(w io.Writer, count uint8) {
	for i := uint8(0); i < count; i++ {
		io.WriteString(w, "\t")
	}
}
