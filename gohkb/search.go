package gohkb

import (
	"errors"

	"github.com/plan-systems/klog"
)

// Search holds the state of one top-level visibility query over the box [BL, TR].
//
// Found holds the nodes inside the box.  Nodes that were examined but fell outside the box are kept
// in a separate set so a single query never descends into them twice.
type Search struct {
	BL, TR Vec3
	Found  NodeSet

	excluded NodeSet
}

func NewSearch(bl, tr Vec3) *Search {
	return &Search{
		BL:       bl,
		TR:       tr,
		Found:    make(NodeSet),
		excluded: make(NodeSet),
	}
}

// Reset clears the excluded set for a new top-level call.  Found is kept so results accumulate across seeds.
func (s *Search) Reset() {
	s.excluded.Clear()
}

// Contains returns true if p lies in the closed query box.
func (s *Search) Contains(p Vec3) bool {
	return p.In(s.BL, s.TR)
}

// Seen returns true if n was already examined during this query.
func (s *Search) Seen(n Node) bool {
	return s.Found.Has(n) || s.excluded.Has(n)
}

// Include adds n to the result without expanding it.
func (s *Search) Include(n Node) {
	s.Found.Add(n)
}

// Visit box tests n and, if depth > 0, expands the search past it.
func (s *Search) Visit(n Node, depth int32) {
	if s.Seen(n) {
		return
	}
	if s.Contains(n.Pos()) {
		s.Found.Add(n)
	} else {
		s.excluded.Add(n)
	}

	if depth <= 0 {
		return
	}
	if err := n.Expand(s, depth); err != nil {
		if errors.Is(err, ErrNotQueryable) {
			klog.V(3).Infof("search: treating %v as a leaf: %v", n.Pos(), err)
			return
		}
		klog.Warningf("search: expand %v failed: %v", n.Pos(), err)
	}
}
