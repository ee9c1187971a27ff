package libhkb

import (
	"fmt"
	"io"
	"sync"

	"github.com/emirpasic/gods/trees/redblacktree"
	"github.com/emirpasic/gods/utils"
	"github.com/hkb3d/gohkb/gohkb"
)

// ChainOpts specifies the generator contract of a chain.
type ChainOpts struct {
	Dir   gohkb.Vec3
	Types gohkb.TypeGen
	Steps gohkb.StepGen

	// Cap is the first order the chain may never reach; zero means uncapped.
	Cap int64
}

// ChainRoot anchors an infinite, procedurally generated chain of nodes.
//
// The root is order 0.  Elements of order >= 1 are created on first visit and cached by order.  If the
// chain converges, its limit point is an Ordinary node other edges may attach to.
type ChainRoot struct {
	pos   gohkb.Vec3
	dir   gohkb.Vec3
	types gohkb.TypeGen
	steps gohkb.StepGen
	limit *Ordinary

	mu           sync.Mutex
	cap          int64
	elems        *redblacktree.Tree // int64 => *ChainElement, for ordered truncation
	byOrder      map[int64]*ChainElement
	next         *gohkb.Edge        // link to order 1
	anchors      gohkb.EdgeSet
	materialized int64
}

// ChainElement is a lazily created node of a chain.  It is only reachable through its root.
type ChainElement struct {
	root  *ChainRoot
	order int64
	pos   gohkb.Vec3
	next  *gohkb.Edge // link to order+1
}

func NewChainRoot(pos gohkb.Vec3, opts ChainOpts) *ChainRoot {
	root := &ChainRoot{
		pos:     pos,
		dir:     opts.Dir,
		types:   opts.Types,
		steps:   opts.Steps,
		cap:     gohkb.OrderInf,
		elems:   redblacktree.NewWith(utils.Int64Comparator),
		byOrder: make(map[int64]*ChainElement),
		anchors: make(gohkb.EdgeSet),
	}
	if opts.Cap > 0 {
		root.cap = opts.Cap
	}
	if end, converges := opts.Steps.Step(gohkb.OrderInf, pos, opts.Dir); converges {
		root.limit = NewOrdinary(end)
	}
	return root
}

func (root *ChainRoot) Pos() gohkb.Vec3 {
	return root.pos
}

func (root *ChainRoot) Dir() gohkb.Vec3 {
	return root.dir
}

func (root *ChainRoot) Steps() gohkb.StepGen {
	return root.steps
}

// TypeAt returns the color of the link between order and order+1.
func (root *ChainRoot) TypeAt(order int64) gohkb.BranchType {
	return root.types(order)
}

// Limit returns the node at the chain's limit point, or nil if the chain diverges.
func (root *ChainRoot) Limit() *Ordinary {
	return root.limit
}

// Cap returns the first forbidden order, or OrderInf if the chain is uncapped.
func (root *ChainRoot) Cap() int64 {
	root.mu.Lock()
	defer root.mu.Unlock()
	return root.cap
}

// NumMaterialized returns how many elements this chain has ever created.
func (root *ChainRoot) NumMaterialized() int64 {
	root.mu.Lock()
	defer root.mu.Unlock()
	return root.materialized
}

// NumCached returns how many elements are currently cached.
func (root *ChainRoot) NumCached() int {
	root.mu.Lock()
	defer root.mu.Unlock()
	return root.elems.Size()
}

// Element returns the cached node of the given order (the root itself for order 0).
func (root *ChainRoot) Element(order int64) (gohkb.Node, bool) {
	if order == 0 {
		return root, true
	}
	root.mu.Lock()
	defer root.mu.Unlock()
	if elem := root.byOrder[order]; elem != nil {
		return elem, true
	}
	return nil, false
}

func (root *ChainRoot) Expand(s *gohkb.Search, depth int32) error {
	root.mu.Lock()
	anchors := make([]*gohkb.Edge, 0, len(root.anchors))
	for e := range root.anchors {
		anchors = append(anchors, e)
	}
	root.mu.Unlock()

	for _, e := range anchors {
		s.Visit(e.Other(root), depth-1)
	}

	root.Materialize(s, depth)
	return nil
}

// Materialize adds the chain elements inside the search box to s.Found, creating only those elements.
//
// The walk starts at the first order the step generator's inverse reports and stops at the first order
// outside the box, at the cap, or after depth elements.  A converging, uncapped chain first visits its
// limit node with half the budget.
func (root *ChainRoot) Materialize(s *gohkb.Search, depth int32) {
	first := root.steps.Inverse(s.BL, s.TR, root.pos, root.dir)
	if first == gohkb.NotFound {
		metricChainPruned.Inc()
		return
	}

	if root.limit != nil && root.Cap() == gohkb.OrderInf {
		depth /= 2
		s.Visit(root.limit, depth)
	}

	root.mu.Lock()
	defer root.mu.Unlock()

	order := first
	if order < 1 {
		order = 1
	}
	for count := int32(0); count < depth && order < root.cap; count++ {
		pos, ok := root.steps.Step(order, root.pos, root.dir)
		if !ok || !s.Contains(pos) {
			break
		}
		s.Include(root.element(order, pos))
		order++
	}
}

// element fetches or creates the element of the given order.  root.mu must be held.
func (root *ChainRoot) element(order int64, pos gohkb.Vec3) *ChainElement {
	if elem := root.byOrder[order]; elem != nil {
		metricChainHits.Inc()
		return elem
	}

	elem := &ChainElement{
		root:  root,
		order: order,
		pos:   pos,
	}
	root.elems.Put(order, elem)
	root.byOrder[order] = elem
	root.materialized++
	metricChainMaterialized.Inc()
	return elem
}

// link returns the edge between order and order+1, synthesizing it on first use.
// Returns nil unless both endpoints are cached.  root.mu must be held.
func (root *ChainRoot) link(order int64) *gohkb.Edge {
	if order < 0 || order+1 >= root.cap {
		return nil
	}
	upper := root.byOrder[order+1]
	if upper == nil {
		return nil
	}

	var lower gohkb.Node
	slot := &root.next
	if order > 0 {
		elem := root.byOrder[order]
		if elem == nil {
			return nil
		}
		lower, slot = elem, &elem.next
	} else {
		lower = root
	}

	if *slot == nil {
		t := root.types(order)
		if t == gohkb.Invalid {
			return nil
		}
		*slot = &gohkb.Edge{
			A:     lower,
			B:     upper,
			Type:  t,
			Chain: root,
			Order: order,
			Live:  true,
		}
	}
	return *slot
}

func (root *ChainRoot) Render(edges gohkb.EdgeSet, maxBreadth int32) {
	root.mu.Lock()
	defer root.mu.Unlock()

	count := int32(0)
	for e := range root.anchors {
		if count >= maxBreadth {
			break
		}
		edges.Add(e)
		count++
	}
	if e := root.link(0); e != nil {
		edges.Add(e)
	}
}

func (root *ChainRoot) Log(w io.Writer, layers, counter uint8) error {
	if layers > 5 {
		return gohkb.ErrLogLayers
	}

	root.mu.Lock()
	defer root.mu.Unlock()

	fmt.Fprintf(w, "chain root @%v (%s) with %d generated children", root.pos, root.steps.Name(), root.elems.Size())
	if root.cap != gohkb.OrderInf {
		fmt.Fprintf(w, ", capped at %d", root.cap)
	}
	if layers == 0 {
		return nil
	}

	for it := root.elems.Iterator(); it.Next(); {
		fmt.Fprintln(w)
		writeTabs(w, counter+1)
		if err := it.Value().(*ChainElement).Log(w, layers-1, counter+1); err != nil {
			return err
		}
	}
	return nil
}

// Attach accepts edges anchoring the chain to the rest of the graph.
func (root *ChainRoot) Attach(e *gohkb.Edge) bool {
	root.mu.Lock()
	root.anchors.Add(e)
	root.mu.Unlock()
	return true
}

func (root *ChainRoot) Detach(e *gohkb.Edge) {
	if e.Chain == root {
		root.DetachOrder(e.Order + 1)
		return
	}
	root.mu.Lock()
	root.anchors.Remove(e)
	root.mu.Unlock()
}

// DetachOrder caps the chain at order, freeing every cached element of order >= order and the link
// held by the nearest lower element.  Raising an existing cap has no effect.
func (root *ChainRoot) DetachOrder(order int64) {
	if order < 0 {
		order = 0
	}

	root.mu.Lock()
	defer root.mu.Unlock()

	if order > root.cap {
		return
	}
	root.cap = order

	for {
		node, found := root.elems.Ceiling(order)
		if !found {
			break
		}
		node.Value.(*ChainElement).release()
		root.elems.Remove(node.Key)
		delete(root.byOrder, node.Key.(int64))
	}

	var next **gohkb.Edge
	if node, found := root.elems.Floor(order - 1); found {
		next = &node.Value.(*ChainElement).next
	} else {
		next = &root.next
	}
	if *next != nil {
		(*next).Live = false
		*next = nil
	}
}

func (elem *ChainElement) release() {
	if elem.next != nil {
		elem.next.Live = false
		elem.next = nil
	}
}

func (elem *ChainElement) Pos() gohkb.Vec3 {
	return elem.pos
}

func (elem *ChainElement) Order() int64 {
	return elem.order
}

func (elem *ChainElement) Root() *ChainRoot {
	return elem.root
}

func (elem *ChainElement) Expand(s *gohkb.Search, depth int32) error {
	return gohkb.ErrNotQueryable
}

// Render adds the links toward and away from the root, if their neighbors are cached.
func (elem *ChainElement) Render(edges gohkb.EdgeSet, maxBreadth int32) {
	root := elem.root
	root.mu.Lock()
	defer root.mu.Unlock()

	if e := root.link(elem.order - 1); e != nil {
		edges.Add(e)
	}
	if e := root.link(elem.order); e != nil {
		edges.Add(e)
	}
}

func (elem *ChainElement) Log(w io.Writer, layers, counter uint8) error {
	if layers > 5 {
		return gohkb.ErrLogLayers
	}
	fmt.Fprintf(w, "chain element #%d @%v", elem.order, elem.pos)
	return nil
}

// Attach always rejects: new connections are made at the chain root or its limit node.
func (elem *ChainElement) Attach(e *gohkb.Edge) bool {
	return false
}

func (elem *ChainElement) Detach(e *gohkb.Edge) {
	if e.Chain == elem.root {
		elem.root.DetachOrder(e.Order + 1)
	}
}
