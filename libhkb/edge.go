package libhkb

import (
	"github.com/hkb3d/gohkb/gohkb"
	"github.com/pkg/errors"
)

// Attach creates an edge of the given type between n1 and n2 and offers it to both endpoints.
//
// The edge is attached if at least one endpoint accepts it; incidence on a single live endpoint is
// enough for reachability from the ground.  If neither accepts, or either endpoint is a chain element,
// the edge is discarded and ErrIllegalAttach is returned.  A chain is joined at its root or limit node.
func Attach(t gohkb.BranchType, n1, n2 gohkb.Node) (*gohkb.Edge, error) {
	if isChainElement(n1) || isChainElement(n2) {
		return nil, errors.Wrapf(gohkb.ErrIllegalAttach, "%v %v -> %v: chain elements take no edges", t, n1.Pos(), n2.Pos())
	}

	e := &gohkb.Edge{
		A:    n1,
		B:    n2,
		Type: t,
	}

	ok1 := n1.Attach(e)
	ok2 := n2.Attach(e)
	if !ok1 && !ok2 {
		return nil, errors.Wrapf(gohkb.ErrIllegalAttach, "%v %v -> %v", t, n1.Pos(), n2.Pos())
	}

	e.Live = true
	return e, nil
}

func isChainElement(n gohkb.Node) bool {
	_, isElem := n.(*ChainElement)
	return isElem
}

// Detach removes e from both endpoints and releases it.
//
// A link synthesized by a chain is released through the chain, capping it just past the link's lower element.
func Detach(e *gohkb.Edge) {
	if e.Chain != nil {
		e.Chain.DetachOrder(e.Order + 1)
		e.Live = false
		return
	}
	SoftDetach(e)
	e.Live = false
}

// SoftDetach removes e from both endpoints' incidence but leaves e live.
//
// This is used when ownership of e moves elsewhere; the caller is responsible for eventually calling Detach().
func SoftDetach(e *gohkb.Edge) {
	e.A.Detach(e)
	e.B.Detach(e)
}
