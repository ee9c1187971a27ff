package libhkb

import (
	"github.com/hkb3d/gohkb/gohkb"
)

// VisibleNodes returns the nodes inside [bl, tr] reachable from root within maxDepth hops.
func VisibleNodes(root gohkb.Node, bl, tr gohkb.Vec3, maxDepth int32) gohkb.NodeSet {
	s := gohkb.NewSearch(bl, tr)
	s.Visit(root, maxDepth)
	return s.Found
}

// CollectEdges asks each node for its incident (or synthesized) edges.
func CollectEdges(nodes gohkb.NodeSet, maxBreadth int32) gohkb.EdgeSet {
	edges := make(gohkb.EdgeSet)
	for n := range nodes {
		n.Render(edges, maxBreadth)
	}
	for e := range edges {
		if !e.Live {
			edges.Remove(e)
		}
	}
	return edges
}
