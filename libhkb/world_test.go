package libhkb

import (
	"strings"
	"testing"

	"github.com/hkb3d/gohkb/gohkb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWorld() *World {
	return NewWorld(DefaultConfig())
}

func TestWorldGroundedRedEdge(t *testing.T) {
	world := newTestWorld()
	g := NewOrdinary(vec(0, 0, 0))
	n1 := NewOrdinary(vec(0, 1, 0))
	world.AddNode(g)
	world.AddNode(n1)
	e, err := world.Connect(R, g, n1)
	require.NoError(t, err)

	bl, tr := vec(-1, -1, -1), vec(1, 2, 1)
	nodes := world.VisibleNodes(bl, tr)
	assert.Equal(t, gohkb.NodeSet{g: {}, n1: {}}, nodes)

	edges := world.VisibleEdges(bl, tr)
	require.Len(t, edges, 1)
	assert.True(t, edges.Has(e))
	assert.Equal(t, R, e.Type)
}

func TestWorldChopRules(t *testing.T) {
	world := newTestWorld()
	g := NewOrdinary(vec(0, 0, 0))
	n1 := NewOrdinary(vec(0, 1, 0))
	n2 := NewOrdinary(vec(0, 2, 0))
	world.AddNode(g)
	world.AddNode(n1)
	world.AddNode(n2)
	red, err := world.Connect(R, g, n1)
	require.NoError(t, err)
	green, err := world.Connect(G, n1, n2)
	require.NoError(t, err)

	bl, tr := vec(-1, -1, -1), vec(1, 3, 1)

	// the blue player may not touch red
	assert.False(t, world.Chop(red, gohkb.BluePlayer))
	assert.True(t, red.Live)
	assert.Len(t, world.VisibleEdges(bl, tr), 2)
	assert.Equal(t, 2, world.NumEdges())

	// green is open to both
	assert.True(t, world.Chop(green, gohkb.BluePlayer))
	assert.False(t, green.Live)
	assert.False(t, world.Chop(green, gohkb.RedPlayer), "an edge can only be chopped once")
	assert.Len(t, world.VisibleEdges(bl, tr), 1)

	assert.False(t, world.Chop(nil, gohkb.RedPlayer))
	assert.True(t, world.Chop(red, gohkb.RedPlayer))
	assert.Equal(t, 0, world.NumEdges())
	assert.Nil(t, world.EdgeBetween(g, n1))
}

func TestWorldChopDropsUngroundedNodes(t *testing.T) {
	world := newTestWorld()
	world.Build(&gohkb.WorldDesc{
		Nodes: []gohkb.NodeDesc{
			{Pos: vec(0, 0, 0), Links: []gohkb.LinkDesc{{To: 1, Type: G}}},
			{Pos: vec(0, 1, 0), Links: []gohkb.LinkDesc{{To: 2, Type: B}}},
			{Pos: vec(0, 2, 0)},
		},
	})
	nodes := world.Nodes()
	bl, tr := vec(-1, -1, -1), vec(1, 3, 1)
	require.Len(t, world.VisibleNodes(bl, tr), 3)

	stem := world.EdgeBetween(nodes[0], nodes[1])
	require.NotNil(t, stem)
	require.True(t, world.Chop(stem, gohkb.RedPlayer))

	visible := world.VisibleNodes(bl, tr)
	assert.Len(t, visible, 1)
	assert.True(t, visible.Has(nodes[0]))
	assert.Empty(t, world.VisibleEdges(bl, tr))
}

func TestWorldDefault(t *testing.T) {
	world := newTestWorld()
	world.LoadDefault()

	require.Len(t, world.Grounded(), 1)
	require.Len(t, world.Chains(), 1)
	chain := world.Chains()[0]

	bl, tr := vec(0, -1, -1), vec(16, 15, 15)
	edges := world.VisibleEdges(bl, tr)

	var ordinary, links []*gohkb.Edge
	for _, e := range edges.Sorted() {
		if e.Chain != nil {
			links = append(links, e)
		} else {
			ordinary = append(ordinary, e)
		}
	}
	require.Len(t, ordinary, 3)
	assert.Equal(t, G, ordinary[0].Type)

	// ground -> stalk -> root leaves 254 hops, half of which go to the limit node
	assert.Len(t, links, 127)
	assert.Equal(t, int64(127), chain.NumMaterialized())
	assert.True(t, world.VisibleNodes(bl, tr).Has(chain.Limit()))

	var link10 *gohkb.Edge
	for _, e := range links {
		assert.Equal(t, G, e.Type)
		if e.Order == 10 {
			link10 = e
		}
	}
	require.NotNil(t, link10)
	require.True(t, world.Chop(link10, gohkb.RedPlayer))
	assert.Equal(t, int64(11), chain.Cap())

	visible := world.VisibleNodes(bl, tr)
	for n := range visible {
		if elem, isElem := n.(*ChainElement); isElem {
			assert.Less(t, elem.Order(), int64(11))
		}
	}
	assert.False(t, visible.Has(chain.Limit()))
	assert.Equal(t, int64(127), chain.NumMaterialized())

	var sb strings.Builder
	require.NoError(t, world.Log(&sb, 2))
	assert.Contains(t, sb.String(), "chain root @(8,2,1)")
	assert.ErrorIs(t, world.Log(&sb, 6), gohkb.ErrLogLayers)
}

func TestWorldBuildSoftRecovery(t *testing.T) {
	world := newTestWorld()
	skipped := world.Build(&gohkb.WorldDesc{
		Name: "broken",
		Nodes: []gohkb.NodeDesc{
			{Pos: vec(0, 0, 0), Links: []gohkb.LinkDesc{{To: 1, Type: G}, {To: 7, Type: R}}},
			{Pos: vec(0, 1, 0), Links: []gohkb.LinkDesc{{To: 0, Type: B}}},
			{Pos: vec(1, 1, 0), Chain: &gohkb.ChainDesc{Dir: vec(0, 1, 0), Step: "q"}},
			{Pos: vec(2, 1, 0), Chain: &gohkb.ChainDesc{Dir: vec(0, 1, 0), Step: "g", Fraction: true, Num: 1, Den: -3}},
		},
	})
	require.Len(t, skipped, 4)
	assert.ErrorIs(t, skipped[0], gohkb.ErrUnknownGenerator)
	assert.ErrorIs(t, skipped[1], gohkb.ErrBadFraction)
	assert.ErrorIs(t, skipped[2], gohkb.ErrBadNodeID)
	assert.ErrorIs(t, skipped[3], gohkb.ErrDuplicateEdge)

	// the bad chains fall back to ordinary nodes; the first edge survives
	assert.Len(t, world.Nodes(), 4)
	assert.Empty(t, world.Chains())
	assert.Equal(t, 1, world.NumEdges())
}

func TestWorldRejectsZeroDirection(t *testing.T) {
	world := newTestWorld()
	skipped := world.Build(&gohkb.WorldDesc{
		Nodes: []gohkb.NodeDesc{
			{Pos: vec(0, 0, 0), Links: []gohkb.LinkDesc{{To: 1, Type: G}}},
			{Pos: vec(0, 1, 0), Chain: &gohkb.ChainDesc{Dir: vec(0, 0, 0), Step: "g", Type: G}},
		},
	})
	require.Len(t, skipped, 1)
	assert.ErrorIs(t, skipped[0], gohkb.ErrZeroDirection)
	assert.Empty(t, world.Chains())

	found := world.VisibleNodes(vec(-1, -1, -1), vec(1, 2, 1))
	assert.Len(t, found, 2)
}

func TestWorldFractionChains(t *testing.T) {
	world := newTestWorld()
	world.Build(&gohkb.WorldDesc{
		Nodes: []gohkb.NodeDesc{
			{Pos: vec(0, 0, 0), Chain: &gohkb.ChainDesc{Dir: vec(0, 3, 0), Step: "g", Fraction: true, Num: 2, Den: 3}},
			{Pos: vec(1, 0, 0), Chain: &gohkb.ChainDesc{Dir: vec(0, 3, 0), Step: "g", Fraction: true, Num: 5, Den: 4}},
			{Pos: vec(2, 0, 0), Chain: &gohkb.ChainDesc{Dir: vec(0, 3, 0), Step: "l", Fraction: true, Num: -1, Den: 0}},
			{Pos: vec(3, 0, 0), Chain: &gohkb.ChainDesc{Dir: vec(0, 3, 0), Step: "l", Type: R}},
		},
	})
	chains := world.Chains()
	require.Len(t, chains, 4)
	require.Len(t, world.Grounded(), 4)

	assert.Equal(t, []gohkb.BranchType{R, B, R, B}, branches(chains[0].TypeAt, 4))
	assert.Equal(t, gohkb.OrderInf, chains[0].Cap())

	assert.Equal(t, []gohkb.BranchType{R, B, R}, branches(chains[1].TypeAt, 3))
	assert.Equal(t, int64(4), chains[1].Cap())

	assert.Equal(t, B, chains[2].TypeAt(9))
	assert.Nil(t, chains[2].Limit())
	assert.Equal(t, R, chains[3].TypeAt(9))

	// the dyadic chain shows its three links and no more
	bl, tr := vec(0.5, -1, -1), vec(1.5, 10, 1)
	links := 0
	for e := range world.VisibleEdges(bl, tr) {
		if e.Chain == gohkb.Chain(chains[1]) {
			links++
		}
	}
	assert.Equal(t, 3, links)
}
