package libhkb

import (
	"strings"
	"testing"

	"github.com/hkb3d/gohkb/gohkb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func connect(t *testing.T, bt gohkb.BranchType, a, b gohkb.Node) *gohkb.Edge {
	e, err := Attach(bt, a, b)
	require.NoError(t, err)
	return e
}

func TestSearchBoundaryInclusion(t *testing.T) {
	bl, tr := vec(-1, 0, -1), vec(1, 2, 1)

	g := NewOrdinary(vec(0, 0, 0))
	atBL := NewOrdinary(bl)
	atTR := NewOrdinary(tr)
	onFace := NewOrdinary(vec(1, 1, 0))
	outside := NewOrdinary(vec(1.0001, 1, 0))
	connect(t, G, g, atBL)
	connect(t, G, g, atTR)
	connect(t, G, g, onFace)
	connect(t, G, g, outside)

	found := VisibleNodes(g, bl, tr, gohkb.DefaultMaxDepth)
	assert.True(t, found.Has(g))
	assert.True(t, found.Has(atBL))
	assert.True(t, found.Has(atTR))
	assert.True(t, found.Has(onFace))
	assert.False(t, found.Has(outside))
}

func TestSearchDepth(t *testing.T) {
	bl, tr := vec(-10, -10, -10), vec(10, 10, 10)

	path := []*Ordinary{NewOrdinary(vec(0, 0, 0))}
	for i := 1; i < 6; i++ {
		n := NewOrdinary(vec(0, float64(i), 0))
		connect(t, R, path[i-1], n)
		path = append(path, n)
	}

	assert.Len(t, VisibleNodes(path[0], bl, tr, 0), 1)
	assert.Len(t, VisibleNodes(path[0], bl, tr, 2), 3)
	assert.Len(t, VisibleNodes(path[0], bl, tr, gohkb.DefaultMaxDepth), 6)
}

func TestSearchCycleAndExcludedRegions(t *testing.T) {
	bl, tr := vec(-1, 0, -1), vec(1, 3, 1)

	// g - a - out - b - g, where out lies outside the box
	g := NewOrdinary(vec(0, 0, 0))
	a := NewOrdinary(vec(0, 1, 0))
	out := NewOrdinary(vec(5, 1, 0))
	b := NewOrdinary(vec(0, 2, 0))
	beyond := NewOrdinary(vec(0, 3, 0))
	connect(t, G, g, a)
	connect(t, G, a, out)
	connect(t, G, out, b)
	connect(t, G, b, g)
	connect(t, B, out, beyond)

	found := VisibleNodes(g, bl, tr, gohkb.DefaultMaxDepth)
	assert.Len(t, found, 4)
	assert.False(t, found.Has(out))

	// nodes outside the box are still traversed
	found = VisibleNodes(out, bl, tr, 1)
	assert.True(t, found.Has(beyond))
	assert.True(t, found.Has(b))
	assert.False(t, found.Has(g))
}

func TestSearchReset(t *testing.T) {
	bl, tr := vec(-1, 0, -1), vec(1, 3, 1)
	out := NewOrdinary(vec(5, 0, 0))
	in := NewOrdinary(vec(0, 1, 0))
	connect(t, G, out, in)

	s := gohkb.NewSearch(bl, tr)
	s.Visit(out, 0)
	assert.True(t, s.Seen(out))
	assert.Empty(t, s.Found)

	// a second seed in the same query does not descend into out again
	s.Visit(out, 5)
	assert.False(t, s.Found.Has(in))

	s.Reset()
	s.Visit(out, 5)
	assert.True(t, s.Found.Has(in))
}

func TestOrdinaryLog(t *testing.T) {
	g := NewOrdinary(vec(0, 0, 0))
	n := NewOrdinary(vec(0, 1, 0))
	connect(t, R, g, n)

	var sb strings.Builder
	require.NoError(t, g.Log(&sb, 2, 0))
	assert.Equal(t, "ordinary @(0,0,0) with 1 edges to\n\tordinary @(0,1,0) with 1 edges to\n\t\tordinary @(0,0,0) with 1 edges", sb.String())

	assert.ErrorIs(t, g.Log(&sb, 6, 0), gohkb.ErrLogLayers)
}
