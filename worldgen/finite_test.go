package worldgen

import (
	"bytes"
	"testing"

	"github.com/hkb3d/gohkb/gohkb"
	"github.com/hkb3d/gohkb/libhkb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateDeterministic(t *testing.T) {
	opts := DefaultGenOpts()
	opts.Seed = 42

	var a, b bytes.Buffer
	require.NoError(t, Generate(opts, &a))
	require.NoError(t, Generate(opts, &b))
	assert.Equal(t, a.String(), b.String())
	assert.NotEmpty(t, a.String())

	opts.Seed = 43
	var c bytes.Buffer
	require.NoError(t, Generate(opts, &c))
	assert.NotEqual(t, a.String(), c.String())
}

func TestRandomWorldShape(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		opts := DefaultGenOpts()
		opts.Seed = seed
		desc := Random(opts)

		grounded := 0
		for i, node := range desc.Nodes {
			if node.Pos.Y != 0 {
				continue
			}
			grounded++
			require.NotEmpty(t, node.Links, "seed %d: grounded node %d has no branch", seed, i)
			for _, link := range node.Links {
				assert.NotEqual(t, 0.0, desc.Nodes[link.To].Pos.Y)
			}
		}
		require.Greater(t, grounded, 0)
		require.Less(t, grounded, len(desc.Nodes))

		var buf bytes.Buffer
		require.NoError(t, Format(&buf, desc))
		parsed, skipped := Parse(&buf, "random")
		require.Empty(t, skipped)

		world := libhkb.NewWorld(libhkb.DefaultConfig())
		require.Empty(t, world.Build(parsed))
		assert.Len(t, world.Grounded(), grounded)

		bl := gohkb.Vec3{X: -opts.XZRadius, Y: 0, Z: -opts.XZRadius}
		tr := gohkb.Vec3{X: opts.XZRadius, Y: opts.YMax, Z: opts.XZRadius}
		assert.NotEmpty(t, world.VisibleEdges(bl, tr))
	}
}
