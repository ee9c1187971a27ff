package pyhkb_test

import (
	"testing"

	"github.com/go-python/gpython/py"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/go-python/gpython/stdlib"
	"github.com/hkb3d/gohkb/pyhkb"
)

const moduleSrc = `
import _pyhkb as hkb

w = hkb.World()
w.LoadDefault()
n = w.VisibleEdges(0.0, -1.0, -1.0, 16.0, 15.0, 15.0)
chains = w.NumChains()
exp = hkb.FractionExpansion(2, 3)
first = hkb.FractionBranch(0, 2, 3)

try:
    hkb.FractionBranch(0, 1, 4)
    rejected = False
except ValueError:
    rejected = True

try:
    w.Edge(n)
    outOfRange = False
except IndexError:
    outOfRange = True
`

func TestModule(t *testing.T) {
	ctx := py.NewContext(py.DefaultContextOpts())
	defer func() {
		ctx.Close()
		<-ctx.Done()
	}()

	mod, err := py.RunSrc(ctx, moduleSrc, "<test>", nil)
	require.NoError(t, err)

	assert.Equal(t, py.Int(130), mod.Globals["n"])
	assert.Equal(t, py.Int(1), mod.Globals["chains"])
	assert.Equal(t, py.String("0.(10)"), mod.Globals["exp"])
	assert.Equal(t, py.Int(-1), mod.Globals["first"])
	assert.Equal(t, py.True, mod.Globals["rejected"])
	assert.Equal(t, py.True, mod.Globals["outOfRange"])
}

func TestPrelude(t *testing.T) {
	ctx := py.NewContext(py.DefaultContextOpts())
	defer func() {
		ctx.Close()
		<-ctx.Done()
	}()

	mod, err := py.RunSrc(ctx, pyhkb.Prelude, "<prelude>", nil)
	require.NoError(t, err)
	_, err = py.RunSrc(ctx, "v = hkb.LIB_VERSION\nd = hkb.DEFAULT_MAX_DEPTH", "<test>", mod)
	require.NoError(t, err)

	assert.Equal(t, py.String(pyhkb.LIB_VERSION), mod.Globals["v"])
	assert.Contains(t, mod.Globals, "d")
}
