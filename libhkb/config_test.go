package libhkb

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hkb3d/gohkb/gohkb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	pathname := filepath.Join(dir, "hkb.yaml")
	require.NoError(t, os.WriteFile(pathname, []byte("max_depth: 64\ngeometric_rate: 0.5\nfraction_catalog: /tmp/fractions\n"), 0600))

	cfg, err := LoadConfig(pathname)
	require.NoError(t, err)
	assert.Equal(t, int32(64), cfg.MaxDepth)
	assert.Equal(t, 0.5, cfg.GeometricRate)
	assert.Equal(t, gohkb.DefaultMaxBreadth, cfg.MaxBreadth)
	assert.Equal(t, "/tmp/fractions", cfg.FractionCatalog)

	bl, tr := cfg.ViewBox(vec(0, 0, 0))
	assert.Equal(t, vec(-15, -15, -15), bl)
	assert.Equal(t, vec(15, 15, 15), tr)
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.GeometricRate = 1
	assert.ErrorIs(t, cfg.Validate(), gohkb.ErrBadConfig)

	cfg = DefaultConfig()
	cfg.MaxDepth = 0
	assert.ErrorIs(t, cfg.Validate(), gohkb.ErrBadConfig)

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
