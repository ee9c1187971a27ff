package libhkb

import (
	"os"

	"github.com/hkb3d/gohkb/gohkb"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config holds engine tunables.
type Config struct {
	// MaxDepth bounds hops per visibility search seed.
	MaxDepth int32 `yaml:"max_depth"`

	// MaxBreadth bounds edges rendered per node.
	MaxBreadth int32 `yaml:"max_breadth"`

	// GeometricRate is the rate used by geometric chains.
	GeometricRate float64 `yaml:"geometric_rate"`

	// RenderDistance is the half-size of the default query box around a viewer.
	RenderDistance float64 `yaml:"render_distance"`

	// FractionCatalog is a badger directory persisting fraction expansions.  Empty disables persistence.
	FractionCatalog string `yaml:"fraction_catalog"`

	// MetricsAddr serves Prometheus metrics when set (e.g. ":9464").
	MetricsAddr string `yaml:"metrics_addr"`
}

func DefaultConfig() Config {
	return Config{
		MaxDepth:       gohkb.DefaultMaxDepth,
		MaxBreadth:     gohkb.DefaultMaxBreadth,
		GeometricRate:  gohkb.GeometricRate,
		RenderDistance: 15,
	}
}

// LoadConfig reads a yaml config file over DefaultConfig().
func LoadConfig(pathname string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(pathname)
	if err != nil {
		return cfg, errors.Wrapf(err, "reading config %q", pathname)
	}
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parsing config %q", pathname)
	}
	return cfg, cfg.Validate()
}

func (cfg *Config) Validate() error {
	if cfg.MaxDepth <= 0 {
		return errors.Wrapf(gohkb.ErrBadConfig, "max_depth must be > 0 (got %d)", cfg.MaxDepth)
	}
	if cfg.MaxBreadth <= 0 {
		return errors.Wrapf(gohkb.ErrBadConfig, "max_breadth must be > 0 (got %d)", cfg.MaxBreadth)
	}
	if cfg.GeometricRate <= 0 || cfg.GeometricRate >= 1 {
		return errors.Wrapf(gohkb.ErrBadConfig, "geometric_rate must be in (0,1) (got %v)", cfg.GeometricRate)
	}
	if cfg.RenderDistance <= 0 {
		return errors.Wrapf(gohkb.ErrBadConfig, "render_distance must be > 0 (got %v)", cfg.RenderDistance)
	}
	return nil
}

// ViewBox returns the query box of RenderDistance around the given point.
func (cfg *Config) ViewBox(at gohkb.Vec3) (bl, tr gohkb.Vec3) {
	d := gohkb.Vec3{X: cfg.RenderDistance, Y: cfg.RenderDistance, Z: cfg.RenderDistance}
	return at.Sub(d), at.Add(d)
}
