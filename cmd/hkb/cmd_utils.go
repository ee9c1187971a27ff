package main

import (
	"io"
	"net/http"
	"sync"

	"github.com/hkb3d/gohkb/gohkb"
	"github.com/hkb3d/gohkb/libhkb"
	"github.com/hkb3d/gohkb/libhkb/catalog"
	"github.com/hkb3d/gohkb/worldgen"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

// loadConfig reads --config (if given) and applies flag overrides.
func loadConfig() (libhkb.Config, error) {
	cfg := libhkb.DefaultConfig()
	if configPath != "" {
		var err error
		if cfg, err = libhkb.LoadConfig(configPath); err != nil {
			return cfg, err
		}
	}
	if metricsAddr != "" {
		cfg.MetricsAddr = metricsAddr
	}
	return cfg, nil
}

var metricsOnce sync.Once

func serveMetrics(addr string) {
	if addr == "" {
		return
	}
	metricsOnce.Do(func() { listenMetrics(addr) })
}

func listenMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		klog.V(1).Infof("serving metrics on %s/metrics", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			klog.Warningf("metrics server: %v", err)
		}
	}()
}

// session is a world plus the resources backing it.
type session struct {
	cfg   libhkb.Config
	world *libhkb.World
	cat   *catalog.Catalog
}

// openSession builds the world at pathname, or the default world if pathname is empty.
func openSession(pathname string) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	serveMetrics(cfg.MetricsAddr)

	sess := &session{
		cfg:   cfg,
		world: libhkb.NewWorld(cfg),
	}
	if cfg.FractionCatalog != "" {
		if sess.cat, err = catalog.Open(catalog.Opts{DbPathName: cfg.FractionCatalog}); err != nil {
			return nil, err
		}
		sess.world.Fractions().SetStore(sess.cat)
	}

	if err = sess.load(pathname); err != nil {
		sess.Close()
		return nil, err
	}
	return sess, nil
}

func (sess *session) load(pathname string) error {
	if pathname == "" {
		sess.world.LoadDefault()
		return nil
	}
	desc, skipped, err := worldgen.ParseFile(pathname)
	if err != nil {
		return err
	}
	skipped = append(skipped, sess.world.Build(desc)...)
	if len(skipped) > 0 {
		klog.V(1).Infof("%s: %d lines skipped", pathname, len(skipped))
	}
	return nil
}

func (sess *session) Close() {
	if sess.cat != nil {
		sess.world.Fractions().SetStore(nil)
		if err := sess.cat.Close(); err != nil {
			klog.Warningf("closing catalog: %v", err)
		}
		sess.cat = nil
	}
}

// boxFlags selects a query box either explicitly or as the view box around a point.
type boxFlags struct {
	at  []float64
	box []float64
}

func (bf *boxFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64SliceVar(&bf.at, "at", []float64{0, 0, 0}, "viewer position x,y,z (box is render_distance around it)")
	cmd.Flags().Float64SliceVar(&bf.box, "box", nil, "explicit box x0,y0,z0,x1,y1,z1")
}

func (bf *boxFlags) resolve(cfg *libhkb.Config) (bl, tr gohkb.Vec3, err error) {
	if len(bf.box) > 0 {
		if len(bf.box) != 6 {
			return bl, tr, errors.Errorf("--box needs 6 values (got %d)", len(bf.box))
		}
		bl = gohkb.Vec3{X: bf.box[0], Y: bf.box[1], Z: bf.box[2]}
		tr = gohkb.Vec3{X: bf.box[3], Y: bf.box[4], Z: bf.box[5]}
		return bl, tr, nil
	}
	if len(bf.at) != 3 {
		return bl, tr, errors.Errorf("--at needs 3 values (got %d)", len(bf.at))
	}
	bl, tr = cfg.ViewBox(gohkb.Vec3{X: bf.at[0], Y: bf.at[1], Z: bf.at[2]})
	return bl, tr, nil
}

func argOrEmpty(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}

func printEdges(w io.Writer, edges []*gohkb.Edge) {
	for i, e := range edges {
		io.WriteString(w, edgeLine(i, e))
	}
}
