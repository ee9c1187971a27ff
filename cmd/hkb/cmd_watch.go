package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/hkb3d/gohkb/libhkb"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
	"github.com/spf13/cobra"
)

func newWatchCmd() *cobra.Command {
	var (
		bf       boxFlags
		debounce time.Duration
	)
	cmd := &cobra.Command{
		Use:   "watch <world.hkb>",
		Short: "Rebuilds a world each time its file changes and reports what is visible",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return watchWorld(ctx, args[0], &bf, debounce, cmd.OutOrStdout())
		},
	}
	bf.register(cmd)
	cmd.Flags().DurationVar(&debounce, "debounce", 100*time.Millisecond, "quiet period before reloading")
	return cmd
}

// watchWorld reports the world at pathname, then again after every change until ctx is done.
func watchWorld(ctx context.Context, pathname string, bf *boxFlags, debounce time.Duration, out io.Writer) error {
	pathname, err := filepath.Abs(pathname)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "creating watcher")
	}
	defer watcher.Close()

	// Editors often replace files by rename, so watch the directory.
	if err = watcher.Add(filepath.Dir(pathname)); err != nil {
		return errors.Wrapf(err, "watching %q", filepath.Dir(pathname))
	}

	report := func() {
		if err := reportWorld(pathname, bf, out); err != nil {
			klog.Warningf("reload %s: %v", pathname, err)
		}
	}
	report()

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != pathname || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			klog.V(2).Infof("watch: %v", ev)
			timer.Reset(debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			klog.Warningf("watch: %v", err)
		case <-timer.C:
			report()
		}
	}
}

// reportWorld builds a fresh world from pathname and prints a visibility summary.
func reportWorld(pathname string, bf *boxFlags, out io.Writer) error {
	sess, err := openSession(pathname)
	if err != nil {
		return err
	}
	defer sess.Close()

	bl, tr, err := bf.resolve(&sess.cfg)
	if err != nil {
		return err
	}
	world := sess.world
	nodes := world.VisibleNodes(bl, tr)
	edges := libhkb.CollectEdges(nodes, sess.cfg.MaxBreadth)
	fmt.Fprintf(out, "%s: %d grounded, %d chains, %d nodes and %d edges visible\n",
		filepath.Base(pathname), len(world.Grounded()), len(world.Chains()), len(nodes), len(edges))
	return nil
}
