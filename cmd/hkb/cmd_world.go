package main

import (
	"fmt"
	"os"

	"github.com/hkb3d/gohkb/gohkb"
	"github.com/hkb3d/gohkb/netbuf"
	"github.com/hkb3d/gohkb/worldgen"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func edgeLine(i int, e *gohkb.Edge) string {
	return fmt.Sprintf("%4d  %v\n", i, e)
}

func newVisibleCmd() *cobra.Command {
	var (
		bf     boxFlags
		encode bool
		layers uint8
	)
	cmd := &cobra.Command{
		Use:   "visible [world.hkb]",
		Short: "Lists the edges visible in a box (default world if no file is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(argOrEmpty(args))
			if err != nil {
				return err
			}
			defer sess.Close()

			bl, tr, err := bf.resolve(&sess.cfg)
			if err != nil {
				return err
			}
			edges := sess.world.VisibleEdges(bl, tr).Sorted()

			out := cmd.OutOrStdout()
			if layers > 0 {
				if err = sess.world.Log(out, layers); err != nil {
					return err
				}
			}
			if encode {
				buf := netbuf.New()
				buf.PushUint32(uint32(len(edges)))
				for _, e := range edges {
					buf.PushEdge(e)
				}
				fmt.Fprintf(out, "%x\n", buf.Frame())
				return nil
			}
			fmt.Fprintf(out, "%d edges visible in %v..%v\n", len(edges), bl, tr)
			printEdges(out, edges)
			return nil
		},
	}
	bf.register(cmd)
	cmd.Flags().BoolVar(&encode, "encode", false, "print the edges as a hex netbuf frame")
	cmd.Flags().Uint8Var(&layers, "log", 0, "also log this many layers beyond each grounded node")
	return cmd
}

func newChopCmd() *cobra.Command {
	var (
		bf     boxFlags
		index  int
		player string
	)
	cmd := &cobra.Command{
		Use:   "chop [world.hkb]",
		Short: "Chops a visible edge and lists what remains visible",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var p gohkb.Player
			switch player {
			case "red":
				p = gohkb.RedPlayer
			case "blue":
				p = gohkb.BluePlayer
			default:
				return errors.Errorf("--player must be red or blue (got %q)", player)
			}

			sess, err := openSession(argOrEmpty(args))
			if err != nil {
				return err
			}
			defer sess.Close()

			bl, tr, err := bf.resolve(&sess.cfg)
			if err != nil {
				return err
			}
			edges := sess.world.VisibleEdges(bl, tr).Sorted()
			if index < 0 || index >= len(edges) {
				return errors.Errorf("edge index %d out of range (%d visible)", index, len(edges))
			}

			out := cmd.OutOrStdout()
			target := edges[index]
			if !sess.world.Chop(target, p) {
				fmt.Fprintf(out, "%v may not chop %v\n", p, target)
				return nil
			}
			edges = sess.world.VisibleEdges(bl, tr).Sorted()
			fmt.Fprintf(out, "%v chopped %v; %d edges remain visible\n", p, target, len(edges))
			printEdges(out, edges)
			return nil
		},
	}
	bf.register(cmd)
	cmd.Flags().IntVar(&index, "index", 0, "index of the edge in the visible listing")
	cmd.Flags().StringVar(&player, "player", "blue", "red or blue")
	return cmd
}

func newWorldgenCmd() *cobra.Command {
	var (
		opts    = worldgen.DefaultGenOpts()
		outPath string
	)
	cmd := &cobra.Command{
		Use:   "worldgen",
		Short: "Writes a random finite world as .hkb text",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if outPath != "" {
				file, err := os.Create(outPath)
				if err != nil {
					return errors.Wrap(err, "creating world file")
				}
				defer file.Close()
				out = file
			}
			return worldgen.Generate(opts, out)
		},
	}
	f := cmd.Flags()
	f.Int64Var(&opts.Seed, "seed", opts.Seed, "random seed")
	f.Float64Var(&opts.XZRadius, "radius", opts.XZRadius, "nodes lie within this distance of the origin in x and z")
	f.Float64Var(&opts.YMin, "ymin", opts.YMin, "lowest air node height")
	f.Float64Var(&opts.YMax, "ymax", opts.YMax, "highest air node height")
	f.Float64Var(&opts.GroundedNodes, "grounded", opts.GroundedNodes, "mean number of grounded nodes")
	f.Float64Var(&opts.TotalNodes, "nodes", opts.TotalNodes, "mean number of nodes")
	f.Float64Var(&opts.Density, "density", opts.Density, "mean branches per node")
	f.Float64Var(&opts.BlueRatio, "blue", opts.BlueRatio, "share of blue branches")
	f.Float64Var(&opts.RedRatio, "red", opts.RedRatio, "share of red branches")
	f.StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	return cmd
}
