package main

import (
	"fmt"
	"strconv"

	"github.com/hkb3d/gohkb/libhkb"
	"github.com/hkb3d/gohkb/libhkb/catalog"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newFractionCmd() *cobra.Command {
	var (
		orders  int64
		catPath string
	)
	cmd := &cobra.Command{
		Use:   "fraction <num> <den>",
		Short: "Prints the binary expansion and chain colors of num/den",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			num, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return errors.Wrap(err, "numerator")
			}
			den, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return errors.Wrap(err, "denominator")
			}
			if err = libhkb.ValidateFraction(num, den); err != nil {
				return err
			}

			table := libhkb.NewFractionTable(nil)
			if catPath != "" {
				cat, err := catalog.Open(catalog.Opts{DbPathName: catPath})
				if err != nil {
					return err
				}
				defer cat.Close()
				table.SetStore(cat)
			}

			rem := num % den
			if rem < 0 {
				rem = -rem
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d/%d = %d + %v\n", num, den, num/den, table.Expansion(rem, den))

			colors := make([]byte, 0, orders)
			for k := int64(0); k < orders; k++ {
				colors = append(colors, table.Branch(k, num, den).Letter())
			}
			fmt.Fprintf(out, "%s\n", colors)
			return nil
		},
	}
	cmd.Flags().Int64Var(&orders, "orders", 16, "number of chain links to print")
	cmd.Flags().StringVar(&catPath, "catalog", "", "badger directory caching expansions")
	return cmd
}
