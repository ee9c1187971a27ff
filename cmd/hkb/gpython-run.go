package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-python/gpython/py"
	"github.com/go-python/gpython/repl"
	"github.com/go-python/gpython/repl/cli"
	"github.com/hkb3d/gohkb/pyhkb"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
	"github.com/spf13/cobra"

	_ "github.com/go-python/gpython/stdlib"
)

func newScriptCmd() *cobra.Command {
	var src string
	cmd := &cobra.Command{
		Use:   "script [file.py]",
		Short: "Runs python against the _pyhkb module (bound as 'hkb'); REPL if no file or -c is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if src != "" && len(args) > 0 {
				return errors.New("give a script file or -c, not both")
			}
			switch {
			case src != "":
				return runPython(src, "<exec>")
			case len(args) > 0:
				return runPython("", args[0])
			}
			return runREPL(cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&src, "exec", "c", "", "python source to run after the hkb prelude")
	return cmd
}

// runPython runs src, or the file at pathname if src is empty, in a module that has run pyhkb.Prelude.
func runPython(src, pathname string) (err error) {
	ctx := py.NewContext(py.DefaultContextOpts())
	defer func() {
		ctx.Close()
		<-ctx.Done()
		if err != nil {
			py.TracebackDump(err)
		}
	}()

	mod, err := py.RunSrc(ctx, pyhkb.Prelude, "<prelude>", nil)
	if err != nil {
		return err
	}

	startTime := time.Now()
	if src == "" {
		code, readErr := os.ReadFile(pathname)
		if readErr != nil {
			return errors.Wrap(readErr, "reading script")
		}
		src = string(code)
	}
	if _, err = py.RunSrc(ctx, src, pathname, mod); err != nil {
		return err
	}
	klog.V(1).Infof("%s ran in %v", pathname, time.Since(startTime))
	return nil
}

func runREPL(out io.Writer) error {
	ctx := py.NewContext(py.DefaultContextOpts())
	defer func() {
		ctx.Close()
		<-ctx.Done()
	}()

	replCtx := repl.New(ctx)
	if _, err := py.RunSrc(ctx, pyhkb.Prelude, "<prelude>", replCtx.Module); err != nil {
		py.TracebackDump(err)
		return err
	}
	fmt.Fprintf(out, "_pyhkb %s loaded as 'hkb'\n", pyhkb.LIB_VERSION)
	cli.RunREPL(replCtx)
	return nil
}
