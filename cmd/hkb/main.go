package main

import (
	"flag"
	"os"

	"github.com/plan-systems/klog"
	"github.com/spf13/cobra"
)

var (
	configPath  string
	metricsAddr string

	rootCmd = &cobra.Command{
		Use:           "hkb",
		Short:         "3D infinite Hackenbush engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	fset := flag.NewFlagSet("", flag.ContinueOnError)
	klog.InitFlags(fset)
	fset.Set("logtostderr", "true")
	fset.Set("v", "1")
	klog.SetFormatter(&klog.FmtConstWidth{
		FileNameCharWidth: 16,
		UseColor:          true,
	})

	rootCmd.PersistentFlags().AddGoFlagSet(fset)
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "yaml config file")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")

	rootCmd.AddCommand(
		newVisibleCmd(),
		newChopCmd(),
		newFractionCmd(),
		newWorldgenCmd(),
		newWatchCmd(),
		newScriptCmd(),
	)
}

func main() {
	err := rootCmd.Execute()
	if err != nil {
		klog.Errorf("%v", err)
	}
	klog.Flush()
	if err != nil {
		os.Exit(1)
	}
}
