package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var VERSION = "unknown"

func main() {
	rootCmd := &cobra.Command{
		Use:          "polynav",
		Short:        "2d polygon navmesh",
		Version:      VERSION,
		SilenceUsage: true,
	}
	rootCmd.AddCommand(
		ServeCmd(),
		PathCmd(),
		SnapshotCmd(),
	)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
