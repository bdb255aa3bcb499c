package main

import (
	"fmt"

	"github.com/gorustyt/polynav/common"

	"github.com/spf13/cobra"
)

func PathCmd() *cobra.Command {
	var (
		configFile string
		layerID    int32
		from, to   string
	)
	c := &cobra.Command{
		Use:   "path",
		Short: "find a path on a configured layer",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(configFile)
			if err != nil {
				return err
			}
			defer log.Sync()
			start, err := parsePoint(from)
			if err != nil {
				return err
			}
			end, err := parsePoint(to)
			if err != nil {
				return err
			}
			l, err := buildLayer(cfg, layerID, log)
			if err != nil {
				return err
			}
			path := l.GetPath(start, end)
			if len(path) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no path")
				return nil
			}
			for _, p := range path {
				fmt.Fprintf(cmd.OutOrStdout(), "%g,%g\n", p.X(), p.Y())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "length %g\n", common.PathLength(path))
			return nil
		},
	}
	c.Flags().StringVar(&configFile, "config", "polynav.hjson", "config file")
	c.Flags().Int32Var(&layerID, "layer", 0, "layer id")
	c.Flags().StringVar(&from, "from", "", "start point x,y")
	c.Flags().StringVar(&to, "to", "", "end point x,y")
	_ = c.MarkFlagRequired("from")
	_ = c.MarkFlagRequired("to")
	return c
}
