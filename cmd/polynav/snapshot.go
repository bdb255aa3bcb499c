package main

import (
	"os"

	"github.com/gorustyt/polynav/navmesh"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func SnapshotCmd() *cobra.Command {
	var (
		configFile string
		layerID    int32
		format     string
		out        string
	)
	c := &cobra.Command{
		Use:   "snapshot",
		Short: "encode a configured layer",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(configFile)
			if err != nil {
				return err
			}
			defer log.Sync()
			codec, err := navmesh.CodecByName(format)
			if err != nil {
				return err
			}
			l, err := buildLayer(cfg, layerID, log)
			if err != nil {
				return err
			}
			data, err := codec.Encode(l.Snapshot())
			if err != nil {
				return err
			}
			if out == "" || out == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return err
			}
			log.Info("snapshot written", zap.String("file", out), zap.String("codec", codec.Name()), zap.Int("bytes", len(data)))
			return nil
		},
	}
	c.Flags().StringVar(&configFile, "config", "polynav.hjson", "config file")
	c.Flags().Int32Var(&layerID, "layer", 0, "layer id")
	c.Flags().StringVar(&format, "format", "msgpack", "bin, msgpack or proto")
	c.Flags().StringVar(&out, "out", "-", "output file, - for stdout")
	return c
}
