package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/gorustyt/polynav/navmesh"
	"github.com/gorustyt/polynav/server"
	"github.com/gorustyt/polynav/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func ServeCmd() *cobra.Command {
	var configFile string
	c := &cobra.Command{
		Use:   "serve",
		Short: "http navmesh server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(configFile)
			if err != nil {
				return err
			}
			defer log.Sync()

			opts := []server.Option{
				server.WithLogger(log),
				server.WithRateLimit(cfg.Server.RateLimit, cfg.Server.Burst),
			}
			if cfg.Database.Url != "" {
				codec, err := navmesh.CodecByName(cfg.Database.Codec)
				if err != nil {
					return err
				}
				st, err := store.Open(cfg.Database.Url, store.WithLogger(log), store.WithCodec(codec))
				if err != nil {
					return err
				}
				defer st.Close()
				opts = append(opts, server.WithStore(st))
			}
			srv := server.New(opts...)
			for _, lc := range cfg.Layers {
				l, err := lc.Build(log)
				if err != nil {
					return err
				}
				srv.AddLayer(l)
				log.Info("layer loaded", zap.Int32("layer", l.ID()), zap.Float64("area", l.Area()))
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return srv.ListenAndServe(ctx, cfg.Server.Addr)
		},
	}
	c.Flags().StringVar(&configFile, "config", "polynav.hjson", "config file")
	return c
}
