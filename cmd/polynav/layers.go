package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gorustyt/polynav/common"
	"github.com/gorustyt/polynav/config"
	"github.com/gorustyt/polynav/navmesh"

	"go.uber.org/zap"
)

func loadConfig(configFile string) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, err
	}
	log, err := common.NewLogger(cfg.Logger)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

func buildLayer(cfg *config.Config, id int32, log *zap.Logger) (*navmesh.Layer, error) {
	lc, ok := cfg.Layer(id)
	if !ok {
		return nil, fmt.Errorf("layer %d not in config", id)
	}
	return lc.Build(log)
}

// parsePoint reads "x,y".
func parsePoint(s string) (common.Point, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return common.Point{}, fmt.Errorf("point %q is not x,y", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return common.Point{}, err
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return common.Point{}, err
	}
	return common.Pt(x, y), nil
}
