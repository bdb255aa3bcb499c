package config

import (
	"fmt"
	"os"

	"github.com/gorustyt/polynav/common"
	"github.com/gorustyt/polynav/navmesh"
	"github.com/gorustyt/polynav/recast"

	"github.com/hjson/hjson-go/v4"
	"go.uber.org/zap"
)

type Config struct {
	Logger   common.LogConfig `json:"logger"`
	Database Database         `json:"database"`
	Server   Server           `json:"server"`
	Layers   []*LayerConfig   `json:"layers"`
}

// Database.Url is "sqlite://<dsn>"; empty disables persistence.
type Database struct {
	Url   string `json:"url"`
	Codec string `json:"codec"`
}

type Server struct {
	Addr      string  `json:"addr"`
	RateLimit float64 `json:"rate_limit"` // requests per second, 0 for unlimited
	Burst     int     `json:"burst"`
}

// Point is written as [x, y].
type Point [2]float64

type PolygonConfig struct {
	Points []Point   `json:"points"`
	Holes  [][]Point `json:"holes"`
}

type EditConfig struct {
	ID     string  `json:"id"`
	Points []Point `json:"points"`
}

type LayerConfig struct {
	ID        int32           `json:"id"`
	Mode      string          `json:"mode"`
	Polygons  []PolygonConfig `json:"polygons"`
	Obstacles []EditConfig    `json:"obstacles"`
	Bridges   []EditConfig    `json:"bridges"`
}

func Default() *Config {
	return &Config{
		Logger: common.LogConfig{
			Level:      "info",
			Console:    true,
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 7,
		},
		Database: Database{Codec: "msgpack"},
		Server: Server{
			Addr:      ":8080",
			RateLimit: 100,
			Burst:     200,
		},
	}
}

// Load reads an hjson file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open config error: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	// utf-8 bom
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		data = data[3:]
	}
	c := Default()
	if err := hjson.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse config error: %w", err)
	}
	seen := make(map[int32]bool)
	for _, l := range c.Layers {
		if seen[l.ID] {
			return nil, fmt.Errorf("duplicate layer id %d", l.ID)
		}
		seen[l.ID] = true
		if _, err := navmesh.ParseGraphMode(l.Mode); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Config) Layer(id int32) (*LayerConfig, bool) {
	for _, l := range c.Layers {
		if l.ID == id {
			return l, true
		}
	}
	return nil, false
}

func ToRing(points []Point) common.Ring {
	res := make(common.Ring, len(points))
	for i, p := range points {
		res[i] = common.Pt(p[0], p[1])
	}
	return res
}

func FromRing(r common.Ring) []Point {
	res := make([]Point, len(r))
	for i, p := range r {
		res[i] = Point{p.X(), p.Y()}
	}
	return res
}

func (pc PolygonConfig) Build() (*recast.Polygon, error) {
	holes := make([]common.Ring, len(pc.Holes))
	for i, h := range pc.Holes {
		holes[i] = ToRing(h)
	}
	return recast.NewPolygonFromRings(ToRing(pc.Points), holes...)
}

// Build creates the layer, sets its region and replays obstacles then bridges. Edits
// without an id get one from the layer.
func (lc *LayerConfig) Build(log *zap.Logger) (*navmesh.Layer, error) {
	mode, err := navmesh.ParseGraphMode(lc.Mode)
	if err != nil {
		return nil, err
	}
	layer := navmesh.NewLayer(lc.ID, navmesh.WithLogger(log), navmesh.WithGraphMode(mode))
	polys := make([]*recast.Polygon, 0, len(lc.Polygons))
	for i, pc := range lc.Polygons {
		p, err := pc.Build()
		if err != nil {
			return nil, fmt.Errorf("layer %d polygon %d: %w", lc.ID, i, err)
		}
		polys = append(polys, p)
	}
	layer.SetInitialPolygons(polys)
	for _, e := range lc.Obstacles {
		if e.ID == "" {
			_, err = layer.AddObstacle(ToRing(e.Points))
		} else {
			err = layer.AddObstacleWithID(navmesh.EditID(e.ID), ToRing(e.Points))
		}
		if err != nil {
			return nil, fmt.Errorf("layer %d obstacle %q: %w", lc.ID, e.ID, err)
		}
	}
	for _, e := range lc.Bridges {
		if e.ID == "" {
			_, err = layer.AddBridge(ToRing(e.Points))
		} else {
			err = layer.AddBridgeWithID(navmesh.EditID(e.ID), ToRing(e.Points))
		}
		if err != nil {
			return nil, fmt.Errorf("layer %d bridge %q: %w", lc.ID, e.ID, err)
		}
	}
	return layer, nil
}
