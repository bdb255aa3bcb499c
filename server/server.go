// Package server exposes navmesh layers over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorustyt/polynav/common"
	"github.com/gorustyt/polynav/config"
	"github.com/gorustyt/polynav/navmesh"
	"github.com/gorustyt/polynav/recast"
	"github.com/gorustyt/polynav/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var errUnknownLayer = errors.New("unknown layer")

// layerEntry serializes every call on one layer.
type layerEntry struct {
	mu    sync.Mutex
	layer *navmesh.Layer
}

type Server struct {
	mu      sync.RWMutex
	layers  map[int32]*layerEntry
	store   *store.Store
	log     *zap.Logger
	limiter *rate.Limiter
	engine  *gin.Engine
}

type Option func(s *Server)

func WithLogger(log *zap.Logger) Option {
	return func(s *Server) {
		s.log = common.LoggerOrNop(log)
	}
}

// WithStore enables the save and load endpoints.
func WithStore(st *store.Store) Option {
	return func(s *Server) {
		s.store = st
	}
}

// WithRateLimit caps requests per second across all clients; rps <= 0 disables it.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *Server) {
		if rps <= 0 {
			s.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func New(opts ...Option) *Server {
	s := &Server{
		layers: make(map[int32]*layerEntry),
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), s.accessLog())
	if s.limiter != nil {
		engine.Use(s.rateLimit())
	}
	engine.POST("/layers", s.createLayer)
	engine.GET("/layers/:id", s.withLayer(s.getLayer))
	engine.POST("/layers/:id/obstacles", s.withLayer(s.addEdit(navmesh.Obstacle)))
	engine.POST("/layers/:id/bridges", s.withLayer(s.addEdit(navmesh.Bridge)))
	engine.DELETE("/layers/:id/obstacles/:edit", s.withLayer(s.removeEdit(navmesh.Obstacle)))
	engine.DELETE("/layers/:id/bridges/:edit", s.withLayer(s.removeEdit(navmesh.Bridge)))
	engine.POST("/layers/:id/path", s.withLayer(s.path))
	engine.POST("/layers/:id/contains", s.withLayer(s.contains))
	engine.GET("/layers/:id/snapshot", s.withLayer(s.snapshot))
	engine.PUT("/layers/:id/save", s.withLayer(s.save))
	engine.POST("/layers/:id/load", s.load)
	s.engine = engine
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// AddLayer registers or replaces a layer.
func (s *Server) AddLayer(l *navmesh.Layer) {
	s.mu.Lock()
	s.layers[l.ID()] = &layerEntry{layer: l}
	s.mu.Unlock()
}

func (s *Server) entry(id int32) (*layerEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.layers[id]
	return e, ok
}

// ListenAndServe blocks until ctx is done or the listener fails.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.engine}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.log.Info("http server start", zap.String("addr", addr))
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.log.Info("http server stop", zap.String("addr", addr))
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("cost", time.Since(start)))
	}
}

func (s *Server) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

type layerHandler func(c *gin.Context, l *navmesh.Layer)

// withLayer resolves :id and runs h holding the layer lock.
func (s *Server) withLayer(h layerHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseLayerID(c)
		if err != nil {
			s.fail(c, err)
			return
		}
		e, ok := s.entry(id)
		if !ok {
			s.fail(c, errUnknownLayer)
			return
		}
		e.mu.Lock()
		defer e.mu.Unlock()
		h(c, e.layer)
	}
}

type badRequest struct {
	err error
}

func (e badRequest) Error() string { return e.err.Error() }

func (e badRequest) Unwrap() error { return e.err }

func parseLayerID(c *gin.Context) (int32, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil {
		return 0, badRequest{err}
	}
	return int32(id), nil
}

func statusOf(err error) int {
	var bad badRequest
	switch {
	case errors.As(err, &bad),
		errors.Is(err, recast.ErrInvalidRing),
		errors.Is(err, recast.ErrTriangulate):
		return http.StatusBadRequest
	case errors.Is(err, errUnknownLayer), errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, navmesh.ErrDuplicateEdit):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(c *gin.Context, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("http handler error", zap.String("path", c.Request.URL.Path), zap.Error(err))
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

type createLayerReq struct {
	ID       int32                  `json:"id"`
	Mode     string                 `json:"mode"`
	Polygons []config.PolygonConfig `json:"polygons"`
}

type editView struct {
	ID     string         `json:"id"`
	Kind   string         `json:"kind"`
	Points []config.Point `json:"points"`
}

type layerView struct {
	ID       int32                  `json:"id"`
	Mode     string                 `json:"mode"`
	Area     float64                `json:"area"`
	Polygons []config.PolygonConfig `json:"polygons"`
	Edits    []editView             `json:"edits"`
}

func viewOf(l *navmesh.Layer) layerView {
	v := layerView{
		ID:       l.ID(),
		Mode:     l.Mode().String(),
		Area:     l.Area(),
		Polygons: make([]config.PolygonConfig, 0),
		Edits:    make([]editView, 0),
	}
	for _, p := range l.Polygons() {
		pc := config.PolygonConfig{Points: config.FromRing(p.Points())}
		for _, h := range p.HoleRings() {
			pc.Holes = append(pc.Holes, config.FromRing(h))
		}
		v.Polygons = append(v.Polygons, pc)
	}
	for _, e := range l.Edits() {
		v.Edits = append(v.Edits, editView{ID: string(e.ID), Kind: e.Kind.String(), Points: config.FromRing(e.Boundary)})
	}
	return v
}

func (s *Server) createLayer(c *gin.Context) {
	req := new(createLayerReq)
	if err := c.ShouldBindJSON(req); err != nil {
		s.fail(c, badRequest{err})
		return
	}
	if _, err := navmesh.ParseGraphMode(req.Mode); err != nil {
		s.fail(c, badRequest{err})
		return
	}
	lc := &config.LayerConfig{ID: req.ID, Mode: req.Mode, Polygons: req.Polygons}
	l, err := lc.Build(s.log)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.AddLayer(l)
	c.JSON(http.StatusCreated, viewOf(l))
}

func (s *Server) getLayer(c *gin.Context, l *navmesh.Layer) {
	c.JSON(http.StatusOK, viewOf(l))
}

type editReq struct {
	ID     string         `json:"id"`
	Points []config.Point `json:"points"`
}

func (s *Server) addEdit(kind navmesh.EditKind) layerHandler {
	return func(c *gin.Context, l *navmesh.Layer) {
		req := new(editReq)
		if err := c.ShouldBindJSON(req); err != nil {
			s.fail(c, badRequest{err})
			return
		}
		ring := config.ToRing(req.Points)
		id := navmesh.EditID(req.ID)
		var err error
		switch {
		case kind == navmesh.Obstacle && id == "":
			id, err = l.AddObstacle(ring)
		case kind == navmesh.Obstacle:
			err = l.AddObstacleWithID(id, ring)
		case id == "":
			id, err = l.AddBridge(ring)
		default:
			err = l.AddBridgeWithID(id, ring)
		}
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"id": id, "area": l.Area()})
	}
}

func (s *Server) removeEdit(kind navmesh.EditKind) layerHandler {
	return func(c *gin.Context, l *navmesh.Layer) {
		id := navmesh.EditID(c.Param("edit"))
		_, existed := l.Edit(id)
		var err error
		if kind == navmesh.Obstacle {
			err = l.RemoveObstacle(id)
		} else {
			err = l.RemoveBridge(id)
		}
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"removed": existed, "area": l.Area()})
	}
}

type pathReq struct {
	Start config.Point `json:"start"`
	End   config.Point `json:"end"`
}

func (s *Server) path(c *gin.Context, l *navmesh.Layer) {
	req := new(pathReq)
	if err := c.ShouldBindJSON(req); err != nil {
		s.fail(c, badRequest{err})
		return
	}
	path := l.GetPath(common.Pt(req.Start[0], req.Start[1]), common.Pt(req.End[0], req.End[1]))
	c.JSON(http.StatusOK, gin.H{
		"path": config.FromRing(path),
		"cost": common.PathLength(path),
	})
}

type containsReq struct {
	Point config.Point `json:"point"`
}

func (s *Server) contains(c *gin.Context, l *navmesh.Layer) {
	req := new(containsReq)
	if err := c.ShouldBindJSON(req); err != nil {
		s.fail(c, badRequest{err})
		return
	}
	pt := common.Pt(req.Point[0], req.Point[1])
	c.JSON(http.StatusOK, gin.H{
		"inside":  l.IsPointInPolygon(pt),
		"polygon": l.FindPolygonIndexForPoint(pt),
	})
}

func (s *Server) snapshot(c *gin.Context, l *navmesh.Layer) {
	codec, err := navmesh.CodecByName(c.DefaultQuery("format", "msgpack"))
	if err != nil {
		s.fail(c, badRequest{err})
		return
	}
	data, err := codec.Encode(l.Snapshot())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "application/octet-stream", data)
}

func (s *Server) save(c *gin.Context, l *navmesh.Layer) {
	if s.store == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "no store configured"})
		return
	}
	if err := s.store.Save(c.Request.Context(), l); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": l.ID()})
}

// load replaces the in-memory layer with the stored one.
func (s *Server) load(c *gin.Context) {
	if s.store == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "no store configured"})
		return
	}
	id, err := parseLayerID(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	l, err := s.store.Load(c.Request.Context(), id, navmesh.WithLogger(s.log))
	if err != nil {
		s.fail(c, err)
		return
	}
	s.AddLayer(l)
	c.JSON(http.StatusOK, viewOf(l))
}
