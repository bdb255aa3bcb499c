// Package navmesh keeps editable walkable regions and answers path queries on them.
//
// A Layer is not safe for concurrent use; serialize access per layer.
package navmesh

import (
	"errors"
	"fmt"

	"github.com/gorustyt/polynav/common"
	"github.com/gorustyt/polynav/detour"
	"github.com/gorustyt/polynav/recast"
	"go.uber.org/zap"
)

var ErrDuplicateEdit = errors.New("navmesh: duplicate edit id")

type GraphMode uint8

const (
	// RegionGraph uses every region polygon as one cell.
	RegionGraph GraphMode = iota
	// TriangleGraph uses the triangles of every region polygon as cells.
	TriangleGraph
)

func (m GraphMode) String() string {
	if m == TriangleGraph {
		return "triangle"
	}
	return "region"
}

func ParseGraphMode(s string) (GraphMode, error) {
	switch s {
	case "", "region":
		return RegionGraph, nil
	case "triangle":
		return TriangleGraph, nil
	}
	return 0, fmt.Errorf("navmesh: unknown graph mode %q", s)
}

type Option func(l *Layer)

func WithLogger(log *zap.Logger) Option {
	return func(l *Layer) {
		l.log = common.LoggerOrNop(log)
	}
}

func WithIDGenerator(gen IDGenerator) Option {
	return func(l *Layer) {
		l.newID = gen
	}
}

func WithGraphMode(mode GraphMode) Option {
	return func(l *Layer) {
		l.mode = mode
	}
}

type Layer struct {
	id       int32
	mode     GraphMode
	original recast.PolygonSet
	current  recast.PolygonSet
	edits    *editRegistry
	counter  counterIDs
	newID    IDGenerator
	log      *zap.Logger

	// derived, rebuilt by BuildGraph
	graph   *recast.CellGraph
	locator detour.Locator
}

func NewLayer(id int32, opts ...Option) *Layer {
	l := &Layer{
		id:    id,
		edits: newEditRegistry(),
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.newID == nil {
		l.newID = l.counter.generate
	}
	l.log = l.log.With(zap.Int32("layer", id))
	return l
}

func (l *Layer) ID() int32 {
	return l.id
}

func (l *Layer) Mode() GraphMode {
	return l.mode
}

// SetInitialPolygons sets both the original and the current region. Polygons are
// immutable, so copying the slice is a deep copy.
func (l *Layer) SetInitialPolygons(polys []*recast.Polygon) {
	l.original = append(recast.PolygonSet(nil), polys...)
	l.current = append(recast.PolygonSet(nil), polys...)
	l.log.Debug("set initial polygons", zap.Int("polygons", len(polys)))
}

// Polygons returns the current region.
func (l *Layer) Polygons() []*recast.Polygon {
	return append([]*recast.Polygon(nil), l.current...)
}

func (l *Layer) OriginalPolygons() []*recast.Polygon {
	return append([]*recast.Polygon(nil), l.original...)
}

func (l *Layer) Area() float64 {
	return l.current.Area()
}

func (l *Layer) Edits() []Edit {
	return l.edits.list()
}

func (l *Layer) Edit(id EditID) (Edit, bool) {
	e, ok := l.edits.get(id)
	if !ok {
		return Edit{}, false
	}
	return Edit{ID: e.ID, Kind: e.Kind, Boundary: common.CopyRing(e.Boundary)}, true
}

func (l *Layer) AddObstacle(mesh common.Ring) (EditID, error) {
	return l.addGenerated(Obstacle, mesh)
}

func (l *Layer) AddBridge(mesh common.Ring) (EditID, error) {
	return l.addGenerated(Bridge, mesh)
}

// addGenerated skips generated ids that a caller already registered by hand.
func (l *Layer) addGenerated(kind EditKind, mesh common.Ring) (EditID, error) {
	id := l.newID()
	for {
		if _, ok := l.edits.get(id); !ok {
			break
		}
		id = l.newID()
	}
	if err := l.addEdit(id, kind, mesh); err != nil {
		return "", err
	}
	return id, nil
}

func (l *Layer) AddObstacleWithID(id EditID, mesh common.Ring) error {
	return l.addEdit(id, Obstacle, mesh)
}

func (l *Layer) AddBridgeWithID(id EditID, mesh common.Ring) error {
	return l.addEdit(id, Bridge, mesh)
}

func (l *Layer) RemoveObstacle(id EditID) error {
	return l.removeEdit(id)
}

func (l *Layer) RemoveBridge(id EditID) error {
	return l.removeEdit(id)
}

// addEdit applies the edit to the current region and registers it only when the
// boolean operation succeeded.
func (l *Layer) addEdit(id EditID, kind EditKind, mesh common.Ring) error {
	if _, ok := l.edits.get(id); ok {
		return fmt.Errorf("%w: %s", ErrDuplicateEdit, id)
	}
	mesh = common.CopyRing(common.OpenRing(mesh))
	if err := recast.ValidateRing(mesh); err != nil {
		return err
	}
	region, err := applyEdit(l.current, kind, mesh)
	if err != nil {
		l.log.Warn("apply edit failed", zap.String("id", string(id)), zap.Stringer("kind", kind), zap.Error(err))
		return err
	}
	l.edits.add(&Edit{ID: id, Kind: kind, Boundary: mesh})
	l.current = region
	l.log.Debug("add edit",
		zap.String("id", string(id)),
		zap.Stringer("kind", kind),
		zap.Int("polygons", len(region)))
	return nil
}

// removeEdit drops the record and rebuilds the region from the original. Unknown ids
// are ignored.
func (l *Layer) removeEdit(id EditID) error {
	if _, ok := l.edits.get(id); !ok {
		return nil
	}
	region, err := l.rebuild(id)
	if err != nil {
		l.log.Warn("rebuild failed", zap.String("id", string(id)), zap.Error(err))
		return err
	}
	e, _ := l.edits.remove(id)
	l.current = region
	l.log.Debug("remove edit",
		zap.String("id", string(id)),
		zap.Stringer("kind", e.Kind),
		zap.Int("polygons", len(region)))
	return nil
}

// Rebuild recomputes the current region from the original and the surviving edits.
func (l *Layer) Rebuild() error {
	region, err := l.rebuild("")
	if err != nil {
		return err
	}
	l.current = region
	return nil
}

// rebuild subtracts every obstacle, then unions every bridge, each kind in insertion
// order. The edit named skip is left out.
func (l *Layer) rebuild(skip EditID) (recast.PolygonSet, error) {
	region := append(recast.PolygonSet(nil), l.original...)
	for _, kind := range []EditKind{Obstacle, Bridge} {
		err := l.edits.each(kind, func(e *Edit) (err error) {
			if e.ID == skip {
				return nil
			}
			region, err = applyEdit(region, e.Kind, e.Boundary)
			return err
		})
		if err != nil {
			return nil, err
		}
	}
	return region, nil
}

func applyEdit(region recast.PolygonSet, kind EditKind, mesh common.Ring) (recast.PolygonSet, error) {
	switch kind {
	case Obstacle:
		// nothing to cut
		if len(region) == 0 {
			return region, nil
		}
		return recast.DifferenceRing(region, mesh)
	case Bridge:
		return recast.UnionRing(region, mesh)
	}
	return nil, fmt.Errorf("navmesh: unknown edit kind %d", kind)
}

// BuildGraph recomputes the cell graph and the point locator of the current region.
func (l *Layer) BuildGraph() {
	switch l.mode {
	case TriangleGraph:
		var cells []recast.TriangleCell
		for _, p := range l.current {
			cells = append(cells, p.Cells()...)
		}
		l.graph = recast.BuildCellGraph(cells)
		l.locator = detour.LocatorFunc(func(pt common.Point) int {
			return firstMatch(len(cells), func(i int) bool { return cells[i].Contains(pt) })
		})
	default:
		polys := l.current
		l.graph = recast.BuildRegionGraph(polys)
		l.locator = detour.LocatorFunc(func(pt common.Point) int {
			return firstMatch(len(polys), func(i int) bool { return polys[i].Contains(pt) })
		})
	}
}

// Graph returns the graph of the last BuildGraph call, nil before the first one.
func (l *Layer) Graph() *recast.CellGraph {
	return l.graph
}

// LocateCell resolves pt against the graph cells of the last BuildGraph call.
func (l *Layer) LocateCell(pt common.Point) int {
	if l.locator == nil {
		return -1
	}
	return l.locator.Locate(pt)
}

// GetPath rebuilds the graph and returns waypoints from start to end. The result is
// empty when either point is outside the region or the end cannot be reached.
func (l *Layer) GetPath(start, end common.Point) []common.Point {
	l.BuildGraph()
	path := detour.PathPoints(l.graph, l.locator, start, end)
	l.log.Debug("get path",
		zap.Float64s("start", start[:]),
		zap.Float64s("end", end[:]),
		zap.Int("waypoints", len(path)))
	return path
}

// FindPolygonIndexForPoint returns the first current region polygon containing pt.
func (l *Layer) FindPolygonIndexForPoint(pt common.Point) int {
	return firstMatch(len(l.current), func(i int) bool { return l.current[i].Contains(pt) })
}

func (l *Layer) IsPointInPolygon(pt common.Point) bool {
	return l.FindPolygonIndexForPoint(pt) >= 0
}

// firstMatch scans 0..n-1 in order; the lowest matching index wins.
func firstMatch(n int, match func(i int) bool) int {
	for i := 0; i < n; i++ {
		if match(i) {
			return i
		}
	}
	return -1
}
