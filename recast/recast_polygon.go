package recast

import (
	"math"

	"github.com/gorustyt/polynav/common"
)

// Polygon is a counter-clockwise outer ring with optional holes. It never changes after
// construction; its triangle cells and their graph are built once in NewPolygon.
type Polygon struct {
	points []common.Point
	holes  []*Polygon
	cells  []TriangleCell
	graph  *CellGraph
}

func NewPolygon(points common.Ring, holes ...*Polygon) (*Polygon, error) {
	p := &Polygon{
		points: common.EnsureCCW(common.OpenRing(points)),
		holes:  holes,
	}
	if err := p.triangulate(); err != nil {
		return nil, err
	}
	return p, nil
}

// NewPolygonFromRings builds the hole polygons first, then the outer one.
func NewPolygonFromRings(outer common.Ring, holes ...common.Ring) (*Polygon, error) {
	hs := make([]*Polygon, 0, len(holes))
	for _, h := range holes {
		hp, err := NewPolygon(h)
		if err != nil {
			return nil, err
		}
		hs = append(hs, hp)
	}
	return NewPolygon(outer, hs...)
}

// MustPolygon panics on triangulation errors. Only meant for static geometry.
func MustPolygon(outer common.Ring, holes ...common.Ring) *Polygon {
	p, err := NewPolygonFromRings(outer, holes...)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Polygon) triangulate() error {
	holeRings := make([]common.Ring, 0, len(p.holes))
	for _, h := range p.holes {
		holeRings = append(holeRings, h.points)
	}
	cells, err := Triangulate(p.points, holeRings)
	if err != nil {
		return err
	}
	p.cells = cells
	p.graph = BuildCellGraph(cells)
	return nil
}

// Points returns a copy of the outer ring.
func (p *Polygon) Points() common.Ring {
	return common.CopyRing(p.points)
}

func (p *Polygon) Holes() []*Polygon {
	return append([]*Polygon(nil), p.holes...)
}

func (p *Polygon) HoleRings() []common.Ring {
	res := make([]common.Ring, len(p.holes))
	for i, h := range p.holes {
		res[i] = h.Points()
	}
	return res
}

func (p *Polygon) Cells() []TriangleCell {
	return p.cells
}

// Graph is the triangle adjacency graph of this polygon's cells.
func (p *Polygon) Graph() *CellGraph {
	return p.graph
}

func (p *Polygon) Len() int {
	return len(p.points)
}

// Area of the outer ring minus the holes.
func (p *Polygon) Area() float64 {
	a := math.Abs(common.SignedArea(p.points))
	for _, h := range p.holes {
		a -= math.Abs(common.SignedArea(h.points))
	}
	return a
}

func (p *Polygon) IsConvex() bool {
	return common.IsConvex(p.points)
}

func (p *Polygon) BBox() common.BBox {
	return common.RingBBox(p.points)
}

func (p *Polygon) Centroid() common.Point {
	return common.Centroid(p.points)
}

func (p *Polygon) ConvexHull() common.Ring {
	return common.ConvexHull(p.points)
}

// Contains ray casts against the outer ring and rejects points inside any hole.
func (p *Polygon) Contains(pt common.Point) bool {
	if !common.PointInPolygon(pt, p.points) {
		return false
	}
	for _, h := range p.holes {
		if h.Contains(pt) {
			return false
		}
	}
	return true
}

// ContainsTriangulated tests membership against the triangle cells, boundary included.
func (p *Polygon) ContainsTriangulated(pt common.Point) bool {
	for _, c := range p.cells {
		if c.Contains(pt) {
			return true
		}
	}
	return false
}

func (p *Polygon) Union(other *Polygon) (PolygonSet, error) {
	return Union(PolygonSet{p}, PolygonSet{other})
}

func (p *Polygon) Difference(other *Polygon) (PolygonSet, error) {
	return Difference(PolygonSet{p}, PolygonSet{other})
}
