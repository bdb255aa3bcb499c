package recast

import (
	"math"

	"github.com/gorustyt/polynav/common"
)

type TriangleCell struct {
	Vertices [3]common.Point
	Center   common.Point
}

func NewTriangleCell(a, b, c common.Point) TriangleCell {
	return TriangleCell{
		Vertices: [3]common.Point{a, b, c},
		Center:   a.Add(b).Add(c).Mul(1.0 / 3.0),
	}
}

// Contains includes the boundary.
func (c TriangleCell) Contains(p common.Point) bool {
	return common.PointInTriangle(p, c.Vertices[0], c.Vertices[1], c.Vertices[2])
}

func (c TriangleCell) Area() float64 {
	return math.Abs(common.Cross(c.Vertices[0], c.Vertices[1], c.Vertices[2])) / 2
}

func (c TriangleCell) BBox() common.BBox {
	return common.RingBBox(c.Vertices[:])
}

// CellConnection points at a neighbour by its index in the owning graph.
type CellConnection struct {
	Neighbor int
	Distance float64
}

// CellGraph stores cells as an arena: node i has centroid Centroids[i] and its
// connections in Links[i].
type CellGraph struct {
	Centroids []common.Point
	Links     [][]CellConnection
}

func newCellGraph(centroids []common.Point) *CellGraph {
	return &CellGraph{
		Centroids: centroids,
		Links:     make([][]CellConnection, len(centroids)),
	}
}

func (g *CellGraph) NodeCount() int {
	return len(g.Centroids)
}

func (g *CellGraph) Centroid(i int) common.Point {
	return g.Centroids[i]
}

func (g *CellGraph) Neighbors(i int, visit func(j int, cost float64)) {
	for _, c := range g.Links[i] {
		visit(c.Neighbor, c.Distance)
	}
}

func (g *CellGraph) Connections(i int) []CellConnection {
	return g.Links[i]
}

// connect inserts both directions with the same distance.
func (g *CellGraph) connect(i, j int) {
	common.AssertTrue(i != j, "self link", i)
	d := common.Dist(g.Centroids[i], g.Centroids[j])
	g.Links[i] = append(g.Links[i], CellConnection{Neighbor: j, Distance: d})
	g.Links[j] = append(g.Links[j], CellConnection{Neighbor: i, Distance: d})
}

// BuildCellGraph connects triangles that share exactly two vertices.
func BuildCellGraph(cells []TriangleCell) *CellGraph {
	centroids := make([]common.Point, len(cells))
	boxes := make([]common.BBox, len(cells))
	for i, c := range cells {
		centroids[i] = c.Center
		boxes[i] = c.BBox()
	}
	g := newCellGraph(centroids)
	for i := 0; i < len(cells); i++ {
		for j := i + 1; j < len(cells); j++ {
			if !boxes[i].Overlaps(boxes[j]) {
				continue
			}
			if common.SharedVertices(cells[i].Vertices[:], cells[j].Vertices[:]) == 2 {
				g.connect(i, j)
			}
		}
	}
	return g
}

// BuildRegionGraph connects region polygons whose bounding boxes overlap and whose outer
// rings have at least one coinciding vertex. Polygons that only share part of an edge
// stay disconnected.
func BuildRegionGraph(polys []*Polygon) *CellGraph {
	centroids := make([]common.Point, len(polys))
	boxes := make([]common.BBox, len(polys))
	for i, p := range polys {
		centroids[i] = common.Centroid(p.points)
		boxes[i] = p.BBox()
	}
	g := newCellGraph(centroids)
	for i := 0; i < len(polys); i++ {
		for j := i + 1; j < len(polys); j++ {
			if boxes[i].Overlaps(boxes[j]) && common.RingsTouch(polys[i].points, polys[j].points) {
				g.connect(i, j)
			}
		}
	}
	return g
}
