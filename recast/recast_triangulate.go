package recast

import (
	"fmt"

	"github.com/gorustyt/polynav/common"
	"github.com/rclancey/earcut"
)

// Triangulate splits outer (with optional holes) into triangle cells.
// Without holes the ring is ear clipped; with holes the work goes to earcut.
func Triangulate(outer common.Ring, holes []common.Ring) ([]TriangleCell, error) {
	outer = common.OpenRing(outer)
	if len(outer) < 3 {
		return nil, nil
	}
	if len(holes) == 0 {
		return EarClip(common.EnsureCCW(outer), EarClipGuard), nil
	}
	return triangulateWithHoles(outer, holes)
}

// EarClip triangulates a counter-clockwise ring. At most guard ears are clipped.
func EarClip(ring common.Ring, guard int) []TriangleCell {
	var cells []TriangleCell
	if len(ring) < 3 {
		return cells
	}
	verts := make([]int, len(ring))
	for i := range verts {
		verts[i] = i
	}
	for clipped := 0; len(verts) > 3 && clipped < guard; clipped++ {
		ear := findEar(ring, verts)
		if ear < 0 {
			break
		}
		n := len(verts)
		i0, i1, i2 := verts[common.Prev(ear, n)], verts[ear], verts[common.Next(ear, n)]
		cells = append(cells, NewTriangleCell(ring[i0], ring[i1], ring[i2]))
		verts = append(verts[:ear], verts[ear+1:]...)
	}
	if len(verts) == 3 {
		cells = append(cells, NewTriangleCell(ring[verts[0]], ring[verts[1]], ring[verts[2]]))
	}
	return cells
}

// findEar returns the position in verts of the first ear tip, or -1.
func findEar(ring common.Ring, verts []int) int {
	n := len(verts)
	for i := 0; i < n; i++ {
		prev, next := common.Prev(i, n), common.Next(i, n)
		a, b, c := ring[verts[prev]], ring[verts[i]], ring[verts[next]]
		if common.Cross(a, b, c) <= 0 {
			continue
		}
		inside := false
		for j := 0; j < n; j++ {
			if j == prev || j == i || j == next {
				continue
			}
			if common.PointInTriangle(ring[verts[j]], a, b, c) {
				inside = true
				break
			}
		}
		if !inside {
			return i
		}
	}
	return -1
}

// triangulateWithHoles flattens the outer ring followed by every hole into one
// coordinate buffer and maps the earcut index triples back onto it.
func triangulateWithHoles(outer common.Ring, holes []common.Ring) ([]TriangleCell, error) {
	coords := common.FlattenRing(outer)
	holeIndices := make([]int, 0, len(holes))
	idx := len(outer)
	for _, hole := range holes {
		hole = common.OpenRing(hole)
		if len(hole) < 3 {
			continue
		}
		holeIndices = append(holeIndices, idx)
		coords = append(coords, common.FlattenRing(hole)...)
		idx += len(hole)
	}
	indices, err := earcut.Earcut(coords, holeIndices, 2)
	if err != nil {
		return nil, fmt.Errorf("%w: %d vertices, %d holes: %v", ErrTriangulate, idx, len(holeIndices), err)
	}
	if len(indices)%3 != 0 {
		return nil, fmt.Errorf("%w: index count %d not divisible by 3", ErrTriangulate, len(indices))
	}
	vertex := func(i int) common.Point {
		return common.Point{coords[i*2], coords[i*2+1]}
	}
	cells := make([]TriangleCell, 0, len(indices)/3)
	for i := 0; i < len(indices); i += 3 {
		cells = append(cells, NewTriangleCell(vertex(indices[i]), vertex(indices[i+1]), vertex(indices[i+2])))
	}
	return cells, nil
}
