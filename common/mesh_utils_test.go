package common

import (
	"path/filepath"
	"testing"
)

func TestBBox(t *testing.T) {
	b := RingBBox(square(1, 1, 2))
	assertTrue(t, b.Min == Pt(1, 1) && b.Max == Pt(3, 3), "Bounding box of square")
	assertTrue(t, b.Contains(Pt(3, 2)), "Contains is inclusive")
	assertTrue(t, !b.Contains(Pt(4, 2)), "Outside point")
	assertTrue(t, b.Overlaps(RingBBox(square(3, 3, 1))), "Touching boxes overlap")
	assertTrue(t, !b.Overlaps(RingBBox(square(5, 5, 1))), "Disjoint boxes")
	assertTrue(t, EmptyBBox().Empty(), "Empty box")
	assertTrue(t, !EmptyBBox().Extend(Pt(0, 0)).Empty(), "One point box is not empty")
}

func TestRingsTouch(t *testing.T) {
	a := square(0, 0, 1)
	assertTrue(t, RingsTouch(a, square(1, 1, 1)), "Shared corner")
	assertTrue(t, RingsTouch(a, square(1+1e-8, 0, 1)), "Corner within epsilon")
	// shares the edge x=1 from y=0.25 to y=0.75 but no vertex
	side := Ring{Pt(1, 0.25), Pt(2, 0.25), Pt(2, 0.75), Pt(1, 0.75)}
	assertTrue(t, !RingsTouch(a, side), "Edge contact without a common vertex is not detected")
}

func TestSharedVertices(t *testing.T) {
	t1 := []Point{Pt(0, 0), Pt(1, 0), Pt(0, 1)}
	t2 := []Point{Pt(1, 0), Pt(0, 1), Pt(1, 1)}
	t3 := []Point{Pt(1, 0), Pt(2, 0), Pt(2, 1)}
	assertTrue(t, SharedVertices(t1, t2) == 2, "Triangles sharing an edge")
	assertTrue(t, SharedVertices(t1, t3) == 1, "Triangles sharing a corner")
	assertTrue(t, SharedVertices(t1, []Point{Pt(1+1e-9, 0)}) == 0, "Matching is exact")
}

func TestPathLength(t *testing.T) {
	assertTrue(t, PathLength(nil) == 0, "Empty path")
	assertTrue(t, PathLength([]Point{Pt(0, 0), Pt(3, 4), Pt(3, 5)}) == 6, "Sum of segments")
}

func TestNewLogger(t *testing.T) {
	log, err := NewLogger(LogConfig{})
	assertTrue(t, err == nil && log != nil, "No output gives a nop logger")

	_, err = NewLogger(LogConfig{Level: "loud", Console: true})
	assertTrue(t, err != nil, "Unknown level is rejected")

	file := filepath.Join(t.TempDir(), "polynav.log")
	log, err = NewLogger(LogConfig{Level: "debug", File: file, MaxSizeMB: 1})
	assertTrue(t, err == nil, "File logger")
	log.Debug("hello")
	_ = log.Sync()

	assertTrue(t, LoggerOrNop(nil) != nil, "LoggerOrNop never returns nil")
}
