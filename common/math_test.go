package common

import (
	"math"
	"testing"
)

func assertTrue(t *testing.T, value bool, msg string) {
	t.Helper()
	if !value {
		t.Error(msg)
	}
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func square(x0, y0, size float64) Ring {
	return Ring{Pt(x0, y0), Pt(x0+size, y0), Pt(x0+size, y0+size), Pt(x0, y0+size)}
}

func TestDist(t *testing.T) {
	a, b := Pt(0, 0), Pt(3, 4)
	assertTrue(t, Dist(a, b) == 5, "Euclidean distance")
	assertTrue(t, DistSquared(a, b) == 25, "Squared distance")
	assertTrue(t, DistManhattan(a, b) == 7, "Manhattan distance")
	q := DistQuick(a, b)
	assertTrue(t, approx(q, 4*0.96+3*0.4), "Quick distance uses alpha max beta min")
	assertTrue(t, math.Abs(q-5)/5 < 0.05, "Quick distance stays close to the real one")
}

func TestWinding(t *testing.T) {
	ccw := square(0, 0, 2)
	assertTrue(t, IsCCW(ccw), "Square is counter-clockwise")
	assertTrue(t, SignedArea(ccw) == 4, "Signed area of ccw square is positive")

	cw := Ring{Pt(0, 0), Pt(0, 2), Pt(2, 2), Pt(2, 0)}
	assertTrue(t, !IsCCW(cw), "Reversed square is clockwise")
	assertTrue(t, SignedArea(cw) == -4, "Signed area of cw square is negative")

	fixed := EnsureCCW(cw)
	assertTrue(t, IsCCW(fixed), "EnsureCCW reverses clockwise rings")
	assertTrue(t, cw[1] == Pt(0, 2), "EnsureCCW does not touch its input")
	assertTrue(t, SignedArea(Ring{Pt(0, 0), Pt(1, 1)}) == 0, "Degenerate ring has no area")
}

func TestIsConvex(t *testing.T) {
	assertTrue(t, IsConvex(square(0, 0, 1)), "Square is convex")
	l := Ring{Pt(0, 0), Pt(2, 0), Pt(2, 1), Pt(1, 1), Pt(1, 2), Pt(0, 2)}
	assertTrue(t, !IsConvex(l), "L shape is concave")
	withCollinear := Ring{Pt(0, 0), Pt(1, 0), Pt(2, 0), Pt(2, 2), Pt(0, 2)}
	assertTrue(t, IsConvex(withCollinear), "Collinear vertices are ignored")
}

func TestCentroid(t *testing.T) {
	c := Centroid(square(0, 0, 2))
	assertTrue(t, c == Pt(1, 1), "Centroid of square is its center")
	assertTrue(t, Centroid(nil) == Point{}, "Centroid of empty ring is the origin")
}

func TestPointInPolygon(t *testing.T) {
	sq := square(0, 0, 10)
	assertTrue(t, PointInPolygon(Pt(5, 5), sq), "Center is inside")
	assertTrue(t, !PointInPolygon(Pt(-5, -5), sq), "Outside point")
	assertTrue(t, !PointInPolygon(Pt(11, 5), sq), "Point right of the square")

	l := Ring{Pt(0, 0), Pt(2, 0), Pt(2, 1), Pt(1, 1), Pt(1, 2), Pt(0, 2)}
	assertTrue(t, PointInPolygon(Pt(0.5, 1.5), l), "Inside upper arm")
	assertTrue(t, !PointInPolygon(Pt(1.5, 1.5), l), "Notch of the L is outside")
}

func TestPointInTriangle(t *testing.T) {
	a, b, c := Pt(0, 0), Pt(4, 0), Pt(0, 4)
	assertTrue(t, PointInTriangle(Pt(1, 1), a, b, c), "Interior point")
	assertTrue(t, PointInTriangle(Pt(2, 0), a, b, c), "Edge point is inside")
	assertTrue(t, PointInTriangle(a, a, b, c), "Vertex is inside")
	assertTrue(t, !PointInTriangle(Pt(3, 3), a, b, c), "Outside point")
	assertTrue(t, PointInTriangle(Pt(1, 1), a, c, b), "Winding does not matter")
}

func TestSegmentsIntersect(t *testing.T) {
	assertTrue(t, SegmentsIntersect(Pt(0, 0), Pt(2, 2), Pt(0, 2), Pt(2, 0)), "Proper crossing")
	assertTrue(t, !SegmentsIntersect(Pt(0, 0), Pt(1, 1), Pt(2, 2), Pt(3, 0)), "Disjoint segments")
	assertTrue(t, !SegmentsIntersect(Pt(0, 0), Pt(2, 0), Pt(1, 0), Pt(3, 0)), "Collinear overlap is not a crossing")
	assertTrue(t, !SegmentsIntersect(Pt(0, 0), Pt(1, 1), Pt(1, 1), Pt(2, 0)), "Shared endpoint is not a crossing")
	assertTrue(t, !SegmentsIntersect(Pt(0, 0), Pt(2, 0), Pt(1, 0), Pt(1, 2)), "T junction is not a crossing")
}

func TestRingSelfIntersects(t *testing.T) {
	assertTrue(t, !RingSelfIntersects(square(0, 0, 1)), "Square is simple")
	bowtie := Ring{Pt(0, 0), Pt(2, 2), Pt(2, 0), Pt(0, 2)}
	assertTrue(t, RingSelfIntersects(bowtie), "Bow tie crosses itself")
}

func TestConvexHull(t *testing.T) {
	pts := []Point{Pt(0, 0), Pt(2, 0), Pt(1, 1), Pt(2, 2), Pt(0, 2), Pt(1, 0), Pt(2, 2)}
	hull := ConvexHull(pts)
	assertTrue(t, len(hull) == 4, "Hull drops interior, collinear and duplicate points")
	assertTrue(t, hull[0] == Pt(0, 0), "Hull starts at the lowest x then y")
	assertTrue(t, IsCCW(hull), "Hull is counter-clockwise")
	assertTrue(t, SignedArea(hull) == 4, "Hull area")
	assertTrue(t, pts[2] == Pt(1, 1), "Input is not reordered")
	assertTrue(t, len(ConvexHull([]Point{Pt(1, 1), Pt(0, 0)})) == 2, "Less than three points are returned sorted")
	assertTrue(t, len(ConvexHull([]Point{Pt(1, 1), Pt(1, 1)})) == 1, "Duplicate pair collapses")
	assertTrue(t, len(ConvexHull([]Point{Pt(3, 3), Pt(3, 3), Pt(3, 3), Pt(3, 3)})) == 1, "Identical points collapse")
	line := ConvexHull([]Point{Pt(2, 0), Pt(0, 0), Pt(1, 0), Pt(0, 0)})
	assertTrue(t, len(line) == 2 && line[0] == Pt(0, 0) && line[1] == Pt(2, 0), "Collinear points keep the ends")
}

func TestTrianglesIntersect(t *testing.T) {
	base := [3]Point{Pt(0, 0), Pt(4, 0), Pt(0, 4)}
	assertTrue(t, TrianglesIntersect(base, [3]Point{Pt(1, 1), Pt(5, 1), Pt(1, 5)}), "Crossing edges")
	inner := [3]Point{Pt(0.5, 0.5), Pt(1, 0.5), Pt(0.5, 1)}
	assertTrue(t, TrianglesIntersect(base, inner), "Second inside the first")
	assertTrue(t, TrianglesIntersect(inner, base), "First inside the second")
	assertTrue(t, !TrianglesIntersect(base, [3]Point{Pt(20, 20), Pt(21, 20), Pt(20, 21)}), "Far apart")
}

func TestPolygonsIntersect(t *testing.T) {
	a := square(0, 0, 4)
	assertTrue(t, PolygonsIntersect(a, square(2, 2, 4)), "Overlapping squares")
	assertTrue(t, PolygonsIntersect(CloseRing(a), square(2, 2, 4)), "Closed ring input")
	assertTrue(t, PolygonsIntersect(square(0, 0, 10), square(3, 3, 2)), "Nested squares")
	assertTrue(t, PolygonsIntersect(square(3, 3, 2), square(0, 0, 10)), "Nested squares reversed")
	assertTrue(t, !PolygonsIntersect(a, square(20, 20, 1)), "Disjoint squares")
	// only crosses the edge from the last vertex back to the first
	tab := Ring{Pt(-1, 1), Pt(1, 1), Pt(1, 2), Pt(-1, 2)}
	assertTrue(t, PolygonsIntersect(a, tab), "Closing edge is tested")
	assertTrue(t, !PolygonsIntersect(nil, a), "Empty ring")
}

func TestRingHelpers(t *testing.T) {
	closed := Ring{Pt(0, 0), Pt(1, 0), Pt(0, 1), Pt(0, 0)}
	assertTrue(t, len(OpenRing(closed)) == 3, "OpenRing drops the closing point")
	assertTrue(t, len(OpenRing(OpenRing(closed))) == 3, "OpenRing is idempotent")
	assertTrue(t, len(CloseRing(closed)) == 4, "CloseRing does not duplicate the closing point")

	flat := FlattenRing(OpenRing(closed))
	assertTrue(t, len(flat) == 6 && flat[2] == 1, "FlattenRing interleaves x and y")
	back := UnflattenRing(flat)
	assertTrue(t, len(back) == 3 && back[2] == Pt(0, 1), "UnflattenRing restores the points")

	assertTrue(t, RingIsFinite(closed), "Finite ring")
	assertTrue(t, !RingIsFinite(Ring{Pt(0, 0), Pt(math.NaN(), 0), Pt(1, 1)}), "NaN is rejected")
	assertTrue(t, !RingIsFinite(Ring{Pt(0, 0), Pt(math.Inf(1), 0), Pt(1, 1)}), "Inf is rejected")
}

func TestPrevNext(t *testing.T) {
	assertTrue(t, Prev(0, 4) == 3, "Prev wraps")
	assertTrue(t, Next(3, 4) == 0, "Next wraps")
	assertTrue(t, Next(1, 4) == 2, "Next advances")
}
