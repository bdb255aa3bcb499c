package common

import (
	"math"
	"slices"
	"sort"
)

const (
	// TouchEpsilon is the tolerance used when matching vertices of different region polygons.
	TouchEpsilon = 1e-6
	// rayEpsilon keeps the ray-cast division finite on horizontal edges.
	rayEpsilon = 1e-12
)

// / Returns the distance between two points.
// / @param[in]		a	A point.
// / @param[in]		b	A point.
func Dist(a, b Point) float64 {
	return b.Sub(a).Len()
}

// / Returns the square of the distance between two points.
func DistSquared(a, b Point) float64 {
	return b.Sub(a).LenSqr()
}

func DistManhattan(a, b Point) float64 {
	return math.Abs(a.X()-b.X()) + math.Abs(a.Y()-b.Y())
}

// / Approximates the distance between two points with alpha-max + beta-min.
// / The error stays within a few percent which is enough for ranking candidates.
func DistQuick(a, b Point) float64 {
	dx := math.Abs(a.X() - b.X())
	dy := math.Abs(a.Y() - b.Y())
	return max(dx, dy)*0.96 + min(dx, dy)*0.4
}

// / Derives the signed area of the triangle OAB times two.
// / Positive when o, a, b turn counter-clockwise.
func Cross(o, a, b Point) float64 {
	return (a.X()-o.X())*(b.Y()-o.Y()) - (a.Y()-o.Y())*(b.X()-o.X())
}

// SignedArea is positive for counter-clockwise rings.
func SignedArea(r Ring) float64 {
	n := len(r)
	if n < 3 {
		return 0
	}
	area := 0.0
	for i := 0; i < n; i++ {
		p := r[i]
		q := r[Next(i, n)]
		area += p.X()*q.Y() - q.X()*p.Y()
	}
	return area / 2
}

func IsCCW(r Ring) bool {
	sum := 0.0
	for i := range r {
		p1 := r[i]
		p2 := r[Next(i, len(r))]
		sum += (p2.X() - p1.X()) * (p2.Y() + p1.Y())
	}
	return sum < 0
}

// EnsureCCW returns a copy of r wound counter-clockwise.
func EnsureCCW(r Ring) Ring {
	res := CopyRing(r)
	if IsCCW(res) {
		return res
	}
	for i, j := 0, len(res)-1; i < j; i, j = i+1, j-1 {
		res[i], res[j] = res[j], res[i]
	}
	return res
}

// IsConvex ignores collinear vertices.
func IsConvex(r Ring) bool {
	n := len(r)
	if n < 4 {
		return true
	}
	sign := 0.0
	for i := 0; i < n; i++ {
		a := r[i]
		b := r[(i+1)%n]
		c := r[(i+2)%n]
		z := (c.X()-b.X())*(a.Y()-b.Y()) - (c.Y()-b.Y())*(a.X()-b.X())
		if z == 0 {
			continue
		}
		if sign == 0 {
			sign = math.Copysign(1, z)
		} else if sign != math.Copysign(1, z) {
			return false
		}
	}
	return true
}

// Centroid is the mean of the ring vertices, not the area centroid.
func Centroid(r Ring) Point {
	if len(r) == 0 {
		return Point{}
	}
	var c Point
	for _, p := range r {
		c = c.Add(p)
	}
	return c.Mul(1 / float64(len(r)))
}

// / Checks if a point is contained within a ring with the even-odd rule.
// / @param[in]	p		The point to check
// / @param[in]	ring	The ring vertices, implicitly closed
// / @returns true if the point lies within the ring.
func PointInPolygon(p Point, ring Ring) bool {
	inside := false
	for i, j := 0, len(ring)-1; i < len(ring); j, i = i, i+1 {
		xi, yi := ring[i].X(), ring[i].Y()
		xj, yj := ring[j].X(), ring[j].Y()
		if (yi > p.Y()) == (yj > p.Y()) {
			continue
		}
		if p.X() < (xj-xi)*(p.Y()-yi)/(yj-yi+rayEpsilon)+xi {
			inside = !inside
		}
	}
	return inside
}

// / Checks if a point is inside or on the boundary of triangle abc.
func PointInTriangle(p, a, b, c Point) bool {
	s1 := Cross(p, a, b)
	s2 := Cross(p, b, c)
	s3 := Cross(p, c, a)
	return (s1 >= 0 && s2 >= 0 && s3 >= 0) || (s1 <= 0 && s2 <= 0 && s3 <= 0)
}

func ccw(p1, p2, p3 Point) bool {
	return (p3.Y()-p1.Y())*(p2.X()-p1.X()) > (p2.Y()-p1.Y())*(p3.X()-p1.X())
}

// / Returns true iff a1a2 properly crosses b1b2.
// / Collinear overlap and shared endpoints are not reported.
func SegmentsIntersect(a1, a2, b1, b2 Point) bool {
	if Cross(a1, a2, b1) == 0 || Cross(a1, a2, b2) == 0 ||
		Cross(b1, b2, a1) == 0 || Cross(b1, b2, a2) == 0 {
		return false
	}
	return ccw(a1, b1, b2) != ccw(a2, b1, b2) && ccw(a1, a2, b1) != ccw(a1, a2, b2)
}

// RingSelfIntersects reports a proper crossing between two non-adjacent edges.
func RingSelfIntersects(r Ring) bool {
	n := len(r)
	for i := 0; i < n; i++ {
		a1, a2 := r[i], r[Next(i, n)]
		for j := i + 2; j < n; j++ {
			if i == 0 && j == n-1 {
				continue
			}
			if SegmentsIntersect(a1, a2, r[j], r[Next(j, n)]) {
				return true
			}
		}
	}
	return false
}

// TrianglesIntersect reports whether two triangles overlap: an edge of one properly
// crosses an edge of the other, or a vertex of one lies inside the other.
func TrianglesIntersect(t1, t2 [3]Point) bool {
	for i := 0; i < 3; i++ {
		a1, a2 := t1[i], t1[Next(i, 3)]
		for j := 0; j < 3; j++ {
			if SegmentsIntersect(a1, a2, t2[j], t2[Next(j, 3)]) {
				return true
			}
		}
	}
	return PointInTriangle(t1[0], t2[0], t2[1], t2[2]) || PointInTriangle(t2[0], t1[0], t1[1], t1[2])
}

// PolygonsIntersect is TrianglesIntersect for simple rings, closing edges included.
// Rings that only touch along an edge or at a vertex may report either way.
func PolygonsIntersect(a, b Ring) bool {
	a, b = OpenRing(a), OpenRing(b)
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	for i := range a {
		a1, a2 := a[i], a[Next(i, len(a))]
		for j := range b {
			if SegmentsIntersect(a1, a2, b[j], b[Next(j, len(b))]) {
				return true
			}
		}
	}
	return PointInPolygon(a[0], b) || PointInPolygon(b[0], a)
}

// ConvexHull returns the hull in counter-clockwise order using the monotone chain.
// Duplicate and collinear points are dropped.
func ConvexHull(points []Point) []Point {
	pts := make([]Point, len(points))
	copy(pts, points)
	sort.SliceStable(pts, func(i, j int) bool {
		if pts[i].X() == pts[j].X() {
			return pts[i].Y() < pts[j].Y()
		}
		return pts[i].X() < pts[j].X()
	})
	pts = slices.Compact(pts)
	if len(pts) < 3 {
		return pts
	}
	lower := make([]Point, 0, len(pts))
	for _, p := range pts {
		for len(lower) >= 2 && Cross(lower[len(lower)-2], lower[len(lower)-1], p) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}
	upper := make([]Point, 0, len(pts))
	for i := len(pts) - 1; i >= 0; i-- {
		p := pts[i]
		for len(upper) >= 2 && Cross(upper[len(upper)-2], upper[len(upper)-1], p) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}
	return append(lower[:len(lower)-1], upper[:len(upper)-1]...)
}

func IsFinite(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}

func RingIsFinite(r Ring) bool {
	for _, p := range r {
		if !IsFinite(p.X()) || !IsFinite(p.Y()) {
			return false
		}
	}
	return true
}
