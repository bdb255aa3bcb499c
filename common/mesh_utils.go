package common

import "math"

// BBox is an axis aligned bounding box. The zero value is not a valid box; use EmptyBBox.
type BBox struct {
	Min, Max Point
}

func EmptyBBox() BBox {
	return BBox{
		Min: Point{math.Inf(1), math.Inf(1)},
		Max: Point{math.Inf(-1), math.Inf(-1)},
	}
}

func RingBBox(r Ring) BBox {
	b := EmptyBBox()
	for _, p := range r {
		b = b.Extend(p)
	}
	return b
}

func (b BBox) Extend(p Point) BBox {
	b.Min = Point{min(b.Min.X(), p.X()), min(b.Min.Y(), p.Y())}
	b.Max = Point{max(b.Max.X(), p.X()), max(b.Max.Y(), p.Y())}
	return b
}

func (b BBox) Empty() bool {
	return b.Min.X() > b.Max.X() || b.Min.Y() > b.Max.Y()
}

// Overlaps is inclusive: boxes that only touch overlap.
func (b BBox) Overlaps(o BBox) bool {
	return b.Min.X() <= o.Max.X() && b.Max.X() >= o.Min.X() &&
		b.Min.Y() <= o.Max.Y() && b.Max.Y() >= o.Min.Y()
}

func (b BBox) Contains(p Point) bool {
	return p.X() >= b.Min.X() && p.X() <= b.Max.X() && p.Y() >= b.Min.Y() && p.Y() <= b.Max.Y()
}

// VequalApprox performs a sloppy colocation check with TouchEpsilon on each axis.
func VequalApprox(a, b Point) bool {
	return math.Abs(a.X()-b.X()) < TouchEpsilon && math.Abs(a.Y()-b.Y()) < TouchEpsilon
}

// RingsTouch returns true when any vertex of a coincides with a vertex of b.
// Rings sharing only part of an edge are not detected.
func RingsTouch(a, b Ring) bool {
	for _, pa := range a {
		for _, pb := range b {
			if VequalApprox(pa, pb) {
				return true
			}
		}
	}
	return false
}

// SharedVertices counts exact coordinate matches between two vertex lists.
func SharedVertices(a, b []Point) int {
	n := 0
	for _, va := range a {
		for _, vb := range b {
			if va == vb {
				n++
			}
		}
	}
	return n
}

func PathLength(path []Point) float64 {
	total := 0.0
	for i := 1; i < len(path); i++ {
		total += Dist(path[i-1], path[i])
	}
	return total
}
