package recast

import (
	"fmt"
	"math"

	"github.com/ctessum/polyclip-go"
	"github.com/gorustyt/polynav/common"
)

// minContourArea drops slivers produced by the clipper.
const minContourArea = 1e-12

// PolygonSet is an ordered multi-polygon.
type PolygonSet []*Polygon

func (s PolygonSet) Polygons() []*Polygon {
	return s
}

func (s PolygonSet) Area() float64 {
	a := 0.0
	for _, p := range s {
		a += p.Area()
	}
	return a
}

func (s PolygonSet) Union(other PolygonSet) (PolygonSet, error) {
	return Union(s, other)
}

// Difference subtracts other from each polygon of s separately.
func (s PolygonSet) Difference(other PolygonSet) (PolygonSet, error) {
	var res PolygonSet
	for _, p := range s {
		d, err := Difference(PolygonSet{p}, other)
		if err != nil {
			return nil, err
		}
		res = append(res, d...)
	}
	return res, nil
}

// Union merges every polygon of every set. Polygons are folded in one at a time so
// overlapping members of the same set are merged rather than cancelled.
func Union(sets ...PolygonSet) (PolygonSet, error) {
	var acc polyclip.Polygon
	for _, set := range sets {
		for _, p := range set {
			c, err := toClipPolygon(p)
			if err != nil {
				return nil, err
			}
			if len(acc) == 0 {
				acc = c
				continue
			}
			acc = acc.Construct(polyclip.UNION, c)
		}
	}
	return fromClipPolygon(acc)
}

// Difference removes every clip set from subject in order. An empty subject is
// returned as is without calling the clipper.
func Difference(subject PolygonSet, clips ...PolygonSet) (PolygonSet, error) {
	acc, err := toClipSet(subject)
	if err != nil {
		return nil, err
	}
	for _, set := range clips {
		for _, p := range set {
			if len(acc) == 0 {
				return nil, nil
			}
			c, err := toClipPolygon(p)
			if err != nil {
				return nil, err
			}
			acc = acc.Construct(polyclip.DIFFERENCE, c)
		}
	}
	return fromClipPolygon(acc)
}

// UnionRing and DifferenceRing apply a bare ring, as registered by layer edits.
func UnionRing(subject PolygonSet, ring common.Ring) (PolygonSet, error) {
	c, err := toContour(ring)
	if err != nil {
		return nil, err
	}
	acc, err := toClipSet(subject)
	if err != nil {
		return nil, err
	}
	if len(acc) == 0 {
		return fromClipPolygon(polyclip.Polygon{c})
	}
	return fromClipPolygon(acc.Construct(polyclip.UNION, polyclip.Polygon{c}))
}

func DifferenceRing(subject PolygonSet, ring common.Ring) (PolygonSet, error) {
	c, err := toContour(ring)
	if err != nil {
		return nil, err
	}
	acc, err := toClipSet(subject)
	if err != nil {
		return nil, err
	}
	if len(acc) == 0 {
		return nil, nil
	}
	return fromClipPolygon(acc.Construct(polyclip.DIFFERENCE, polyclip.Polygon{c}))
}

func toClipSet(set PolygonSet) (polyclip.Polygon, error) {
	var res polyclip.Polygon
	for _, p := range set {
		c, err := toClipPolygon(p)
		if err != nil {
			return nil, err
		}
		res = append(res, c...)
	}
	return res, nil
}

func toClipPolygon(p *Polygon) (polyclip.Polygon, error) {
	outer, err := toContour(p.points)
	if err != nil {
		return nil, err
	}
	res := polyclip.Polygon{outer}
	for _, h := range p.holes {
		hc, err := toContour(h.points)
		if err != nil {
			return nil, err
		}
		res = append(res, hc)
	}
	return res, nil
}

// toContour opens the ring (the clipper closes contours implicitly) and rejects rings
// the clipper cannot handle.
func toContour(r common.Ring) (polyclip.Contour, error) {
	r = common.OpenRing(r)
	if len(r) < 3 {
		return nil, fmt.Errorf("%w: %d points", ErrInvalidRing, len(r))
	}
	if !common.RingIsFinite(r) {
		return nil, fmt.Errorf("%w: non finite coordinate", ErrInvalidRing)
	}
	if common.RingSelfIntersects(r) {
		return nil, fmt.Errorf("%w: self intersecting", ErrInvalidRing)
	}
	c := make(polyclip.Contour, len(r))
	for i, pt := range r {
		c[i] = polyclip.Point{X: pt.X(), Y: pt.Y()}
	}
	return c, nil
}

// fromClipPolygon groups flat clipper contours by nesting depth: even depth contours are
// outer rings, odd depth contours become holes of the innermost enclosing outer ring.
func fromClipPolygon(p polyclip.Polygon) (PolygonSet, error) {
	rings := make([]common.Ring, 0, len(p))
	for _, c := range p {
		r := make(common.Ring, 0, len(c))
		for _, pt := range c {
			r = append(r, common.Point{pt.X, pt.Y})
		}
		r = common.OpenRing(r)
		if len(r) < 3 || math.Abs(common.SignedArea(r)) < minContourArea {
			continue
		}
		rings = append(rings, r)
	}

	depth := make([]int, len(rings))
	parent := make([]int, len(rings))
	for i := range rings {
		parent[i] = -1
		probe := rings[i][0]
		for j := range rings {
			if i == j || !common.PointInPolygon(probe, rings[j]) {
				continue
			}
			depth[i]++
			// the innermost container has the smallest area
			if parent[i] < 0 || math.Abs(common.SignedArea(rings[j])) < math.Abs(common.SignedArea(rings[parent[i]])) {
				parent[i] = j
			}
		}
	}

	holes := make(map[int][]common.Ring)
	for i := range rings {
		if depth[i]%2 == 1 && parent[i] >= 0 {
			holes[parent[i]] = append(holes[parent[i]], rings[i])
		}
	}
	var res PolygonSet
	for i := range rings {
		if depth[i]%2 != 0 {
			continue
		}
		poly, err := NewPolygonFromRings(rings[i], holes[i]...)
		if err != nil {
			return nil, err
		}
		res = append(res, poly)
	}
	return res, nil
}

// ValidateRing applies the same checks the clipper adapter does.
func ValidateRing(r common.Ring) error {
	_, err := toContour(r)
	return err
}
