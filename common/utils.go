package common

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Point is an immutable 2D coordinate.
type Point = mgl64.Vec2

type Ring = []Point

type IT interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

func Pt(x, y float64) Point {
	return Point{x, y}
}

// Prev and Next walk a cyclic index range of length n.
func Prev[T IT](i, n T) T {
	if i > 0 {
		return i - 1
	}
	return n - 1
}

func Next[T IT](i, n T) T {
	if i+1 < n {
		return i + 1
	}
	return 0
}

func AssertTrue(v bool, args ...any) {
	if !v {
		panic(fmt.Sprint(append([]any{"assert failed "}, args...)...))
	}
}

// CopyRing returns a deep copy of r.
func CopyRing(r Ring) Ring {
	if r == nil {
		return nil
	}
	res := make(Ring, len(r))
	copy(res, r)
	return res
}

// OpenRing drops the closing point of an explicitly closed ring.
func OpenRing(r Ring) Ring {
	if len(r) > 1 && r[0] == r[len(r)-1] {
		return r[:len(r)-1]
	}
	return r
}

// CloseRing returns a copy of r with its first point repeated at the end.
func CloseRing(r Ring) Ring {
	res := CopyRing(OpenRing(r))
	if len(res) > 0 {
		res = append(res, res[0])
	}
	return res
}

// FlattenRing returns x0, y0, x1, y1, ...
func FlattenRing(r Ring) []float64 {
	res := make([]float64, 0, len(r)*2)
	for _, p := range r {
		res = append(res, p.X(), p.Y())
	}
	return res
}

func UnflattenRing(coords []float64) Ring {
	res := make(Ring, 0, len(coords)/2)
	for i := 0; i+1 < len(coords); i += 2 {
		res = append(res, Point{coords[i], coords[i+1]})
	}
	return res
}
