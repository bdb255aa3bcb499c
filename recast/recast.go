// Package recast builds navigation data from 2D polygon geometry: triangle cells,
// cell adjacency graphs and the boolean edits applied to walkable regions.
package recast

import "errors"

// EarClipGuard bounds the number of ears clipped from one ring. When it is reached the
// triangles produced so far are returned.
const EarClipGuard = 1000

var (
	// ErrInvalidRing reports a ring the boolean or triangulation adapters cannot accept.
	ErrInvalidRing = errors.New("recast: invalid ring")
	ErrTriangulate = errors.New("recast: triangulation failed")
)
