package quadtree

import (
	"strconv"
)

// Rect is an axis-aligned rectangle with integer coordinates. The origin is the
// upper-left corner and the rectangle covers [X, X+Width) x [Y, Y+Height).
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

func (r Rect) String() string {
	return "{" + strconv.Itoa(r.X) + ", " + strconv.Itoa(r.Y) + ", " + strconv.Itoa(r.Width) + ", " + strconv.Itoa(r.Height) + "}"
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// ContainsPoint reports whether (x, y) lies inside r. The right and bottom
// edges are exclusive.
func (r Rect) ContainsPoint(x, y int) bool {
	return x >= r.X &&
		y >= r.Y &&
		x < r.X+r.Width &&
		y < r.Y+r.Height
}

// Contains reports whether both the upper-left and the lower-right corner of
// other lie inside r. A box touching the right or bottom edge of r is
// therefore not contained.
func (r Rect) Contains(other Rect) bool {
	return r.ContainsPoint(other.X, other.Y) &&
		r.ContainsPoint(other.X+other.Width, other.Y+other.Height)
}

// Intersects reports whether r and other overlap. Rectangles that only share
// an edge do not intersect.
func (r Rect) Intersects(other Rect) bool {
	return other.X < r.X+r.Width &&
		other.Y < r.Y+r.Height &&
		other.X+other.Width > r.X &&
		other.Y+other.Height > r.Y
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}
