package quadtree

import (
	"errors"
)

var (
	// ErrNotPowerOfTwo is returned by New when the side length or the minimum
	// side length is not a power of two.
	ErrNotPowerOfTwo = errors.New("quadtree: side lengths must be powers of two")

	// ErrInvalidCapacity is returned by New for a negative node capacity.
	ErrInvalidCapacity = errors.New("quadtree: capacity must not be negative")

	// ErrNoIntersection is returned when a box does not intersect the bounds
	// of the tree.
	ErrNoIntersection = errors.New("quadtree: box does not intersect the tree bounds")

	// ErrItemNotFound is returned by Remove and Move when the item is not
	// stored under the given box. The item being in the tree is a
	// precondition of both.
	ErrItemNotFound = errors.New("quadtree: item not found")

	// ErrNilArgument is returned when the item is the zero value or the box
	// is empty.
	ErrNilArgument = errors.New("quadtree: item and box must be set")
)
