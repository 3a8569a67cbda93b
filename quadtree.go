package quadtree

import (
	"fmt"
)

// Quadtree indexes items by axis-aligned rectangles. Nodes split when more
// than capacity entries fit into their quadrants and fold back together as
// entries are removed.
//
// Items are compared with ==, so pointer and handle types give identity
// semantics. The zero value of T is reserved: Insert and Move reject it with
// ErrNilArgument, so a Quadtree[int] cannot hold the item 0.
//
// Quadtree is not safe for concurrent use; see LockBased.
type Quadtree[T comparable] struct {
	root *node[T]
}

// New creates an empty tree covering the square with upper-left corner
// (originX, originY) and the given side length. Nodes are never split into
// quadrants smaller than minSideLength. Both lengths must be powers of two.
func New[T comparable](originX, originY, sideLength, minSideLength, capacity int) (*Quadtree[T], error) {
	if !isPowerOfTwo(sideLength) || !isPowerOfTwo(minSideLength) {
		return nil, fmt.Errorf("side %d, min side %d: %w", sideLength, minSideLength, ErrNotPowerOfTwo)
	}
	if capacity < 0 {
		return nil, fmt.Errorf("capacity %d: %w", capacity, ErrInvalidCapacity)
	}
	bounds := Rect{originX, originY, sideLength, sideLength}
	return &Quadtree[T]{root: newNode[T](nil, bounds, minSideLength, capacity)}, nil
}

// Bounds returns the area covered by the tree.
func (q *Quadtree[T]) Bounds() Rect {
	return q.root.bounds
}

func (q *Quadtree[T]) checkArgs(item T, box Rect) error {
	var zero T
	if item == zero {
		return fmt.Errorf("zero item: %w", ErrNilArgument)
	}
	if box.Empty() {
		return fmt.Errorf("box %s: %w", box, ErrNilArgument)
	}
	if !q.root.bounds.Intersects(box) {
		return fmt.Errorf("box %s outside %s: %w", box, q.root.bounds, ErrNoIntersection)
	}
	return nil
}

// Insert adds item under box. The box must intersect the tree bounds; it may
// extend past them.
func (q *Quadtree[T]) Insert(item T, box Rect) error {
	assertIntegrity(q)
	if err := q.checkArgs(item, box); err != nil {
		return err
	}
	q.root.insert(entry[T]{item: item, box: box})
	assertIntegrity(q)
	return nil
}

// Remove deletes item, which must have been inserted or moved to box.
func (q *Quadtree[T]) Remove(item T, box Rect) error {
	assertIntegrity(q)
	n := q.root.searchNode(box)
	if !n.take(item) {
		return fmt.Errorf("remove %v at %s: %w", item, box, ErrItemNotFound)
	}
	n.cleanup()
	assertIntegrity(q)
	return nil
}

// Move relocates item from oldBox to newBox. The search for a new place
// starts at the node that held the item instead of the root.
func (q *Quadtree[T]) Move(item T, oldBox, newBox Rect) error {
	assertIntegrity(q)
	if err := q.checkArgs(item, newBox); err != nil {
		return err
	}
	n := q.root.searchNode(oldBox)
	if !n.take(item) {
		return fmt.Errorf("move %v from %s: %w", item, oldBox, ErrItemNotFound)
	}
	n.insert(entry[T]{item: item, box: newBox})
	n.cleanup()
	assertIntegrity(q)
	return nil
}

// Contains reports whether item is stored under box.
func (q *Quadtree[T]) Contains(item T, box Rect) bool {
	return q.root.searchNode(box).holds(item)
}

// Query returns every item whose box intersects b. The order of the result
// is unspecified.
func (q *Quadtree[T]) Query(b Rect) ([]T, error) {
	if !q.root.bounds.Intersects(b) {
		return nil, fmt.Errorf("query %s outside %s: %w", b, q.root.bounds, ErrNoIntersection)
	}
	found := make(map[T]struct{})
	q.root.query(b, found)
	items := make([]T, 0, len(found))
	for item := range found {
		items = append(items, item)
	}
	return items, nil
}

// All returns every item in the tree.
func (q *Quadtree[T]) All() []T {
	items, _ := q.Query(q.root.bounds)
	return items
}

// Count returns the number of stored items. It walks the whole tree.
func (q *Quadtree[T]) Count() int {
	return q.root.count()
}

// Clear removes all items.
func (q *Quadtree[T]) Clear() {
	assertIntegrity(q)
	q.root.dropChildren()
	q.root.fitted.clear()
	q.root.overflow.clear()
	assertIntegrity(q)
}
