package quadtree

import (
	"errors"
	"fmt"
)

// ErrCorrupt is wrapped by every error CheckIntegrity returns.
var ErrCorrupt = errors.New("quadtree: integrity violated")

// CheckIntegrity walks the whole tree and verifies its structural
// invariants, returning an error describing the first violation. It is meant
// for tests and diagnostics; it visits every node and every entry.
func (q *Quadtree[T]) CheckIntegrity() error {
	if q.root.parent != nil {
		return fmt.Errorf("%w: root has a parent", ErrCorrupt)
	}
	if err := q.root.check(); err != nil {
		return err
	}

	var all entryList[T]
	q.root.collect(&all)
	seen := make(map[T]struct{}, len(all))
	for _, e := range all {
		if _, dup := seen[e.item]; dup {
			return fmt.Errorf("%w: item %v stored twice", ErrCorrupt, e.item)
		}
		seen[e.item] = struct{}{}
		if !q.Contains(e.item, e.box) {
			return fmt.Errorf("%w: item %v at %s is not where search routes", ErrCorrupt, e.item, e.box)
		}
	}
	return nil
}

func (n *node[T]) check() error {
	if n.bounds.Width != n.bounds.Height || !isPowerOfTwo(n.bounds.Width) {
		return fmt.Errorf("%w: node %s is not a power-of-two square", ErrCorrupt, n.bounds)
	}
	if !n.leaf && len(n.fitted) > 0 {
		return fmt.Errorf("%w: inner node %s holds fitted entries", ErrCorrupt, n.bounds)
	}
	if len(n.fitted) > n.capacity {
		return fmt.Errorf("%w: node %s holds %d fitted entries, capacity %d", ErrCorrupt, n.bounds, len(n.fitted), n.capacity)
	}
	if !n.leaf && n.childCount() <= n.capacity {
		return fmt.Errorf("%w: inner node %s should have collapsed", ErrCorrupt, n.bounds)
	}
	if n.maxRes != (n.bounds.Width/2 < n.minSide) {
		return fmt.Errorf("%w: node %s has wrong maximum resolution flag", ErrCorrupt, n.bounds)
	}
	if n.maxRes && n.childBounds != [4]Rect{} {
		return fmt.Errorf("%w: node %s at maximum resolution has quadrants", ErrCorrupt, n.bounds)
	}

	leaf := true
	for i, child := range n.children {
		if child == nil {
			continue
		}
		leaf = false
		if n.maxRes {
			return fmt.Errorf("%w: node %s at maximum resolution has children", ErrCorrupt, n.bounds)
		}
		if child.parent != n {
			return fmt.Errorf("%w: child %s has a wrong parent", ErrCorrupt, child.bounds)
		}
		if child.bounds != n.childBounds[i] {
			return fmt.Errorf("%w: child %s is in the %s slot of %s", ErrCorrupt, child.bounds, quadrantNames[i], n.bounds)
		}
		if child.count() == 0 {
			return fmt.Errorf("%w: child %s is empty", ErrCorrupt, child.bounds)
		}
		if err := child.check(); err != nil {
			return err
		}
	}
	if leaf != n.leaf {
		return fmt.Errorf("%w: node %s has wrong leaf flag", ErrCorrupt, n.bounds)
	}
	for _, e := range n.fitted {
		if n.quadrantFor(e.box) < 0 {
			return fmt.Errorf("%w: fitted entry %s does not fit a quadrant of %s", ErrCorrupt, e.box, n.bounds)
		}
	}
	return nil
}
