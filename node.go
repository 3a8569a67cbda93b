package quadtree

// Quadrant positions. The order is clockwise starting at the upper left.
const (
	nw = iota
	ne
	se
	sw
)

var quadrantNames = [4]string{"nw", "ne", "se", "sw"}

// node is one square of the tree. Entries that fit into a single quadrant
// live in fitted while the node is a leaf under capacity; everything that
// straddles a quadrant boundary, or cannot be subdivided further, lives in
// overflow.
type node[T comparable] struct {
	bounds      Rect
	capacity    int
	minSide     int
	maxRes      bool
	leaf        bool
	parent      *node[T]
	childBounds [4]Rect
	children    [4]*node[T]
	fitted      entryList[T]
	overflow    entryList[T]
}

func newNode[T comparable](parent *node[T], bounds Rect, minSide, capacity int) *node[T] {
	n := &node[T]{
		bounds:   bounds,
		capacity: capacity,
		minSide:  minSide,
		leaf:     true,
		parent:   parent,
	}
	half := bounds.Width / 2
	if half < minSide {
		n.maxRes = true
		return n
	}
	n.childBounds[nw] = Rect{bounds.X, bounds.Y, half, half}
	n.childBounds[ne] = Rect{bounds.X + half, bounds.Y, half, half}
	n.childBounds[se] = Rect{bounds.X + half, bounds.Y + half, half, half}
	n.childBounds[sw] = Rect{bounds.X, bounds.Y + half, half, half}
	return n
}

// quadrantFor returns the quadrant box fits into, or -1 if it straddles a
// quadrant boundary or the node is at maximum resolution.
func (n *node[T]) quadrantFor(box Rect) int {
	if n.maxRes {
		return -1
	}
	for i := range n.childBounds {
		if n.childBounds[i].Contains(box) {
			return i
		}
	}
	return -1
}

func (n *node[T]) createQuadrant(q int) *node[T] {
	if n.children[q] == nil {
		n.children[q] = newNode(n, n.childBounds[q], n.minSide, n.capacity)
		n.leaf = false
	}
	return n.children[q]
}

// insert places e in the subtree rooted at n. Boxes not contained in n are
// handed to the parent; the root keeps them as overflow.
func (n *node[T]) insert(e entry[T]) {
	if !n.bounds.Contains(e.box) {
		if n.parent == nil {
			n.overflow.add(e)
			return
		}
		n.parent.insert(e)
		return
	}

	q := n.quadrantFor(e.box)
	if q < 0 {
		n.overflow.add(e)
		return
	}
	if n.leaf && len(n.fitted) < n.capacity {
		n.fitted.add(e)
		return
	}

	n.createQuadrant(q)
	n.disperse()
	n.children[q].insert(e)
}

// disperse moves every fitted entry into the child of its quadrant, creating
// children as needed. Fitted entries always fit a quadrant.
func (n *node[T]) disperse() {
	for _, f := range n.fitted {
		q := n.quadrantFor(f.box)
		if q < 0 {
			panic("quadtree: fitted entry does not fit a quadrant")
		}
		n.createQuadrant(q).insert(f)
	}
	n.fitted.clear()
}

// searchNode returns the deepest existing node box would be routed to. It is
// a guess: the caller still has to look at both entry lists of the result.
func (n *node[T]) searchNode(box Rect) *node[T] {
	q := n.quadrantFor(box)
	if q < 0 || n.leaf || n.children[q] == nil {
		return n
	}
	return n.children[q].searchNode(box)
}

// take removes item from the entry lists of n only.
func (n *node[T]) take(item T) bool {
	return n.fitted.take(item) || n.overflow.take(item)
}

func (n *node[T]) holds(item T) bool {
	return n.fitted.index(item) >= 0 || n.overflow.index(item) >= 0
}

func (n *node[T]) query(b Rect, found map[T]struct{}) {
	for _, e := range n.fitted {
		if e.box.Intersects(b) {
			found[e.item] = struct{}{}
		}
	}
	for _, e := range n.overflow {
		if e.box.Intersects(b) {
			found[e.item] = struct{}{}
		}
	}
	if n.leaf {
		return
	}
	for i, child := range n.children {
		if child != nil && n.childBounds[i].Intersects(b) {
			child.query(b, found)
		}
	}
}

func (n *node[T]) count() int {
	return len(n.fitted) + len(n.overflow) + n.childCount()
}

// childCount is the number of entries held below n.
func (n *node[T]) childCount() int {
	c := 0
	for _, child := range n.children {
		if child != nil {
			c += child.count()
		}
	}
	return c
}

// collect appends every entry of the subtree rooted at n to dst.
func (n *node[T]) collect(dst *entryList[T]) {
	*dst = append(*dst, n.overflow...)
	*dst = append(*dst, n.fitted...)
	for _, child := range n.children {
		if child != nil {
			child.collect(dst)
		}
	}
}

func (n *node[T]) dropChildren() {
	n.children = [4]*node[T]{}
	n.leaf = true
}
