package quadtree

// cleanup rebalances n and every ancestor after entries left the subtree.
func (n *node[T]) cleanup() {
	for c := n; c != nil; c = c.parent {
		c.compact()
	}
}

// compact collapses n into a leaf once its children hold no more than
// capacity entries, and otherwise drops children that became empty. The
// count excludes n's own overflow, so a node with children always holds more
// than capacity entries below it.
func (n *node[T]) compact() {
	if n.leaf {
		return
	}
	if n.childCount() <= n.capacity {
		for _, child := range n.children {
			if child != nil {
				child.collect(&n.fitted)
			}
		}
		n.dropChildren()
		return
	}

	leaf := true
	for i, child := range n.children {
		if child == nil {
			continue
		}
		if child.count() == 0 {
			n.children[i] = nil
			continue
		}
		leaf = false
	}
	n.leaf = leaf
}
