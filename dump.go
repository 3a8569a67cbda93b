package quadtree

import (
	"fmt"
	"strings"

	"github.com/xlab/treeprint"
)

// String renders the tree for debugging: every node with its bounds, its
// fitted and overflow items, and its children indented below it. The format
// is not stable.
func (q *Quadtree[T]) String() string {
	tree := treeprint.NewWithRoot("root " + q.root.bounds.String())
	q.root.dump(tree)
	return tree.String()
}

func (n *node[T]) dump(tree treeprint.Tree) {
	if len(n.fitted) > 0 {
		tree.AddNode("fitted: " + joinItems(n.fitted))
	}
	if len(n.overflow) > 0 {
		tree.AddNode("overflow: " + joinItems(n.overflow))
	}
	for i, child := range n.children {
		if child == nil {
			continue
		}
		child.dump(tree.AddBranch(quadrantNames[i] + " " + child.bounds.String()))
	}
}

func joinItems[T comparable](l entryList[T]) string {
	var sb strings.Builder
	for i, e := range l {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%v", e.item)
	}
	return sb.String()
}
