/*
Package quadtree implements a quadtree over axis-aligned integer rectangles.

The tree covers a square whose side is a power of two. A node keeps up to
capacity entries that fit into one of its four quadrants; when another one
arrives the node splits and pushes them down into child nodes. Entries that
straddle a quadrant boundary, or that sit in a node which may not be split
further because its quadrants would be smaller than the minimum side length,
stay in the node's overflow list. Removing entries folds sparse subtrees back
into a single node.

Boxes partly outside the tree are accepted as long as they intersect it; they
are kept at the root.

Move searches for the new place of an item starting from the node that held
it, which for small movements is usually the node the item ends up in.

Items are located by the box they were stored under, so Remove, Move and
Contains must be given that box. Inserting an item that is already in the
tree is not detected.

A Quadtree is not safe for concurrent use. LockBased wraps one behind a single
mutex.
*/
package quadtree
