//go:build quadtreedebug

package quadtree

// assertIntegrity panics if the tree is corrupt. Built with the
// quadtreedebug tag only.
func assertIntegrity[T comparable](q *Quadtree[T]) {
	if err := q.CheckIntegrity(); err != nil {
		panic(err)
	}
}
