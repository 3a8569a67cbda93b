//go:build !quadtreedebug

package quadtree

func assertIntegrity[T comparable](*Quadtree[T]) {}
