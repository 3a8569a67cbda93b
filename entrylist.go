package quadtree

// entry pairs a stored item with the box it was inserted under.
type entry[T comparable] struct {
	item T
	box  Rect
}

// entryList holds the entries of one node. Order is insertion order; nothing
// depends on it except the debug rendering.
type entryList[T comparable] []entry[T]

func (l *entryList[T]) add(e entry[T]) {
	*l = append(*l, e)
}

// index returns the position of the first entry holding item, or -1.
func (l entryList[T]) index(item T) int {
	for i := range l {
		if l[i].item == item {
			return i
		}
	}
	return -1
}

// take removes the first entry holding item and reports whether one was found.
func (l *entryList[T]) take(item T) bool {
	i := l.index(item)
	if i < 0 {
		return false
	}
	s := *l
	copy(s[i:], s[i+1:])
	var zero entry[T]
	s[len(s)-1] = zero
	*l = s[:len(s)-1]
	return true
}

func (l *entryList[T]) clear() {
	*l = nil
}
