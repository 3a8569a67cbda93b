package quadtree

import (
	"errors"
	"log/slog"
	"sync"
)

// Index is the operation set shared by Quadtree and LockBased.
type Index[T comparable] interface {
	Bounds() Rect
	Insert(item T, box Rect) error
	Remove(item T, box Rect) error
	Move(item T, oldBox, newBox Rect) error
	Contains(item T, box Rect) bool
	Query(b Rect) ([]T, error)
	All() []T
	Count() int
	Clear()
	CheckIntegrity() error
	String() string
}

var (
	_ Index[int] = (*Quadtree[int])(nil)
	_ Index[int] = (*LockBased[int])(nil)
)

// LockBased is a Quadtree safe for concurrent use. Every operation, reads
// included, holds one mutex for the whole tree, so a long query blocks all
// writers and the other way round.
type LockBased[T comparable] struct {
	mutex sync.Mutex
	tree  *Quadtree[T]
	log   *slog.Logger
}

// LockOption configures a LockBased tree.
type LockOption func(*lockOptions)

type lockOptions struct {
	log *slog.Logger
}

// WithLogger makes the tree log rejected operations at debug level.
func WithLogger(log *slog.Logger) LockOption {
	return func(o *lockOptions) {
		o.log = log
	}
}

// NewLockBased creates a concurrency-safe tree. The arguments are the same as
// for New.
func NewLockBased[T comparable](originX, originY, sideLength, minSideLength, capacity int, opts ...LockOption) (*LockBased[T], error) {
	o := lockOptions{log: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}
	tree, err := New[T](originX, originY, sideLength, minSideLength, capacity)
	if err != nil {
		return nil, err
	}
	return &LockBased[T]{tree: tree, log: o.log.With("system", "quadtree")}, nil
}

// Bounds never changes and is read without locking.
func (q *LockBased[T]) Bounds() Rect {
	return q.tree.Bounds()
}

func (q *LockBased[T]) Insert(item T, box Rect) error {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	err := q.tree.Insert(item, box)
	q.logRejected("insert", item, err, "box", box.String())
	return err
}

func (q *LockBased[T]) Remove(item T, box Rect) error {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	err := q.tree.Remove(item, box)
	q.logRejected("remove", item, err, "box", box.String())
	return err
}

func (q *LockBased[T]) Move(item T, oldBox, newBox Rect) error {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	err := q.tree.Move(item, oldBox, newBox)
	q.logRejected("move", item, err, "old", oldBox.String(), "new", newBox.String())
	return err
}

func (q *LockBased[T]) Contains(item T, box Rect) bool {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	return q.tree.Contains(item, box)
}

func (q *LockBased[T]) Query(b Rect) ([]T, error) {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	return q.tree.Query(b)
}

func (q *LockBased[T]) All() []T {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	return q.tree.All()
}

func (q *LockBased[T]) Count() int {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	return q.tree.Count()
}

func (q *LockBased[T]) Clear() {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	q.tree.Clear()
}

func (q *LockBased[T]) CheckIntegrity() error {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	return q.tree.CheckIntegrity()
}

func (q *LockBased[T]) String() string {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	return q.tree.String()
}

// logRejected logs contract violations. args carries the boxes involved as
// key-value pairs.
func (q *LockBased[T]) logRejected(op string, item T, err error, args ...any) {
	if err == nil {
		return
	}
	if errors.Is(err, ErrItemNotFound) || errors.Is(err, ErrNoIntersection) {
		args = append([]any{"op", op, "item", item}, args...)
		q.log.Debug("operation rejected", append(args, "err", err)...)
	}
}
