package quadtree

import (
	"bytes"
	"log/slog"
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

type placed struct {
	id  uuid.UUID
	box Rect
}

// testConcurrent runs workers goroutines that each insert, move and remove
// their own items.
func testConcurrent(t *testing.T, points int, workers int) {
	q, err := NewLockBased[uuid.UUID](upperLeft, upperLeft, side, 16, 4)
	require.NoError(t, err)

	perWorker := points / workers
	randomBox := func(rnd *rand.Rand) Rect {
		return Rect{rnd.Intn(side) + upperLeft, rnd.Intn(side) + upperLeft, rectSide, rectSide}
	}

	owned := make([][]placed, workers)
	var inserts, moves, removes errgroup.Group
	for w := 0; w < workers; w++ {
		inserts.Go(func() error {
			rnd := rand.New(rand.NewSource(int64(w)))
			for i := 0; i < perWorker; i++ {
				p := placed{id: uuid.New(), box: randomBox(rnd)}
				if err := q.Insert(p.id, p.box); err != nil {
					return err
				}
				owned[w] = append(owned[w], p)
			}
			return nil
		})
	}
	require.NoError(t, inserts.Wait())
	require.Equal(t, perWorker*workers, q.Count())
	require.Len(t, q.All(), perWorker*workers)
	require.NoError(t, q.CheckIntegrity())

	for w := 0; w < workers; w++ {
		moves.Go(func() error {
			rnd := rand.New(rand.NewSource(int64(w + workers)))
			for i, p := range owned[w] {
				newBox := randomBox(rnd)
				if err := q.Move(p.id, p.box, newBox); err != nil {
					return err
				}
				owned[w][i].box = newBox
			}
			return nil
		})
	}
	require.NoError(t, moves.Wait())
	require.Equal(t, perWorker*workers, q.Count())
	require.NoError(t, q.CheckIntegrity())
	for _, ps := range owned {
		for _, p := range ps {
			require.True(t, q.Contains(p.id, p.box))
		}
	}

	for w := 0; w < workers; w++ {
		removes.Go(func() error {
			for _, p := range owned[w] {
				if err := q.Remove(p.id, p.box); err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, removes.Wait())
	require.Zero(t, q.Count())
	require.NoError(t, q.CheckIntegrity())
}

func TestLockBasedConcurrent(t *testing.T) {
	testConcurrent(t, 4000, 8)
}

func TestLockBasedQueryWhileWriting(t *testing.T) {
	q, err := NewLockBased[uuid.UUID](upperLeft, upperLeft, side, 16, 2)
	require.NoError(t, err)

	var g errgroup.Group
	g.Go(func() error {
		rnd := rand.New(rand.NewSource(1))
		for i := 0; i < 1000; i++ {
			box := Rect{rnd.Intn(side) + upperLeft, rnd.Intn(side) + upperLeft, rectSide, rectSide}
			if err := q.Insert(uuid.New(), box); err != nil {
				return err
			}
		}
		return nil
	})
	g.Go(func() error {
		for i := 0; i < 200; i++ {
			if _, err := q.Query(Rect{-100, -100, 200, 200}); err != nil {
				return err
			}
			q.Count()
		}
		return nil
	})
	require.NoError(t, g.Wait())
	require.Equal(t, 1000, q.Count())
	require.NoError(t, q.CheckIntegrity())
}

func TestLockBasedOperations(t *testing.T) {
	q, err := NewLockBased[uuid.UUID](upperLeft, upperLeft, side, 16, 1)
	require.NoError(t, err)
	require.Equal(t, Rect{upperLeft, upperLeft, side, side}, q.Bounds())

	a, b := uuid.New(), uuid.New()
	boxA, boxB := Rect{-400, -400, 5, 5}, Rect{200, 200, 5, 5}
	require.NoError(t, q.Insert(a, boxA))
	require.NoError(t, q.Insert(b, boxB))
	require.ErrorIs(t, q.Insert(uuid.Nil, boxA), ErrNilArgument)

	require.True(t, q.Contains(a, boxA))
	found, err := q.Query(Rect{-512, -512, 512, 512})
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{a}, found)
	require.ElementsMatch(t, []uuid.UUID{a, b}, q.All())
	require.Contains(t, q.String(), a.String())

	require.NoError(t, q.Move(a, boxA, Rect{300, 300, 5, 5}))
	require.False(t, q.Contains(a, boxA))
	require.NoError(t, q.Remove(b, boxB))
	require.Equal(t, 1, q.Count())

	q.Clear()
	require.Zero(t, q.Count())
	require.NoError(t, q.CheckIntegrity())
}

func TestLockBasedLogsRejections(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	q, err := NewLockBased[uuid.UUID](upperLeft, upperLeft, side, 16, 1, WithLogger(log))
	require.NoError(t, err)

	id := uuid.New()
	require.ErrorIs(t, q.Remove(id, Rect{0, 0, 5, 5}), ErrItemNotFound)
	require.Contains(t, buf.String(), "operation rejected")
	require.Contains(t, buf.String(), "op=remove")
	require.Contains(t, buf.String(), id.String())

	buf.Reset()
	require.ErrorIs(t, q.Insert(id, Rect{2000, 0, 5, 5}), ErrNoIntersection)
	require.Contains(t, buf.String(), "op=insert")

	buf.Reset()
	require.NoError(t, q.Insert(id, Rect{0, 0, 5, 5}))
	require.Empty(t, buf.String())

	// A move from a box in another quadrant names both boxes.
	require.NoError(t, q.Insert(uuid.New(), Rect{-400, -400, 5, 5}))
	buf.Reset()
	require.ErrorIs(t, q.Move(id, Rect{-300, -300, 5, 5}, Rect{200, 200, 5, 5}), ErrItemNotFound)
	require.Contains(t, buf.String(), "op=move")
	require.Contains(t, buf.String(), `old="{-300, -300, 5, 5}"`)
	require.Contains(t, buf.String(), `new="{200, 200, 5, 5}"`)
	require.True(t, q.Contains(id, Rect{0, 0, 5, 5}))
}

func TestNewLockBasedInvalid(t *testing.T) {
	_, err := NewLockBased[uuid.UUID](0, 0, 1000, 16, 1)
	require.ErrorIs(t, err, ErrNotPowerOfTwo)
}
