package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"slices"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	quadtree "github.com/robert-butts/rectquadtree"
)

type benchConfig struct {
	OriginX  int
	OriginY  int
	Side     int
	MinSide  int
	Capacity int

	Items    int
	Workers  int
	Moves    int
	Queries  int
	RectSide int
	// Spread is the side of the square, starting at the origin, that item
	// positions are drawn from.
	Spread    int
	QuerySide int
	Seed      int64
	Check     bool
}

type report struct {
	Inserted int
	Moved    int
	Queries  int
	Found    int
	Removed  int

	InsertTime time.Duration
	MoveTime   time.Duration
	QueryTime  time.Duration
	RemoveTime time.Duration
}

type placement struct {
	id  uuid.UUID
	box quadtree.Rect
}

type bench struct {
	cfg     benchConfig
	tree    quadtree.Index[uuid.UUID]
	metrics *metrics
	log     *slog.Logger

	// owned[w] holds the items of worker w. Only that worker touches them
	// during a phase.
	owned [][]placement
}

func (c benchConfig) validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.Items < 0 || c.Moves < 0 || c.Queries < 0 {
		return fmt.Errorf("items, moves and queries must not be negative")
	}
	if c.RectSide < 1 || c.QuerySide < 1 {
		return fmt.Errorf("rectangle and query sides must be positive")
	}
	if c.Spread < 1 || c.Spread > c.Side {
		return fmt.Errorf("spread must be between 1 and the tree side %d, got %d", c.Side, c.Spread)
	}
	return nil
}

// runBench runs the insert, move, query and remove phases in order. If dump is
// not nil the tree is rendered to it once the query phase is done, while it
// still holds every item.
func runBench(ctx context.Context, cfg benchConfig, m *metrics, log *slog.Logger, dump io.Writer) (*report, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	tree, err := quadtree.NewLockBased[uuid.UUID](cfg.OriginX, cfg.OriginY, cfg.Side, cfg.MinSide, cfg.Capacity, quadtree.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("creating tree: %w", err)
	}
	b := &bench{
		cfg:     cfg,
		tree:    tree,
		metrics: m,
		log:     log,
		owned:   make([][]placement, cfg.Workers),
	}
	rep := &report{}

	phases := []struct {
		name string
		run  func(ctx context.Context, rep *report) error
		took *time.Duration
	}{
		{"insert", b.insertPhase, &rep.InsertTime},
		{"move", b.movePhase, &rep.MoveTime},
		{"query", b.queryPhase, &rep.QueryTime},
		{"remove", b.removePhase, &rep.RemoveTime},
	}
	for _, phase := range phases {
		start := time.Now()
		if err := phase.run(ctx, rep); err != nil {
			return rep, fmt.Errorf("%s phase: %w", phase.name, err)
		}
		*phase.took = time.Since(start)
		count := b.tree.Count()
		m.items.Set(float64(count))
		log.Info("phase done", "phase", phase.name, "took", *phase.took, "items", count)

		if cfg.Check {
			if err := b.tree.CheckIntegrity(); err != nil {
				return rep, fmt.Errorf("after %s phase: %w", phase.name, err)
			}
		}
		if phase.name == "query" && dump != nil {
			if _, err := fmt.Fprintln(dump, b.tree.String()); err != nil {
				return rep, fmt.Errorf("writing dump: %w", err)
			}
		}
	}

	if n := b.tree.Count(); n != 0 {
		return rep, fmt.Errorf("%d items left after removing all of them", n)
	}
	return rep, nil
}

// forEachWorker runs fn once per worker, each with its own deterministic
// random source, and stops all of them at the first error.
func (b *bench) forEachWorker(ctx context.Context, phase int64, fn func(ctx context.Context, w int, rnd *rand.Rand) error) error {
	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < b.cfg.Workers; w++ {
		rnd := rand.New(rand.NewSource(b.cfg.Seed + phase*int64(b.cfg.Workers) + int64(w)))
		g.Go(func() error {
			return fn(ctx, w, rnd)
		})
	}
	return g.Wait()
}

func (b *bench) randomBox(rnd *rand.Rand, side int) quadtree.Rect {
	return quadtree.Rect{
		X:      b.cfg.OriginX + rnd.Intn(b.cfg.Spread),
		Y:      b.cfg.OriginY + rnd.Intn(b.cfg.Spread),
		Width:  side,
		Height: side,
	}
}

func (b *bench) itemsFor(w int) int {
	n := b.cfg.Items / b.cfg.Workers
	if w < b.cfg.Items%b.cfg.Workers {
		n++
	}
	return n
}

func (b *bench) insertPhase(ctx context.Context, rep *report) error {
	err := b.forEachWorker(ctx, 0, func(ctx context.Context, w int, rnd *rand.Rand) error {
		for i := 0; i < b.itemsFor(w); i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			p := placement{id: uuid.New(), box: b.randomBox(rnd, b.cfg.RectSide)}
			start := time.Now()
			err := b.tree.Insert(p.id, p.box)
			b.metrics.observe("insert", start, err)
			if err != nil {
				return err
			}
			b.owned[w] = append(b.owned[w], p)
		}
		for _, p := range b.owned[w] {
			if !b.contains(p) {
				return fmt.Errorf("item %s not found at %s after insert", p.id, p.box)
			}
		}
		return nil
	})
	for _, items := range b.owned {
		rep.Inserted += len(items)
	}
	return err
}

func (b *bench) movePhase(ctx context.Context, rep *report) error {
	moved := make([]int, b.cfg.Workers)
	err := b.forEachWorker(ctx, 1, func(ctx context.Context, w int, rnd *rand.Rand) error {
		for round := 0; round < b.cfg.Moves; round++ {
			for i, p := range b.owned[w] {
				if err := ctx.Err(); err != nil {
					return err
				}
				newBox := b.randomBox(rnd, b.cfg.RectSide)
				start := time.Now()
				err := b.tree.Move(p.id, p.box, newBox)
				b.metrics.observe("move", start, err)
				if err != nil {
					return err
				}
				b.owned[w][i].box = newBox
				moved[w]++

				found, err := b.tree.Query(newBox)
				if err != nil {
					return err
				}
				if !slices.Contains(found, p.id) {
					return fmt.Errorf("item %s not returned by a query of %s after move", p.id, newBox)
				}
				if !b.contains(b.owned[w][i]) {
					return fmt.Errorf("item %s not found at %s after move", p.id, newBox)
				}
			}
		}
		return nil
	})
	for _, n := range moved {
		rep.Moved += n
	}
	return err
}

func (b *bench) queryPhase(ctx context.Context, rep *report) error {
	queries := make([]int, b.cfg.Workers)
	found := make([]int, b.cfg.Workers)
	err := b.forEachWorker(ctx, 2, func(ctx context.Context, w int, rnd *rand.Rand) error {
		n := b.cfg.Queries / b.cfg.Workers
		if w < b.cfg.Queries%b.cfg.Workers {
			n++
		}
		for i := 0; i < n; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			box := b.randomBox(rnd, b.cfg.QuerySide)
			start := time.Now()
			items, err := b.tree.Query(box)
			b.metrics.observe("query", start, err)
			if err != nil {
				return err
			}
			queries[w]++
			found[w] += len(items)
		}
		return nil
	})
	for w := range queries {
		rep.Queries += queries[w]
		rep.Found += found[w]
	}
	return err
}

// removePhase removes every item. With Check set, every tenth removal
// verifies that the items removed so far are gone and the rest are still
// there.
func (b *bench) removePhase(ctx context.Context, rep *report) error {
	removed := make([]int, b.cfg.Workers)
	err := b.forEachWorker(ctx, 3, func(ctx context.Context, w int, _ *rand.Rand) error {
		items := b.owned[w]
		for i, p := range items {
			if err := ctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			err := b.tree.Remove(p.id, p.box)
			b.metrics.observe("remove", start, err)
			if err != nil {
				return err
			}
			removed[w]++
			if !b.cfg.Check || i%10 != 0 {
				continue
			}
			for _, gone := range items[:i+1] {
				if b.contains(gone) {
					return fmt.Errorf("removed item %s still found at %s", gone.id, gone.box)
				}
			}
			for _, left := range items[i+1:] {
				if !b.contains(left) {
					return fmt.Errorf("item %s lost at %s", left.id, left.box)
				}
			}
		}
		return nil
	})
	for _, n := range removed {
		rep.Removed += n
	}
	return err
}

func (b *bench) contains(p placement) bool {
	start := time.Now()
	ok := b.tree.Contains(p.id, p.box)
	b.metrics.observe("contains", start, nil)
	return ok
}
