package main

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	quadtree "github.com/robert-butts/rectquadtree"
)

func testConfig() benchConfig {
	return benchConfig{
		OriginX:   -512,
		OriginY:   -512,
		Side:      1024,
		MinSide:   16,
		Capacity:  2,
		Items:     200,
		Workers:   4,
		Moves:     2,
		Queries:   50,
		RectSide:  5,
		Spread:    1024,
		QuerySide: 64,
		Seed:      7,
		Check:     true,
	}
}

func TestRunBench(t *testing.T) {
	require := require.New(t)

	cfg := testConfig()
	m := newMetrics(prometheus.NewRegistry())
	var dump bytes.Buffer
	rep, err := runBench(context.Background(), cfg, m, slog.New(slog.DiscardHandler), &dump)
	require.NoError(err)

	require.Equal(cfg.Items, rep.Inserted)
	require.Equal(cfg.Items*cfg.Moves, rep.Moved)
	require.Equal(cfg.Queries, rep.Queries)
	require.Equal(cfg.Items, rep.Removed)

	require.Equal(float64(cfg.Items), testutil.ToFloat64(m.ops.WithLabelValues("insert")))
	require.Equal(float64(cfg.Items*cfg.Moves), testutil.ToFloat64(m.ops.WithLabelValues("move")))
	require.Equal(float64(cfg.Queries), testutil.ToFloat64(m.ops.WithLabelValues("query")))
	require.Equal(float64(cfg.Items), testutil.ToFloat64(m.ops.WithLabelValues("remove")))
	require.Zero(testutil.ToFloat64(m.errors.WithLabelValues("insert")))
	require.Zero(testutil.ToFloat64(m.errors.WithLabelValues("move")))
	require.Zero(testutil.ToFloat64(m.errors.WithLabelValues("remove")))
	require.Zero(testutil.ToFloat64(m.items))

	require.True(strings.HasPrefix(dump.String(), "root {-512, -512, 1024, 1024}"), dump.String())
}

func TestRunBenchSmallArea(t *testing.T) {
	cfg := testConfig()
	cfg.Spread = 32
	cfg.Capacity = 1
	cfg.Workers = 3

	rep, err := runBench(context.Background(), cfg, newMetrics(prometheus.NewRegistry()), slog.New(slog.DiscardHandler), nil)
	require.NoError(t, err)
	require.Equal(t, cfg.Items, rep.Removed)
	// Every query covers part of the crowded corner.
	require.Positive(t, rep.Found)
}

func TestRunBenchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runBench(ctx, testConfig(), newMetrics(prometheus.NewRegistry()), slog.New(slog.DiscardHandler), nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestRunBenchInvalidTree(t *testing.T) {
	cfg := testConfig()
	cfg.Side = 1000
	cfg.Spread = 1000

	_, err := runBench(context.Background(), cfg, newMetrics(prometheus.NewRegistry()), slog.New(slog.DiscardHandler), nil)
	require.ErrorIs(t, err, quadtree.ErrNotPowerOfTwo)
}

func TestBenchConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*benchConfig)
		valid  bool
	}{
		{"default", func(*benchConfig) {}, true},
		{"no workers", func(c *benchConfig) { c.Workers = 0 }, false},
		{"negative items", func(c *benchConfig) { c.Items = -1 }, false},
		{"negative moves", func(c *benchConfig) { c.Moves = -1 }, false},
		{"zero rect side", func(c *benchConfig) { c.RectSide = 0 }, false},
		{"zero query side", func(c *benchConfig) { c.QuerySide = 0 }, false},
		{"spread larger than tree", func(c *benchConfig) { c.Spread = 2048 }, false},
		{"no items", func(c *benchConfig) { c.Items = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.modify(&cfg)
			err := cfg.validate()
			if tt.valid {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
			}
		})
	}
}

func TestItemsFor(t *testing.T) {
	cfg := testConfig()
	cfg.Items = 10
	cfg.Workers = 4
	b := &bench{cfg: cfg}

	total := 0
	for w := 0; w < cfg.Workers; w++ {
		total += b.itemsFor(w)
	}
	require.Equal(t, 10, total)
	require.Equal(t, 3, b.itemsFor(0))
	require.Equal(t, 2, b.itemsFor(3))
}
