package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	_ "go.uber.org/automaxprocs"

	"github.com/carlmjohnson/versioninfo"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := run(os.Args); err != nil {
		slog.Error("exiting process", "err", err.Error())
		os.Exit(-1)
	}
}

func run(args []string) error {
	app := cli.App{
		Name:    "quadbench",
		Usage:   "concurrent workload driver for the rectangle quadtree",
		Version: versioninfo.Short(),
		Action:  runQuadbench,
	}

	app.Flags = []cli.Flag{
		&cli.IntFlag{
			Name:    "origin-x",
			Usage:   "x coordinate of the upper-left corner of the tree",
			Value:   -512,
			EnvVars: []string{"QUADBENCH_ORIGIN_X"},
		},
		&cli.IntFlag{
			Name:    "origin-y",
			Usage:   "y coordinate of the upper-left corner of the tree",
			Value:   -512,
			EnvVars: []string{"QUADBENCH_ORIGIN_Y"},
		},
		&cli.IntFlag{
			Name:    "side",
			Usage:   "side length of the tree (power of two)",
			Value:   1024,
			EnvVars: []string{"QUADBENCH_SIDE"},
		},
		&cli.IntFlag{
			Name:    "min-side",
			Usage:   "smallest quadrant side length the tree splits down to (power of two)",
			Value:   16,
			EnvVars: []string{"QUADBENCH_MIN_SIDE"},
		},
		&cli.IntFlag{
			Name:    "capacity",
			Usage:   "number of fitted items a node holds before it splits",
			Value:   4,
			EnvVars: []string{"QUADBENCH_CAPACITY"},
		},
		&cli.IntFlag{
			Name:    "items",
			Aliases: []string{"n"},
			Usage:   "total number of items to insert",
			Value:   100_000,
			EnvVars: []string{"QUADBENCH_ITEMS"},
		},
		&cli.IntFlag{
			Name:    "workers",
			Aliases: []string{"j"},
			Usage:   "number of concurrent workers; each owns a share of the items",
			Value:   8,
			EnvVars: []string{"QUADBENCH_WORKERS"},
		},
		&cli.IntFlag{
			Name:    "moves",
			Usage:   "number of times every item is moved",
			Value:   10,
			EnvVars: []string{"QUADBENCH_MOVES"},
		},
		&cli.IntFlag{
			Name:    "queries",
			Usage:   "total number of area queries",
			Value:   10_000,
			EnvVars: []string{"QUADBENCH_QUERIES"},
		},
		&cli.IntFlag{
			Name:    "rect-side",
			Usage:   "side length of item rectangles",
			Value:   5,
			EnvVars: []string{"QUADBENCH_RECT_SIDE"},
		},
		&cli.IntFlag{
			Name:    "spread",
			Usage:   "side of the square, from the origin, that item positions are drawn from",
			Value:   1024,
			EnvVars: []string{"QUADBENCH_SPREAD"},
		},
		&cli.IntFlag{
			Name:    "query-side",
			Usage:   "side length of query rectangles",
			Value:   64,
			EnvVars: []string{"QUADBENCH_QUERY_SIDE"},
		},
		&cli.Int64Flag{
			Name:    "seed",
			Usage:   "random seed; runs with the same seed and worker count place items identically",
			Value:   1,
			EnvVars: []string{"QUADBENCH_SEED"},
		},
		&cli.BoolFlag{
			Name:    "check",
			Usage:   "run the integrity check after each phase and cross-check items during removal",
			EnvVars: []string{"QUADBENCH_CHECK"},
		},
		&cli.BoolFlag{
			Name:    "dump",
			Usage:   "print the tree to stdout once the query phase is done",
			EnvVars: []string{"QUADBENCH_DUMP"},
		},
		&cli.StringFlag{
			Name:    "metrics-addr",
			Usage:   "IP or address, and port, to serve prometheus metrics on while running (disabled if empty)",
			EnvVars: []string{"QUADBENCH_METRICS_ADDR"},
		},
		&cli.DurationFlag{
			Name:    "metrics-linger",
			Usage:   "how long to keep serving metrics after the run finished",
			EnvVars: []string{"QUADBENCH_METRICS_LINGER"},
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "log verbosity level (eg: warn, info, debug)",
			Value:   "info",
			EnvVars: []string{"QUADBENCH_LOG_LEVEL", "GO_LOG_LEVEL", "LOG_LEVEL"},
		},
		&cli.StringFlag{
			Name:    "log-format",
			Usage:   "log output format on stderr: text or json",
			Value:   "text",
			EnvVars: []string{"QUADBENCH_LOG_FORMAT"},
		},
	}

	return app.Run(args)
}

// newLogger builds the process logger. level takes the slog level names
// (debug, info, warn, error, optionally with an offset such as "debug-2");
// format is text or json.
func newLogger(writer io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	opts := &slog.HandlerOptions{Level: lvl}

	var handler slog.Handler
	switch strings.ToLower(format) {
	case "text":
		handler = slog.NewTextHandler(writer, opts)
	case "json":
		handler = slog.NewJSONHandler(writer, opts)
	default:
		return nil, fmt.Errorf("unknown log format %q (want text or json)", format)
	}
	return slog.New(handler).With("app", "quadbench"), nil
}

func configFromFlags(cctx *cli.Context) benchConfig {
	return benchConfig{
		OriginX:   cctx.Int("origin-x"),
		OriginY:   cctx.Int("origin-y"),
		Side:      cctx.Int("side"),
		MinSide:   cctx.Int("min-side"),
		Capacity:  cctx.Int("capacity"),
		Items:     cctx.Int("items"),
		Workers:   cctx.Int("workers"),
		Moves:     cctx.Int("moves"),
		Queries:   cctx.Int("queries"),
		RectSide:  cctx.Int("rect-side"),
		Spread:    cctx.Int("spread"),
		QuerySide: cctx.Int("query-side"),
		Seed:      cctx.Int64("seed"),
		Check:     cctx.Bool("check"),
	}
}

func runQuadbench(cctx *cli.Context) error {
	ctx, stop := signal.NotifyContext(cctx.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger, err := newLogger(os.Stderr, cctx.String("log-level"), cctx.String("log-format"))
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	cfg := configFromFlags(cctx)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	m := newMetrics(reg)

	if addr := cctx.String("metrics-addr"); addr != "" {
		srv := &http.Server{
			Addr:              addr,
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("serving metrics", "addr", addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", "err", err)
			}
		}()
		defer func() {
			if linger := cctx.Duration("metrics-linger"); linger > 0 {
				logger.Info("keeping metrics available", "for", linger)
				select {
				case <-ctx.Done():
				case <-time.After(linger):
				}
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	var dump io.Writer
	if cctx.Bool("dump") {
		dump = os.Stdout
	}

	logger.Info("starting run", "items", cfg.Items, "workers", cfg.Workers, "moves", cfg.Moves, "queries", cfg.Queries, "seed", cfg.Seed)
	rep, err := runBench(ctx, cfg, m, logger, dump)
	if err != nil {
		return fmt.Errorf("benchmark failed: %w", err)
	}

	logger.Info("run complete",
		"inserted", rep.Inserted,
		"moved", rep.Moved,
		"queries", rep.Queries,
		"found", rep.Found,
		"removed", rep.Removed,
		"insertTime", rep.InsertTime,
		"moveTime", rep.MoveTime,
		"queryTime", rep.QueryTime,
		"removeTime", rep.RemoveTime,
	)
	return nil
}
