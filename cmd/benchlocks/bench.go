// bench.go implements the 'benchlocks run' command.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/twissel/bench-locks/counter"
	"github.com/twissel/bench-locks/internal/bench/executor"
	"github.com/twissel/bench-locks/internal/bench/runner"
	"github.com/twissel/bench-locks/internal/bench/workload"
)

// benchConfig holds the parsed 'run' options.
type benchConfig struct {
	counters int
	ops      int
	ratios   []float64
	workers  int
	seed     int64
	jsonOut  bool
	variants []counter.Factory
}

// benchCommand implements the 'benchlocks run' command.
//
// With no flags it reproduces the fixed default matrix: for each read
// ratio (0.9, then 0.5), each selected variant (BlockingCounter, then
// SuspendingCounter) runs 100 counters x 10000 operations. All runs share
// one worker pool for the process lifetime; one report line is printed per
// run, and the first failing run terminates the process with a diagnostic.
func benchCommand(args []string) {
	cfg, err := parseBenchArgs(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var rng *rand.Rand
	if cfg.seed != 0 {
		rng = rand.New(rand.NewSource(cfg.seed))
	}

	ctx := context.Background()
	pool := executor.NewPool(ctx, cfg.workers)
	run := runner.New(pool, workload.NewGenerator(rng))

	for _, ratio := range cfg.ratios {
		for _, newCounter := range cfg.variants {
			report, err := run.Run(ctx, newCounter, runner.Config{
				Counters:      cfg.counters,
				OpsPerCounter: cfg.ops,
				ReadRatio:     ratio,
			})
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			if err := printReport(report, cfg.jsonOut); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
		}
	}

	if err := pool.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: shutting down pool: %v\n", err)
		os.Exit(1)
	}
}

// parseBenchArgs parses the 'run' flag set into a benchConfig.
func parseBenchArgs(args []string) (*benchConfig, error) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	counters := fs.Int("counters", 100, "number of counters contended on")
	ops := fs.Int("ops", 10000, "operations dispatched per counter")
	ratios := fs.String("ratios", "0.9,0.5", "comma-separated read ratios")
	variant := fs.String("variant", "all", "counter variant: all, blocking or suspending")
	workers := fs.Int("workers", 0, "worker goroutines in the shared pool (0 = GOMAXPROCS)")
	seed := fs.Int64("seed", 0, "workload RNG seed (0 = seed from the clock)")
	jsonOut := fs.Bool("json", false, "emit one JSON report per run")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected argument: %s", fs.Arg(0))
	}

	parsedRatios, err := parseRatios(*ratios)
	if err != nil {
		return nil, err
	}
	variants, err := variantFactories(*variant)
	if err != nil {
		return nil, err
	}

	return &benchConfig{
		counters: *counters,
		ops:      *ops,
		ratios:   parsedRatios,
		workers:  *workers,
		seed:     *seed,
		jsonOut:  *jsonOut,
		variants: variants,
	}, nil
}

// parseRatios parses a comma-separated list of read ratios, each in [0, 1].
func parseRatios(list string) ([]float64, error) {
	parts := strings.Split(list, ",")
	ratios := make([]float64, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		r, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid read ratio %q: %v", part, err)
		}
		if r < 0 || r > 1 {
			return nil, fmt.Errorf("read ratio %v outside [0, 1]", r)
		}
		ratios = append(ratios, r)
	}
	return ratios, nil
}

// variantFactories resolves the -variant selector to counter constructors,
// in the fixed matrix order (blocking before suspending).
func variantFactories(selector string) ([]counter.Factory, error) {
	switch selector {
	case "all":
		return []counter.Factory{counter.NewBlocking, counter.NewSuspending}, nil
	case "blocking":
		return []counter.Factory{counter.NewBlocking}, nil
	case "suspending":
		return []counter.Factory{counter.NewSuspending}, nil
	default:
		return nil, fmt.Errorf("unknown variant %q (want all, blocking or suspending)", selector)
	}
}

// printReport writes one report line to stdout.
func printReport(report *runner.Report, jsonOut bool) error {
	if !jsonOut {
		fmt.Println(report)
		return nil
	}
	line, err := sonic.MarshalString(report)
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	fmt.Println(line)
	return nil
}
