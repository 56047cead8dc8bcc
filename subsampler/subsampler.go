// Package subsampler implements the cohort pipeline (spec.md §2 Component
// D, §4.4): aspiration-filter candidates out of the shuffled sample
// stream, build a per-cohort candidate sub-tree, compute its delta-close
// adjacency, run a serial greedy maximal-independent-set pass, and install
// the survivors into the main tree. It is the top-level entry point that
// wires the Metric Tree, the Distance Oracle, the Parallel Driver, and the
// Coordinator/Transport together into a runnable job.
package subsampler

import (
	"context"
	"math/rand"

	"go.viam.com/utils"

	"github.com/shaunharker/subsample/logging"
	"github.com/shaunharker/subsample/metrictree"
	"github.com/shaunharker/subsample/oracle"
	"github.com/shaunharker/subsample/pardriver"
	"github.com/shaunharker/subsample/point"
	"github.com/shaunharker/subsample/transport"
	"github.com/shaunharker/subsample/transport/local"
)

// Config configures one subsampling job (spec.md §4.4, SPEC_FULL.md §5).
type Config struct {
	// CohortSize bounds how many candidates are gathered per pass through
	// Stages 1-5. Defaults to 1000 if zero or negative.
	CohortSize int
	// Delta is the sparsity/density radius; must be > 0.
	Delta float64
	// Workers bounds the number of concurrent distance computations.
	// Defaults to 1 if zero or negative.
	Workers int
	// Seed controls the one-shot input shuffle, for reproducible tests.
	Seed int64
}

// DefaultConfig returns the defaults Subsample itself falls back to
// (CohortSize 1000, Workers 1), leaving Delta at its zero value since it
// has no sensible default. The CLI's --workers flag defaults to
// runtime.NumCPU() instead.
func DefaultConfig() Config {
	return Config{CohortSize: 1000, Workers: 1}
}

// Result is the outcome of a completed subsampling job.
type Result[T point.Point] struct {
	// Points are every point retained in the final main tree, in
	// insertion order (nondeterministic across cohorts per spec.md §5,
	// but always delta-sparse and delta-dense).
	Points []T
	Stats  oracle.Stats
}

// Subsample runs the cohort pipeline to completion and returns the
// retained subset. fn is invoked only inside the local worker pool, never
// directly by the pipeline itself -- every distance the pipeline needs
// passes through the Oracle.
func Subsample[T point.Point](ctx context.Context, cfg Config, samples []T, fn point.DistanceFn[T], log *logging.Logger) (*Result[T], error) {
	if cfg.CohortSize <= 0 {
		cfg.CohortSize = 1000
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}

	order := make([]int, len(samples))
	for i := range order {
		order[i] = i
	}
	rand.New(rand.NewSource(cfg.Seed)).Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})
	shuffled := make([]T, len(samples))
	for k, idx := range order {
		shuffled[k] = samples[idx]
	}

	o := oracle.New[T]()
	mainTree := metrictree.New[T](o)
	driver := pardriver.New[T]()
	done := make(chan struct{})
	coord := &transport.Coordinator[T]{Oracle: o, WorkItems: driver.WorkItems, Ready: driver.Ready, Pending: driver.Pending, Done: done}
	pool := local.NewPool[T](func(p, q T) float64 { return o.Compute(p, q, fn) }, cfg.Workers)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 1)
	utils.PanicCapturingGo(func() {
		errCh <- coord.Run(runCtx, pool, cfg.Workers)
	})

	log.Infow("subsample job starting", "samples", len(samples), "delta", cfg.Delta, "cohortSize", cfg.CohortSize, "workers", cfg.Workers, "seed", cfg.Seed)
	runCohorts(mainTree, o, driver, shuffled, cfg.CohortSize, cfg.Delta, log)
	close(done)

	if err := <-errCh; err != nil {
		return nil, err
	}

	stats := o.StatsSnapshot()
	log.Infow("subsample job complete", "retained", mainTree.Size(), "hits", stats.Hits, "misses", stats.Misses, "computed", stats.Computed)
	return &Result[T]{Points: mainTree.Points(), Stats: stats}, nil
}

// runCohorts drives Stages 1-5 of spec.md §4.4 to exhaustion over
// shuffled. cache is the same Distance Oracle backing tree, shared with
// every per-cohort candidate sub-tree (spec.md §4.4 Stage 2: "Create a
// fresh Metric Tree sharing the Distance Oracle").
func runCohorts[T point.Point](tree *metrictree.Tree[T], cache metrictree.Cache[T], driver *pardriver.Driver[T], shuffled []T, cohortSize int, delta float64, log *logging.Logger) {
	n := len(shuffled)
	cohort := 0
	for cursor := 0; cursor < n; {
		var candidates []T

		// Stage 1 -- aspiration filter.
		for len(candidates) < cohortSize && cursor < n {
			end := cursor + (cohortSize - len(candidates))
			if end > n {
				end = n
			}
			batch := shuffled[cursor:end]
			args := make([]int, len(batch))
			for i := range args {
				args[i] = i
			}
			hits := pardriver.Run(driver, &aspirationFunctor[T]{tree: tree, pts: batch, delta: delta}, args)
			for i, hit := range hits {
				if !hit {
					candidates = append(candidates, batch[i])
				}
			}
			cursor = end
		}
		if len(candidates) == 0 {
			continue
		}

		args := make([]int, len(candidates))
		for i := range args {
			args[i] = i
		}

		// Stage 2 -- build the candidate sub-tree.
		candTree := metrictree.New[T](cache)
		insertIDs := pardriver.Run(driver, &insertFunctor[T]{tree: candTree, pts: candidates}, args)
		idToCandidate := make([]int, len(candidates))
		for i, id := range insertIDs {
			idToCandidate[int(id)] = i
		}

		// Stage 3 -- delta-close adjacency.
		neighborIDs := pardriver.Run(driver, &deltaCloseFunctor[T]{tree: candTree, pts: candidates, delta: delta}, args)
		adjacency := make([][]int, len(candidates))
		for i, ids := range neighborIDs {
			for _, id := range ids {
				j := idToCandidate[int(id)]
				if j != i {
					adjacency[i] = append(adjacency[i], j)
				}
			}
		}

		// Stage 4 -- serial greedy maximal independent set.
		accepted := make([]bool, len(candidates))
		for i := range accepted {
			accepted[i] = true
		}
		for i := range candidates {
			if !accepted[i] {
				continue
			}
			for _, j := range adjacency[i] {
				if j != i {
					accepted[j] = false
				}
			}
		}

		// Stage 5 -- install accepted candidates into the main tree.
		var installed []T
		for i, ok := range accepted {
			if ok {
				installed = append(installed, candidates[i])
			}
		}
		installArgs := make([]int, len(installed))
		for i := range installArgs {
			installArgs[i] = i
		}
		pardriver.Run(driver, &insertFunctor[T]{tree: tree, pts: installed}, installArgs)

		cohort++
		log.Debugw("cohort complete", "cohort", cohort, "candidates", len(candidates), "accepted", len(installed), "mainTreeSize", tree.Size())
	}
}
