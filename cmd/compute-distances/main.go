// Command compute-distances reads a subsample.json produced by the
// subsample command and writes the pairwise distance matrix between its
// retained points (spec.md §6).
package main

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/semaphore"

	"github.com/shaunharker/subsample/config"
	"github.com/shaunharker/subsample/diagram"
	"github.com/shaunharker/subsample/logging"
)

func main() {
	app := &cli.App{
		Name:  "compute-distances",
		Usage: "compute the pairwise Bottleneck/Wasserstein distance matrix over a subsample",
		Flags: []cli.Flag{
			config.WorkersFlag,
			config.LogFileFlag,
		},
		ArgsUsage: "<approx> <subsample.json> <distance.txt> [<distance_filter.txt>]",
		Action:    run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("compute-distances: %v", err))
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	args, err := config.ParseComputeDistancesArgs(c)
	if err != nil {
		return cli.Exit(err, 1)
	}

	log := logging.New(logging.Config{FilePath: args.LogFile})
	defer log.Close()

	sub, points, err := config.LoadSubsampleFile(args.SubsamplePath)
	if err != nil {
		return cli.Exit(err, 1)
	}
	p, err := config.ParseP(sub.P)
	if err != nil {
		return cli.Exit(err, 1)
	}

	n := len(points)
	var filter []bool
	if args.DistanceFilterPath != "" {
		filter, err = config.LoadDistanceFilter(args.DistanceFilterPath, n)
		if err != nil {
			return cli.Exit(err, 1)
		}
	}

	dist := diagram.Distance{P: p, Approx: args.Approx}
	total := n * (n - 1) / 2
	distances := make([]float64, total)
	var computed int64

	workers := args.Workers
	if workers <= 0 {
		workers = 1
	}
	sem := semaphore.NewWeighted(int64(workers))
	ctx := context.Background()
	var wg sync.WaitGroup

	start := time.Now()
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			idx := config.UpperTriangularIndex(n, i, j)
			if filter != nil && !filter[idx] {
				distances[idx] = 0
				continue
			}
			if err := sem.Acquire(ctx, 1); err != nil {
				return cli.Exit(err, 1)
			}
			wg.Add(1)
			go func(i, j, idx int) {
				defer wg.Done()
				defer sem.Release(1)
				distances[idx] = dist.Eval(points[i], points[j])
				atomic.AddInt64(&computed, 1)
			}(i, j, idx)
		}
	}
	wg.Wait()
	elapsed := time.Since(start)

	if err := config.WriteDistanceFile(args.DistancePath, distances); err != nil {
		return cli.Exit(err, 1)
	}

	log.Infow("compute-distances complete", "points", n, "pairs", total, "computed", computed, "elapsed", elapsed)
	printSummary(n, total, int(computed), elapsed)
	return nil
}

func printSummary(n, total, computed int, elapsed time.Duration) {
	fmt.Println(color.GreenString("compute-distances complete"))
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"points", "pairs", "computed", "skipped", "elapsed"})
	t.AppendRow(table.Row{n, total, computed, total - computed, elapsed.Round(time.Millisecond)})
	t.Render()
}
