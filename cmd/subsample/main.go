// Command subsample runs the δ-sparse/δ-dense subsampling engine over a
// samples.json manifest of persistence diagrams and writes the retained
// subset to a subsample.json file (spec.md §6).
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/shaunharker/subsample/config"
	"github.com/shaunharker/subsample/diagram"
	"github.com/shaunharker/subsample/logging"
	"github.com/shaunharker/subsample/oracle"
	"github.com/shaunharker/subsample/subsampler"
)

func main() {
	app := &cli.App{
		Name:  "subsample",
		Usage: "subsample a set of persistence diagrams so retained points are delta-sparse and delta-dense",
		Flags: []cli.Flag{
			config.CohortSizeFlag,
			config.WorkersFlag,
			config.SeedFlag,
			config.LogFileFlag,
		},
		ArgsUsage: "<samples.json> <delta> <p> <subsample.json>",
		Action:    run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("subsample: %v", err))
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	args, err := config.ParseSubsampleArgs(c)
	if err != nil {
		return cli.Exit(err, 1)
	}

	log := logging.New(logging.Config{FilePath: args.LogFile})
	defer log.Close()

	sf, err := config.LoadSamplesFile(args.SamplesPath)
	if err != nil {
		return cli.Exit(err, 1)
	}
	points, err := config.LoadPoints(sf)
	if err != nil {
		return cli.Exit(err, 1)
	}

	dist := diagram.Distance{P: args.P}
	cfg := subsampler.Config{
		CohortSize: args.CohortSize,
		Delta:      args.Delta,
		Workers:    args.Workers,
		Seed:       args.Seed,
	}

	start := time.Now()
	result, err := subsampler.Subsample(context.Background(), cfg, points, dist.Eval, log)
	if err != nil {
		return errors.Wrap(err, "subsample job failed")
	}
	elapsed := time.Since(start)

	ids := make([]int64, len(result.Points))
	for i, p := range result.Points {
		ids[i] = p.PointID()
	}
	out := config.SubsampleFile{
		Sample:    args.SamplesPath,
		Delta:     args.Delta,
		P:         config.FormatP(args.P),
		Subsample: ids,
	}
	if err := config.WriteSubsampleFile(args.OutputPath, out); err != nil {
		return cli.Exit(err, 1)
	}

	printSummary(len(points), len(result.Points), result.Stats, elapsed)
	return nil
}

func printSummary(total, retained int, stats oracle.Stats, elapsed time.Duration) {
	fmt.Println(color.GreenString("subsample complete"))
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"samples", "retained", "oracle hits", "oracle misses", "distances computed", "elapsed"})
	t.AppendRow(table.Row{total, retained, stats.Hits, stats.Misses, stats.Computed, elapsed.Round(time.Millisecond)})
	t.Render()
}
