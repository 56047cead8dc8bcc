package config

import (
	"runtime"
	"strconv"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

// SubsampleArgs is the parsed argv + flags for the subsample command
// (SPEC_FULL.md §5):
//
//	subsample [--cohort-size N] [--workers N] [--seed N] [--log-file PATH] \
//	          <samples.json> <delta> <p> <subsample.json>
type SubsampleArgs struct {
	SamplesPath    string
	Delta          float64
	P              float64
	OutputPath     string
	CohortSize     int
	Workers        int
	Seed           int64
	LogFile        string
}

// ParseSubsampleArgs validates c's positional arguments and flags into a
// SubsampleArgs, or returns a kind-1 configuration error.
func ParseSubsampleArgs(c *cli.Context) (*SubsampleArgs, error) {
	if c.NArg() != 4 {
		return nil, errors.Errorf("subsample: expected 4 positional arguments (samples.json delta p subsample.json), got %d", c.NArg())
	}
	delta, err := parsePositiveFloat(c.Args().Get(1), "delta")
	if err != nil {
		return nil, err
	}
	p, err := ParseP(c.Args().Get(2))
	if err != nil {
		return nil, err
	}
	return &SubsampleArgs{
		SamplesPath: c.Args().Get(0),
		Delta:       delta,
		P:           p,
		OutputPath:  c.Args().Get(3),
		CohortSize:  c.Int("cohort-size"),
		Workers:     c.Int("workers"),
		Seed:        c.Int64("seed"),
		LogFile:     c.String("log-file"),
	}, nil
}

// ComputeDistancesArgs is the parsed argv + flags for the
// compute-distances command:
//
//	compute-distances [--workers N] [--log-file PATH] \
//	          <approx> <subsample.json> <distance.txt> [<distance_filter.txt>]
type ComputeDistancesArgs struct {
	Approx           float64
	SubsamplePath    string
	DistancePath     string
	DistanceFilterPath string // empty if not supplied
	Workers          int
	LogFile          string
}

// ParseComputeDistancesArgs validates c into a ComputeDistancesArgs.
func ParseComputeDistancesArgs(c *cli.Context) (*ComputeDistancesArgs, error) {
	if c.NArg() != 3 && c.NArg() != 4 {
		return nil, errors.Errorf("compute-distances: expected 3 or 4 positional arguments (approx subsample.json distance.txt [distance_filter.txt]), got %d", c.NArg())
	}
	approx, err := parseNonNegativeFloat(c.Args().Get(0), "approx")
	if err != nil {
		return nil, err
	}
	args := &ComputeDistancesArgs{
		Approx:        approx,
		SubsamplePath: c.Args().Get(1),
		DistancePath:  c.Args().Get(2),
		Workers:       c.Int("workers"),
		LogFile:       c.String("log-file"),
	}
	if c.NArg() == 4 {
		args.DistanceFilterPath = c.Args().Get(3)
	}
	return args, nil
}

func parsePositiveFloat(s, name string) (float64, error) {
	v, err := parseFloat(s, name)
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, errors.Errorf("%s must be > 0, got %q", name, s)
	}
	return v, nil
}

func parseNonNegativeFloat(s, name string) (float64, error) {
	v, err := parseFloat(s, name)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, errors.Errorf("%s must be >= 0, got %q", name, s)
	}
	return v, nil
}

func parseFloat(s, name string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "parsing %s argument %q", name, s)
	}
	return v, nil
}

// CohortSizeFlag, WorkersFlag, SeedFlag, and LogFileFlag carry the
// SPEC_FULL.md §5 defaults. The subsample command uses all four;
// compute-distances uses only WorkersFlag and LogFileFlag.
var (
	CohortSizeFlag = &cli.IntFlag{Name: "cohort-size", Value: 1000, Usage: "maximum candidates gathered per aspiration-filter pass"}
	WorkersFlag    = &cli.IntFlag{Name: "workers", Value: runtime.NumCPU(), Usage: "number of concurrent distance workers"}
	SeedFlag       = &cli.Int64Flag{Name: "seed", Value: 0, Usage: "seed for the one-shot input shuffle"}
	LogFileFlag    = &cli.StringFlag{Name: "log-file", Usage: "write logs to this file instead of stdout"}
)
