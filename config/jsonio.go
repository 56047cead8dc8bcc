// Package config holds the CLI's argument structs and the JSON/text
// input-output formats of spec.md §6: samples.json, subsample.json,
// distance.txt, and the optional distance filter stream.
package config

import (
	"bufio"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/shaunharker/subsample/diagram"
)

// SamplesFile is the samples.json document: a base path joined with each
// sample's tuple of diagram filenames.
type SamplesFile struct {
	Path   string     `json:"path"`
	Sample [][]string `json:"sample"`
}

// LoadSamplesFile reads and parses samples.json.
func LoadSamplesFile(path string) (*SamplesFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading samples file %s", path)
	}
	var sf SamplesFile
	if err := json.Unmarshal(data, &sf); err != nil {
		return nil, errors.Wrapf(err, "parsing samples file %s", path)
	}
	return &sf, nil
}

// LoadPoints resolves every sample in sf into a diagram.Point, joining the
// base path with each diagram filename (spec.md §6). A Point's id is its
// ascending position in the sample array.
func LoadPoints(sf *SamplesFile) ([]diagram.Point, error) {
	points := make([]diagram.Point, len(sf.Sample))
	for i, tuple := range sf.Sample {
		diagrams := make([]diagram.PersistenceDiagram, len(tuple))
		for j, name := range tuple {
			d, err := diagram.LoadDiagramFile(filepath.Join(sf.Path, name))
			if err != nil {
				return nil, errors.Wrapf(err, "loading diagram for sample %d", i)
			}
			diagrams[j] = d
		}
		points[i] = diagram.NewPoint(int64(i), diagrams)
	}
	return points, nil
}

// SubsampleFile is the subsample.json output document.
type SubsampleFile struct {
	Sample    string `json:"sample"`
	Delta     float64 `json:"delta"`
	P         string `json:"p"`
	Subsample []int64 `json:"subsample"`
}

// FormatP renders p for subsample.json: "inf" when p is +Inf, otherwise
// the plain decimal value.
func FormatP(p float64) string {
	if math.IsInf(p, 1) {
		return "inf"
	}
	return strconv.FormatFloat(p, 'g', -1, 64)
}

// ParseP parses the <p> CLI argument: "inf" (any case), or any other
// string that parses as +Inf, selects Bottleneck semantics; otherwise it
// must be a number >= 1.
func ParseP(s string) (float64, error) {
	if strings.EqualFold(s, "inf") {
		return math.Inf(1), nil
	}
	p, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "parsing p argument %q", s)
	}
	if math.IsInf(p, 1) {
		return math.Inf(1), nil
	}
	if p < 1 {
		return 0, errors.Errorf("p must be >= 1 or \"inf\", got %q", s)
	}
	return p, nil
}

// WriteSubsampleFile writes subsample.json, sorting ids into ascending
// order per spec.md §6.
func WriteSubsampleFile(path string, sf SubsampleFile) error {
	sorted := append([]int64(nil), sf.Subsample...)
	sortInt64s(sorted)
	sf.Subsample = sorted
	data, err := json.MarshalIndent(sf, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshaling subsample file")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "writing subsample file %s", path)
	}
	return nil
}

func sortInt64s(ids []int64) {
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j-1] > ids[j]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
}

// LoadSubsampleFile reads subsample.json, resolving the ids back into
// diagram.Point values loaded from the original samples.json it
// references.
func LoadSubsampleFile(path string) (*SubsampleFile, []diagram.Point, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "reading subsample file %s", path)
	}
	var sub SubsampleFile
	if err := json.Unmarshal(data, &sub); err != nil {
		return nil, nil, errors.Wrapf(err, "parsing subsample file %s", path)
	}
	sf, err := LoadSamplesFile(sub.Sample)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "loading samples referenced by %s", path)
	}
	all, err := LoadPoints(sf)
	if err != nil {
		return nil, nil, err
	}
	byID := make(map[int64]diagram.Point, len(all))
	for _, p := range all {
		byID[p.PointID()] = p
	}
	points := make([]diagram.Point, len(sub.Subsample))
	for i, id := range sub.Subsample {
		p, ok := byID[id]
		if !ok {
			return nil, nil, errors.Errorf("subsample file %s references unknown sample id %d", path, id)
		}
		points[i] = p
	}
	return &sub, points, nil
}

// LoadDistanceFilter reads the optional distance-filter file: a
// whitespace-separated stream of 0/1 flags, row-major upper-triangular
// order, required to carry exactly n(n-1)/2 entries (spec.md §6,
// SPEC_FULL.md §4). A length mismatch is a kind-2 input-format error.
func LoadDistanceFilter(path string, n int) ([]bool, error) {
	want := n * (n - 1) / 2
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading distance filter %s", path)
	}
	fields := strings.Fields(string(data))
	if len(fields) != want {
		return nil, errors.Errorf("distance filter %s: expected %d flags for %d points, got %d", path, want, n, len(fields))
	}
	out := make([]bool, want)
	for i, f := range fields {
		switch f {
		case "0":
			out[i] = false
		case "1":
			out[i] = true
		default:
			return nil, errors.Errorf("distance filter %s: entry %d is %q, want 0 or 1", path, i, f)
		}
	}
	return out, nil
}

// WriteDistanceFile writes distance.txt: a single line of n(n-1)/2
// space-separated doubles, row-major upper-triangular order.
func WriteDistanceFile(path string, distances []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating distance file %s", path)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	for i, d := range distances {
		if i > 0 {
			if _, err := w.WriteString(" "); err != nil {
				return errors.Wrap(err, "writing distance file")
			}
		}
		if _, err := w.WriteString(strconv.FormatFloat(d, 'g', -1, 64)); err != nil {
			return errors.Wrap(err, "writing distance file")
		}
	}
	if _, err := w.WriteString("\n"); err != nil {
		return errors.Wrap(err, "writing distance file")
	}
	if err := w.Flush(); err != nil {
		return errors.Wrapf(err, "flushing distance file %s", path)
	}
	return nil
}

// UpperTriangularIndex returns the row-major upper-triangular position of
// pair (i, j), i < j, among n points.
func UpperTriangularIndex(n, i, j int) int {
	if i > j {
		i, j = j, i
	}
	return i*n - i*(i+1)/2 + (j - i - 1)
}
