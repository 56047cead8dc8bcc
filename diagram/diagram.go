// Package diagram is the reference PointSource/DistanceFn plug-in
// (spec.md §1, §3): a Point is a tuple of persistence diagrams, and
// Distance is the Bottleneck (p = +Inf) or Wasserstein-p metric between
// two such tuples. Bottleneck/Wasserstein are explicitly out of the
// core's scope (spec.md §1 Out of scope) -- this package exists so the
// CLI is runnable end to end against real topological-data-analysis
// inputs, not to be the last word on persistence-diagram metrics.
package diagram

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// Pair is a single (birth, death) point of a persistence diagram.
type Pair struct {
	Birth, Death float64
}

// PersistenceDiagram is a multiset of (birth, death) pairs.
type PersistenceDiagram []Pair

// Point is the embedder's opaque value type: a stable id plus the tuple of
// persistence diagrams that make up one sample (original_source's Point
// class held the same -- an id and a vector of diagrams, one per
// homological dimension or comparison axis). point.Point requires
// comparable, which a slice field can't satisfy, so the diagram tuple is
// held behind a pointer; two Points are equal iff they share one backing
// tuple, which is exactly how Points are constructed and handed around
// here.
type Point struct {
	id   int64
	tuple *[]PersistenceDiagram
}

// NewPoint constructs a Point with the given id and diagram tuple.
func NewPoint(id int64, diagrams []PersistenceDiagram) Point {
	return Point{id: id, tuple: &diagrams}
}

// PointID implements point.Point.
func (p Point) PointID() int64 { return p.id }

// Diagrams returns the point's diagram tuple.
func (p Point) Diagrams() []PersistenceDiagram {
	if p.tuple == nil {
		return nil
	}
	return *p.tuple
}

// infSentinel is the value spec.md §6 says replaces a literal -1 in a
// diagram file: a death (or birth) that never occurs within the observed
// filtration is recorded as -1 by the upstream tool and means "infinity"
// for matching purposes; 100000.0 stands in for it here, matching
// original_source's convention (see original_source's diagram readers).
const infSentinel = 100000.0

// LoadDiagramFile reads one persistence-diagram text file: whitespace
// separated "birth death" pairs, one per line, with -1 replaced by the
// infinity sentinel.
func LoadDiagramFile(path string) (PersistenceDiagram, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("diagram: opening %s: %w", path, err)
	}
	defer f.Close()
	return parseDiagram(f, path)
}

func parseDiagram(r io.Reader, path string) (PersistenceDiagram, error) {
	var out PersistenceDiagram
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("diagram: %s:%d: expected \"birth death\", got %q", path, lineNo, line)
		}
		birth, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("diagram: %s:%d: bad birth value %q: %w", path, lineNo, fields[0], err)
		}
		death, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("diagram: %s:%d: bad death value %q: %w", path, lineNo, fields[1], err)
		}
		if birth == -1 {
			birth = infSentinel
		}
		if death == -1 {
			death = infSentinel
		}
		out = append(out, Pair{Birth: birth, Death: death})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("diagram: reading %s: %w", path, err)
	}
	return out, nil
}

// Distance is the bespoke distance between two Points: Bottleneck when P
// is +Inf, Wasserstein-P otherwise (original_source's Distance class).
// When Approx > 0, matching uses the relaxed ε-approximate tolerance
// named in spec.md §6 instead of searching for an exactly optimal
// assignment.
type Distance struct {
	P      float64
	Approx float64
}

// Eval computes the distance between a and b. It panics if a and b do not
// carry the same number of diagrams -- a malformed Point is a programmer
// error, not a runtime condition (spec.md §7 kind 4).
func (d Distance) Eval(a, b Point) float64 {
	da, db := a.Diagrams(), b.Diagrams()
	if len(da) != len(db) {
		panic(fmt.Sprintf("diagram: point %d has %d diagrams, point %d has %d", a.id, len(da), b.id, len(db)))
	}
	if math.IsInf(d.P, 1) {
		var maxDist float64
		for i := range da {
			if bd := bottleneckDistance(da[i], db[i], d.Approx); bd > maxDist {
				maxDist = bd
			}
		}
		return maxDist
	}
	var total float64
	for i := range da {
		w := wassersteinDistance(da[i], db[i], d.P, d.Approx)
		total += math.Pow(w, d.P)
	}
	return math.Pow(total, 1/d.P)
}

func pointCost(a, b Pair) float64 {
	return math.Max(math.Abs(a.Birth-b.Birth), math.Abs(a.Death-b.Death))
}

func diagCost(a Pair) float64 {
	return math.Abs(a.Death-a.Birth) / 2
}
