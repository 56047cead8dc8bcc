package diagram_test

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shaunharker/subsample/diagram"
)

func writeDiagramFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDiagramFileSubstitutesInfSentinel(t *testing.T) {
	dir := t.TempDir()
	path := writeDiagramFile(t, dir, "d0.txt", "0.0 1.0\n0.5 -1\n")
	d, err := diagram.LoadDiagramFile(path)
	require.NoError(t, err)
	require.Len(t, d, 2)
	require.Equal(t, diagram.Pair{Birth: 0, Death: 1}, d[0])
	require.Equal(t, diagram.Pair{Birth: 0.5, Death: 100000.0}, d[1])
}

func TestLoadDiagramFileRejectsMalformedLine(t *testing.T) {
	dir := t.TempDir()
	path := writeDiagramFile(t, dir, "bad.txt", "0.0 1.0 2.0\n")
	_, err := diagram.LoadDiagramFile(path)
	require.Error(t, err)
}

func TestBottleneckIdenticalDiagramsIsZero(t *testing.T) {
	d := diagram.PersistenceDiagram{{Birth: 0, Death: 1}, {Birth: 0.2, Death: 0.8}}
	a := diagram.NewPoint(0, []diagram.PersistenceDiagram{d})
	b := diagram.NewPoint(1, []diagram.PersistenceDiagram{append(diagram.PersistenceDiagram{}, d...)})
	dist := diagram.Distance{P: math.Inf(1)}
	require.InDelta(t, 0, dist.Eval(a, b), 1e-9)
}

func TestBottleneckOnePointShiftedMatchesShift(t *testing.T) {
	a := diagram.NewPoint(0, []diagram.PersistenceDiagram{{{Birth: 0, Death: 10}}})
	b := diagram.NewPoint(1, []diagram.PersistenceDiagram{{{Birth: 0, Death: 10.5}}})
	dist := diagram.Distance{P: math.Inf(1)}
	require.InDelta(t, 0.5, dist.Eval(a, b), 1e-6)
}

func TestBottleneckAgainstEmptyDiagramUsesDiagonalProjection(t *testing.T) {
	a := diagram.NewPoint(0, []diagram.PersistenceDiagram{{{Birth: 0, Death: 10}}})
	b := diagram.NewPoint(1, []diagram.PersistenceDiagram{{}})
	dist := diagram.Distance{P: math.Inf(1)}
	require.InDelta(t, 5, dist.Eval(a, b), 1e-6)
}

func TestWassersteinIdenticalDiagramsIsZero(t *testing.T) {
	d := diagram.PersistenceDiagram{{Birth: 0, Death: 1}, {Birth: 0.2, Death: 0.9}}
	a := diagram.NewPoint(0, []diagram.PersistenceDiagram{d})
	b := diagram.NewPoint(1, []diagram.PersistenceDiagram{append(diagram.PersistenceDiagram{}, d...)})
	dist := diagram.Distance{P: 2}
	require.InDelta(t, 0, dist.Eval(a, b), 1e-9)
}

func TestWassersteinAgainstEmptyDiagramUsesDiagonalProjection(t *testing.T) {
	a := diagram.NewPoint(0, []diagram.PersistenceDiagram{{{Birth: 0, Death: 4}}})
	b := diagram.NewPoint(1, []diagram.PersistenceDiagram{{}})
	dist := diagram.Distance{P: 1}
	require.InDelta(t, 2, dist.Eval(a, b), 1e-6)
}

func TestWassersteinApproxModeIsFiniteAndNonNegative(t *testing.T) {
	a := diagram.NewPoint(0, []diagram.PersistenceDiagram{{{Birth: 0, Death: 4}, {Birth: 1, Death: 3}}})
	b := diagram.NewPoint(1, []diagram.PersistenceDiagram{{{Birth: 0.1, Death: 4.2}}})
	dist := diagram.Distance{P: 2, Approx: 0.5}
	got := dist.Eval(a, b)
	require.False(t, math.IsNaN(got))
	require.GreaterOrEqual(t, got, 0.0)
}
