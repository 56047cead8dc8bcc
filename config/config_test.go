package config_test

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shaunharker/subsample/config"
)

func TestParsePHandlesInfCaseInsensitively(t *testing.T) {
	p, err := config.ParseP("Inf")
	require.NoError(t, err)
	require.True(t, math.IsInf(p, 1))
}

func TestParsePRejectsBelowOne(t *testing.T) {
	_, err := config.ParseP("0.5")
	require.Error(t, err)
}

func TestFormatPRoundTrip(t *testing.T) {
	require.Equal(t, "inf", config.FormatP(math.Inf(1)))
	require.Equal(t, "2", config.FormatP(2))
}

func TestLoadSamplesFileAndPoints(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a0.txt", "0 1\n")
	writeFile(t, dir, "b0.txt", "0.5 -1\n")

	sf := config.SamplesFile{Path: dir, Sample: [][]string{{"a0.txt"}, {"b0.txt"}}}
	data, err := json.Marshal(sf)
	require.NoError(t, err)
	samplesPath := filepath.Join(dir, "samples.json")
	require.NoError(t, os.WriteFile(samplesPath, data, 0o644))

	loaded, err := config.LoadSamplesFile(samplesPath)
	require.NoError(t, err)
	points, err := config.LoadPoints(loaded)
	require.NoError(t, err)
	require.Len(t, points, 2)
	require.Equal(t, int64(0), points[0].PointID())
	require.Equal(t, int64(1), points[1].PointID())
}

func TestWriteAndLoadSubsampleFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a0.txt", "0 1\n")
	writeFile(t, dir, "a1.txt", "0 2\n")
	sf := config.SamplesFile{Path: dir, Sample: [][]string{{"a0.txt"}, {"a1.txt"}}}
	data, err := json.Marshal(sf)
	require.NoError(t, err)
	samplesPath := filepath.Join(dir, "samples.json")
	require.NoError(t, os.WriteFile(samplesPath, data, 0o644))

	outPath := filepath.Join(dir, "subsample.json")
	err = config.WriteSubsampleFile(outPath, config.SubsampleFile{
		Sample: samplesPath, Delta: 1.5, P: "2", Subsample: []int64{1, 0},
	})
	require.NoError(t, err)

	sub, points, err := config.LoadSubsampleFile(outPath)
	require.NoError(t, err)
	require.Equal(t, []int64{0, 1}, sub.Subsample)
	require.Len(t, points, 2)
}

func TestLoadDistanceFilterRejectsWrongLength(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "filter.txt")
	require.NoError(t, os.WriteFile(path, []byte("1 0 1\n"), 0o644))
	_, err := config.LoadDistanceFilter(path, 5)
	require.Error(t, err)
}

func TestLoadDistanceFilterAcceptsCorrectLength(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "filter.txt")
	require.NoError(t, os.WriteFile(path, []byte("1 0 1 0 1 0 1 0 1 0\n"), 0o644))
	flags, err := config.LoadDistanceFilter(path, 5)
	require.NoError(t, err)
	require.Len(t, flags, 10)
}

func TestUpperTriangularIndexIsRowMajorAndSymmetric(t *testing.T) {
	n := 4
	seen := map[int]bool{}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			idx := config.UpperTriangularIndex(n, i, j)
			require.False(t, seen[idx])
			seen[idx] = true
			require.Equal(t, idx, config.UpperTriangularIndex(n, j, i))
		}
	}
	require.Len(t, seen, n*(n-1)/2)
}

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}
