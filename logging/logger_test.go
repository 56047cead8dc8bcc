package logging_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shaunharker/subsample/logging"
)

func TestConsoleAppenderWritesTabSeparatedLine(t *testing.T) {
	var buf bytes.Buffer
	log := logging.NewTest(&buf)
	log.Infow("cohort complete", "cohortSize", 1000, "accepted", 42)
	require.NoError(t, log.Sync())

	out := buf.String()
	require.Contains(t, out, "INFO")
	require.Contains(t, out, "cohort complete")
	require.True(t, strings.Count(out, "\t") >= 2)
}

func TestLogLevelGating(t *testing.T) {
	var buf bytes.Buffer
	log := logging.NewTest(&buf)
	log.Debugw("should appear, NewTest logs at debug level")
	require.Contains(t, buf.String(), "DEBUG")
}
