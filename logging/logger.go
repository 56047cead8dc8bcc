package logging

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the structured logger threaded through the coordinator, the
// Subsampler's background task, and the CLI commands.
type Logger struct {
	*zap.SugaredLogger
	closer io.Closer
}

// Config selects where log output goes and at what level.
type Config struct {
	// FilePath, if non-empty, routes output through a rotating file
	// appender instead of the console (SPEC_FULL.md §0: --log-file).
	FilePath string
	Level    zapcore.Level
}

// New builds a Logger per cfg. When cfg.FilePath is empty, logs go to
// stdout through a ConsoleAppender.
func New(cfg Config) *Logger {
	var appender Appender
	var closer io.Closer
	if cfg.FilePath != "" {
		a, c := NewFileAppender(cfg.FilePath)
		appender, closer = a, c
	} else {
		appender = NewStdoutAppender()
	}
	core := NewCore(cfg.Level, appender)
	return &Logger{SugaredLogger: zap.New(core).Sugar(), closer: closer}
}

// NewTest builds a Logger writing to w, for use in tests.
func NewTest(w io.Writer) *Logger {
	core := NewCore(zapcore.DebugLevel, NewWriterAppender(w))
	return &Logger{SugaredLogger: zap.New(core).Sugar()}
}

// Close flushes and releases any underlying file handle.
func (l *Logger) Close() error {
	_ = l.Sync()
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}
