package logging

import "go.uber.org/zap/zapcore"

// core adapts one or more Appenders into a zapcore.Core. Appender.Write's
// signature already matches zapcore.Core.Write exactly, so the only work
// here is level gating and field accumulation across With calls.
type core struct {
	level     zapcore.LevelEnabler
	appenders []Appender
	fields    []zapcore.Field
}

// NewCore builds a zapcore.Core that fans every log entry out to each of
// the given appenders.
func NewCore(level zapcore.LevelEnabler, appenders ...Appender) zapcore.Core {
	return &core{level: level, appenders: appenders}
}

func (c *core) Enabled(lvl zapcore.Level) bool { return c.level.Enabled(lvl) }

func (c *core) With(fields []zapcore.Field) zapcore.Core {
	merged := make([]zapcore.Field, 0, len(c.fields)+len(fields))
	merged = append(merged, c.fields...)
	merged = append(merged, fields...)
	return &core{level: c.level, appenders: c.appenders, fields: merged}
}

func (c *core) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *core) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	all := make([]zapcore.Field, 0, len(c.fields)+len(fields))
	all = append(all, c.fields...)
	all = append(all, fields...)
	var firstErr error
	for _, a := range c.appenders {
		if err := a.Write(ent, all); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (c *core) Sync() error {
	var firstErr error
	for _, a := range c.appenders {
		if err := a.Sync(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
