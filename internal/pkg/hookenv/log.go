package hookenv

import (
	"context"
	"strings"

	"go.uber.org/zap/zapcore" // Logging.
)

// NewLogCore returns a zapcore.Core that writes log entries to juju-log.
// Juju adds its own timestamps and levels, so only the logger name,
// message and fields are encoded.
func NewLogCore(t *Tools, enab zapcore.LevelEnabler) zapcore.Core {
	enc := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		NameKey:        "logger",
		MessageKey:     "msg",
		EncodeName:     zapcore.FullNameEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		LineEnding:     zapcore.DefaultLineEnding,
	})
	return &logCore{LevelEnabler: enab, enc: enc, tools: t}
}

type logCore struct {
	zapcore.LevelEnabler
	enc   zapcore.Encoder
	tools *Tools
}

func (c *logCore) With(fields []zapcore.Field) zapcore.Core {
	enc := c.enc.Clone()
	for _, f := range fields {
		f.AddTo(enc)
	}
	return &logCore{LevelEnabler: c.LevelEnabler, enc: enc, tools: c.tools}
}

func (c *logCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *logCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	buf, err := c.enc.EncodeEntry(ent, fields)
	if err != nil {
		return err
	}
	msg := strings.TrimSuffix(buf.String(), "\n")
	buf.Free()
	return c.tools.Log(context.Background(), levelOf(ent.Level), msg)
}

func (c *logCore) Sync() error { return nil }

func levelOf(l zapcore.Level) Level {
	switch {
	case l <= zapcore.DebugLevel:
		return LevelDebug
	case l == zapcore.InfoLevel:
		return LevelInfo
	case l == zapcore.WarnLevel:
		return LevelWarning
	default:
		return LevelError
	}
}
