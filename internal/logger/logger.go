package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var Default *zap.SugaredLogger

var level = zap.NewAtomicLevelAt(zap.DebugLevel)

func init() {
	cfg := zap.NewProductionConfig()
	cfg.Level = level
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder // human-readable time

	rawLogger, err := cfg.Build()
	if err != nil {
		rawLogger = zap.NewNop()
	}
	Default = rawLogger.WithOptions(zap.AddCaller()).Sugar()
}

// SetLevel accepts zap level names ("debug", "info", "warn", "error").
// Unknown names leave the level untouched.
func SetLevel(name string) {
	if name == "" {
		return
	}
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(name)); err != nil {
		Default.Warnf("[logger] - unknown log level %q, keeping %s", name, level.Level())
		return
	}
	level.SetLevel(l)
}

func Sync() {
	_ = Default.Sync()
}
