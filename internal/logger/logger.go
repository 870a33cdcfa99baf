// Package logger holds the process-wide zap logger and a component-scoped
// structured wrapper around it.
package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cyphera/cyphera-airdrop/internal/constants"
)

// Log is the global logger. It discards everything until InitLogger runs.
var Log = zap.NewNop()

// InitLogger replaces Log with a logger suited to stage. prod writes JSON
// tagged with the service and stage; other stages write console lines,
// colored unless stage is test. LOG_LEVEL sets the minimum level.
func InitLogger(stage string) {
	Log = newLogger(stage, ParseLevel(os.Getenv("LOG_LEVEL")))
}

func newLogger(stage string, level zapcore.Level) *zap.Logger {
	var cfg zap.Config
	switch stage {
	case constants.ProdEnvironment:
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.MessageKey = "message"
		cfg.InitialFields = map[string]interface{}{
			"service": constants.ServiceName,
			"stage":   stage,
		}
		cfg.DisableStacktrace = level > zapcore.DebugLevel
	default:
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		if stage == constants.TestEnvironment {
			cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		}
	}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.Level = zap.NewAtomicLevelAt(level)

	l, err := cfg.Build()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	return l
}

// ParseLevel maps a LOG_LEVEL value to a zap level. Unknown or empty values
// mean info.
func ParseLevel(name string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case constants.ErrorLevel:
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	}
	return zapcore.InfoLevel
}

func Info(msg string, fields ...zapcore.Field)  { Log.Info(msg, fields...) }
func Warn(msg string, fields ...zapcore.Field)  { Log.Warn(msg, fields...) }
func Error(msg string, fields ...zapcore.Field) { Log.Error(msg, fields...) }
func Debug(msg string, fields ...zapcore.Field) { Log.Debug(msg, fields...) }

// Fatal logs and exits with status 1.
func Fatal(msg string, fields ...zapcore.Field) { Log.Fatal(msg, fields...) }

// Sync flushes buffered entries. Call it before the process exits.
func Sync() error {
	return Log.Sync()
}
