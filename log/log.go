// Package log provides a global, levelled, structured logger for the whole
// service. It is a thin wrapper around zap's SugaredLogger so that call
// sites can stay short (log.Infow, log.Warnf, ...) without carrying a
// logger instance around.
package log

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevelDebug is exported so callers can gate expensive logging on the
// configured level without importing zapcore themselves.
const LogLevelDebug = zapcore.DebugLevel

var logger *zap.SugaredLogger

func init() {
	// A usable default so that packages can log before Init is called
	// (for example from tests).
	Init("info", "stdout")
}

// Init initializes the global logger with the given level ("debug", "info",
// "warn" or "error") and output ("stdout", "stderr" or a file path).
func Init(level, output string) {
	var zlevel zapcore.Level
	switch level {
	case "debug":
		zlevel = zap.DebugLevel
	case "info":
		zlevel = zap.InfoLevel
	case "warn":
		zlevel = zap.WarnLevel
	case "error":
		zlevel = zap.ErrorLevel
	default:
		zlevel = zap.InfoLevel
	}

	var sink zapcore.WriteSyncer
	switch output {
	case "stdout":
		sink = zapcore.AddSync(os.Stdout)
	case "stderr":
		sink = zapcore.AddSync(os.Stderr)
	default:
		f, err := os.OpenFile(output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			panic(err)
		}
		sink = zapcore.AddSync(f)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), sink, zlevel)
	logger = zap.New(core, zap.AddCallerSkip(1)).Sugar()
}

// Level returns the level the global logger was initialized with.
func Level() zapcore.Level {
	return logger.Level()
}

func Debug(args ...any)                   { logger.Debug(args...) }
func Debugf(template string, args ...any) { logger.Debugf(template, args...) }
func Debugw(msg string, kv ...any)        { logger.Debugw(msg, kv...) }

func Info(args ...any)                   { logger.Info(args...) }
func Infof(template string, args ...any) { logger.Infof(template, args...) }
func Infow(msg string, kv ...any)        { logger.Infow(msg, kv...) }

func Warn(args ...any)                   { logger.Warn(args...) }
func Warnf(template string, args ...any) { logger.Warnf(template, args...) }
func Warnw(msg string, kv ...any)        { logger.Warnw(msg, kv...) }

func Error(args ...any)                   { logger.Error(args...) }
func Errorf(template string, args ...any) { logger.Errorf(template, args...) }

// Errorw logs an error with an accompanying message.
func Errorw(err error, msg string) { logger.Errorw(msg, "error", err) }

func Fatal(args ...any)                   { logger.Fatal(args...) }
func Fatalf(template string, args ...any) { logger.Fatalf(template, args...) }
