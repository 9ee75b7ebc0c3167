package telemetry

import (
	"io"
	"os"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	level  = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	logger atomic.Pointer[zap.Logger]
)

func init() {
	logger.Store(newLogger(os.Stdout))
}

func newLogger(w io.Writer) *zap.Logger {
	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "ts"
	enc.MessageKey = "msg"
	enc.LevelKey = "level"
	enc.EncodeTime = zapcore.RFC3339TimeEncoder
	enc.EncodeLevel = zapcore.LowercaseLevelEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(enc), zapcore.AddSync(w), level)
	return zap.New(core)
}

// Init sets the minimum level ("debug", "info", "warn", "error"). Unknown
// levels leave the current level untouched and return the parse error.
func Init(levelStr string) error {
	if levelStr == "" {
		return nil
	}
	lvl, err := zapcore.ParseLevel(levelStr)
	if err != nil {
		return err
	}
	level.SetLevel(lvl)
	return nil
}

// SetOutput redirects log lines to w. Intended for tests and the CLI.
func SetOutput(w io.Writer) {
	logger.Store(newLogger(w))
}

// Logger exposes the underlying zap logger for libraries that want one.
func Logger() *zap.Logger {
	return logger.Load()
}

// Sync flushes buffered log entries.
func Sync() {
	_ = logger.Load().Sync()
}

// Debug writes a debug-level log line with the given fields.
func Debug(msg string, fields map[string]any) {
	logger.Load().Debug(msg, toFields(fields)...)
}

// Info writes an info-level log line with the given fields.
func Info(msg string, fields map[string]any) {
	logger.Load().Info(msg, toFields(fields)...)
}

// Warn writes a warn-level log line with the given fields.
func Warn(msg string, fields map[string]any) {
	logger.Load().Warn(msg, toFields(fields)...)
}

// Error writes an error-level log line with the given fields.
func Error(msg string, fields map[string]any) {
	logger.Load().Error(msg, toFields(fields)...)
}

func toFields(fields map[string]any) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		if err, ok := v.(error); ok {
			out = append(out, zap.String(k, err.Error()))
			continue
		}
		out = append(out, zap.Any(k, v))
	}
	return out
}
