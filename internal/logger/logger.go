// internal/logger/logger.go
//
// Structured JSON logger (Zap + Lumberjack).
//
// Context
// -------
// The render service writes lifecycle, cache, and editor events as JSON to
// `<root>/logs/sitebuilder.log`.  When running in an interactive TTY we tee
// the same events to stdout with the console encoder.  Rotation,
// compression, and retention are handled by Lumberjack; no external
// log-rotate job is required.
//
// Usage
// -----
//
//	log, closeFn, err := logger.New(logger.Options{Root: cfg.Paths.Root, Tee: tty})
//	if err != nil { … }
//	defer closeFn()
//	log.Info("projection cached", zap.String("site", slug))
//
// Notes
// -----
// • Zap core uses ISO-8601 timestamps and lowercase levels.
// • Errors are written to the same sink via `ErrorOutput`.
// • Oxford commas, two spaces after periods.
package logger

import (
	"os"
	"path/filepath"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configures New.  Zero values give INFO level, file only.
type Options struct {
	Root  string // logs go to <Root>/logs
	Tee   bool   // also write to stdout
	Level string // debug, info, warn, error
}

// New returns a *zap.Logger writing JSON to <root>/logs/sitebuilder.log.
// The logger is installed as the process-wide default via
// zap.ReplaceGlobals.  The returned func flushes and closes the file sink.
func New(opts Options) (*zap.Logger, func(), error) {
	logDir := filepath.Join(opts.Root, "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, nil, err
	}

	level := zap.InfoLevel
	if opts.Level != "" {
		if err := level.Set(opts.Level); err != nil {
			return nil, nil, err
		}
	}

	fileSink := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "sitebuilder.log"),
		MaxSize:    50, // MB
		MaxBackups: 7,  // keep last seven files
		MaxAge:     14, // days
		Compress:   true,
	}

	encCfg := zapcore.EncoderConfig{
		TimeKey:       "ts",
		LevelKey:      "level",
		NameKey:       "logger",
		MessageKey:    "msg",
		CallerKey:     "caller",
		StacktraceKey: "stack",
		EncodeTime:    zapcore.ISO8601TimeEncoder,
		EncodeLevel:   zapcore.LowercaseLevelEncoder,
		EncodeCaller:  zapcore.ShortCallerEncoder,
	}
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(fileSink), level),
	}
	if opts.Tee {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(encCfg),
			zapcore.AddSync(os.Stdout),
			level,
		))
	}

	z := zap.New(
		zapcore.NewTee(cores...),
		zap.AddCaller(),
		zap.ErrorOutput(zapcore.AddSync(fileSink)),
	)

	// Make this the global logger so zap.L() works everywhere after startup.
	undo := zap.ReplaceGlobals(z)

	z.Info("logger online", zap.Bool("tee", opts.Tee), zap.String("level", level.String()))
	return z, func() {
		_ = z.Sync()
		undo()
		_ = fileSink.Close()
	}, nil
}

// RunningInTTY returns true when stdout is a character device.
func RunningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
