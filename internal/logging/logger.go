package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Options struct {
	Dir   string
	Level string    // zap level name; empty means info
	Tee   io.Writer // optional second sink, e.g. os.Stderr for the CLI
}

// NewLogger writes JSON lines to {Dir}/netwatch.log with rotation.
func NewLogger(opts Options) (*zap.Logger, error) {
	lvl := zapcore.InfoLevel
	if opts.Level != "" {
		parsed, err := zapcore.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
		lvl = parsed
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, err
	}
	w := zapcore.AddSync(&lumberjack.Logger{
		Filename:   filepath.Join(opts.Dir, "netwatch.log"),
		MaxSize:    10, // MB
		MaxBackups: 5,
		MaxAge:     14, // days
		Compress:   true,
	})
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"
	cores := []zapcore.Core{zapcore.NewCore(zapcore.NewJSONEncoder(cfg), w, lvl)}
	if opts.Tee != nil {
		console := zap.NewDevelopmentEncoderConfig()
		console.TimeKey = "ts"
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(console), zapcore.AddSync(opts.Tee), lvl))
	}
	return zap.New(zapcore.NewTee(cores...)), nil
}
