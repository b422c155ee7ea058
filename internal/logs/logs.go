// Package logs provides named zap loggers for every component. Loggers may be
// created at package init; they pick up the output configured later by Setup.
package logs

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls log level, encoding and the optional rotated log file
type Options struct {
	Level      string
	JSON       bool
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

type coreHolder struct {
	core zapcore.Core
}

var (
	active atomic.Pointer[coreHolder]
	root   *zap.Logger
)

func init() {
	active.Store(&coreHolder{core: newCore(zapcore.InfoLevel, false, zapcore.Lock(os.Stderr))})
	root = zap.New(&swapCore{}, zap.AddCaller())
}

// Setup replaces the output of every logger, existing or future
func Setup(opts Options) error {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return err
	}

	sinks := []zapcore.WriteSyncer{zapcore.Lock(os.Stderr)}
	if opts.File != "" {
		sinks = append(sinks, zapcore.AddSync(&lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   true,
		}))
	}

	Replace(newCore(level, opts.JSON, zapcore.NewMultiWriteSyncer(sinks...)))
	return nil
}

// Replace swaps the active core and returns a function restoring the previous one
func Replace(core zapcore.Core) func() {
	prev := active.Swap(&coreHolder{core: core})
	return func() { active.Store(prev) }
}

// Logger returns a sugared logger named after a component
func Logger(name string) *zap.SugaredLogger {
	return root.Named(name).Sugar()
}

// GetLogger returns the unnamed root logger
func GetLogger() *zap.SugaredLogger {
	return root.Sugar()
}

// Sync flushes buffered entries
func Sync() error {
	return active.Load().core.Sync()
}

// ParseLevel maps a textual level to a zap level; empty means info
func ParseLevel(s string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return zapcore.InfoLevel, nil
	case "debug":
		return zapcore.DebugLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	}
	return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", s)
}

func newCore(level zapcore.Level, json bool, out zapcore.WriteSyncer) zapcore.Core {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	if json {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	}
	return zapcore.NewCore(enc, out, level)
}

// swapCore forwards to whatever core is active at write time
type swapCore struct {
	fields []zapcore.Field
}

func (c *swapCore) current() zapcore.Core {
	core := active.Load().core
	if len(c.fields) > 0 {
		return core.With(c.fields)
	}
	return core
}

func (c *swapCore) Enabled(l zapcore.Level) bool {
	return active.Load().core.Enabled(l)
}

func (c *swapCore) With(fields []zapcore.Field) zapcore.Core {
	merged := make([]zapcore.Field, 0, len(c.fields)+len(fields))
	merged = append(merged, c.fields...)
	merged = append(merged, fields...)
	return &swapCore{fields: merged}
}

func (c *swapCore) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(e.Level) {
		return ce.AddCore(e, c)
	}
	return ce
}

func (c *swapCore) Write(e zapcore.Entry, fields []zapcore.Field) error {
	return c.current().Write(e, fields)
}

func (c *swapCore) Sync() error {
	return active.Load().core.Sync()
}
