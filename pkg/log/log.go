// Package log is the leveled key/value logger shared by the facade and the
// command line tools.
//
//	log.Warn("unresolved property", "name", name, "type", typeName)
package log

import (
	"io"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu     sync.RWMutex
	level  = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	logger = newLogger(os.Stderr)
)

func newLogger(w io.Writer) *zap.SugaredLogger {
	enc := zap.NewDevelopmentEncoderConfig()
	enc.TimeKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(w), level)
	return zap.New(core).Sugar()
}

// SetOutput redirects all log output to w.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger = newLogger(w)
}

// Nop discards all log output.
func Nop() {
	mu.Lock()
	defer mu.Unlock()
	logger = zap.NewNop().Sugar()
}

// SetLevel sets the minimum level by name: debug, info, warn or error.
// Unknown names leave the level unchanged and return false.
func SetLevel(name string) bool {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(name))); err != nil {
		return false
	}
	level.SetLevel(l)
	return true
}

// Level returns the current minimum level name.
func Level() string { return level.Level().String() }

func current() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

func Debug(msg string, ctx ...interface{}) { current().Debugw(msg, ctx...) }
func Info(msg string, ctx ...interface{})  { current().Infow(msg, ctx...) }
func Warn(msg string, ctx ...interface{})  { current().Warnw(msg, ctx...) }
func Error(msg string, ctx ...interface{}) { current().Errorw(msg, ctx...) }

// Sync flushes buffered output.
func Sync() error { return current().Sync() }
