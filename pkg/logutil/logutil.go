package logutil

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu     sync.RWMutex
	logger *zap.Logger
	once   sync.Once
	level  = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

// InitLogger builds the process logger. Output goes to stderr; the level
// comes from COLLPROF_LOG_LEVEL (default info).
func InitLogger() {
	once.Do(func() {
		if l := os.Getenv("COLLPROF_LOG_LEVEL"); l != "" {
			SetLevel(l)
		}
		setLogger(build())
	})
}

// SetLevel changes the level of the logger built by InitLogger in place.
// A logger installed with SetLogger is kept. Empty or unknown levels
// select info.
func SetLevel(l string) {
	lvl := zapcore.InfoLevel
	if l != "" {
		if err := lvl.UnmarshalText([]byte(l)); err != nil {
			lvl = zapcore.InfoLevel
		}
	}
	level.SetLevel(lvl)
}

// Level returns the current level of the built logger.
func Level() zapcore.Level {
	return level.Level()
}

func build() *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.Level = level
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.Sampling = nil

	l, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// GetLogger returns the process logger, initializing it on first use.
func GetLogger() *zap.Logger {
	InitLogger()
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// SetLogger replaces the process logger. Tests use it to observe output.
func SetLogger(l *zap.Logger) {
	once.Do(func() {})
	setLogger(l)
}

func setLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	mu.Lock()
	logger = l
	mu.Unlock()
}
