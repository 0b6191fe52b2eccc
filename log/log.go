// Package log wires the project's structured logger: zap for the
// machinery, lumberjack for file rotation. Every other package logs
// through the package-level functions here rather than touching zap
// directly, the way the teacher centralizes logging behind one facade.
package log

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config controls where and how logs are written.
type Config struct {
	Level      string `yaml:"level"`       // debug|info|warn|error
	FileName   string `yaml:"filename"`    // empty means stderr only
	MaxSizeMB  int    `yaml:"max_size_mb"` // lumberjack MaxSize
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

var (
	mu     sync.RWMutex
	logger *zap.SugaredLogger
)

func init() {
	logger = build(Config{Level: "info"})
}

// Init replaces the global logger with one built from cfg. Call once at
// startup before any other package logs.
func Init(cfg Config) {
	mu.Lock()
	logger = build(cfg)
	mu.Unlock()
}

func build(cfg Config) *zap.SugaredLogger {
	level := zapcore.InfoLevel
	_ = level.UnmarshalText([]byte(cfg.Level))

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	writers := []zapcore.WriteSyncer{zapcore.AddSync(os.Stderr)}
	if cfg.FileName != "" {
		writers = append(writers, zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.FileName,
			MaxSize:    orDefault(cfg.MaxSizeMB, 100),
			MaxBackups: orDefault(cfg.MaxBackups, 3),
			MaxAge:     orDefault(cfg.MaxAgeDays, 28),
		}))
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderCfg),
		zapcore.NewMultiWriteSyncer(writers...),
		level,
	)

	return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).Sugar()
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func get() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

func Debugf(format string, args ...interface{}) { get().Debugf(format, args...) }
func Infof(format string, args ...interface{})  { get().Infof(format, args...) }
func Warnf(format string, args ...interface{})  { get().Warnf(format, args...) }
func Errorf(format string, args ...interface{}) { get().Errorf(format, args...) }
func Fatalf(format string, args ...interface{}) { get().Fatalf(format, args...) }

// Sync flushes any buffered log entries. Call on shutdown.
func Sync() {
	_ = get().Sync()
}
