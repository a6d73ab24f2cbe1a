package logger

import (
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel represents the severity of a log message
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

func (l LogLevel) zapLevel() zapcore.Level {
	switch l {
	case DEBUG:
		return zapcore.DebugLevel
	case WARN:
		return zapcore.WarnLevel
	case ERROR:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Logger is a leveled key/value logger backed by zap
type Logger struct {
	level zap.AtomicLevel
	sugar *zap.SugaredLogger
	isDev bool
}

var (
	defaultLogger *Logger
	once          sync.Once
)

// New builds a logger. A nil core selects zap's development or production
// encoder depending on isDev.
func New(level LogLevel, isDev bool, core zapcore.Core) *Logger {
	atomic := zap.NewAtomicLevelAt(level.zapLevel())

	var base *zap.Logger
	if core != nil {
		base = zap.New(core, zap.IncreaseLevel(atomic))
	} else {
		cfg := zap.NewProductionConfig()
		if isDev {
			cfg = zap.NewDevelopmentConfig()
		}
		cfg.Level = atomic

		built, err := cfg.Build()
		if err != nil {
			built = zap.NewNop()
		}
		base = built
	}

	return &Logger{
		level: atomic,
		sugar: base.Sugar(),
		isDev: isDev,
	}
}

// Initialize sets up the default logger instance
func Initialize(level LogLevel, isDev bool) {
	once.Do(func() {
		defaultLogger = New(level, isDev, nil)
	})
}

// GetLogger returns the default logger instance
func GetLogger() *Logger {
	Initialize(INFO, false)
	return defaultLogger
}

// SetLevel updates the log level of the default logger
func SetLevel(level LogLevel) {
	GetLogger().SetLevel(level)
}

func (l *Logger) SetLevel(level LogLevel) {
	l.level.SetLevel(level.zapLevel())
}

// With returns a child logger that always carries the given pairs
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{
		level: l.level,
		sugar: l.sugar.With(keysAndValues...),
		isDev: l.isDev,
	}
}

func (l *Logger) Sync() error {
	return l.sugar.Sync()
}

func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Infow(msg, keysAndValues...)
}

func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	l.sugar.Warnw(msg, keysAndValues...)
}

func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, keysAndValues...)
}

// Package-level convenience functions

func Debug(msg string, keysAndValues ...interface{}) {
	GetLogger().Debug(msg, keysAndValues...)
}

func Info(msg string, keysAndValues ...interface{}) {
	GetLogger().Info(msg, keysAndValues...)
}

func Warn(msg string, keysAndValues ...interface{}) {
	GetLogger().Warn(msg, keysAndValues...)
}

func Error(msg string, keysAndValues ...interface{}) {
	GetLogger().Error(msg, keysAndValues...)
}

// ParseLevel converts a string to a LogLevel
func ParseLevel(level string) LogLevel {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return DEBUG
	case "INFO":
		return INFO
	case "WARN":
		return WARN
	case "ERROR":
		return ERROR
	default:
		return INFO
	}
}
