// Package logger provides the component loggers shared by the server and client
package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel represents logging verbosity
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

// level is shared by every component logger so one call adjusts them all
var level = zap.NewAtomicLevelAt(zapcore.InfoLevel)

// Component loggers
var (
	Server = New("SERVER")
	Client = New("CLIENT")
	Audit  = &ActionLog{Logger: New("AUDIT")}
)

// Logger is a named printf-style logger backed by zap
type Logger struct {
	name  string
	sugar atomic.Pointer[zap.SugaredLogger]

	mu   sync.Mutex
	file *os.File
}

// New creates a logger writing to stdout under the given component name
func New(name string) *Logger {
	l := &Logger{name: name}
	l.sugar.Store(zap.New(consoleCore()).Named(name).Sugar())
	return l
}

// NewNop creates a logger that discards everything, mostly for tests
func NewNop(name string) *Logger {
	l := &Logger{name: name}
	l.sugar.Store(zap.NewNop().Sugar())
	return l
}

// ParseLevel converts a flag value such as "DEBUG" into a LogLevel
func ParseLevel(s string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return DEBUG
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	default:
		return INFO
	}
}

// SetGlobalLogLevel sets the minimum level for every component logger
func SetGlobalLogLevel(l LogLevel) {
	switch l {
	case DEBUG:
		level.SetLevel(zapcore.DebugLevel)
	case WARN:
		level.SetLevel(zapcore.WarnLevel)
	case ERROR:
		level.SetLevel(zapcore.ErrorLevel)
	default:
		level.SetLevel(zapcore.InfoLevel)
	}
}

// SetFile tees this logger's output into the given file (append mode)
func (l *Logger) SetFile(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	fileEncoder := zapcore.NewConsoleEncoder(encoderConfig(false))
	core := zapcore.NewTee(consoleCore(), zapcore.NewCore(fileEncoder, zapcore.AddSync(f), level))

	l.mu.Lock()
	old := l.file
	l.file = f
	l.sugar.Store(zap.New(core).Named(l.name).Sugar())
	l.mu.Unlock()

	if old != nil {
		old.Close()
	}
	return nil
}

// InitializeFileLogging writes server and audit logs under dir
func InitializeFileLogging(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	if err := Server.SetFile(filepath.Join(dir, "server.log")); err != nil {
		return err
	}
	return Audit.SetFile(filepath.Join(dir, "audit.log"))
}

// Sync flushes buffered entries of the component loggers
func Sync() {
	for _, l := range []*Logger{Server, Client, Audit.Logger} {
		_ = l.sugar.Load().Sync()
	}
}

func (l *Logger) Debug(format string, args ...interface{}) {
	l.sugar.Load().Debugf(format, args...)
}

func (l *Logger) Info(format string, args ...interface{}) {
	l.sugar.Load().Infof(format, args...)
}

func (l *Logger) Warn(format string, args ...interface{}) {
	l.sugar.Load().Warnf(format, args...)
}

func (l *Logger) Error(format string, args ...interface{}) {
	l.sugar.Load().Errorf(format, args...)
}

// Fatal logs and exits the process
func (l *Logger) Fatal(format string, args ...interface{}) {
	l.sugar.Load().Fatalf(format, args...)
}

// ActionLog records one structured entry per dispatched command
type ActionLog struct {
	*Logger
}

// Record writes the action, the acting user, the raw input line and the response code
func (a *ActionLog) Record(action, username, rawInput string, code int) {
	a.sugar.Load().Desugar().Info("command",
		zap.String("action", action),
		zap.String("username", username),
		zap.String("input", rawInput),
		zap.Int("code", code),
	)
}

func consoleCore() zapcore.Core {
	return zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig(true)),
		zapcore.Lock(os.Stdout),
		level,
	)
}

func encoderConfig(colored bool) zapcore.EncoderConfig {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	cfg.CallerKey = ""
	if colored {
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	return cfg
}
