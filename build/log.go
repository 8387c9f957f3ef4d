package build

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/btcsuite/btclog/v2"
)

// LogType is the logging mode selected by build tags.
type LogType byte

const (
	// LogTypeNone discards all log output.
	LogTypeNone LogType = iota

	// LogTypeStdOut sends every subsystem straight to stdout.
	LogTypeStdOut

	// LogTypeDefault defers to the handlers the application installs.
	LogTypeDefault
)

// String returns the name of the logging mode.
func (t LogType) String() string {
	switch t {
	case LogTypeNone:
		return "none"
	case LogTypeStdOut:
		return "stdout"
	case LogTypeDefault:
		return "default"
	}

	return "unknown"
}

// stdoutLogger returns a logger for subsystem that writes to stdout at the
// build's LogLevel.
func stdoutLogger(subsystem string) btclog.Logger {
	handler := btclog.NewDefaultHandler(os.Stdout)
	logger := btclog.NewSLogger(handler.SubSystem(subsystem))

	level, _ := btclog.LevelFromString(LogLevel)
	logger.SetLevel(level)

	return logger
}

// NewSubLogger returns the package level logger for subsystem. Packages call
// it from init; the application replaces the result through UseLogger once
// its handlers exist. A nil gen yields a disabled logger unless this is a
// development build tagged stdlog.
func NewSubLogger(subsystem string,
	gen func(string) btclog.Logger) btclog.Logger {

	useDefault := Deployment == Production ||
		LoggingType == LogTypeDefault

	switch {
	case useDefault && gen != nil:
		return gen(subsystem)

	case Deployment == Development && LoggingType == LogTypeStdOut:
		return stdoutLogger(subsystem)
	}

	return btclog.Disabled
}

// SubLoggers maps subsystem tags to their loggers.
type SubLoggers map[string]btclog.Logger

// LeveledSubLogger exposes a set of subsystem loggers whose levels can be
// changed individually or all together.
type LeveledSubLogger interface {
	// SubLoggers returns every registered logger by subsystem.
	SubLoggers() SubLoggers

	// SupportedSubsystems returns the registered subsystem tags sorted.
	SupportedSubsystems() []string

	// SetLogLevel changes the level of one subsystem.
	SetLogLevel(subsystemID string, logLevel string)

	// SetLogLevels changes the level of every subsystem.
	SetLogLevels(logLevel string)
}

// SubLoggerManager hands out subsystem loggers that share one set of
// handlers, and keeps track of them for runtime level changes.
type SubLoggerManager struct {
	handler btclog.Handler

	mu      sync.Mutex
	loggers SubLoggers
}

var _ LeveledSubLogger = (*SubLoggerManager)(nil)

// NewSubLoggerManager returns a manager whose loggers write to all of
// handlers.
func NewSubLoggerManager(handlers ...btclog.Handler) *SubLoggerManager {
	return &SubLoggerManager{
		handler: NewHandlerSet(btclog.LevelInfo, handlers...),
		loggers: make(SubLoggers),
	}
}

// GenSubLogger creates and registers a logger tagged with subsystem. A
// non-nil shutdown is called after every critical line.
func (r *SubLoggerManager) GenSubLogger(subsystem string,
	shutdown func()) btclog.Logger {

	var logger btclog.Logger
	logger = btclog.NewSLogger(r.handler.SubSystem(subsystem))
	if shutdown != nil {
		logger = NewShutdownLogger(logger, shutdown)
	}

	r.RegisterSubLogger(subsystem, logger)

	return logger
}

// RegisterSubLogger tracks logger under subsystem, replacing any previous
// entry.
func (r *SubLoggerManager) RegisterSubLogger(subsystem string,
	logger btclog.Logger) {

	r.mu.Lock()
	r.loggers[subsystem] = logger
	r.mu.Unlock()
}

// SubLoggers returns a snapshot of the registered loggers.
func (r *SubLoggerManager) SubLoggers() SubLoggers {
	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot := make(SubLoggers, len(r.loggers))
	for tag, logger := range r.loggers {
		snapshot[tag] = logger
	}

	return snapshot
}

// SupportedSubsystems returns the registered tags in sorted order.
func (r *SubLoggerManager) SupportedSubsystems() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	tags := make([]string, 0, len(r.loggers))
	for tag := range r.loggers {
		tags = append(tags, tag)
	}
	slices.Sort(tags)

	return tags
}

// SetLogLevel changes the level of one subsystem. Unknown subsystems and
// unparsable levels fall back to doing nothing and info respectively.
func (r *SubLoggerManager) SetLogLevel(subsystemID string, logLevel string) {
	level, _ := btclog.LevelFromString(logLevel)

	r.mu.Lock()
	defer r.mu.Unlock()

	if logger, ok := r.loggers[subsystemID]; ok {
		logger.SetLevel(level)
	}
}

// SetLogLevels changes the level of every registered subsystem.
func (r *SubLoggerManager) SetLogLevels(logLevel string) {
	level, _ := btclog.LevelFromString(logLevel)

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, logger := range r.loggers {
		logger.SetLevel(level)
	}
}

// validLogLevels lists the level names accepted on the command line.
var validLogLevels = []string{
	"trace", "debug", "info", "warn", "error", "critical", "off",
}

// ParseAndSetDebugLevels applies a debug level string to logger. The string
// is either a single level for every subsystem, or a comma separated list of
// SUBSYS=level pairs optionally led by a global level.
func ParseAndSetDebugLevels(level string, logger LeveledSubLogger) error {
	entries := strings.Split(level, ",")

	if global := entries[0]; !strings.Contains(global, "=") {
		if !slices.Contains(validLogLevels, global) {
			return fmt.Errorf("invalid debug level %q", global)
		}

		logger.SetLogLevels(global)
		entries = entries[1:]
	}

	known := logger.SubLoggers()
	for _, entry := range entries {
		subsystem, lvl, ok := strings.Cut(entry, "=")
		if !ok || strings.Contains(lvl, "=") {
			return fmt.Errorf("malformed debug level %q, expected "+
				"SUBSYS=level", entry)
		}

		if _, ok := known[subsystem]; !ok {
			return fmt.Errorf("unknown subsystem %q, supported "+
				"subsystems are %v", subsystem,
				logger.SupportedSubsystems())
		}

		if !slices.Contains(validLogLevels, lvl) {
			return fmt.Errorf("invalid debug level %q for %s", lvl,
				subsystem)
		}

		logger.SetLogLevel(subsystem, lvl)
	}

	return nil
}
