package build

import (
	"fmt"
	"os"

	"github.com/btcsuite/btclog/v2"
)

const (
	callSiteOff   = "off"
	callSiteShort = "short"
	callSiteLong  = "long"

	// DefaultMaxLogFiles is how many rolled log files are kept.
	DefaultMaxLogFiles = 10

	// DefaultMaxLogFileSize is the size in MB at which the log rolls over.
	DefaultMaxLogFileSize = 20

	// handlerSkipDepth accounts for the extra frame added by handlerSet
	// when resolving call sites.
	handlerSkipDepth = 7
)

// LoggerConfig carries the options shared by every log destination.
//
//nolint:lll
type LoggerConfig struct {
	Disable      bool   `long:"disable" description:"Turn this log destination off."`
	NoTimestamps bool   `long:"no-timestamps" description:"Leave timestamps out of log lines."`
	CallSite     string `long:"call-site" description:"Annotate log lines with the calling source location." choice:"off" choice:"short" choice:"long"`
}

// HandlerOptions translates the config into btclog handler options.
func (cfg *LoggerConfig) HandlerOptions() []btclog.HandlerOption {
	opts := []btclog.HandlerOption{
		btclog.WithCallSiteSkipDepth(handlerSkipDepth),
	}

	if cfg.NoTimestamps {
		opts = append(opts, btclog.WithNoTimestamp())
	}

	switch cfg.CallSite {
	case callSiteShort:
		opts = append(opts, btclog.WithCallerFlags(btclog.Lshortfile))

	case callSiteLong:
		opts = append(opts, btclog.WithCallerFlags(btclog.Llongfile))
	}

	return opts
}

// ConsoleLoggerConfig adds terminal styling to LoggerConfig.
//
//nolint:lll
type ConsoleLoggerConfig struct {
	LoggerConfig
	Style bool `long:"style" description:"Colour and emphasise console output."`
}

// HandlerOptions returns the shared options plus styling if requested.
func (cfg *ConsoleLoggerConfig) HandlerOptions() []btclog.HandlerOption {
	opts := cfg.LoggerConfig.HandlerOptions()
	if cfg.Style {
		opts = append(opts, btclog.WithStyledOutput())
	}

	return opts
}

// FileLoggerConfig adds rotation settings to LoggerConfig.
//
//nolint:lll
type FileLoggerConfig struct {
	LoggerConfig
	Compressor     string `long:"compressor" description:"Algorithm used to compress rolled log files." choice:"gzip" choice:"zstd"`
	MaxLogFiles    int    `long:"max-files" description:"Number of rolled log files to keep (0 disables rolling)."`
	MaxLogFileSize int    `long:"max-file-size" description:"Size in MB at which the log file is rolled."`
}

// LogConfig groups the console and file destinations.
//
//nolint:lll
type LogConfig struct {
	Console *ConsoleLoggerConfig `group:"console" namespace:"console" description:"Log output written to stdout."`
	File    *FileLoggerConfig    `group:"file" namespace:"file" description:"Log output written to the rotating log file."`
}

// DefaultLogConfig returns a config with both destinations enabled, gzip
// rotation and no call sites.
func DefaultLogConfig() *LogConfig {
	return &LogConfig{
		Console: &ConsoleLoggerConfig{
			LoggerConfig: LoggerConfig{CallSite: callSiteOff},
		},
		File: &FileLoggerConfig{
			LoggerConfig:   LoggerConfig{CallSite: callSiteOff},
			Compressor:     Gzip,
			MaxLogFiles:    DefaultMaxLogFiles,
			MaxLogFileSize: DefaultMaxLogFileSize,
		},
	}
}

// Validate rejects settings the rotator cannot honour.
func (c *LogConfig) Validate() error {
	switch {
	case c.File.MaxLogFiles < 0:
		return fmt.Errorf("log.file.max-files may not be negative, "+
			"got %d", c.File.MaxLogFiles)

	case c.File.MaxLogFileSize < 0:
		return fmt.Errorf("log.file.max-file-size may not be "+
			"negative, got %d", c.File.MaxLogFileSize)

	case !SupportedLogCompressor(c.File.Compressor):
		return fmt.Errorf("unsupported log compressor %q",
			c.File.Compressor)
	}

	return nil
}

// NewDefaultLogHandlers builds a handler for each enabled destination. The
// file handler is skipped when rotator is nil.
func NewDefaultLogHandlers(cfg *LogConfig,
	rotator *RotatingLogWriter) []btclog.Handler {

	var handlers []btclog.Handler
	if !cfg.Console.Disable {
		handlers = append(handlers, btclog.NewDefaultHandler(
			os.Stdout, cfg.Console.HandlerOptions()...,
		))
	}
	if !cfg.File.Disable && rotator != nil {
		handlers = append(handlers, btclog.NewDefaultHandler(
			rotator, cfg.File.HandlerOptions()...,
		))
	}

	return handlers
}
