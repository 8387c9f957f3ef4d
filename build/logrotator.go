package build

import (
	"compress/gzip"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jrick/logrotate/rotator"
	"github.com/klauspost/compress/zstd"
)

const (
	// Gzip compresses rolled log files with compress/gzip. It is the
	// default.
	Gzip = "gzip"

	// Zstd compresses rolled log files with zstandard.
	Zstd = "zstd"
)

// compressorSuffix maps each supported compressor name to the extension
// appended to the files it produces.
var compressorSuffix = map[string]string{
	Gzip: "gz",
	Zstd: "zst",
}

// SupportedLogCompressor reports whether name is a known compressor.
func SupportedLogCompressor(name string) bool {
	_, ok := compressorSuffix[name]
	return ok
}

// newCompressor returns a fresh rotator.Compressor for name.
func newCompressor(name string) (rotator.Compressor, error) {
	switch name {
	case Gzip:
		return gzip.NewWriter(nil), nil

	case Zstd:
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, fmt.Errorf("zstd encoder: %w", err)
		}

		return enc, nil

	default:
		return nil, fmt.Errorf("unknown log compressor: %v", name)
	}
}

// RotatingLogWriter is an io.WriteCloser backed by a size based file
// rotator. Until InitLogRotator succeeds every write is discarded.
type RotatingLogWriter struct {
	mu      sync.Mutex
	rotator *rotator.Rotator
}

// NewRotatingLogWriter returns a writer that discards output until
// InitLogRotator is called.
func NewRotatingLogWriter() *RotatingLogWriter {
	return &RotatingLogWriter{}
}

// InitLogRotator opens logFile, creating its directory if needed, and rolls
// it over according to cfg. Close must be called on shutdown.
func (r *RotatingLogWriter) InitLogRotator(cfg *FileLoggerConfig,
	logFile string) error {

	// Check the compressor first so a bad config leaves no file behind.
	compressor, err := newCompressor(cfg.Compressor)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(logFile), 0700); err != nil {
		return fmt.Errorf("unable to create log directory: %w", err)
	}

	thresholdKB := int64(cfg.MaxLogFileSize) * 1024
	rot, err := rotator.New(logFile, thresholdKB, false, cfg.MaxLogFiles)
	if err != nil {
		return fmt.Errorf("unable to open log rotator: %w", err)
	}
	rot.SetCompressor(compressor, compressorSuffix[cfg.Compressor])

	r.mu.Lock()
	r.rotator = rot
	r.mu.Unlock()

	return nil
}

// Write appends b to the current log file.
func (r *RotatingLogWriter) Write(b []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.rotator == nil {
		return len(b), nil
	}

	return r.rotator.Write(b)
}

// Close flushes and closes the log file. Later writes are discarded.
func (r *RotatingLogWriter) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.rotator == nil {
		return nil
	}

	err := r.rotator.Close()
	r.rotator = nil

	return err
}
