package build

import (
	"context"

	"github.com/btcsuite/btclog/v2"
)

// ShutdownLogger is a btclog.Logger whose critical level also asks the
// application to stop. Every other level is forwarded untouched.
type ShutdownLogger struct {
	btclog.Logger

	requestShutdown func()
}

// NewShutdownLogger returns logger wrapped so that any critical line invokes
// requestShutdown after it has been written.
func NewShutdownLogger(logger btclog.Logger,
	requestShutdown func()) *ShutdownLogger {

	return &ShutdownLogger{
		Logger:          logger,
		requestShutdown: requestShutdown,
	}
}

// stop records that a shutdown was requested and triggers it.
func (s *ShutdownLogger) stop() {
	s.Logger.Info("Critical error logged, requesting shutdown")
	s.requestShutdown()
}

// Criticalf logs a formatted critical line and then requests shutdown.
//
// NOTE: part of the btclog.Logger interface.
func (s *ShutdownLogger) Criticalf(format string, params ...any) {
	s.Logger.Criticalf(format, params...)
	s.stop()
}

// Critical logs a critical line and then requests shutdown.
//
// NOTE: part of the btclog.Logger interface.
func (s *ShutdownLogger) Critical(v ...any) {
	s.Logger.Critical(v...)
	s.stop()
}

// CriticalS logs a structured critical line and then requests shutdown.
//
// NOTE: part of the btclog.Logger interface.
func (s *ShutdownLogger) CriticalS(ctx context.Context, msg string, err error,
	attr ...any) {

	s.Logger.CriticalS(ctx, msg, err, attr...)
	s.stop()
}
