package walletcore

import (
	"github.com/btcsuite/btclog/v2"
	"github.com/coinforge/walletcore/async"
	"github.com/coinforge/walletcore/build"
	"github.com/coinforge/walletcore/keychain"
	"github.com/coinforge/walletcore/monitoring"
	"github.com/coinforge/walletcore/preferences"
	"github.com/coinforge/walletcore/ttlcache"
)

// Subsystem defines the logging code for the engine.
const Subsystem = "WLTC"

// log is the engine logger. It is replaced by SetupLoggers.
var log btclog.Logger

func init() {
	UseLogger(build.NewSubLogger(Subsystem, nil))
}

// DisableLog disables all engine logging output.
func DisableLog() {
	UseLogger(btclog.Disabled)
}

// UseLogger uses a specified Logger to output engine logging info.
func UseLogger(logger btclog.Logger) {
	log = logger
}

// genSubLogger creates a logger for a subsystem of the root manager.
func genSubLogger(root *build.SubLoggerManager) func(string) btclog.Logger {
	return func(tag string) btclog.Logger {
		return root.GenSubLogger(tag, nil)
	}
}

// SetupLoggers initializes all package-global logger variables.
func SetupLoggers(root *build.SubLoggerManager) {
	AddSubLogger(root, Subsystem, UseLogger)
	AddSubLogger(root, async.Subsystem, async.UseLogger)
	AddSubLogger(root, preferences.Subsystem, preferences.UseLogger)
	AddSubLogger(root, ttlcache.Subsystem, ttlcache.UseLogger)
	AddSubLogger(root, keychain.Subsystem, keychain.UseLogger)
	AddSubLogger(root, monitoring.Subsystem, monitoring.UseLogger)
}

// AddSubLogger is a helper method to conveniently create and register the
// logger of one or more sub systems.
func AddSubLogger(root *build.SubLoggerManager, subsystem string,
	useLoggers ...func(btclog.Logger)) {

	logger := build.NewSubLogger(subsystem, genSubLogger(root))
	SetSubLogger(root, subsystem, logger, useLoggers...)
}

// SetSubLogger is a helper method to conveniently register the logger of a
// sub system.
func SetSubLogger(root *build.SubLoggerManager, subsystem string,
	logger btclog.Logger, useLoggers ...func(btclog.Logger)) {

	root.RegisterSubLogger(subsystem, logger)
	for _, useLogger := range useLoggers {
		useLogger(logger)
	}
}
