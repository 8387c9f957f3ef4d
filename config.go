package walletcore

import (
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/coinforge/walletcore/build"
	"github.com/coinforge/walletcore/monitoring"
	flags "github.com/jessevdk/go-flags"
)

const (
	defaultConfigFilename = "walletcore.conf"
	defaultDataDirname    = "data"
	defaultLogDirname     = "logs"
	defaultLogFilename    = "walletcore.log"
	defaultPrefsDirname   = "prefs"
	defaultDebugLevel     = "info"
	defaultNetwork        = "mainnet"

	// DefaultWorkers is the default size of the engine's thread pool.
	DefaultWorkers = 4

	// DefaultCacheTTL is how long derived master keys stay cached.
	DefaultCacheTTL = 5 * time.Minute
)

var (
	// DefaultHomeDir is the default directory holding all walletcore
	// files.
	DefaultHomeDir = btcutil.AppDataDir("walletcore", false)

	// DefaultConfigFile is the default path of the config file.
	DefaultConfigFile = filepath.Join(DefaultHomeDir, defaultConfigFilename)

	defaultDataDir = filepath.Join(DefaultHomeDir, defaultDataDirname)
	defaultLogDir  = filepath.Join(DefaultHomeDir, defaultLogDirname)
)

// PrefsConfig holds the preference store options.
//
//nolint:lll
type PrefsConfig struct {
	Encrypt  bool   `long:"encrypt" description:"Encrypt preference values at rest"`
	Password string `long:"password" description:"Password used to encrypt preference values"`
}

// CacheConfig holds the key cache options.
type CacheConfig struct {
	TTL time.Duration `long:"ttl" description:"How long derived master keys are cached"`
}

// Config defines the configuration options for walletcore.
//
// See LoadConfig for further details regarding the configuration loading and
// parsing process.
//
//nolint:lll
type Config struct {
	HomeDir    string `long:"homedir" description:"The base directory that contains walletcore's data, logs, configuration file, etc."`
	ConfigFile string `short:"C" long:"configfile" description:"Path to configuration file"`
	DataDir    string `short:"b" long:"datadir" description:"The directory to store walletcore's data within"`
	LogDir     string `long:"logdir" description:"Directory to log output."`

	DebugLevel string `short:"d" long:"debuglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical} -- You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems"`

	Network string `long:"network" description:"The network derived keys and addresses are for" choice:"mainnet" choice:"testnet" choice:"regtest" choice:"simnet"`

	Workers int `long:"workers" description:"Number of goroutines in the engine's thread pool"`

	Prefs *PrefsConfig `group:"prefs" namespace:"prefs"`

	Cache *CacheConfig `group:"cache" namespace:"cache"`

	Prometheus *monitoring.Config `group:"prometheus" namespace:"prometheus"`

	LogConfig *build.LogConfig `group:"logging" namespace:"logging"`

	// LogRotator is the rotating file writer. It is set up by
	// ValidateConfig unless file logging is disabled.
	LogRotator *build.RotatingLogWriter `no-flag:"true"`

	// SubLogMgr is the root logger manager all subsystems are registered
	// with.
	SubLogMgr *build.SubLoggerManager `no-flag:"true"`

	// ActiveNetParams are the parameters of the selected network.
	ActiveNetParams *chaincfg.Params `no-flag:"true"`
}

// DefaultConfig returns all default values for the Config struct.
func DefaultConfig() Config {
	return Config{
		HomeDir:    DefaultHomeDir,
		ConfigFile: DefaultConfigFile,
		DataDir:    defaultDataDir,
		LogDir:     defaultLogDir,
		DebugLevel: defaultDebugLevel,
		Network:    defaultNetwork,
		Workers:    DefaultWorkers,
		Prefs:      &PrefsConfig{},
		Cache: &CacheConfig{
			TTL: DefaultCacheTTL,
		},
		Prometheus: &monitoring.Config{
			Listen: monitoring.DefaultListen,
		},
		LogConfig:  build.DefaultLogConfig(),
		LogRotator: build.NewRotatingLogWriter(),
	}
}

// LoadConfig initializes and parses the config using a config file and the
// given command line arguments.
//
// The configuration proceeds as follows:
//  1. Start with a default config with sane settings
//  2. Pre-parse the command line to check for an alternative config file
//  3. Load configuration file overwriting defaults with any specified options
//  4. Parse CLI options and overwrite/add any specified options
func LoadConfig(args []string) (*Config, error) {
	// Pre-parse the command line options to pick up an alternative config
	// file.
	preCfg := DefaultConfig()
	if _, err := flags.NewParser(&preCfg, flags.Default).ParseArgs(
		args,
	); err != nil {
		return nil, err
	}

	// If the config file path has not been modified by the user, but the
	// home directory has, we assume the config file lives in the new home
	// directory.
	homeDir := CleanAndExpandPath(preCfg.HomeDir)
	configFilePath := CleanAndExpandPath(preCfg.ConfigFile)
	if homeDir != DefaultHomeDir && configFilePath == DefaultConfigFile {
		configFilePath = filepath.Join(homeDir, defaultConfigFilename)
	}

	// Next, load any additional configuration options from the file.
	var configFileError error
	cfg := preCfg
	if err := flags.IniParse(configFilePath, &cfg); err != nil {
		// A parsing error is fatal, a missing file is not.
		var iniErr *flags.IniError
		if errors.As(err, &iniErr) {
			return nil, err
		}

		configFileError = err
	}

	// Finally, parse the command line options again to ensure they take
	// precedence.
	if _, err := flags.NewParser(&cfg, flags.Default).ParseArgs(
		args,
	); err != nil {
		return nil, err
	}

	cleanCfg, err := ValidateConfig(cfg)
	if err != nil {
		return nil, err
	}

	// Warn about a missing config file only once logging is set up.
	if configFileError != nil {
		log.Debugf("No config file loaded: %v", configFileError)
	}

	return cleanCfg, nil
}

// ValidateConfig checks the given configuration to be sane, normalizes all
// file system paths and sets up logging. The cleaned up config is returned on
// success.
func ValidateConfig(cfg Config) (*Config, error) {
	// If the home directory is not the default, the data and log
	// directories move with it.
	homeDir := CleanAndExpandPath(cfg.HomeDir)
	if homeDir != DefaultHomeDir {
		if cfg.DataDir == defaultDataDir {
			cfg.DataDir = filepath.Join(homeDir, defaultDataDirname)
		}
		if cfg.LogDir == defaultLogDir {
			cfg.LogDir = filepath.Join(homeDir, defaultLogDirname)
		}
	}
	cfg.HomeDir = homeDir
	cfg.DataDir = CleanAndExpandPath(cfg.DataDir)
	cfg.LogDir = CleanAndExpandPath(cfg.LogDir)
	cfg.ConfigFile = CleanAndExpandPath(cfg.ConfigFile)

	if cfg.Workers <= 0 {
		return nil, fmt.Errorf("workers must be positive, got %d",
			cfg.Workers)
	}

	if cfg.Cache.TTL <= 0 {
		return nil, fmt.Errorf("cache.ttl must be positive, got %v",
			cfg.Cache.TTL)
	}

	if cfg.Prefs.Encrypt && cfg.Prefs.Password == "" {
		return nil, errors.New("prefs.encrypt requires prefs.password")
	}

	params, err := netParams(cfg.Network)
	if err != nil {
		return nil, err
	}
	cfg.ActiveNetParams = params

	if err := cfg.LogConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid logging config: %w", err)
	}

	// Initialize the log rotator only if file logging is enabled.
	if cfg.LogRotator == nil {
		cfg.LogRotator = build.NewRotatingLogWriter()
	}
	if !cfg.LogConfig.File.Disable {
		err := cfg.LogRotator.InitLogRotator(
			cfg.LogConfig.File,
			filepath.Join(cfg.LogDir, defaultLogFilename),
		)
		if err != nil {
			return nil, fmt.Errorf("unable to initialize log "+
				"rotator: %w", err)
		}
	}

	cfg.SubLogMgr = build.NewSubLoggerManager(
		build.NewDefaultLogHandlers(cfg.LogConfig, cfg.LogRotator)...,
	)
	SetupLoggers(cfg.SubLogMgr)

	// Parse, validate, and set debug log level(s).
	err = build.ParseAndSetDebugLevels(cfg.DebugLevel, cfg.SubLogMgr)
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}

// PrefsDir returns the directory holding the preference stores.
func (c *Config) PrefsDir() string {
	return filepath.Join(c.DataDir, defaultPrefsDirname)
}

// netParams maps a network name to its chain parameters.
func netParams(network string) (*chaincfg.Params, error) {
	switch network {
	case "", "mainnet":
		return &chaincfg.MainNetParams, nil
	case "testnet":
		return &chaincfg.TestNet3Params, nil
	case "regtest":
		return &chaincfg.RegressionNetParams, nil
	case "simnet":
		return &chaincfg.SimNetParams, nil
	}

	return nil, fmt.Errorf("unknown network %q", network)
}

// CleanAndExpandPath expands environment variables and leading ~ in the
// passed path, cleans the result, and returns it.
// This function is taken from https://github.com/btcsuite/btcd
func CleanAndExpandPath(path string) string {
	if path == "" {
		return ""
	}

	// Expand initial ~ to OS specific home directory.
	if strings.HasPrefix(path, "~") {
		var homeDir string
		u, err := user.Current()
		if err == nil {
			homeDir = u.HomeDir
		} else {
			homeDir = os.Getenv("HOME")
		}

		path = strings.Replace(path, "~", homeDir, 1)
	}

	// NOTE: The os.ExpandEnv doesn't work with Windows-style %VARIABLE%,
	// but the variables can still be expanded via POSIX-style $VARIABLE.
	return filepath.Clean(os.ExpandEnv(path))
}
