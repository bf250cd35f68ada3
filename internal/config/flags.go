package config

import (
	"flag"
	"time"
)

var (
	flagConfig     = flag.String("config", "", "Path to config file (.yaml or .toml)")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagDir        = flag.String("dir", "", "Room package directory")
	flagCompletion = flag.String("completion", "", "Sub-mesh completion mode: faces or object")
	flagNoLayers   = flag.Bool("no-layers", false, "Skip decoding photo layers")
	flagDebounce   = flag.Duration("debounce", 0, "Watch debounce interval")
	flagLogFile    = flag.String("log-file", "", "Write logs to this file as well")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the non-flag command-line arguments.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagDir != "" {
		cfg.Package.Dir = *flagDir
	}
	if *flagCompletion != "" {
		cfg.Decode.Completion = *flagCompletion
	}
	if *flagNoLayers {
		cfg.Decode.SkipLayers = true
	}
	if *flagDebounce > time.Duration(0) {
		cfg.Watch.Debounce = Duration(*flagDebounce)
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
}
