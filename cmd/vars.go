package cmd

import (
	"path/filepath"

	"github.com/c0xc/dupefinder/pkg/config"
	"github.com/c0xc/dupefinder/pkg/logger"
	"github.com/c0xc/dupefinder/pkg/runtime"
)

var (
	// Global flags
	FlagLogLevel     = 0
	FlagConfigFile   = "config.yaml"
	FlagConfigFolder = config.GetDefaultConfigDirectory("dupefinder", "config.yaml")
	FlagLogFile      = "dupefinder.log"

	FlagDryRun bool

	// Global vars
	initialized bool
)

// initCore wires up logging and configuration, commands call it once at
// the start of their Run.
func initCore(showAppInfo bool) {
	configFilePath := filepath.Join(FlagConfigFolder, FlagConfigFile)
	logFilePath := filepath.Join(FlagConfigFolder, FlagLogFile)

	// init logging
	if err := logger.Init(FlagLogLevel, logFilePath); err != nil {
		logger.GetLogger("app").WithError(err).Fatal("Failed initializing logger")
	}

	log := logger.GetLogger("app")

	if showAppInfo {
		log.Infof("Starting dupefinder %s (%s@%s)", runtime.Version, runtime.GitCommit, runtime.Timestamp)
	}

	// init config
	if err := config.Init(configFilePath); err != nil {
		log.WithError(err).Fatalf("Failed loading configuration: %q", configFilePath)
	}
}
