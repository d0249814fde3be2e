package config

import (
	"os"
	"path/filepath"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/pkg/errors"
)

type Configuration struct {
	// DefaultAlgorithm is used when no digest algorithm was selected.
	DefaultAlgorithm string `yaml:"default_algorithm" koanf:"default_algorithm"`
	// Workers bounds the hashing worker pool. 0 means one worker per CPU.
	Workers       int
	Filters       FilterConfiguration
	Notifications NotificationsConfig
}

type FilterConfiguration struct {
	// Ignore holds filter expressions; a file matching any of them is
	// dropped at scan time.
	Ignore []string
	// ExcludePaths holds glob patterns checked against the path and name.
	ExcludePaths []string `yaml:"exclude_paths" koanf:"exclude_paths"`
}

/* Vars */

var (
	Config *Configuration

	// Internals
	Delimiter = "."
	K         = koanf.New(Delimiter)
)

/* Public */

// Init loads the configuration, layering an optional YAML file over the
// built-in defaults. A missing file is not an error, the tool is fully
// usable from flags alone.
func Init(configFilePath string) error {
	if err := K.Load(confmap.Provider(map[string]interface{}{
		"default_algorithm": "MD5",
		"workers":           0,
	}, Delimiter), nil); err != nil {
		return errors.Wrap(err, "load defaults")
	}

	if _, err := os.Stat(configFilePath); err == nil {
		if err := K.Load(file.Provider(configFilePath), yaml.Parser()); err != nil {
			return errors.Wrapf(err, "load file: %s", configFilePath)
		}
	}

	if err := K.UnmarshalWithConf("", &Config, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return errors.Wrap(err, "unmarshal configuration")
	}

	if Config.Workers < 0 {
		return errors.Errorf("workers must not be negative: %d", Config.Workers)
	}

	return nil
}

// GetDefaultConfigDirectory returns the folder the config file is looked up
// in. A config file in the working directory takes priority over the user
// config directory.
func GetDefaultConfigDirectory(appName string, configFile string) string {
	if _, err := os.Stat(configFile); err == nil {
		if cwd, err := os.Getwd(); err == nil {
			return cwd
		}
	}

	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, appName)
	}

	return "."
}
