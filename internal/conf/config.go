// Package conf holds application settings loaded from the configuration
// file, environment variables and command-line flags via viper.
package conf

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
)

// LogConfig defines the configuration for a log file
type LogConfig struct {
	Enabled bool   // true to enable this log
	Path    string // path to log file
}

// MainSettings contains general application settings
type MainSettings struct {
	Name string    // name of the node
	Log  LogConfig // main log configuration
}

// TaxonomySettings controls the species catalog and name resolver
type TaxonomySettings struct {
	Path          string  // path to a taxonomy CSV, empty uses the embedded dataset
	RemoteURL     string  // optional URL to refresh the taxonomy dataset from
	CacheTTLHours int     // remote dataset cache TTL in hours
	FuzzyMinRatio float64 // fuzzy matcher token-coverage threshold
}

// SQLiteSettings contains SQLite database configuration
type SQLiteSettings struct {
	Enabled bool
	Path    string // path to the SQLite database file
}

// MySQLSettings contains MySQL database configuration
type MySQLSettings struct {
	Enabled  bool
	Username string
	Password string
	Database string
	Host     string
	Port     string
}

// OutputSettings selects the persistence backend
type OutputSettings struct {
	SQLite SQLiteSettings
	MySQL  MySQLSettings
}

// WebServerSettings contains HTTP API server configuration
type WebServerSettings struct {
	Enabled bool
	Port    string
	Log     LogConfig
}

// Settings is the root configuration structure
type Settings struct {
	Debug bool // true to enable debug logging

	Main      MainSettings
	Taxonomy  TaxonomySettings
	Output    OutputSettings
	WebServer WebServerSettings
}

var (
	settingsInstance *Settings
	settingsMutex    sync.RWMutex
)

// Load reads the configuration file and environment variables into Settings.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// initViper initializes viper with default values and reads the configuration file.
func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	setDefaultConfig()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			// No config file is fine, defaults apply.
			return nil
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}
	return nil
}

// GetDefaultConfigPaths returns the list of directories searched for the
// configuration file, most specific first.
func GetDefaultConfigPaths() ([]string, error) {
	var paths []string

	paths = append(paths, ".")

	if homeDir, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(homeDir, ".config", "birddex"))
	}

	paths = append(paths, "/etc/birddex")
	return paths, nil
}

// GetSettings returns the current settings instance, or nil before Load.
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// Setting is a shorthand for GetSettings.
func Setting() *Settings {
	return GetSettings()
}
