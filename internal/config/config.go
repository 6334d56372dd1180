// Package config loads and saves garmin-go's JSON configuration file: the
// local directory layout, default report time zone, database path, and the
// remote object-store bucket/endpoint.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Config is garmin-go's top-level configuration.
type Config struct {
	Directories DirectoriesConfig `json:"directories"`
	Database    DatabaseConfig    `json:"database"`
	ObjectStore ObjectStoreConfig `json:"object_store"`
	Report      ReportConfig      `json:"report"`
}

// DirectoriesConfig names the local filesystem layout: where GPS/telemetry
// files, the Fitbit cache and heart-rate archive, and the correction file
// live.
type DirectoriesConfig struct {
	GPSDir           string `json:"gps_dir"`
	CacheDir         string `json:"cache_dir"`
	FitbitCacheDir   string `json:"fitbit_cachedir"`
	FitbitArchiveDir string `json:"fitbit_archivedir"`
	CorrectionFile   string `json:"correction_file"`
}

// DatabaseConfig holds the SQLite database path.
type DatabaseConfig struct {
	Path string `json:"path"`
}

// ObjectStoreConfig holds the remote bucket this instance syncs against.
type ObjectStoreConfig struct {
	Bucket   string `json:"bucket"`
	Region   string `json:"region"`
	Endpoint string `json:"endpoint"` // empty uses AWS's default resolution
}

// ReportConfig holds display/report preferences.
type ReportConfig struct {
	// DefaultTimeZone is an IANA zone name (e.g. "America/New_York") used
	// to bin reports by localtime; month archives always bin by UTC date
	// regardless of this setting.
	DefaultTimeZone string `json:"default_time_zone"`
	DistanceUnit    string `json:"distance_unit"`
}

// ErrNoConfig is returned when the config file doesn't exist.
var ErrNoConfig = errors.New("config file not found")

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{
		Directories: DirectoriesConfig{
			GPSDir:           filepath.Join(home, ".garmin-go", "gps"),
			CacheDir:         filepath.Join(home, ".garmin-go", "cache"),
			FitbitCacheDir:   filepath.Join(home, ".garmin-go", "fitbit_cache"),
			FitbitArchiveDir: filepath.Join(home, ".garmin-go", "fitbit_archive"),
			CorrectionFile:   filepath.Join(home, ".garmin-go", "corrections.json"),
		},
		Database: DatabaseConfig{
			Path: filepath.Join(home, ".garmin-go", "data.db"),
		},
		Report: ReportConfig{
			DefaultTimeZone: "UTC",
			DistanceUnit:    "mi",
		},
	}
}

// Load reads the configuration from ~/.garmin-go/config.json, back-filling
// zero-valued fields with defaults.
func Load() (*Config, error) {
	path, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, ErrNoConfig
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	defaults := DefaultConfig()
	if cfg.Directories.GPSDir == "" {
		cfg.Directories.GPSDir = defaults.Directories.GPSDir
	}
	if cfg.Directories.CacheDir == "" {
		cfg.Directories.CacheDir = defaults.Directories.CacheDir
	}
	if cfg.Directories.FitbitCacheDir == "" {
		cfg.Directories.FitbitCacheDir = defaults.Directories.FitbitCacheDir
	}
	if cfg.Directories.FitbitArchiveDir == "" {
		cfg.Directories.FitbitArchiveDir = defaults.Directories.FitbitArchiveDir
	}
	if cfg.Directories.CorrectionFile == "" {
		cfg.Directories.CorrectionFile = defaults.Directories.CorrectionFile
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = defaults.Database.Path
	}
	if cfg.Report.DefaultTimeZone == "" {
		cfg.Report.DefaultTimeZone = defaults.Report.DefaultTimeZone
	}
	if cfg.Report.DistanceUnit == "" {
		cfg.Report.DistanceUnit = defaults.Report.DistanceUnit
	}

	return &cfg, nil
}

// Save writes the configuration to ~/.garmin-go/config.json.
func Save(cfg *Config) error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// CreateExample creates an example config file if none exists.
func CreateExample() error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(path); err == nil {
		return nil // config exists, don't overwrite
	}

	example := DefaultConfig()
	example.ObjectStore = ObjectStoreConfig{
		Bucket: "YOUR_BUCKET_NAME",
		Region: "us-east-1",
	}
	return Save(&example)
}

// Validate checks that the config has the fields needed to run.
func (c *Config) Validate() error {
	if c.Directories.GPSDir == "" {
		return errors.New("directories.gps_dir is required")
	}
	if c.Database.Path == "" {
		return errors.New("database.path is required")
	}
	if c.ObjectStore.Bucket == "" || c.ObjectStore.Bucket == "YOUR_BUCKET_NAME" {
		return errors.New("object_store.bucket is required - set it to your S3 bucket name")
	}
	return nil
}

// getConfigPath returns the path to the config file.
func getConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".garmin-go", "config.json"), nil
}

// GetConfigDir returns the path to the config directory.
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".garmin-go"), nil
}
