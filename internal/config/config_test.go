package config

import "testing"

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Report.DefaultTimeZone != "UTC" {
		t.Errorf("Report.DefaultTimeZone = %q, want %q", cfg.Report.DefaultTimeZone, "UTC")
	}
	if cfg.Report.DistanceUnit != "mi" {
		t.Errorf("Report.DistanceUnit = %q, want %q", cfg.Report.DistanceUnit, "mi")
	}
	if cfg.Directories.GPSDir == "" {
		t.Error("Directories.GPSDir should not be empty")
	}
	if cfg.Database.Path == "" {
		t.Error("Database.Path should not be empty")
	}
	if cfg.ObjectStore.Bucket != "" {
		t.Errorf("ObjectStore.Bucket should be empty by default, got %q", cfg.ObjectStore.Bucket)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		expectError bool
	}{
		{
			name: "valid config",
			config: Config{
				Directories: DirectoriesConfig{GPSDir: "/data/gps"},
				Database:    DatabaseConfig{Path: "/data/db.sqlite"},
				ObjectStore: ObjectStoreConfig{Bucket: "my-bucket"},
			},
			expectError: false,
		},
		{
			name: "missing gps_dir",
			config: Config{
				Database:    DatabaseConfig{Path: "/data/db.sqlite"},
				ObjectStore: ObjectStoreConfig{Bucket: "my-bucket"},
			},
			expectError: true,
		},
		{
			name: "missing bucket",
			config: Config{
				Directories: DirectoriesConfig{GPSDir: "/data/gps"},
				Database:    DatabaseConfig{Path: "/data/db.sqlite"},
			},
			expectError: true,
		},
		{
			name: "placeholder bucket",
			config: Config{
				Directories: DirectoriesConfig{GPSDir: "/data/gps"},
				Database:    DatabaseConfig{Path: "/data/db.sqlite"},
				ObjectStore: ObjectStoreConfig{Bucket: "YOUR_BUCKET_NAME"},
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.expectError && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
