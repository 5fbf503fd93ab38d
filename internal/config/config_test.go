package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	// Test default values
	if cfg.Mode != "local" {
		t.Errorf("Expected default mode to be 'local', got '%s'", cfg.Mode)
	}

	if cfg.Year != time.Now().Year()-1 {
		t.Errorf("Expected default year to be last year, got %d", cfg.Year)
	}

	if cfg.Version != "1.0.0" {
		t.Errorf("Expected default version to be '1.0.0', got '%s'", cfg.Version)
	}

	if cfg.Workers < 1 {
		t.Errorf("Expected default worker count to be positive, got %d", cfg.Workers)
	}

	if cfg.LogLevel != "info" {
		t.Errorf("Expected default log level to be 'info', got '%s'", cfg.LogLevel)
	}

	if cfg.MaxFileSize != 100*1024*1024 {
		t.Errorf("Expected default max file size to be 100MB, got %d", cfg.MaxFileSize)
	}

	// Test that reports directory is set to current working directory by default
	currentDir, _ := os.Getwd()
	if cfg.ReportsDir != currentDir {
		t.Errorf("Expected default reports directory to be '%s', got '%s'", currentDir, cfg.ReportsDir)
	}

	if cfg.OutputPath != filepath.Join(currentDir, DefaultOutputFile) {
		t.Errorf("Expected default output path under the working directory, got '%s'", cfg.OutputPath)
	}
}

func TestConfigValidate(t *testing.T) {
	validDir := t.TempDir()

	valid := func() *Config {
		return &Config{
			Mode:        ModeLocal,
			Year:        2022,
			ReportsDir:  validDir,
			OutputPath:  filepath.Join(validDir, "out.csv"),
			Workers:     4,
			LogLevel:    "info",
			MaxFileSize: 1024,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid config - local mode",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "valid config - fetch mode",
			mutate:  func(c *Config) { c.Mode = ModeFetch },
			wantErr: false,
		},
		{
			name:    "invalid mode",
			mutate:  func(c *Config) { c.Mode = "invalid" },
			wantErr: true,
		},
		{
			name:    "year before supported forms",
			mutate:  func(c *Config) { c.Year = 2004 },
			wantErr: true,
		},
		{
			name:    "empty reports directory",
			mutate:  func(c *Config) { c.ReportsDir = "" },
			wantErr: true,
		},
		{
			name:    "empty output path",
			mutate:  func(c *Config) { c.OutputPath = "" },
			wantErr: true,
		},
		{
			name:    "zero workers",
			mutate:  func(c *Config) { c.Workers = 0 },
			wantErr: true,
		},
		{
			name:    "non-positive max file size",
			mutate:  func(c *Config) { c.MaxFileSize = 0 },
			wantErr: true,
		},
		{
			name:    "invalid log level",
			mutate:  func(c *Config) { c.LogLevel = "verbose" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigValidateCreatesReportsDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "pdfs")

	cfg := &Config{
		Mode:        ModeLocal,
		Year:        2022,
		ReportsDir:  dir,
		OutputPath:  filepath.Join(dir, "out.csv"),
		Workers:     1,
		LogLevel:    "info",
		MaxFileSize: 1024,
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}

	if _, err := os.Stat(dir); err != nil {
		t.Errorf("Expected Validate() to create the reports directory: %v", err)
	}
}

func TestConfigModeHelpers(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.IsFetch() {
		t.Error("Expected local mode not to report fetch")
	}
	if cfg.IsDebug() {
		t.Error("Expected info level not to report debug")
	}

	cfg.Mode = ModeFetch
	cfg.LogLevel = "debug"
	if !cfg.IsFetch() {
		t.Error("Expected fetch mode to report fetch")
	}
	if !cfg.IsDebug() {
		t.Error("Expected debug level to report debug")
	}
}
