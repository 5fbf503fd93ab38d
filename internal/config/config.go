package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Mode constants
	ModeLocal = "local"
	ModeFetch = "fetch"

	// Default values
	DefaultLogLevel    = "info"
	DefaultMaxFileSize = 100 * 1024 * 1024 // 100MB
	DefaultOutputFile  = "tif_reports.csv"

	// Directory permissions
	DefaultDirPerm = 0o750
)

// Config holds all configuration for one parser run
type Config struct {
	// Run configuration
	Mode string // "local" parses ReportsDir, "fetch" downloads first
	Year int    // filing year, selects the extraction profile

	// Path configuration
	ReportsDir    string
	OutputPath    string
	TermTablePath string

	// Fetch configuration
	BaseURL string

	// Application configuration
	Version     string
	Workers     int
	LogLevel    string
	MaxFileSize int64 // Maximum PDF file size in bytes
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		// Fallback to current directory if working directory cannot be determined
		currentDir = "."
	}

	return &Config{
		Mode:          ModeLocal,
		Year:          time.Now().Year() - 1, // reports publish the year after filing
		ReportsDir:    currentDir,
		OutputPath:    filepath.Join(currentDir, DefaultOutputFile),
		TermTablePath: "",
		BaseURL:       "",
		Version:       "1.0.0",
		Workers:       runtime.NumCPU(),
		LogLevel:      DefaultLogLevel,
		MaxFileSize:   DefaultMaxFileSize,
	}
}

// LoadFromFlags parses command line flags and returns a configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	// Check for version flag before parsing
	if err := checkVersionFlag(); err != nil {
		return nil, err
	}

	pflag.Parse()

	populateConfigFromViper(cfg)

	// Expand paths if needed
	if cfg.ReportsDir != "" {
		if expandedPath, err := filepath.Abs(cfg.ReportsDir); err == nil {
			cfg.ReportsDir = expandedPath
		}
	}
	if cfg.OutputPath != "" {
		if expandedPath, err := filepath.Abs(cfg.OutputPath); err == nil {
			cfg.OutputPath = expandedPath
		}
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	// Set environment variable prefix
	viper.SetEnvPrefix("CHI_TIF")
	viper.AutomaticEnv()

	// Define flags with Viper
	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("year", cfg.Year)
	viper.SetDefault("reports", cfg.ReportsDir)
	viper.SetDefault("out", cfg.OutputPath)
	viper.SetDefault("termtable", cfg.TermTablePath)
	viper.SetDefault("baseurl", cfg.BaseURL)
	viper.SetDefault("workers", cfg.Workers)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode, "Run mode: 'local' to parse reports on disk, 'fetch' to download them first")
	pflag.Int("year", cfg.Year, "Filing year of the reports")
	pflag.String("reports", cfg.ReportsDir, "Directory holding (or receiving) the report PDFs")
	pflag.String("out", cfg.OutputPath, "Output CSV path")
	pflag.String("termtable", cfg.TermTablePath, "CSV snapshot of the district term sheet")
	pflag.String("baseurl", cfg.BaseURL, "City portal base URL (fetch mode only)")
	pflag.Int("workers", cfg.Workers, "Number of parser workers")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF file size in bytes")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	_ = viper.BindPFlag("mode", pflag.Lookup("mode"))
	_ = viper.BindPFlag("year", pflag.Lookup("year"))
	_ = viper.BindPFlag("reports", pflag.Lookup("reports"))
	_ = viper.BindPFlag("out", pflag.Lookup("out"))
	_ = viper.BindPFlag("termtable", pflag.Lookup("termtable"))
	_ = viper.BindPFlag("baseurl", pflag.Lookup("baseurl"))
	_ = viper.BindPFlag("workers", pflag.Lookup("workers"))
	_ = viper.BindPFlag("loglevel", pflag.Lookup("loglevel"))
	_ = viper.BindPFlag("maxfilesize", pflag.Lookup("maxfilesize"))
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nChicago TIF Parser - extracts district annual report financials to CSV\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s --year=2022 --reports=./pdfs                 # parse downloaded reports\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=fetch --year=2022 --reports=./pdfs    # download, then parse\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --year=2014 --workers=4 --out=./tif2014.csv  # legacy form, custom output\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  CHI_TIF_MODE        Run mode\n")
		fmt.Fprintf(os.Stderr, "  CHI_TIF_YEAR        Filing year\n")
		fmt.Fprintf(os.Stderr, "  CHI_TIF_REPORTS     Reports directory\n")
		fmt.Fprintf(os.Stderr, "  CHI_TIF_OUT         Output CSV path\n")
		fmt.Fprintf(os.Stderr, "  CHI_TIF_TERMTABLE   Term sheet snapshot\n")
		fmt.Fprintf(os.Stderr, "  CHI_TIF_BASEURL     Portal base URL\n")
		fmt.Fprintf(os.Stderr, "  CHI_TIF_WORKERS     Worker count\n")
		fmt.Fprintf(os.Stderr, "  CHI_TIF_LOGLEVEL    Log level\n")
		fmt.Fprintf(os.Stderr, "  CHI_TIF_MAXFILESIZE Maximum file size\n")
	}
}

// checkVersionFlag checks if version flag was requested
func checkVersionFlag() error {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return fmt.Errorf("version requested")
		}
	}
	return nil
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.Year = viper.GetInt("year")
	cfg.ReportsDir = viper.GetString("reports")
	cfg.OutputPath = viper.GetString("out")
	cfg.TermTablePath = viper.GetString("termtable")
	cfg.BaseURL = viper.GetString("baseurl")
	cfg.Workers = viper.GetInt("workers")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate mode
	if c.Mode != ModeLocal && c.Mode != ModeFetch {
		return errors.New("mode must be either 'local' or 'fetch'")
	}

	// The extraction profiles start at the 2010 form revision
	if c.Year < 2010 {
		return fmt.Errorf("year %d predates the supported report forms", c.Year)
	}

	// Validate reports directory
	if c.ReportsDir == "" {
		return errors.New("reports directory cannot be empty")
	}

	// Check if reports directory exists, create if it doesn't
	if _, err := os.Stat(c.ReportsDir); os.IsNotExist(err) {
		if err := os.MkdirAll(c.ReportsDir, DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create reports directory %s: %w", c.ReportsDir, err)
		}
	} else if err != nil {
		return fmt.Errorf("cannot access reports directory %s: %w", c.ReportsDir, err)
	}

	// Validate output path
	if c.OutputPath == "" {
		return errors.New("output path cannot be empty")
	}

	// Validate worker count
	if c.Workers < 1 {
		return errors.New("worker count must be positive")
	}

	// Validate max file size
	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// IsFetch returns true if the run downloads reports before parsing
func (c *Config) IsFetch() bool {
	return c.Mode == ModeFetch
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}
