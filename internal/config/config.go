// Package config provides configuration management.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"

	"quote-pricer/internal/logging"
)

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version"`

	// Pipeline contains transformation pipeline settings
	Pipeline PipelineConfig `json:"pipeline"`

	// Rating contains rating engine settings
	Rating RatingConfig `json:"rating"`

	// Data contains input data locations
	Data DataConfig `json:"data"`

	// Server contains HTTP server settings
	Server ServerConfig `json:"server"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging"`
}

// PipelineConfig contains transformation-related settings
type PipelineConfig struct {
	// PrimaryKey is the field every record must carry (e.g. "IDpol")
	PrimaryKey string `json:"primary_key" envconfig:"PRIMARY_KEY"`

	// CategoryIndexPath is the JSON category mapping file
	CategoryIndexPath string `json:"category_index_path" envconfig:"CATEGORY_INDEX_PATH"`

	// BandingPath is the JSON continuous banding file
	BandingPath string `json:"banding_path" envconfig:"BANDING_PATH"`

	// Derivations selects the custom field derivations to run, in order
	Derivations []string `json:"derivations"`

	// Workers bounds batch parallelism (0 = GOMAXPROCS)
	Workers int `json:"workers" envconfig:"WORKERS"`
}

// RatingConfig contains rating-engine settings
type RatingConfig struct {
	// PlanPath is the HCL rating plan file
	PlanPath string `json:"plan_path" envconfig:"PLAN_PATH"`

	// TablesDir holds the CSV rating tables referenced by the plan
	TablesDir string `json:"tables_dir" envconfig:"TABLES_DIR"`
}

// DataConfig contains input data locations
type DataConfig struct {
	// BatchDir holds columnar batch files (CSV/XLSX)
	BatchDir string `json:"batch_dir"`

	// IndividualDir holds single-record JSON quote files
	IndividualDir string `json:"individual_dir"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	// Addr is the listen address
	Addr string `json:"addr" envconfig:"ADDR"`
}

// Default returns a default configuration
func Default() *Config {
	return &Config{
		Version: "1.0",
		Pipeline: PipelineConfig{
			PrimaryKey:        "IDpol",
			CategoryIndexPath: filepath.Join("configs", "category-index.json"),
			BandingPath:       filepath.Join("configs", "continuous-banding.json"),
			Derivations:       []string{"age_band", "power_group"},
			Workers:           0,
		},
		Rating: RatingConfig{
			PlanPath:  filepath.Join("configs", "plan.hcl"),
			TablesDir: filepath.Join("configs", "tables"),
		},
		Data: DataConfig{
			BatchDir:      filepath.Join("data", "batch"),
			IndividualDir: filepath.Join("data", "individual"),
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load loads configuration from a file, falling back to defaults when the
// file does not exist. Environment variables prefixed QUOTE_PRICER_
// override file values.
func Load(path string) (*Config, error) {
	config := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, config); err != nil {
			return nil, err
		}
	case os.IsNotExist(err):
		// defaults
	default:
		return nil, err
	}

	if err := envconfig.Process("QUOTE_PRICER", config); err != nil {
		return nil, err
	}

	return config, nil
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}
