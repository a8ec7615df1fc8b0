package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"salesdash/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Paths    PathConfig
	Display  DisplayConfig
	Model    ModelConfig
	Variants VariantSelection
	LogLevel string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// DatabaseConfig holds the optional prediction log connection
type DatabaseConfig struct {
	URL string
}

// Enabled reports whether a prediction log database is configured
func (d DatabaseConfig) Enabled() bool {
	return strings.TrimSpace(d.URL) != ""
}

// PathConfig holds file system paths
type PathConfig struct {
	ModelDir     string
	DatasetPath  string // overrides every variant's dataset when set
	VariantsFile string
}

// DisplayConfig holds presentation settings
type DisplayConfig struct {
	Currency    string
	ChartWidth  int
	ChartHeight int
}

// ModelConfig holds model backend settings
type ModelConfig struct {
	OrtLibraryPath string
}

// VariantSelection lists the dashboards to serve
type VariantSelection struct {
	Active  []string
	Default string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server:   *loadServerConfig(),
		Database: DatabaseConfig{URL: getEnvOrDefault("DATABASE_URL", "")},
		Paths:    *loadPathConfig(),
		Display:  *loadDisplayConfig(),
		Model:    ModelConfig{OrtLibraryPath: getEnvOrDefault("ORT_LIBRARY_PATH", "")},
		Variants: *loadVariantSelection(),
		LogLevel: getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "release"),
	}
}

func loadPathConfig() *PathConfig {
	return &PathConfig{
		ModelDir:     getEnvOrDefault("MODEL_DIR", "."),
		DatasetPath:  getEnvOrDefault("DATASET_PATH", ""),
		VariantsFile: getEnvOrDefault("VARIANTS_FILE", ""),
	}
}

func loadDisplayConfig() *DisplayConfig {
	return &DisplayConfig{
		Currency:    getEnvOrDefault("CURRENCY_SYMBOL", "₹"),
		ChartWidth:  getEnvIntOrDefault("CHART_WIDTH", 720),
		ChartHeight: getEnvIntOrDefault("CHART_HEIGHT", 400),
	}
}

func loadVariantSelection() *VariantSelection {
	active := splitList(getEnvOrDefault("VARIANTS", "gb21,rf15"))
	def := getEnvOrDefault("DEFAULT_VARIANT", "")
	if def == "" && len(active) > 0 {
		def = active[0]
	}
	return &VariantSelection{Active: active, Default: strings.ToLower(def)}
}

func validateConfig(config *Config) error {
	if len(config.Variants.Active) == 0 {
		return errors.ConfigInvalid("VARIANTS must name at least one dashboard variant")
	}
	found := false
	seen := make(map[string]bool, len(config.Variants.Active))
	for _, name := range config.Variants.Active {
		if seen[name] {
			return errors.ConfigInvalid("VARIANTS lists " + name + " more than once")
		}
		seen[name] = true
		if name == config.Variants.Default {
			found = true
		}
	}
	if !found {
		return errors.ConfigInvalid("DEFAULT_VARIANT " + config.Variants.Default + " is not listed in VARIANTS")
	}
	if config.Display.ChartWidth < 200 || config.Display.ChartHeight < 150 {
		return errors.ConfigInvalid("CHART_WIDTH/CHART_HEIGHT are too small to render charts")
	}
	return nil
}

// Validate re-checks a configuration adjusted after Load
func (c *Config) Validate() error {
	return validateConfig(c)
}

// ResolveModelPath joins relative model paths onto MODEL_DIR
func (c *Config) ResolveModelPath(path string) string {
	if path == "" || filepath.IsAbs(path) || c.Paths.ModelDir == "" {
		return path
	}
	return filepath.Join(c.Paths.ModelDir, path)
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// splitList lower-cases a comma list, dropping blanks and repeats
func splitList(s string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" && !seen[part] {
			seen[part] = true
			out = append(out, part)
		}
	}
	return out
}
