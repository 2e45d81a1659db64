package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// ProjectFileName is the optional per-project configuration file.
const ProjectFileName = "sdpix.toml"

// Supported artifact formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Config holds the application configuration.
type Config struct {
	LogLevel         string // debug, info, warn, error
	OutputDir        string // Artifacts are written below this directory; empty disables export
	Format           string // json or yaml
	Parallel         int    // Maximum number of documents converted at once
	BibliographyFile string // Optional YAML file with additional bibliography entries
	ProjectFile      string // Path of the sdpix.toml that was applied, if any
}

// ProjectConfig is the content of sdpix.toml.
type ProjectConfig struct {
	Output struct {
		Dir    string `toml:"dir"`
		Format string `toml:"format"`
	} `toml:"output"`
	Bibliography struct {
		File string `toml:"file"`
	} `toml:"bibliography"`
	Log struct {
		Level string `toml:"level"`
	} `toml:"log"`
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	return LoadConfigFrom("")
}

// LoadConfigFrom loads configuration with precedence env > sdpix.toml > defaults.
// The project file is searched from startDir upwards; an empty startDir skips it.
func LoadConfigFrom(startDir string) (*Config, error) {
	// A missing .env is fine
	_ = godotenv.Load()

	cfg := &Config{
		LogLevel: "info",
		Format:   FormatJSON,
		Parallel: 4,
	}

	if startDir != "" {
		path, found, err := FindProjectFile(startDir)
		if err != nil {
			return nil, err
		}
		if found {
			project, err := LoadProjectFile(path)
			if err != nil {
				return nil, err
			}
			cfg.applyProject(path, project)
		}
	}

	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", cfg.LogLevel)

	// DEBUG flag overrides log level
	if os.Getenv("DEBUG") == "1" {
		cfg.LogLevel = "debug"
	}

	cfg.OutputDir = getEnvOrDefault("SDPIX_OUTPUT_DIR", cfg.OutputDir)
	cfg.Format = strings.ToLower(getEnvOrDefault("SDPIX_FORMAT", cfg.Format))
	cfg.BibliographyFile = getEnvOrDefault("SDPIX_BIBLIOGRAPHY", cfg.BibliographyFile)

	if v := os.Getenv("SDPIX_PARALLEL"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, &ValidationError{Field: "SDPIX_PARALLEL", Message: "must be an integer", Err: err}
		}
		cfg.Parallel = n
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	switch c.Format {
	case FormatJSON, FormatYAML:
	default:
		return &ValidationError{Field: "format", Message: fmt.Sprintf("must be %s or %s, got %q", FormatJSON, FormatYAML, c.Format)}
	}
	if c.Parallel < 1 {
		return &ValidationError{Field: "parallel", Message: "must be at least 1"}
	}
	return nil
}

func (c *Config) applyProject(path string, p *ProjectConfig) {
	root := filepath.Dir(path)
	c.ProjectFile = path
	if p.Output.Dir != "" {
		c.OutputDir = resolveRelative(root, p.Output.Dir)
	}
	if p.Output.Format != "" {
		c.Format = strings.ToLower(p.Output.Format)
	}
	if p.Bibliography.File != "" {
		c.BibliographyFile = resolveRelative(root, p.Bibliography.File)
	}
	if p.Log.Level != "" {
		c.LogLevel = p.Log.Level
	}
}

// FindProjectFile looks for sdpix.toml in startDir and its parents.
func FindProjectFile(startDir string) (string, bool, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ProjectFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}

// LoadProjectFile parses an sdpix.toml file.
func LoadProjectFile(path string) (*ProjectConfig, error) {
	var p ProjectConfig
	if _, err := toml.DecodeFile(path, &p); err != nil {
		return nil, fmt.Errorf("%s: parse TOML: %w", path, err)
	}
	return &p, nil
}

func resolveRelative(root, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

// getEnvOrDefault returns the value of an environment variable or a default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
