// Package config resolves the environment-specific paths the runner needs:
// interpreter, project directory, log directory and the report scripts to
// execute. Values come from a YAML file with environment-variable overrides,
// validated at startup so a bad path fails fast instead of surfacing as an
// opaque exec error.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/franoropeza/reportrunner/pkg/models"
)

// DefaultPath is used when neither --config nor REPORT_CONFIG is set.
const DefaultPath = "reportrunner.yaml"

type Config struct {
	Interpreter string          `yaml:"interpreter"` // Python interpreter executable
	ProjectDir  string          `yaml:"project_dir"` // Working directory for the report scripts
	LogDir      string          `yaml:"log_dir"`     // Defaults to <project_dir>/logs
	Reports     []models.Report `yaml:"reports"`
	Database    DatabaseConfig  `yaml:"database"`
	HTTP        HTTPConfig      `yaml:"http"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"` // Optional; empty disables the run-history store
}

type HTTPConfig struct {
	Port string `yaml:"port"` // Port for the history API, used by `serve`
}

// Load reads the YAML config file and applies environment overrides
// (REPORT_INTERPRETER, REPORT_PROJECT_DIR, DATABASE_URL) and defaults.
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("REPORT_INTERPRETER"); v != "" {
		c.Interpreter = v
	}
	if v := os.Getenv("REPORT_PROJECT_DIR"); v != "" {
		c.ProjectDir = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.URL = v
	}
}

func (c *Config) applyDefaults() {
	if c.LogDir == "" && c.ProjectDir != "" {
		c.LogDir = filepath.Join(c.ProjectDir, "logs")
	}
	if c.HTTP.Port == "" {
		c.HTTP.Port = "8080"
	}
}

// Validate checks that every configured path exists before anything runs.
func (c *Config) Validate() error {
	if c.Interpreter == "" {
		return errors.New("interpreter is required")
	}
	if _, err := os.Stat(c.Interpreter); err != nil {
		return errors.Wrapf(err, "interpreter %s", c.Interpreter)
	}
	if c.ProjectDir == "" {
		return errors.New("project_dir is required")
	}
	info, err := os.Stat(c.ProjectDir)
	if err != nil {
		return errors.Wrapf(err, "project_dir %s", c.ProjectDir)
	}
	if !info.IsDir() {
		return errors.Errorf("project_dir %s is not a directory", c.ProjectDir)
	}
	if len(c.Reports) == 0 {
		return errors.New("at least one report is required")
	}
	for _, r := range c.Reports {
		if r.Name == "" || r.Script == "" {
			return errors.New("every report needs a name and a script")
		}
		script := r.Script
		if !filepath.IsAbs(script) {
			script = filepath.Join(c.ProjectDir, script)
		}
		if _, err := os.Stat(script); err != nil {
			return errors.Wrapf(err, "report %s script", r.Name)
		}
	}
	return nil
}

// Report returns the configured report with the given name.
func (c *Config) Report(name string) (models.Report, bool) {
	for _, r := range c.Reports {
		if r.Name == name {
			return r, true
		}
	}
	return models.Report{}, false
}
