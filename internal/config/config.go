package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/bagelcount/bagelcount/internal/constraint"
	"github.com/bagelcount/bagelcount/internal/model"
)

// FileName is the config file looked up in the project directory.
const FileName = "bagel.yaml"

// Config represents the top-level bagel.yaml configuration.
type Config struct {
	BudgetFile  string                                        `yaml:"budget_file"`
	Constraints map[model.ConstraintName]constraint.RoleModes `yaml:"constraints"`
	Log         LogConfig                                     `yaml:"log"`
	Git         GitConfig                                     `yaml:"git"`
}

// LogConfig controls diagnostic output on stderr.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn or error
}

// GitConfig holds the author used when bagel commits budget changes.
type GitConfig struct {
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Author formats the commit author as "Name <email>".
func (g GitConfig) Author() string {
	def := Default().Git
	name, email := g.AuthorName, g.AuthorEmail
	if name == "" {
		name = def.AuthorName
	}
	if email == "" {
		email = def.AuthorEmail
	}
	return fmt.Sprintf("%s <%s>", name, email)
}

// Load reads a bagel.yaml file from disk. Unknown constraint modes and log
// levels are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default() *Config {
	return &Config{
		BudgetFile: "budgets.yaml",
		Constraints: map[model.ConstraintName]constraint.RoleModes{
			model.ParentChildrenSum: {Parent: constraint.ModeBlocking, Child: constraint.ModeWarning},
		},
		Log: LogConfig{Level: "info"},
		Git: GitConfig{
			AuthorName:  "Bagel",
			AuthorEmail: "bagel@localhost",
		},
	}
}

// Validate checks modes and the log level.
func (c *Config) Validate() error {
	for name, rm := range c.Constraints {
		for _, m := range []constraint.Mode{rm.Parent, rm.Child} {
			if m == "" {
				continue
			}
			if _, err := constraint.ParseMode(string(m)); err != nil {
				return fmt.Errorf("constraint %s: %w", name, err)
			}
		}
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// ConstraintConfig returns the constraint configuration handed to the facade.
func (c *Config) ConstraintConfig() constraint.Config {
	out := make(constraint.Config, len(c.Constraints))
	for name, rm := range c.Constraints {
		out[name] = rm
	}
	return out
}

// LogLevel parses Log.Level. An empty level means info.
func (c *Config) LogLevel() (slog.Level, error) {
	if c.Log.Level == "" {
		return slog.LevelInfo, nil
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("log level: %w", err)
	}
	return lvl, nil
}

// BudgetPath resolves BudgetFile relative to the directory holding the config.
func (c *Config) BudgetPath(dir string) string {
	file := c.BudgetFile
	if file == "" {
		file = Default().BudgetFile
	}
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(dir, file)
}
