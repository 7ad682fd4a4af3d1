package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/bankfeed/internal/importer"
)

// FileName is the workspace config file.
const FileName = "bankfeed.yaml"

// EnvDatabaseURL overrides store.database_url when set.
const EnvDatabaseURL = "BANKFEED_DATABASE_URL"

// Config represents the top-level bankfeed.yaml configuration.
type Config struct {
	Import  ImportConfig         `yaml:"import"`
	Store   StoreConfig          `yaml:"store"`
	Log     LogConfig            `yaml:"log"`
	Git     GitConfig            `yaml:"git"`
	Layouts []importer.Signature `yaml:"layouts,omitempty"`
}

// ImportConfig locates incoming and consumed bank files, relative to the workspace.
type ImportConfig struct {
	Dir          string `yaml:"dir"`
	ProcessedDir string `yaml:"processed_dir"`
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Backend     string `yaml:"backend"` // "files" or "postgres"
	DatabaseURL string `yaml:"database_url,omitempty"`
}

// LogConfig controls the zerolog logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "console" or "json"
}

// GitConfig controls committing workspace changes after each import.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads a bankfeed.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// LoadWorkspace reads <root>/bankfeed.yaml, loads <root>/.env if present and
// applies environment overrides.
func LoadWorkspace(root string) (*Config, error) {
	cfg, err := Load(filepath.Join(root, FileName))
	if err != nil {
		return nil, err
	}
	if err := godotenv.Load(filepath.Join(root, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	cfg.ApplyEnv()
	return cfg, nil
}

// ApplyEnv overrides config values from the environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvDatabaseURL); v != "" {
		c.Store.DatabaseURL = v
	}
}

// Signatures returns the built-in layout signatures followed by the user's,
// with user header tokens normalized to the form header cells are matched in.
func (c *Config) Signatures() []importer.Signature {
	sigs := importer.DefaultSignatures()
	for _, l := range c.Layouts {
		sigs = append(sigs, l.Normalized())
	}
	return sigs
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

// Default returns a Config with sensible defaults for a new workspace.
func Default() *Config {
	return &Config{
		Import: ImportConfig{
			Dir:          "import",
			ProcessedDir: filepath.Join("import", "processed"),
		},
		Store: StoreConfig{
			Backend: "files",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Git: GitConfig{
			AutoCommit:  false,
			AuthorName:  "bankfeed",
			AuthorEmail: "bankfeed@localhost",
		},
	}
}
