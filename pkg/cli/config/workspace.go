package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
)

// AppConfig is the optional TOML workspace configuration. When present it
// pins the set of categories actions may use.
type AppConfig struct {
	Categories []Category `toml:"category"`
}

// Category declares an allowed action category
type Category struct {
	ID          string `toml:"id"`
	Name        string `toml:"name"`
	Description string `toml:"description"`
}

// Validate checks if the Category is valid
func (c *Category) Validate() error {
	if c.ID == "" {
		return goerr.New("category ID is required")
	}
	if c.Name == "" {
		return goerr.New("category name is required", goerr.V("id", c.ID))
	}
	return nil
}

// Validate checks if the AppConfig is valid
func (a *AppConfig) Validate() error {
	categoryIDs := make(map[string]bool)
	for _, cat := range a.Categories {
		if err := cat.Validate(); err != nil {
			return goerr.Wrap(err, "invalid category")
		}
		if categoryIDs[cat.ID] {
			return goerr.New("duplicate category ID", goerr.V("id", cat.ID))
		}
		categoryIDs[cat.ID] = true
	}
	return nil
}

// CategoryIDs returns the allowed category IDs
func (a *AppConfig) CategoryIDs() []string {
	ids := make([]string, len(a.Categories))
	for i, cat := range a.Categories {
		ids[i] = cat.ID
	}
	return ids
}

// LoadAppConfiguration loads the application configuration from a TOML file
func LoadAppConfiguration(path string) (*AppConfig, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V("path", path))
	}

	var config AppConfig
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, goerr.Wrap(err, "failed to parse TOML config", goerr.V("path", path))
	}

	if err := config.Validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V("path", path))
	}

	return &config, nil
}

// Workspace holds the CLI flag for the optional workspace config file
type Workspace struct {
	path string
}

// Flags returns CLI flags for workspace configuration
func (w *Workspace) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Usage:       "Path to workspace TOML configuration",
			Sources:     cli.EnvVars("DERRICK_CONFIG"),
			Destination: &w.path,
		},
	}
}

// Configure loads the workspace configuration, or returns nil when no file
// was given
func (w *Workspace) Configure() (*AppConfig, error) {
	if w.path == "" {
		return nil, nil
	}
	return LoadAppConfiguration(w.path)
}
