package internal

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

const defaultDataDir = "./data"

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	Data     DataConfig        `yaml:"data"`
	Snapshot SnapshotConfig    `yaml:"snapshot"`
	Site     SiteConfig        `yaml:"site"`
	Content  ContentConfig     `yaml:"content"`
	Auth     AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Data.Validate(); err != nil {
		return err
	}
	if err := c.Snapshot.Validate(); err != nil {
		return err
	}
	if err := c.Site.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// DataConfig locates the page database.
type DataConfig struct {
	Dir string `yaml:"dir"`
}

// Validate normalises an empty directory to ./data. A value of
// "${PORTAL_DATA_DIR}" in the YAML file therefore falls back to the default
// when the variable is unset.
func (c *DataConfig) Validate() error {
	c.Dir = strings.TrimSpace(c.Dir)
	if c.Dir == "" {
		c.Dir = defaultDataDir
	}
	return nil
}

// DBPath is the SQLite file inside Dir.
func (c *DataConfig) DBPath() string {
	return filepath.Join(c.Dir, "pages.db")
}

// SnapshotConfig controls the exported JSON snapshot.
type SnapshotConfig struct {
	Path string `yaml:"path"`
	// Watch rebuilds the snapshot when it is removed or edited by hand.
	Watch bool `yaml:"watch"`
}

// Validate validates the snapshot configuration.
func (c *SnapshotConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// SiteConfig locates the static front-end.
type SiteConfig struct {
	StaticDir string `yaml:"static_dir"`
}

// Validate validates the site configuration.
func (c *SiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.StaticDir, validation.Required),
	)
}

// ContentConfig controls how saved documents are filtered.
type ContentConfig struct {
	// SanitizeHTML strips markup from free-text fields on save.
	SanitizeHTML bool `yaml:"sanitize_html"`
}

// AuthConfig holds authentication configuration for the admin JSON API.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 5000,
			},
		},
		Data: DataConfig{
			Dir: defaultDataDir,
		},
		Snapshot: SnapshotConfig{
			Path:  "./portal_data.json",
			Watch: true,
		},
		Site: SiteConfig{
			StaticDir: "./static",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
