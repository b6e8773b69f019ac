package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/raido/internal/normalize"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Catalog CatalogConfig     `yaml:"catalog"`
	State   StateConfig       `yaml:"state"`
	Auth    AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Catalog.Validate(); err != nil {
		return err
	}
	if err := c.State.Validate(); err != nil {
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

// CatalogConfig holds the source document location and the base URL used
// when deriving template origin paths.
type CatalogConfig struct {
	Path    string `yaml:"path"`
	BaseURL string `yaml:"base_url"`
}

// Validate validates the catalog configuration.
func (c *CatalogConfig) Validate() error {
	if c.BaseURL == "" {
		c.BaseURL = normalize.DefaultBaseURL
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// StateConfig holds the view-state database location.
type StateConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the state configuration.
func (c *StateConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
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
	// Normalise empty mode to "disabled" for backward compatibility.
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
				Port: 8080,
			},
		},
		Catalog: CatalogConfig{
			Path:    "./templates.json",
			BaseURL: normalize.DefaultBaseURL,
		},
		State: StateConfig{
			Path: "./raido.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
