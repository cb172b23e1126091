// Package config assembles the run configuration from defaults, an optional
// YAML settings file, an optional .env file and the process environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/swiftsoftwaregroup/swift-machine-client-go/oauth2client"
)

// Environment variables read outside the envconfig struct.
const (
	EnvConfigFile = "MACHINE_CLIENT_CONFIG"
	EnvDotEnvFile = "MACHINE_CLIENT_ENV_FILE"
)

// DefaultDotEnvFile is loaded when present and no other file is named.
const DefaultDotEnvFile = ".env"

// Config holds the settings of one fetch-and-call run.
// Later sources override earlier ones: Default, settings file, environment.
type Config struct {
	ClientID      string `yaml:"client_id" envconfig:"APP_CLIENT_ID"`
	ClientSecret  string `yaml:"client_secret" envconfig:"APP_CLIENT_SECRET"`
	TokenEndpoint string `yaml:"token_endpoint" envconfig:"TOKEN_ENDPOINT"`
	APIEndpoint   string `yaml:"api_endpoint" envconfig:"API_ENDPOINT"`

	// Scope is used when no profile is selected.
	Scope string `yaml:"scope" envconfig:"SCOPE"`

	Method   string        `yaml:"method" envconfig:"HTTP_METHOD"`
	Timeout  time.Duration `yaml:"timeout" envconfig:"HTTP_TIMEOUT"`
	LogLevel string        `yaml:"log_level" envconfig:"LOG_LEVEL"`

	// Profiles maps a name to a scope so one set of credentials can serve
	// several permission sets.
	Profiles map[string]Profile `yaml:"profiles" ignored:"true"`
}

// Profile is a named scope, optionally with its own resource endpoint.
type Profile struct {
	Scope       string `yaml:"scope"`
	APIEndpoint string `yaml:"api_endpoint"`
}

// Options selects the files Load reads. Empty fields fall back to the
// MACHINE_CLIENT_* environment variables and then to DefaultDotEnvFile.
type Options struct {
	ConfigFile string
	EnvFile    string
}

// Default returns the base configuration before any file or environment is applied.
func Default() *Config {
	return &Config{
		Method:   string(oauth2client.HttpPost),
		Timeout:  oauth2client.DefaultTimeout,
		LogLevel: "info",
	}
}

// Load builds the configuration. An explicitly named file that does not
// exist is an error; the implicit .env file is optional.
func Load(opts Options) (*Config, error) {
	cfg := Default()

	configFile := opts.ConfigFile
	if configFile == "" {
		configFile = os.Getenv(EnvConfigFile)
	}
	if configFile != "" {
		if err := cfg.loadFile(configFile); err != nil {
			return nil, err
		}
	}

	envFile, explicit := opts.EnvFile, opts.EnvFile != ""
	if !explicit {
		envFile = os.Getenv(EnvDotEnvFile)
		explicit = envFile != ""
	}
	if !explicit {
		envFile = DefaultDotEnvFile
	}
	if err := godotenv.Load(envFile); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	}

	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// UseProfile replaces the scope, and the API endpoint when the profile sets
// one, with the named profile's values.
func (c *Config) UseProfile(name string) error {
	p, ok := c.Profiles[name]
	if !ok {
		return fmt.Errorf("unknown profile %q (known: %s)", name, strings.Join(c.ProfileNames(), ", "))
	}
	c.Scope = p.Scope
	if p.APIEndpoint != "" {
		c.APIEndpoint = p.APIEndpoint
	}
	return nil
}

// ProfileNames returns the configured profile names in sorted order.
func (c *Config) ProfileNames() []string {
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ClientConfig converts to the library configuration and validates it.
func (c *Config) ClientConfig() (oauth2client.Config, error) {
	method, err := oauth2client.ParseHttpMethod(c.Method)
	if err != nil {
		return oauth2client.Config{}, err
	}

	cc := oauth2client.Config{
		Credentials: oauth2client.Credentials{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
		},
		Endpoints: oauth2client.Endpoints{
			TokenURL: c.TokenEndpoint,
			APIURL:   c.APIEndpoint,
		},
		Scope:   c.Scope,
		Method:  method,
		Timeout: c.Timeout,
	}
	if err := cc.Validate(); err != nil {
		return oauth2client.Config{}, err
	}
	return cc, nil
}
