package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/uc-client/pkg/ucclient"
	"gopkg.in/yaml.v3"
)

// Config application configuration structure
type Config struct {
	Controller ControllerConfig `yaml:"controller"`
	Log        LogConfig        `yaml:"log"`
	Web        WebConfig        `yaml:"web"`
}

// ControllerConfig Universal Controller connection settings
type ControllerConfig struct {
	RemoteAddr string `yaml:"remote_addr"` // IPv4 address of the controller (e.g., "10.0.0.1")
	RemotePort int    `yaml:"remote_port"` // Controller port
	LocalPort  int    `yaml:"local_port"`  // Client-side port
	ClientID   string `yaml:"client_id"`   // Identifier used in log lines (optional, defaults to POD_NAME or HOSTNAME)
	// Skip Endpoint.Validate before installing the handle
	SkipValidation bool `yaml:"skip_validation"`
}

// LogConfig log configuration
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// WebConfig status/metrics listener configuration
type WebConfig struct {
	ListenAddress string `yaml:"listen_address"`
	TelemetryPath string `yaml:"telemetry_path"`
}

// LoadConfig loads configuration from file
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config.yaml"
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return config, nil
}

// Parse decodes YAML configuration and applies defaults and env overrides.
func Parse(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.SetDefaults()
	config.ApplyEnvOverrides()

	return &config, nil
}

// Default returns a configuration with defaults and env overrides applied.
func Default() *Config {
	c := &Config{}
	c.SetDefaults()
	c.ApplyEnvOverrides()
	return c
}

// SetDefaults sets default values
func (c *Config) SetDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	if c.Web.ListenAddress == "" {
		c.Web.ListenAddress = ":9090"
	}
	if c.Web.TelemetryPath == "" {
		c.Web.TelemetryPath = "/metrics"
	}
}

// Endpoint returns the controller settings as a handle endpoint.
func (c *Config) Endpoint() ucclient.Endpoint {
	return ucclient.Endpoint{
		RemoteAddr: c.Controller.RemoteAddr,
		RemotePort: c.Controller.RemotePort,
		LocalPort:  c.Controller.LocalPort,
	}
}

// HasEndpoint reports whether any controller setting was provided.
func (c *Config) HasEndpoint() bool {
	return !c.Endpoint().IsZero()
}

// ApplyEnvOverrides applies environment variable overrides
func (c *Config) ApplyEnvOverrides() {
	// UC_REMOTE carries host:port in one variable; the split variables win over it
	if val := os.Getenv("UC_REMOTE"); val != "" {
		if host, port, err := ucclient.ParseHostPort(val, c.Controller.RemoteAddr); err == nil {
			c.Controller.RemoteAddr = host
			if port != 0 {
				c.Controller.RemotePort = port
			}
		}
	}
	if val := os.Getenv("UC_REMOTE_ADDR"); val != "" {
		c.Controller.RemoteAddr = strings.TrimSpace(val)
	}
	if val := os.Getenv("UC_REMOTE_PORT"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.Controller.RemotePort = i
		}
	}
	if val := os.Getenv("UC_LOCAL_PORT"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.Controller.LocalPort = i
		}
	}
	if val := os.Getenv("UC_CLIENT_ID"); val != "" {
		c.Controller.ClientID = val
	}
	if val := os.Getenv("UC_SKIP_VALIDATION"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			c.Controller.SkipValidation = b
		}
	}

	// Log config
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = strings.ToLower(val)
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = strings.ToLower(val)
	}

	// Web config
	if val := os.Getenv("UC_LISTEN_ADDRESS"); val != "" {
		c.Web.ListenAddress = val
	}
	if val := os.Getenv("UC_TELEMETRY_PATH"); val != "" {
		c.Web.TelemetryPath = val
	}
}
