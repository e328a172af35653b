package config

import (
	"fmt"
	"os"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar points at an explicit config file; when unset the
// default paths are probed.
const ConfigPathEnvVar = "LOCALMEET_CONFIG"

var defaultConfigPaths = []string{"config.yaml", "/etc/localmeet/config.yaml"}

// Config holds all configuration for the application
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Storage StorageConfig `koanf:"storage"`
	Auth    AuthConfig    `koanf:"auth"`
	Logging LoggingConfig `koanf:"logging"`
}

// ServerConfig holds the HTTP server configuration
type ServerConfig struct {
	Port int `koanf:"port"`
}

// StorageConfig holds the file store configuration. DataDir is the root
// under which the ledger, profiles, events and tag catalogs live; it is
// injected into the repository at construction, never read from a global.
type StorageConfig struct {
	DataDir string `koanf:"data_dir"`
}

// AuthConfig holds the authentication configuration
type AuthConfig struct {
	JWTSecret string `koanf:"jwt_secret"`
}

// LoggingConfig holds the logging configuration
type LoggingConfig struct {
	Level string `koanf:"level"`
}

func defaultConfig() Config {
	return Config{
		Server:  ServerConfig{Port: 8080},
		Storage: StorageConfig{DataDir: "data"},
		Auth:    AuthConfig{JWTSecret: "change-me"},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load builds the configuration from three layers: built-in defaults, an
// optional YAML file, and SERVER_PORT / STORAGE_DATA_DIR / AUTH_JWT_SECRET /
// LOGGING_LEVEL environment variables, highest layer last.
func Load() (*Config, error) {
	k := koanf.New(".")

	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// SERVER_PORT -> server.port, STORAGE_DATA_DIR -> storage.data_dir
	if err := k.Load(env.Provider("", ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range defaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envTransform maps an environment variable name onto a koanf path:
// the first underscore separates the section from the key.
func envTransform(name string) string {
	lower := toSnake(name)
	switch {
	case hasSection(lower, "server"):
		return "server." + lower[len("server_"):]
	case hasSection(lower, "storage"):
		return "storage." + lower[len("storage_"):]
	case hasSection(lower, "auth"):
		return "auth." + lower[len("auth_"):]
	case hasSection(lower, "logging"):
		return "logging." + lower[len("logging_"):]
	}
	return ""
}

func toSnake(name string) string {
	b := []byte(name)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

func hasSection(name, section string) bool {
	return len(name) > len(section)+1 && name[:len(section)+1] == section+"_"
}
