package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/contactbook/contactbook-go/internal/client"
)

// EnvBaseURL overrides the server address when --base-url is not given.
const EnvBaseURL = "CONTACTS_API_URL"

// Config is the optional config.yaml of the command-line client.
type Config struct {
	BaseURL         string `yaml:"base_url"`
	CredentialsFile string `yaml:"credentials_file"`
}

// DefaultDir returns $XDG_CONFIG_HOME/contacts (or the platform equivalent).
func DefaultDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "contacts"), nil
}

// LoadConfig reads path. A missing file yields the zero Config.
func LoadConfig(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ResolveBaseURL picks the server address: flag, then environment, then config file, then default.
func ResolveBaseURL(flagValue string, getenv func(string) string, cfg Config) string {
	switch {
	case flagValue != "":
		return flagValue
	case getenv(EnvBaseURL) != "":
		return getenv(EnvBaseURL)
	case cfg.BaseURL != "":
		return cfg.BaseURL
	default:
		return client.DefaultBaseURL
	}
}
