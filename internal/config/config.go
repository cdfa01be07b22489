package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	ConfigDirName  = "nlsh"
	ConfigFileName = "config.yaml"

	DefaultGeminiEndpoint = "https://generativelanguage.googleapis.com"
	DefaultGeminiModel    = "gemini-flash-latest"
	DefaultOllamaEndpoint = "http://localhost:11434"
	DefaultOpenAIEndpoint = "https://api.openai.com/v1"
)

// Kind identifies an AI backend type
type Kind string

const (
	KindGemini Kind = "gemini"
	KindOllama Kind = "ollama"
	KindOpenAI Kind = "openai"
)

// Config represents the application configuration. The active provider is
// selected by name; credentials for inactive providers are kept so switching
// back does not require re-entering them.
type Config struct {
	Provider Kind          `yaml:"provider"`
	Gemini   *GeminiConfig `yaml:"gemini,omitempty"`
	Ollama   *OllamaConfig `yaml:"ollama,omitempty"`
	OpenAI   *OpenAIConfig `yaml:"openai,omitempty"`
}

type GeminiConfig struct {
	Endpoint string `yaml:"endpoint,omitempty"`
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
}

type OllamaConfig struct {
	Endpoint string `yaml:"endpoint"`
	Model    string `yaml:"model"`
}

type OpenAIConfig struct {
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"api_key,omitempty"`
	Model    string `yaml:"model"`
}

// GetConfigDir returns the path to the config directory
func GetConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config directory: %w", err)
	}
	return filepath.Join(base, ConfigDirName), nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, ConfigFileName), nil
}

// Load reads the configuration from disk. A missing file returns (nil, nil)
// so callers can distinguish "not configured" from a real failure.
func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.applyDefaults()

	return &cfg, nil
}

// Save writes the configuration to disk
func Save(cfg *Config) error {
	configDir, err := GetConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.Gemini != nil && c.Gemini.Endpoint == "" {
		c.Gemini.Endpoint = DefaultGeminiEndpoint
	}
	if c.Ollama != nil && c.Ollama.Endpoint == "" {
		c.Ollama.Endpoint = DefaultOllamaEndpoint
	}
	if c.OpenAI != nil && c.OpenAI.Endpoint == "" {
		c.OpenAI.Endpoint = DefaultOpenAIEndpoint
	}
}

// Validate checks that the active provider has a usable section. An API key is
// required for Gemini; Ollama never needs one; OpenAI-compatible servers may be
// local and unauthenticated, so theirs stays optional.
func (c *Config) Validate() error {
	switch c.Provider {
	case KindGemini:
		if c.Gemini == nil {
			return fmt.Errorf("gemini selected but not configured")
		}
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("gemini requires an API key")
		}
		if c.Gemini.Model == "" {
			return fmt.Errorf("gemini model name is empty")
		}
	case KindOllama:
		if c.Ollama == nil {
			return fmt.Errorf("ollama selected but not configured")
		}
		if c.Ollama.Endpoint == "" {
			return fmt.Errorf("ollama endpoint is empty")
		}
		if c.Ollama.Model == "" {
			return fmt.Errorf("ollama model name is empty")
		}
	case KindOpenAI:
		if c.OpenAI == nil {
			return fmt.Errorf("openai selected but not configured")
		}
		if c.OpenAI.Endpoint == "" {
			return fmt.Errorf("openai endpoint is empty")
		}
		if c.OpenAI.Model == "" {
			return fmt.Errorf("openai model name is empty")
		}
	default:
		return fmt.Errorf("unknown provider type: %s", c.Provider)
	}
	return nil
}

// ActiveModel returns the model name of the active provider
func (c *Config) ActiveModel() string {
	switch c.Provider {
	case KindGemini:
		if c.Gemini != nil {
			return c.Gemini.Model
		}
	case KindOllama:
		if c.Ollama != nil {
			return c.Ollama.Model
		}
	case KindOpenAI:
		if c.OpenAI != nil {
			return c.OpenAI.Model
		}
	}
	return ""
}
