// Package setup implements the interactive provider configuration behind
// `nlsh api`.
package setup

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"

	"github.com/nlshell/nlsh/internal/config"
	"github.com/nlshell/nlsh/internal/ui"
)

// Run walks the user through selecting and configuring a provider. Sections
// for providers configured earlier are preserved, so switching back to one
// keeps its credentials.
func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg == nil {
		cfg = &config.Config{}
	}

	var choice string
	prompt := &survey.Select{
		Message: "Select API provider:",
		Options: []string{"Gemini API", "Ollama", "OpenAI Compatible"},
		Default: currentLabel(cfg.Provider),
	}
	if err := survey.AskOne(prompt, &choice); err != nil {
		return err
	}

	switch choice {
	case "Gemini API":
		if err := configureGemini(cfg); err != nil {
			return err
		}
		cfg.Provider = config.KindGemini
	case "Ollama":
		if err := configureOllama(cfg); err != nil {
			return err
		}
		cfg.Provider = config.KindOllama
	case "OpenAI Compatible":
		if err := configureOpenAI(cfg); err != nil {
			return err
		}
		cfg.Provider = config.KindOpenAI
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	configPath, _ := config.GetConfigPath()
	ui.ShowSuccess("Configuration saved!")
	ui.ShowInfo(fmt.Sprintf("Provider: %s", cfg.Provider))
	ui.ShowInfo(fmt.Sprintf("Model: %s", cfg.ActiveModel()))
	ui.ShowInfo(fmt.Sprintf("Config: %s", configPath))
	return nil
}

func currentLabel(kind config.Kind) string {
	switch kind {
	case config.KindGemini:
		return "Gemini API"
	case config.KindOllama:
		return "Ollama"
	case config.KindOpenAI:
		return "OpenAI Compatible"
	}
	return "Gemini API"
}

func configureGemini(cfg *config.Config) error {
	existing := cfg.Gemini
	if existing == nil {
		existing = &config.GeminiConfig{
			Endpoint: config.DefaultGeminiEndpoint,
			Model:    config.DefaultGeminiModel,
		}
	}

	apiKey, err := askSecret("Gemini API key:", existing.APIKey)
	if err != nil {
		return err
	}
	model, err := askRequired("Model name:", existing.Model)
	if err != nil {
		return err
	}

	cfg.Gemini = &config.GeminiConfig{
		Endpoint: existing.Endpoint,
		APIKey:   apiKey,
		Model:    model,
	}
	return nil
}

func configureOllama(cfg *config.Config) error {
	existing := cfg.Ollama
	if existing == nil {
		existing = &config.OllamaConfig{Endpoint: config.DefaultOllamaEndpoint}
	}

	endpoint, err := askRequired("Ollama base URL:", existing.Endpoint)
	if err != nil {
		return err
	}
	model, err := askRequired("Model name:", existing.Model)
	if err != nil {
		return err
	}

	cfg.Ollama = &config.OllamaConfig{Endpoint: endpoint, Model: model}
	return nil
}

func configureOpenAI(cfg *config.Config) error {
	existing := cfg.OpenAI
	if existing == nil {
		existing = &config.OpenAIConfig{Endpoint: config.DefaultOpenAIEndpoint}
	}

	endpoint, err := askRequired("API base URL:", existing.Endpoint)
	if err != nil {
		return err
	}

	var apiKey string
	keyPrompt := &survey.Input{
		Message: "API key (leave empty for local servers):",
		Default: existing.APIKey,
	}
	if err := survey.AskOne(keyPrompt, &apiKey); err != nil {
		return err
	}

	model, err := askRequired("Model name:", existing.Model)
	if err != nil {
		return err
	}

	cfg.OpenAI = &config.OpenAIConfig{Endpoint: endpoint, APIKey: apiKey, Model: model}
	return nil
}

func askRequired(message, def string) (string, error) {
	var answer string
	prompt := &survey.Input{Message: message, Default: def}
	if err := survey.AskOne(prompt, &answer, survey.WithValidator(survey.Required)); err != nil {
		return "", err
	}
	return answer, nil
}

func askSecret(message, def string) (string, error) {
	if def != "" {
		// re-entering a long key on every change is painful; offer the
		// saved one as the input default instead of a masked prompt
		return askRequired(message, def)
	}
	var answer string
	prompt := &survey.Password{Message: message}
	if err := survey.AskOne(prompt, &answer, survey.WithValidator(survey.Required)); err != nil {
		return "", err
	}
	return answer, nil
}
