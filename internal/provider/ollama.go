package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/nlshell/nlsh/internal/config"
)

// ollamaProvider talks to a local Ollama server. No authentication.
type ollamaProvider struct {
	endpoint string
	model    string
	client   *http.Client
}

func newOllama(cfg *config.OllamaConfig) *ollamaProvider {
	return &ollamaProvider{
		endpoint: cfg.Endpoint,
		model:    cfg.Model,
		client:   newHTTPClient(),
	}
}

func (o *ollamaProvider) Name() string { return "ollama" }

func (o *ollamaProvider) Generate(ctx context.Context, prompt string) (string, error) {
	reqBody := map[string]any{
		"model":  o.model,
		"prompt": prompt,
		"stream": false,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", &Error{Kind: ErrMalformed, Provider: o.Name(), Message: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		o.endpoint+"/api/generate", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", &Error{Kind: ErrNetwork, Provider: o.Name(), Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", errorFromTransport(err, o.Name())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errorFromStatus(resp.StatusCode, o.Name(), readBody(resp.Body))
	}

	var result struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", &Error{Kind: ErrMalformed, Provider: o.Name(), Message: err.Error()}
	}

	return result.Response, nil
}
