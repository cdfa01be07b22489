package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/nlshell/nlsh/internal/config"
)

// openaiProvider covers OpenAI itself and any server speaking the chat
// completions dialect (LM Studio, llama.cpp, vLLM, ...). The API key is
// optional because local servers usually run unauthenticated.
type openaiProvider struct {
	endpoint string
	apiKey   string
	model    string
	client   *http.Client
}

func newOpenAI(cfg *config.OpenAIConfig) *openaiProvider {
	return &openaiProvider{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		client:   newHTTPClient(),
	}
}

func (o *openaiProvider) Name() string { return "openai" }

func (o *openaiProvider) url() string {
	if strings.HasSuffix(o.endpoint, "/v1") {
		return o.endpoint + "/chat/completions"
	}
	return o.endpoint + "/v1/chat/completions"
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (o *openaiProvider) Generate(ctx context.Context, prompt string) (string, error) {
	reqBody := struct {
		Model       string        `json:"model"`
		Messages    []chatMessage `json:"messages"`
		Temperature float32       `json:"temperature"`
	}{
		Model:       o.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: 0.7,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", &Error{Kind: ErrMalformed, Provider: o.Name(), Message: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.url(), bytes.NewBuffer(jsonData))
	if err != nil {
		return "", &Error{Kind: ErrNetwork, Provider: o.Name(), Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	if o.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+o.apiKey)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return "", errorFromTransport(err, o.Name())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errorFromStatus(resp.StatusCode, o.Name(), readBody(resp.Body))
	}

	var result struct {
		Choices []struct {
			Message chatMessage `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", &Error{Kind: ErrMalformed, Provider: o.Name(), Message: err.Error()}
	}
	if len(result.Choices) == 0 {
		return "", &Error{Kind: ErrMalformed, Provider: o.Name(), Message: "no choices in response"}
	}

	return result.Choices[0].Message.Content, nil
}
