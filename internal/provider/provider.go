// Package provider normalizes the supported AI backends behind one
// request/response contract. Each backend owns its own wire format; dispatch
// is a pure function of the configured provider kind.
package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/nlshell/nlsh/internal/config"
)

// requestTimeout bounds every provider round trip
const requestTimeout = 30 * time.Second

// Provider turns a fully built prompt into raw model output. Implementations
// hold no mutable state between calls.
type Provider interface {
	// Generate performs one blocking round trip and returns the raw
	// response text
	Generate(ctx context.Context, prompt string) (string, error)

	// Name returns the backend identifier used in error messages
	Name() string
}

// New creates the provider selected by the configuration
func New(cfg *config.Config) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Provider {
	case config.KindGemini:
		return newGemini(cfg.Gemini), nil
	case config.KindOllama:
		return newOllama(cfg.Ollama), nil
	case config.KindOpenAI:
		return newOpenAI(cfg.OpenAI), nil
	default:
		return nil, fmt.Errorf("unknown provider type: %s", cfg.Provider)
	}
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: requestTimeout}
}

// readBody drains a response body for error reporting, capped so a huge
// error page cannot blow up the message.
func readBody(r io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(r, 8192))
	return string(data)
}
