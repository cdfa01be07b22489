package provider

import (
	"context"

	"github.com/nlshell/nlsh/internal/prompt"
)

// Client pairs a provider with the template store and reduces raw model
// output to the shapes the rest of the program works with: one trimmed
// command line, or free-text explanation.
type Client struct {
	provider  Provider
	templates *prompt.Store
}

// NewClient creates a client over the given provider and template store
func NewClient(p Provider, templates *prompt.Store) *Client {
	return &Client{provider: p, templates: templates}
}

// ProviderName returns the backend identifier of the wrapped provider
func (c *Client) ProviderName() string {
	return c.provider.Name()
}

// GenerateCommand turns a natural-language request into a single shell
// command line. Code fences and trailing prose in the model output are
// stripped; an empty result is a malformed-response error, never an empty
// command.
func (c *Client) GenerateCommand(ctx context.Context, request string) (string, error) {
	p := prompt.BuildGenerate(c.templates.Get(prompt.Generate), request)
	raw, err := c.provider.Generate(ctx, p)
	if err != nil {
		return "", err
	}

	command := prompt.CleanResponse(raw)
	if command == "" {
		return "", &Error{Kind: ErrMalformed, Provider: c.provider.Name(), Message: "empty response"}
	}
	return command, nil
}

// ExplainCommand returns a natural-language explanation of command
func (c *Client) ExplainCommand(ctx context.Context, command string) (string, error) {
	p := prompt.BuildExplain(c.templates.Get(prompt.Explain), command)
	raw, err := c.provider.Generate(ctx, p)
	if err != nil {
		return "", err
	}

	explanation := prompt.CleanExplanation(raw)
	if explanation == "" {
		return "", &Error{Kind: ErrMalformed, Provider: c.provider.Name(), Message: "empty response"}
	}
	return explanation, nil
}
