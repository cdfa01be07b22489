package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/nlshell/nlsh/internal/config"
)

// geminiProvider talks to the Google Generative Language API. The key rides
// in the query string, which is how that API authenticates.
type geminiProvider struct {
	endpoint string
	apiKey   string
	model    string
	client   *http.Client
}

func newGemini(cfg *config.GeminiConfig) *geminiProvider {
	return &geminiProvider{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		client:   newHTTPClient(),
	}
}

func (g *geminiProvider) Name() string { return "gemini" }

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

func (g *geminiProvider) Generate(ctx context.Context, prompt string) (string, error) {
	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", g.endpoint, g.model, g.apiKey)

	reqBody := struct {
		Contents []geminiContent `json:"contents"`
	}{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", &Error{Kind: ErrMalformed, Provider: g.Name(), Message: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", &Error{Kind: ErrNetwork, Provider: g.Name(), Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", errorFromTransport(err, g.Name())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body := readBody(resp.Body)
		// gemini wraps its real status and message in a JSON envelope
		var errResp struct {
			Error struct {
				Code    int    `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal([]byte(body), &errResp) == nil && errResp.Error.Code != 0 {
			return "", errorFromStatus(errResp.Error.Code, g.Name(), errResp.Error.Message)
		}
		return "", errorFromStatus(resp.StatusCode, g.Name(), body)
	}

	var result struct {
		Candidates []struct {
			Content *struct {
				Parts []geminiPart `json:"parts"`
			} `json:"content"`
			FinishReason string `json:"finishReason"`
		} `json:"candidates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", &Error{Kind: ErrMalformed, Provider: g.Name(), Message: err.Error()}
	}
	if len(result.Candidates) == 0 {
		return "", &Error{Kind: ErrMalformed, Provider: g.Name(), Message: "no candidates in response"}
	}

	candidate := result.Candidates[0]
	if candidate.FinishReason == "SAFETY" || candidate.FinishReason == "RECITATION" {
		return "", &Error{Kind: ErrMalformed, Provider: g.Name(), Message: "content blocked: " + candidate.FinishReason}
	}
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", &Error{Kind: ErrMalformed, Provider: g.Name(), Message: "no content in response"}
	}

	return candidate.Content.Parts[0].Text, nil
}
