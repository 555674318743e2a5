// Package client holds the concrete rewrite backends. Each backend focuses
// on its API call; retries, throttling, timeouts, and caching are applied by
// rewrite middleware.
package client

import (
	"context"
	"errors"
	"net/http"
	"strings"

	genai "google.golang.org/genai"

	"autodocs/internal/rewrite"
)

// ErrEmptyReply reports a structurally valid provider response that carried
// no usable text.
var ErrEmptyReply = errors.New("empty model reply")

// DefaultGeminiModel is used when the configuration names no model.
const DefaultGeminiModel = "gemini-2.0-flash"

// Gemini rewrites files through the Gemini API via the official genai client.
type Gemini struct {
	cli   *genai.Client
	model string
}

// NewGemini builds the client. An empty apiKey defers to the GEMINI_API_KEY
// environment variable, which the genai client reads on its own.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if model == "" {
		model = DefaultGeminiModel
	}
	cfg := &genai.ClientConfig{Backend: genai.BackendGeminiAPI}
	if apiKey != "" {
		cfg.APIKey = apiKey
	}
	cli, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Gemini{cli: cli, model: model}, nil
}

func (g *Gemini) Name() string { return "gemini:" + g.model }
func (g *Gemini) Close() error { return nil }

func (g *Gemini) Rewrite(ctx context.Context, req rewrite.Request) (string, error) {
	full := rewrite.BuildPrompt(req) + "\n\n" + req.Content

	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: full}}}},
		nil,
	)
	if err != nil {
		if rl, ok := geminiRateLimit(err); ok {
			return "", rl
		}
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyReply
	}
	text := resp.Candidates[0].Content.Parts[0].Text
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyReply
	}
	return rewrite.StripFence(text), nil
}

// geminiRateLimit converts the API's quota push-back into the typed signal
// the retry middleware understands. The genai client surfaces APIError both
// by value and by pointer depending on the call path.
func geminiRateLimit(err error) (*rewrite.RateLimitError, bool) {
	var byVal genai.APIError
	if errors.As(err, &byVal) {
		return rateLimitFromAPIError(byVal)
	}
	var byPtr *genai.APIError
	if errors.As(err, &byPtr) && byPtr != nil {
		return rateLimitFromAPIError(*byPtr)
	}
	return nil, false
}

func rateLimitFromAPIError(apiErr genai.APIError) (*rewrite.RateLimitError, bool) {
	if apiErr.Code == http.StatusTooManyRequests || apiErr.Status == "RESOURCE_EXHAUSTED" {
		return &rewrite.RateLimitError{Message: apiErr.Message}, true
	}
	return nil, false
}
