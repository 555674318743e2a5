package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"autodocs/internal/rewrite"
)

const (
	// DefaultOpenAIBaseURL targets the hosted API. Any server speaking the
	// same chat completions dialect works, e.g. a local llama.cpp or vLLM.
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"

	// DefaultOpenAIModel is used when the configuration names no model.
	DefaultOpenAIModel = "gpt-4o-mini"

	// maxErrorBody caps how much of an error response is carried into the
	// returned error message.
	maxErrorBody = 2048
)

// OpenAI rewrites files through an OpenAI-compatible chat completions
// endpoint.
type OpenAI struct {
	http     *http.Client
	endpoint string
	apiKey   string
	model    string
}

// OpenAIConfig configures an OpenAI-compatible backend.
type OpenAIConfig struct {
	BaseURL string
	APIKey  string
	Model   string
}

func NewOpenAI(cfg OpenAIConfig) *OpenAI {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultOpenAIBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAI{
		http:     &http.Client{Timeout: 60 * time.Second},
		endpoint: strings.TrimRight(base, "/") + "/chat/completions",
		apiKey:   cfg.APIKey,
		model:    model,
	}
}

func (o *OpenAI) Name() string { return "openai:" + o.model }
func (o *OpenAI) Close() error { return nil }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (o *OpenAI) Rewrite(ctx context.Context, req rewrite.Request) (string, error) {
	payload := chatRequest{
		Model: o.model,
		Messages: []chatMessage{
			{Role: "system", Content: rewrite.BuildPrompt(req)},
			{Role: "user", Content: req.Content},
		},
		Temperature: 0,
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint, bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if o.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)
	}

	resp, err := o.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", o.responseError(resp)
	}

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if len(decoded.Choices) == 0 || strings.TrimSpace(decoded.Choices[0].Message.Content) == "" {
		return "", ErrEmptyReply
	}
	return rewrite.StripFence(decoded.Choices[0].Message.Content), nil
}

// responseError classifies a non-2xx response. Quota push-back becomes a
// *rewrite.RateLimitError carrying the server's own wait hint; a request
// that can never succeed becomes a *rewrite.PermanentError.
func (o *OpenAI) responseError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody+1))
	msg := truncateBody(body)

	if resp.StatusCode == http.StatusTooManyRequests {
		hdrs := parseRateLimitHeaders(resp.Header)
		return &rewrite.RateLimitError{
			RetryAfter: hdrs.Wait(),
			Message:    msg,
		}
	}
	err := fmt.Errorf("chat endpoint returned %d: %s", resp.StatusCode, msg)
	if resp.StatusCode == http.StatusBadRequest && strings.Contains(msg, "context_length_exceeded") {
		return rewrite.NewPermanentError(err)
	}
	return err
}

func truncateBody(body []byte) string {
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	return string(body)
}
