package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"autodocs/internal/rewrite"
)

func chatReply(t *testing.T, w http.ResponseWriter, content string) {
	t.Helper()
	err := json.NewEncoder(w).Encode(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"role": "assistant", "content": content}},
		},
	})
	require.NoError(t, err)
}

func TestOpenAIRewrite(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		chatReply(t, w, "```csharp\nclass A {}\n```")
	}))
	defer srv.Close()

	cli := NewOpenAI(OpenAIConfig{BaseURL: srv.URL, APIKey: "sk-test", Model: "test-model"})
	out, err := cli.Rewrite(context.Background(), rewrite.Request{
		Content:  "class A {}",
		Language: "C#",
		DocStyle: ".NET XML documentation comments",
	})
	require.NoError(t, err)
	require.Equal(t, "class A {}\n", out)

	require.Equal(t, "test-model", got.Model)
	require.Len(t, got.Messages, 2)
	require.Equal(t, "system", got.Messages[0].Role)
	require.Contains(t, got.Messages[0].Content, "C#")
	require.Equal(t, "user", got.Messages[1].Role)
	require.Equal(t, "class A {}", got.Messages[1].Content)
}

func TestOpenAIRateLimitFromRetryAfter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limit reached"}}`))
	}))
	defer srv.Close()

	cli := NewOpenAI(OpenAIConfig{BaseURL: srv.URL})
	_, err := cli.Rewrite(context.Background(), rewrite.Request{Content: "x"})
	require.True(t, rewrite.IsRateLimit(err))

	var rl *rewrite.RateLimitError
	require.ErrorAs(t, err, &rl)
	require.Equal(t, 30*time.Second, rl.RetryAfter)
	require.Contains(t, rl.Message, "rate limit reached")
}

func TestOpenAIRateLimitFromResetHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Ratelimit-Remaining-Tokens", "0")
		w.Header().Set("X-Ratelimit-Reset-Tokens", "2m30s")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	cli := NewOpenAI(OpenAIConfig{BaseURL: srv.URL})
	_, err := cli.Rewrite(context.Background(), rewrite.Request{Content: "x"})

	var rl *rewrite.RateLimitError
	require.ErrorAs(t, err, &rl)
	require.Equal(t, 2*time.Minute+30*time.Second, rl.RetryAfter)
}

func TestOpenAIContextLengthIsPermanent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":"context_length_exceeded"}}`))
	}))
	defer srv.Close()

	cli := NewOpenAI(OpenAIConfig{BaseURL: srv.URL})
	_, err := cli.Rewrite(context.Background(), rewrite.Request{Content: "x"})

	var perm *rewrite.PermanentError
	require.ErrorAs(t, err, &perm)
	require.False(t, rewrite.IsRateLimit(err))
}

func TestOpenAIServerErrorTruncatesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(strings.Repeat("x", 10_000)))
	}))
	defer srv.Close()

	cli := NewOpenAI(OpenAIConfig{BaseURL: srv.URL})
	_, err := cli.Rewrite(context.Background(), rewrite.Request{Content: "x"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "500")
	require.Less(t, len(err.Error()), maxErrorBody+100)
	require.False(t, rewrite.IsRateLimit(err))
}

func TestOpenAIEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	cli := NewOpenAI(OpenAIConfig{BaseURL: srv.URL})
	_, err := cli.Rewrite(context.Background(), rewrite.Request{Content: "x"})
	require.ErrorIs(t, err, ErrEmptyReply)
}

func TestNewOpenAIDefaults(t *testing.T) {
	cli := NewOpenAI(OpenAIConfig{})
	require.Equal(t, DefaultOpenAIBaseURL+"/chat/completions", cli.endpoint)
	require.Equal(t, "openai:"+DefaultOpenAIModel, cli.Name())

	trailing := NewOpenAI(OpenAIConfig{BaseURL: "http://localhost:8080/v1/"})
	require.Equal(t, "http://localhost:8080/v1/chat/completions", trailing.endpoint)
}
