package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nijaru/yt-notes/config"
	"github.com/nijaru/yt-notes/logger"
)

type chatRequest struct {
	Model       string  `json:"model"`
	Temperature float32 `json:"temperature"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func newTestServer(t *testing.T, status int, reply string, seen *chatRequest) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		if seen != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(seen))
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			w.Write([]byte(`{"error":{"message":"quota exceeded","type":"rate_limit"}}`))
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id":     "cmpl-1",
			"object": "chat.completion",
			"model":  "ministral-8b-2512",
			"choices": []map[string]any{
				{
					"index":         0,
					"finish_reason": "stop",
					"message":       map[string]string{"role": "assistant", "content": reply},
				},
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, baseURL string) Completer {
	t.Helper()

	c, err := NewClient(config.LLMConfig{
		APIKey:      "test-key",
		BaseURL:     baseURL,
		Model:       config.DefaultModel,
		Temperature: config.DefaultTemperature,
	}, logger.Discard())
	require.NoError(t, err)
	return c
}

func TestCompleteSendsSingleUserMessage(t *testing.T) {
	var seen chatRequest
	srv := newTestServer(t, http.StatusOK, "Hola mundo", &seen)

	c := newTestClient(t, srv.URL)
	got, err := c.Complete(context.Background(), "Translate: Hello world")
	require.NoError(t, err)

	assert.Equal(t, "Hola mundo", got)
	assert.Equal(t, config.DefaultModel, seen.Model)
	assert.InDelta(t, 0.2, seen.Temperature, 1e-6)
	require.Len(t, seen.Messages, 1)
	assert.Equal(t, "user", seen.Messages[0].Role)
	assert.Equal(t, "Translate: Hello world", seen.Messages[0].Content)
	assert.Equal(t, config.DefaultModel, c.Model())
}

func TestCompleteUpstreamError(t *testing.T) {
	srv := newTestServer(t, http.StatusTooManyRequests, "", nil)

	c := newTestClient(t, srv.URL)
	_, err := c.Complete(context.Background(), "prompt")
	assert.Error(t, err)
}

func TestCompleteEmptyResponse(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, "", nil)

	c := newTestClient(t, srv.URL)
	_, err := c.Complete(context.Background(), "prompt")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(config.LLMConfig{Model: config.DefaultModel}, nil)
	assert.Error(t, err)
}
