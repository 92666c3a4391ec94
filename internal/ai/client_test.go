// ABOUTME: Tests for the gateway chat completions client.
// ABOUTME: Uses httptest servers to check headers, retries, and error mapping.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatReply(text string) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{{"message": map[string]any{"content": text}}},
	})
	return string(b)
}

func newTestClient(t *testing.T, url string) *Client {
	t.Helper()
	c, err := NewClient(Options{BaseURL: url, APIKey: "test-key", Timeout: 5 * time.Second})
	require.NoError(t, err)
	c.baseBackoff = time.Millisecond
	return c
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(Options{BaseURL: "http://localhost"})
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = NewClient(Options{APIKey: "k"})
	assert.Error(t, err)
}

func TestCompleteSendsRequest(t *testing.T) {
	var got chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(chatReply("hello")))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	text, err := c.Complete(context.Background(), "some/model", []Message{
		SystemMessage("sys"),
		UserImageMessage("look", "data:image/png;base64,AAAA"),
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", text)

	assert.Equal(t, "some/model", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "sys", got.Messages[0].Content)

	parts, ok := got.Messages[1].Content.([]any)
	require.True(t, ok, "image message content should be a list of parts")
	require.Len(t, parts, 2)
	img := parts[1].(map[string]any)
	assert.Equal(t, "image_url", img["type"])
	assert.Equal(t, "data:image/png;base64,AAAA", img["image_url"].(map[string]any)["url"])
}

func TestCompleteRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch calls.Add(1) {
		case 1:
			w.WriteHeader(http.StatusTooManyRequests)
		case 2:
			w.WriteHeader(http.StatusBadGateway)
		default:
			_, _ = w.Write([]byte(chatReply("ok")))
		}
	}))
	defer server.Close()

	text, err := newTestClient(t, server.URL).Complete(context.Background(), "m", []Message{UserMessage("hi")})
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.EqualValues(t, 3, calls.Load())
}

func TestCompleteGivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL).Complete(context.Background(), "m", []Message{UserMessage("hi")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max retries exceeded")
	assert.EqualValues(t, defaultMaxRetries+1, calls.Load())
}

func TestCompleteClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key"}}`))
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL).Complete(context.Background(), "m", []Message{UserMessage("hi")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad key")
	assert.False(t, isRetryableError(err))
	assert.EqualValues(t, 1, calls.Load())
}

func TestCompleteEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL).Complete(context.Background(), "m", []Message{UserMessage("hi")})
	assert.Error(t, err)
}

func TestCompleteCancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(chatReply("late")))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestClient(t, server.URL).Complete(ctx, "m", []Message{UserMessage("hi")})
	assert.True(t, errors.Is(err, context.Canceled))
}
