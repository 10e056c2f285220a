package gemini_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nova-assistant/internal/infra/gemini"
	"nova-assistant/internal/intent"
)

func request() intent.CompletionRequest {
	return intent.CompletionRequest{
		SystemPrompt: intent.SystemPrompt,
		Text:         "turn it up on spotify",
		SchemaName:   intent.SchemaName,
		Schema:       intent.CommandSchema(),
	}
}

func TestCompleter_Complete(t *testing.T) {
	var received map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/models/gemini-2.0-flash:generateContent") {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if r.Header.Get("x-goog-api-key") != "test-key" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{
					"role":  "model",
					"parts": []map[string]string{{"text": `{"action":"volume_up","platform":null,"song":null,"volume_level":null}`}},
				}},
			},
		})
	}))
	defer server.Close()

	c, err := gemini.NewCompleterWithURL(context.Background(), "test-key", "", server.URL)
	require.NoError(t, err)

	out, err := c.Complete(context.Background(), request())
	require.NoError(t, err)

	cmd, err := intent.DecodeCommand(out)
	require.NoError(t, err)
	assert.Equal(t, "volume_up", string(cmd.Action))

	config := received["generationConfig"].(map[string]any)
	assert.Equal(t, "application/json", config["responseMimeType"])
	assert.NotNil(t, config["responseSchema"])
	assert.NotNil(t, received["systemInstruction"])
}

func TestCompleter_ClientErrorIsNotRetried(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`))
	}))
	defer server.Close()

	c, err := gemini.NewCompleterWithURL(context.Background(), "bad", "", server.URL)
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), request())
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}
