package openai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"nova-assistant/internal/infra"
)

type WhisperClient struct {
	client   *goopenai.Client
	language string
}

func NewWhisperClient(apiKey, language string) *WhisperClient {
	return NewWhisperClientWithURL(apiKey, language, "https://api.openai.com/v1")
}

func NewWhisperClientWithURL(apiKey, language, baseURL string) *WhisperClient {
	cfg := goopenai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimSuffix(baseURL, "/")
	cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}

	return &WhisperClient{
		client:   goopenai.NewClientWithConfig(cfg),
		language: language,
	}
}

func (c *WhisperClient) Transcribe(ctx context.Context, audio []byte) (string, error) {
	var text string

	retryErr := infra.WithRetry(ctx, infra.DefaultRetryConfig(), func() error {
		resp, err := c.client.CreateTranscription(ctx, goopenai.AudioRequest{
			Model:    goopenai.Whisper1,
			FilePath: "audio.wav",
			Reader:   bytes.NewReader(audio),
			Language: c.language,
		})
		if err != nil {
			return classify(err)
		}

		text = resp.Text
		return nil
	})

	if retryErr != nil {
		return "", retryErr
	}

	return strings.TrimSpace(text), nil
}

// classify maps client errors onto infra.StatusError so WithRetry can skip
// non-retryable responses.
func classify(err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode > 0 {
		return infra.HTTPStatusError("whisper", apiErr.HTTPStatusCode, []byte(apiErr.Message))
	}

	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode > 0 {
		return infra.HTTPStatusError("whisper", reqErr.HTTPStatusCode, reqErr.Body)
	}

	return fmt.Errorf("transcribing: %w", err)
}
