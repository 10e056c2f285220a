package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"nova-assistant/internal/infra"
)

const DefaultModel = "scribe_v1"

// ScribeClient transcribes audio with the ElevenLabs speech-to-text API.
type ScribeClient struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	model      string
	language   string
}

func NewScribeClient(apiKey, language string) *ScribeClient {
	return NewScribeClientWithURL(apiKey, language, "https://api.elevenlabs.io/v1")
}

func NewScribeClientWithURL(apiKey, language, baseURL string) *ScribeClient {
	return &ScribeClient{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		model:      DefaultModel,
		language:   languageCode(language),
	}
}

// scribe expects ISO 639-3 codes; stt.language is shared with Whisper,
// which takes ISO 639-1.
var iso6393 = map[string]string{
	"en": "eng",
	"es": "spa",
	"fr": "fra",
	"de": "deu",
	"it": "ita",
	"pt": "por",
	"nl": "nld",
	"ja": "jpn",
	"zh": "zho",
}

func languageCode(language string) string {
	language = strings.ToLower(strings.TrimSpace(language))
	if language == "" {
		return "eng"
	}
	if code, ok := iso6393[language]; ok {
		return code
	}
	return language
}

type transcriptionResponse struct {
	Text string `json:"text"`
}

func (c *ScribeClient) Transcribe(ctx context.Context, audio []byte) (string, error) {
	var result transcriptionResponse

	retryErr := infra.WithRetry(ctx, infra.DefaultRetryConfig(), func() error {
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)

		part, err := writer.CreateFormFile("file", "audio.wav")
		if err != nil {
			return fmt.Errorf("creating form file: %w", err)
		}

		if _, err = part.Write(audio); err != nil {
			return fmt.Errorf("writing audio: %w", err)
		}

		if err = writer.WriteField("model_id", c.model); err != nil {
			return fmt.Errorf("writing model field: %w", err)
		}

		if err = writer.WriteField("language_code", c.language); err != nil {
			return fmt.Errorf("writing language field: %w", err)
		}

		if err = writer.Close(); err != nil {
			return fmt.Errorf("closing writer: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/speech-to-text", body)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}

		req.Header.Set("xi-api-key", c.apiKey)
		req.Header.Set("Content-Type", writer.FormDataContentType())

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("sending request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			respBody, _ := io.ReadAll(resp.Body)
			return infra.HTTPStatusError("elevenlabs", resp.StatusCode, respBody)
		}

		if err = json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}

		return nil
	})

	if retryErr != nil {
		return "", retryErr
	}

	return strings.TrimSpace(result.Text), nil
}
