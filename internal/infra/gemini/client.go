package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"nova-assistant/internal/domain"
	"nova-assistant/internal/infra"
	"nova-assistant/internal/intent"
)

const DefaultModel = "gemini-2.0-flash"

// Completer asks Gemini for JSON constrained by a response schema.
type Completer struct {
	client *genai.Client
	model  string
}

func NewCompleter(ctx context.Context, apiKey, model string) (*Completer, error) {
	return NewCompleterWithURL(ctx, apiKey, model, "")
}

// NewCompleterWithURL overrides the API endpoint; an empty baseURL keeps the
// library default.
func NewCompleterWithURL(ctx context.Context, apiKey, model, baseURL string) (*Completer, error) {
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  &http.Client{Timeout: 30 * time.Second},
		HTTPOptions: genai.HTTPOptions{BaseURL: baseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &Completer{
		client: client,
		model:  model,
	}, nil
}

func (c *Completer) Name() string {
	return "gemini"
}

func (c *Completer) Complete(ctx context.Context, req intent.CompletionRequest) (string, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.SystemPrompt, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    commandSchema(),
		Temperature:       genai.Ptr[float32](0),
		MaxOutputTokens:   256,
	}

	var text string
	retryErr := infra.WithRetry(ctx, infra.DefaultRetryConfig(), func() error {
		resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(req.Text), config)
		if err != nil {
			return classify(err)
		}
		text = strings.TrimSpace(resp.Text())
		return nil
	})
	if retryErr != nil {
		return "", retryErr
	}

	if text == "" {
		return "", fmt.Errorf("empty response from gemini")
	}
	return text, nil
}

// commandSchema is the Command shape in Gemini's OpenAPI subset; it accepts
// the same documents as intent.CommandSchema.
func commandSchema() *genai.Schema {
	actions := make([]string, 0, len(domain.Actions))
	for _, action := range domain.Actions {
		actions = append(actions, string(action))
	}
	platforms := make([]string, 0, len(domain.Platforms))
	for _, platform := range domain.Platforms {
		platforms = append(platforms, string(platform))
	}

	nullable := genai.Ptr(true)
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"action":       {Type: genai.TypeString, Enum: actions, Format: "enum"},
			"platform":     {Type: genai.TypeString, Enum: platforms, Format: "enum", Nullable: nullable},
			"song":         {Type: genai.TypeString, Nullable: nullable},
			"volume_level": {Type: genai.TypeInteger, Nullable: nullable, Minimum: genai.Ptr(float64(domain.MinVolume)), Maximum: genai.Ptr(float64(domain.MaxVolume))},
		},
		Required:         []string{"action", "platform", "song", "volume_level"},
		PropertyOrdering: []string{"action", "platform", "song", "volume_level"},
	}
}

func classify(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return infra.HTTPStatusError("gemini", apiErr.Code, []byte(apiErr.Message))
	}
	return fmt.Errorf("calling gemini: %w", err)
}
