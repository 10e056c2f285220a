package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"

	"nova-assistant/internal/intent"
)

const DefaultModel = "gpt-4o-mini"

// Completer runs schema-constrained requests against the Responses API with
// strict structured output.
type Completer struct {
	client *oai.Client
	model  string
}

func NewCompleter(apiKey, model string) *Completer {
	return NewCompleterWithURL(apiKey, model, "https://api.openai.com/v1")
}

func NewCompleterWithURL(apiKey, model, baseURL string) *Completer {
	if model == "" {
		model = DefaultModel
	}
	client := oai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithRequestTimeout(30*time.Second),
		option.WithMaxRetries(2),
	)
	return &Completer{
		client: &client,
		model:  model,
	}
}

func (c *Completer) Name() string {
	return "openai"
}

func (c *Completer) Complete(ctx context.Context, req intent.CompletionRequest) (string, error) {
	format := responses.ResponseFormatTextConfigParamOfJSONSchema(req.SchemaName, req.Schema)
	format.OfJSONSchema.Strict = oai.Bool(true)

	params := responses.ResponseNewParams{
		Model: c.model,
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: responses.ResponseInputParam{
				responses.ResponseInputItemParamOfMessage(req.Text, responses.EasyInputMessageRoleUser),
			},
		},
		Instructions: oai.String(req.SystemPrompt),
		Temperature:  oai.Float(0),
		Store:        oai.Bool(false),
		Text: responses.ResponseTextConfigParam{
			Format: format,
		},
	}

	resp, err := c.client.Responses.New(ctx, params)
	if err != nil {
		var apiErr *oai.Error
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("openai responses API error %d: %w", apiErr.StatusCode, err)
		}
		return "", fmt.Errorf("calling openai: %w", err)
	}

	text := strings.TrimSpace(resp.OutputText())
	if text == "" {
		return "", fmt.Errorf("empty response from openai")
	}
	return text, nil
}
