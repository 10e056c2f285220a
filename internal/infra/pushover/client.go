package pushover

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"nova-assistant/internal/infra"
)

// Client pushes cycle outcomes to a phone through the Pushover API. An
// unconfigured client silently drops messages.
type Client struct {
	token      string
	userKey    string
	baseURL    string
	httpClient *http.Client
}

func NewClient(token, userKey string) *Client {
	return NewClientWithURL(token, userKey, "https://api.pushover.net/1")
}

func NewClientWithURL(token, userKey, baseURL string) *Client {
	return &Client{
		token:      token,
		userKey:    userKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type message struct {
	Title string
	Body  string
}

func (m message) form(token, user string) url.Values {
	return url.Values{
		"token":   {token},
		"user":    {user},
		"title":   {m.Title},
		"message": {m.Body},
	}
}

func (c *Client) Notify(ctx context.Context, text string) error {
	if c.token == "" || c.userKey == "" {
		return nil
	}

	body := message{Title: "Nova", Body: text}.form(c.token, c.userKey).Encode()

	return infra.WithRetry(ctx, infra.DefaultRetryConfig(), func() error {
		return c.send(ctx, body)
	})
}

func (c *Client) send(ctx context.Context, form string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages.json", strings.NewReader(form))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		return nil
	}
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return infra.HTTPStatusError("pushover", resp.StatusCode, respBody)
}
