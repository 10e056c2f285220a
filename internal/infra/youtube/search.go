package youtube

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"nova-assistant/internal/infra"
)

var ErrNoResults = errors.New("no youtube results")

var videoIDPattern = regexp.MustCompile(`"videoId":"([A-Za-z0-9_-]{11})"`)

// SearchClient finds the first video for a query on the public results page.
type SearchClient struct {
	httpClient *http.Client
	baseURL    string
}

func NewSearchClient() *SearchClient {
	return NewSearchClientWithURL("https://www.youtube.com")
}

func NewSearchClientWithURL(baseURL string) *SearchClient {
	return &SearchClient{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    baseURL,
	}
}

// Search returns the watch URL of the first result for query.
func (c *SearchClient) Search(ctx context.Context, query string) (string, error) {
	endpoint := c.baseURL + "/results?search_query=" + url.QueryEscape(query)

	var page []byte
	err := infra.WithRetry(ctx, infra.DefaultRetryConfig(), func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 14_0) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36")
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("sending request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return infra.HTTPStatusError("youtube search", resp.StatusCode, nil)
		}

		page, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("reading response: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	match := videoIDPattern.FindSubmatch(page)
	if match == nil {
		return "", fmt.Errorf("%w for %q", ErrNoResults, query)
	}

	return WatchURL(string(match[1])), nil
}

func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}
