package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"sourcing-agent/internal/retry"

	"go.uber.org/zap"
)

type searchResponse struct {
	OrganicResults []organicResult `json:"organic_results"`
}

type organicResult struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Snippet     string `json:"snippet"`
	RichSnippet *struct {
		Top struct {
			Extensions []string `json:"extensions"`
		} `json:"top"`
	} `json:"rich_snippet,omitempty"`
}

// search makes a GET request to the search API and returns all organic results.
func (c *Client) search(ctx context.Context, query string) ([]*Result, error) {
	q := url.Values{}
	q.Set("engine", engine)
	q.Set("q", query)
	q.Set("num", resultsPerQuery)
	q.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.APIURL+"/search", nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", c.UserAgent)
	req.URL.RawQuery = q.Encode()

	c.logger.Debug("make request", zap.String("url", req.URL.Redacted()))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		// Connection failures and client timeouts are worth another attempt.
		return nil, retry.Transient(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, retry.Transient(err)
	}

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("bad status: %s", resp.Status)
		if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
			return nil, retry.Transient(err)
		}
		return nil, err
	}

	var response searchResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, err
	}

	results := make([]*Result, 0, len(response.OrganicResults))
	for _, item := range response.OrganicResults {
		result := &Result{
			Title:   item.Title,
			Link:    item.Link,
			Snippet: item.Snippet,
		}
		if item.RichSnippet != nil {
			result.Extensions = item.RichSnippet.Top.Extensions
		}
		results = append(results, result)
	}

	return results, nil
}

func profileQuery(name, jobTitle string) string {
	if jobTitle == "" {
		return fmt.Sprintf("%q site:linkedin.com/in", name)
	}
	return fmt.Sprintf("%q %q site:linkedin.com/in", name, jobTitle)
}

// matchByName returns the first result whose title contains the candidate name.
func matchByName(results []*Result, name string) *Result {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return nil
	}

	for _, result := range results {
		if strings.Contains(strings.ToLower(result.Title), needle) {
			return result
		}
	}

	return nil
}
