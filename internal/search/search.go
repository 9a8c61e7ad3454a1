package search

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	apiURL    = "https://serpapi.com"
	engine    = "google"
	userAgent = "sourcing-agent"

	// One request per second keeps us inside the free-tier search quota.
	defaultRequestsPerSecond = 1

	resultsPerQuery = "5"
)

// Result is a single organic search hit for a candidate profile. A nil Result
// from Lookup means the candidate has no usable public profile; that is a
// normal outcome, not an error.
type Result struct {
	Title      string
	Link       string
	Snippet    string
	Extensions []string
}

// Client queries a SerpAPI-compatible search endpoint for public LinkedIn
// profiles by candidate name.
type Client struct {
	apiKey     string
	logger     *zap.Logger
	limiter    *rate.Limiter
	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
}

func New(logger *zap.Logger, apiKey string) *Client {
	return &Client{
		apiKey: apiKey,
		APIURL: apiURL,
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		limiter:   rate.NewLimiter(rate.Limit(defaultRequestsPerSecond), 1),
		logger:    logger,
		UserAgent: userAgent,
	}
}

// SetRate overrides the default request rate limit.
func (c *Client) SetRate(reqPerSec float64, burst int) {
	c.limiter = rate.NewLimiter(rate.Limit(reqPerSec), burst)
}

// Lookup finds the public profile search hit that best matches the candidate
// name. The exact-name query is tried first; when no result title contains the
// name, the query is repeated with the job title, and the first result of the
// original query is used as a last resort.
func (c *Client) Lookup(ctx context.Context, name, jobTitle string) (*Result, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	exact, err := c.search(ctx, profileQuery(name, ""))
	if err != nil {
		return nil, err
	}

	if hit := matchByName(exact, name); hit != nil {
		return hit, nil
	}

	if jobTitle != "" {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		narrowed, err := c.search(ctx, profileQuery(name, jobTitle))
		if err == nil {
			if hit := matchByName(narrowed, name); hit != nil {
				return hit, nil
			}
		} else {
			c.logger.Debug("narrowed profile query failed",
				zap.String("candidate", name),
				zap.Error(err),
			)
		}
	}

	if len(exact) > 0 {
		c.logger.Debug("no exact title match, using first result",
			zap.String("candidate", name),
		)
		return exact[0], nil
	}

	return nil, nil
}
