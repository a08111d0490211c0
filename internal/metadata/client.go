package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/sethgrid/pester"
	"golang.org/x/time/rate"
)

// doiPattern matches a bare DOI after normalization.
var doiPattern = regexp.MustCompile(`^10\.\d{4,9}/\S+$`)

const (
	// CrossrefBaseURL is the Crossref REST API base URL.
	CrossrefBaseURL = "https://api.crossref.org"

	// OpenAlexBaseURL is the OpenAlex API base URL.
	OpenAlexBaseURL = "https://api.openalex.org"

	// requestsPerSecond keeps lookups well inside the polite-pool limits
	// both services document.
	requestsPerSecond = 5
)

// Doer abstracts the HTTP client, so tests can use httptest servers and
// production uses a retrying pester client.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is a rate-limited lookup client shared by the Crossref and
// OpenAlex backends.
type Client struct {
	http     Doer
	limiter  *rate.Limiter
	crossref string
	openalex string
	mailto   string // Contact address sent in the User-Agent (polite pool)
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(d Doer) Option {
	return func(c *Client) { c.http = d }
}

// WithCrossrefBaseURL sets a custom Crossref base URL (for testing).
func WithCrossrefBaseURL(url string) Option {
	return func(c *Client) { c.crossref = url }
}

// WithOpenAlexBaseURL sets a custom OpenAlex base URL (for testing).
func WithOpenAlexBaseURL(url string) Option {
	return func(c *Client) { c.openalex = url }
}

// WithMailto sets the contact address reported to the services.
func WithMailto(addr string) Option {
	return func(c *Client) { c.mailto = addr }
}

// NewClient creates a lookup client with retrying transport and a shared
// rate limiter.
func NewClient(opts ...Option) *Client {
	p := pester.New()
	p.Backoff = pester.ExponentialBackoff
	p.MaxRetries = 3
	p.Timeout = 30 * time.Second

	c := &Client{
		http:     p,
		limiter:  rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		crossref: CrossrefBaseURL,
		openalex: OpenAlexBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// getJSON performs one rate-limited GET and decodes the JSON response.
func (c *Client) getJSON(ctx context.Context, service, url, doi string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	ua := "bibsheet/1.0"
	if c.mailto != "" {
		ua += " (mailto:" + c.mailto + ")"
	}
	req.Header.Set("User-Agent", ua)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s request: %w", service, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s: %w", doi, ErrNotFound)
	case resp.StatusCode == http.StatusTooManyRequests:
		return ErrRateLimited
	case resp.StatusCode != http.StatusOK:
		return &APIError{Service: service, StatusCode: resp.StatusCode, DOI: doi}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", service, err)
	}
	return nil
}
