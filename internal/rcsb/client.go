// Package rcsb talks to the RCSB Protein Data Bank: full-text identifier
// search, GraphQL entry metadata and coordinate file downloads.
package rcsb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/time/rate"

	"github.com/pders01/pdbscope/internal/config"
	"github.com/pders01/pdbscope/internal/debuglog"
)

// PageSize is the number of identifiers requested per search round-trip.
const PageSize = 10

// maxBody caps how much of a response is read; coordinate files for large
// assemblies run to tens of megabytes.
const maxBody = 64 << 20

// StatusError is returned for non-2xx responses.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP error: %d (%s)", e.StatusCode, e.URL)
}

type Client struct {
	searchURL  string
	graphqlURL string
	filesURL   string
	userAgent  string
	http       *http.Client
	limiter    *rate.Limiter
	log        *debuglog.FieldLogger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// NewClient builds a client from the api section of the configuration. A
// RequestsPerSecond of zero disables rate limiting.
func NewClient(cfg config.APIConfig, opts ...Option) *Client {
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	c := &Client{
		searchURL:  cfg.SearchURL,
		graphqlURL: cfg.GraphQLURL,
		filesURL:   strings.TrimRight(cfg.FilesURL, "/"),
		userAgent:  cfg.UserAgent,
		http:       &http.Client{Timeout: cfg.HTTPTimeout},
		limiter:    rate.NewLimiter(limit, 1),
		log:        debuglog.With("component", "rcsb"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StructureURL is where the PDB-format coordinates of id are served.
func (c *Client) StructureURL(id string) string {
	return fmt.Sprintf("%s/%s.pdb", c.filesURL, strings.ToUpper(id))
}

// postJSON sends body as JSON and decodes the reply into out. It reports
// false when the server answered 204 No Content.
func (c *Client) postJSON(ctx context.Context, url string, body, out any) (bool, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return false, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return false, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	data, status, err := c.do(req)
	if err != nil {
		return false, err
	}
	if status == http.StatusNoContent || len(bytes.TrimSpace(data)) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("decoding response: %w", err)
	}
	return true, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	data, _, err := c.do(req)
	return data, err
}

func (c *Client) do(req *http.Request) ([]byte, int, error) {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return nil, 0, fmt.Errorf("waiting for rate limiter: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	c.log.Debugf("%s %s", req.Method, req.URL)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, resp.StatusCode, &StatusError{URL: req.URL.String(), StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("reading response: %w", err)
	}
	return data, resp.StatusCode, nil
}
