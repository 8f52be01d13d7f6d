package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"pokedex-mcp/internal/pokemon"
)

const (
	DefaultBaseURL   = "https://pokeapi.co/api/v2"
	DefaultUserAgent = "Pokemon-MCP-Server/1.0"
	DefaultTimeout   = 5 * time.Second
)

// errNotFound is translated by each endpoint into a NotFoundError naming
// the requested resource.
var errNotFound = errors.New("resource not found")

type Client struct {
	HTTP      *http.Client
	BaseURL   string
	UserAgent string
	Logger    *slog.Logger
}

type Options struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	Logger    *slog.Logger
}

func NewClient(opts Options) *Client {
	base := strings.TrimSpace(opts.BaseURL)
	if base == "" {
		base = DefaultBaseURL
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		HTTP:      &http.Client{Timeout: timeout},
		BaseURL:   strings.TrimRight(base, "/"),
		UserAgent: ua,
		Logger:    logger,
	}
}

// FetchRaw issues a single GET for urlPath (like "/pokemon/pikachu") and
// returns the body. There are no retries.
func (c *Client) FetchRaw(ctx context.Context, urlPath string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+urlPath, nil)
	if err != nil {
		return nil, &pokemon.UpstreamError{Kind: pokemon.KindNetwork, Err: err}
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		c.Logger.Warn("pokeapi request failed", "path", urlPath, "error", err)
		return nil, &pokemon.UpstreamError{Kind: pokemon.KindNetwork, Err: err}
	}
	defer resp.Body.Close()

	c.Logger.Debug("pokeapi request", "path", urlPath, "status", resp.StatusCode, "latency_ms", time.Since(start).Milliseconds())

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, errNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &pokemon.UpstreamError{Kind: pokemon.KindRateLimited, Status: resp.StatusCode}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		c.Logger.Warn("pokeapi non-2xx", "path", urlPath, "status", resp.StatusCode, "body", string(payload))
		return nil, &pokemon.UpstreamError{
			Kind:    pokemon.KindStatus,
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("request failed with status code %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &pokemon.UpstreamError{Kind: pokemon.KindNetwork, Err: err}
	}
	return body, nil
}
