// Package openlibrary fetches JSON records from the Open Library catalog.
package openlibrary

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/segmentio/encoding/json"
	"github.com/shelfmark/shelfmark/pkg/config"
	"github.com/shelfmark/shelfmark/pkg/version"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL           = "https://openlibrary.org"
	DefaultTimeout           = 5 * time.Second
	DefaultRequestsPerSecond = 5

	// maxBodyBytes bounds how much of a response is read.
	maxBodyBytes = 4 << 20
)

type Options struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	// HTTPClient defaults to a client without its own timeout; every call is
	// bounded by Timeout through its context instead.
	HTTPClient *http.Client
}

type Client struct {
	http    *http.Client
	limiter *rate.Limiter
	baseURL string
	timeout time.Duration
}

func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	burst := int(opts.RequestsPerSecond)
	if burst < 1 {
		burst = 1
	}
	return &Client{
		http:    opts.HTTPClient,
		limiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst),
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		timeout: opts.Timeout,
	}
}

func NewFromConfig(cfg *config.Config) *Client {
	return NewClient(Options{
		BaseURL:           cfg.OpenLibraryBaseURL,
		Timeout:           cfg.MetadataFetchTimeout,
		RequestsPerSecond: cfg.MetadataRequestsPerSecond,
	})
}

// BaseURL is the origin that relative resource keys such as author keys are
// resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ResolveKey turns a resource key like "/authors/OL19981A" into an absolute
// URL.
func (c *Client) ResolveKey(key string) string {
	if !strings.HasPrefix(key, "/") {
		key = "/" + key
	}
	return c.baseURL + key
}

// FetchJSON issues a GET for rawURL and decodes the body as a JSON object.
// Every failure is a *FetchError. No retries or caching are done here.
func (c *Client) FetchJSON(ctx context.Context, rawURL string) (Document, error) {
	log := logger.FromContext(ctx)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &FetchError{Kind: KindUnreachable, URL: rawURL, Err: errors.Wrap(err, "rate limit wait")}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &FetchError{Kind: KindUnreachable, URL: rawURL, Err: errors.WithStack(err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "shelfmark/"+version.Version)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &FetchError{Kind: KindUnreachable, URL: rawURL, Err: errors.WithStack(err)}
	}
	defer func() { _ = resp.Body.Close() }()

	log.Debug("open library fetch", logger.Data{
		"url":         rawURL,
		"status":      resp.StatusCode,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, &FetchError{Kind: KindHTTPStatus, URL: rawURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &FetchError{Kind: KindUnreachable, URL: rawURL, StatusCode: resp.StatusCode, Err: errors.WithStack(err)}
	}

	var doc Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, &FetchError{Kind: KindDecode, URL: rawURL, StatusCode: resp.StatusCode, Err: errors.WithStack(err)}
	}
	if doc == nil {
		return nil, &FetchError{Kind: KindDecode, URL: rawURL, StatusCode: resp.StatusCode, Err: errors.New("body is not a JSON object")}
	}
	return doc, nil
}
