package source

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"listing-mirror/core/reconcile"

	"github.com/imroc/req/v3"
)

// StatusError is returned when the publisher answers with an error status.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream %s returned status %d", e.URL, e.Code)
}

// Client talks to the upstream publisher. It is the fetch capability of the
// reconcile executor.
type Client struct {
	http        *req.Client
	base        *url.URL
	listingPath string
}

var _ reconcile.Fetcher = (*Client)(nil)

// NewClient creates an upstream client from the configuration.
func NewClient(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimSpace(cfg.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", cfg.BaseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base url %q: scheme and host are required", cfg.BaseURL)
	}

	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}

	return &Client{
		http:        NewHTTPClient(cfg.UserAgent, time.Duration(timeout)*time.Second, cfg.RetryCount),
		base:        base,
		listingPath: cfg.ListingPath,
	}, nil
}

// NewHTTPClient builds the shared req client: fixed user agent, per-request
// timeout and transport-level retries on network errors and 5xx answers.
func NewHTTPClient(userAgent string, timeout time.Duration, retries int) *req.Client {
	c := req.C().
		SetTimeout(timeout).
		SetCommonRetryCount(retries).
		SetCommonRetryFixedInterval(time.Second).
		SetCommonRetryCondition(func(resp *req.Response, err error) bool {
			return err != nil || (resp != nil && resp.StatusCode >= 500)
		})
	if userAgent != "" {
		c.SetUserAgent(userAgent)
	}
	return c
}

// Resolve turns a fetch reference (absolute URL or path) into a URL.
func (c *Client) Resolve(ref string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return "", fmt.Errorf("invalid fetch reference %q: %w", ref, err)
	}
	return c.base.ResolveReference(u).String(), nil
}

// Listing downloads and parses the configured directory listing.
func (c *Client) Listing(ctx context.Context) ([]reconcile.RawEntry, error) {
	body, err := c.Fetch(ctx, c.listingPath)
	if err != nil {
		return nil, fmt.Errorf("failed to download listing: %w", err)
	}
	entries, err := ParseListing(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse listing: %w", err)
	}
	return entries, nil
}

// Fetch downloads the bytes behind a fetch reference.
func (c *Client) Fetch(ctx context.Context, ref string) ([]byte, error) {
	target, err := c.Resolve(ref)
	if err != nil {
		return nil, err
	}
	return Get(ctx, c.http, target)
}

// Get performs a GET with the given client and returns the body.
func Get(ctx context.Context, client *req.Client, target string) ([]byte, error) {
	resp, err := client.R().
		SetContext(ctx).
		Get(target)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", target, err)
	}
	if resp.IsErrorState() {
		return nil, &StatusError{URL: target, Code: resp.StatusCode}
	}
	return resp.Bytes(), nil
}
