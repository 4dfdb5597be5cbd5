package http

import (
	"time"

	"github.com/go-resty/resty/v2"
)

// ClientOption configures the outbound resty client.
type ClientOption func(*clientConfig)

type clientConfig struct {
	timeout time.Duration
	baseURL string
	retries int
	headers map[string]string
}

// NewClient creates a resty client for calls to external collaborators.
// A zero timeout disables the overall deadline, which streaming reads need.
func NewClient(opts ...ClientOption) *resty.Client {
	cfg := &clientConfig{
		timeout: 30 * time.Second,
		headers: map[string]string{},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	c := resty.New().
		SetTimeout(cfg.timeout).
		SetHeader("User-Agent", "deskstream/1")
	if cfg.baseURL != "" {
		c.SetBaseURL(cfg.baseURL)
	}
	if cfg.retries > 0 {
		c.SetRetryCount(cfg.retries).
			SetRetryWaitTime(200 * time.Millisecond).
			SetRetryMaxWaitTime(2 * time.Second)
	}
	if len(cfg.headers) > 0 {
		c.SetHeaders(cfg.headers)
	}
	return c
}

// WithTimeout sets client timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *clientConfig) {
		c.timeout = timeout
	}
}

func WithBaseURL(u string) ClientOption {
	return func(c *clientConfig) {
		c.baseURL = u
	}
}

// WithRetries retries idempotent requests on transport errors.
func WithRetries(n int) ClientOption {
	return func(c *clientConfig) {
		c.retries = n
	}
}

func WithHeader(key, value string) ClientOption {
	return func(c *clientConfig) {
		c.headers[key] = value
	}
}
