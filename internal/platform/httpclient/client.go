// Package httpclient provides a standardized HTTP client for outbound calls
// to social platform and peer-service APIs.
package httpclient

import (
	"net/http"
	"time"
)

const (
	// DefaultTimeout is the default request timeout for platform/peer calls.
	DefaultTimeout = 10 * time.Second

	defaultMaxIdleConns        = 100
	defaultMaxIdleConnsPerHost = 10
	defaultIdleConnTimeout     = 90 * time.Second
)

// Config configures an HTTP client.
type Config struct {
	// Timeout bounds the full request/response round trip. Zero means DefaultTimeout.
	Timeout time.Duration
}

// New creates an *http.Client tuned for many short-lived calls to external
// platform/peer APIs: bounded connection pooling and an overall timeout.
func New(cfg Config) *http.Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	transport := &http.Transport{
		MaxIdleConns:        defaultMaxIdleConns,
		MaxIdleConnsPerHost: defaultMaxIdleConnsPerHost,
		IdleConnTimeout:     defaultIdleConnTimeout,
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
