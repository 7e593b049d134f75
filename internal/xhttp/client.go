package xhttp

import (
	"net/http"
	"time"
)

type clientConfig struct {
	timeout   time.Duration
	sessionID string
}

type ClientOption func(*clientConfig)

func WithTimeout(d time.Duration) ClientOption {
	return func(c *clientConfig) { c.timeout = d }
}

func WithSessionID(id string) ClientOption {
	return func(c *clientConfig) { c.sessionID = id }
}

func NewHTTPClient(opts ...ClientOption) *http.Client {
	var cfg clientConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return &http.Client{
		Transport: NewTransport(cfg.sessionID),
		Timeout:   cfg.timeout,
	}
}
