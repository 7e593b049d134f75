package panel

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	panelsvc "github.com/garrettladley/wext/internal/service/panel"
	"github.com/garrettladley/wext/internal/xhttp"
	go_json "github.com/goccy/go-json"
)

const defaultTimeout = 10 * time.Second

// APIError is a non-2xx answer from the panel daemon.
type APIError struct {
	StatusCode int
	Code       string `json:"error"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("panel api: unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("panel api: %s (%d): %s", e.Code, e.StatusCode, e.Message)
}

// Client drives the panel of one session over the HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, sessionID string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: xhttp.NewHTTPClient(xhttp.WithTimeout(defaultTimeout), xhttp.WithSessionID(sessionID)),
	}
}

func (c *Client) Get(ctx context.Context) (panelsvc.Snapshot, error) {
	return c.do(ctx, http.MethodGet, "/api/panel", nil)
}

// Select activates a toolbar control by element id or view name.
func (c *Client) Select(ctx context.Context, control string) (panelsvc.Snapshot, error) {
	return c.do(ctx, http.MethodPost, "/api/panel/toolbar/"+url.PathEscape(control), nil)
}

// Toggle flips a checkbox block, or sets it when checked is non-nil.
func (c *Client) Toggle(ctx context.Context, checkbox string, checked *bool) (panelsvc.Snapshot, error) {
	var body any
	if checked != nil {
		body = struct {
			Checked bool `json:"checked"`
		}{Checked: *checked}
	}
	return c.do(ctx, http.MethodPost, "/api/panel/checkbox/"+url.PathEscape(checkbox), body)
}

func (c *Client) Reset(ctx context.Context) (panelsvc.Snapshot, error) {
	return c.do(ctx, http.MethodPost, "/api/panel/reset", nil)
}

func (c *Client) do(ctx context.Context, method, path string, body any) (panelsvc.Snapshot, error) {
	var reader io.Reader
	if body != nil {
		data, err := go_json.Marshal(body)
		if err != nil {
			return panelsvc.Snapshot{}, fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return panelsvc.Snapshot{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", xhttp.MIMEApplicationJSON)
	if body != nil {
		req.Header.Set(xhttp.ContentType, xhttp.MIMEApplicationJSON)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return panelsvc.Snapshot{}, fmt.Errorf("executing request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		// the body is informational
		_ = go_json.NewDecoder(resp.Body).Decode(apiErr)
		return panelsvc.Snapshot{}, apiErr
	}

	var snap panelsvc.Snapshot
	if err := go_json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return panelsvc.Snapshot{}, fmt.Errorf("decoding response: %w", err)
	}
	return snap, nil
}
