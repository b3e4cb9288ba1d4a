// ABOUTME: HTTP client for the leasing agent chat API
// ABOUTME: Handles bearer auth, JSON bodies and error responses for every endpoint

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/2389/leasing-chat/internal/auth"
	"github.com/2389/leasing-chat/internal/config"
)

const (
	communitiesPath = "/api/v1/chat/communities"
	startPath       = "/api/v1/chat/start"
	replyPath       = "/api/v1/chat/reply"

	// maxErrorBody caps how much of a failed response is read for the message.
	maxErrorBody = 64 << 10
)

// APIError is a non-200 response from the agent.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("agent returned status %d: %s", e.StatusCode, e.Message)
}

// Client talks to the leasing agent over HTTP.
type Client struct {
	baseURL        string
	token          string
	http           *http.Client
	requestTimeout time.Duration
	logger         *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a client for the agent described by cfg. Pass nil logger for
// default.
func New(cfg config.AgentConfig, logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		baseURL:        strings.TrimSuffix(cfg.BaseURL, "/"),
		token:          cfg.Token,
		http:           &http.Client{},
		requestTimeout: cfg.RequestTimeout,
		logger:         logger.With("component", "client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// newRequest builds a request with JSON body and bearer token. body may be nil.
func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	if err := c.checkToken(); err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

// checkToken fails fast on an expired JWT. Opaque tokens pass through.
func (c *Client) checkToken() error {
	if c.token == "" {
		return nil
	}
	if _, err := auth.Inspect(c.token); err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			return fmt.Errorf("agent token: %w", err)
		}
	}
	return nil
}

// doJSON performs a bounded request/response call and decodes the JSON
// reply into out.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	if c.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.requestTimeout)
		defer cancel()
	}

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return handleErrorResponse(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// handleErrorResponse extracts the error message from non-200 responses.
func handleErrorResponse(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	// Try to parse as JSON error
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		var errResp struct {
			Error  string `json:"error"`
			Detail string `json:"detail"`
		}
		if json.Unmarshal(body, &errResp) == nil {
			if errResp.Error != "" {
				return &APIError{StatusCode: resp.StatusCode, Message: errResp.Error}
			}
			if errResp.Detail != "" {
				return &APIError{StatusCode: resp.StatusCode, Message: errResp.Detail}
			}
		}
	}

	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &APIError{StatusCode: resp.StatusCode, Message: msg}
}
