// Package store talks to the backend hierarchical key-value store over its
// REST surface: GET/PUT/PATCH {base}/{path}.json with optional ?auth=<secret>.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	errs "github.com/medinet/credgate/internal/errors"
	"github.com/medinet/credgate/pkg/metrics"
)

const defaultTimeout = 10 * time.Second

// Config defines connection parameters for the backend store.
type Config struct {
	BaseURL string        `mapstructure:"base_url" validate:"required,url"`
	Secret  string        `mapstructure:"secret"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Client is an HTTP client bound to one store instance.
type Client struct {
	baseURL string
	secret  string
	http    *http.Client
	breaker *errs.CircuitBreaker
	log     *slog.Logger
}

// New creates a store client. The timeout bounds every request; requests are
// additionally cancelled when the caller's context is done.
func New(cfg Config, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL: trimTrailingSlash(cfg.BaseURL),
		secret:  cfg.Secret,
		http:    &http.Client{Timeout: timeout},
		breaker: errs.NewCircuitBreaker(),
		log:     log,
	}
}

// Get reads the value at path into out. A missing node is reported as
// found=false with a nil error, matching the store's null response.
func (c *Client) Get(ctx context.Context, path string, out any) (bool, error) {
	body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return false, err
	}

	if isNull(body) {
		return false, nil
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			c.log.Error("failed to decode store response", slog.String("path", path), slog.Any("error", err))
			return false, errs.NewStoreError("decode", err)
		}
	}

	return true, nil
}

// Put replaces the value at path.
func (c *Client) Put(ctx context.Context, path string, value any) error {
	_, err := c.do(ctx, http.MethodPut, path, value)
	return err
}

// Patch merges the given top-level fields into the value at path.
func (c *Client) Patch(ctx context.Context, path string, fields map[string]any) error {
	_, err := c.do(ctx, http.MethodPatch, path, fields)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var body []byte

	err := c.breaker.Call(func() error {
		var reqBody io.Reader
		if payload != nil {
			encoded, err := json.Marshal(payload)
			if err != nil {
				return fmt.Errorf("encode payload: %w", err)
			}
			reqBody = bytes.NewReader(encoded)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.url(path), reqBody)
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			metrics.RecordStoreRequest(method, "transport_error")
			return err
		}
		defer func() { _ = resp.Body.Close() }()

		metrics.RecordStoreRequest(method, strconv.Itoa(resp.StatusCode))

		if resp.StatusCode != http.StatusOK {
			c.log.Error("store request failed",
				slog.String("method", method),
				slog.String("path", path),
				slog.Int("status", resp.StatusCode),
			)
			return fmt.Errorf("unexpected status %d", resp.StatusCode)
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, errs.NewStoreError(method, err)
	}

	return body, nil
}

func (c *Client) url(path string) string {
	u := c.baseURL + "/" + path + ".json"
	if c.secret != "" {
		u += "?auth=" + c.secret
	}
	return u
}

func isNull(body []byte) bool {
	return len(bytes.TrimSpace(body)) == 0 || bytes.Equal(bytes.TrimSpace(body), []byte("null"))
}

func trimTrailingSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}
