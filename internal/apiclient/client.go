// Package apiclient is the only path to the backend REST API. It attaches
// the current session token to every request and normalizes every failure
// into one error shape.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"studyhub/client/internal/config"
)

// TokenSource returns the live session token, or "" when signed out. It is
// re-read on every request so the client never holds a stale snapshot.
type TokenSource func() string

type Client struct {
	baseURL string
	http    *http.Client
	token   TokenSource
	log     zerolog.Logger
}

func New(cfg config.BackendConfig, token TokenSource, log zerolog.Logger) *Client {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		token:   token,
		log:     log,
	}
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	raw, err := c.doRaw(ctx, method, path, body)
	if err != nil {
		return err
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

// doList is do for list-valued responses; it strips the optional $values
// envelope before decoding into out (a pointer to a slice).
func (c *Client) doList(ctx context.Context, method, path string, body any, out any) error {
	raw, err := c.doRaw(ctx, method, path, body)
	if err != nil {
		return err
	}
	return decodeList(raw, out)
}

func (c *Client) doRaw(ctx context.Context, method, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal %s %s request: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build %s %s request: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())

	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	} else {
		c.log.Warn().Str("method", method).Str("path", path).
			Msg("request sent without session token")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, fmt.Errorf("read %s %s response: %w", method, path, err)
	}

	if resp.StatusCode >= 400 {
		return nil, c.normalizeError(resp.StatusCode, resp.Header.Get("Content-Type"), raw)
	}
	return raw, nil
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Error   string `json:"error"`
	Title   string `json:"title"`
}

// normalizeError turns any failure body, including binary blob payloads,
// into an *APIError. Downstream code only ever matches on that shape.
func (c *Client) normalizeError(status int, contentType string, raw []byte) error {
	apiErr := &APIError{Status: status, Message: http.StatusText(status)}

	text := raw
	if !utf8.Valid(text) {
		text = bytes.ToValidUTF8(text, nil)
	}

	var body errorBody
	if err := json.Unmarshal(text, &body); err == nil {
		apiErr.Code = body.Code
		switch {
		case body.Message != "":
			apiErr.Message = body.Message
		case body.Error != "":
			apiErr.Message = body.Error
		case body.Title != "":
			apiErr.Message = body.Title
		}
	} else if msg := strings.TrimSpace(string(text)); msg != "" && len(msg) < 512 {
		apiErr.Message = msg
	}

	c.log.Debug().Int("status", status).Str("content_type", contentType).
		Str("message", apiErr.Message).Msg("backend error normalized")
	return apiErr
}
