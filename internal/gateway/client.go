// Package gateway is the HTTP client for the upstream ticketing API. It
// implements the domain gateway interfaces and maps upstream error
// payloads onto structured domain errors, so callers never have to
// inspect response bodies or message text.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cinefilo/booking-flow/internal/domain"
)

const defaultTimeout = 10 * time.Second

type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

func (c *Client) do(ctx context.Context, method, path string, headers map[string]string, body, dst any) error {
	var reqBody io.Reader

	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding %s %s request: %w", method, path, err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUpstreamFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.decodeError(resp)
	}

	if dst != nil {
		if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
			return fmt.Errorf("decoding %s %s response: %w", method, path, err)
		}
	}

	return nil
}

// decodeError maps an upstream error response to a domain error.
// Conflicts are recognized structurally: a 409 status, a "seat_conflict"
// error code, or a field-level error on "seats" in a 400 payload.
func (c *Client) decodeError(resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: reading error response: %v", domain.ErrUpstreamFailure, err)
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		return domain.ErrShowtimeNotFound
	case http.StatusConflict:
		return domain.ErrSeatConflict
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return decodeFieldErrors(body)
	default:
		c.logger.Error("upstream request failed",
			"status", resp.StatusCode,
			"url", resp.Request.URL.Redacted(),
		)

		return fmt.Errorf("%w: status %d", domain.ErrUpstreamFailure, resp.StatusCode)
	}
}

// decodeFieldErrors parses the upstream validation payload, a map of
// field name to message or list of messages. A "seat_conflict" code or
// an error on the seats field is a conflict, not a validation problem.
func decodeFieldErrors(body []byte) error {
	var raw map[string]json.RawMessage

	if err := json.Unmarshal(body, &raw); err != nil {
		return &domain.ValidationError{}
	}

	if code, ok := raw["code"]; ok {
		var codeStr string
		if json.Unmarshal(code, &codeStr) == nil && codeStr == "seat_conflict" {
			return domain.ErrSeatConflict
		}
	}

	fields := make(map[string][]string, len(raw))

	for name, msg := range raw {
		var list []string
		if err := json.Unmarshal(msg, &list); err == nil {
			fields[name] = list
			continue
		}

		var single string
		if err := json.Unmarshal(msg, &single); err == nil {
			fields[name] = []string{single}
		}
	}

	if _, ok := fields["seats"]; ok {
		return domain.ErrSeatConflict
	}

	return &domain.ValidationError{Fields: fields}
}
