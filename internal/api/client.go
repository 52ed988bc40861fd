// Package api is the thin HTTP client for the company backend. It augments
// every request with the persisted bearer token, forces a logout on any 401,
// and maps transport failures to a small error taxonomy the UI can toast.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TokenSource supplies the bearer token and clears it when the backend
// rejects it. *session.Store satisfies this.
type TokenSource interface {
	Token() string
	Clear() error
}

// Client talks JSON to the REST backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource

	// onExpired runs after a 401 has cleared the session, so the UI can
	// navigate to the login boundary. May be nil.
	onExpired func()
}

// NewClient creates a Client against baseURL with a fixed request timeout.
func NewClient(baseURL string, timeout time.Duration, tokens TokenSource) *Client {
	if timeout <= 0 {
		timeout = 12 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		tokens:     tokens,
	}
}

// OnSessionExpired registers the hook invoked after any 401.
func (c *Client) OnSessionExpired(fn func()) { c.onExpired = fn }

// errorBody is the backend's rejection envelope.
type errorBody struct {
	Mensaje string `json:"mensaje"`
	Message string `json:"message"`
}

// get issues a GET with one silent retry on network error.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	err := c.do(ctx, http.MethodGet, path, query, nil, out)
	if err == nil || !retryable(err) {
		return err
	}
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

// post issues a mutation. Mutations are never retried: a duplicate POST could
// create a second invoice or intake record.
func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) patch(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPatch, path, nil, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("serializando payload: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("creando request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if method != http.MethodGet {
		// Lets the backend de-duplicate a mutation that arrives twice.
		req.Header.Set("X-Request-ID", uuid.NewString())
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyTransportError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("leyendo respuesta: %w", err)
	}

	// A 401 on the login endpoint itself means bad credentials, not an
	// expired session; it falls through to the normal rejection envelope.
	if resp.StatusCode == http.StatusUnauthorized && path != loginPath {
		// Force the login boundary: drop the persisted session first so no
		// later request reuses the rejected token.
		_ = c.tokens.Clear()
		if c.onExpired != nil {
			c.onExpired()
		}
		return ErrSesionExpirada
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Endpoint: path}
		var eb errorBody
		if json.Unmarshal(respBody, &eb) == nil {
			if eb.Mensaje != "" {
				apiErr.Mensaje = eb.Mensaje
			} else {
				apiErr.Mensaje = eb.Message
			}
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("deserializando respuesta de %s: %w", path, err)
	}
	return nil
}

// classifyTransportError maps transport failures onto the sentinel taxonomy.
func classifyTransportError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return ErrTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	var netErr *net.OpError
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", ErrNoDisponible, netErr)
	}
	return fmt.Errorf("%w: %v", ErrNoDisponible, err)
}

// retryable reports whether a GET may be silently reissued once. Timeouts
// are not retried: the fixed window already elapsed.
func retryable(err error) bool {
	return errors.Is(err, ErrNoDisponible)
}
