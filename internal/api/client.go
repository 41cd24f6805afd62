// Package api is the REST client for the Pawsitive Drive backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/net/publicsuffix"
)

const (
	// HeaderRequestID carries a per-request correlation id.
	HeaderRequestID = "X-Request-ID"
	// HeaderUserID names the signed-in principal to the backend.
	HeaderUserID = "X-User-Id"
)

// Client talks to the backend REST API rooted at baseURL.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	principal  func() int64
}

// NewClient creates a client for baseURL, e.g. http://localhost:8080/api.
// A non-positive timeout disables the per-request deadline.
func NewClient(baseURL string, timeout time.Duration) *Client {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		log.WithError(err).Warn("api: cookie jar unavailable")
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		timeout:    timeout,
		httpClient: &http.Client{Jar: jar},
	}
}

// SetHTTPClient sets a custom HTTP client (useful for testing or proxy support).
func (c *Client) SetHTTPClient(client *http.Client) {
	if client != nil {
		c.httpClient = client
	}
}

// SetPrincipal installs a function returning the signed-in user id; when it
// returns a positive id the id is sent on every request.
func (c *Client) SetPrincipal(fn func() int64) {
	c.principal = fn
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	body, err := c.do(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return err
	}
	return decode(http.MethodGet, path, body, out)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, payload []byte, out any) error {
	body, err := c.do(ctx, method, path, payload, "application/json")
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return decode(method, path, body, out)
}

// do executes one round trip and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, method, path string, payload []byte, contentType string) ([]byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Method: method, Path: path, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	requestID := uuid.NewString()
	req.Header.Set(HeaderRequestID, requestID)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.principal != nil {
		if id := c.principal(); id > 0 {
			req.Header.Set(HeaderUserID, fmt.Sprint(id))
		}
	}

	entry := log.WithFields(log.Fields{
		"method":     method,
		"path":       path,
		"request_id": requestID,
	})
	entry.Debug("api request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		entry.WithError(err).Debug("api request got no response")
		return nil, &Error{Kind: KindUnreachable, Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindUnreachable, Method: method, Path: path, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{
			Kind:          KindServer,
			Method:        method,
			Path:          path,
			Status:        resp.StatusCode,
			ServerMessage: extractServerMessage(body),
			Body:          body,
		}
		entry.WithField("status", resp.StatusCode).Debug("api request rejected")
		return nil, apiErr
	}
	return body, nil
}

// upload posts a single file as multipart field "file".
func (c *Client) upload(ctx context.Context, path, filename string, r io.Reader) (*UploadResult, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Method: http.MethodPost, Path: path, Err: err}
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, &Error{Kind: KindNetwork, Method: http.MethodPost, Path: path, Err: fmt.Errorf("failed to read upload: %w", err)}
	}
	if err := writer.Close(); err != nil {
		return nil, &Error{Kind: KindNetwork, Method: http.MethodPost, Path: path, Err: err}
	}

	body, err := c.do(ctx, http.MethodPost, path, buf.Bytes(), writer.FormDataContentType())
	if err != nil {
		return nil, err
	}
	var result UploadResult
	if err := decode(http.MethodPost, path, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func decode(method, path string, body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return &Error{Kind: KindNetwork, Method: method, Path: path, Body: body, Err: fmt.Errorf("failed to parse response: %w", err)}
	}
	return nil
}
