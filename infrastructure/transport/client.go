package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"blogclient/infrastructure/config"
	apperrors "blogclient/pkg/errors"
)

// Client wraps outbound HTTP calls to the blogging API. It owns the
// base endpoint, injects the bearer token on every request when one is
// set, stamps each request with an X-Request-ID, and maps responses to
// the typed error taxonomy. Safe for concurrent use.
type Client struct {
	httpClient *http.Client
	logger     *zap.Logger
	breaker    *gobreaker.CircuitBreaker

	mu      sync.RWMutex
	baseURL string
	token   string
}

// NewClient creates a transport client from configuration.
func NewClient(cfg *config.Config, logger *zap.Logger) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		logger:     logger,
		baseURL:    strings.TrimRight(cfg.APIBaseURL, "/"),
	}

	if cfg.BreakerEnabled {
		c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "blog-api",
			MaxRequests: 5,
			Interval:    30 * time.Second,
			Timeout:     60 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				if counts.Requests < 5 {
					return false
				}
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return failureRatio >= 0.8
			},
			OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
				logger.Warn("Circuit breaker state changed",
					zap.String("breaker", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()),
				)
			},
		})
	}

	return c
}

// SetToken installs the bearer token used for all future requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// ClearToken removes the bearer token.
func (c *Client) ClearToken() {
	c.SetToken("")
}

// Token returns the currently installed bearer token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetBaseURL swaps the base endpoint. Used by config hot reload.
func (c *Client) SetBaseURL(base string) {
	c.mu.Lock()
	c.baseURL = strings.TrimRight(base, "/")
	c.mu.Unlock()
}

// Get issues a GET request and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, out interface{}) error {
	return c.doJSON(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out interface{}) error {
	return c.doJSON(ctx, http.MethodPost, path, body, out)
}

// Put issues a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out interface{}) error {
	return c.doJSON(ctx, http.MethodPut, path, body, out)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, out interface{}) error {
	return c.doJSON(ctx, http.MethodDelete, path, nil, out)
}

// FileField describes the file part of a multipart upload.
type FileField struct {
	Field    string
	Filename string
	Reader   io.Reader
}

// PostMultipart issues a POST with a multipart/form-data body made of
// text fields plus one file part.
func (c *Client) PostMultipart(ctx context.Context, path string, fields map[string]string, file FileField, out interface{}) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return apperrors.NewInternalError("failed to encode multipart field").WithCause(err)
		}
	}
	if file.Reader != nil {
		part, err := mw.CreateFormFile(file.Field, file.Filename)
		if err != nil {
			return apperrors.NewInternalError("failed to create multipart file part").WithCause(err)
		}
		if _, err := io.Copy(part, file.Reader); err != nil {
			return apperrors.NewInternalError("failed to copy multipart file").WithCause(err)
		}
	}
	if err := mw.Close(); err != nil {
		return apperrors.NewInternalError("failed to finalize multipart body").WithCause(err)
	}

	return c.do(ctx, http.MethodPost, path, mw.FormDataContentType(), &buf, out)
}

// doJSON encodes body as JSON (when present) and executes the request.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return apperrors.NewInternalError("failed to encode request body").WithCause(err)
		}
		reader = bytes.NewReader(data)
	}
	return c.do(ctx, method, path, "application/json", reader, out)
}

// do builds, executes and decodes a single request.
func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, out interface{}) error {
	c.mu.RLock()
	base := c.baseURL
	token := c.token
	c.mu.RUnlock()

	url := base + path
	requestID := uuid.NewString()

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return apperrors.NewInternalError("failed to build request").WithCause(err)
	}
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.execute(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.Warn("Request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", requestID),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return mapTransportError(method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("Request completed",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.String("request_id", requestID),
		zap.Duration("duration", duration),
	)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.NewNetworkError("failed to read response body", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apperrors.FromStatus(resp.StatusCode, serverMessage(data))
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return apperrors.NewInternalError(
			fmt.Sprintf("failed to decode response from %s %s", method, path),
		).WithCause(err)
	}
	return nil
}

// execute runs the request, through the circuit breaker when enabled.
// Only transport failures and 5xx responses count against the breaker;
// 4xx means the server is alive and answering.
func (c *Client) execute(req *http.Request) (*http.Response, error) {
	if c.breaker == nil {
		return c.httpClient.Do(req)
	}

	result, err := c.breaker.Execute(func() (any, error) {
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 500 {
			// Report the failure with the response still attached so
			// the caller can read the error body.
			return resp, &serverError{status: resp.StatusCode, resp: resp}
		}
		return resp, nil
	})

	var srvErr *serverError
	if errors.As(err, &srvErr) {
		return srvErr.resp, nil
	}
	if err != nil {
		return nil, err
	}
	return result.(*http.Response), nil
}

// serverError lets a 5xx response count as a breaker failure while the
// caller still receives the response itself.
type serverError struct {
	status int
	resp   *http.Response
}

func (e *serverError) Error() string {
	return fmt.Sprintf("server returned status %d", e.status)
}

// mapTransportError converts low-level failures into typed errors.
func mapTransportError(method, path string, err error) error {
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return apperrors.NewUnavailableError("blog-api").WithCause(err)
	case errors.Is(err, context.DeadlineExceeded):
		return &apperrors.AppError{
			Type:    apperrors.ErrorTypeTimeout,
			Message: fmt.Sprintf("operation '%s %s' timed out", method, path),
			Cause:   err,
		}
	case errors.Is(err, context.Canceled):
		return apperrors.NewInternalError("request canceled").WithCause(err)
	default:
		return apperrors.NewNetworkError(fmt.Sprintf("request to %s %s failed", method, path), err)
	}
}

// serverMessage pulls a human-readable message out of an error body.
// The API answers with {"message": ...} most of the time, {"error": ...}
// occasionally.
func serverMessage(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	var envelope struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return ""
	}
	if envelope.Message != "" {
		return envelope.Message
	}
	return envelope.Error
}
