// Package apiclient talks to the external quiz REST API.
package apiclient

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

	"golang.org/x/sync/singleflight"

	"quizmaster/internal/domain"
)

const defaultBaseURL = "http://localhost:8000/api"

// APIError is a non-2xx answer from the quiz API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if strings.TrimSpace(e.Message) == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return e.Message
}

// Unwrap maps well-known status codes onto domain errors.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusNotFound:
		return domain.ErrQuizNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.ErrUnauthorized
	}
	return nil
}

// Client is the quiz API client. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	creds      *Credentials
	logger     *slog.Logger
	refreshSF  singleflight.Group
}

type errorResponse struct {
	Detail string `json:"detail"`
	Error  string `json:"error"`
}

// NewClient builds a client. creds may be nil for anonymous, read-only use.
func NewClient(baseURL string, httpClient *http.Client, creds *Credentials, logger *slog.Logger) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if creds == nil {
		creds = NewCredentials("", "")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		creds:      creds,
		logger:     logger,
	}
}

// Credentials returns the credential context the client authenticates with.
func (c *Client) Credentials() *Credentials {
	return c.creds
}

// doJSON sends an authenticated request. A 401 triggers one token refresh
// and a single retry; if that fails the stored tokens are dropped and
// domain.ErrUnauthorized is returned. Quiz reads are public, so a GET whose
// credentials cannot be renewed is retried once anonymously instead.
func (c *Client) doJSON(ctx context.Context, method, path string, requestBody any, responseBody any) error {
	if c.creds.AccessExpired() && c.creds.RefreshToken() != "" {
		if err := c.refresh(ctx); err != nil {
			return c.readAnonymously(ctx, method, path, responseBody, err)
		}
	}

	token := c.creds.Access()
	err := c.send(ctx, method, path, requestBody, responseBody, token)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized || token == "" {
		return err
	}
	if c.creds.RefreshToken() == "" {
		c.creds.Clear()
		return c.readAnonymously(ctx, method, path, responseBody, err)
	}

	c.logger.Debug("access token rejected, refreshing", "path", path)
	if err := c.refresh(ctx); err != nil {
		return c.readAnonymously(ctx, method, path, responseBody, err)
	}
	err = c.send(ctx, method, path, requestBody, responseBody, c.creds.Access())
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
		c.creds.Clear()
		return c.readAnonymously(ctx, method, path, responseBody, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err))
	}
	return err
}

// readAnonymously retries a GET without a token. Other methods get authErr back.
func (c *Client) readAnonymously(ctx context.Context, method, path string, responseBody any, authErr error) error {
	if method != http.MethodGet {
		return authErr
	}
	c.logger.Info("credentials rejected, reading anonymously", "path", path)
	return c.send(ctx, method, path, nil, responseBody, "")
}

func (c *Client) send(ctx context.Context, method, path string, requestBody any, responseBody any, token string) error {
	fullURL := c.baseURL + path

	var body io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return err
		}
		body = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return err
	}
	request.Header.Set("Accept", "application/json")
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrServiceUnavailable, err)
	}
	defer response.Body.Close()
	c.logger.Debug("quiz api request", "method", method, "path", path, "status", response.StatusCode)

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		apiErr := APIError{StatusCode: response.StatusCode}
		var payload errorResponse
		if err := json.NewDecoder(response.Body).Decode(&payload); err == nil {
			apiErr.Message = strings.TrimSpace(payload.Detail)
			if apiErr.Message == "" {
				apiErr.Message = strings.TrimSpace(payload.Error)
			}
		}
		if apiErr.Message == "" {
			apiErr.Message = response.Status
		}
		return &apiErr
	}

	if responseBody == nil {
		return nil
	}
	if err := json.NewDecoder(response.Body).Decode(responseBody); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
