package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"quizmaster/internal/domain"
)

// Credentials holds the API tokens of one user. It replaces ambient token
// storage: callers create it, pass it to the client and may persist it.
type Credentials struct {
	mu      sync.RWMutex
	access  string
	refresh string
	now     func() time.Time
}

func NewCredentials(access, refresh string) *Credentials {
	return &Credentials{
		access:  strings.TrimSpace(access),
		refresh: strings.TrimSpace(refresh),
		now:     time.Now,
	}
}

func (c *Credentials) Access() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.access
}

func (c *Credentials) RefreshToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.refresh
}

// Set replaces both tokens.
func (c *Credentials) Set(access, refresh string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.access = access
	c.refresh = refresh
}

func (c *Credentials) setAccess(access string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.access = access
}

// Clear forgets both tokens.
func (c *Credentials) Clear() {
	c.Set("", "")
}

// AccessExpired reports whether the access token is a JWT whose exp claim
// has passed. The signature is not checked; the API does that. Opaque or
// missing tokens never count as expired.
func (c *Credentials) AccessExpired() bool {
	token := c.Access()
	if token == "" {
		return false
	}
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !claims.ExpiresAt.Time.After(c.now())
}

type tokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

// ObtainToken logs in and stores the returned token pair.
func (c *Client) ObtainToken(ctx context.Context, username, password string) error {
	var payload tokenResponse
	err := c.send(ctx, http.MethodPost, "/token/", tokenRequest{Username: username, Password: password}, &payload, "")
	if err != nil {
		return err
	}
	if payload.Access == "" {
		return fmt.Errorf("%w: token response without access token", domain.ErrUnauthorized)
	}
	c.creds.Set(payload.Access, payload.Refresh)
	return nil
}

// refresh exchanges the refresh token for a new access token. Concurrent
// callers share one request.
func (c *Client) refresh(ctx context.Context) error {
	_, err, _ := c.refreshSF.Do("refresh", func() (interface{}, error) {
		refreshToken := c.creds.RefreshToken()
		if refreshToken == "" {
			return nil, domain.ErrUnauthorized
		}
		var payload tokenResponse
		if err := c.send(ctx, http.MethodPost, "/token/refresh/", refreshRequest{Refresh: refreshToken}, &payload, ""); err != nil {
			c.logger.Warn("token refresh failed", "err", err)
			c.creds.Clear()
			return nil, fmt.Errorf("%w: refresh failed: %v", domain.ErrUnauthorized, err)
		}
		if payload.Access == "" {
			c.logger.Warn("token refresh returned no access token")
			c.creds.Clear()
			return nil, fmt.Errorf("%w: refresh response without access token", domain.ErrUnauthorized)
		}
		c.creds.setAccess(payload.Access)
		if payload.Refresh != "" {
			c.creds.Set(payload.Access, payload.Refresh)
		}
		return nil, nil
	})
	return err
}
