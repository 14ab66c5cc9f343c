// Package identity talks to an Identity Toolkit compatible REST API
// (Firebase Authentication).
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dwikikusuma/foodstore/internal/auth/app"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

type Client struct {
	base   string
	apiKey string
	http   *http.Client
}

func NewClient(cfg Config) *Client {
	return &Client{
		base:   strings.TrimRight(cfg.BaseURL, "/"),
		apiKey: cfg.APIKey,
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

type credentials struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	DisplayName       string `json:"displayName,omitempty"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type accountResponse struct {
	LocalID     string `json:"localId"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) SignIn(ctx context.Context, email, password string) (app.Identity, error) {
	return c.call(ctx, "accounts:signInWithPassword", credentials{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	})
}

func (c *Client) SignUp(ctx context.Context, email, password, displayName string) (app.Identity, error) {
	return c.call(ctx, "accounts:signUp", credentials{
		Email:             email,
		Password:          password,
		DisplayName:       displayName,
		ReturnSecureToken: true,
	})
}

func (c *Client) call(ctx context.Context, method string, body credentials) (app.Identity, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return app.Identity{}, fmt.Errorf("encode %s: %w", method, err)
	}

	endpoint := c.base + "/" + method + "?key=" + url.QueryEscape(c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return app.Identity{}, fmt.Errorf("build %s: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return app.Identity{}, err
		}
		return app.Identity{}, fmt.Errorf("%w: %s: %v", app.ErrProviderUnavailable, method, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return app.Identity{}, fmt.Errorf("%w: read %s: %v", app.ErrProviderUnavailable, method, err)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return app.Identity{}, fmt.Errorf("%w: %s returned %d", app.ErrProviderUnavailable, method, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		var e errorResponse
		if err := json.Unmarshal(raw, &e); err != nil || e.Error.Message == "" {
			return app.Identity{}, &app.ProviderError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return app.Identity{}, &app.ProviderError{Status: resp.StatusCode, Message: e.Error.Message}
	}

	var out accountResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return app.Identity{}, fmt.Errorf("decode %s: %w", method, err)
	}
	if out.LocalID == "" {
		return app.Identity{}, fmt.Errorf("%s: response without user id", method)
	}
	return app.Identity{UserID: out.LocalID, Email: out.Email, DisplayName: out.DisplayName}, nil
}
