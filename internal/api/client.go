// Package api is the HTTP client for the external expense service. The
// service owns authentication, persistence and the aggregate queries; this
// client only shapes requests and decodes responses.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"expensedash/internal/core"
)

var (
	// ErrUnauthorized is returned when the service rejects the bearer token.
	ErrUnauthorized = errors.New("api: unauthorized")
	// ErrLoginRejected is returned when the credentials are refused.
	ErrLoginRejected = errors.New("api: login rejected")
)

// Client talks to the expense service at a fixed base URL.
type Client struct {
	base string
	cli  *http.Client
}

// New creates a client for the service rooted at baseURL.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		cli:  &http.Client{Timeout: timeout},
	}
}

// ListExpenses retrieves the itemized records for the filter window. Both
// bounds are attached when the filter is ranged; otherwise the request
// carries no range parameters.
func (c *Client) ListExpenses(ctx context.Context, token string, f core.Range) ([]core.Expense, error) {
	var out struct {
		Expenses []core.Expense `json:"expenses"`
	}
	if err := c.get(ctx, "/api/expense/list", token, f, &out); err != nil {
		return nil, err
	}
	return out.Expenses, nil
}

// Summary retrieves the per-category aggregate for the same filter window.
func (c *Client) Summary(ctx context.Context, token string, f core.Range) ([]core.CategorySummary, error) {
	var out struct {
		Summary []core.CategorySummary `json:"summary"`
	}
	if err := c.get(ctx, "/api/expense/summary", token, f, &out); err != nil {
		return nil, err
	}
	return out.Summary, nil
}

// AddExpense submits a new draft. The response body is not required beyond
// the status code.
func (c *Client) AddExpense(ctx context.Context, token string, d core.Draft) error {
	body, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal draft: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/api/expense/add", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.cli.Do(req)
	if err != nil {
		return fmt.Errorf("add expense: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode >= 300:
		return fmt.Errorf("add expense: http %d", resp.StatusCode)
	}
	return nil
}

// Login exchanges credentials for a session token.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	body, err := json.Marshal(map[string]string{"username": username, "password": password})
	if err != nil {
		return "", fmt.Errorf("marshal credentials: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/api/auth/login", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.cli.Do(req)
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	defer resp.Body.Close()

	var out struct {
		Token string `json:"token"`
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode login response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if out.Error != "" {
			return "", fmt.Errorf("%w: %s", ErrLoginRejected, out.Error)
		}
		return "", fmt.Errorf("%w: http %d", ErrLoginRejected, resp.StatusCode)
	}
	return out.Token, nil
}

func (c *Client) get(ctx context.Context, path, token string, f core.Range, out any) error {
	u := c.base + path
	if f.IsRanged() {
		q := url.Values{}
		q.Set("from", f.From)
		q.Set("to", f.To)
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.cli.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("get %s: http %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
