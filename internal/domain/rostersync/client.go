package rostersync

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type Directory interface {
	Employees(ctx context.Context) ([]RemoteEmployee, error)
	LeaveBalances(ctx context.Context) ([]LeaveBalance, error)
}

// Client talks to the HRPartner REST API.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) Employees(ctx context.Context) ([]RemoteEmployee, error) {
	var out []RemoteEmployee
	if err := c.get(ctx, "/employees", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) LeaveBalances(ctx context.Context) ([]LeaveBalance, error) {
	var out []LeaveBalance
	if err := c.get(ctx, "/leave_balances", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, endpoint string, dst any) error {
	if c.APIKey == "" {
		return ErrNotConfigured
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("x-api-key", c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s %s", ErrUpstream, resp.Status, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrUpstream, endpoint, err)
	}
	return nil
}
