package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Client talks to the bank-demo HTTP API.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// NewClient creates a client for baseURL. A trailing slash is dropped.
func NewClient(baseURL, token string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Token:      token,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// APIError is a non-2xx response decoded from the server's error body.
type APIError struct {
	HTTPStatus     int    `json:"http_status"`
	Code           string `json:"code"`
	Message        string `json:"message"`
	CurrentBalance string `json:"current_balance,omitempty"`
	ExpiredAt      string `json:"expired_at,omitempty"`
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s (HTTP %d): %s", e.Code, e.HTTPStatus, e.Message)
	if e.CurrentBalance != "" {
		msg += ", current balance " + e.CurrentBalance
	}
	return msg
}

// LoginResult is the body of a successful login.
type LoginResult struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt"`
}

// BalanceResult is the body of the balance, deposit and withdraw responses.
type BalanceResult struct {
	Identity string      `json:"identity"`
	Balance  json.Number `json:"balance"`
	Message  string      `json:"message,omitempty"`
}

// Login exchanges credentials for a token.
func (c *Client) Login(ctx context.Context, identity, secret string) (*LoginResult, error) {
	var out LoginResult
	body := map[string]string{"identity": identity, "secret": secret}
	if err := c.doJSON(ctx, http.MethodPost, "/login", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Balance reads the caller's balance.
func (c *Client) Balance(ctx context.Context) (*BalanceResult, error) {
	var out BalanceResult
	if err := c.doJSON(ctx, http.MethodGet, "/balance", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Deposit credits amount to the caller's account.
func (c *Client) Deposit(ctx context.Context, amount decimal.Decimal) (*BalanceResult, error) {
	return c.mutate(ctx, "/deposit", amount)
}

// Withdraw debits amount from the caller's account.
func (c *Client) Withdraw(ctx context.Context, amount decimal.Decimal) (*BalanceResult, error) {
	return c.mutate(ctx, "/withdraw", amount)
}

func (c *Client) mutate(ctx context.Context, path string, amount decimal.Decimal) (*BalanceResult, error) {
	var out BalanceResult
	body := map[string]json.Number{"amount": json.Number(amount.String())}
	if err := c.doJSON(ctx, http.MethodPost, path, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Do sends a request with the JSON-encoded body and the bearer token, if any.
func (c *Client) Do(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out interface{}) error {
	resp, err := c.Do(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return decodeAPIError(resp.StatusCode, data)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeAPIError(status int, data []byte) *APIError {
	var body struct {
		Error          string       `json:"error"`
		Message        string       `json:"message"`
		CurrentBalance *json.Number `json:"currentBalance"`
		ExpiredAt      string       `json:"expiredAt"`
	}
	apiErr := &APIError{HTTPStatus: status}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil || body.Error == "" {
		apiErr.Code = http.StatusText(status)
		apiErr.Message = strings.TrimSpace(string(data))
		return apiErr
	}
	apiErr.Code = body.Error
	apiErr.Message = body.Message
	apiErr.ExpiredAt = body.ExpiredAt
	if body.CurrentBalance != nil {
		apiErr.CurrentBalance = body.CurrentBalance.String()
	}
	return apiErr
}
