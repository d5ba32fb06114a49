package securityhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sapliy/atm-network/internal/atm"
	"github.com/sapliy/atm-network/internal/bank"
)

// Client is the remote handle to the security service. It satisfies both
// atm.Security and bank.Authorizer; transport failures are wrapped with
// atm.ErrRemoteUnavailable.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Ping verifies the service is reachable. Services call it at startup and
// refuse to start when it fails rather than run partially wired.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("security service unreachable: %w", atm.ErrRemoteUnavailable)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("security health returned %d: %w", resp.StatusCode, atm.ErrRemoteUnavailable)
	}
	return nil
}

func (c *Client) Authenticate(ctx context.Context, cred bank.Credential) (bool, error) {
	body, err := json.Marshal(cred)
	if err != nil {
		return false, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/authenticate", bytes.NewReader(body))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.decision(req)
}

func (c *Client) CanDeposit(ctx context.Context, accountID int64) (bool, error) {
	return c.authorize(ctx, "deposit", accountID)
}

func (c *Client) CanWithdraw(ctx context.Context, accountID int64) (bool, error) {
	return c.authorize(ctx, "withdraw", accountID)
}

func (c *Client) CanBalance(ctx context.Context, accountID int64) (bool, error) {
	return c.authorize(ctx, "balance", accountID)
}

func (c *Client) CanAccessTerminal(ctx context.Context, accountID int64) (bool, error) {
	return c.authorize(ctx, "terminal", accountID)
}

func (c *Client) authorize(ctx context.Context, operation string, accountID int64) (bool, error) {
	url := fmt.Sprintf("%s/authorize/%s/%d", c.baseURL, operation, accountID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, err
	}
	return c.decision(req)
}

func (c *Client) decision(req *http.Request) (bool, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("security call failed: %w", atm.ErrRemoteUnavailable)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("security returned status %d: %w", resp.StatusCode, atm.ErrRemoteUnavailable)
	}

	var out struct {
		OK bool `json:"ok"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, fmt.Errorf("malformed security response: %w", err)
	}
	return out.OK, nil
}
