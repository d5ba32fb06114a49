package bankhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sapliy/atm-network/internal/atm"
	"github.com/sapliy/atm-network/internal/bank"
)

// Client is the remote handle to the bank service; it satisfies atm.Bank.
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

// Ping verifies the service is reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("bank service unreachable: %w", atm.ErrRemoteUnavailable)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bank health returned %d: %w", resp.StatusCode, atm.ErrRemoteUnavailable)
	}
	return nil
}

// Account passes the credential through the bank's gate and returns a
// handle bound to it. The handle mirrors the live-account contract of the
// in-process bank: each method is one remote call against the bank's own
// account instance.
func (c *Client) Account(ctx context.Context, cred bank.Credential) (atm.Account, error) {
	body, err := json.Marshal(cred)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/accounts/lookup", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bank call failed: %w", atm.ErrRemoteUnavailable)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp.StatusCode)
	}

	return &AccountHandle{client: c, cred: cred}, nil
}

// AccountHandle is the remote counterpart of *bank.Account.
type AccountHandle struct {
	client *Client
	cred   bank.Credential
}

func (h *AccountHandle) Deposit(ctx context.Context, amount decimal.Decimal) (decimal.Decimal, error) {
	return h.call(ctx, "deposit", amount)
}

func (h *AccountHandle) Withdraw(ctx context.Context, amount decimal.Decimal) (decimal.Decimal, error) {
	return h.call(ctx, "withdraw", amount)
}

func (h *AccountHandle) Balance(ctx context.Context) (decimal.Decimal, error) {
	return h.call(ctx, "balance", decimal.Zero)
}

func (h *AccountHandle) call(ctx context.Context, op string, amount decimal.Decimal) (decimal.Decimal, error) {
	payload, err := json.Marshal(map[string]any{
		"pin":    h.cred.PIN,
		"amount": amount,
	})
	if err != nil {
		return decimal.Zero, err
	}

	url := fmt.Sprintf("%s/accounts/%d/%s", h.client.baseURL, h.cred.AccountID, op)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return decimal.Zero, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.http.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("bank call failed: %w", atm.ErrRemoteUnavailable)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, statusError(resp.StatusCode)
	}

	var out struct {
		Balance decimal.Decimal `json:"balance"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return decimal.Zero, fmt.Errorf("malformed bank response: %w", err)
	}
	return out.Balance, nil
}

// statusError is the inverse of the server's writeDomainError mapping.
func statusError(status int) error {
	switch status {
	case http.StatusBadRequest:
		return bank.ErrInvalidAmount
	case http.StatusUnauthorized:
		return bank.ErrAuthorizationDenied
	case http.StatusNotFound:
		return bank.ErrAccountNotFound
	case http.StatusConflict:
		return bank.ErrOverdraft
	default:
		return fmt.Errorf("bank returned status %d: %w", status, atm.ErrRemoteUnavailable)
	}
}
