package securityhttp

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/sapliy/atm-network/internal/atm"
	"github.com/sapliy/atm-network/internal/bank"
	"github.com/sapliy/atm-network/internal/security"
)

func fixtureServer(t *testing.T) *httptest.Server {
	t.Helper()
	svc, err := security.NewService(security.FixtureRecords())
	if err != nil {
		t.Fatalf("Failed to build security service: %v", err)
	}
	srv := httptest.NewServer(NewServer(svc).Router())
	t.Cleanup(srv.Close)
	return srv
}

// The client and server form one decision pipe: a decision made by the
// in-process service must come out identically on the client side.
func TestClient_Authenticate(t *testing.T) {
	client := NewClient(fixtureServer(t).URL)

	tests := []struct {
		name     string
		cred     bank.Credential
		expected bool
	}{
		{name: "Correct PIN", cred: bank.Credential{AccountID: 1, PIN: 1234}, expected: true},
		{name: "Wrong PIN", cred: bank.Credential{AccountID: 1, PIN: 9999}, expected: false},
		{name: "Unknown Account", cred: bank.Credential{AccountID: 42, PIN: 1234}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := client.Authenticate(context.Background(), tt.cred)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if ok != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, ok)
			}
		})
	}
}

func TestClient_Authorize(t *testing.T) {
	client := NewClient(fixtureServer(t).URL)
	ctx := context.Background()

	tests := []struct {
		name     string
		check    func() (bool, error)
		expected bool
	}{
		{name: "Account 2 May Deposit", check: func() (bool, error) { return client.CanDeposit(ctx, 2) }, expected: true},
		{name: "Account 2 May Not Withdraw", check: func() (bool, error) { return client.CanWithdraw(ctx, 2) }, expected: false},
		{name: "Account 3 May Withdraw", check: func() (bool, error) { return client.CanWithdraw(ctx, 3) }, expected: true},
		{name: "Account 3 May Not Deposit", check: func() (bool, error) { return client.CanDeposit(ctx, 3) }, expected: false},
		{name: "Balance Inquiry Allowed", check: func() (bool, error) { return client.CanBalance(ctx, 1) }, expected: true},
		{name: "Terminal Access Allowed", check: func() (bool, error) { return client.CanAccessTerminal(ctx, 42) }, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := tt.check()
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if ok != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, ok)
			}
		})
	}
}

func TestClient_RemoteUnavailable(t *testing.T) {
	srv := fixtureServer(t)
	client := NewClient(srv.URL)
	srv.Close()

	if err := client.Ping(context.Background()); !errors.Is(err, atm.ErrRemoteUnavailable) {
		t.Errorf("Expected ErrRemoteUnavailable from Ping, got %v", err)
	}
	if _, err := client.Authenticate(context.Background(), bank.Credential{AccountID: 1, PIN: 1234}); !errors.Is(err, atm.ErrRemoteUnavailable) {
		t.Errorf("Expected ErrRemoteUnavailable from Authenticate, got %v", err)
	}
}
