package bank

import (
	"context"
	"errors"
	"testing"
)

type mockAuthorizer struct {
	AuthenticateFunc      func(ctx context.Context, cred Credential) (bool, error)
	CanAccessTerminalFunc func(ctx context.Context, accountID int64) (bool, error)
}

func (m *mockAuthorizer) Authenticate(ctx context.Context, cred Credential) (bool, error) {
	return m.AuthenticateFunc(ctx, cred)
}

func (m *mockAuthorizer) CanAccessTerminal(ctx context.Context, accountID int64) (bool, error) {
	return m.CanAccessTerminalFunc(ctx, accountID)
}

func allowAll() *mockAuthorizer {
	return &mockAuthorizer{
		AuthenticateFunc: func(ctx context.Context, cred Credential) (bool, error) {
			return true, nil
		},
		CanAccessTerminalFunc: func(ctx context.Context, accountID int64) (bool, error) {
			return true, nil
		},
	}
}

func TestService_Account(t *testing.T) {
	remoteErr := errors.New("security unreachable")

	tests := []struct {
		name        string
		cred        Credential
		setup       func(*mockAuthorizer)
		expectedErr error
	}{
		{
			name:  "Valid Credential",
			cred:  Credential{AccountID: 2, PIN: 2345},
			setup: func(m *mockAuthorizer) {},
		},
		{
			name: "Authentication Denied",
			cred: Credential{AccountID: 2, PIN: 9999},
			setup: func(m *mockAuthorizer) {
				m.AuthenticateFunc = func(ctx context.Context, cred Credential) (bool, error) {
					return false, nil
				}
			},
			expectedErr: ErrAuthorizationDenied,
		},
		{
			name: "Terminal Access Denied",
			cred: Credential{AccountID: 2, PIN: 2345},
			setup: func(m *mockAuthorizer) {
				m.CanAccessTerminalFunc = func(ctx context.Context, accountID int64) (bool, error) {
					return false, nil
				}
			},
			expectedErr: ErrAuthorizationDenied,
		},
		{
			// Authenticated but absent from the store. The security service
			// and the account store are seeded independently, so this is a
			// reachable state.
			name:        "Account Missing From Store",
			cred:        Credential{AccountID: 42, PIN: 1234},
			setup:       func(m *mockAuthorizer) {},
			expectedErr: ErrAccountNotFound,
		},
		{
			name: "Security Unreachable",
			cred: Credential{AccountID: 2, PIN: 2345},
			setup: func(m *mockAuthorizer) {
				m.AuthenticateFunc = func(ctx context.Context, cred Credential) (bool, error) {
					return false, remoteErr
				}
			},
			expectedErr: remoteErr,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := allowAll()
			tt.setup(auth)
			svc := NewService(SeedFixture(), auth)

			account, err := svc.Account(context.Background(), tt.cred)

			if !errors.Is(err, tt.expectedErr) {
				t.Fatalf("Expected error %v, got %v", tt.expectedErr, err)
			}
			if tt.expectedErr == nil && account.ID() != tt.cred.AccountID {
				t.Errorf("Expected account %d, got %d", tt.cred.AccountID, account.ID())
			}
		})
	}
}
