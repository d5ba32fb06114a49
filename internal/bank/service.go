package bank

import (
	"context"
	"log"
)

// Authorizer is the bank's view of the security service. Satisfied by both
// the in-process security service and its HTTP client.
type Authorizer interface {
	Authenticate(ctx context.Context, cred Credential) (bool, error)
	CanAccessTerminal(ctx context.Context, accountID int64) (bool, error)
}

// Service gates access to the account store. Callers that pass the gate
// receive the store's live account, so later mutations by anyone operating
// on the same id are observed through the same instance.
type Service struct {
	store    *Store
	security Authorizer
}

func NewService(store *Store, security Authorizer) *Service {
	return &Service{store: store, security: security}
}

// Account authenticates the credential, verifies the account may be reached
// from a terminal at all, and returns the account handle. Any gate failure
// is ErrAuthorizationDenied; the store's own ErrAccountNotFound can still
// surface if the id passed authentication but is not held here.
func (s *Service) Account(ctx context.Context, cred Credential) (*Account, error) {
	ok, err := s.security.Authenticate(ctx, cred)
	if err != nil {
		return nil, err
	}
	if !ok {
		log.Printf("bank: account %d failed authentication", cred.AccountID)
		return nil, ErrAuthorizationDenied
	}

	ok, err = s.security.CanAccessTerminal(ctx, cred.AccountID)
	if err != nil {
		return nil, err
	}
	if !ok {
		log.Printf("bank: account %d not terminal accessible", cred.AccountID)
		return nil, ErrAuthorizationDenied
	}

	return s.store.Get(cred.AccountID)
}
