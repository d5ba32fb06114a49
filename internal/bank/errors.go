package bank

import "errors"

// Domain errors for the account and bank layer. The HTTP adapters map these
// to status codes and back, so error identity survives the remote boundary.
var (
	// ErrInvalidAmount rejects non-positive deposits and negative withdrawals.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrOverdraft rejects withdrawals that would drive a balance negative.
	ErrOverdraft = errors.New("overdrafts not allowed")

	// ErrAccountNotFound means the referenced account id does not exist.
	ErrAccountNotFound = errors.New("account not found")

	// ErrAuthorizationDenied covers both a wrong PIN and an unknown account.
	// The two are indistinguishable on purpose: telling them apart would
	// leak which account ids exist.
	ErrAuthorizationDenied = errors.New("authorization denied")
)
