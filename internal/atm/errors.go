package atm

import "errors"

var (
	// ErrNotPermitted means the credential authenticated but the specific
	// operation is outside the account's permission set.
	ErrNotPermitted = errors.New("operation not permitted for this account")

	// ErrInsufficientCash means the terminal lacks the physical cash to
	// honor a withdrawal.
	ErrInsufficientCash = errors.New("not enough cash on hand at this terminal")

	// ErrRemoteUnavailable means a collaborator (bank, security) could not
	// be reached. The HTTP clients wrap transport failures with it.
	ErrRemoteUnavailable = errors.New("remote service unavailable")
)
