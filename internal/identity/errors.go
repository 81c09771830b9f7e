package identity

import "errors"

var (
	// ErrPendingApproval is returned when a login succeeds upstream but the
	// account has not been manually approved yet.
	ErrPendingApproval = errors.New("Conta aguarda aprovação do administrador.")

	// ErrInvalidCredentials is returned when the identity service rejects the
	// email/password pair.
	ErrInvalidCredentials = errors.New("identity: invalid credentials")

	// ErrNoSession is returned when an operation requires an active session.
	ErrNoSession = errors.New("identity: no active session")
)
