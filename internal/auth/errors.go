package auth

import "errors"

var (
	// ErrDuplicateEmail is returned by Register when the email already has
	// an account.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrInvalidCredentials is returned by Login for both an unknown email
	// and a wrong password; the two causes are deliberately
	// indistinguishable so a caller cannot probe for account existence.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserNotFound is returned by RequestReset when the email has no
	// account. This is the one place the legacy API discloses existence.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidOrExpiredCode covers every reset-code failure: no pending
	// challenge, wrong code, or expired challenge.
	ErrInvalidOrExpiredCode = errors.New("invalid or expired reset code")

	// ErrDeliveryFailure means the reset code could not be delivered. The
	// request fails so the client can retry explicitly; nothing retries
	// here.
	ErrDeliveryFailure = errors.New("reset code delivery failed")
)
