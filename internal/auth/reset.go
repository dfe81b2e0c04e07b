package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/foliohq/folio/internal/store"
)

// DefaultCodeTTL is how long a reset code stays usable.
const DefaultCodeTTL = time.Hour

// Notifier delivers a reset code to the user out-of-band. It is invoked at
// most once per reset request and is never retried; a delivery error fails
// the whole request.
type Notifier interface {
	SendResetCode(email, code string) error
}

// ResetManager runs the three-step password-reset protocol against the
// challenge stored on the user record. Each step re-validates code and expiry
// independently; a prior successful Verify is never trusted, so a challenge
// that expires between verification and completion still fails cleanly.
type ResetManager struct {
	users    *store.UserStore
	notifier Notifier
	codeTTL  time.Duration
}

func NewResetManager(users *store.UserStore, notifier Notifier, codeTTL time.Duration) *ResetManager {
	if codeTTL == 0 {
		codeTTL = DefaultCodeTTL
	}
	return &ResetManager{users: users, notifier: notifier, codeTTL: codeTTL}
}

// generateCode returns a 6-digit numeric code (100000–999999).
func generateCode() (string, error) {
	// Range: 100000 to 999999 (900000 values)
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// Request generates a fresh challenge for the account and delivers the code.
// Any pending challenge for the account is overwritten, which invalidates its
// code. Returns ErrUserNotFound for an unknown email and ErrDeliveryFailure
// when the notifier fails.
func (m *ResetManager) Request(email string) error {
	user, err := m.users.GetByEmail(email)
	if err != nil {
		return fmt.Errorf("look up user: %w", err)
	}
	if user == nil {
		return ErrUserNotFound
	}

	code, err := generateCode()
	if err != nil {
		return err
	}

	expiresAt := time.Now().UTC().Add(m.codeTTL)
	if err := m.users.SetResetChallenge(user.ID, code, expiresAt); err != nil {
		return fmt.Errorf("store reset challenge: %w", err)
	}

	if err := m.notifier.SendResetCode(email, code); err != nil {
		return fmt.Errorf("%w: %v", ErrDeliveryFailure, err)
	}
	return nil
}

// challenge loads the account and checks the presented code against the
// stored challenge. Every failure collapses to ErrInvalidOrExpiredCode so
// nothing is learned from the error beyond "try requesting a new code".
func (m *ResetManager) challenge(email, code string) (userID string, err error) {
	user, err := m.users.GetByEmail(email)
	if err != nil {
		return "", fmt.Errorf("look up user: %w", err)
	}
	if user == nil || user.ResetCode == nil || user.ResetExpiresAt == nil {
		return "", ErrInvalidOrExpiredCode
	}
	if *user.ResetCode != code {
		return "", ErrInvalidOrExpiredCode
	}
	if !time.Now().Before(*user.ResetExpiresAt) {
		return "", ErrInvalidOrExpiredCode
	}
	return user.ID, nil
}

// Verify checks the code without consuming it. The stored challenge is left
// untouched either way.
func (m *ResetManager) Verify(email, code string) error {
	_, err := m.challenge(email, code)
	return err
}

// Complete re-validates the code, replaces the password, and clears the
// challenge. The challenge is single-use: once Complete succeeds, the same
// code fails with ErrInvalidOrExpiredCode.
func (m *ResetManager) Complete(email, code, newPassword string) error {
	userID, err := m.challenge(email, code)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := m.users.UpdatePassword(userID, string(hash)); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if err := m.users.ClearResetChallenge(userID); err != nil {
		return fmt.Errorf("clear reset challenge: %w", err)
	}
	return nil
}
