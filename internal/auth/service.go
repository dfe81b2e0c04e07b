// Package auth implements the authentication protocol: registration, login,
// and the three-step password-reset flow. The server keeps no session state;
// a successful login or registration yields a signed token and logout is a
// client-side discard.
package auth

import (
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/foliohq/folio/internal/model"
	"github.com/foliohq/folio/internal/store"
	"github.com/foliohq/folio/internal/token"
)

type Service struct {
	users  *store.UserStore
	issuer *token.Issuer
	reset  *ResetManager
	logger *slog.Logger
}

func NewService(users *store.UserStore, issuer *token.Issuer, reset *ResetManager, logger *slog.Logger) *Service {
	return &Service{users: users, issuer: issuer, reset: reset, logger: logger}
}

// Register creates an account and logs it in immediately, returning the new
// identity and a session token. Returns ErrDuplicateEmail if the email is
// taken.
func (s *Service) Register(name, email, password, phoneNumber, domain string) (*model.User, string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(name, email, string(hash), phoneNumber, domain)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			return nil, "", ErrDuplicateEmail
		}
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	tok, err := s.issuer.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}

	s.logger.Info("user registered", "user_id", user.ID)
	return user, tok, nil
}

// Login verifies the credentials and returns the identity and a session
// token. Unknown email and wrong password both yield ErrInvalidCredentials.
func (s *Service) Login(email, password string) (*model.User, string, error) {
	user, err := s.users.GetByEmail(email)
	if err != nil {
		return nil, "", fmt.Errorf("look up user: %w", err)
	}
	if user == nil {
		return nil, "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	tok, err := s.issuer.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}

	s.logger.Info("user logged in", "user_id", user.ID)
	return user, tok, nil
}

// RequestReset starts the password-reset flow for the account.
func (s *Service) RequestReset(email string) error {
	return s.reset.Request(email)
}

// VerifyResetCode checks a reset code without consuming it.
func (s *Service) VerifyResetCode(email, code string) error {
	return s.reset.Verify(email, code)
}

// CompleteReset sets a new password if the code is still valid, consuming the
// challenge. Outstanding session tokens stay valid until they expire; there
// is no revocation.
func (s *Service) CompleteReset(email, code, newPassword string) error {
	if err := s.reset.Complete(email, code, newPassword); err != nil {
		return err
	}
	s.logger.Info("password reset completed")
	return nil
}
