package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/foliohq/folio/internal/model"
)

// UserStore is the credential store: one identity per unique email, with the
// password hash and any in-flight reset challenge kept on the same record.
type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func scanUser(scanner interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	var resetCode sql.NullString
	var resetExpiresAt sql.NullTime

	err := scanner.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.PhoneNumber, &u.Domain,
		&resetCode, &resetExpiresAt, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if resetCode.Valid {
		u.ResetCode = &resetCode.String
	}
	if resetExpiresAt.Valid {
		u.ResetExpiresAt = &resetExpiresAt.Time
	}
	return &u, nil
}

const userCols = `id, name, email, password_hash, phone_number, domain, reset_code, reset_expires_at, created_at, updated_at`

// Create inserts a new identity and returns it. The email uniqueness check is
// the database constraint itself, so two concurrent registrations cannot both
// succeed; the loser gets ErrDuplicateEmail.
func (s *UserStore) Create(name, email, passwordHash, phoneNumber, domain string) (*model.User, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO users (id, name, email, password_hash, phone_number, domain) VALUES (?, ?, ?, ?, ?, ?)`,
		id, name, email, passwordHash, phoneNumber, domain,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return s.GetByID(id)
}

func (s *UserStore) GetByID(id string) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// GetByEmail returns the identity for the email, or nil if none exists.
// Emails are compared exactly as stored.
func (s *UserStore) GetByEmail(email string) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE email = ?`, email)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

// UpdatePassword replaces the stored password hash. Returns ErrNotFound if the
// id matches no identity.
func (s *UserStore) UpdatePassword(id, passwordHash string) error {
	result, err := s.db.Exec(
		`UPDATE users SET password_hash = ?, updated_at = datetime('now') WHERE id = ?`,
		passwordHash, id,
	)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetResetChallenge stores a reset code and its expiry on the identity,
// overwriting any previous pending challenge.
func (s *UserStore) SetResetChallenge(id, code string, expiresAt time.Time) error {
	result, err := s.db.Exec(
		`UPDATE users SET reset_code = ?, reset_expires_at = ?, updated_at = datetime('now') WHERE id = ?`,
		code, expiresAt, id,
	)
	if err != nil {
		return fmt.Errorf("set reset challenge: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearResetChallenge removes any pending reset challenge from the identity.
func (s *UserStore) ClearResetChallenge(id string) error {
	result, err := s.db.Exec(
		`UPDATE users SET reset_code = NULL, reset_expires_at = NULL, updated_at = datetime('now') WHERE id = ?`,
		id,
	)
	if err != nil {
		return fmt.Errorf("clear reset challenge: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
