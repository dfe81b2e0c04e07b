package auth

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/foliohq/folio/internal/database"
	"github.com/foliohq/folio/internal/store"
	"github.com/foliohq/folio/internal/token"
)

// stubNotifier records delivered codes and can be told to fail.
type stubNotifier struct {
	email string
	code  string
	err   error
}

func (n *stubNotifier) SendResetCode(email, code string) error {
	if n.err != nil {
		return n.err
	}
	n.email = email
	n.code = code
	return nil
}

func setupService(t *testing.T, notifier Notifier, codeTTL time.Duration) (*Service, *token.Issuer) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	users := store.NewUserStore(db)
	issuer := token.NewIssuer([]byte("test-secret"), token.DefaultValidity)
	reset := NewResetManager(users, notifier, codeTTL)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(users, issuer, reset, logger), issuer
}

func TestRegisterThenLogin(t *testing.T) {
	svc, issuer := setupService(t, &stubNotifier{}, 0)

	user, tok, err := svc.Register("Alice", "alice@example.com", "hunter2", "555-0100", "alice.dev")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if tok == "" {
		t.Fatal("expected a token from register")
	}

	// Registration logs in: the token asserts the new identity.
	userID, err := issuer.Verify(tok)
	if err != nil {
		t.Fatalf("verify register token: %v", err)
	}
	if userID != user.ID {
		t.Errorf("token user id = %q, want %q", userID, user.ID)
	}

	loginUser, loginTok, err := svc.Login("alice@example.com", "hunter2")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if loginUser.ID != user.ID {
		t.Errorf("login user id = %q, want %q", loginUser.ID, user.ID)
	}
	userID, err = issuer.Verify(loginTok)
	if err != nil {
		t.Fatalf("verify login token: %v", err)
	}
	if userID != user.ID {
		t.Errorf("token user id = %q, want %q", userID, user.ID)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := setupService(t, &stubNotifier{}, 0)

	if _, _, err := svc.Register("Alice", "alice@example.com", "hunter2", "", ""); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, _, err := svc.Register("Imposter", "alice@example.com", "other", "", "")
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("err = %v, want ErrDuplicateEmail", err)
	}

	// The original account is untouched.
	if _, _, err := svc.Login("alice@example.com", "hunter2"); err != nil {
		t.Errorf("login after failed duplicate register: %v", err)
	}
}

func TestLoginFailuresIndistinguishable(t *testing.T) {
	svc, _ := setupService(t, &stubNotifier{}, 0)

	if _, _, err := svc.Register("Alice", "alice@example.com", "hunter2", "", ""); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, _, wrongPassword := svc.Login("alice@example.com", "wrong")
	_, _, unknownEmail := svc.Login("nobody@example.com", "hunter2")

	if !errors.Is(wrongPassword, ErrInvalidCredentials) {
		t.Errorf("wrong password err = %v, want ErrInvalidCredentials", wrongPassword)
	}
	if !errors.Is(unknownEmail, ErrInvalidCredentials) {
		t.Errorf("unknown email err = %v, want ErrInvalidCredentials", unknownEmail)
	}
}

func TestResetFlowEndToEnd(t *testing.T) {
	notifier := &stubNotifier{}
	svc, _ := setupService(t, notifier, 0)

	if _, _, err := svc.Register("Alice", "alice@example.com", "old-password", "", ""); err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := svc.RequestReset("alice@example.com"); err != nil {
		t.Fatalf("request reset: %v", err)
	}
	if notifier.email != "alice@example.com" {
		t.Errorf("notified email = %q, want %q", notifier.email, "alice@example.com")
	}
	if len(notifier.code) != 6 {
		t.Fatalf("code = %q, want 6 digits", notifier.code)
	}

	if err := svc.VerifyResetCode("alice@example.com", notifier.code); err != nil {
		t.Fatalf("verify code: %v", err)
	}

	if err := svc.CompleteReset("alice@example.com", notifier.code, "new-password"); err != nil {
		t.Fatalf("complete reset: %v", err)
	}

	// Old password no longer works; new one does.
	if _, _, err := svc.Login("alice@example.com", "old-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("old password err = %v, want ErrInvalidCredentials", err)
	}
	if _, _, err := svc.Login("alice@example.com", "new-password"); err != nil {
		t.Errorf("new password login: %v", err)
	}

	// The challenge is single-use: replaying the code fails.
	err := svc.CompleteReset("alice@example.com", notifier.code, "another-password")
	if !errors.Is(err, ErrInvalidOrExpiredCode) {
		t.Errorf("replayed code err = %v, want ErrInvalidOrExpiredCode", err)
	}
}

func TestRequestResetUnknownEmail(t *testing.T) {
	svc, _ := setupService(t, &stubNotifier{}, 0)

	err := svc.RequestReset("nobody@example.com")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
}

func TestRequestResetDeliveryFailure(t *testing.T) {
	notifier := &stubNotifier{err: errors.New("smtp down")}
	svc, _ := setupService(t, notifier, 0)

	if _, _, err := svc.Register("Alice", "alice@example.com", "hunter2", "", ""); err != nil {
		t.Fatalf("register: %v", err)
	}

	err := svc.RequestReset("alice@example.com")
	if !errors.Is(err, ErrDeliveryFailure) {
		t.Fatalf("err = %v, want ErrDeliveryFailure", err)
	}
}

func TestVerifyWrongCodeDoesNotConsumeChallenge(t *testing.T) {
	notifier := &stubNotifier{}
	svc, _ := setupService(t, notifier, 0)

	if _, _, err := svc.Register("Alice", "alice@example.com", "hunter2", "", ""); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := svc.RequestReset("alice@example.com"); err != nil {
		t.Fatalf("request reset: %v", err)
	}

	wrong := "000000"
	if wrong == notifier.code {
		wrong = "000001"
	}
	if err := svc.VerifyResetCode("alice@example.com", wrong); !errors.Is(err, ErrInvalidOrExpiredCode) {
		t.Fatalf("wrong code err = %v, want ErrInvalidOrExpiredCode", err)
	}

	// The stored challenge is unchanged; the right code still works.
	if err := svc.VerifyResetCode("alice@example.com", notifier.code); err != nil {
		t.Errorf("correct code after failed attempt: %v", err)
	}
}

func TestExpiredCodeRejected(t *testing.T) {
	notifier := &stubNotifier{}
	// A negative TTL stores an already-expired challenge.
	svc, _ := setupService(t, notifier, -time.Minute)

	if _, _, err := svc.Register("Alice", "alice@example.com", "hunter2", "", ""); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := svc.RequestReset("alice@example.com"); err != nil {
		t.Fatalf("request reset: %v", err)
	}

	if err := svc.VerifyResetCode("alice@example.com", notifier.code); !errors.Is(err, ErrInvalidOrExpiredCode) {
		t.Errorf("verify err = %v, want ErrInvalidOrExpiredCode", err)
	}
	err := svc.CompleteReset("alice@example.com", notifier.code, "new-password")
	if !errors.Is(err, ErrInvalidOrExpiredCode) {
		t.Errorf("complete err = %v, want ErrInvalidOrExpiredCode", err)
	}
}

func TestSecondRequestInvalidatesFirstCode(t *testing.T) {
	notifier := &stubNotifier{}
	svc, _ := setupService(t, notifier, 0)

	if _, _, err := svc.Register("Alice", "alice@example.com", "hunter2", "", ""); err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := svc.RequestReset("alice@example.com"); err != nil {
		t.Fatalf("first request: %v", err)
	}
	first := notifier.code

	if err := svc.RequestReset("alice@example.com"); err != nil {
		t.Fatalf("second request: %v", err)
	}
	second := notifier.code

	if first == second {
		t.Skip("codes collided; cannot distinguish challenges")
	}

	if err := svc.VerifyResetCode("alice@example.com", first); !errors.Is(err, ErrInvalidOrExpiredCode) {
		t.Errorf("old code err = %v, want ErrInvalidOrExpiredCode", err)
	}
	if err := svc.VerifyResetCode("alice@example.com", second); err != nil {
		t.Errorf("new code: %v", err)
	}
}

func TestGenerateCodeRange(t *testing.T) {
	for range 100 {
		code, err := generateCode()
		if err != nil {
			t.Fatalf("generate code: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("code %q, want 6 digits", code)
		}
		if code[0] == '0' {
			t.Fatalf("code %q starts with zero; range is 100000-999999", code)
		}
	}
}
