package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/foliohq/folio/internal/config"
	"github.com/foliohq/folio/internal/database"
	"github.com/foliohq/folio/internal/model"
)

type recordingNotifier struct {
	code string
}

func (n *recordingNotifier) SendResetCode(email, code string) error {
	n.code = code
	return nil
}

func setupRouter(t *testing.T) (http.Handler, *recordingNotifier) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{
		JWTSecret:     "test-secret",
		TokenValidity: 24 * time.Hour,
		ResetCodeTTL:  time.Hour,
	}
	notifier := &recordingNotifier{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := New(db, cfg, notifier, logger)
	return srv.Router(), notifier
}

func do(t *testing.T, router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func registerUser(t *testing.T, router http.Handler, email string) string {
	t.Helper()
	rec := do(t, router, "POST", "/auth/register", "", map[string]any{
		"name": "Alice", "email": email, "password": "hunter2",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: status = %d; body: %s", rec.Code, rec.Body)
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode register response: %v", err)
	}
	return resp.Token
}

func TestHealth(t *testing.T) {
	router, _ := setupRouter(t)

	rec := do(t, router, "GET", "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestProjectRoutesRequireToken(t *testing.T) {
	router, _ := setupRouter(t)

	body := map[string]any{"title": "X", "description": "Y"}

	if rec := do(t, router, "POST", "/api/projects", "", body); rec.Code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if rec := do(t, router, "POST", "/api/projects", "garbage", body); rec.Code != http.StatusForbidden {
		t.Errorf("bad token: status = %d, want %d", rec.Code, http.StatusForbidden)
	}
	// Listing stays public
	if rec := do(t, router, "GET", "/api/projects", "", nil); rec.Code != http.StatusOK {
		t.Errorf("public list: status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestRegisterThenCreateProject(t *testing.T) {
	router, _ := setupRouter(t)
	token := registerUser(t, router, "alice@example.com")

	rec := do(t, router, "POST", "/api/projects", token, map[string]any{
		"title":        "Portfolio Site",
		"description":  "Personal site",
		"technologies": []string{"Go"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status = %d; body: %s", rec.Code, rec.Body)
	}

	listRec := do(t, router, "GET", "/api/projects", "", nil)
	if listRec.Code != http.StatusOK {
		t.Fatalf("list: status = %d", listRec.Code)
	}
	var projects []model.Project
	if err := json.NewDecoder(listRec.Body).Decode(&projects); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(projects) != 1 || projects[0].Title != "Portfolio Site" {
		t.Errorf("list = %+v, want the created project", projects)
	}
}

func TestResetFlowOverHTTP(t *testing.T) {
	router, notifier := setupRouter(t)
	registerUser(t, router, "alice@example.com")

	if rec := do(t, router, "POST", "/auth/reset-password", "", map[string]any{"email": "alice@example.com"}); rec.Code != http.StatusOK {
		t.Fatalf("reset-password: status = %d; body: %s", rec.Code, rec.Body)
	}
	if len(notifier.code) != 6 {
		t.Fatalf("delivered code = %q, want 6 digits", notifier.code)
	}

	verify := map[string]any{"email": "alice@example.com", "code": notifier.code}
	if rec := do(t, router, "POST", "/auth/verify-reset-code", "", verify); rec.Code != http.StatusOK {
		t.Fatalf("verify-reset-code: status = %d; body: %s", rec.Code, rec.Body)
	}

	complete := map[string]any{"email": "alice@example.com", "code": notifier.code, "newPassword": "new-password"}
	if rec := do(t, router, "POST", "/auth/set-new-password", "", complete); rec.Code != http.StatusOK {
		t.Fatalf("set-new-password: status = %d; body: %s", rec.Code, rec.Body)
	}

	login := map[string]any{"email": "alice@example.com", "password": "new-password"}
	if rec := do(t, router, "POST", "/auth/login", "", login); rec.Code != http.StatusOK {
		t.Errorf("login with new password: status = %d; body: %s", rec.Code, rec.Body)
	}
}

func TestCORSPreflight(t *testing.T) {
	router, _ := setupRouter(t)

	req := httptest.NewRequest("OPTIONS", "/auth/login", nil)
	req.Header.Set("Origin", "https://example.com")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Headers"); got != "Content-Type, Authorization" {
		t.Errorf("Access-Control-Allow-Headers = %q", got)
	}
}
