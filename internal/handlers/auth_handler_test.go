package handlers

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"quizly/api/internal/models"
	"quizly/api/internal/repositories"
	"quizly/api/internal/testhelpers"
	"quizly/api/internal/utils"
)

const testSecret = "test-secret"

func newTestAuthHandler(t *testing.T) *AuthHandler {
	t.Helper()
	repo := &repositories.UserRepository{DB: testhelpers.SetupTestDB(t)}
	return NewAuthHandler(repo, testSecret, time.Hour, nil)
}

func TestRegisterHandler(t *testing.T) {
	h := newTestAuthHandler(t)

	rec := serve[*models.RegisterRequest](t, h.RegisterHandler, http.MethodPost,
		`{"name":"Ada","email":" Ada@Example.com ","password":"correct-horse"}`, "")

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decode[models.AuthResponse](t, rec)
	if resp.Token == "" {
		t.Fatal("expected a token")
	}
	if resp.User.Email != "ada@example.com" || resp.User.Name != "Ada" {
		t.Fatalf("unexpected user: %+v", resp.User)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+resp.Token)
	claims, err := utils.VerifyToken(req, testSecret)
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if sub, _ := utils.UserIDFromClaims(claims); sub != strconv.FormatUint(uint64(resp.User.ID), 10) {
		t.Fatalf("expected sub %d, got %s", resp.User.ID, sub)
	}

	stored, err := h.Repo.GetUserByEmail("ada@example.com")
	if err != nil {
		t.Fatalf("user not stored: %v", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("correct-horse")) != nil {
		t.Fatal("password must be stored as a bcrypt hash")
	}
}

func TestRegisterHandler_Rejects(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"missing fields", `{"email":"a@b.co"}`, http.StatusBadRequest, "missing_fields"},
		{"bad email", `{"name":"a","email":"nope","password":"12345678"}`, http.StatusBadRequest, "invalid_email"},
		{"short password", `{"name":"a","email":"a@b.co","password":"123"}`, http.StatusBadRequest, "weak_password"},
		{"duplicate email", `{"name":"a","email":"taken@example.com","password":"12345678"}`, http.StatusConflict, "conflict"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestAuthHandler(t)
			testhelpers.SeedUser(t, h.Repo.DB, "taken", "taken@example.com")

			rec := serve[*models.RegisterRequest](t, h.RegisterHandler, http.MethodPost, tt.body, "")

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if got := decode[models.ErrorResponse](t, rec).Code; got != tt.wantCode {
				t.Fatalf("expected code %s, got %s", tt.wantCode, got)
			}
		})
	}
}

// A signup that lands between the email lookup and the insert must still
// report a conflict.
func TestRegisterHandler_ConcurrentSignup(t *testing.T) {
	h := newTestAuthHandler(t)

	raced := false
	err := h.Repo.DB.Callback().Create().Before("gorm:create").Register("test:concurrent_signup", func(tx *gorm.DB) {
		if raced {
			return
		}
		raced = true
		now := time.Now()
		tx.Session(&gorm.Session{NewDB: true}).Exec(
			"INSERT INTO users (created_at, updated_at, name, email, password_hash) VALUES (?, ?, ?, ?, ?)",
			now, now, "first", "race@example.com", "x")
	})
	if err != nil {
		t.Fatalf("failed to register callback: %v", err)
	}

	rec := serve[*models.RegisterRequest](t, h.RegisterHandler, http.MethodPost,
		`{"name":"second","email":"race@example.com","password":"12345678"}`, "")

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := decode[models.ErrorResponse](t, rec).Code; got != "conflict" {
		t.Fatalf("expected code conflict, got %s", got)
	}
}

func TestLoginHandler(t *testing.T) {
	h := newTestAuthHandler(t)
	serve[*models.RegisterRequest](t, h.RegisterHandler, http.MethodPost,
		`{"name":"Ada","email":"ada@example.com","password":"correct-horse"}`, "")

	t.Run("success", func(t *testing.T) {
		rec := serve[*models.LoginRequest](t, h.LoginHandler, http.MethodPost,
			`{"email":"ADA@example.com","password":"correct-horse"}`, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if resp := decode[models.AuthResponse](t, rec); resp.Token == "" || resp.User.Name != "Ada" {
			t.Fatalf("unexpected response: %+v", resp)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := serve[*models.LoginRequest](t, h.LoginHandler, http.MethodPost,
			`{"email":"ada@example.com","password":"battery-staple"}`, "")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected status 401, got %d", rec.Code)
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		rec := serve[*models.LoginRequest](t, h.LoginHandler, http.MethodPost,
			`{"email":"bob@example.com","password":"correct-horse"}`, "")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected status 401, got %d", rec.Code)
		}
		if got := decode[models.ErrorResponse](t, rec).Message; got != "invalid credentials" {
			t.Fatalf("expected generic credentials message, got %q", got)
		}
	})
}

func TestMeHandler(t *testing.T) {
	h := newTestAuthHandler(t)
	user := testhelpers.SeedUser(t, h.Repo.DB, "Ada", "ada@example.com")
	id := strconv.FormatUint(uint64(user.ID), 10)

	rec := do(t, http.HandlerFunc(h.MeHandler), http.MethodGet, "/", "", id)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	profile := decode[models.UserProfile](t, rec)
	if profile.ID != user.ID || profile.Email != "ada@example.com" {
		t.Fatalf("unexpected profile: %+v", profile)
	}
	if body := rec.Body.String(); strings.Contains(strings.ToLower(body), "password") {
		t.Fatalf("profile must not expose password data: %s", body)
	}

	rec = do(t, http.HandlerFunc(h.MeHandler), http.MethodGet, "/", "", "9999")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

