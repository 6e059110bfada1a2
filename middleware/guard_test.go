package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/openleads/openleads"
	"github.com/openleads/openleads/session"
)

type stubAccounts struct{}

func (stubAccounts) GetAccountByEmail(context.Context, string) (openleads.Account, error) {
	return openleads.Account{}, openleads.ErrAccountNotFound
}
func (stubAccounts) GetAccountByID(context.Context, string) (openleads.Account, error) {
	return openleads.Account{}, openleads.ErrAccountNotFound
}
func (stubAccounts) CreateAccount(context.Context, openleads.CreateAccountInput) (openleads.Account, error) {
	return openleads.Account{}, openleads.ErrAccountExists
}
func (stubAccounts) UpdatePasswordHash(context.Context, string, string) error { return nil }

type stubMailer struct{}

func (stubMailer) Send(context.Context, string, string, map[string]string) error { return nil }

func guardTestEngine(t *testing.T) *openleads.Engine {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := openleads.DefaultConfig()
	cfg.JWT.AccessSecret = []byte("test-access-secret-0123456789")
	cfg.JWT.RefreshSecret = []byte("test-refresh-secret-0123456789")
	cfg.Audit.Enabled = false

	engine, err := openleads.New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithAccountProvider(stubAccounts{}).
		WithMailer(stubMailer{}).
		Build()
	if err != nil {
		t.Fatalf("engine build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	return engine
}

func testCookies() session.CookieConfig {
	return session.CookieConfig{AccessName: "access_token", RefreshName: "refresh_token", Path: "/"}
}

func guardedHandler(t *testing.T, engine *openleads.Engine) http.Handler {
	t.Helper()
	return Guard(engine, testCookies())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFromContext(r.Context())
		if !ok {
			t.Fatal("identity missing from context inside guarded handler")
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"id": identity.ID})
	}))
}

func TestGuardAcceptsCookieAndBearer(t *testing.T) {
	engine := guardTestEngine(t)
	handler := guardedHandler(t, engine)

	tokens, err := engine.IssueSession(context.Background(), openleads.Identity{ID: "acct-1", Email: "a@x.com", Role: "agent"})
	if err != nil {
		t.Fatalf("IssueSession failed: %v", err)
	}

	// Cookie transport.
	r := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	r.AddCookie(&http.Cookie{Name: "access_token", Value: tokens.AccessToken})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)
	if rec.Code != http.StatusOK {
		t.Fatalf("cookie auth status = %d", rec.Code)
	}

	// Bearer transport.
	r = httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	r.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, r)
	if rec.Code != http.StatusOK {
		t.Fatalf("bearer auth status = %d", rec.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["id"] != "acct-1" {
		t.Fatalf("id = %q", body["id"])
	}
}

func TestGuardRejectsMissingAndBadTokens(t *testing.T) {
	engine := guardTestEngine(t)
	handler := Guard(engine, testCookies())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run without a valid token")
	}))

	r := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing token status = %d", rec.Code)
	}

	r = httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	r.Header.Set("Authorization", "Bearer not-a-token")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, r)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token status = %d", rec.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["message"] != "unauthorized" {
		t.Fatalf("message = %q", body["message"])
	}
}
