package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Karthikeyakonakalla/Virtual-Teaching-Assistant/internal/adapters/driven/auth"
	"github.com/Karthikeyakonakalla/Virtual-Teaching-Assistant/internal/core/domain"
)

func mintToken(t *testing.T, adapter *auth.Adapter, expiresAt time.Time) string {
	t.Helper()
	now := time.Now()
	token, err := adapter.GenerateToken(&domain.TokenClaims{
		UserID:    "user-1",
		Email:     "student@example.com",
		IssuedAt:  now.Unix(),
		ExpiresAt: expiresAt.Unix(),
	})
	if err != nil {
		t.Fatalf("failed to mint token: %v", err)
	}
	return token
}

func authProbe(claimsOut **domain.TokenClaims) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*claimsOut = GetTokenClaims(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticate_ValidToken(t *testing.T) {
	adapter := auth.NewAdapter("test-secret")
	middleware := NewAuthMiddleware(adapter)

	var claims *domain.TokenClaims
	handler := middleware.Authenticate(authProbe(&claims))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, adapter, time.Now().Add(time.Hour)))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if claims == nil {
		t.Fatal("claims were not added to the request context")
	}
	if claims.UserID != "user-1" {
		t.Errorf("user id = %q, want user-1", claims.UserID)
	}
}

func TestAuthenticate_MissingToken(t *testing.T) {
	middleware := NewAuthMiddleware(auth.NewAdapter("test-secret"))

	var claims *domain.TokenClaims
	handler := middleware.Authenticate(authProbe(&claims))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if claims != nil {
		t.Error("handler ran despite missing token")
	}
}

func TestAuthenticate_InvalidToken(t *testing.T) {
	middleware := NewAuthMiddleware(auth.NewAdapter("test-secret"))

	var claims *domain.TokenClaims
	handler := middleware.Authenticate(authProbe(&claims))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-real-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestAuthenticate_WrongSecret(t *testing.T) {
	minter := auth.NewAdapter("secret-a")
	middleware := NewAuthMiddleware(auth.NewAdapter("secret-b"))

	var claims *domain.TokenClaims
	handler := middleware.Authenticate(authProbe(&claims))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, minter, time.Now().Add(time.Hour)))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestExtractBearerToken(t *testing.T) {
	cases := []struct {
		name   string
		header string
		want   string
	}{
		{"empty", "", ""},
		{"valid", "Bearer abc123", "abc123"},
		{"case insensitive scheme", "bearer abc123", "abc123"},
		{"wrong scheme", "Basic abc123", ""},
		{"no token", "Bearer", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			if got := extractBearerToken(req); got != tc.want {
				t.Errorf("extractBearerToken = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestGetTokenClaims_Absent(t *testing.T) {
	if GetTokenClaims(context.Background()) != nil {
		t.Error("expected nil claims for empty context")
	}
	if GetTokenClaims(nil) != nil {
		t.Error("expected nil claims for nil context")
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	handler := NewRecoveryMiddleware().Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	handler := NewCORSMiddleware([]string{"*"}).Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler should not run on preflight")
	}))

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "https://app.example.com" {
		t.Error("missing CORS allow-origin header")
	}
}

func TestCORSMiddleware_DisallowedOrigin(t *testing.T) {
	handler := NewCORSMiddleware([]string{"https://app.example.com"}).Handler(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("allow-origin header set for disallowed origin")
	}
}
