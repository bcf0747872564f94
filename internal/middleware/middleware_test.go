package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"driveportal/internal/domain"
	"driveportal/internal/domain/models"
	"driveportal/internal/httputil"

	"github.com/golang-jwt/jwt/v5"
)

type fakeVerifier struct {
	claims map[string]*models.Claims
}

func (f *fakeVerifier) VerifyToken(token string) (*models.Claims, error) {
	if c, ok := f.claims[token]; ok {
		return c, nil
	}
	return nil, domain.ErrUnauthorized
}

func (f *fakeVerifier) Close() error { return nil }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newClaims(sub, role string) *models.Claims {
	return &models.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: sub},
		Role:             "authenticated",
		AppMetadata:      map[string]interface{}{"role": role},
	}
}

func TestAuthMiddleware(t *testing.T) {
	verifier := &fakeVerifier{claims: map[string]*models.Claims{
		"admin-token":  newClaims("u-admin", "admin"),
		"viewer-token": newClaims("u-viewer", "viewer"),
	}}

	var gotUser, gotRole string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = httputil.GetUserID(r)
		gotRole = httputil.GetUserRole(r)
		w.WriteHeader(http.StatusNoContent)
	})
	handler := AuthMiddleware(verifier, discardLogger())(inner)

	tests := []struct {
		name       string
		path       string
		header     string
		wantStatus int
		wantUser   string
		wantRole   string
	}{
		{"valid token", "/api/routes", "Bearer viewer-token", http.StatusNoContent, "u-viewer", "viewer"},
		{"missing token", "/api/routes", "", http.StatusUnauthorized, "", ""},
		{"wrong scheme", "/api/routes", "Basic abc", http.StatusUnauthorized, "", ""},
		{"invalid token", "/api/routes", "Bearer nope", http.StatusUnauthorized, "", ""},
		{"health is public", "/health", "", http.StatusNoContent, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotUser, gotRole = "", ""
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if gotUser != tt.wantUser || gotRole != tt.wantRole {
				t.Errorf("context user/role = %q/%q, want %q/%q", gotUser, gotRole, tt.wantUser, tt.wantRole)
			}
		})
	}
}

func TestAuthMiddleware_NilVerifierPassesThrough(t *testing.T) {
	called := false
	handler := AuthMiddleware(nil, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/routes", nil))
	if !called || rec.Code != http.StatusOK {
		t.Errorf("called = %v, status = %d", called, rec.Code)
	}
}

func TestRequireRole(t *testing.T) {
	handler := RequireRole("admin", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name       string
		user, role string
		wantStatus int
	}{
		{"anonymous", "", "", http.StatusUnauthorized},
		{"other role", "u1", "viewer", http.StatusForbidden},
		{"admin", "u1", "admin", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/admin/cache", nil)
			if tt.user != "" {
				req = httputil.WithUserID(req, tt.user)
				req = httputil.WithUserRole(req, tt.role)
			}
			rec := httptest.NewRecorder()
			handler(rec, req)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	handler := RequestID(discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = httputil.GetRequestID(r)
	}))

	t.Run("generates an id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		if seen == "" || rec.Header().Get(RequestIDHeader) != seen {
			t.Errorf("context id %q, header %q", seen, rec.Header().Get(RequestIDHeader))
		}
	})

	t.Run("keeps a valid incoming id", func(t *testing.T) {
		const incoming = "6f1c3c4e-8d0a-4c5e-9c57-2b1f0e3a9d11"
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set(RequestIDHeader, incoming)
		handler.ServeHTTP(httptest.NewRecorder(), req)
		if seen != incoming {
			t.Errorf("request id = %q, want %q", seen, incoming)
		}
	})

	t.Run("replaces a malformed incoming id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set(RequestIDHeader, "<script>")
		handler.ServeHTTP(httptest.NewRecorder(), req)
		if seen == "<script>" || seen == "" {
			t.Errorf("request id = %q, want a fresh uuid", seen)
		}
	})
}

func TestRecovery(t *testing.T) {
	handler := Recovery(discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/routes", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Errorf("content type = %q", ct)
	}
}
