package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"sunset/internal/domain"
	"sunset/internal/domain/models"
	"sunset/internal/httputil"

	"github.com/golang-jwt/jwt/v5"
)

// fakeVerifier accepts exactly one token string.
type fakeVerifier struct {
	token  string
	userID string
}

func (f *fakeVerifier) VerifyToken(tokenString string) (*models.AccessClaims, error) {
	if tokenString != f.token {
		return nil, domain.ErrUnauthorized
	}
	return &models.AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: f.userID},
		Role:             "authenticated",
	}, nil
}

func (f *fakeVerifier) Close() error { return nil }

func TestAuthMiddleware(t *testing.T) {
	verifier := &fakeVerifier{token: "good-token", userID: "user-42"}

	var gotUserID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = httputil.GetUserID(r)
		w.WriteHeader(http.StatusNoContent)
	})
	wrapped := AuthMiddleware(verifier)(next)

	tests := []struct {
		name       string
		method     string
		path       string
		authHeader string
		wantStatus int
		wantUserID string
	}{
		{
			name:       "valid token",
			method:     http.MethodPost,
			path:       "/api/projects/p/generate",
			authHeader: "Bearer good-token",
			wantStatus: http.StatusNoContent,
			wantUserID: "user-42",
		},
		{
			name:       "missing header",
			method:     http.MethodPost,
			path:       "/api/projects/p/generate",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong scheme",
			method:     http.MethodPost,
			path:       "/api/projects/p/generate",
			authHeader: "Basic dXNlcjpwYXNz",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "rejected token",
			method:     http.MethodPost,
			path:       "/api/projects/p/generate",
			authHeader: "Bearer bad-token",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "health bypasses auth",
			method:     http.MethodGet,
			path:       "/health",
			wantStatus: http.StatusNoContent,
		},
		{
			name:       "preflight bypasses auth",
			method:     http.MethodOptions,
			path:       "/api/projects/p/generate",
			wantStatus: http.StatusNoContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotUserID = ""
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()
			wrapped.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantUserID != "" && gotUserID != tt.wantUserID {
				t.Errorf("userID = %q, want %q", gotUserID, tt.wantUserID)
			}
		})
	}
}
