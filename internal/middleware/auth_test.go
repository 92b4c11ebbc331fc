package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/taskhive/backend/internal/config"
)

const testSecret = "test-secret"

func setupAuthRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	config.AppConfig = config.Defaults()
	config.AppConfig.Auth.JWTSecret = testSecret

	r := gin.New()
	r.GET("/whoami", RequireAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": UserID(c), "tier": Tier(c)})
	})
	return r
}

func TestRequireAuth(t *testing.T) {
	r := setupAuthRouter(t)

	validToken, err := IssueToken(testSecret, "user-1", "pro", time.Hour)
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}
	expiredToken, err := IssueToken(testSecret, "user-1", "pro", -time.Hour)
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}
	wrongKeyToken, err := IssueToken("other-secret", "user-1", "pro", time.Hour)
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{"valid token", "Bearer " + validToken, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer not.a.jwt", http.StatusUnauthorized},
		{"expired token", "Bearer " + expiredToken, http.StatusUnauthorized},
		{"wrong signing key", "Bearer " + wrongKeyToken, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestTierDefaultsToFree(t *testing.T) {
	r := setupAuthRouter(t)

	token, err := IssueToken(testSecret, "user-2", "", time.Hour)
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if body := w.Body.String(); !strings.Contains(body, `"tier":"free"`) {
		t.Errorf("body = %s, want free tier", body)
	}
}
