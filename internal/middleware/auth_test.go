package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"taskflow/backend/internal/auth"
	"taskflow/backend/internal/middleware"
)

const testSecret = "test-signing-secret"

func newProtectedRouter(tokens *auth.TokenService) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.GET("/protected", middleware.RequireAuth(tokens), func(c *gin.Context) {
		id, ok := middleware.Subject(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "no subject"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"userId": id})
	})
	return router
}

func TestRequireAuth_ValidToken(t *testing.T) {
	tokens := auth.NewTokenService(testSecret, time.Hour)
	router := newProtectedRouter(tokens)

	token, err := tokens.Issue(42, "bob@x.com")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	req, _ := http.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"userId":42`) {
		t.Errorf("Expected subject 42 in response, got %s", w.Body.String())
	}
}

func TestRequireAuth_MissingToken(t *testing.T) {
	tokens := auth.NewTokenService(testSecret, time.Hour)
	router := newProtectedRouter(tokens)

	tests := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"empty bearer", "Bearer "},
		{"wrong scheme", "Basic dXNlcjpwYXNz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest("GET", "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Errorf("Expected status %d, got %d", http.StatusUnauthorized, w.Code)
			}
			if !strings.Contains(w.Body.String(), "access token required") {
				t.Errorf("Unexpected body: %s", w.Body.String())
			}
		})
	}
}

func TestRequireAuth_InvalidToken(t *testing.T) {
	tokens := auth.NewTokenService(testSecret, time.Hour)
	router := newProtectedRouter(tokens)

	req, _ := http.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("Expected status %d, got %d", http.StatusForbidden, w.Code)
	}
	if !strings.Contains(w.Body.String(), "invalid or expired token") {
		t.Errorf("Unexpected body: %s", w.Body.String())
	}
}

func TestRequireAuth_ExpiredToken(t *testing.T) {
	tokens := auth.NewTokenService(testSecret, time.Hour)
	router := newProtectedRouter(tokens)

	claims := auth.Claims{
		UserID: 42,
		Email:  "bob@x.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("signing expired token: %v", err)
	}

	req, _ := http.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+expired)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("Expected status %d, got %d", http.StatusForbidden, w.Code)
	}
}

func TestRequireAuth_WrongSecret(t *testing.T) {
	issuing := auth.NewTokenService("some-other-secret", time.Hour)
	verifying := auth.NewTokenService(testSecret, time.Hour)
	router := newProtectedRouter(verifying)

	token, err := issuing.Issue(42, "bob@x.com")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	req, _ := http.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("Expected status %d, got %d", http.StatusForbidden, w.Code)
	}
}

func TestRequireAuth_NoSigningSecret(t *testing.T) {
	tokens := auth.NewTokenService("", time.Hour)
	router := newProtectedRouter(tokens)

	req, _ := http.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer anything")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status %d, got %d", http.StatusInternalServerError, w.Code)
	}
	if !strings.Contains(w.Body.String(), "server configuration error") {
		t.Errorf("Unexpected body: %s", w.Body.String())
	}
}

func TestRequestID_Generated(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(middleware.RequestID())
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req, _ := http.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if id := w.Header().Get(middleware.RequestIDHeader); id == "" {
		t.Error("Expected a generated request id header")
	}
}

func TestRequestID_Preserved(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(middleware.RequestID())
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req, _ := http.NewRequest("GET", "/test", nil)
	req.Header.Set(middleware.RequestIDHeader, "client-supplied-id")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if id := w.Header().Get(middleware.RequestIDHeader); id != "client-supplied-id" {
		t.Errorf("Expected the client request id to be preserved, got %q", id)
	}
}
