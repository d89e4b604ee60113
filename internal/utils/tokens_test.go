package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"tracker/internal/middleware"
)

func TestNewAccessTokenAcceptedByMiddleware(t *testing.T) {
	secret := []byte("s3cret")
	tok, err := NewAccessToken(secret, "u42", "Ada", "ada@example.com", time.Hour, time.Now())
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.AuthMiddleware(secret))
	var got string
	r.GET("/me", func(c *gin.Context) {
		got = c.GetString(middleware.CtxUserID)
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent || got != "u42" {
		t.Errorf("status/user = %d/%q, want 204/u42", w.Code, got)
	}
}

func TestNewAccessTokenRejectsBadInput(t *testing.T) {
	if _, err := NewAccessToken(nil, "u1", "", "", time.Hour, time.Now()); err == nil {
		t.Error("empty secret accepted")
	}
	if _, err := NewAccessToken([]byte("k"), "", "", "", time.Hour, time.Now()); err == nil {
		t.Error("empty user accepted")
	}
}
