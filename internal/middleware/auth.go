package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Context keys set by AuthMiddleware.
const (
	CtxUserID    = "user_id"
	CtxUserName  = "user_name"
	CtxUserEmail = "user_email"
)

// Claims identify the owner of a request. Tokens issued by other services
// may carry the owner in "sub" instead of "user_id".
type Claims struct {
	UserID string `json:"user_id,omitempty"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Owner returns the user id carried by the token.
func (c *Claims) Owner() string {
	if c.UserID != "" {
		return c.UserID
	}
	return c.Subject
}

// список публичных эндпоинтов, которые не требуют токена
func isPublicPath(path string) bool {
	return strings.HasPrefix(path, "/swagger") ||
		strings.HasPrefix(path, "/docs") ||
		strings.HasPrefix(path, "/healthz")
}

func AuthMiddleware(secret []byte) gin.HandlerFunc {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(2*time.Minute),
	)

	return func(c *gin.Context) {
		// preflight
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}
		if isPublicPath(c.Request.URL.Path) {
			c.Next()
			return
		}

		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		claims := &Claims{}
		token, err := parser.ParseWithClaims(strings.TrimSpace(parts[1]), claims, func(*jwt.Token) (interface{}, error) {
			return secret, nil
		})
		if err != nil || !token.Valid || claims.Owner() == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		c.Set(CtxUserID, claims.Owner())
		c.Set(CtxUserName, claims.Name)
		c.Set(CtxUserEmail, claims.Email)
		c.Next()
	}
}
