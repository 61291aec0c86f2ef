package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type contextKey string

const userContextKey contextKey = "goalbumsUser"

// tokenValidator is the narrow surface the middleware needs from Service.
type tokenValidator interface {
	ValidateAccessToken(tokenString string) (UserClaims, error)
}

// AuthMiddleware rejects requests without a valid bearer token and stores the
// caller's claims in the gin context.
func AuthMiddleware(validator tokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := extractBearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		claims, err := validator.ValidateAccessToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(string(userContextKey), claims)
		c.Next()
	}
}

// CurrentUser extracts claims placed in the context by Middleware.
func CurrentUser(c *gin.Context) (UserClaims, bool) {
	val, ok := c.Get(string(userContextKey))
	if !ok {
		return UserClaims{}, false
	}

	claims, ok := val.(UserClaims)
	return claims, ok
}

// RequireUser returns the caller's user ID and email, reporting false when the
// request is unauthenticated.
func RequireUser(c *gin.Context) (uuid.UUID, string, bool) {
	claims, ok := CurrentUser(c)
	if !ok {
		return uuid.Nil, "", false
	}
	return claims.UserID, claims.Email, true
}

func extractBearerToken(header string) (string, bool) {
	if header == "" {
		return "", false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}

	return token, true
}
