package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"tienda-api/internal/pkg/jwtutil"
	"tienda-api/internal/transport/http/response"
)

const (
	ContextUserIDKey   = "user_id"
	ContextUsernameKey = "username"
)

var (
	errMissingHeader = errors.New("missing authorization header")
	errInvalidScheme = errors.New("invalid authorization scheme")
)

func AuthJWT(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c)
		if err != nil {
			response.Error(c, 401, response.CodeUnauthorized, err.Error())
			c.Abort()
			return
		}

		claims, err := jwtutil.ParseToken(secret, token)
		if err != nil {
			response.Error(c, 401, response.CodeUnauthorized, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextUsernameKey, claims.Username)
		c.Next()
	}
}

// OptionalAuthJWT identifies the caller when a valid token is sent and lets
// everyone else through as a guest.
func OptionalAuthJWT(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c)
		if err == nil {
			if claims, parseErr := jwtutil.ParseToken(secret, token); parseErr == nil {
				c.Set(ContextUserIDKey, claims.UserID)
				c.Set(ContextUsernameKey, claims.Username)
			} else {
				Logger(c).WithError(parseErr).Debug("ignoring invalid bearer token")
			}
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, error) {
	authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
	if authHeader == "" {
		return "", errMissingHeader
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(authHeader, prefix) {
		return "", errInvalidScheme
	}
	return strings.TrimSpace(strings.TrimPrefix(authHeader, prefix)), nil
}
