package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/quizlink-backend/internal/response"
	"github.com/stemsi/quizlink-backend/internal/service"
)

const (
	// ContextKeyClaims is the Gin context key for admin JWT claims.
	ContextKeyClaims = "claims"

	// HeaderAdminPassword carries the shared admin password.
	HeaderAdminPassword = "X-Admin-Password"
)

// RequireAdmin accepts either the X-Admin-Password header or a Bearer JWT
// issued by the login endpoint. Nothing passes while no admin password is
// configured.
func RequireAdmin(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authService.Configured() {
			response.AbortFail(c, http.StatusInternalServerError, response.ErrAdminNotConfigured)
			return
		}

		if pw := c.GetHeader(HeaderAdminPassword); pw != "" {
			switch err := authService.CheckAdminPassword(pw); {
			case err == nil:
				c.Next()
			case errors.Is(err, service.ErrAdminNotConfigured):
				response.AbortFail(c, http.StatusInternalServerError, response.ErrAdminNotConfigured)
			default:
				response.AbortFail(c, http.StatusUnauthorized, response.ErrUnauthorized)
			}
			return
		}

		tokenStr := bearerToken(c)
		if tokenStr == "" {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrUnauthorized)
			return
		}

		claims, err := authService.ValidateToken(tokenStr)
		if err != nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrUnauthorized)
			return
		}

		c.Set(ContextKeyClaims, claims)
		c.Next()
	}
}

// GetClaims retrieves the JWT claims from the Gin context. It is nil when the
// request authenticated with the password header.
func GetClaims(c *gin.Context) *service.Claims {
	val, exists := c.Get(ContextKeyClaims)
	if !exists {
		return nil
	}
	claims, ok := val.(*service.Claims)
	if !ok {
		return nil
	}
	return claims
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
