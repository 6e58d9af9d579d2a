package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	identityDomain "github.com/allisson/squareconnect/internal/identity/domain"
	identityService "github.com/allisson/squareconnect/internal/identity/service"
)

// AuthenticationMiddleware verifies the Bearer ID token in the Authorization header
// and stores the caller in the request context.
//
// Authorization header format: "Bearer <id token>" (case-insensitive "bearer")
//
// Error handling:
//   - Missing or malformed Authorization header → 401 {"error": "No authorization token provided"}
//   - Token rejected by the verifier → 401 {"error": "Invalid or expired token"}
//
// Usage:
//
//	router.Use(AuthenticationMiddleware(verifier, logger))
//	router.GET("/protected", func(c *gin.Context) {
//	    caller, _ := GetCaller(c.Request.Context())
//	})
func AuthenticationMiddleware(verifier identityService.Verifier, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		rawToken, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			logger.Debug("authentication failed: missing bearer token")
			abortUnauthenticated(c, identityDomain.ErrMissingCredential)
			return
		}

		caller, err := verifier.Verify(c.Request.Context(), rawToken)
		if err != nil {
			logger.Debug("authentication failed", slog.Any("error", err))
			abortUnauthenticated(c, err)
			return
		}

		c.Request = c.Request.WithContext(WithCaller(c.Request.Context(), caller))

		logger.Debug("authentication successful", slog.String("caller_id", caller.ID))

		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	const bearerPrefix = "bearer "
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	return token, token != ""
}

func abortUnauthenticated(c *gin.Context, err error) {
	message := "Invalid or expired token"
	if errors.Is(err, identityDomain.ErrMissingCredential) {
		message = "No authorization token provided"
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": message})
}
