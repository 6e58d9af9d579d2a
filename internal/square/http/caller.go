// Package http provides the HTTP handlers for the Square connection endpoints.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	identityHTTP "github.com/allisson/squareconnect/internal/identity/http"
)

// callerID returns the authenticated caller, or writes a 401 and returns false.
func callerID(c *gin.Context) (string, bool) {
	caller, ok := identityHTTP.GetCaller(c.Request.Context())
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return "", false
	}
	return caller.ID, true
}
