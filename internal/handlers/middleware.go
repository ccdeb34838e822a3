package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	ctxUserID    = "userId"
	bearerPrefix = "Bearer "
)

// bearerToken extracts the token from an "Authorization: Bearer <jwt>" value.
func bearerToken(header string) (string, bool) {
	token, found := strings.CutPrefix(header, bearerPrefix)
	if !found || token == "" {
		return "", false
	}
	return token, true
}

// userIdMiddleware rejects requests without a valid bearer token and stores
// the caller's id under ctxUserID.
func (h *Handler) userIdMiddleware(c *gin.Context) {
	header := c.GetHeader("Authorization")
	token, ok := bearerToken(header)

	var reason string
	switch {
	case header == "":
		reason = "missing Authorization header"
	case !ok:
		reason = "invalid Authorization header format"
	default:
		userID, err := h.services.ParseToken(token)
		if err == nil {
			c.Set(ctxUserID, userID)
			c.Next()
			return
		}
		reason = "invalid or expired token"
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": reason})
}
