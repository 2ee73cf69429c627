package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kalpit-muncho/dashboard-core/internal/pkg/jwt"
	"github.com/kalpit-muncho/dashboard-core/internal/pkg/response"
)

const (
	ContextKeyStaffID = "staff_id"
	ContextKeyRole    = "staff_role"
)

// Auth returns a middleware that enforces staff JWT authentication.
func Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := jwt.Parse(extractToken(c))
		if err != nil {
			response.Unauthorized(c)
			return
		}
		c.Set(ContextKeyStaffID, claims.StaffID)
		c.Set(ContextKeyRole, claims.Role)
		c.Next()
	}
}

// RequireRole gates a route group to the given roles (after Auth).
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		if _, ok := allowed[CurrentRole(c)]; !ok {
			response.Forbidden(c, "insufficient permissions")
			return
		}
		c.Next()
	}
}

// CurrentStaffID extracts the authenticated staff ID from context.
func CurrentStaffID(c *gin.Context) string {
	v, _ := c.Get(ContextKeyStaffID)
	id, _ := v.(string)
	return id
}

// CurrentRole extracts the authenticated staff role from context.
func CurrentRole(c *gin.Context) string {
	v, _ := c.Get(ContextKeyRole)
	role, _ := v.(string)
	return role
}

// IsAuthenticated returns true if the request has a valid auth token.
func IsAuthenticated(c *gin.Context) bool {
	return CurrentStaffID(c) != ""
}

func extractToken(c *gin.Context) string {
	if auth := c.GetHeader("Authorization"); auth != "" {
		return NormalizeToken(auth)
	}
	return NormalizeToken(c.Query("token"))
}

// NormalizeToken trims spaces and strips an optional Bearer prefix.
func NormalizeToken(raw string) string {
	token := strings.TrimSpace(raw)
	if token == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		return strings.TrimSpace(token[7:])
	}
	return token
}
