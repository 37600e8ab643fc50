package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Role is the caller's role for one request
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
	RoleNone  Role = ""
)

// RoleResolver determines the caller's role for a request. The session
// backend is a collaborator; swapping it means swapping the resolver, not
// the handlers.
type RoleResolver func(c *gin.Context) Role

// TokenRoleResolver resolves ADMIN for callers presenting the configured
// bearer token and USER for everyone else
func TokenRoleResolver(adminToken string) RoleResolver {
	return func(c *gin.Context) Role {
		header := c.GetHeader("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if adminToken != "" && token == adminToken {
			return RoleAdmin
		}
		return RoleUser
	}
}

// RequireAdmin aborts the request with 401 unless the resolver reports
// ADMIN
func RequireAdmin(resolve RoleResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if resolve(c) != RoleAdmin {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Unauthorized",
			})
			return
		}
		c.Next()
	}
}
