package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gperojohn83-art/Construction/internal/models"
)

// RequireOrganization rejects sessions that carry no organization.
func RequireOrganization() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := SessionFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if !session.HasOrganization() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "no_organization"})
			return
		}
		c.Next()
	}
}

// RequireOrgRoles checks the role in the token. Services re-check against
// storage before any write that depends on it.
func RequireOrgRoles(roles ...models.Role) gin.HandlerFunc {
	roleSet := make(map[models.Role]struct{}, len(roles))
	for _, role := range roles {
		roleSet[role] = struct{}{}
	}

	return func(c *gin.Context) {
		session, ok := SessionFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if !session.HasOrganization() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "no_organization"})
			return
		}
		if _, ok := roleSet[session.Membership.Role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}
