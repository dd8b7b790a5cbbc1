package ginserver

import (
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"quietsummit/internal/app/policies"
)

const principalContextKey = "quietsummit.principal"

// IdentityMiddleware maps the identity collaborator's trusted headers onto a
// principal. Authentication itself happens upstream; an absent header simply
// yields an anonymous request that ownership checks will reject.
type IdentityMiddleware struct{}

func (m IdentityMiddleware) Handle(c *gin.Context) {
	id := strings.TrimSpace(c.GetHeader("X-User-ID"))
	if id == "" {
		c.Next()
		return
	}
	var roles []string
	if raw := c.GetHeader("X-User-Roles"); raw != "" {
		for _, role := range strings.Split(raw, ",") {
			role = strings.TrimSpace(role)
			if role != "" {
				roles = append(roles, role)
			}
		}
	}
	setPrincipal(c, policies.Principal{ID: id, Roles: roles})
	c.Next()
}

func setPrincipal(c *gin.Context, p policies.Principal) {
	c.Set(principalContextKey, p)
}

func currentPrincipal(c *gin.Context) (policies.Principal, bool) {
	val, exists := c.Get(principalContextKey)
	if !exists {
		return policies.Principal{}, false
	}
	p, ok := val.(policies.Principal)
	return p, ok
}

func requirePrincipal(c *gin.Context) (policies.Principal, bool) {
	p, ok := currentPrincipal(c)
	if !ok || p.ID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "auth required"})
		return policies.Principal{}, false
	}
	return p, true
}
