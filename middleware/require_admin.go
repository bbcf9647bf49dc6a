package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/educenter-backend/services"
)

// Allow admits the request when the permission table lets the caller's role
// run op. Public operations skip authentication entirely.
func (a *Auth) Allow(op services.Operation) gin.HandlerFunc {
	return func(c *gin.Context) {
		perm := a.gate.Permission(op)
		if perm.Public() {
			c.Next()
			return
		}
		if err := a.authenticate(c); err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		actor, _ := ActorFrom(c)
		if !perm.Admits(actor.Role) {
			_ = c.Error(services.Forbidden("Access denied"))
			c.Abort()
			return
		}
		c.Next()
	}
}
