package middleware

import (
	"net/http"

	"stayops/models"

	"github.com/gin-gonic/gin"
)

// Authentication is handled upstream; by the time a request reaches this
// core, the gateway has resolved a profile and forwards its id and role as
// headers. This middleware turns them into an Actor for capability checks.

const actorKey = "actor"

// ActorMiddleware extracts the resolved actor from request headers.
func ActorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		role := models.Role(c.GetHeader("X-Actor-Role"))
		switch role {
		case models.RoleGuest, models.RoleVendor, models.RoleAdmin:
		default:
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error": "Invalid or missing 'X-Actor-Role' header. Expected 'guest', 'vendor' or 'admin'.",
			})
			return
		}

		c.Set(actorKey, models.Actor{
			ID:   c.GetHeader("X-Actor-Id"),
			Role: role,
		})
		c.Next()
	}
}

// RequireStaff rejects guests on staff-only endpoints.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := GetActor(c)
		if !actor.Staff() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "This action requires an admin or vendor role.",
			})
			return
		}
		c.Next()
	}
}

// RequireAdmin rejects everyone but admins.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := GetActor(c)
		if actor.Role != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "This action requires an admin role.",
			})
			return
		}
		c.Next()
	}
}

// GetActor returns the actor resolved by ActorMiddleware.
func GetActor(c *gin.Context) models.Actor {
	if v, ok := c.Get(actorKey); ok {
		if actor, ok := v.(models.Actor); ok {
			return actor
		}
	}
	return models.Actor{}
}
