package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"yamdb/internal/access"
	"yamdb/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const actorKey = "actor"

// AuthMiddleware resolves the bearer token into an access.Actor.
// Requests without an Authorization header continue as anonymous; a header
// that is present but unusable is rejected with 401.
func AuthMiddleware(authService service.AuthService, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		// format: "Bearer <token>"
		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		actor, err := authService.Authenticate(ctx, parts[1])
		if err != nil {
			if errors.Is(err, service.ErrUnauthenticated) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
				return
			}
			logger.WithError(err).Error("Failed to authenticate request")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}

		c.Set(actorKey, actor)
		c.Next()
	}
}

// CurrentActor returns the authenticated caller, or nil for anonymous requests.
func CurrentActor(c *gin.Context) *access.Actor {
	v, ok := c.Get(actorKey)
	if !ok {
		return nil
	}
	actor, _ := v.(*access.Actor)
	return actor
}

// Authorize gates a route on a rule that does not depend on ownership.
// Ownership-based rules are checked in the services once the object is loaded.
func Authorize(rule access.Rule) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := access.RoleOf(CurrentActor(c))
		if rule(c.Request.Method, role, false) {
			c.Next()
			return
		}
		if !role.IsAuthenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": service.ErrUnauthenticated.Error()})
			return
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": service.ErrPermissionDenied.Error()})
	}
}
