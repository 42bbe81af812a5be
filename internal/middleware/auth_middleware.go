package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/skillbridge/tutoring-backend/internal/models"
	"github.com/skillbridge/tutoring-backend/internal/session"
)

// Context keys set for the request logger once a caller is resolved
const (
	UserIDContextKey = "user_id"
	RoleContextKey   = "role"
)

// IdentityHandler is a route handler that receives the resolved caller
type IdentityHandler func(c *gin.Context, caller models.Identity)

// Gate resolves the session of a request and enforces the route's role allow-list
type Gate struct {
	resolver *session.Resolver
	logger   *logrus.Logger
}

// NewGate creates a new authorization gate
func NewGate(resolver *session.Resolver, logger *logrus.Logger) *Gate {
	return &Gate{resolver: resolver, logger: logger}
}

// Require wraps handler so it only runs for a signed-in caller holding one
// of roles. No roles means any signed-in caller.
func (g *Gate) Require(handler IdentityHandler, roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _, err := g.resolver.ResolveRequest(c.Request)
		if err != nil {
			g.reject(c, err)
			return
		}

		caller := user.Identity()
		if !caller.HasRole(roles...) {
			g.logger.WithFields(logrus.Fields{
				"path":     c.Request.URL.Path,
				"user_id":  caller.ID,
				"role":     caller.Role,
				"required": roles,
			}).Warn("AUTH FAILED: insufficient role")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "Forbidden! You don't have permission to access this resources!",
				"code":    "FORBIDDEN",
			})
			return
		}

		c.Set(UserIDContextKey, caller.ID.String())
		c.Set(RoleContextKey, string(caller.Role))
		handler(c, caller)
	}
}

func (g *Gate) reject(c *gin.Context, err error) {
	fields := logrus.Fields{"path": c.Request.URL.Path, "ip": c.ClientIP()}

	switch {
	case errors.Is(err, session.ErrNoSession):
		g.logger.WithFields(fields).Debug("AUTH FAILED: no session")
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"message": "You are not authorized!",
			"code":    "UNAUTHORIZED",
		})
	case errors.Is(err, session.ErrBanned):
		g.logger.WithFields(fields).Warn("AUTH FAILED: banned account")
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"success": false,
			"message": "Your account has been banned",
			"code":    "ACCOUNT_BANNED",
		})
	default:
		g.logger.WithFields(fields).WithError(err).Error("Session lookup failed")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Something went wrong",
		})
	}
}
