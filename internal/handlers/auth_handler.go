package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/skillbridge/tutoring-backend/internal/config"
	"github.com/skillbridge/tutoring-backend/internal/models"
	"github.com/skillbridge/tutoring-backend/internal/services"
	"github.com/skillbridge/tutoring-backend/internal/session"
)

// AuthHandler handles sign-in, sign-out and session lookups
type AuthHandler struct {
	auth     *services.AuthService
	resolver *session.Resolver
	cookie   config.AuthConfig
	audit    auditLogger
	logger   *logrus.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(auth *services.AuthService, resolver *session.Resolver, cookie config.AuthConfig, audit *services.AuditService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		auth:     auth,
		resolver: resolver,
		cookie:   cookie,
		audit:    auditLogger{audit: audit, logger: logger},
		logger:   logger,
	}
}

// sessionResponse is returned by sign-in, registration and get-session
type sessionResponse struct {
	Token   string           `json:"token,omitempty"`
	User    *models.User     `json:"user"`
	Session *session.Session `json:"session"`
}

// SignIn verifies email and password and opens a session
// POST /api/v1/auth/sign-in
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req models.SignInRequest
	if !bindJSON(c, &req) {
		return
	}

	user, sess, err := h.auth.SignIn(c.Request.Context(), req.Email, req.Password, sessionMeta(c))
	if err != nil {
		if se, ok := services.AsError(err); ok {
			var userID *uuid.UUID
			if user != nil {
				userID = &user.ID
			}
			h.audit.safeLogSignIn(c, userID, req.Email, false, se.Code)
		}
		respondError(c, h.logger, err)
		return
	}

	h.audit.safeLogSignIn(c, &user.ID, req.Email, true, "")
	h.setSessionCookie(c, sess)
	respond(c, http.StatusOK, "Signed in successfully", sessionResponse{Token: sess.Token, User: user, Session: sess})
}

// SignOut revokes the current session and clears the cookie
// POST /api/v1/auth/sign-out
func (h *AuthHandler) SignOut(c *gin.Context, caller models.Identity) {
	if err := h.auth.SignOut(c.Request.Context(), h.resolver.Credential(c.Request)); err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.audit.safeLogSignOut(c, caller.ID)
	h.clearSessionCookie(c)
	respond(c, http.StatusOK, "Signed out successfully", nil)
}

// GetSession returns the caller and their session
// GET /api/v1/auth/get-session
func (h *AuthHandler) GetSession(c *gin.Context) {
	user, sess, err := h.auth.GetSession(c.Request.Context(), h.resolver.Credential(c.Request))
	if err != nil {
		if errors.Is(err, services.ErrUnauthenticated) {
			h.clearSessionCookie(c)
		}
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "Session retrieved successfully", sessionResponse{User: user, Session: sess})
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, sess *session.Session) {
	maxAge := int(time.Until(sess.ExpiresAt).Seconds())
	if maxAge <= 0 {
		maxAge = int(h.cookie.SessionTTL.Seconds())
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.CookieName, sess.Token, maxAge, "/", h.cookie.CookieDomain, h.cookie.CookieSecure, true)
}

func (h *AuthHandler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.CookieName, "", -1, "/", h.cookie.CookieDomain, h.cookie.CookieSecure, true)
}
