package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/skillbridge/tutoring-backend/internal/models"
	"github.com/skillbridge/tutoring-backend/internal/services"
)

// RegistrationHandler handles sign-up and tutor onboarding
type RegistrationHandler struct {
	registration *services.RegistrationService
	sessions     *AuthHandler
	audit        auditLogger
	logger       *logrus.Logger
}

// NewRegistrationHandler creates a new registration handler. New accounts are
// signed in through the auth handler's session and cookie handling.
func NewRegistrationHandler(registration *services.RegistrationService, sessions *AuthHandler, audit *services.AuditService, logger *logrus.Logger) *RegistrationHandler {
	return &RegistrationHandler{
		registration: registration,
		sessions:     sessions,
		audit:        auditLogger{audit: audit, logger: logger},
		logger:       logger,
	}
}

type registerResponse struct {
	User     *models.User `json:"user"`
	NextStep string       `json:"nextStep"`
	Token    string       `json:"token"`
}

// Register creates a STUDENT or TUTOR account and signs it in
// POST /api/v1/register
func (h *RegistrationHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	user, nextStep, err := h.registration.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.audit.safeLogRegistration(c, user)

	sess, err := h.sessions.auth.StartSession(c.Request.Context(), user, sessionMeta(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.sessions.setSessionCookie(c, sess)

	respond(c, http.StatusCreated, "User registered successfully", registerResponse{
		User:     user,
		NextStep: nextStep,
		Token:    sess.Token,
	})
}

// Status reports the caller's onboarding progress
// GET /api/v1/register/status
func (h *RegistrationHandler) Status(c *gin.Context, caller models.Identity) {
	status, err := h.registration.Status(c.Request.Context(), caller)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "Profile status retrieved successfully", status)
}

// SetupProfile creates the first tutor profile after sign-up
// POST /api/v1/register/setup-profile
func (h *RegistrationHandler) SetupProfile(c *gin.Context, caller models.Identity) {
	var req models.SetupTutorProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	profile, err := h.registration.SetupProfile(c.Request.Context(), caller, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusCreated, "Tutor profile created successfully! You can now start receiving bookings.", profile)
}
