package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/skillbridge/tutoring-backend/internal/models"
	"github.com/skillbridge/tutoring-backend/internal/services"
)

// AdminHandler handles user moderation and platform statistics
type AdminHandler struct {
	admin  *services.AdminService
	audit  auditLogger
	logger *logrus.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(admin *services.AdminService, audit *services.AuditService, logger *logrus.Logger) *AdminHandler {
	return &AdminHandler{
		admin:  admin,
		audit:  auditLogger{audit: audit, logger: logger},
		logger: logger,
	}
}

// ListUsers returns users filtered by role and status
// GET /api/v1/admin/users
func (h *AdminHandler) ListUsers(c *gin.Context, _ models.Identity) {
	users, err := h.admin.ListUsers(c.Request.Context(),
		strings.ToUpper(strings.TrimSpace(c.Query("role"))),
		strings.ToLower(strings.TrimSpace(c.Query("status"))),
	)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if users == nil {
		users = []models.User{}
	}
	respond(c, http.StatusOK, "Users retrieved successfully", users)
}

// UpdateUserStatus bans or reactivates a user
// PATCH /api/v1/admin/users/:id/status
func (h *AdminHandler) UpdateUserStatus(c *gin.Context, caller models.Identity) {
	userID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req models.UpdateUserStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	user, previous, err := h.admin.UpdateUserStatus(c.Request.Context(), caller, userID, req.Status)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.audit.safeLogUserStatusChange(c, caller.ID, userID, previous, user.Status)
	respond(c, http.StatusOK, "User status updated successfully", user)
}

// Stats returns platform counters and revenue
// GET /api/v1/admin/stats
func (h *AdminHandler) Stats(c *gin.Context, _ models.Identity) {
	stats, err := h.admin.Stats(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "Stats retrieved successfully", stats)
}
