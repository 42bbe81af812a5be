package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/skillbridge/tutoring-backend/internal/models"
	"github.com/skillbridge/tutoring-backend/internal/services"
)

// StudentHandler handles the student's own profile
type StudentHandler struct {
	students *services.StudentService
	logger   *logrus.Logger
}

// NewStudentHandler creates a new student handler
func NewStudentHandler(students *services.StudentService, logger *logrus.Logger) *StudentHandler {
	return &StudentHandler{students: students, logger: logger}
}

// GetProfile returns the calling student's profile with stats
// GET /api/v1/student/profile
func (h *StudentHandler) GetProfile(c *gin.Context, caller models.Identity) {
	profile, err := h.students.Get(c.Request.Context(), caller.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "Profile retrieved successfully", profile)
}

// UpdateProfile changes the calling student's name, phone or image
// PUT /api/v1/student/profile
func (h *StudentHandler) UpdateProfile(c *gin.Context, caller models.Identity) {
	var req models.UpdateStudentProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.students.Update(c.Request.Context(), caller, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "Profile updated successfully", user)
}
