package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/skillbridge/tutoring-backend/internal/models"
	"github.com/skillbridge/tutoring-backend/internal/services"
)

// TutorHandler handles the public tutor catalogue and the tutor's own profile
type TutorHandler struct {
	tutors *services.TutorService
	logger *logrus.Logger
}

// NewTutorHandler creates a new tutor handler
func NewTutorHandler(tutors *services.TutorService, logger *logrus.Logger) *TutorHandler {
	return &TutorHandler{tutors: tutors, logger: logger}
}

// ListTutors returns the catalogue filtered by price, category and search term
// GET /api/v1/tutors
func (h *TutorHandler) ListTutors(c *gin.Context) {
	filter := models.TutorFilter{SearchTerm: strings.TrimSpace(c.Query("searchTerm"))}

	for _, p := range []struct {
		name string
		dst  **float64
	}{{"minPrice", &filter.MinPrice}, {"maxPrice", &filter.MaxPrice}} {
		raw := c.Query(p.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			respondFailure(c, http.StatusBadRequest, "VALIDATION_ERROR", p.name+" must be a non-negative number")
			return
		}
		*p.dst = &v
	}

	if raw := c.Query("categoryId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respondFailure(c, http.StatusBadRequest, "VALIDATION_ERROR", "categoryId must be a number")
			return
		}
		filter.CategoryID = &id
	}

	tutors, err := h.tutors.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "Tutors retrieved successfully", tutors)
}

// FeaturedTutors returns the top rated tutors
// GET /api/v1/tutors/featured
func (h *TutorHandler) FeaturedTutors(c *gin.Context) {
	tutors, err := h.tutors.Featured(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "Featured tutors retrieved successfully", tutors)
}

// GetTutor returns a tutor's public page
// GET /api/v1/tutors/:id
func (h *TutorHandler) GetTutor(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	tutor, err := h.tutors.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "Tutor retrieved successfully", tutor)
}

// GetProfile returns the calling tutor's profile
// GET /api/v1/tutor/profile
func (h *TutorHandler) GetProfile(c *gin.Context, caller models.Identity) {
	profile, err := h.tutors.GetProfile(c.Request.Context(), caller.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "Profile retrieved successfully", profile)
}

// UpsertProfile creates or updates the calling tutor's profile
// PUT /api/v1/tutor/profile
func (h *TutorHandler) UpsertProfile(c *gin.Context, caller models.Identity) {
	var req models.UpsertTutorProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	profile, created, err := h.tutors.UpsertProfile(c.Request.Context(), caller.ID, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if created {
		respond(c, http.StatusCreated, "Profile created successfully", profile)
		return
	}
	respond(c, http.StatusOK, "Profile updated successfully", profile)
}

// UpdateAvailability replaces the calling tutor's availability
// PUT /api/v1/tutor/availability
func (h *TutorHandler) UpdateAvailability(c *gin.Context, caller models.Identity) {
	var req models.UpdateAvailabilityRequest
	if !bindJSON(c, &req) {
		return
	}

	profile, err := h.tutors.UpdateAvailability(c.Request.Context(), caller.ID, req.Availability)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "Availability updated successfully", profile)
}

// Dashboard returns the calling tutor's session and earnings summary
// GET /api/v1/tutor/dashboard
func (h *TutorHandler) Dashboard(c *gin.Context, caller models.Identity) {
	stats, err := h.tutors.Dashboard(c.Request.Context(), caller.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "Dashboard stats retrieved successfully", stats)
}
