package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/skillbridge/tutoring-backend/internal/models"
	"github.com/skillbridge/tutoring-backend/internal/services"
)

// ReviewHandler handles review HTTP requests
type ReviewHandler struct {
	reviews *services.ReviewService
	logger  *logrus.Logger
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviews *services.ReviewService, logger *logrus.Logger) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, logger: logger}
}

// CreateReview records the calling student's review of a tutor
// POST /api/v1/reviews
func (h *ReviewHandler) CreateReview(c *gin.Context, caller models.Identity) {
	var req models.CreateReviewRequest
	if !bindJSON(c, &req) {
		return
	}

	review, err := h.reviews.Create(c.Request.Context(), caller.ID, uuid.MustParse(req.TutorID), req.Rating, req.Comment)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusCreated, "Review created successfully", review)
}
