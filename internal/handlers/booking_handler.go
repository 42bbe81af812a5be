package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/skillbridge/tutoring-backend/internal/models"
	"github.com/skillbridge/tutoring-backend/internal/services"
)

// BookingHandler handles booking and tutor session HTTP requests
type BookingHandler struct {
	bookings *services.BookingService
	audit    auditLogger
	logger   *logrus.Logger
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(bookings *services.BookingService, audit *services.AuditService, logger *logrus.Logger) *BookingHandler {
	return &BookingHandler{
		bookings: bookings,
		audit:    auditLogger{audit: audit, logger: logger},
		logger:   logger,
	}
}

// CreateBooking books a tutor for the calling student
// POST /api/v1/bookings
func (h *BookingHandler) CreateBooking(c *gin.Context, caller models.Identity) {
	var req models.CreateBookingRequest
	if !bindJSON(c, &req) {
		return
	}

	var tutorID uuid.UUID
	if req.TutorID != "" {
		tutorID = uuid.MustParse(req.TutorID)
	}

	booking, err := h.bookings.Create(c.Request.Context(), caller.ID, tutorID, req.StartTime, req.EndTime)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respond(c, http.StatusCreated, "Booking created successfully", booking)
}

// ListBookings lists the bookings visible to the caller
// GET /api/v1/bookings, GET /api/v1/tutor/sessions
func (h *BookingHandler) ListBookings(c *gin.Context, caller models.Identity) {
	bookings, err := h.bookings.Query(c.Request.Context(), caller, services.BookingQuery{
		Status: c.Query("status"),
		SortBy: c.Query("sortBy"),
		Order:  c.Query("order"),
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	message := "Bookings retrieved successfully"
	if caller.Role == models.RoleTutor {
		message = "Sessions retrieved successfully"
	}
	respond(c, http.StatusOK, message, bookings)
}

// GetBooking returns one booking to one of its participants
// GET /api/v1/bookings/:id
func (h *BookingHandler) GetBooking(c *gin.Context, caller models.Identity) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}

	booking, err := h.bookings.Get(c.Request.Context(), caller, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, "Booking retrieved successfully", booking)
}

// CancelBooking cancels a pending or confirmed booking
// PATCH /api/v1/bookings/:id/cancel
func (h *BookingHandler) CancelBooking(c *gin.Context, caller models.Identity) {
	h.transition(c, caller, models.BookingStatusCancelled, "Booking cancelled successfully")
}

// AcceptSession confirms a pending booking
// PATCH /api/v1/tutor/sessions/:id/accept
func (h *BookingHandler) AcceptSession(c *gin.Context, caller models.Identity) {
	h.transition(c, caller, models.BookingStatusConfirmed, "Session accepted successfully")
}

// CompleteSession marks a confirmed booking as completed
// PATCH /api/v1/tutor/sessions/:id/complete
func (h *BookingHandler) CompleteSession(c *gin.Context, caller models.Identity) {
	h.transition(c, caller, models.BookingStatusCompleted, "Session marked as complete")
}

func (h *BookingHandler) transition(c *gin.Context, caller models.Identity, target models.BookingStatus, message string) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}

	booking, err := h.bookings.Transition(c.Request.Context(), caller, id, target)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.audit.safeLogBookingTransition(c, caller, id, target)
	respond(c, http.StatusOK, message, booking)
}
