package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/skillbridge/tutoring-backend/internal/database"
	"github.com/skillbridge/tutoring-backend/internal/models"
)

// BookingService owns the booking lifecycle: creation with the slot
// conflict check, role-scoped queries and status transitions.
type BookingService struct {
	bookings BookingStore
	users    UserStore
	logger   *logrus.Logger
	now      func() time.Time
}

// NewBookingService creates a new booking service
func NewBookingService(bookings BookingStore, users UserStore, logger *logrus.Logger) *BookingService {
	return &BookingService{
		bookings: bookings,
		users:    users,
		logger:   logger,
		now:      time.Now,
	}
}

// Create books [start, end) with the tutor for the student. The result is PENDING.
func (s *BookingService) Create(ctx context.Context, studentID, tutorID uuid.UUID, start, end time.Time) (*models.BookingDetail, error) {
	if tutorID == uuid.Nil || start.IsZero() || end.IsZero() {
		return nil, ErrBookingFieldsRequired
	}

	slot := models.Slot{Start: start.UTC(), End: end.UTC()}
	if err := slot.Validate(); err != nil {
		return nil, ErrEndBeforeStart
	}
	if slot.Start.Before(s.now()) {
		return nil, ErrStartInPast
	}

	tutor, err := s.users.GetByID(ctx, tutorID)
	if err != nil {
		return nil, err
	}
	if tutor == nil || tutor.IsBanned() {
		return nil, ErrTutorNotFound
	}
	if tutor.Role != models.RoleTutor {
		return nil, ErrNotATutor
	}

	booking := &models.Booking{
		StudentID: studentID,
		TutorID:   tutorID,
		StartTime: slot.Start,
		EndTime:   slot.End,
	}
	if err := s.bookings.CreateIfSlotFree(ctx, booking); err != nil {
		if errors.Is(err, database.ErrSlotTaken) {
			return nil, ErrSlotUnavailable
		}
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"student_id": studentID,
		"tutor_id":   tutorID,
		"start_time": slot.Start,
		"end_time":   slot.End,
	}).Info("Booking created")

	detail, err := s.bookings.GetDetail(ctx, booking.ID)
	if err != nil {
		return nil, err
	}
	if detail == nil {
		return nil, fmt.Errorf("booking %d vanished after insert", booking.ID)
	}
	return detail, nil
}

// Cancel moves a PENDING or CONFIRMED booking to CANCELLED
func (s *BookingService) Cancel(ctx context.Context, actor models.Identity, bookingID int64) (*models.Booking, error) {
	return s.Transition(ctx, actor, bookingID, models.BookingStatusCancelled)
}

// Accept moves a PENDING booking to CONFIRMED
func (s *BookingService) Accept(ctx context.Context, actor models.Identity, bookingID int64) (*models.Booking, error) {
	return s.Transition(ctx, actor, bookingID, models.BookingStatusConfirmed)
}

// Complete moves a CONFIRMED booking to COMPLETED
func (s *BookingService) Complete(ctx context.Context, actor models.Identity, bookingID int64) (*models.Booking, error) {
	return s.Transition(ctx, actor, bookingID, models.BookingStatusCompleted)
}

// Transition applies target to the booking on behalf of actor.
// Students may only cancel their own bookings. Tutors may accept, cancel or
// complete bookings where they are the tutor. Admins are not lifecycle actors.
func (s *BookingService) Transition(ctx context.Context, actor models.Identity, bookingID int64, target models.BookingStatus) (*models.Booking, error) {
	if actor.Role == models.RoleAdmin {
		return nil, ErrAdminNotLifecycle
	}

	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}

	if err := authorizeTransition(actor, booking, target); err != nil {
		return nil, err
	}
	if err := guardTransition(booking.Status, target); err != nil {
		return nil, err
	}

	updated, err := s.bookings.UpdateStatus(ctx, bookingID, target.Sources(), target)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		// Another request moved the booking out of every source state
		current, err := s.bookings.GetByID(ctx, bookingID)
		if err != nil {
			return nil, err
		}
		if current == nil {
			return nil, ErrBookingNotFound
		}
		if err := guardTransition(current.Status, target); err != nil {
			return nil, err
		}
		return nil, ErrInvalidTransition
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id": bookingID,
		"actor_id":   actor.ID,
		"actor_role": actor.Role,
		"from":       booking.Status,
		"to":         target,
	}).Info("Booking status changed")

	return updated, nil
}

func authorizeTransition(actor models.Identity, booking *models.Booking, target models.BookingStatus) error {
	deny := ErrBookingForbidden
	if target == models.BookingStatusCancelled {
		deny = ErrCancelForbidden
	}

	switch actor.Role {
	case models.RoleStudent:
		if target != models.BookingStatusCancelled || booking.StudentID != actor.ID {
			return deny
		}
	case models.RoleTutor:
		if booking.TutorID != actor.ID {
			return deny
		}
	default:
		return deny
	}
	return nil
}

// guardTransition reports why current cannot move to target, if it cannot
func guardTransition(current, target models.BookingStatus) error {
	switch target {
	case models.BookingStatusCancelled:
		if current.IsTerminal() {
			if current == models.BookingStatusCompleted {
				return ErrCancelCompleted
			}
			return ErrAlreadyCancelled
		}
	case models.BookingStatusCompleted:
		if current != models.BookingStatusConfirmed {
			return ErrOnlyConfirmedComplete
		}
	case models.BookingStatusConfirmed:
		if current != models.BookingStatusPending {
			return ErrOnlyPendingAccept
		}
	default:
		return ErrInvalidTransition
	}

	if !current.CanTransitionTo(target) {
		return ErrInvalidTransition
	}
	return nil
}

// BookingQuery carries the raw list parameters from the request
type BookingQuery struct {
	Status string
	SortBy string
	Order  string
}

// Query lists bookings visible to actor: students see their own, tutors see
// bookings with themselves, admins see everything. Defaults to start time descending.
func (s *BookingService) Query(ctx context.Context, actor models.Identity, q BookingQuery) ([]models.BookingDetail, error) {
	filter := models.BookingFilter{SortBy: models.BookingSortStartTime, Desc: true}

	if q.Status != "" {
		status := models.BookingStatus(strings.ToUpper(strings.TrimSpace(q.Status)))
		if !status.Valid() {
			return nil, ErrInvalidBookingStatus
		}
		filter.Status = status
	}

	switch q.SortBy {
	case "":
	case models.BookingSortStartTime, models.BookingSortEndTime, models.BookingSortCreatedAt, models.BookingSortStatus:
		filter.SortBy = q.SortBy
	default:
		return nil, ErrInvalidSortField
	}

	switch strings.ToLower(q.Order) {
	case "", "desc":
	case "asc":
		filter.Desc = false
	default:
		return nil, ErrInvalidSortOrder
	}

	switch actor.Role {
	case models.RoleStudent:
		filter.StudentID = actor.ID
	case models.RoleTutor:
		filter.TutorID = actor.ID
	case models.RoleAdmin:
	default:
		return nil, ErrForbidden
	}

	return s.bookings.List(ctx, filter)
}

// Get returns one booking to one of its participants
func (s *BookingService) Get(ctx context.Context, actor models.Identity, bookingID int64) (*models.BookingDetail, error) {
	detail, err := s.bookings.GetDetail(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if detail == nil {
		return nil, ErrBookingNotFound
	}
	if !detail.IsParticipant(actor.ID) {
		return nil, ErrBookingViewForbidden
	}
	return detail, nil
}
