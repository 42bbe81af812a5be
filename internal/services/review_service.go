package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/skillbridge/tutoring-backend/internal/database"
	"github.com/skillbridge/tutoring-backend/internal/models"
)

// ReviewService creates reviews for completed sessions
type ReviewService struct {
	reviews  ReviewStore
	bookings BookingStore
	users    UserStore
	logger   *logrus.Logger
}

// NewReviewService creates a new review service
func NewReviewService(reviews ReviewStore, bookings BookingStore, users UserStore, logger *logrus.Logger) *ReviewService {
	return &ReviewService{
		reviews:  reviews,
		bookings: bookings,
		users:    users,
		logger:   logger,
	}
}

// Create records a student's review of a tutor. The student needs at least
// one COMPLETED booking with the tutor and may review each tutor once.
func (s *ReviewService) Create(ctx context.Context, studentID, tutorID uuid.UUID, rating int, comment string) (*models.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrRatingOutOfRange
	}
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return nil, ErrCommentRequired
	}

	tutor, err := s.users.GetByID(ctx, tutorID)
	if err != nil {
		return nil, err
	}
	if tutor == nil {
		return nil, ErrTutorNotFound
	}
	if tutor.Role != models.RoleTutor {
		return nil, ErrNotATutor
	}

	completed, err := s.bookings.HasCompleted(ctx, studentID, tutorID)
	if err != nil {
		return nil, err
	}
	if !completed {
		return nil, ErrReviewNotEarned
	}

	exists, err := s.reviews.ExistsForPair(ctx, studentID, tutorID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyReviewed
	}

	review := &models.Review{
		StudentID: studentID,
		TutorID:   tutorID,
		Rating:    rating,
		Comment:   comment,
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		// the unique constraint catches a concurrent duplicate
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ErrAlreadyReviewed
		}
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"review_id":  review.ID,
		"student_id": studentID,
		"tutor_id":   tutorID,
		"rating":     rating,
	}).Info("Review created")

	return review, nil
}
