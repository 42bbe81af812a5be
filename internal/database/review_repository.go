package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/skillbridge/tutoring-backend/internal/models"
)

// ReviewRepository handles review database operations
type ReviewRepository struct {
	db DB
}

// NewReviewRepository creates a new review repository
func NewReviewRepository(db DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create inserts a review. A second review for the same student and tutor yields ErrDuplicate.
func (r *ReviewRepository) Create(ctx context.Context, review *models.Review) error {
	query := `
		INSERT INTO reviews (student_id, tutor_id, rating, comment)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		review.StudentID,
		review.TutorID,
		review.Rating,
		review.Comment,
	).Scan(&review.ID, &review.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create review: %w", translate(err))
	}
	return nil
}

// ExistsForPair reports whether the student has already reviewed the tutor
func (r *ReviewRepository) ExistsForPair(ctx context.Context, studentID, tutorID uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM reviews WHERE student_id = $1 AND tutor_id = $2)`
	if err := r.db.GetContext(ctx, &exists, query, studentID, tutorID); err != nil {
		return false, fmt.Errorf("failed to check review: %w", err)
	}
	return exists, nil
}

// ListByTutor returns a tutor's reviews newest first, each with its author
func (r *ReviewRepository) ListByTutor(ctx context.Context, tutorID uuid.UUID) ([]models.ReviewDetail, error) {
	query := `
		SELECT r.id, r.student_id, r.tutor_id, r.rating, r.comment, r.created_at,
			s.id AS "student.id", s.name AS "student.name", s.email AS "student.email", s.image AS "student.image"
		FROM reviews r
		JOIN users s ON s.id = r.student_id
		WHERE r.tutor_id = $1
		ORDER BY r.created_at DESC
	`
	reviews := []models.ReviewDetail{}
	if err := r.db.SelectContext(ctx, &reviews, query, tutorID); err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

// Ratings returns every rating of the given tutors. A nil slice returns all ratings.
func (r *ReviewRepository) Ratings(ctx context.Context, tutorIDs []uuid.UUID) ([]models.RatingRow, error) {
	query := `SELECT tutor_id, rating FROM reviews`
	var args []interface{}
	if tutorIDs != nil {
		query += ` WHERE tutor_id = ANY($1::uuid[])`
		args = append(args, uuidArray(tutorIDs))
	}

	rows := []models.RatingRow{}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to load ratings: %w", err)
	}
	return rows, nil
}
