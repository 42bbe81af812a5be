package models

import (
	"time"

	"github.com/google/uuid"
)

// Review is a student's immutable rating of a tutor
type Review struct {
	ID        int64     `json:"id" db:"id"`
	StudentID uuid.UUID `json:"studentId" db:"student_id"`
	TutorID   uuid.UUID `json:"tutorId" db:"tutor_id"`
	Rating    int       `json:"rating" db:"rating"`
	Comment   string    `json:"comment" db:"comment"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// ReviewDetail is a review with its author attached
type ReviewDetail struct {
	Review
	Student UserSummary `json:"student" db:"student"`
}

// RatingRow is a single rating keyed by tutor, used for bulk aggregation
type RatingRow struct {
	TutorID uuid.UUID `db:"tutor_id"`
	Rating  int       `db:"rating"`
}

// CreateReviewRequest is the student's review payload.
// Rating range and comment are checked in the review service.
type CreateReviewRequest struct {
	TutorID string `json:"tutorId" binding:"required,uuid"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}
