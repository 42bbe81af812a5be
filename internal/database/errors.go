package database

import (
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/skillbridge/tutoring-backend/internal/models"
)

var (
	// ErrDuplicate is returned when a unique constraint rejects a write
	ErrDuplicate = errors.New("record already exists")

	// ErrSlotTaken is returned when a booking overlaps an active booking of the same tutor
	ErrSlotTaken = errors.New("tutor is not available at this time")
)

const (
	pqUniqueViolation    = "23505"
	pqExclusionViolation = "23P01"
)

// translate maps driver constraint violations onto the package sentinels.
// Any other error is returned unchanged.
func translate(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case pqUniqueViolation:
		return ErrDuplicate
	case pqExclusionViolation:
		return ErrSlotTaken
	}
	return err
}

func statusArray(statuses []models.BookingStatus) interface{} {
	values := make([]string, len(statuses))
	for i, s := range statuses {
		values[i] = string(s)
	}
	return pq.Array(values)
}

func uuidArray(ids []uuid.UUID) interface{} {
	values := make([]string, len(ids))
	for i, id := range ids {
		values[i] = id.String()
	}
	return pq.Array(values)
}
