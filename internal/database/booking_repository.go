package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/skillbridge/tutoring-backend/internal/models"
)

const bookingColumns = `b.id, b.student_id, b.tutor_id, b.start_time, b.end_time, b.status, b.created_at, b.updated_at`

const bookingDetailSelect = `
	SELECT ` + bookingColumns + `,
		s.id AS "student.id", s.name AS "student.name", s.email AS "student.email", s.image AS "student.image",
		t.id AS "tutor.id", t.name AS "tutor.name", t.email AS "tutor.email", t.image AS "tutor.image"
	FROM bookings b
	JOIN users s ON s.id = b.student_id
	JOIN users t ON t.id = b.tutor_id`

var bookingSortColumns = map[string]string{
	models.BookingSortStartTime: "b.start_time",
	models.BookingSortEndTime:   "b.end_time",
	models.BookingSortCreatedAt: "b.created_at",
	models.BookingSortStatus:    "b.status",
}

// BookingRepository handles booking database operations
type BookingRepository struct {
	db DB
}

// NewBookingRepository creates a new booking repository
func NewBookingRepository(db DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// CreateIfSlotFree inserts a PENDING booking unless an active booking of the
// same tutor overlaps [start, end). Concurrent creators for one tutor are
// serialised by a transaction-scoped advisory lock, so the check and the
// insert are atomic. Returns ErrSlotTaken on overlap.
func (r *BookingRepository) CreateIfSlotFree(ctx context.Context, booking *models.Booking) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, booking.TutorID.String()); err != nil {
		return fmt.Errorf("failed to lock tutor schedule: %w", err)
	}

	var taken bool
	overlapQuery := `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE tutor_id = $1
			  AND status = ANY($2)
			  AND start_time < $4
			  AND $3 < end_time
		)
	`
	err = tx.GetContext(ctx, &taken, overlapQuery,
		booking.TutorID,
		statusArray(models.ActiveBookingStatuses),
		booking.StartTime,
		booking.EndTime,
	)
	if err != nil {
		return fmt.Errorf("failed to check slot availability: %w", err)
	}
	if taken {
		return ErrSlotTaken
	}

	booking.Status = models.BookingStatusPending
	insertQuery := `
		INSERT INTO bookings (student_id, tutor_id, start_time, end_time, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	err = tx.QueryRowxContext(ctx, insertQuery,
		booking.StudentID,
		booking.TutorID,
		booking.StartTime,
		booking.EndTime,
		booking.Status,
	).Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)
	if err != nil {
		if err = translate(err); errors.Is(err, ErrSlotTaken) {
			return ErrSlotTaken
		}
		return fmt.Errorf("failed to create booking: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit booking: %w", translate(err))
	}
	return nil
}

// GetByID returns a booking or nil, nil when it does not exist
func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.GetContext(ctx, &booking, `SELECT `+bookingColumns+` FROM bookings b WHERE b.id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &booking, nil
}

// GetDetail returns a booking with both counterparties, or nil, nil
func (r *BookingRepository) GetDetail(ctx context.Context, id int64) (*models.BookingDetail, error) {
	var detail models.BookingDetail
	err := r.db.GetContext(ctx, &detail, bookingDetailSelect+` WHERE b.id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &detail, nil
}

// List returns every booking matching the filter, without pagination.
// Unknown sort keys fall back to start time.
func (r *BookingRepository) List(ctx context.Context, filter models.BookingFilter) ([]models.BookingDetail, error) {
	var (
		conditions []string
		args       []interface{}
	)
	if filter.StudentID != uuid.Nil {
		args = append(args, filter.StudentID)
		conditions = append(conditions, fmt.Sprintf("b.student_id = $%d", len(args)))
	}
	if filter.TutorID != uuid.Nil {
		args = append(args, filter.TutorID)
		conditions = append(conditions, fmt.Sprintf("b.tutor_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("b.status = $%d", len(args)))
	}

	query := bookingDetailSelect
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}

	column, ok := bookingSortColumns[filter.SortBy]
	if !ok {
		column = bookingSortColumns[models.BookingSortStartTime]
	}
	direction := "ASC"
	if filter.Desc {
		direction = "DESC"
	}
	query += fmt.Sprintf(` ORDER BY %s %s, b.id %s`, column, direction, direction)

	bookings := []models.BookingDetail{}
	if err := r.db.SelectContext(ctx, &bookings, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

// UpdateStatus moves a booking to target only if its current status is one
// of from. Returns nil, nil when no row matched, either because the booking
// does not exist or because another request changed its status first.
func (r *BookingRepository) UpdateStatus(ctx context.Context, id int64, from []models.BookingStatus, target models.BookingStatus) (*models.Booking, error) {
	query := `
		UPDATE bookings b SET status = $3, updated_at = NOW()
		WHERE b.id = $1 AND b.status = ANY($2)
		RETURNING ` + bookingColumns

	var booking models.Booking
	err := r.db.GetContext(ctx, &booking, query, id, statusArray(from), target)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update booking status: %w", err)
	}
	return &booking, nil
}

// HasCompleted reports whether the student has at least one COMPLETED booking with the tutor
func (r *BookingRepository) HasCompleted(ctx context.Context, studentID, tutorID uuid.UUID) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE student_id = $1 AND tutor_id = $2 AND status = 'COMPLETED'
		)
	`
	if err := r.db.GetContext(ctx, &exists, query, studentID, tutorID); err != nil {
		return false, fmt.Errorf("failed to check completed bookings: %w", err)
	}
	return exists, nil
}

// CompletedEarnings returns every COMPLETED booking priced at its tutor's
// hourly rate. uuid.Nil returns rows for the whole platform.
func (r *BookingRepository) CompletedEarnings(ctx context.Context, tutorID uuid.UUID) ([]models.EarningRow, error) {
	query := `
		SELECT b.start_time, b.end_time, tp.hourly_rate
		FROM bookings b
		JOIN tutor_profiles tp ON tp.user_id = b.tutor_id
		WHERE b.status = 'COMPLETED'`
	var args []interface{}
	if tutorID != uuid.Nil {
		query += ` AND b.tutor_id = $1`
		args = append(args, tutorID)
	}

	rows := []models.EarningRow{}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to load earnings: %w", err)
	}
	return rows, nil
}

// TutorStats counts a tutor's bookings by status
func (r *BookingRepository) TutorStats(ctx context.Context, tutorID uuid.UUID) (*models.DashboardStats, error) {
	query := `
		SELECT
			COUNT(*) AS total_sessions,
			COUNT(*) FILTER (WHERE status = 'PENDING') AS pending_sessions,
			COUNT(*) FILTER (WHERE status = 'CONFIRMED') AS confirmed_sessions,
			COUNT(*) FILTER (WHERE status = 'COMPLETED') AS completed_sessions,
			COUNT(*) FILTER (WHERE status = 'CANCELLED') AS cancelled_sessions
		FROM bookings
		WHERE tutor_id = $1
	`
	var stats models.DashboardStats
	if err := r.db.GetContext(ctx, &stats, query, tutorID); err != nil {
		return nil, fmt.Errorf("failed to load tutor stats: %w", err)
	}
	return &stats, nil
}

// StudentStats counts a student's bookings and reviews.
// Upcoming means CONFIRMED and starting at or after now.
func (r *BookingRepository) StudentStats(ctx context.Context, studentID uuid.UUID) (*models.StudentStats, error) {
	query := `
		SELECT
			COUNT(*) AS total_bookings,
			COUNT(*) FILTER (WHERE status = 'COMPLETED') AS completed_bookings,
			COUNT(*) FILTER (WHERE status = 'CONFIRMED' AND start_time >= NOW()) AS upcoming_bookings,
			(SELECT COUNT(*) FROM reviews WHERE student_id = $1) AS reviews_given
		FROM bookings
		WHERE student_id = $1
	`
	var stats models.StudentStats
	if err := r.db.GetContext(ctx, &stats, query, studentID); err != nil {
		return nil, fmt.Errorf("failed to load student stats: %w", err)
	}
	return &stats, nil
}
