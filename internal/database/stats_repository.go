package database

import (
	"context"
	"fmt"

	"github.com/skillbridge/tutoring-backend/internal/models"
)

// StatsRepository runs the platform-wide counters for the admin overview
type StatsRepository struct {
	db DB
}

// NewStatsRepository creates a new stats repository
func NewStatsRepository(db DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// Platform returns user, booking, review and category counts
func (r *StatsRepository) Platform(ctx context.Context) (*models.PlatformStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM users) AS total_users,
			(SELECT COUNT(*) FROM users WHERE role = 'STUDENT') AS total_students,
			(SELECT COUNT(*) FROM users WHERE role = 'TUTOR') AS total_tutors,
			(SELECT COUNT(*) FROM users WHERE status = 'banned') AS banned_users,
			(SELECT COUNT(*) FROM bookings) AS total_bookings,
			(SELECT COUNT(*) FROM bookings WHERE status = 'COMPLETED') AS completed_bookings,
			(SELECT COUNT(*) FROM reviews) AS total_reviews,
			(SELECT COUNT(*) FROM categories) AS total_categories
	`
	var stats models.PlatformStats
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("failed to load platform stats: %w", err)
	}
	return &stats, nil
}
