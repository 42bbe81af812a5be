package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/skillbridge/tutoring-backend/internal/models"
)

const profileColumns = `tp.id, tp.user_id, tp.bio, tp.hourly_rate, tp.experience, tp.availability, tp.created_at, tp.updated_at`

const listingSelect = `
	SELECT ` + profileColumns + `,
		u.id AS "user.id", u.name AS "user.name", u.email AS "user.email", u.image AS "user.image"
	FROM tutor_profiles tp
	JOIN users u ON u.id = tp.user_id
	WHERE u.role = 'TUTOR' AND u.status = 'active'`

// TutorProfileRepository handles tutor profile database operations
type TutorProfileRepository struct {
	db DB
}

// NewTutorProfileRepository creates a new tutor profile repository
func NewTutorProfileRepository(db DB) *TutorProfileRepository {
	return &TutorProfileRepository{db: db}
}

// GetByUserID returns the profile of a tutor with its categories, or nil, nil if none exists
func (r *TutorProfileRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.TutorProfile, error) {
	var profile models.TutorProfile
	query := `SELECT ` + profileColumns + ` FROM tutor_profiles tp WHERE tp.user_id = $1`
	err := r.db.GetContext(ctx, &profile, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tutor profile: %w", err)
	}

	categories, err := r.loadCategories(ctx, []int64{profile.ID})
	if err != nil {
		return nil, err
	}
	profile.Categories = categories[profile.ID]
	return &profile, nil
}

// Create inserts a profile and links the given categories in one transaction.
// A second profile for the same user yields ErrDuplicate.
func (r *TutorProfileRepository) Create(ctx context.Context, profile *models.TutorProfile, categoryIDs []int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO tutor_profiles (user_id, bio, hourly_rate, experience, availability)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	err = tx.QueryRowxContext(ctx, query,
		profile.UserID,
		profile.Bio,
		profile.HourlyRate,
		profile.Experience,
		profile.Availability,
	).Scan(&profile.ID, &profile.CreatedAt, &profile.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create tutor profile: %w", translate(err))
	}

	if err := replaceCategories(ctx, tx, profile.ID, categoryIDs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit tutor profile: %w", err)
	}
	return nil
}

// Update writes the profile fields. When categoryIDs is non-nil the category
// links are replaced with it; nil leaves them untouched.
func (r *TutorProfileRepository) Update(ctx context.Context, profile *models.TutorProfile, categoryIDs []int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE tutor_profiles SET
			bio = $2, hourly_rate = $3, experience = $4, availability = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err = tx.QueryRowxContext(ctx, query,
		profile.ID,
		profile.Bio,
		profile.HourlyRate,
		profile.Experience,
		profile.Availability,
	).Scan(&profile.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update tutor profile: %w", err)
	}

	if categoryIDs != nil {
		if err := replaceCategories(ctx, tx, profile.ID, categoryIDs); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit tutor profile: %w", err)
	}
	return nil
}

// UpdateAvailability replaces the availability blob. Returns nil, nil when the tutor has no profile.
func (r *TutorProfileRepository) UpdateAvailability(ctx context.Context, userID uuid.UUID, availability models.Availability) (*models.TutorProfile, error) {
	query := `
		UPDATE tutor_profiles tp SET availability = $2, updated_at = NOW()
		WHERE tp.user_id = $1
		RETURNING ` + profileColumns

	var profile models.TutorProfile
	err := r.db.GetContext(ctx, &profile, query, userID, availability)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update availability: %w", err)
	}
	return &profile, nil
}

// List returns the public catalogue of active tutors matching the filter
func (r *TutorProfileRepository) List(ctx context.Context, filter models.TutorFilter) ([]models.TutorListing, error) {
	var args []interface{}
	query := listingSelect

	if filter.MinPrice != nil {
		args = append(args, *filter.MinPrice)
		query += fmt.Sprintf(" AND tp.hourly_rate >= $%d", len(args))
	}
	if filter.MaxPrice != nil {
		args = append(args, *filter.MaxPrice)
		query += fmt.Sprintf(" AND tp.hourly_rate <= $%d", len(args))
	}
	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		query += fmt.Sprintf(` AND EXISTS (
			SELECT 1 FROM tutor_profile_categories pc
			WHERE pc.tutor_profile_id = tp.id AND pc.category_id = $%d)`, len(args))
	}
	if term := strings.TrimSpace(filter.SearchTerm); term != "" {
		args = append(args, "%"+term+"%")
		query += fmt.Sprintf(" AND (u.name ILIKE $%d OR tp.bio ILIKE $%d)", len(args), len(args))
	}
	query += ` ORDER BY tp.created_at DESC`

	listings := []models.TutorListing{}
	if err := r.db.SelectContext(ctx, &listings, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list tutors: %w", err)
	}

	if err := r.attachCategories(ctx, listings); err != nil {
		return nil, err
	}
	return listings, nil
}

// GetListing returns one active tutor's public listing, or nil, nil if absent
func (r *TutorProfileRepository) GetListing(ctx context.Context, userID uuid.UUID) (*models.TutorListing, error) {
	var listing models.TutorListing
	err := r.db.GetContext(ctx, &listing, listingSelect+` AND tp.user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tutor: %w", err)
	}

	listings := []models.TutorListing{listing}
	if err := r.attachCategories(ctx, listings); err != nil {
		return nil, err
	}
	return &listings[0], nil
}

func (r *TutorProfileRepository) attachCategories(ctx context.Context, listings []models.TutorListing) error {
	if len(listings) == 0 {
		return nil
	}
	ids := make([]int64, len(listings))
	for i := range listings {
		ids[i] = listings[i].ID
	}
	byProfile, err := r.loadCategories(ctx, ids)
	if err != nil {
		return err
	}
	for i := range listings {
		listings[i].Categories = byProfile[listings[i].ID]
	}
	return nil
}

type profileCategory struct {
	ProfileID int64 `db:"tutor_profile_id"`
	models.Category
}

func (r *TutorProfileRepository) loadCategories(ctx context.Context, profileIDs []int64) (map[int64][]models.Category, error) {
	query := `
		SELECT pc.tutor_profile_id, c.id, c.name, c.description, c.created_at, c.updated_at
		FROM tutor_profile_categories pc
		JOIN categories c ON c.id = pc.category_id
		WHERE pc.tutor_profile_id = ANY($1)
		ORDER BY c.name ASC
	`

	var rows []profileCategory
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(profileIDs)); err != nil {
		return nil, fmt.Errorf("failed to load tutor categories: %w", err)
	}

	byProfile := make(map[int64][]models.Category, len(profileIDs))
	for _, id := range profileIDs {
		byProfile[id] = []models.Category{}
	}
	for _, row := range rows {
		byProfile[row.ProfileID] = append(byProfile[row.ProfileID], row.Category)
	}
	return byProfile, nil
}

func replaceCategories(ctx context.Context, tx *sqlx.Tx, profileID int64, categoryIDs []int64) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM tutor_profile_categories WHERE tutor_profile_id = $1`, profileID); err != nil {
		return fmt.Errorf("failed to clear tutor categories: %w", err)
	}
	if len(categoryIDs) == 0 {
		return nil
	}
	query := `
		INSERT INTO tutor_profile_categories (tutor_profile_id, category_id)
		SELECT $1, unnest($2::bigint[])
		ON CONFLICT DO NOTHING
	`
	if _, err := tx.ExecContext(ctx, query, profileID, pq.Array(categoryIDs)); err != nil {
		return fmt.Errorf("failed to link tutor categories: %w", err)
	}
	return nil
}
