package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/skillbridge/tutoring-backend/internal/models"
)

// TutorService serves the public tutor catalogue and the tutor's own profile and dashboard
type TutorService struct {
	profiles   TutorProfileStore
	categories CategoryStore
	reviews    ReviewStore
	bookings   BookingStore
	logger     *logrus.Logger
}

// NewTutorService creates a new tutor service
func NewTutorService(profiles TutorProfileStore, categories CategoryStore, reviews ReviewStore, bookings BookingStore, logger *logrus.Logger) *TutorService {
	return &TutorService{
		profiles:   profiles,
		categories: categories,
		reviews:    reviews,
		bookings:   bookings,
		logger:     logger,
	}
}

// List returns the catalogue with ratings attached
func (s *TutorService) List(ctx context.Context, filter models.TutorFilter) ([]models.TutorListing, error) {
	if filter.MinPrice != nil && filter.MaxPrice != nil && *filter.MinPrice > *filter.MaxPrice {
		return nil, ErrPriceRange
	}

	listings, err := s.profiles.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(listings) == 0 {
		return listings, nil
	}

	ids := make([]uuid.UUID, len(listings))
	for i := range listings {
		ids[i] = listings[i].UserID
	}
	rows, err := s.reviews.Ratings(ctx, ids)
	if err != nil {
		return nil, err
	}
	ApplyRatings(listings, SummariseRatings(rows))
	return listings, nil
}

// Featured returns the top rated tutors, recomputed on every call
func (s *TutorService) Featured(ctx context.Context) ([]models.TutorListing, error) {
	listings, err := s.profiles.List(ctx, models.TutorFilter{})
	if err != nil {
		return nil, err
	}
	rows, err := s.reviews.Ratings(ctx, nil)
	if err != nil {
		return nil, err
	}
	ApplyRatings(listings, SummariseRatings(rows))
	return RankFeatured(listings, FeaturedLimit), nil
}

// Get returns one tutor's public page with reviews
func (s *TutorService) Get(ctx context.Context, tutorID uuid.UUID) (*models.TutorDetail, error) {
	listing, err := s.profiles.GetListing(ctx, tutorID)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, ErrTutorNotFound
	}

	reviews, err := s.reviews.ListByTutor(ctx, tutorID)
	if err != nil {
		return nil, err
	}

	ratings := make([]int, len(reviews))
	for i := range reviews {
		ratings[i] = reviews[i].Rating
	}
	listing.AverageRating = AverageRating(ratings)
	listing.TotalReviews = len(ratings)

	return &models.TutorDetail{TutorListing: *listing, Reviews: reviews}, nil
}

// GetProfile returns the caller's own profile
func (s *TutorService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.TutorProfile, error) {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}
	return profile, nil
}

// UpsertProfile creates the profile if absent, else merges the supplied
// fields into it. created reports which one happened.
func (s *TutorService) UpsertProfile(ctx context.Context, userID uuid.UUID, req models.UpsertTutorProfileRequest) (profile *models.TutorProfile, created bool, err error) {
	if req.HourlyRate != nil && *req.HourlyRate <= 0 {
		return nil, false, ErrHourlyRate
	}
	if req.Experience != nil && *req.Experience < 0 {
		return nil, false, ErrNegativeExperience
	}

	categoryIDs := uniqueIDs(req.CategoryIDs)
	if err := s.checkCategories(ctx, categoryIDs); err != nil {
		return nil, false, err
	}

	existing, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, false, err
	}

	if existing == nil {
		if req.HourlyRate == nil {
			return nil, false, ErrHourlyRateRequired
		}
		profile = &models.TutorProfile{UserID: userID, HourlyRate: *req.HourlyRate, Availability: req.Availability}
		if req.Bio != nil {
			profile.Bio = *req.Bio
		}
		if req.Experience != nil {
			profile.Experience = *req.Experience
		}
		if err := s.profiles.Create(ctx, profile, categoryIDs); err != nil {
			return nil, false, err
		}
		created = true
	} else {
		profile = existing
		if req.Bio != nil {
			profile.Bio = *req.Bio
		}
		if req.HourlyRate != nil {
			profile.HourlyRate = *req.HourlyRate
		}
		if req.Experience != nil {
			profile.Experience = *req.Experience
		}
		if !req.Availability.IsEmpty() {
			profile.Availability = req.Availability
		}
		if err := s.profiles.Update(ctx, profile, categoryIDs); err != nil {
			return nil, false, err
		}
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"created": created,
	}).Info("Tutor profile saved")

	profile, err = s.GetProfile(ctx, userID)
	return profile, created, err
}

// UpdateAvailability replaces the availability blob of an existing profile
func (s *TutorService) UpdateAvailability(ctx context.Context, userID uuid.UUID, availability models.Availability) (*models.TutorProfile, error) {
	if availability.IsEmpty() {
		return nil, ErrAvailabilityRequired
	}
	profile, err := s.profiles.UpdateAvailability(ctx, userID, availability)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}
	return profile, nil
}

// Dashboard returns session counts, earnings and rating for a tutor
func (s *TutorService) Dashboard(ctx context.Context, tutorID uuid.UUID) (*models.DashboardStats, error) {
	stats, err := s.bookings.TutorStats(ctx, tutorID)
	if err != nil {
		return nil, err
	}

	earnings, err := s.bookings.CompletedEarnings(ctx, tutorID)
	if err != nil {
		return nil, err
	}
	stats.TotalEarnings = Earnings(earnings)

	rows, err := s.reviews.Ratings(ctx, []uuid.UUID{tutorID})
	if err != nil {
		return nil, err
	}
	summary := SummariseRatings(rows)[tutorID]
	stats.AverageRating = summary.Average
	stats.TotalReviews = summary.Count

	return stats, nil
}

// checkCategories verifies every id refers to an existing category
func (s *TutorService) checkCategories(ctx context.Context, ids []int64) error {
	return checkCategoryIDs(ctx, s.categories, ids)
}

func checkCategoryIDs(ctx context.Context, categories CategoryStore, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	count, err := categories.CountExisting(ctx, ids)
	if err != nil {
		return err
	}
	if count != len(ids) {
		return ErrInvalidCategories
	}
	return nil
}

// uniqueIDs drops duplicates and keeps order. nil stays nil.
func uniqueIDs(ids []int64) []int64 {
	if ids == nil {
		return nil
	}
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
