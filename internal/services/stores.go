package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/skillbridge/tutoring-backend/internal/models"
)

// The services depend on these narrow views of the repositories in
// internal/database, which satisfy them.

// UserStore is the user persistence used by the services
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, filter models.UserFilter) ([]models.User, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.UserStatus) (*models.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, name, phone, image *string) (*models.User, error)
}

// BookingStore is the booking persistence used by the services
type BookingStore interface {
	CreateIfSlotFree(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id int64) (*models.Booking, error)
	GetDetail(ctx context.Context, id int64) (*models.BookingDetail, error)
	List(ctx context.Context, filter models.BookingFilter) ([]models.BookingDetail, error)
	UpdateStatus(ctx context.Context, id int64, from []models.BookingStatus, target models.BookingStatus) (*models.Booking, error)
	HasCompleted(ctx context.Context, studentID, tutorID uuid.UUID) (bool, error)
	CompletedEarnings(ctx context.Context, tutorID uuid.UUID) ([]models.EarningRow, error)
	TutorStats(ctx context.Context, tutorID uuid.UUID) (*models.DashboardStats, error)
	StudentStats(ctx context.Context, studentID uuid.UUID) (*models.StudentStats, error)
}

// ReviewStore is the review persistence used by the services
type ReviewStore interface {
	Create(ctx context.Context, review *models.Review) error
	ExistsForPair(ctx context.Context, studentID, tutorID uuid.UUID) (bool, error)
	ListByTutor(ctx context.Context, tutorID uuid.UUID) ([]models.ReviewDetail, error)
	Ratings(ctx context.Context, tutorIDs []uuid.UUID) ([]models.RatingRow, error)
}

// TutorProfileStore is the tutor profile persistence used by the services
type TutorProfileStore interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.TutorProfile, error)
	Create(ctx context.Context, profile *models.TutorProfile, categoryIDs []int64) error
	Update(ctx context.Context, profile *models.TutorProfile, categoryIDs []int64) error
	UpdateAvailability(ctx context.Context, userID uuid.UUID, availability models.Availability) (*models.TutorProfile, error)
	List(ctx context.Context, filter models.TutorFilter) ([]models.TutorListing, error)
	GetListing(ctx context.Context, userID uuid.UUID) (*models.TutorListing, error)
}

// CategoryStore is the category persistence used by the services
type CategoryStore interface {
	Create(ctx context.Context, name, description string) (*models.Category, error)
	List(ctx context.Context) ([]models.Category, error)
	Update(ctx context.Context, id int64, name, description string) (*models.Category, error)
	Delete(ctx context.Context, id int64) (bool, error)
	CountExisting(ctx context.Context, ids []int64) (int, error)
}

// StatsStore provides the admin platform counters
type StatsStore interface {
	Platform(ctx context.Context) (*models.PlatformStats, error)
}
