package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/skillbridge/tutoring-backend/internal/models"
	"github.com/skillbridge/tutoring-backend/pkg/validator"
)

// StudentService serves the student's own profile
type StudentService struct {
	users    UserStore
	bookings BookingStore
	phones   *validator.PhoneValidator
	logger   *logrus.Logger
}

// NewStudentService creates a new student service
func NewStudentService(users UserStore, bookings BookingStore, logger *logrus.Logger) *StudentService {
	return &StudentService{
		users:    users,
		bookings: bookings,
		phones:   validator.NewPhoneValidator(),
		logger:   logger,
	}
}

// Get returns the student with their booking and review counters
func (s *StudentService) Get(ctx context.Context, studentID uuid.UUID) (*models.StudentProfile, error) {
	user, err := s.users.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	stats, err := s.bookings.StudentStats(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return &models.StudentProfile{User: user, Stats: *stats}, nil
}

// Update changes name, phone or image. At least one must be supplied.
func (s *StudentService) Update(ctx context.Context, caller models.Identity, req models.UpdateStudentProfileRequest) (*models.User, error) {
	if caller.Role != models.RoleStudent {
		return nil, ErrStudentOnly
	}
	if req.Empty() {
		return nil, ErrStudentFieldsRequired
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, ErrStudentFieldsRequired
		}
		req.Name = &name
	}
	if req.Phone != nil && strings.TrimSpace(*req.Phone) != "" {
		phone, err := s.phones.Validate(*req.Phone)
		if err != nil {
			return nil, ErrInvalidPhone
		}
		req.Phone = &phone
	}

	user, err := s.users.UpdateProfile(ctx, caller.ID, req.Name, req.Phone, req.Image)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	s.logger.WithField("user_id", caller.ID).Info("Student profile updated")
	return user, nil
}
