package services

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/skillbridge/tutoring-backend/internal/database"
	"github.com/skillbridge/tutoring-backend/internal/models"
	"github.com/skillbridge/tutoring-backend/pkg/validator"
	"golang.org/x/crypto/bcrypt"
)

// RegistrationService creates accounts and walks tutors through onboarding
type RegistrationService struct {
	users      UserStore
	profiles   TutorProfileStore
	categories CategoryStore
	bcryptCost int
	logger     *logrus.Logger
}

// NewRegistrationService creates a new registration service
func NewRegistrationService(users UserStore, profiles TutorProfileStore, categories CategoryStore, bcryptCost int, logger *logrus.Logger) *RegistrationService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &RegistrationService{
		users:      users,
		profiles:   profiles,
		categories: categories,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Register creates a STUDENT or TUTOR account. Email is stored lower-cased
// and marked verified.
func (s *RegistrationService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, string, error) {
	if req.Role != models.RoleStudent && req.Role != models.RoleTutor {
		return nil, "", ErrRoleNotSelfService
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if existing != nil {
		return nil, "", ErrEmailTaken
	}

	var phone string
	if strings.TrimSpace(req.Phone) != "" {
		phone, err = validator.NewPhoneValidator().Validate(req.Phone)
		if err != nil {
			return nil, "", ErrInvalidPhone
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, "", err
	}

	user := &models.User{
		Email:         email,
		Name:          strings.TrimSpace(req.Name),
		PasswordHash:  string(hash),
		Role:          req.Role,
		EmailVerified: true,
		Phone:         models.NewNullString(phone),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": user.ID,
		"role":    user.Role,
	}).Info("User registered")

	next := models.NextStepReady
	if user.Role == models.RoleTutor {
		next = models.NextStepCompleteProfile
	}
	return user, next, nil
}

// SetupProfile creates the first tutor profile for a newly registered tutor
func (s *RegistrationService) SetupProfile(ctx context.Context, caller models.Identity, req models.SetupTutorProfileRequest) (*models.TutorProfile, error) {
	if caller.Role != models.RoleTutor {
		return nil, ErrTutorOnly
	}
	if strings.TrimSpace(req.Bio) == "" || req.CategoryIDs == nil {
		return nil, ErrProfileFields
	}
	categoryIDs := uniqueIDs(req.CategoryIDs)
	if len(categoryIDs) == 0 {
		return nil, ErrCategoryRequired
	}
	if req.HourlyRate <= 0 {
		return nil, ErrHourlyRate
	}
	if req.Experience < 0 {
		return nil, ErrNegativeExperience
	}

	existing, err := s.profiles.GetByUserID(ctx, caller.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrProfileExists
	}

	if err := checkCategoryIDs(ctx, s.categories, categoryIDs); err != nil {
		return nil, err
	}

	availability := req.Availability
	if availability.IsEmpty() {
		availability = models.Availability("{}")
	}

	profile := &models.TutorProfile{
		UserID:       caller.ID,
		Bio:          strings.TrimSpace(req.Bio),
		HourlyRate:   req.HourlyRate,
		Experience:   req.Experience,
		Availability: availability,
	}
	if err := s.profiles.Create(ctx, profile, categoryIDs); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ErrProfileExists
		}
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":    caller.ID,
		"categories": len(categoryIDs),
	}).Info("Tutor profile set up")

	created, err := s.profiles.GetByUserID(ctx, caller.ID)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return profile, nil
	}
	return created, nil
}

// Status reports how far the caller is through onboarding
func (s *RegistrationService) Status(ctx context.Context, caller models.Identity) (*models.ProfileStatus, error) {
	status := &models.ProfileStatus{Role: caller.Role, NextStep: models.NextStepReady}
	if caller.Role != models.RoleTutor {
		status.ProfileComplete = true
		return status, nil
	}

	profile, err := s.profiles.GetByUserID(ctx, caller.ID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		status.NextStep = models.NextStepCompleteProfile
		return status, nil
	}

	status.ProfileExists = true
	status.Profile = profile
	status.ProfileComplete = profileComplete(profile)
	switch {
	case !status.ProfileComplete:
		status.NextStep = models.NextStepUpdateProfile
	case profile.Availability.IsBlank():
		status.NextStep = models.NextStepSetAvailability
	}
	return status, nil
}

func profileComplete(p *models.TutorProfile) bool {
	return strings.TrimSpace(p.Bio) != "" && p.HourlyRate > 0 && p.Experience >= 0 && len(p.Categories) > 0
}
