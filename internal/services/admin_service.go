package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/skillbridge/tutoring-backend/internal/models"
)

// AdminService holds user moderation and platform statistics
type AdminService struct {
	users    UserStore
	bookings BookingStore
	stats    StatsStore
	logger   *logrus.Logger
}

// NewAdminService creates a new admin service
func NewAdminService(users UserStore, bookings BookingStore, stats StatsStore, logger *logrus.Logger) *AdminService {
	return &AdminService{
		users:    users,
		bookings: bookings,
		stats:    stats,
		logger:   logger,
	}
}

// ListUsers returns users, optionally filtered by role and status
func (s *AdminService) ListUsers(ctx context.Context, role, status string) ([]models.User, error) {
	filter := models.UserFilter{}
	if role != "" {
		filter.Role = models.Role(role)
		if !filter.Role.Valid() {
			return nil, ErrInvalidRoleFilter
		}
	}
	if status != "" {
		filter.Status = models.UserStatus(status)
		if !filter.Status.Valid() {
			return nil, ErrInvalidUserStatus
		}
	}
	return s.users.List(ctx, filter)
}

// UpdateUserStatus bans or reactivates a user. It returns the user and
// their previous status.
func (s *AdminService) UpdateUserStatus(ctx context.Context, admin models.Identity, userID uuid.UUID, status models.UserStatus) (*models.User, models.UserStatus, error) {
	if !status.Valid() {
		return nil, "", ErrInvalidUserStatus
	}
	if userID == admin.ID {
		return nil, "", ErrSelfStatusChange
	}

	current, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	if current == nil {
		return nil, "", ErrUserNotFound
	}

	updated, err := s.users.UpdateStatus(ctx, userID, status)
	if err != nil {
		return nil, "", err
	}
	if updated == nil {
		return nil, "", ErrUserNotFound
	}

	s.logger.WithFields(logrus.Fields{
		"admin_id": admin.ID,
		"user_id":  userID,
		"from":     current.Status,
		"to":       status,
	}).Info("User status changed")

	return updated, current.Status, nil
}

// Stats returns platform counters and revenue from completed sessions
func (s *AdminService) Stats(ctx context.Context) (*models.PlatformStats, error) {
	stats, err := s.stats.Platform(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.bookings.CompletedEarnings(ctx, uuid.Nil)
	if err != nil {
		return nil, err
	}
	stats.TotalRevenue = Earnings(rows)
	return stats, nil
}
