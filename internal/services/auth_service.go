package services

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/skillbridge/tutoring-backend/internal/models"
	"github.com/skillbridge/tutoring-backend/internal/session"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles email/password sign-in and session lifecycle
type AuthService struct {
	users    UserStore
	resolver *session.Resolver
	logger   *logrus.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(users UserStore, resolver *session.Resolver, logger *logrus.Logger) *AuthService {
	return &AuthService{
		users:    users,
		resolver: resolver,
		logger:   logger,
	}
}

// SignIn verifies the credentials and opens a session
func (s *AuthService) SignIn(ctx context.Context, email, password string, meta session.Meta) (*models.User, *session.Session, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return user, nil, ErrInvalidCredentials
	}
	if user.IsBanned() {
		return user, nil, ErrAccountBanned
	}

	sess, err := s.StartSession(ctx, user, meta)
	if err != nil {
		return user, nil, err
	}
	return user, sess, nil
}

// StartSession opens a session for an already verified user
func (s *AuthService) StartSession(ctx context.Context, user *models.User, meta session.Meta) (*session.Session, error) {
	sess, err := s.resolver.Store().Create(ctx, user, meta)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":    user.ID,
		"role":       user.Role,
		"session_id": sess.ID,
		"ip":         meta.IPAddress,
	}).Info("Session created")

	return sess, nil
}

// GetSession resolves a token to its user and session
func (s *AuthService) GetSession(ctx context.Context, token string) (*models.User, *session.Session, error) {
	user, sess, err := s.resolver.Resolve(ctx, token)
	switch {
	case errors.Is(err, session.ErrNoSession):
		return nil, nil, ErrUnauthenticated
	case errors.Is(err, session.ErrBanned):
		return nil, nil, ErrAccountBanned
	case err != nil:
		return nil, nil, err
	}
	return user, sess, nil
}

// SignOut revokes the session behind token
func (s *AuthService) SignOut(ctx context.Context, token string) error {
	return s.resolver.Store().Revoke(ctx, token)
}
