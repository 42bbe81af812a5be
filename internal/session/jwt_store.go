package session

import (
	"context"

	"github.com/skillbridge/tutoring-backend/internal/models"
	"github.com/skillbridge/tutoring-backend/internal/utils"
	"github.com/skillbridge/tutoring-backend/pkg/jwt"
)

// JWTStore issues self-contained signed session tokens. Nothing is stored
// server side, so Revoke only clears the client cookie and a token stays
// valid until it expires.
type JWTStore struct {
	jwt *jwt.Service
}

// NewJWTStore builds a stateless session store over the JWT service
func NewJWTStore(service *jwt.Service) *JWTStore {
	return &JWTStore{jwt: service}
}

// Create signs a session token for the user
func (s *JWTStore) Create(_ context.Context, user *models.User, meta Meta) (*Session, error) {
	token, claims, err := s.jwt.GenerateSessionToken(user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}

	device := utils.ParseUserAgent(meta.UserAgent)
	return &Session{
		ID:         claims.SessionID(),
		Token:      token,
		UserID:     user.ID,
		Role:       user.Role,
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
		DeviceInfo: &device,
		CreatedAt:  claims.IssuedAt.Time,
		ExpiresAt:  claims.ExpiresAt.Time,
	}, nil
}

// Lookup verifies the token signature and expiry
func (s *JWTStore) Lookup(_ context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrNoSession
	}
	claims, err := s.jwt.ValidateSessionToken(token)
	if err != nil {
		return nil, ErrNoSession
	}

	sess := &Session{
		ID:     claims.SessionID(),
		Token:  token,
		UserID: claims.UserID,
		Role:   models.Role(claims.Role),
	}
	if claims.IssuedAt != nil {
		sess.CreatedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		sess.ExpiresAt = claims.ExpiresAt.Time
	}
	return sess, nil
}

// Revoke is a no-op for signed tokens
func (s *JWTStore) Revoke(context.Context, string) error {
	return nil
}
