package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/skillbridge/tutoring-backend/internal/models"
	"github.com/skillbridge/tutoring-backend/internal/utils"
)

// ErrNoSession is returned when a credential is missing, unknown or expired
var ErrNoSession = errors.New("no active session")

// Session is a signed-in device of a user
type Session struct {
	ID         string            `json:"id"`
	Token      string            `json:"-"`
	UserID     uuid.UUID         `json:"userId"`
	Role       models.Role       `json:"role"`
	IPAddress  string            `json:"ipAddress,omitempty"`
	UserAgent  string            `json:"userAgent,omitempty"`
	DeviceInfo *utils.DeviceInfo `json:"deviceInfo,omitempty"`
	CreatedAt  time.Time         `json:"createdAt"`
	ExpiresAt  time.Time         `json:"expiresAt"`
}

// Meta identifies the client a session is created for
type Meta struct {
	IPAddress string
	UserAgent string
}

// Store issues, resolves and revokes session tokens
type Store interface {
	Create(ctx context.Context, user *models.User, meta Meta) (*Session, error)
	// Lookup returns ErrNoSession for unknown or expired tokens
	Lookup(ctx context.Context, token string) (*Session, error)
	Revoke(ctx context.Context, token string) error
}
