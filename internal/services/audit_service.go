package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/skillbridge/tutoring-backend/internal/database"
	"github.com/skillbridge/tutoring-backend/internal/models"
	"github.com/skillbridge/tutoring-backend/internal/utils"
)

// AuditService writes security and moderation events to audit_logs
type AuditService struct {
	db      database.DB
	enabled bool
}

// NewAuditService creates a new audit service. A disabled service accepts
// every event and writes nothing.
func NewAuditService(db database.DB, enabled bool) *AuditService {
	return &AuditService{
		db:      db,
		enabled: enabled,
	}
}

// RequestMeta identifies where an audited request came from
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

// AuditEvent represents a security event to be logged
type AuditEvent struct {
	UserID     *uuid.UUID // nil for pre-authentication events
	Action     string     // e.g. "sign_in", "sign_out", "user_status_change"
	EntityType string     // e.g. "user", "booking"
	EntityID   string
	Meta       RequestMeta
	Details    map[string]interface{}
}

// LogSignIn records a sign-in attempt
func (s *AuditService) LogSignIn(ctx context.Context, userID *uuid.UUID, email string, success bool, reason string, meta RequestMeta) error {
	details := map[string]interface{}{
		"email":   email,
		"success": success,
	}
	if reason != "" {
		details["reason"] = reason
	}

	action := "sign_in_failed"
	if success {
		action = "sign_in"
	}

	event := AuditEvent{
		UserID:     userID,
		Action:     action,
		EntityType: "user",
		Meta:       meta,
		Details:    details,
	}
	if userID != nil {
		event.EntityID = userID.String()
	}
	return s.logEvent(ctx, event)
}

// LogSignOut records a sign-out
func (s *AuditService) LogSignOut(ctx context.Context, userID uuid.UUID, meta RequestMeta) error {
	return s.logEvent(ctx, AuditEvent{
		UserID:     &userID,
		Action:     "sign_out",
		EntityType: "user",
		EntityID:   userID.String(),
		Meta:       meta,
	})
}

// LogRegistration records a new account
func (s *AuditService) LogRegistration(ctx context.Context, user *models.User, meta RequestMeta) error {
	return s.logEvent(ctx, AuditEvent{
		UserID:     &user.ID,
		Action:     "register",
		EntityType: "user",
		EntityID:   user.ID.String(),
		Meta:       meta,
		Details:    map[string]interface{}{"role": user.Role},
	})
}

// LogUserStatusChange records an admin moderation action
func (s *AuditService) LogUserStatusChange(ctx context.Context, adminID, targetID uuid.UUID, from, to models.UserStatus, meta RequestMeta) error {
	return s.logEvent(ctx, AuditEvent{
		UserID:     &adminID,
		Action:     "user_status_change",
		EntityType: "user",
		EntityID:   targetID.String(),
		Meta:       meta,
		Details: map[string]interface{}{
			"from": from,
			"to":   to,
		},
	})
}

// LogBookingTransition records a booking lifecycle change
func (s *AuditService) LogBookingTransition(ctx context.Context, actor models.Identity, bookingID int64, to models.BookingStatus, meta RequestMeta) error {
	return s.logEvent(ctx, AuditEvent{
		UserID:     &actor.ID,
		Action:     "booking_" + string(to),
		EntityType: "booking",
		EntityID:   strconv.FormatInt(bookingID, 10),
		Meta:       meta,
		Details: map[string]interface{}{
			"actorRole": actor.Role,
			"to":        to,
		},
	})
}

// logEvent inserts an audit event into the database
func (s *AuditService) logEvent(ctx context.Context, event AuditEvent) error {
	if !s.enabled {
		return nil
	}

	details := event.Details
	if details == nil {
		details = map[string]interface{}{}
	}
	details["deviceInfo"] = utils.ParseUserAgent(event.Meta.UserAgent)

	payload, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("failed to encode audit details: %w", err)
	}

	query := `
		INSERT INTO audit_logs (
			user_id, action, entity_type, entity_id,
			ip_address, user_agent, details, created_at
		) VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8)
	`

	_, err = s.db.ExecContext(ctx, query,
		event.UserID,
		event.Action,
		event.EntityType,
		event.EntityID,
		event.Meta.IPAddress,
		event.Meta.UserAgent,
		string(payload),
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to log audit event: %w", err)
	}

	return nil
}
