package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/skillbridge/tutoring-backend/internal/models"
	"github.com/skillbridge/tutoring-backend/internal/services"
	"github.com/skillbridge/tutoring-backend/internal/session"
	"github.com/skillbridge/tutoring-backend/internal/utils"
)

// auditLogger records audit events without ever failing the request
type auditLogger struct {
	audit  *services.AuditService
	logger *logrus.Logger
}

func requestMeta(c *gin.Context) services.RequestMeta {
	return services.RequestMeta{
		IPAddress: utils.GetRealIP(c),
		UserAgent: utils.GetUserAgent(c),
	}
}

func sessionMeta(c *gin.Context) session.Meta {
	meta := requestMeta(c)
	return session.Meta{IPAddress: meta.IPAddress, UserAgent: meta.UserAgent}
}

// logAuditError logs audit service errors without failing the request
func (a auditLogger) logAuditError(operation string, err error) {
	if err != nil {
		a.logger.WithError(err).WithField("operation", operation).Error("AUDIT ERROR")
	}
}

func (a auditLogger) safeLogSignIn(c *gin.Context, userID *uuid.UUID, email string, success bool, reason string) {
	if a.audit == nil {
		return
	}
	a.logAuditError("LogSignIn", a.audit.LogSignIn(c.Request.Context(), userID, email, success, reason, requestMeta(c)))
}

func (a auditLogger) safeLogSignOut(c *gin.Context, userID uuid.UUID) {
	if a.audit == nil {
		return
	}
	a.logAuditError("LogSignOut", a.audit.LogSignOut(c.Request.Context(), userID, requestMeta(c)))
}

func (a auditLogger) safeLogRegistration(c *gin.Context, user *models.User) {
	if a.audit == nil {
		return
	}
	a.logAuditError("LogRegistration", a.audit.LogRegistration(c.Request.Context(), user, requestMeta(c)))
}

func (a auditLogger) safeLogUserStatusChange(c *gin.Context, adminID, targetID uuid.UUID, from, to models.UserStatus) {
	if a.audit == nil {
		return
	}
	a.logAuditError("LogUserStatusChange", a.audit.LogUserStatusChange(c.Request.Context(), adminID, targetID, from, to, requestMeta(c)))
}

func (a auditLogger) safeLogBookingTransition(c *gin.Context, actor models.Identity, bookingID int64, to models.BookingStatus) {
	if a.audit == nil {
		return
	}
	a.logAuditError("LogBookingTransition", a.audit.LogBookingTransition(c.Request.Context(), actor, bookingID, to, requestMeta(c)))
}
