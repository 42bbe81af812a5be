package services

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a service failure for the transport layer
type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindNotFound
	KindAuthorization
	KindConflict
	KindState
	KindUnauthenticated
)

// String returns the kind name
func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindAuthorization:
		return "authorization"
	case KindConflict:
		return "conflict"
	case KindState:
		return "state"
	case KindUnauthenticated:
		return "unauthenticated"
	}
	return "unknown"
}

// Error is a business-rule failure with a client-safe message
type Error struct {
	Kind    ErrorKind
	Code    string // machine readable, e.g. SLOT_UNAVAILABLE
	Message string
	Err     error // optional cause, never shown to clients
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// AsError extracts a *Error from err
func AsError(err error) (*Error, bool) {
	var se *Error
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// Booking lifecycle
var (
	ErrBookingFieldsRequired = newError(KindValidation, "VALIDATION_ERROR", "Tutor ID, start time, and end time are required")
	ErrEndBeforeStart        = newError(KindValidation, "INVALID_TIME_RANGE", "End time must be after start time")
	ErrStartInPast           = newError(KindValidation, "START_IN_PAST", "Cannot book sessions in the past")
	ErrTutorNotFound         = newError(KindNotFound, "TUTOR_NOT_FOUND", "Tutor not found")
	ErrNotATutor             = newError(KindNotFound, "NOT_A_TUTOR", "User is not a tutor")
	ErrSlotUnavailable       = newError(KindConflict, "SLOT_UNAVAILABLE", "Tutor is not available at this time")
	ErrBookingNotFound       = newError(KindNotFound, "BOOKING_NOT_FOUND", "Booking not found")
	ErrBookingForbidden      = newError(KindAuthorization, "BOOKING_FORBIDDEN", "You are not authorized to modify this booking")
	ErrBookingViewForbidden  = newError(KindAuthorization, "BOOKING_FORBIDDEN", "You are not authorized to view this booking")
	ErrCancelForbidden       = newError(KindAuthorization, "BOOKING_FORBIDDEN", "You are not authorized to cancel this booking")
	ErrCancelCompleted       = newError(KindState, "BOOKING_COMPLETED", "Cannot cancel a completed booking")
	ErrAlreadyCancelled      = newError(KindState, "BOOKING_CANCELLED", "Booking is already cancelled")
	ErrOnlyConfirmedComplete = newError(KindState, "BOOKING_NOT_CONFIRMED", "Only confirmed bookings can be marked as completed")
	ErrOnlyPendingAccept     = newError(KindState, "BOOKING_NOT_PENDING", "Only pending bookings can be accepted")
	ErrInvalidTransition     = newError(KindValidation, "INVALID_STATUS", "Invalid booking status")
	ErrAdminNotLifecycle     = newError(KindAuthorization, "BOOKING_FORBIDDEN", "Admins cannot change booking status")
	ErrInvalidBookingStatus  = newError(KindValidation, "INVALID_STATUS", "Invalid booking status filter")
	ErrInvalidSortField      = newError(KindValidation, "INVALID_SORT", "sortBy must be one of startTime, endTime, createdAt, status")
	ErrInvalidSortOrder      = newError(KindValidation, "INVALID_SORT", "order must be asc or desc")
)

// Reviews
var (
	ErrRatingOutOfRange = newError(KindValidation, "INVALID_RATING", "Rating must be between 1 and 5")
	ErrCommentRequired  = newError(KindValidation, "VALIDATION_ERROR", "Comment is required")
	ErrReviewNotEarned  = newError(KindValidation, "REVIEW_NOT_ALLOWED", "You can only review tutors you have had completed sessions with")
	ErrAlreadyReviewed  = newError(KindConflict, "ALREADY_REVIEWED", "You have already reviewed this tutor")
)

// Accounts and sessions
var (
	ErrUnauthenticated       = newError(KindUnauthenticated, "UNAUTHORIZED", "You are not authorized!")
	ErrForbidden             = newError(KindAuthorization, "FORBIDDEN", "Forbidden! You don't have permission to access this resources!")
	ErrInvalidCredentials    = newError(KindUnauthenticated, "INVALID_CREDENTIALS", "Invalid email or password")
	ErrAccountBanned         = newError(KindAuthorization, "ACCOUNT_BANNED", "Your account has been banned")
	ErrEmailTaken            = newError(KindConflict, "EMAIL_TAKEN", "User with this email already exists")
	ErrRoleNotSelfService    = newError(KindValidation, "INVALID_ROLE", "Role must be STUDENT or TUTOR")
	ErrUserNotFound          = newError(KindNotFound, "USER_NOT_FOUND", "User not found")
	ErrInvalidUserStatus     = newError(KindValidation, "INVALID_STATUS", "Status must be active or banned")
	ErrSelfStatusChange      = newError(KindValidation, "SELF_STATUS_CHANGE", "You cannot change your own status")
	ErrInvalidPhone          = newError(KindValidation, "INVALID_PHONE", "Invalid phone number")
	ErrTutorOnly             = newError(KindAuthorization, "FORBIDDEN", "Only tutors can create a tutor profile")
	ErrStudentOnly           = newError(KindAuthorization, "FORBIDDEN", "Only students can update their profile using this endpoint")
	ErrStudentFieldsRequired = newError(KindValidation, "VALIDATION_ERROR", "At least one field (name, phone, or image) must be provided")
	ErrInvalidRoleFilter     = newError(KindValidation, "INVALID_ROLE", "Role must be STUDENT, TUTOR or ADMIN")
)

// Tutor profiles and categories
var (
	ErrProfileExists        = newError(KindConflict, "PROFILE_EXISTS", "Tutor profile already exists. Use update profile endpoint instead.")
	ErrProfileNotFound      = newError(KindNotFound, "PROFILE_NOT_FOUND", "Tutor profile not found")
	ErrProfileFields        = newError(KindValidation, "VALIDATION_ERROR", "Bio, hourlyRate, experience, and categoryIds are required")
	ErrCategoryRequired     = newError(KindValidation, "CATEGORY_REQUIRED", "At least one category must be selected")
	ErrInvalidCategories    = newError(KindValidation, "INVALID_CATEGORY", "Some category IDs are invalid")
	ErrHourlyRate           = newError(KindValidation, "INVALID_HOURLY_RATE", "Hourly rate must be greater than 0")
	ErrNegativeExperience   = newError(KindValidation, "INVALID_EXPERIENCE", "Experience cannot be negative")
	ErrHourlyRateRequired   = newError(KindValidation, "VALIDATION_ERROR", "Hourly rate is required to create a profile")
	ErrAvailabilityRequired = newError(KindValidation, "VALIDATION_ERROR", "Availability is required")
	ErrCategoryNotFound     = newError(KindNotFound, "CATEGORY_NOT_FOUND", "Category not found")
	ErrCategoryNameTaken    = newError(KindConflict, "CATEGORY_EXISTS", "Category with this name already exists")
	ErrCategoryNameRequired = newError(KindValidation, "VALIDATION_ERROR", "Category name is required")
	ErrInvalidID            = newError(KindValidation, "INVALID_ID", "Invalid ID format")
	ErrPriceRange           = newError(KindValidation, "INVALID_PRICE_RANGE", "minPrice cannot be greater than maxPrice")
)
