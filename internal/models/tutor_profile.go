package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Availability is an opaque JSON document describing when a tutor teaches.
// The backend stores and returns it without interpreting its shape.
type Availability json.RawMessage

// Value implements driver.Valuer. The document is sent as text so the
// driver does not bytea-encode it.
func (a Availability) Value() (driver.Value, error) {
	if a.IsEmpty() {
		return nil, nil
	}
	return string(a), nil
}

// Scan implements sql.Scanner
func (a *Availability) Scan(value interface{}) error {
	if value == nil {
		*a = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		*a = append((*a)[:0], v...)
	case string:
		*a = Availability(v)
	default:
		return errors.New("type assertion to []byte failed")
	}
	return nil
}

// MarshalJSON implements json.Marshaler
func (a Availability) MarshalJSON() ([]byte, error) {
	if len(a) == 0 {
		return []byte("null"), nil
	}
	return []byte(a), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (a *Availability) UnmarshalJSON(data []byte) error {
	if a == nil {
		return errors.New("models.Availability: UnmarshalJSON on nil pointer")
	}
	*a = append((*a)[:0], data...)
	return nil
}

// IsEmpty reports whether no availability was supplied (absent or JSON null)
func (a Availability) IsEmpty() bool {
	trimmed := bytes.TrimSpace(a)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// IsBlank reports whether the tutor has not described any availability yet
func (a Availability) IsBlank() bool {
	return a.IsEmpty() || bytes.Equal(bytes.TrimSpace(a), []byte("{}"))
}

// TutorProfile holds the teaching details of a TUTOR user
type TutorProfile struct {
	ID           int64        `json:"id" db:"id"`
	UserID       uuid.UUID    `json:"userId" db:"user_id"`
	Bio          string       `json:"bio" db:"bio"`
	HourlyRate   float64      `json:"hourlyRate" db:"hourly_rate"`
	Experience   int          `json:"experience" db:"experience"`
	Availability Availability `json:"availability" db:"availability"`
	CreatedAt    time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time    `json:"updatedAt" db:"updated_at"`
	Categories   []Category   `json:"categories" db:"-"`
}

// TutorListing is a profile as shown in the public catalogue
type TutorListing struct {
	TutorProfile
	User          UserSummary `json:"user" db:"user"`
	AverageRating float64     `json:"averageRating" db:"-"`
	TotalReviews  int         `json:"totalReviews" db:"-"`
}

// TutorDetail is a single tutor page with their reviews
type TutorDetail struct {
	TutorListing
	Reviews []ReviewDetail `json:"reviews"`
}

// TutorFilter narrows the public catalogue
type TutorFilter struct {
	MinPrice   *float64
	MaxPrice   *float64
	CategoryID *int64
	SearchTerm string
}

// UpsertTutorProfileRequest creates or merges a tutor profile.
// Absent fields keep their stored value on update.
type UpsertTutorProfileRequest struct {
	Bio          *string      `json:"bio"`
	HourlyRate   *float64     `json:"hourlyRate" binding:"omitempty,gt=0"`
	Experience   *int         `json:"experience" binding:"omitempty,gte=0"`
	Availability Availability `json:"availability"`
	CategoryIDs  []int64      `json:"categoryIds"`
}

// SetupTutorProfileRequest is the onboarding payload for a new tutor.
// Field rules are checked by the registration service.
type SetupTutorProfileRequest struct {
	Bio          string       `json:"bio"`
	HourlyRate   float64      `json:"hourlyRate"`
	Experience   int          `json:"experience"`
	Availability Availability `json:"availability"`
	CategoryIDs  []int64      `json:"categoryIds"`
}

// UpdateAvailabilityRequest replaces the stored availability blob
type UpdateAvailabilityRequest struct {
	Availability Availability `json:"availability"`
}

// Onboarding next steps reported after registration and on the status endpoint
const (
	NextStepCompleteProfile = "COMPLETE_PROFILE"
	NextStepUpdateProfile   = "UPDATE_PROFILE"
	NextStepSetAvailability = "SET_AVAILABILITY"
	NextStepReady           = "READY"
)

// ProfileStatus describes how far a user is through onboarding
type ProfileStatus struct {
	Role            Role          `json:"role"`
	ProfileExists   bool          `json:"profileExists"`
	ProfileComplete bool          `json:"profileComplete"`
	NextStep        string        `json:"nextStep"`
	Profile         *TutorProfile `json:"profile,omitempty"`
}
