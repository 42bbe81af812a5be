package models

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// NullString wraps sql.NullString to provide proper JSON marshaling
type NullString struct {
	sql.NullString
}

// NewNullString returns a valid NullString, or an invalid one for ""
func NewNullString(s string) NullString {
	return NullString{sql.NullString{String: s, Valid: s != ""}}
}

// MarshalJSON implements json.Marshaler
func (ns NullString) MarshalJSON() ([]byte, error) {
	if ns.Valid {
		return json.Marshal(ns.String)
	}
	return json.Marshal(nil)
}

// UnmarshalJSON implements json.Unmarshaler
func (ns *NullString) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s != nil {
		ns.Valid = true
		ns.String = *s
	} else {
		ns.Valid = false
	}
	return nil
}

// Role is the flat role a user holds for their lifetime
type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleTutor   Role = "TUTOR"
	RoleAdmin   Role = "ADMIN"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleTutor, RoleAdmin:
		return true
	}
	return false
}

// UserStatus is changed only by an admin
type UserStatus string

const (
	UserStatusActive UserStatus = "active"
	UserStatusBanned UserStatus = "banned"
)

// Valid reports whether s is one of the known statuses
func (s UserStatus) Valid() bool {
	return s == UserStatusActive || s == UserStatusBanned
}

// User represents a user in the system
type User struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	Email         string     `json:"email" db:"email"`
	Name          string     `json:"name" db:"name"`
	PasswordHash  string     `json:"-" db:"password_hash"`
	Role          Role       `json:"role" db:"role"`
	Status        UserStatus `json:"status" db:"status"`
	EmailVerified bool       `json:"emailVerified" db:"email_verified"`
	Phone         NullString `json:"phone" db:"phone"`
	Image         NullString `json:"image" db:"image"`
	CreatedAt     time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time  `json:"updatedAt" db:"updated_at"`
}

// IsBanned reports whether the account has been banned by an admin
func (u *User) IsBanned() bool {
	return u.Status == UserStatusBanned
}

// Identity returns the caller identity handed to handlers for this user
func (u *User) Identity() Identity {
	return Identity{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.Name,
		Role:          u.Role,
		EmailVerified: u.EmailVerified,
	}
}

// Identity is the resolved caller of an authenticated request
type Identity struct {
	ID            uuid.UUID `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	Role          Role      `json:"role"`
	EmailVerified bool      `json:"emailVerified"`
}

// HasRole reports whether the caller holds one of the given roles.
// An empty list means any authenticated caller.
func (i Identity) HasRole(roles ...Role) bool {
	if len(roles) == 0 {
		return true
	}
	for _, r := range roles {
		if i.Role == r {
			return true
		}
	}
	return false
}

// UserSummary is the public subset of a user embedded in bookings and reviews
type UserSummary struct {
	ID    uuid.UUID  `json:"id" db:"id"`
	Name  string     `json:"name" db:"name"`
	Email string     `json:"email" db:"email"`
	Image NullString `json:"image" db:"image"`
}

// UserFilter narrows the admin user list
type UserFilter struct {
	Role   Role
	Status UserStatus
}

// RegisterRequest is the public sign-up payload
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     Role   `json:"role" binding:"required,self_register_role"`
	Phone    string `json:"phone" binding:"omitempty,phone"`
}

// SignInRequest is the email/password sign-in payload
type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateUserStatusRequest is the admin moderation payload
type UpdateUserStatusRequest struct {
	Status UserStatus `json:"status" binding:"required,user_status"`
}

// UpdateStudentProfileRequest updates the caller's own profile fields
type UpdateStudentProfileRequest struct {
	Name  *string `json:"name" binding:"omitempty,min=1"`
	Phone *string `json:"phone" binding:"omitempty,phone"`
	Image *string `json:"image" binding:"omitempty,url"`
}

// Empty reports whether no field was supplied
func (r UpdateStudentProfileRequest) Empty() bool {
	return r.Name == nil && r.Phone == nil && r.Image == nil
}

// StudentStats are the counters on the student profile
type StudentStats struct {
	TotalBookings     int `json:"totalBookings" db:"total_bookings"`
	CompletedBookings int `json:"completedBookings" db:"completed_bookings"`
	UpcomingBookings  int `json:"upcomingBookings" db:"upcoming_bookings"`
	ReviewsGiven      int `json:"reviewsGiven" db:"reviews_given"`
}

// StudentProfile is the student's own view of their account
type StudentProfile struct {
	*User
	Stats StudentStats `json:"stats"`
}
