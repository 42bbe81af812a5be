package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// BookingStatus represents the lifecycle state of a booking
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCompleted BookingStatus = "COMPLETED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

// ActiveBookingStatuses are the states that hold a tutor's time slot
var ActiveBookingStatuses = []BookingStatus{BookingStatusPending, BookingStatusConfirmed}

var allBookingStatuses = []BookingStatus{
	BookingStatusPending, BookingStatusConfirmed, BookingStatusCompleted, BookingStatusCancelled,
}

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:   {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed: {BookingStatusCompleted, BookingStatusCancelled},
}

// Valid reports whether s is a known status
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCompleted, BookingStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether target is reachable from s in one step
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	for _, next := range bookingTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves s
func (s BookingStatus) IsTerminal() bool {
	return len(bookingTransitions[s]) == 0
}

// Sources returns the states from which s can be reached
func (s BookingStatus) Sources() []BookingStatus {
	var sources []BookingStatus
	for _, from := range allBookingStatuses {
		if from.CanTransitionTo(s) {
			sources = append(sources, from)
		}
	}
	return sources
}

// ErrInvalidSlot is returned by Slot.Validate when start is not before end
var ErrInvalidSlot = errors.New("end time must be after start time")

// Slot is a half-open time interval [Start, End)
type Slot struct {
	Start time.Time
	End   time.Time
}

// Validate checks that the slot has positive length
func (s Slot) Validate() error {
	if !s.Start.Before(s.End) {
		return ErrInvalidSlot
	}
	return nil
}

// Overlaps reports whether the two half-open slots share any instant.
// Back-to-back slots (one ends exactly when the other starts) do not overlap.
func (s Slot) Overlaps(other Slot) bool {
	return s.Start.Before(other.End) && other.Start.Before(s.End)
}

// Hours returns the slot length in hours
func (s Slot) Hours() float64 {
	return s.End.Sub(s.Start).Hours()
}

// Booking is a student's reservation of a tutor's time
type Booking struct {
	ID        int64         `json:"id" db:"id"`
	StudentID uuid.UUID     `json:"studentId" db:"student_id"`
	TutorID   uuid.UUID     `json:"tutorId" db:"tutor_id"`
	StartTime time.Time     `json:"startTime" db:"start_time"`
	EndTime   time.Time     `json:"endTime" db:"end_time"`
	Status    BookingStatus `json:"status" db:"status"`
	CreatedAt time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time     `json:"updatedAt" db:"updated_at"`
}

// Slot returns the booked interval
func (b *Booking) Slot() Slot {
	return Slot{Start: b.StartTime, End: b.EndTime}
}

// IsParticipant reports whether the user is the student or the tutor of this booking
func (b *Booking) IsParticipant(userID uuid.UUID) bool {
	return b.StudentID == userID || b.TutorID == userID
}

// BookingDetail is a booking with both counterparties attached
type BookingDetail struct {
	Booking
	Student UserSummary `json:"student" db:"student"`
	Tutor   UserSummary `json:"tutor" db:"tutor"`
}

// Booking list sort keys accepted by the API
const (
	BookingSortStartTime = "startTime"
	BookingSortEndTime   = "endTime"
	BookingSortCreatedAt = "createdAt"
	BookingSortStatus    = "status"
)

// BookingFilter narrows a booking listing.
// A zero StudentID / TutorID means no restriction on that side.
type BookingFilter struct {
	StudentID uuid.UUID
	TutorID   uuid.UUID
	Status    BookingStatus
	SortBy    string
	Desc      bool
}

// CreateBookingRequest is the student's booking payload.
// Missing fields are reported by the booking service.
type CreateBookingRequest struct {
	TutorID   string    `json:"tutorId" binding:"omitempty,uuid"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
}

// EarningRow is one completed session priced at the tutor's current rate
type EarningRow struct {
	StartTime  time.Time `db:"start_time"`
	EndTime    time.Time `db:"end_time"`
	HourlyRate float64   `db:"hourly_rate"`
}

// DashboardStats summarises a tutor's sessions
type DashboardStats struct {
	TotalSessions     int     `json:"totalSessions" db:"total_sessions"`
	PendingSessions   int     `json:"pendingSessions" db:"pending_sessions"`
	ConfirmedSessions int     `json:"confirmedSessions" db:"confirmed_sessions"`
	CompletedSessions int     `json:"completedSessions" db:"completed_sessions"`
	CancelledSessions int     `json:"cancelledSessions" db:"cancelled_sessions"`
	TotalEarnings     float64 `json:"totalEarnings" db:"-"`
	AverageRating     float64 `json:"averageRating" db:"-"`
	TotalReviews      int     `json:"totalReviews" db:"-"`
}

// PlatformStats is the admin overview
type PlatformStats struct {
	TotalUsers        int     `json:"totalUsers" db:"total_users"`
	TotalStudents     int     `json:"totalStudents" db:"total_students"`
	TotalTutors       int     `json:"totalTutors" db:"total_tutors"`
	BannedUsers       int     `json:"bannedUsers" db:"banned_users"`
	TotalBookings     int     `json:"totalBookings" db:"total_bookings"`
	CompletedBookings int     `json:"completedBookings" db:"completed_bookings"`
	TotalReviews      int     `json:"totalReviews" db:"total_reviews"`
	TotalCategories   int     `json:"totalCategories" db:"total_categories"`
	TotalRevenue      float64 `json:"totalRevenue" db:"-"`
}
