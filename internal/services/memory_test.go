package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/skillbridge/tutoring-backend/internal/database"
	"github.com/skillbridge/tutoring-backend/internal/models"
)

// world is an in-memory stand-in for the database shared by the fake stores
type world struct {
	users      map[uuid.UUID]*models.User
	bookings   []*models.Booking
	reviews    []*models.Review
	profiles   map[uuid.UUID]*models.TutorProfile
	links      map[uuid.UUID][]int64
	categories map[int64]*models.Category
	nextID     int64
	now        time.Time
}

func newWorld() *world {
	return &world{
		users:      make(map[uuid.UUID]*models.User),
		profiles:   make(map[uuid.UUID]*models.TutorProfile),
		links:      make(map[uuid.UUID][]int64),
		categories: make(map[int64]*models.Category),
		now:        time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (w *world) id() int64 {
	w.nextID++
	return w.nextID
}

func (w *world) addUser(name string, role models.Role) *models.User {
	u := &models.User{
		ID:     uuid.New(),
		Email:  strings.ToLower(name) + "@example.com",
		Name:   name,
		Role:   role,
		Status: models.UserStatusActive,
	}
	w.users[u.ID] = u
	return u
}

func (w *world) addProfile(tutor *models.User, rate float64, categoryIDs ...int64) *models.TutorProfile {
	p := &models.TutorProfile{
		ID:           w.id(),
		UserID:       tutor.ID,
		Bio:          tutor.Name + " teaches",
		HourlyRate:   rate,
		Experience:   3,
		Availability: models.Availability(`{"mon":["09:00-12:00"]}`),
	}
	w.profiles[tutor.ID] = p
	w.links[tutor.ID] = categoryIDs
	return p
}

func (w *world) addCategory(name string) *models.Category {
	c := &models.Category{ID: w.id(), Name: name}
	w.categories[c.ID] = c
	return c
}

func (w *world) addBooking(student, tutor *models.User, start time.Time, hours int, status models.BookingStatus) *models.Booking {
	b := &models.Booking{
		ID:        w.id(),
		StudentID: student.ID,
		TutorID:   tutor.ID,
		StartTime: start,
		EndTime:   start.Add(time.Duration(hours) * time.Hour),
		Status:    status,
		CreatedAt: w.now,
	}
	w.bookings = append(w.bookings, b)
	return b
}

func (w *world) addReview(student, tutor *models.User, rating int) {
	w.reviews = append(w.reviews, &models.Review{
		ID: w.id(), StudentID: student.ID, TutorID: tutor.ID, Rating: rating, Comment: "ok", CreatedAt: w.now,
	})
}

func (w *world) summary(id uuid.UUID) models.UserSummary {
	u := w.users[id]
	if u == nil {
		return models.UserSummary{ID: id}
	}
	return models.UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, Image: u.Image}
}

func (w *world) profileCopy(userID uuid.UUID) *models.TutorProfile {
	p := w.profiles[userID]
	if p == nil {
		return nil
	}
	out := *p
	out.Categories = []models.Category{}
	for _, id := range w.links[userID] {
		if c := w.categories[id]; c != nil {
			out.Categories = append(out.Categories, *c)
		}
	}
	return &out
}

func testLogger() *logrus.Logger {
	logger, _ := test.NewNullLogger()
	return logger
}

type fakeUsers struct{ w *world }

func (f fakeUsers) Create(_ context.Context, user *models.User) error {
	for _, u := range f.w.users {
		if u.Email == user.Email {
			return database.ErrDuplicate
		}
	}
	user.ID = uuid.New()
	if user.Status == "" {
		user.Status = models.UserStatusActive
	}
	user.CreatedAt = f.w.now
	user.UpdatedAt = f.w.now
	stored := *user
	f.w.users[user.ID] = &stored
	return nil
}

func (f fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	u := f.w.users[id]
	if u == nil {
		return nil, nil
	}
	out := *u
	return &out, nil
}

func (f fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.w.users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, nil
}

func (f fakeUsers) List(_ context.Context, filter models.UserFilter) ([]models.User, error) {
	var out []models.User
	for _, u := range f.w.users {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if filter.Status != "" && u.Status != filter.Status {
			continue
		}
		out = append(out, *u)
	}
	return out, nil
}

func (f fakeUsers) UpdateStatus(_ context.Context, id uuid.UUID, status models.UserStatus) (*models.User, error) {
	u := f.w.users[id]
	if u == nil {
		return nil, nil
	}
	u.Status = status
	out := *u
	return &out, nil
}

func (f fakeUsers) UpdateProfile(_ context.Context, id uuid.UUID, name, phone, image *string) (*models.User, error) {
	u := f.w.users[id]
	if u == nil {
		return nil, nil
	}
	if name != nil {
		u.Name = *name
	}
	if phone != nil {
		u.Phone = models.NewNullString(*phone)
	}
	if image != nil {
		u.Image = models.NewNullString(*image)
	}
	out := *u
	return &out, nil
}

type fakeBookings struct{ w *world }

func (f fakeBookings) CreateIfSlotFree(_ context.Context, booking *models.Booking) error {
	for _, b := range f.w.bookings {
		if b.TutorID != booking.TutorID || (b.Status != models.BookingStatusPending && b.Status != models.BookingStatusConfirmed) {
			continue
		}
		if b.Slot().Overlaps(booking.Slot()) {
			return database.ErrSlotTaken
		}
	}
	booking.ID = f.w.id()
	booking.Status = models.BookingStatusPending
	booking.CreatedAt = f.w.now
	booking.UpdatedAt = f.w.now
	stored := *booking
	f.w.bookings = append(f.w.bookings, &stored)
	return nil
}

func (f fakeBookings) find(id int64) *models.Booking {
	for _, b := range f.w.bookings {
		if b.ID == id {
			return b
		}
	}
	return nil
}

func (f fakeBookings) GetByID(_ context.Context, id int64) (*models.Booking, error) {
	b := f.find(id)
	if b == nil {
		return nil, nil
	}
	out := *b
	return &out, nil
}

func (f fakeBookings) detail(b *models.Booking) models.BookingDetail {
	return models.BookingDetail{Booking: *b, Student: f.w.summary(b.StudentID), Tutor: f.w.summary(b.TutorID)}
}

func (f fakeBookings) GetDetail(_ context.Context, id int64) (*models.BookingDetail, error) {
	b := f.find(id)
	if b == nil {
		return nil, nil
	}
	d := f.detail(b)
	return &d, nil
}

func (f fakeBookings) List(_ context.Context, filter models.BookingFilter) ([]models.BookingDetail, error) {
	out := []models.BookingDetail{}
	for _, b := range f.w.bookings {
		if filter.StudentID != uuid.Nil && b.StudentID != filter.StudentID {
			continue
		}
		if filter.TutorID != uuid.Nil && b.TutorID != filter.TutorID {
			continue
		}
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		out = append(out, f.detail(b))
	}

	key := func(d models.BookingDetail) string {
		switch filter.SortBy {
		case models.BookingSortEndTime:
			return d.EndTime.Format(time.RFC3339Nano)
		case models.BookingSortCreatedAt:
			return d.CreatedAt.Format(time.RFC3339Nano)
		case models.BookingSortStatus:
			return string(d.Status)
		}
		return d.StartTime.Format(time.RFC3339Nano)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if filter.Desc {
			return key(out[i]) > key(out[j])
		}
		return key(out[i]) < key(out[j])
	})
	return out, nil
}

func (f fakeBookings) UpdateStatus(_ context.Context, id int64, from []models.BookingStatus, target models.BookingStatus) (*models.Booking, error) {
	b := f.find(id)
	if b == nil {
		return nil, nil
	}
	for _, s := range from {
		if b.Status == s {
			b.Status = target
			b.UpdatedAt = f.w.now
			out := *b
			return &out, nil
		}
	}
	return nil, nil
}

func (f fakeBookings) HasCompleted(_ context.Context, studentID, tutorID uuid.UUID) (bool, error) {
	for _, b := range f.w.bookings {
		if b.StudentID == studentID && b.TutorID == tutorID && b.Status == models.BookingStatusCompleted {
			return true, nil
		}
	}
	return false, nil
}

func (f fakeBookings) CompletedEarnings(_ context.Context, tutorID uuid.UUID) ([]models.EarningRow, error) {
	var rows []models.EarningRow
	for _, b := range f.w.bookings {
		if b.Status != models.BookingStatusCompleted || (tutorID != uuid.Nil && b.TutorID != tutorID) {
			continue
		}
		p := f.w.profiles[b.TutorID]
		if p == nil {
			continue
		}
		rows = append(rows, models.EarningRow{StartTime: b.StartTime, EndTime: b.EndTime, HourlyRate: p.HourlyRate})
	}
	return rows, nil
}

func (f fakeBookings) TutorStats(_ context.Context, tutorID uuid.UUID) (*models.DashboardStats, error) {
	stats := &models.DashboardStats{}
	for _, b := range f.w.bookings {
		if b.TutorID != tutorID {
			continue
		}
		stats.TotalSessions++
		switch b.Status {
		case models.BookingStatusPending:
			stats.PendingSessions++
		case models.BookingStatusConfirmed:
			stats.ConfirmedSessions++
		case models.BookingStatusCompleted:
			stats.CompletedSessions++
		case models.BookingStatusCancelled:
			stats.CancelledSessions++
		}
	}
	return stats, nil
}

func (f fakeBookings) StudentStats(_ context.Context, studentID uuid.UUID) (*models.StudentStats, error) {
	stats := &models.StudentStats{}
	for _, b := range f.w.bookings {
		if b.StudentID != studentID {
			continue
		}
		stats.TotalBookings++
		if b.Status == models.BookingStatusCompleted {
			stats.CompletedBookings++
		}
		if b.Status == models.BookingStatusConfirmed && !b.StartTime.Before(f.w.now) {
			stats.UpcomingBookings++
		}
	}
	for _, r := range f.w.reviews {
		if r.StudentID == studentID {
			stats.ReviewsGiven++
		}
	}
	return stats, nil
}

type fakeReviews struct{ w *world }

func (f fakeReviews) Create(_ context.Context, review *models.Review) error {
	for _, r := range f.w.reviews {
		if r.StudentID == review.StudentID && r.TutorID == review.TutorID {
			return database.ErrDuplicate
		}
	}
	review.ID = f.w.id()
	review.CreatedAt = f.w.now
	stored := *review
	f.w.reviews = append(f.w.reviews, &stored)
	return nil
}

func (f fakeReviews) ExistsForPair(_ context.Context, studentID, tutorID uuid.UUID) (bool, error) {
	for _, r := range f.w.reviews {
		if r.StudentID == studentID && r.TutorID == tutorID {
			return true, nil
		}
	}
	return false, nil
}

func (f fakeReviews) ListByTutor(_ context.Context, tutorID uuid.UUID) ([]models.ReviewDetail, error) {
	out := []models.ReviewDetail{}
	for _, r := range f.w.reviews {
		if r.TutorID == tutorID {
			out = append(out, models.ReviewDetail{Review: *r, Student: f.w.summary(r.StudentID)})
		}
	}
	return out, nil
}

func (f fakeReviews) Ratings(_ context.Context, tutorIDs []uuid.UUID) ([]models.RatingRow, error) {
	wanted := make(map[uuid.UUID]bool, len(tutorIDs))
	for _, id := range tutorIDs {
		wanted[id] = true
	}
	var rows []models.RatingRow
	for _, r := range f.w.reviews {
		if tutorIDs == nil || wanted[r.TutorID] {
			rows = append(rows, models.RatingRow{TutorID: r.TutorID, Rating: r.Rating})
		}
	}
	return rows, nil
}

type fakeProfiles struct{ w *world }

func (f fakeProfiles) GetByUserID(_ context.Context, userID uuid.UUID) (*models.TutorProfile, error) {
	return f.w.profileCopy(userID), nil
}

func (f fakeProfiles) Create(_ context.Context, profile *models.TutorProfile, categoryIDs []int64) error {
	if f.w.profiles[profile.UserID] != nil {
		return database.ErrDuplicate
	}
	profile.ID = f.w.id()
	stored := *profile
	f.w.profiles[profile.UserID] = &stored
	f.w.links[profile.UserID] = categoryIDs
	return nil
}

func (f fakeProfiles) Update(_ context.Context, profile *models.TutorProfile, categoryIDs []int64) error {
	stored := *profile
	stored.Categories = nil
	f.w.profiles[profile.UserID] = &stored
	if categoryIDs != nil {
		f.w.links[profile.UserID] = categoryIDs
	}
	return nil
}

func (f fakeProfiles) UpdateAvailability(_ context.Context, userID uuid.UUID, availability models.Availability) (*models.TutorProfile, error) {
	p := f.w.profiles[userID]
	if p == nil {
		return nil, nil
	}
	p.Availability = availability
	return f.w.profileCopy(userID), nil
}

func (f fakeProfiles) listing(userID uuid.UUID) models.TutorListing {
	return models.TutorListing{TutorProfile: *f.w.profileCopy(userID), User: f.w.summary(userID)}
}

func (f fakeProfiles) List(_ context.Context, filter models.TutorFilter) ([]models.TutorListing, error) {
	out := []models.TutorListing{}
	for _, p := range f.w.profiles {
		u := f.w.users[p.UserID]
		if u == nil || u.Role != models.RoleTutor || u.IsBanned() {
			continue
		}
		if filter.MinPrice != nil && p.HourlyRate < *filter.MinPrice {
			continue
		}
		if filter.MaxPrice != nil && p.HourlyRate > *filter.MaxPrice {
			continue
		}
		if filter.CategoryID != nil {
			found := false
			for _, id := range f.w.links[p.UserID] {
				found = found || id == *filter.CategoryID
			}
			if !found {
				continue
			}
		}
		if term := strings.ToLower(filter.SearchTerm); term != "" &&
			!strings.Contains(strings.ToLower(u.Name), term) && !strings.Contains(strings.ToLower(p.Bio), term) {
			continue
		}
		out = append(out, f.listing(p.UserID))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f fakeProfiles) GetListing(_ context.Context, userID uuid.UUID) (*models.TutorListing, error) {
	u := f.w.users[userID]
	if f.w.profiles[userID] == nil || u == nil || u.Role != models.RoleTutor || u.IsBanned() {
		return nil, nil
	}
	l := f.listing(userID)
	return &l, nil
}

type fakeCategories struct{ w *world }

func (f fakeCategories) Create(_ context.Context, name, description string) (*models.Category, error) {
	for _, c := range f.w.categories {
		if strings.EqualFold(c.Name, name) {
			return nil, database.ErrDuplicate
		}
	}
	c := &models.Category{ID: f.w.id(), Name: name, Description: models.NewNullString(description)}
	f.w.categories[c.ID] = c
	out := *c
	return &out, nil
}

func (f fakeCategories) List(_ context.Context) ([]models.Category, error) {
	out := []models.Category{}
	for _, c := range f.w.categories {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f fakeCategories) Update(_ context.Context, id int64, name, description string) (*models.Category, error) {
	c := f.w.categories[id]
	if c == nil {
		return nil, nil
	}
	for _, other := range f.w.categories {
		if other.ID != id && strings.EqualFold(other.Name, name) {
			return nil, database.ErrDuplicate
		}
	}
	c.Name = name
	c.Description = models.NewNullString(description)
	out := *c
	return &out, nil
}

func (f fakeCategories) Delete(_ context.Context, id int64) (bool, error) {
	if f.w.categories[id] == nil {
		return false, nil
	}
	delete(f.w.categories, id)
	return true, nil
}

func (f fakeCategories) CountExisting(_ context.Context, ids []int64) (int, error) {
	n := 0
	for _, id := range ids {
		if f.w.categories[id] != nil {
			n++
		}
	}
	return n, nil
}

type fakeStats struct{ w *world }

func (f fakeStats) Platform(_ context.Context) (*models.PlatformStats, error) {
	stats := &models.PlatformStats{
		TotalBookings:   len(f.w.bookings),
		TotalReviews:    len(f.w.reviews),
		TotalCategories: len(f.w.categories),
	}
	for _, u := range f.w.users {
		stats.TotalUsers++
		switch u.Role {
		case models.RoleStudent:
			stats.TotalStudents++
		case models.RoleTutor:
			stats.TotalTutors++
		}
		if u.IsBanned() {
			stats.BannedUsers++
		}
	}
	for _, b := range f.w.bookings {
		if b.Status == models.BookingStatusCompleted {
			stats.CompletedBookings++
		}
	}
	return stats, nil
}
