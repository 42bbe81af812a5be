package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/skillbridge/tutoring-backend/internal/models"
	"github.com/skillbridge/tutoring-backend/internal/session"
	"github.com/skillbridge/tutoring-backend/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAccountServices(w *world) (*RegistrationService, *AuthService) {
	users := fakeUsers{w}
	store := session.NewJWTStore(jwt.NewService("test-secret-for-sessions", time.Hour))
	resolver := session.NewResolver(store, users, "skillbridge.session_token")

	registration := NewRegistrationService(users, fakeProfiles{w}, fakeCategories{w}, bcrypt.MinCost, testLogger())
	auth := NewAuthService(users, resolver, testLogger())
	return registration, auth
}

func TestRegistrationService_Register(t *testing.T) {
	ctx := context.Background()
	w := newWorld()
	registration, _ := newAccountServices(w)

	t.Run("Student", func(t *testing.T) {
		user, next, err := registration.Register(ctx, models.RegisterRequest{
			Name: " Alice ", Email: "Alice@Example.COM", Password: "secret1", Role: models.RoleStudent,
			Phone: "+44 20 7946 0958",
		})
		require.NoError(t, err)
		assert.Equal(t, models.NextStepReady, next)
		assert.Equal(t, "alice@example.com", user.Email)
		assert.Equal(t, "Alice", user.Name)
		assert.True(t, user.EmailVerified)
		assert.Equal(t, "+442079460958", user.Phone.String)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret1")))
	})

	t.Run("Tutor Gets Onboarding Step", func(t *testing.T) {
		_, next, err := registration.Register(ctx, models.RegisterRequest{
			Name: "Tina", Email: "tina@example.com", Password: "secret1", Role: models.RoleTutor,
		})
		require.NoError(t, err)
		assert.Equal(t, models.NextStepCompleteProfile, next)
	})

	t.Run("Duplicate Email", func(t *testing.T) {
		_, _, err := registration.Register(ctx, models.RegisterRequest{
			Name: "Other", Email: "ALICE@example.com", Password: "secret1", Role: models.RoleStudent,
		})
		assert.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("Admin Is Not Self Service", func(t *testing.T) {
		_, _, err := registration.Register(ctx, models.RegisterRequest{
			Name: "Root", Email: "root@example.com", Password: "secret1", Role: models.RoleAdmin,
		})
		assert.ErrorIs(t, err, ErrRoleNotSelfService)
	})

	t.Run("Bad Phone", func(t *testing.T) {
		_, _, err := registration.Register(ctx, models.RegisterRequest{
			Name: "Pat", Email: "pat@example.com", Password: "secret1", Role: models.RoleStudent, Phone: "12ab",
		})
		assert.ErrorIs(t, err, ErrInvalidPhone)
	})
}

func TestRegistrationService_SetupProfileAndStatus(t *testing.T) {
	ctx := context.Background()
	w := newWorld()
	maths := w.addCategory("Mathematics")
	tutor := w.addUser("Tina", models.RoleTutor)
	student := w.addUser("Alice", models.RoleStudent)
	registration, _ := newAccountServices(w)

	status, err := registration.Status(ctx, tutor.Identity())
	require.NoError(t, err)
	assert.False(t, status.ProfileExists)
	assert.Equal(t, models.NextStepCompleteProfile, status.NextStep)

	valid := models.SetupTutorProfileRequest{
		Bio: "Algebra", HourlyRate: 30, Experience: 2, CategoryIDs: []int64{maths.ID},
	}

	t.Run("Validation", func(t *testing.T) {
		_, err := registration.SetupProfile(ctx, student.Identity(), valid)
		assert.ErrorIs(t, err, ErrTutorOnly)

		req := valid
		req.Bio = ""
		_, err = registration.SetupProfile(ctx, tutor.Identity(), req)
		assert.ErrorIs(t, err, ErrProfileFields)

		req = valid
		req.CategoryIDs = []int64{}
		_, err = registration.SetupProfile(ctx, tutor.Identity(), req)
		assert.ErrorIs(t, err, ErrCategoryRequired)

		req = valid
		req.HourlyRate = -5
		_, err = registration.SetupProfile(ctx, tutor.Identity(), req)
		assert.ErrorIs(t, err, ErrHourlyRate)

		req = valid
		req.Experience = -1
		_, err = registration.SetupProfile(ctx, tutor.Identity(), req)
		assert.ErrorIs(t, err, ErrNegativeExperience)

		req = valid
		req.CategoryIDs = []int64{404}
		_, err = registration.SetupProfile(ctx, tutor.Identity(), req)
		assert.ErrorIs(t, err, ErrInvalidCategories)
	})

	profile, err := registration.SetupProfile(ctx, tutor.Identity(), valid)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(profile.Availability))
	assert.Len(t, profile.Categories, 1)

	status, err = registration.Status(ctx, tutor.Identity())
	require.NoError(t, err)
	assert.True(t, status.ProfileExists)
	assert.True(t, status.ProfileComplete)
	assert.Equal(t, models.NextStepSetAvailability, status.NextStep)

	_, err = registration.SetupProfile(ctx, tutor.Identity(), valid)
	assert.ErrorIs(t, err, ErrProfileExists)

	w.profiles[tutor.ID].Availability = models.Availability(`{"mon":["09:00-10:00"]}`)
	status, err = registration.Status(ctx, tutor.Identity())
	require.NoError(t, err)
	assert.Equal(t, models.NextStepReady, status.NextStep)

	w.profiles[tutor.ID].Bio = ""
	status, err = registration.Status(ctx, tutor.Identity())
	require.NoError(t, err)
	assert.Equal(t, models.NextStepUpdateProfile, status.NextStep)

	status, err = registration.Status(ctx, student.Identity())
	require.NoError(t, err)
	assert.Equal(t, models.NextStepReady, status.NextStep)
}

func TestAuthService_SignIn(t *testing.T) {
	ctx := context.Background()
	w := newWorld()
	registration, auth := newAccountServices(w)

	user, _, err := registration.Register(ctx, models.RegisterRequest{
		Name: "Alice", Email: "alice@example.com", Password: "secret1", Role: models.RoleStudent,
	})
	require.NoError(t, err)

	t.Run("Valid Credentials", func(t *testing.T) {
		signedIn, sess, err := auth.SignIn(ctx, "ALICE@example.com ", "secret1", session.Meta{IPAddress: "203.0.113.7"})
		require.NoError(t, err)
		assert.Equal(t, user.ID, signedIn.ID)
		require.NotNil(t, sess)
		assert.NotEmpty(t, sess.Token)

		resolved, _, err := auth.GetSession(ctx, sess.Token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, resolved.ID)
	})

	t.Run("Wrong Password", func(t *testing.T) {
		_, sess, err := auth.SignIn(ctx, "alice@example.com", "nope", session.Meta{})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.Nil(t, sess)
	})

	t.Run("Unknown Email", func(t *testing.T) {
		_, _, err := auth.SignIn(ctx, "ghost@example.com", "secret1", session.Meta{})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("Banned", func(t *testing.T) {
		_, sess, err := auth.SignIn(ctx, "alice@example.com", "secret1", session.Meta{})
		require.NoError(t, err)

		w.users[user.ID].Status = models.UserStatusBanned

		_, _, err = auth.SignIn(ctx, "alice@example.com", "secret1", session.Meta{})
		assert.ErrorIs(t, err, ErrAccountBanned)

		_, _, err = auth.GetSession(ctx, sess.Token)
		assert.ErrorIs(t, err, ErrAccountBanned)
	})

	t.Run("Garbage Token", func(t *testing.T) {
		_, _, err := auth.GetSession(ctx, "garbage")
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})
}

func TestAdminService(t *testing.T) {
	ctx := context.Background()
	w := newWorld()
	admin := w.addUser("Root", models.RoleAdmin)
	tutor := w.addUser("Tina", models.RoleTutor)
	student := w.addUser("Alice", models.RoleStudent)
	w.addProfile(tutor, 50)
	w.addBooking(student, tutor, w.now.Add(-24*time.Hour), 2, models.BookingStatusCompleted)
	w.addBooking(student, tutor, w.now.Add(24*time.Hour), 1, models.BookingStatusConfirmed)
	w.addCategory("Mathematics")

	svc := NewAdminService(fakeUsers{w}, fakeBookings{w}, fakeStats{w}, testLogger())

	t.Run("List Users", func(t *testing.T) {
		users, err := svc.ListUsers(ctx, "TUTOR", "")
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, tutor.ID, users[0].ID)

		_, err = svc.ListUsers(ctx, "OWNER", "")
		assert.ErrorIs(t, err, ErrInvalidRoleFilter)

		_, err = svc.ListUsers(ctx, "", "frozen")
		assert.ErrorIs(t, err, ErrInvalidUserStatus)
	})

	t.Run("Ban And Reactivate", func(t *testing.T) {
		updated, previous, err := svc.UpdateUserStatus(ctx, admin.Identity(), student.ID, models.UserStatusBanned)
		require.NoError(t, err)
		assert.Equal(t, models.UserStatusActive, previous)
		assert.Equal(t, models.UserStatusBanned, updated.Status)

		updated, previous, err = svc.UpdateUserStatus(ctx, admin.Identity(), student.ID, models.UserStatusActive)
		require.NoError(t, err)
		assert.Equal(t, models.UserStatusBanned, previous)
		assert.Equal(t, models.UserStatusActive, updated.Status)
	})

	t.Run("Status Errors", func(t *testing.T) {
		_, _, err := svc.UpdateUserStatus(ctx, admin.Identity(), admin.ID, models.UserStatusBanned)
		assert.ErrorIs(t, err, ErrSelfStatusChange)

		_, _, err = svc.UpdateUserStatus(ctx, admin.Identity(), uuid.New(), models.UserStatusBanned)
		assert.ErrorIs(t, err, ErrUserNotFound)

		_, _, err = svc.UpdateUserStatus(ctx, admin.Identity(), student.ID, "deleted")
		assert.ErrorIs(t, err, ErrInvalidUserStatus)
	})

	t.Run("Stats", func(t *testing.T) {
		stats, err := svc.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, stats.TotalUsers)
		assert.Equal(t, 1, stats.TotalTutors)
		assert.Equal(t, 2, stats.TotalBookings)
		assert.Equal(t, 1, stats.CompletedBookings)
		assert.Equal(t, 1, stats.TotalCategories)
		assert.Equal(t, 100.0, stats.TotalRevenue)
	})
}

func TestStudentService(t *testing.T) {
	ctx := context.Background()
	w := newWorld()
	student := w.addUser("Alice", models.RoleStudent)
	tutor := w.addUser("Tina", models.RoleTutor)
	w.addBooking(student, tutor, w.now.Add(-24*time.Hour), 1, models.BookingStatusCompleted)
	w.addBooking(student, tutor, w.now.Add(24*time.Hour), 1, models.BookingStatusConfirmed)
	w.addBooking(student, tutor, w.now.Add(48*time.Hour), 1, models.BookingStatusPending)
	w.addReview(student, tutor, 5)

	svc := NewStudentService(fakeUsers{w}, fakeBookings{w}, testLogger())

	profile, err := svc.Get(ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", profile.Name)
	assert.Equal(t, models.StudentStats{TotalBookings: 3, CompletedBookings: 1, UpcomingBookings: 1, ReviewsGiven: 1}, profile.Stats)

	_, err = svc.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)

	updated, err := svc.Update(ctx, student.Identity(), models.UpdateStudentProfileRequest{
		Name: strPtr("Alice Smith"), Phone: strPtr("0044 20 7946 0958"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice Smith", updated.Name)
	assert.Equal(t, "+442079460958", updated.Phone.String)

	_, err = svc.Update(ctx, student.Identity(), models.UpdateStudentProfileRequest{})
	assert.ErrorIs(t, err, ErrStudentFieldsRequired)

	_, err = svc.Update(ctx, student.Identity(), models.UpdateStudentProfileRequest{Phone: strPtr("abc")})
	assert.ErrorIs(t, err, ErrInvalidPhone)

	_, err = svc.Update(ctx, tutor.Identity(), models.UpdateStudentProfileRequest{Name: strPtr("T")})
	assert.ErrorIs(t, err, ErrStudentOnly)
}

func TestCategoryService(t *testing.T) {
	ctx := context.Background()
	w := newWorld()
	svc := NewCategoryService(fakeCategories{w}, testLogger())

	created, err := svc.Create(ctx, models.CategoryRequest{Name: "  Mathematics ", Description: "Numbers"})
	require.NoError(t, err)
	assert.Equal(t, "Mathematics", created.Name)

	_, err = svc.Create(ctx, models.CategoryRequest{Name: "mathematics"})
	assert.ErrorIs(t, err, ErrCategoryNameTaken)

	_, err = svc.Create(ctx, models.CategoryRequest{Name: "   "})
	assert.ErrorIs(t, err, ErrCategoryNameRequired)

	updated, err := svc.Update(ctx, created.ID, models.CategoryRequest{Name: "Maths"})
	require.NoError(t, err)
	assert.Equal(t, "Maths", updated.Name)

	_, err = svc.Update(ctx, 404, models.CategoryRequest{Name: "Ghost"})
	assert.ErrorIs(t, err, ErrCategoryNotFound)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.Delete(ctx, created.ID))
	assert.ErrorIs(t, svc.Delete(ctx, created.ID), ErrCategoryNotFound)
}
