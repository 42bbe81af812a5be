package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/skillbridge/tutoring-backend/internal/config"
	"github.com/skillbridge/tutoring-backend/internal/database"
	"github.com/skillbridge/tutoring-backend/internal/middleware"
	"github.com/skillbridge/tutoring-backend/internal/models"
	"github.com/skillbridge/tutoring-backend/internal/services"
	"github.com/skillbridge/tutoring-backend/internal/session"
	"github.com/skillbridge/tutoring-backend/pkg/jwt"
	"github.com/skillbridge/tutoring-backend/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var userRowColumns = []string{
	"id", "email", "name", "password_hash", "role", "status",
	"email_verified", "phone", "image", "created_at", "updated_at",
}

func init() {
	gin.SetMode(gin.TestMode)
	if err := validator.Register(); err != nil {
		panic(err)
	}
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestRespondError(t *testing.T) {
	logger, hook := test.NewNullLogger()

	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"Validation", services.ErrInvalidID, http.StatusBadRequest, "INVALID_ID"},
		{"Conflict", services.ErrEmailTaken, http.StatusBadRequest, services.ErrEmailTaken.Code},
		{"NotFound", services.ErrBookingNotFound, http.StatusNotFound, services.ErrBookingNotFound.Code},
		{"Authorization", services.ErrAccountBanned, http.StatusForbidden, "ACCOUNT_BANNED"},
		{"Unauthenticated", services.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{"Unexpected", errors.New("connection reset"), http.StatusInternalServerError, "INTERNAL_ERROR"},
		{"Review Not Earned", services.ErrReviewNotEarned, http.StatusBadRequest, "REVIEW_NOT_ALLOWED"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/bookings", nil)

			respondError(c, logger, tc.err)

			assert.Equal(t, tc.status, w.Code)
			body := decode(t, w)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tc.code, body["code"])
		})
	}

	// only the unexpected error is logged, without leaking its text
	require.Len(t, hook.AllEntries(), 1)
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}

func TestPathParams(t *testing.T) {
	run := func(path, pattern string, parse func(c *gin.Context)) *httptest.ResponseRecorder {
		r := gin.New()
		r.GET(pattern, parse)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w
	}

	okInt := func(c *gin.Context) {
		if id, ok := int64Param(c, "id"); ok {
			c.JSON(http.StatusOK, gin.H{"id": id})
		}
	}
	assert.Equal(t, http.StatusOK, run("/bookings/42", "/bookings/:id", okInt).Code)
	assert.Equal(t, http.StatusBadRequest, run("/bookings/abc", "/bookings/:id", okInt).Code)
	assert.Equal(t, http.StatusBadRequest, run("/bookings/0", "/bookings/:id", okInt).Code)

	okUUID := func(c *gin.Context) {
		if id, ok := uuidParam(c, "id"); ok {
			c.JSON(http.StatusOK, gin.H{"id": id})
		}
	}
	assert.Equal(t, http.StatusOK, run("/users/"+uuid.NewString(), "/users/:id", okUUID).Code)
	w := run("/users/not-a-uuid", "/users/:id", okUUID)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_ID", decode(t, w)["code"])
}

type authFixture struct {
	mock    sqlmock.Sqlmock
	router  *gin.Engine
	store   session.Store
	handler *AuthHandler
}

func newAuthFixture(t *testing.T) *authFixture {
	return newAuthFixtureWithStore(t, session.NewJWTStore(jwt.NewService("handler-test-secret", time.Hour)))
}

func newAuthFixtureWithStore(t *testing.T, store session.Store) *authFixture {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger, _ := test.NewNullLogger()
	users := database.NewUserRepository(database.Wrap(db, "sqlmock"))
	resolver := session.NewResolver(store, users, "sb_session")

	auth := services.NewAuthService(users, resolver, logger)
	handler := NewAuthHandler(auth, resolver, config.AuthConfig{
		CookieName: "sb_session",
		SessionTTL: time.Hour,
	}, nil, logger)
	registration := NewRegistrationHandler(
		services.NewRegistrationService(users, nil, nil, bcrypt.MinCost, logger),
		handler, nil, logger,
	)

	r := gin.New()
	r.POST("/auth/sign-in", handler.SignIn)
	r.GET("/auth/get-session", handler.GetSession)
	r.POST("/auth/sign-out", middleware.NewGate(resolver, logger).Require(handler.SignOut))
	r.POST("/register", registration.Register)

	return &authFixture{mock: mock, router: r, store: store, handler: handler}
}

func (f *authFixture) do(method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func userRow(id uuid.UUID, email, hash string, role models.Role, status models.UserStatus) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(userRowColumns).
		AddRow(id.String(), email, "Ada", hash, string(role), string(status), true, nil, nil, now, now)
}

func TestSignIn(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	userID := uuid.New()
	usersByEmail := regexp.QuoteMeta(`FROM users WHERE email = $1`)

	t.Run("Success Sets Cookie", func(t *testing.T) {
		f := newAuthFixture(t)
		f.mock.ExpectQuery(usersByEmail).
			WithArgs("ada@example.com").
			WillReturnRows(userRow(userID, "ada@example.com", string(hash), models.RoleStudent, models.UserStatusActive))

		w := f.do(http.MethodPost, "/auth/sign-in", `{"email":"Ada@Example.com","password":"secret123"}`, nil)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		body := decode(t, w)
		data := body["data"].(map[string]interface{})
		assert.NotEmpty(t, data["token"])
		assert.Equal(t, userID.String(), data["user"].(map[string]interface{})["id"])
		assert.NotContains(t, w.Body.String(), "password")

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "sb_session", cookies[0].Name)
		assert.True(t, cookies[0].HttpOnly)
		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("Wrong Password", func(t *testing.T) {
		f := newAuthFixture(t)
		f.mock.ExpectQuery(usersByEmail).
			WillReturnRows(userRow(userID, "ada@example.com", string(hash), models.RoleStudent, models.UserStatusActive))

		w := f.do(http.MethodPost, "/auth/sign-in", `{"email":"ada@example.com","password":"wrong-password"}`, nil)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "INVALID_CREDENTIALS", decode(t, w)["code"])
		assert.Empty(t, w.Result().Cookies())
	})

	t.Run("Banned", func(t *testing.T) {
		f := newAuthFixture(t)
		f.mock.ExpectQuery(usersByEmail).
			WillReturnRows(userRow(userID, "ada@example.com", string(hash), models.RoleStudent, models.UserStatusBanned))

		w := f.do(http.MethodPost, "/auth/sign-in", `{"email":"ada@example.com","password":"secret123"}`, nil)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "ACCOUNT_BANNED", decode(t, w)["code"])
	})

	t.Run("Invalid Body", func(t *testing.T) {
		f := newAuthFixture(t)
		w := f.do(http.MethodPost, "/auth/sign-in", `{"email":"not-an-email"}`, nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION_ERROR", decode(t, w)["code"])
	})
}

func TestGetSession(t *testing.T) {
	t.Run("No Credential", func(t *testing.T) {
		f := newAuthFixture(t)
		w := f.do(http.MethodGet, "/auth/get-session", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Bearer Token", func(t *testing.T) {
		f := newAuthFixture(t)
		user := &models.User{ID: uuid.New(), Role: models.RoleTutor}
		sess, err := f.store.Create(context.Background(), user, session.Meta{})
		require.NoError(t, err)

		f.mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE id = $1`)).
			WithArgs(user.ID).
			WillReturnRows(userRow(user.ID, "tutor@example.com", "hash", models.RoleTutor, models.UserStatusActive))

		w := f.do(http.MethodGet, "/auth/get-session", "", map[string]string{"Authorization": "Bearer " + sess.Token})

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		data := decode(t, w)["data"].(map[string]interface{})
		assert.Equal(t, "TUTOR", data["user"].(map[string]interface{})["role"])
		assert.Nil(t, data["token"])
	})
}

func TestRegister(t *testing.T) {
	t.Run("Student Is Signed In", func(t *testing.T) {
		f := newAuthFixture(t)
		f.mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE email = $1`)).
			WithArgs("new@example.com").
			WillReturnRows(sqlmock.NewRows(userRowColumns))
		f.mock.ExpectExec(`INSERT INTO users`).WillReturnResult(sqlmock.NewResult(0, 1))

		w := f.do(http.MethodPost, "/register",
			`{"name":"New Student","email":"new@example.com","password":"secret123","role":"STUDENT"}`, nil)

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		data := decode(t, w)["data"].(map[string]interface{})
		assert.Equal(t, models.NextStepReady, data["nextStep"])
		assert.NotEmpty(t, data["token"])
		assert.Len(t, w.Result().Cookies(), 1)
		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("Admin Role Rejected", func(t *testing.T) {
		f := newAuthFixture(t)
		w := f.do(http.MethodPost, "/register",
			`{"name":"Root","email":"root@example.com","password":"secret123","role":"ADMIN"}`, nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("Short Password", func(t *testing.T) {
		f := newAuthFixture(t)
		w := f.do(http.MethodPost, "/register",
			`{"name":"A","email":"a@example.com","password":"123","role":"TUTOR"}`, nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION_ERROR", decode(t, w)["code"])
	})
}

func TestSignOut(t *testing.T) {
	mr := miniredis.RunT(t)
	store := session.NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "test", time.Hour)
	f := newAuthFixtureWithStore(t, store)

	user := &models.User{ID: uuid.New(), Role: models.RoleStudent}
	sess, err := store.Create(context.Background(), user, session.Meta{})
	require.NoError(t, err)

	f.mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE id = $1`)).
		WithArgs(user.ID).
		WillReturnRows(userRow(user.ID, "s@example.com", "hash", models.RoleStudent, models.UserStatusActive))

	w := f.do(http.MethodPost, "/auth/sign-out", "", map[string]string{"Cookie": "sb_session=" + sess.Token})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)

	// the revoked token no longer resolves
	w = f.do(http.MethodGet, "/auth/get-session", "", map[string]string{"Authorization": "Bearer " + sess.Token})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}
