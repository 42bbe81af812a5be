package session

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/skillbridge/tutoring-backend/internal/models"
)

// ErrBanned is returned when the session belongs to a banned account
var ErrBanned = errors.New("account is banned")

// UserLookup loads the account behind a session
type UserLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Resolver turns a request credential into the signed-in user
type Resolver struct {
	store      Store
	users      UserLookup
	cookieName string
}

// NewResolver creates a resolver reading the Bearer header first, then the cookie
func NewResolver(store Store, users UserLookup, cookieName string) *Resolver {
	return &Resolver{
		store:      store,
		users:      users,
		cookieName: cookieName,
	}
}

// Store returns the underlying session store
func (r *Resolver) Store() Store {
	return r.store
}

// Credential extracts the session token from the request, or ""
func (r *Resolver) Credential(req *http.Request) string {
	if header := req.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			if token := strings.TrimSpace(parts[1]); token != "" {
				return token
			}
		}
	}
	if r.cookieName != "" {
		if cookie, err := req.Cookie(r.cookieName); err == nil {
			return strings.TrimSpace(cookie.Value)
		}
	}
	return ""
}

// Resolve loads the session and its user. It returns ErrNoSession when the
// token or the user is unknown and ErrBanned for banned accounts.
func (r *Resolver) Resolve(ctx context.Context, token string) (*models.User, *Session, error) {
	if token == "" {
		return nil, nil, ErrNoSession
	}

	sess, err := r.store.Lookup(ctx, token)
	if err != nil {
		return nil, nil, err
	}

	user, err := r.users.GetByID(ctx, sess.UserID)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, ErrNoSession
	}
	if user.IsBanned() {
		return nil, nil, ErrBanned
	}
	return user, sess, nil
}

// ResolveRequest is Resolve over the request credential
func (r *Resolver) ResolveRequest(req *http.Request) (*models.User, *Session, error) {
	return r.Resolve(req.Context(), r.Credential(req))
}
