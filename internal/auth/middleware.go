package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/campus-atlas/campus-atlas/internal/platform/httpx"
	"github.com/campus-atlas/campus-atlas/internal/shared"
)

// Middleware enforces the per-route access policy. Every protected route runs
// through it before any handler logic: credential verification, a fresh
// principal lookup, the role check, then the approval gate, short-circuiting
// on the first failure.
type Middleware struct {
	Tokens *Tokens
	Repo   Repository
	Logger *slog.Logger
}

// Require returns middleware enforcing the given role requirement. An empty
// requirement admits any authenticated, approved account. RequireShared admits
// both stored roles.
func (m Middleware) Require(required string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := m.authorize(r, required)
			if err != nil {
				m.respond(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), user)))
		})
	}
}

func (m Middleware) authorize(r *http.Request, required string) (*User, error) {
	claims, err := m.Tokens.VerifyHeader(r.Header.Get("Authorization"))
	if err != nil {
		return nil, err
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, shared.ErrInvalidToken
	}
	// Role and approval are read fresh from storage; the claims carry a stale
	// snapshot from issuance time and a demoted or revoked account must lose
	// access before its credential expires.
	user, err := m.Repo.FindByID(r.Context(), id)
	if err != nil {
		return nil, err
	}

	// The role check runs before the approval gate so a rejected-role request
	// reports the mismatch rather than the approval state.
	switch required {
	case "":
	case RequireShared:
		if !user.Role.Valid() {
			return nil, shared.ErrForbidden
		}
	default:
		if user.Role != Role(required) {
			return nil, shared.ErrForbidden
		}
	}
	if user.Role != RoleAdmin && !user.Approved {
		return nil, shared.ErrNotApproved
	}
	return user, nil
}

func (m Middleware) respond(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNoCredential):
		httpx.Error(w, http.StatusUnauthorized, "No token provided")
	case errors.Is(err, shared.ErrInvalidToken):
		httpx.Error(w, http.StatusUnauthorized, "Invalid token")
	case errors.Is(err, shared.ErrNotFound):
		httpx.Error(w, http.StatusNotFound, "User not found")
	case errors.Is(err, shared.ErrForbidden):
		httpx.Error(w, http.StatusForbidden, "Access denied")
	case errors.Is(err, shared.ErrNotApproved):
		httpx.Error(w, http.StatusForbidden, "User not approved")
	default:
		if m.Logger != nil {
			m.Logger.Error("authorize", slog.Any("error", err))
		}
		httpx.Error(w, http.StatusInternalServerError, "Server error")
	}
}
