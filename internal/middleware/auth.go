package middleware

import (
	"context"
	"net/http"

	"github.com/nkazmina/learning-log/backend/internal/auth"
	"github.com/nkazmina/learning-log/backend/internal/models"
)

// UserStore resolves session user ids to full users.
type UserStore interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

type ctxKey int

const userKey ctxKey = iota

// WithUser returns a context carrying the authenticated user.
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// UserFrom returns the authenticated user, or nil for anonymous requests.
func UserFrom(ctx context.Context) *models.User {
	u, _ := ctx.Value(userKey).(*models.User)
	return u
}

// RequireAuth is middleware that validates the session cookie, loads the
// user, and injects it into the request context. Unauthenticated requests
// are redirected to the login page with the original URL preserved in the
// next parameter.
func RequireAuth(sessions auth.Sessions, users UserStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(auth.SessionCookie)
			if err != nil {
				redirectToLogin(w, r)
				return
			}

			userID, err := sessions.Get(r.Context(), cookie.Value)
			if err != nil || userID == "" {
				redirectToLogin(w, r)
				return
			}

			user, err := users.GetUserByID(r.Context(), userID)
			if err != nil || user == nil {
				redirectToLogin(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// redirectToLogin preserves the requested URL so login can return the user
// there. The value is a local path and is kept unescaped, matching the links
// the pages themselves produce.
func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/users/login/?next="+r.URL.RequestURI(), http.StatusFound)
}
