package middlewares

import (
	"context"
	"net/http"

	"github.com/go-chi/oauth"

	"github.com/iic/form-system/httpx"
	"github.com/iic/form-system/log"
	"github.com/iic/form-system/model"
	"github.com/iic/form-system/survey"
)

type contextKey int

const userKey contextKey = iota

// CurrentUser returns the authenticated actor resolved by Auth or
// OptionalAuth, if any.
func CurrentUser(r *http.Request) (model.User, bool) {
	user, ok := r.Context().Value(userKey).(model.User)
	return user, ok
}

func withUser(r *http.Request, user model.User) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), userKey, user))
}

// Auth validates the bearer token and resolves its credential to a stored
// user, rejecting the request otherwise.
func Auth(secret string, users *survey.Users) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		resolve := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, _ := r.Context().Value(oauth.CredentialContext).(string)
			user, err := users.ByUsername(r.Context(), username)
			if err != nil {
				httpx.LogStatus(w, http.StatusUnauthorized, log.DebugLevel, "auth.resolve_user")
				return
			}
			next.ServeHTTP(w, withUser(r, user))
		})
		return oauth.Authorize(secret, nil)(resolve)
	}
}

// OptionalAuth resolves the actor when a valid bearer token is present and
// lets the request through anonymously when it is not. Used for submission
// creation, where anonymous respondents are an expected path.
func OptionalAuth(secret string, users *survey.Users) func(http.Handler) http.Handler {
	authorize := oauth.Authorize(secret, nil)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("authorization") == "" {
				next.ServeHTTP(w, r)
				return
			}

			// Probe the token against a buffered response, so a bad token
			// falls back to the anonymous path instead of failing the request.
			var authorized *http.Request
			probe := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				authorized = r
			})
			authorize(probe).ServeHTTP(httpx.NewResponseBuffer(), r)

			if authorized == nil {
				next.ServeHTTP(w, r)
				return
			}

			username, _ := authorized.Context().Value(oauth.CredentialContext).(string)
			user, err := users.ByUsername(r.Context(), username)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, withUser(authorized, user))
		})
	}
}
