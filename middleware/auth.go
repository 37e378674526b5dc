package middleware

import (
	"context"
	"net/http"
	"strings"

	"xportconnect/models"
	"xportconnect/utils"
)

// Key type for context
type contextKey string

const callerContextKey = contextKey("caller")

// Authenticate verifies the bearer token and attaches the caller to the request context.
func Authenticate(issuer *utils.TokenIssuer, rs utils.Responder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, err := callerFromHeader(issuer, r.Header.Get("Authorization"))
			if err != nil {
				rs.Error(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), caller)))
		})
	}
}

// OptionalAuthenticate attaches the caller when a valid token is sent and
// passes anonymous requests through unchanged. A bad token is still rejected.
func OptionalAuthenticate(issuer *utils.TokenIssuer, rs utils.Responder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}
			caller, err := callerFromHeader(issuer, header)
			if err != nil {
				rs.Error(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), caller)))
		})
	}
}

func callerFromHeader(issuer *utils.TokenIssuer, header string) (models.Caller, error) {
	if header == "" {
		return models.Caller{}, utils.NewError(utils.ErrUnauthorized, "authorization header missing")
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return models.Caller{}, utils.NewError(utils.ErrUnauthorized, "invalid authorization header format")
	}
	return issuer.ParseJWT(parts[1])
}

// Authorize ensures the authenticated caller holds one of roles.
func Authorize(rs utils.Responder, roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, ok := CallerFrom(r.Context())
			if !ok {
				rs.Error(w, r, utils.NewError(utils.ErrUnauthorized, "authentication required"))
				return
			}
			if !caller.Is(roles...) {
				rs.Error(w, r, utils.NewError(utils.ErrForbidden, "access denied for role %s", caller.Role))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithCaller returns a copy of ctx carrying caller.
func WithCaller(ctx context.Context, caller models.Caller) context.Context {
	return context.WithValue(ctx, callerContextKey, caller)
}

// CallerFrom returns the caller attached by Authenticate.
func CallerFrom(ctx context.Context) (models.Caller, bool) {
	caller, ok := ctx.Value(callerContextKey).(models.Caller)
	return caller, ok
}
