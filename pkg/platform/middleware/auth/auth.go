// Package auth provides bearer-token middleware for administrative endpoints.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
)

// Claims is the subset of token claims the middleware cares about.
type Claims struct {
	Subject string
	Role    string
}

// Validator verifies a bearer token. The interface is kept small so tests can
// stub quickly.
type Validator interface {
	ValidateToken(tokenString string) (*Claims, error)
}

type contextKeySubject struct{}
type contextKeyRole struct{}

// ContextKeySubject is exported for use in handlers.
var (
	ContextKeySubject = contextKeySubject{}
	ContextKeyRole    = contextKeyRole{}
)

// Subject retrieves the authenticated subject from the context.
func Subject(ctx context.Context) string {
	subject, ok := ctx.Value(ContextKeySubject).(string)
	if !ok {
		return ""
	}
	return subject
}

// Role retrieves the authenticated role from the context.
func Role(ctx context.Context) string {
	role, ok := ctx.Value(ContextKeyRole).(string)
	if !ok {
		return ""
	}
	return role
}

func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, errCode, errDesc))
}

// RequireRole rejects requests without a valid bearer token carrying the given
// role. Authenticated subject and role are stored on the request context.
func RequireRole(validator Validator, role string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			const bearerPrefix = "Bearer "
			token, ok := strings.CutPrefix(authHeader, bearerPrefix)
			if !ok {
				if logger != nil {
					logger.WarnContext(r.Context(), "unauthorized access - missing token")
				}
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				if logger != nil {
					logger.WarnContext(r.Context(), "unauthorized access - invalid token",
						"error", err,
					)
				}
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}

			if role != "" && claims.Role != role {
				if logger != nil {
					logger.WarnContext(r.Context(), "forbidden access - insufficient role",
						"subject", claims.Subject,
						"role", claims.Role,
					)
				}
				writeJSONError(w, http.StatusForbidden, "forbidden", "Insufficient role")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeySubject, claims.Subject)
			ctx = context.WithValue(ctx, ContextKeyRole, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
