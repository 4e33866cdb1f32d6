package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/swalih2233/hr.employee/internal/domain/auth"
)

// UserContext is what a verified token resolves to. Role travels in the
// token, so handlers branch on it without another lookup.
type UserContext struct {
	UserID   string
	PersonID string
	Role     string
}

// Auth parses a bearer token when present. Requests without a valid
// token continue anonymously; RequireAuth decides what needs identity.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := auth.ParseToken(secret, parts[1])
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyUser, UserContext{
				UserID:   claims.UserID,
				PersonID: claims.PersonID,
				Role:     claims.Role,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetUser(ctx context.Context) (UserContext, bool) {
	user, ok := ctx.Value(ctxKeyUser).(UserContext)
	return user, ok
}
