// internal/auth/middleware.go
package auth

import (
    "context"
    "net/http"
    "strings"
)

type contextKey string

const (
    userIDKey contextKey = "user_id"
    emailKey  contextKey = "email"
)

// Middleware validates the Authorization bearer token and stores the
// authenticated user in the request context.
func (s *Service) Middleware(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        header := r.Header.Get("Authorization")
        var tokenString string
        if header != "" {
            parts := strings.SplitN(header, " ", 2)
            if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
                tokenString = parts[1]
            }
        }
        if tokenString == "" {
            http.Error(w, `{"error":"no token provided"}`, http.StatusUnauthorized)
            return
        }

        claims, err := s.VerifyToken(tokenString)
        if err != nil {
            http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
            return
        }

        ctx := context.WithValue(r.Context(), userIDKey, claims.Subject)
        ctx = context.WithValue(ctx, emailKey, claims.Email)
        next.ServeHTTP(w, r.WithContext(ctx))
    })
}

// UserID returns the authenticated user id from the request context.
func UserID(ctx context.Context) string {
    id, _ := ctx.Value(userIDKey).(string)
    return id
}

// UserEmail returns the authenticated email from the request context.
func UserEmail(ctx context.Context) string {
    email, _ := ctx.Value(emailKey).(string)
    return email
}
