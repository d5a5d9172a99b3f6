package middleware

import (
	"context"
	"net/http"

	"animal-shelter-api/internal/platform/httpx"

	"go.uber.org/zap"
)

// UserEnsurer crea el usuario local la primera vez que aparece un subject.
type UserEnsurer interface {
	EnsureUser(ctx context.Context, externalID, email string) error
}

// EnsureUser va después de AuthContext. Sin claims no hace nada.
func EnsureUser(users UserEnsurer, log *zap.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, ok := GetClaims(r.Context())
			if !ok || c.UserID == "" {
				next.ServeHTTP(w, r)
				return
			}
			if err := users.EnsureUser(r.Context(), c.UserID, c.Email); err != nil {
				log.Error("ensure user failed",
					zap.String("user_id", c.UserID),
					zap.String("trace_id", TraceID(r.Context())),
					zap.Error(err),
				)
				httpx.WriteDomainError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
