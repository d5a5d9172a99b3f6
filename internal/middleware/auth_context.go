package middleware

import (
	"context"
	"net/http"
	"strings"

	"animal-shelter-api/internal/ports/auth"

	"go.uber.org/zap"
)

type ctxKey string

const claimsKey ctxKey = "claims"

// DebugUserHeader inyecta el caller en modo dev (sin verifier).
const DebugUserHeader = "X-Debug-User-ID"

// AuthContext:
// - Si verifier != nil y viene Bearer token => intenta Verify() y setea claims.
// - Si verifier == nil => modo dev: si viene header X-Debug-User-ID => setea claims.
// - Si no hay claims, el request sigue igual; los handlers decidirán si exigen auth.
func AuthContext(verifier auth.AuthVerifier, log *zap.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if verifier == nil {
				if uid := strings.TrimSpace(r.Header.Get(DebugUserHeader)); uid != "" {
					claims := auth.Claims{UserID: uid, Email: strings.TrimSpace(r.Header.Get("X-Debug-User-Email"))}
					next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
					return
				}

				next.ServeHTTP(w, r)
				return
			}

			token := bearerToken(r.Header.Get("Authorization"))
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := verifier.Verify(r.Context(), token)
			if err != nil {
				// rutas públicas siguen andando con un token inválido
				log.Debug("token rejected", zap.String("trace_id", TraceID(r.Context())), zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

func WithClaims(ctx context.Context, c auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

func GetClaims(ctx context.Context) (auth.Claims, bool) {
	v := ctx.Value(claimsKey)
	if v == nil {
		return auth.Claims{}, false
	}
	c, ok := v.(auth.Claims)
	return c, ok
}

// CallerID devuelve "" si el request no está autenticado.
func CallerID(ctx context.Context) string {
	c, ok := GetClaims(ctx)
	if !ok {
		return ""
	}
	return strings.TrimSpace(c.UserID)
}

func bearerToken(authHeader string) string {
	if strings.TrimSpace(authHeader) == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
