package middleware

import (
	"net/http"
	"runtime/debug"

	"animal-shelter-api/internal/platform/httpx"

	"go.uber.org/zap"
)

// Recover convierte un panic en 500 {"Error": ...} y lo loguea con stack.
func Recover(log *zap.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.Error("panic recovered",
					zap.Any("panic", rec),
					zap.String("trace_id", TraceID(r.Context())),
					zap.ByteString("stack", debug.Stack()),
				)
				httpx.WriteError(w, http.StatusInternalServerError, "internal error")
			}()
			next.ServeHTTP(w, r)
		})
	}
}
