package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

const (
	traceKey    ctxKey = "trace_id"
	TraceHeader        = "X-Trace-ID"
)

// Trace asigna un trace id por request (o respeta el que llega) y lo devuelve en X-Trace-ID.
func Trace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(TraceHeader))
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(TraceHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), traceKey, id)))
	})
}

func TraceID(ctx context.Context) string {
	id, _ := ctx.Value(traceKey).(string)
	return id
}
