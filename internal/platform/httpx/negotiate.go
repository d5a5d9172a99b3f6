package httpx

import (
	"mime"
	"net/http"
	"strings"
)

// RequireJSON corta con 415 los requests con body que no son application/json.
func RequireJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hasBody(r) && !isJSON(r.Header.Get("Content-Type")) {
			WriteError(w, http.StatusUnsupportedMediaType, "The server only accepts application/json data.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// AcceptJSON corta con 406 si el cliente no acepta JSON. Sin Accept => ok.
func AcceptJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !acceptsJSON(r.Header.Values("Accept")) {
			WriteError(w, http.StatusNotAcceptable, "MIME Type not supported by endpoint")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// MethodNotAllowed responde 405 con el header Allow.
func MethodNotAllowed(allow ...string) http.HandlerFunc {
	value := strings.Join(allow, ", ")
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Allow", value)
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed on this route")
	}
}

func hasBody(r *http.Request) bool {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
	default:
		return false
	}
	return r.ContentLength != 0 && r.Body != nil && r.Body != http.NoBody
}

func isJSON(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	return err == nil && mt == "application/json"
}

func acceptsJSON(values []string) bool {
	if len(values) == 0 {
		return true
	}
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			mt, _, err := mime.ParseMediaType(strings.TrimSpace(part))
			if err != nil {
				continue
			}
			switch mt {
			case "application/json", "application/*", "*/*":
				return true
			}
		}
	}
	return false
}
