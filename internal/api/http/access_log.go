package apihttp

import (
	"log"
	"net/http"
	"time"
)

// LoggingMiddleware writes one access log line per request.
func LoggingMiddleware(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if logger == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(resp, r)
			logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
