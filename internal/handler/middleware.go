package handler

import (
	"crypto/subtle"
	"log"
	"net/http"
	"time"
)

// Logger is a minimal structured access log middleware.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("%s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// AdminOnly guards administrative routes with a shared-secret code carried
// in the X-Admin-Code header.
func AdminOnly(code string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			supplied := r.Header.Get("X-Admin-Code")
			if code == "" || subtle.ConstantTimeCompare([]byte(supplied), []byte(code)) != 1 {
				writeError(w, http.StatusUnauthorized, "invalid admin code")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
