package middleware

import "net/http"

// CORSMiddleware applies the configured cross-origin policy. A "*" entry in
// the allowed origins admits every caller; otherwise the Origin header must
// match one of the configured values exactly.
type CORSMiddleware struct {
	allowed map[string]bool
	any     bool
}

// NewCORSMiddleware builds the middleware from the configured origin list.
func NewCORSMiddleware(allowedOrigins []string) *CORSMiddleware {
	m := &CORSMiddleware{allowed: make(map[string]bool)}
	for _, origin := range allowedOrigins {
		if origin == "*" {
			m.any = true
			continue
		}
		m.allowed[origin] = true
	}
	return m
}

// Handler returns the CORS handler. Preflight requests are answered here
// and never reach the API or the auth gate.
func (m *CORSMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && (m.any || m.allowed[origin]) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Trace-ID")
			w.Header().Set("Access-Control-Expose-Headers", "X-Trace-ID")
			w.Header().Set("Access-Control-Max-Age", "3600")
			w.Header().Add("Vary", "Origin")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
