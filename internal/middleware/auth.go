// Package middleware provides HTTP middleware for the sales API.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/storyst/salestrack/internal/app/metrics"
	"github.com/storyst/salestrack/internal/auth"
	"github.com/storyst/salestrack/internal/errors"
	"github.com/storyst/salestrack/internal/httputil"
	"github.com/storyst/salestrack/internal/logging"
)

// AuthMiddleware validates the bearer credential on each request and
// attaches the resolved identity to the request context. The claim is
// trusted as-is for the rest of the request; the directory is only consulted
// when an endpoint needs display fields.
type AuthMiddleware struct {
	codec     *auth.TokenCodec
	logger    *logging.Logger
	skipPaths map[string]bool
}

// NewAuthMiddleware creates a new authentication middleware. Requests to
// skipPaths pass through unauthenticated.
func NewAuthMiddleware(codec *auth.TokenCodec, logger *logging.Logger, skipPaths []string) *AuthMiddleware {
	skip := make(map[string]bool)
	for _, path := range skipPaths {
		skip[path] = true
	}
	if logger == nil {
		logger = logging.NewDefault("middleware")
	}

	return &AuthMiddleware{
		codec:     codec,
		logger:    logger,
		skipPaths: skip,
	}
}

// Handler returns the middleware handler.
func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.skipPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			m.respondError(w, r, errors.MissingCredentials())
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			m.respondError(w, r, errors.MissingCredentials())
			return
		}

		claims, err := m.codec.Verify(parts[1])
		if err != nil {
			m.logger.WithContext(r.Context()).WithError(err).Warn("token verification failed")
			m.respondError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), logging.CustomerIDKey, claims.CustomerID)
		ctx = context.WithValue(ctx, logging.EmailKey, claims.Email)
		ctx = logging.WithTraceID(ctx, logging.GetTraceID(r.Context()))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *AuthMiddleware) respondError(w http.ResponseWriter, r *http.Request, err error) {
	svcErr := errors.GetServiceError(err)
	if svcErr == nil {
		svcErr = errors.Internal("Authentication failed", err)
	}

	metrics.RecordAuthFailure(string(svcErr.Code))
	httputil.WriteErrorResponse(w, r, svcErr.HTTPStatus, string(svcErr.Code), svcErr.Message, svcErr.Details)

	m.logger.WithContext(r.Context()).WithError(err).WithFields(map[string]interface{}{
		"path":   r.URL.Path,
		"method": r.Method,
		"status": svcErr.HTTPStatus,
	}).Warn("authentication failed")
}

// CustomerID extracts the authenticated customer id from ctx.
func CustomerID(ctx context.Context) string {
	return logging.GetCustomerID(ctx)
}

// Email extracts the authenticated email from ctx.
func Email(ctx context.Context) string {
	return logging.GetEmail(ctx)
}

// RequireCustomerID ensures a resolved identity is present in the context.
func RequireCustomerID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if CustomerID(r.Context()) == "" {
			httputil.Unauthorized(w, "")
			return
		}
		next.ServeHTTP(w, r)
	})
}
