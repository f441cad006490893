// Package middleware holds the HTTP middleware chain shared by every route.
package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	domainerrors "github.com/dmytrokrutii/mod-consortia/pkg/domain-errors"
	"github.com/dmytrokrutii/mod-consortia/pkg/requestcontext"
)

// Okapi-style headers carried by every platform request.
const (
	HeaderTenant    = "X-Okapi-Tenant"
	HeaderToken     = "X-Okapi-Token"
	HeaderUserID    = "X-Okapi-User-Id"
	HeaderRequestID = "X-Request-Id"
)

// RequestID assigns each request an id, reusing the inbound header when the
// gateway already set one.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, requestID)
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// TenantContext copies the caller's tenant scope and token onto the request
// context. Requests without a tenant header are rejected: every operation in
// this service acts on behalf of some tenant.
func TenantContext(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tenantID := r.Header.Get(HeaderTenant)
			if tenantID == "" {
				logger.WarnContext(r.Context(), "request without tenant header", "path", r.URL.Path)
				writeError(w, domainerrors.CodeValidation, "X-Okapi-Tenant header is required")
				return
			}
			ctx := requestcontext.WithTenantID(r.Context(), tenantID)
			if token := r.Header.Get(HeaderToken); token != "" {
				ctx = requestcontext.WithToken(ctx, token)
			}
			if userID := r.Header.Get(HeaderUserID); userID != "" {
				ctx = requestcontext.WithUserID(ctx, userID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Logger emits one access log line per request.
func Logger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(recorder, r)

			requestID := requestcontext.RequestID(r.Context())
			tenantID := requestcontext.TenantID(r.Context())
			logger.InfoContext(r.Context(), "request completed",
				"method", r.Method,
				"path", r.URL.Path,
				"status", recorder.status,
				"duration_ms", time.Since(start).Milliseconds(),
				"tenant", tenantID,
				"request_id", requestID,
			)
		})
	}
}

// Recovery converts panics into 500 responses instead of dropped connections.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.ErrorContext(r.Context(), "panic recovered", "panic", rec, "path", r.URL.Path)
					writeError(w, domainerrors.CodeInternal, "internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// writeError emits the same envelope and code vocabulary the handlers use.
func writeError(w http.ResponseWriter, code domainerrors.Code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(domainerrors.ToHTTPStatus(code))
	_ = json.NewEncoder(w).Encode(struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}{Code: string(code), Message: message})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
