package router

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/pssiii/marketing-backend/internal/account"
	"github.com/pssiii/marketing-backend/internal/analytics"
	"github.com/pssiii/marketing-backend/internal/session"
)

// loggingResponseWriter wraps http.ResponseWriter to capture status and size.
type loggingResponseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.status = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	if lrw.status == 0 {
		lrw.status = http.StatusOK
	}
	n, err := lrw.ResponseWriter.Write(b)
	lrw.size += n
	return n, err
}

// LoggingMiddleware returns a middleware that logs requests at debug level using the provided sugared logger.
func LoggingMiddleware(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lrw := &loggingResponseWriter{ResponseWriter: w}
			next.ServeHTTP(lrw, r)
			dur := time.Since(start)
			status := lrw.status
			if status == 0 {
				status = http.StatusOK
			}
			logger.Debugw("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"remote", r.RemoteAddr,
				"status", status,
				"duration_ms", float64(dur.Microseconds())/1000.0,
				"size", lrw.size,
			)
		})
	}
}

// CORSMiddleware allows the dashboard frontend to call the API from any
// origin. The API carries no cookies, so the permissive policy is safe
// enough for read-mostly dashboard traffic.
func CORSMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Allow-Methods", "GET, PUT, POST, DELETE, OPTIONS")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RegisterRoutes mounts HTTP handlers using the standard library's
// http.ServeMux and wires the auth middleware per route group.
func RegisterRoutes(logger *zap.SugaredLogger, accounts *account.Handler, data *analytics.Handler, sessions *session.Service) http.Handler {
	mux := http.NewServeMux()

	// health
	mux.HandleFunc("GET /api/ping", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"pong"}`))
	})

	// public account routes
	mux.HandleFunc("POST /api/register", accounts.Register)
	mux.HandleFunc("POST /api/login", accounts.Login)
	mux.HandleFunc("GET /verify-email/{token}", accounts.VerifyEmail)
	mux.HandleFunc("POST /api/resend-verification", accounts.ResendVerification)

	auth := sessions.RequireAuth
	admin := func(h http.HandlerFunc) http.Handler {
		return auth(session.RequireAdmin(h))
	}

	// authenticated account routes
	mux.Handle("POST /api/logout", auth(http.HandlerFunc(accounts.Logout)))
	mux.Handle("GET /api/user", auth(http.HandlerFunc(accounts.CurrentUser)))

	// admin routes
	mux.Handle("GET /api/admin/users", admin(accounts.ListUsers))
	mux.Handle("POST /api/admin/users/{id}/approve", admin(accounts.Approve))
	mux.Handle("POST /api/admin/users/{id}/reject", admin(accounts.Reject))

	// dashboard data routes
	mux.Handle("GET /api/customers", auth(http.HandlerFunc(data.ListCustomers)))
	mux.Handle("GET /api/customers/{id}", auth(http.HandlerFunc(data.CustomerDetail)))
	mux.Handle("GET /api/campaigns", auth(http.HandlerFunc(data.ListCampaigns)))
	mux.Handle("GET /api/dashboard/stats", auth(http.HandlerFunc(data.DashboardStats)))

	return LoggingMiddleware(logger)(CORSMiddleware()(mux))
}
