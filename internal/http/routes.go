package httpx

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Auth       AdminAuthServiceInterface
	Contacts   ContactServiceInterface
	Bookings   BookingServiceInterface
	Newsletter NewsletterServiceInterface
	Yachts     YachtServiceInterface
	Uploads    UploadServiceInterface

	// Health is pinged by /healthz when set.
	Health HealthChecker

	Cookies CookieSettings
	// ErrorDetails exposes internal error causes. Disabled in production.
	ErrorDetails bool

	// Throttle bounds public form submissions per source.
	Throttle ThrottleConfig
	// MaxBodyBytes bounds JSON request bodies.
	MaxBodyBytes int64

	// UploadsRoot serves locally stored uploads at /uploads/ when set.
	UploadsRoot string

	// MetricsPath exposes Prometheus metrics when set.
	MetricsPath string

	Logger *slog.Logger
}

// adminPrefixes mounts the admin routes at the paths the site calls and at a short alias.
var adminPrefixes = []string{"/api/admin", "/admin"}

// NewRouter creates and configures the HTTP router with logging, recovery and metrics.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}
	errOpts := ErrorOptions{Details: services.ErrorDetails}
	mux := http.NewServeMux()

	health := healthHandler(services.Health, logger)
	mux.Handle("GET /healthz", health)
	mux.Handle("HEAD /healthz", health)

	if services.MetricsPath != "" {
		mux.Handle("GET "+services.MetricsPath, promhttp.Handler())
	}

	limitBody := LimitBody(services.MaxBodyBytes)
	public := func(h http.HandlerFunc) http.Handler {
		return Chain(h, Throttle(services.Throttle), limitBody)
	}

	var admin func(http.HandlerFunc) http.Handler
	if services.Auth != nil {
		authHandlers := &AdminAuthHandlers{
			Svc:     services.Auth,
			Cookies: services.Cookies,
			Errors:  errOpts,
			Logger:  logger,
		}
		registerAdminAuthRoutes(mux, authHandlers, limitBody)
		requireAdmin := RequireAdmin(services.Auth)
		admin = func(h http.HandlerFunc) http.Handler { return requireAdmin(h) }
	}

	intake := &IntakeHandlers{
		Contacts:   services.Contacts,
		Bookings:   services.Bookings,
		Newsletter: services.Newsletter,
		Errors:     errOpts,
	}
	registerIntakeRoutes(mux, intake, public, admin)

	if services.Yachts != nil {
		yachts := &YachtHandlers{Svc: services.Yachts, Errors: errOpts}
		mux.HandleFunc("GET /api/yachts", yachts.List)
		if admin != nil {
			mux.Handle("POST /api/yachts", Chain(admin(yachts.Create), limitBody))
		}
	}

	if services.Uploads != nil && admin != nil {
		uploads := &UploadHandlers{Svc: services.Uploads, Errors: errOpts}
		mux.Handle("POST /api/upload/yacht", admin(uploads.UploadYachtImage))
	}

	if services.UploadsRoot != "" {
		mux.Handle("GET /uploads/", noDirListing(http.FileServer(http.Dir(services.UploadsRoot))))
	}

	return Chain(mux, Recover(logger), Logging(logger), Metrics())
}

func registerAdminAuthRoutes(mux *http.ServeMux, h *AdminAuthHandlers, limitBody func(http.Handler) http.Handler) {
	for _, p := range adminPrefixes {
		mux.Handle("POST "+p+"/login", limitBody(http.HandlerFunc(h.Login)))
		mux.HandleFunc("POST "+p+"/logout", h.Logout)
		mux.HandleFunc("GET "+p+"/me", h.Me)
		mux.Handle("POST "+p+"/register", limitBody(http.HandlerFunc(h.Register)))
	}
}

// registerIntakeRoutes mounts the public form endpoints. The admin listings
// are only mounted when admin auth is configured.
func registerIntakeRoutes(
	mux *http.ServeMux,
	h *IntakeHandlers,
	public func(http.HandlerFunc) http.Handler,
	admin func(http.HandlerFunc) http.Handler,
) {
	if h.Contacts != nil {
		mux.Handle("POST /api/contact", public(h.SubmitContact))
		if admin != nil {
			mux.Handle("GET /api/contact", admin(h.ListContacts))
		}
	}
	if h.Bookings != nil {
		mux.Handle("POST /api/bookings", public(h.SubmitBooking))
		if admin != nil {
			mux.Handle("GET /api/bookings", admin(h.ListBookings))
		}
	}
	if h.Newsletter != nil {
		mux.Handle("POST /api/newsletter", public(h.Subscribe))
		if admin != nil {
			mux.Handle("GET /api/newsletter", admin(h.NewsletterStats))
		}
	}
}

// noDirListing hides directory indexes from the static file server.
func noDirListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
