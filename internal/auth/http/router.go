package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/Sergei-Vorfolomeev/bloggers-platform/internal/auth/service"
	"github.com/Sergei-Vorfolomeev/bloggers-platform/pkg/httpx"
	"github.com/Sergei-Vorfolomeev/bloggers-platform/pkg/slogx"
)

// Options tune the transport. Zero values fall back to safe defaults.
type Options struct {
	// ClientIP identifies the caller for rate limiting and device records.
	// Defaults to httpx.IPKeyExtractor.
	ClientIP httpx.KeyExtractor

	// RateLimitWindow is sent as Retry-After on /auth rejections.
	RateLimitWindow time.Duration

	CookieSecure  bool
	AdminLogin    string
	AdminPassword string
	CORSOrigins   []string
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	opts         Options
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	db           Pinger

	Tokens        *service.TokenIssuer
	AuthService   *service.AuthService
	DeviceService *service.DeviceService
	UserService   *service.UserService
	Limiter       httpx.Admitter
}

func NewRouter(opts Options, buildVersion string, db Pinger, logger *slog.Logger) *Router {
	if opts.ClientIP == nil {
		opts.ClientIP = httpx.IPKeyExtractor
	}
	if opts.RateLimitWindow <= 0 {
		opts.RateLimitWindow = service.DefaultRateWindow
	}

	r := &Router{
		Mux:          http.NewServeMux(),
		opts:         opts,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		db:           db,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}
	if len(opts.CORSOrigins) > 0 {
		r.middlewares = append(r.middlewares, httpx.CORS(opts.CORSOrigins))
	}

	return r
}

// ApplyRoutes registers every endpoint. The services must be set first.
func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerDevices()
	r.registerUsers()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) cookies() refreshCookies {
	return refreshCookies{secure: r.opts.CookieSecure, ttl: r.Tokens.TTL(service.RefreshToken)}
}

func (r *Router) registerAuth() {
	h := &AuthHandler{
		AuthService: r.AuthService,
		ClientIP:    r.opts.ClientIP,
		cookies:     r.cookies(),
	}

	// Every /auth route counts against the per IP and path window.
	window := httpx.WindowLimit(r.Limiter, r.opts.RateLimitWindow, r.opts.ClientIP)
	limited := func(fn http.HandlerFunc) http.Handler {
		return httpx.Chain(fn, window)
	}

	r.Mux.Handle("POST /auth/login", limited(h.HandleLogin))
	r.Mux.Handle("POST /auth/registration", limited(h.HandleRegistration))
	r.Mux.Handle("POST /auth/registration-confirmation", limited(h.HandleConfirmation))
	r.Mux.Handle("POST /auth/registration-email-resending", limited(h.HandleEmailResending))
	r.Mux.Handle("POST /auth/refresh-token", limited(h.HandleRefresh))
	r.Mux.Handle("POST /auth/logout", limited(h.HandleLogout))
	r.Mux.Handle("POST /auth/password-recovery", limited(h.HandlePasswordRecovery))
	r.Mux.Handle("POST /auth/new-password", limited(h.HandleNewPassword))

	me := &MeHandler{UserService: r.UserService}
	r.Mux.Handle("GET /auth/me",
		httpx.Chain(me,
			window,
			httpx.BearerAuth(r.Tokens.Verifier(service.AccessToken)),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerDevices() {
	h := &DevicesHandler{DeviceService: r.DeviceService, cookies: r.cookies()}
	limit := httpx.RateLimitMiddleware(httpx.LenientLimit, r.opts.ClientIP)

	r.Mux.Handle("GET /security/devices", httpx.Chain(http.HandlerFunc(h.HandleList), limit))
	r.Mux.Handle("DELETE /security/devices", httpx.Chain(http.HandlerFunc(h.HandleDeleteOthers), limit))
	r.Mux.Handle("DELETE /security/devices/{id}", httpx.Chain(http.HandlerFunc(h.HandleDelete), limit))
}

func (r *Router) registerUsers() {
	h := &UsersHandler{UserService: r.UserService}

	// Admin writes - basic auth, moderate limit by IP
	guard := []httpx.Middleware{
		httpx.RateLimitMiddleware(httpx.ModerateLimit, r.opts.ClientIP),
		httpx.BasicAuth(r.opts.AdminLogin, r.opts.AdminPassword),
	}

	r.Mux.Handle("POST /users", httpx.Chain(http.HandlerFunc(h.HandleCreate), guard...))
	r.Mux.Handle("DELETE /users/{id}", httpx.Chain(http.HandlerFunc(h.HandleDelete), guard...))
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.db),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
