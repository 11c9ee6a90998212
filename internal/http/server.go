// Package http serves the web application: server-rendered pages, HTMX
// partials and the small JSON surface used by the analytics charts.
package http

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"fintrack/internal/api"
	applog "fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/present"
	"fintrack/internal/services"
	"fintrack/internal/session"
	appweb "fintrack/web"
)

// Options carries everything the server needs. API, Sessions,
// Transactions and Profiles are required.
type Options struct {
	Addr         string
	API          *api.Client
	Sessions     *session.Manager
	Transactions *services.TransactionService
	Profiles     *services.ProfileService
	Formatter    *present.Formatter
	ReportSource string
	RecentLimit  int
	CookieSecure bool
	RateLimit    int
	Logger       *applog.Logger
}

type Server struct {
	http.Server

	api          *api.Client
	sessions     *session.Manager
	tx           *services.TransactionService
	profiles     *services.ProfileService
	formatter    *present.Formatter
	reportSource string
	recentLimit  int
	cookieSecure bool

	templates *templates
	limiter   *ratelimit.Limiter
	detector  *security.Detector
	tracer    *trace.Middleware
	logger    *applog.Logger
	started   time.Time
	now       func() time.Time

	shutdownOnce sync.Once
}

func NewServer(opts Options) (*Server, error) {
	if opts.API == nil || opts.Sessions == nil || opts.Transactions == nil || opts.Profiles == nil {
		return nil, errors.New("http server: api client, session manager and services are required")
	}
	if opts.Logger == nil {
		opts.Logger = applog.Discard()
	}
	if opts.Formatter == nil {
		opts.Formatter = present.DefaultFormatter()
	}
	if opts.RecentLimit <= 0 {
		opts.RecentLimit = 10
	}
	logger := opts.Logger.WithComponent(applog.ComponentHTTP)

	tmpl, err := loadTemplates(opts.Formatter)
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}

	s := &Server{
		Server: http.Server{
			Addr:              opts.Addr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		api:          opts.API,
		sessions:     opts.Sessions,
		tx:           opts.Transactions,
		profiles:     opts.Profiles,
		formatter:    opts.Formatter,
		reportSource: opts.ReportSource,
		recentLimit:  opts.RecentLimit,
		cookieSecure: opts.CookieSecure,
		templates:    tmpl,
		limiter:      ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimit}, opts.Logger),
		detector:     security.NewDetector(opts.Logger),
		logger:       logger,
		started:      time.Now(),
		now:          time.Now,
	}
	s.tracer = trace.NewMiddleware(logger, s.detector.ExtractClientIP)

	handler, err := s.routes()
	if err != nil {
		s.limiter.Stop()
		return nil, err
	}
	s.Handler = handler
	return s, nil
}

func (s *Server) routes() (http.Handler, error) {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.tracer.Middleware)
	r.Use(middleware.Recoverer)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
	r.Use(s.detector.Middleware)
	r.Use(s.limiter.Middleware(s.detector.ExtractClientIP))

	static, err := fs.Sub(appweb.StaticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("mount static files: %w", err)
	}
	r.With(security.StaticAssetMiddleware(3600)).
		Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Group(func(r chi.Router) {
		r.Use(security.NoStore)
		r.Use(s.guestOnly)
		r.Get("/login", s.handleLoginPage)
		r.Post("/login", s.handleLogin)
		r.Get("/register", s.handleRegisterPage)
		r.Post("/register", s.handleRegister)
	})

	r.Group(func(r chi.Router) {
		r.Use(security.NoStore)
		r.Use(s.requireSession)

		r.Post("/logout", s.handleLogout)
		r.Get("/", s.handleDashboard)

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", s.handleTransactions)
			r.Post("/", s.handleCreateTransaction)
			r.Get("/form", s.handleTransactionForm)
			r.Get("/export", s.handleExport)
			r.Get("/{type}/{id}/edit", s.handleEditTransaction)
			r.Post("/{type}/{id}", s.handleUpdateTransaction)
			r.Post("/{type}/{id}/delete", s.handleDeleteTransaction)
			r.Delete("/{type}/{id}", s.handleDeleteTransaction)
		})

		r.Get("/analytics", s.handleAnalytics)

		r.Route("/api", func(r chi.Router) {
			r.Get("/reports/{type}", s.handleReportData)
			r.Get("/summary", s.handleSummaryData)
		})

		r.Get("/profile", s.handleProfile)
		r.Post("/profile", s.handleUpdateProfile)
		r.Post("/profile/delete", s.handleDeleteProfile)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.renderError(w, r, http.StatusNotFound, "Page not found")
	})
	return r, nil
}

// Shutdown stops the rate limiter and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
