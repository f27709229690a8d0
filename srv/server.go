// Package srv is the HTTP API: accounts, books, AI generation and export.
package srv

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	secure "github.com/srikrsna/security-headers"
	"gorm.io/gorm"

	"github.com/opd-ai/bookforge/bookcompiler"
	"github.com/opd-ai/bookforge/logger"
	bookforge "github.com/opd-ai/bookforge/src"
	"github.com/opd-ai/bookforge/srv/auth"
	"github.com/opd-ai/bookforge/srv/jobs"
	"github.com/opd-ai/bookforge/srv/util"
	"github.com/opd-ai/bookforge/store"
)

// Deps are the collaborators a Server is built from. Generator and Images
// may be nil, which disables the routes that need them.
type Deps struct {
	DB        *gorm.DB
	Auth      *auth.Service
	Generator *bookforge.Generator
	Images    bookforge.ImageClient
}

type Server struct {
	cfg      Config
	log      *logger.Logger
	router   chi.Router
	handler  http.Handler
	users    *store.UserRepo
	books    *store.BookRepo
	auth     *auth.Service
	gen      *bookforge.Generator
	images   bookforge.ImageClient
	compiler *bookcompiler.BookCompiler // resolves covers under UploadsDir
	jobs     *jobs.Manager

	// baseCtx bounds background drafts; Close cancels it.
	baseCtx context.Context
	stop    context.CancelFunc
}

func New(cfg Config, deps Deps, log *logger.Logger) *Server {
	log = logger.OrNop(log)
	ctx, stop := context.WithCancel(context.Background())
	s := &Server{
		cfg:      cfg,
		log:      log.With("component", "server"),
		router:   chi.NewRouter(),
		users:    store.NewUserRepo(deps.DB, log),
		books:    store.NewBookRepo(deps.DB, log),
		auth:     deps.Auth,
		gen:      deps.Generator,
		images:   deps.Images,
		compiler: bookcompiler.NewBookCompiler(cfg.UploadsDir, log),
		jobs:     jobs.NewManager(log),
		baseCtx:  ctx,
		stop:     stop,
	}
	s.setupRoutes()

	headers := &secure.Secure{
		STSIncludeSubdomains: true,
		STSMaxAgeSeconds:     90 * 24 * 60 * 60,
		ContentTypeNoSniff:   true,
		XSSFilterBlock:       true,
	}
	s.handler = headers.Middleware()(s.router)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Close cancels drafts that are still running.
func (s *Server) Close() {
	s.stop()
}

func (s *Server) setupRoutes() {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(util.LoggingMiddleware(s.log))
	r.Use(util.RecoveryMiddleware(s.log))
	r.Use(corsMiddleware)
	if s.cfg.RateLimit > 0 {
		r.Use(httprate.Limit(s.cfg.RateLimit, time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(s.tooManyRequests)))
	}

	r.Get("/health", handleHealthCheck)

	uploads := http.FileServer(http.Dir(s.cfg.UploadsDir))
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", uploads))

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)
		r.With(s.requireAuth).Get("/profile", s.handleGetProfile)
		r.With(s.requireAuth).Put("/profile", s.handleUpdateProfile)
	})

	r.Route("/api/books", func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Post("/", s.handleCreateBook)
		r.Get("/", s.handleListBooks)
		r.Get("/{id}", s.handleGetBook)
		r.Put("/{id}", s.handleUpdateBook)
		r.Delete("/{id}", s.handleDeleteBook)
		r.Put("/cover/{id}", s.handleUploadCover)
		r.Post("/cover/{id}/generate", s.handleGenerateCover)
	})

	r.Route("/api/ai", func(r chi.Router) {
		r.Use(s.requireAuth)
		if s.cfg.AIRateLimit > 0 {
			r.Use(httprate.Limit(s.cfg.AIRateLimit, time.Minute,
				httprate.WithKeyFuncs(httprate.KeyByIP),
				httprate.WithLimitHandler(s.tooManyRequests)))
		}
		r.Post("/generate-outline", s.handleGenerateOutline)
		r.Post("/generate-chapter-content", s.handleGenerateChapter)
		r.Post("/draft", s.handleStartDraft)
	})

	r.Route("/api/drafts", func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Get("/{jobID}", s.handleDraftStatus)
		r.Get("/{jobID}/ws", s.handleDraftSocket)
	})

	r.Route("/api/export", func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Get("/{id}/pdf", s.handleExport(bookcompiler.FormatPDF))
		r.Get("/{id}/document", s.handleExport(bookcompiler.FormatDOCX))
	})
}

func (s *Server) tooManyRequests(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusTooManyRequests, errorBody{Message: "Too many requests, please try again later"})
}
