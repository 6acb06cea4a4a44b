package routes

import (
	"net/http"

	"github.com/AnshRaj112/salvioris-journal/internal/auth"
	"github.com/AnshRaj112/salvioris-journal/internal/handlers"
	"github.com/AnshRaj112/salvioris-journal/internal/middleware"
	"github.com/AnshRaj112/salvioris-journal/pkg/logger"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Options selects the middleware stack.
type Options struct {
	Production     bool
	TrustProxy     bool
	AllowedHost    string
	AllowedOrigins []string

	// RateLimiter is optional; nil disables the shared Redis limit.
	RateLimiter *middleware.RedisRateLimiter
	Log         logger.Logger
}

// New builds the router. The returned func stops background work owned by
// the middleware stack.
func New(h *handlers.Handler, gate *auth.Gate, opts Options) (http.Handler, func()) {
	if opts.Log == nil {
		opts.Log = logger.NewNop()
	}
	stop := func() {}

	r := chi.NewRouter()
	if opts.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(logger.Middleware(opts.Log))
	r.Use(middleware.Recoverer(opts.Log))
	r.Use(middleware.CORS(opts.AllowedOrigins))
	r.Use(middleware.SecurityHeaders(opts.Production))

	// Production: HostCheck → GlobalRateLimit → LoginRateLimit
	if opts.Production {
		mws, stopLimiters := middleware.ProductionSecurity(opts.AllowedHost)
		for _, mw := range mws {
			r.Use(mw)
		}
		stop = stopLimiters
	}
	if opts.RateLimiter != nil {
		r.Use(opts.RateLimiter.Middleware)
	}

	r.Use(middleware.MethodOverride)
	r.Use(gate.Middleware)

	r.NotFound(h.NotFound)
	r.Get("/health", h.Health)
	r.Handle("/static/*", handlers.Static())

	r.Get("/", h.Home)

	r.Get("/users", h.UsersIndex)
	r.Get("/users/new", h.NewUser)
	r.Post("/users", h.CreateUser)
	r.Get("/users/{id}", h.ShowUser)

	r.Get("/login", h.NewSession)
	r.Post("/sessions", h.CreateSession)
	r.Get("/logout", h.DestroySession)

	// Public read
	r.Get("/entries/{id}", h.ShowEntry)

	// Ownership is checked inside the handlers so anonymous and foreign
	// requests get the gate's redirects.
	r.Get("/entries/{id}/edit", h.EditEntry)
	r.Patch("/entries/{id}", h.UpdateEntry)
	r.Delete("/entries/{id}", h.DestroyEntry)

	r.Group(func(r chi.Router) {
		r.Use(gate.RequireLogin)

		r.Get("/journals", h.JournalsIndex)
		r.Get("/journals/new", h.NewJournal)
		r.Post("/journals", h.CreateJournal)
		r.Get("/journals/{journal_id}", h.ShowJournal)
		r.Get("/journals/{journal_id}/entries/new", h.NewEntry)
		r.Post("/journals/{journal_id}/entries", h.CreateEntry)
	})

	return r, stop
}
