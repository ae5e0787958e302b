// Package web serves the AniHub pages. Handlers call the backend with the request
// context and render html/template pages; a small JSON and WebSocket surface
// backs the live search box.
package web

import (
	"fmt"
	"io/fs"
	"net/http"
	"time"

	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/anihub/anihub-web/internal/backend"
	"github.com/anihub/anihub-web/internal/roulette"
	"github.com/anihub/anihub-web/internal/session"
)

// DefaultSuggestDebounce is how long the live search waits for typing to pause.
const DefaultSuggestDebounce = 500 * time.Millisecond

// Options tunes a Server. Zero values pick the defaults.
type Options struct {
	Sessions        *session.Store
	Spinner         *roulette.Spinner
	AllowedOrigins  []string
	SuggestDebounce time.Duration
}

// Server holds the dependencies shared by all handlers.
type Server struct {
	client          backend.Client
	sessions        *session.Store
	spinner         *roulette.Spinner
	views           *views
	allowedOrigins  []string
	suggestDebounce time.Duration
}

// NewServer parses the templates and wires the handlers to client.
func NewServer(client backend.Client, opts Options) (*Server, error) {
	v, err := newViews()
	if err != nil {
		return nil, err
	}

	if opts.Sessions == nil {
		opts.Sessions = session.NewStore(false, 72*time.Hour)
	}
	if opts.Spinner == nil {
		opts.Spinner = roulette.NewSpinner(client, nil)
	}
	if opts.SuggestDebounce <= 0 {
		opts.SuggestDebounce = DefaultSuggestDebounce
	}

	return &Server{
		client:          client,
		sessions:        opts.Sessions,
		spinner:         opts.Spinner,
		views:           v,
		allowedOrigins:  opts.AllowedOrigins,
		suggestDebounce: opts.SuggestDebounce,
	}, nil
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(requestID)
	r.Use(accessLog)
	r.Use(chimw.Recoverer)
	// Repanic so Recoverer still answers 500 after Sentry has seen the panic.
	r.Use(sentryhttp.New(sentryhttp.Options{Repanic: true}).Handle)

	static, _ := fs.Sub(assets, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(static)))

	r.Get("/healthz", s.handleHealthz)

	r.Get("/", s.handleHome)
	r.Get("/catalog", s.handleCatalog)
	r.Get("/watch/{name}", s.handleWatch)
	r.Get("/surprise", s.handleSurprise)
	r.Post("/surprise", s.handleSpin)

	r.Get("/login", s.handleLoginPage)
	r.Post("/login", s.handleLogin)
	r.Post("/register", s.handleRegister)
	r.Post("/logout", s.handleLogout)

	r.Group(func(r chi.Router) {
		r.Use(s.requireLogin)
		r.Post("/watch/{name}/favorite", s.handleToggle(listFavorites))
		r.Post("/watch/{name}/watchlist", s.handleToggle(listWatchlist))
		r.Get("/my-list", s.handleMyList)
		r.Get("/profile", s.handleProfile)
		r.Post("/profile", s.handleProfileUpdate)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.allowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", backend.RequestIDHeader},
			ExposedHeaders: []string{backend.RequestIDHeader},
			MaxAge:         300,
		}))
		r.Get("/suggest", s.handleSuggest)
	})
	r.Get("/ws/suggest", s.handleSuggestSocket)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.renderError(w, r, http.StatusNotFound, "Page not found", "There is nothing at this address.")
	})

	return r
}

// NewHTTPServer wraps handler in an http.Server listening on address:port.
func NewHTTPServer(address string, port int, handler http.Handler) *http.Server {
	if port == 0 {
		port = 8080
	}
	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", address, port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
