package web

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/getsentry/sentry-go"
	"github.com/gosimple/slug"
	"github.com/rs/zerolog"

	"github.com/anihub/anihub-web/internal/apperrors"
	"github.com/anihub/anihub-web/internal/metrics"
	"github.com/anihub/anihub-web/internal/models"
	"github.com/anihub/anihub-web/internal/parser"
	"github.com/anihub/anihub-web/internal/session"
)

//go:embed templates/*.html static
var assets embed.FS

// pageNames are the templates under templates/ rendered inside the layout.
var pageNames = []string{"home", "catalog", "watch", "login", "profile", "mylist", "surprise", "error"}

type views struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"label":    models.Label,
	"slug":     slug.Make,
	"excerpt":  parser.Excerpt,
	"watchURL": watchURL,
	"initial":  initial,
	"add":      func(a, b int) int { return a + b },
	"millis":   func(d time.Duration) int64 { return d.Milliseconds() },
	"safeDescription": func(raw string) template.HTML {
		clean, err := parser.SanitizeDescription(raw)
		if err != nil {
			return template.HTML(template.HTMLEscapeString(parser.Excerpt(raw, 0)))
		}
		return clean
	},
}

func newViews() (*views, error) {
	v := &views{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		t, err := template.New(name).Funcs(funcs).ParseFS(assets,
			"templates/layout.html",
			"templates/partials.html",
			"templates/"+name+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		v.pages[name] = t
	}
	return v, nil
}

// layout is the data every page hands to the layout template.
type layout struct {
	Title  string
	Active string
	User   *session.Credentials
}

// render executes block of page into a buffer first so template errors turn
// into a clean 500 instead of half a page.
func (v *views) render(w http.ResponseWriter, r *http.Request, status int, page, block string, data any) {
	t, ok := v.pages[page]
	if !ok {
		http.Error(w, "unknown page "+page, http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, block, data); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("page", page).Str("block", block).Msg("Failed to render template")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	metrics.PageRendersTotal.WithLabelValues(page).Inc()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Add("Vary", "HX-Request")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// page renders a full page through the layout.
func (s *Server) page(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	s.views.render(w, r, status, name, "layout", data)
}

type errorPage struct {
	layout
	Heading string
	Message string
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, heading, message string) {
	s.page(w, r, status, "error", errorPage{
		layout:  layout{Title: heading, User: s.currentUser(w, r)},
		Heading: heading,
		Message: message,
	})
}

// fail maps a backend error to a response: expired credentials go to the login
// page, missing resources to a 404, everything else to a 502 reported to Sentry.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, &apperrors.ErrUnauthorized{}):
		zerolog.Ctx(r.Context()).Info().Err(err).Msg("Backend rejected the session token")
		s.sessions.Clear(w)
		redirectToLogin(w, r)
	case errors.Is(err, &apperrors.ErrNotFound{}):
		s.renderError(w, r, http.StatusNotFound, "Not found", "We could not find that anime.")
	default:
		s.report(r, err, "Backend request failed")
		s.renderError(w, r, http.StatusBadGateway, "Something went wrong", "The AniHub service did not answer. Please try again in a moment.")
	}
}

// report logs err and forwards it to Sentry when a client is configured.
func (s *Server) report(r *http.Request, err error, msg string) {
	zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg(msg)
	if hub := sentry.GetHubFromContext(r.Context()); hub != nil {
		hub.CaptureException(err)
	}
}

func isUnauthorized(err error) bool {
	return errors.Is(err, &apperrors.ErrUnauthorized{})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func watchURL(title string) string {
	return "/watch/" + url.PathEscape(title)
}

func initial(name string) string {
	r, _ := utf8.DecodeRuneInString(strings.TrimSpace(name))
	if r == utf8.RuneError {
		return "?"
	}
	return string(unicode.ToUpper(r))
}
