package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/anihub/anihub-web/internal/backend"
	"github.com/anihub/anihub-web/internal/config"
	"github.com/anihub/anihub-web/internal/session"
)

// requestID accepts an incoming X-Request-ID or mints one, echoes it, and puts it
// on the context for the backend client and the request logger.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(backend.RequestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(backend.RequestIDHeader, id)

		logger := config.GetLogger().With().Str("request_id", id).Logger()
		ctx := backend.WithRequestID(r.Context(), id)
		ctx = logger.WithContext(ctx)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// accessLog writes one zerolog line per request.
func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		logger := zerolog.Ctx(r.Context())
		event := logger.Info()
		if status >= http.StatusInternalServerError {
			event = logger.Error()
		}
		event.Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Str("remote", r.RemoteAddr).
			Msg("Request handled")
	})
}

type credentialsKey struct{}

// requireLogin lets the request through only with a live session. Missing or
// expired sessions are sent to the login page with their cookies cleared.
func (s *Server) requireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		creds, err := s.sessions.Load(r)
		if err != nil {
			var expired *session.ExpiredError
			if errors.As(err, &expired) {
				zerolog.Ctx(r.Context()).Info().Str("user", expired.Username).Msg("Session token expired")
			}
			s.sessions.Clear(w)
			redirectToLogin(w, r)
			return
		}
		ctx := context.WithValue(r.Context(), credentialsKey{}, creds)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// credentials returns the session stored by requireLogin.
func credentials(ctx context.Context) *session.Credentials {
	creds, _ := ctx.Value(credentialsKey{}).(*session.Credentials)
	return creds
}

// currentUser loads the session of a page that works with or without login.
// An expired token is cleared and the page is served anonymously.
func (s *Server) currentUser(w http.ResponseWriter, r *http.Request) *session.Credentials {
	creds, err := s.sessions.Load(r)
	if err != nil {
		var expired *session.ExpiredError
		if errors.As(err, &expired) {
			s.sessions.Clear(w)
		}
		return nil
	}
	return creds
}

func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", "/login")
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// isHTMX reports whether the request was issued by htmx for a partial swap.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
