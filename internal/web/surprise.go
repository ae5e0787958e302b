package web

import (
	"errors"
	"net/http"
	"time"

	"github.com/anihub/anihub-web/internal/catalog"
	"github.com/anihub/anihub-web/internal/roulette"
)

type surprisePage struct {
	layout
	Genres []string
	Genre  string
	Plan   *roulette.Plan
	Alert  string

	Duration   time.Duration
	StartDelay time.Duration
	Easing     string
}

func (s *Server) newSurprisePage(w http.ResponseWriter, r *http.Request, genre string) surprisePage {
	return surprisePage{
		layout:     layout{Title: "Surprise me", Active: "surprise", User: s.currentUser(w, r)},
		Genres:     catalog.Genres,
		Genre:      genre,
		Duration:   roulette.Duration,
		StartDelay: roulette.StartDelay,
		Easing:     roulette.Easing,
	}
}

func (s *Server) handleSurprise(w http.ResponseWriter, r *http.Request) {
	s.page(w, r, http.StatusOK, "surprise", s.newSurprisePage(w, r, catalog.All))
}

func (s *Server) handleSpin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, http.StatusBadRequest, "Bad request", "The form could not be read.")
		return
	}
	data := s.newSurprisePage(w, r, r.PostForm.Get("genre"))

	plan, err := s.spinner.Spin(r.Context(), data.Genre)
	switch {
	case errors.Is(err, roulette.ErrEmptyPool):
		data.Alert = roulette.EmptyPoolMessage
	case err != nil:
		s.report(r, err, "Roulette spin failed")
		data.Alert = "The roulette could not reach the catalog. Please try again."
		s.page(w, r, http.StatusBadGateway, "surprise", data)
		return
	default:
		data.Plan = plan
		data.Genre = plan.Genre
	}
	s.page(w, r, http.StatusOK, "surprise", data)
}
