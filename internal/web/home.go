package web

import (
	"net/http"

	"github.com/anihub/anihub-web/internal/models"
)

type homePage struct {
	layout
	Hero        *models.Anime
	Rows        []models.HomeRow
	Unavailable bool
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	data := homePage{layout: layout{Title: "Home", Active: "home", User: s.currentUser(w, r)}}

	home, err := s.client.Home(r.Context())
	if err != nil {
		// The home page degrades to empty rows rather than an error page.
		s.report(r, err, "Failed to load home feed")
		data.Unavailable = true
		home = &models.HomeData{}
	}

	data.Hero = home.Hero()
	data.Rows = home.Rows()
	s.page(w, r, http.StatusOK, "home", data)
}
