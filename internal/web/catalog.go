package web

import (
	"net/http"

	"github.com/anihub/anihub-web/internal/catalog"
	"github.com/anihub/anihub-web/internal/models"
)

type catalogPage struct {
	layout
	Query   catalog.Query
	Genres  []string
	Formats []string
	Sorts   []catalog.Option
	Media   []models.Anime
	Pager   catalog.Pager
	Failed  bool
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	q := catalog.ParseQuery(values)

	if values.Has("jump") {
		s.handleJump(w, r, q, values.Get("jump"))
		return
	}

	data := catalogPage{
		layout:  layout{Title: "Catalog", Active: "catalog", User: s.currentUser(w, r)},
		Query:   q,
		Genres:  catalog.Genres,
		Formats: catalog.Formats,
		Sorts:   catalog.Sorts,
	}

	status := http.StatusOK
	result, err := s.client.Catalog(r.Context(), q.Values())
	if err != nil {
		s.report(r, err, "Failed to load catalog")
		data.Failed = true
		status = http.StatusBadGateway
		result = &models.CatalogPage{}
	}

	// A page past the end (stale link, edited URL) goes to the real last page.
	if last := result.LastPage(); result.PageInfo != nil && q.Page > last {
		http.Redirect(w, r, q.WithPage(last).URL(), http.StatusSeeOther)
		return
	}

	data.Media = result.Media
	data.Pager = catalog.NewPager(q, result.LastPage())

	if isHTMX(r) {
		s.views.render(w, r, status, "catalog", "catalog-grid", data)
		return
	}
	s.page(w, r, status, "catalog", data)
}

// handleJump checks a jump-to-page input against the last page the backend
// reports for the current filters and redirects to it, or back to the current
// page when the input is out of range.
func (s *Server) handleJump(w http.ResponseWriter, r *http.Request, q catalog.Query, input string) {
	target := q.URL()
	result, err := s.client.Catalog(r.Context(), q.Values())
	if err != nil {
		s.report(r, err, "Failed to check catalog jump")
	} else if page, ok := catalog.JumpTarget(input, result.LastPage()); ok {
		target = q.WithPage(page).URL()
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
