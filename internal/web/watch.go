package web

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/anihub/anihub-web/internal/models"
)

type watchPage struct {
	layout
	Name        string
	Anime       *models.AnimeDetail
	Episode     int
	Episodes    []int
	Stream      string
	StreamKind  string
	Seasons     []models.Relation
	Related     []models.Relation
	IsFavorite  bool
	InWatchlist bool
}

func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)
	name := animeName(r)
	creds := s.currentUser(w, r)

	detail, err := s.client.AnimeDetail(ctx, name)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	episode := parseEpisode(r.URL.Query().Get("ep"), min(detail.Episodes, models.MaxEpisodes))
	data := watchPage{
		layout:   layout{Title: detail.Title, User: creds},
		Name:     name,
		Anime:    detail,
		Episode:  episode,
		Episodes: detail.EpisodeNumbers(),
		Seasons:  detail.Seasons(),
		Related:  detail.Related(),
	}

	// Episodes are looked up by the backend's canonical title.
	title := detail.Title
	if title == "" {
		title = name
	}
	link, err := s.client.Stream(ctx, title, episode)
	if err != nil {
		logger.Warn().Err(err).Str("anime", title).Int("episode", episode).Msg("Stream unavailable")
	} else {
		data.Stream = link.URL()
		data.StreamKind = link.Kind().String()
	}

	if creds != nil {
		if err := s.loadListState(ctx, creds.Token, detail.ID, &data); err != nil {
			s.fail(w, r, err)
			return
		}
		if link != nil {
			if err := s.client.RecordHistory(ctx, creds.Token, detail.HistoryEntry(episode)); err != nil {
				if isUnauthorized(err) {
					s.fail(w, r, err)
					return
				}
				logger.Warn().Err(err).Msg("Failed to record watch history")
			}
		}
	}

	s.page(w, r, http.StatusOK, "watch", data)
}

// loadListState marks whether the anime is a favorite or on the watchlist. Only
// an unauthorized answer is returned; other failures leave the buttons unset.
func (s *Server) loadListState(ctx context.Context, token string, animeID int, data *watchPage) error {
	logger := zerolog.Ctx(ctx)

	favorites, err := s.client.Favorites(ctx, token)
	if isUnauthorized(err) {
		return err
	}
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to load favorites")
	}
	data.IsFavorite = models.ContainsAnime(favorites, animeID)

	watchlist, err := s.client.Watchlist(ctx, token)
	if isUnauthorized(err) {
		return err
	}
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to load watchlist")
	}
	data.InWatchlist = models.ContainsAnime(watchlist, animeID)
	return nil
}

// animeName returns the decoded {name} segment. chi matches on the escaped path
// when the URL needed non-default escaping (a "/" inside a title, for example).
func animeName(r *http.Request) string {
	name := chi.URLParam(r, "name")
	if r.URL.RawPath != "" {
		if decoded, err := url.PathUnescape(name); err == nil {
			return decoded
		}
	}
	return name
}

// parseEpisode reads ?ep=, defaulting to 1 and staying within the known episode count.
func parseEpisode(raw string, episodes int) int {
	ep, err := strconv.Atoi(raw)
	if err != nil || ep < 1 {
		return 1
	}
	if episodes > 0 && ep > episodes {
		return episodes
	}
	return ep
}

type listKind int

const (
	listFavorites listKind = iota
	listWatchlist
)

// handleToggle adds the anime to or removes it from a list, then returns to the player.
func (s *Server) handleToggle(kind listKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		creds := credentials(ctx)
		name := animeName(r)

		if err := r.ParseForm(); err != nil {
			s.renderError(w, r, http.StatusBadRequest, "Bad request", "The form could not be read.")
			return
		}
		action := r.PostForm.Get("action")
		if action != "add" && action != "remove" {
			s.renderError(w, r, http.StatusBadRequest, "Bad request", "Unknown list action.")
			return
		}

		detail, err := s.client.AnimeDetail(ctx, name)
		if err != nil {
			s.fail(w, r, err)
			return
		}

		switch {
		case kind == listFavorites && action == "add":
			err = s.client.AddFavorite(ctx, creds.Token, detail.ListItem())
		case kind == listFavorites:
			err = s.client.RemoveFavorite(ctx, creds.Token, detail.ID)
		case action == "add":
			err = s.client.AddWatchlist(ctx, creds.Token, detail.ListItem())
		default:
			err = s.client.RemoveWatchlist(ctx, creds.Token, detail.ID)
		}
		if err != nil {
			s.fail(w, r, err)
			return
		}

		target := watchURL(name)
		if ep, err := strconv.Atoi(r.PostForm.Get("ep")); err == nil && ep > 1 {
			target += "?" + url.Values{"ep": {strconv.Itoa(ep)}}.Encode()
		}
		http.Redirect(w, r, target, http.StatusSeeOther)
	}
}
