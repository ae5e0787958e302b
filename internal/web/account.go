package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/anihub/anihub-web/internal/apperrors"
	"github.com/anihub/anihub-web/internal/models"
)

// topFavorites is how many favorites the profile showcases.
const topFavorites = 5

type loginPage struct {
	layout
	Register bool
	Username string
	Email    string
	Error    string
	Notice   string
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	data := loginPage{
		layout:   layout{Title: "Sign in", Active: "login", User: s.currentUser(w, r)},
		Register: q.Get("mode") == "register",
	}
	if q.Has("registered") {
		data.Notice = "Account created! You can sign in now."
	}
	s.page(w, r, http.StatusOK, "login", data)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, http.StatusBadRequest, "Bad request", "The form could not be read.")
		return
	}
	creds := models.Credentials{
		Username: strings.TrimSpace(r.PostForm.Get("username")),
		Password: r.PostForm.Get("password"),
	}

	token, err := s.client.Login(r.Context(), creds)
	if err != nil {
		zerolog.Ctx(r.Context()).Info().Err(err).Str("user", creds.Username).Msg("Login failed")
		s.page(w, r, formErrorStatus(err), "login", loginPage{
			layout:   layout{Title: "Sign in", Active: "login"},
			Username: creds.Username,
			Error:    backendDetail(err, "Login failed"),
		})
		return
	}

	s.sessions.Save(w, token.AccessToken, token.Username)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, http.StatusBadRequest, "Bad request", "The form could not be read.")
		return
	}
	reg := models.Registration{
		Username: strings.TrimSpace(r.PostForm.Get("username")),
		Email:    strings.TrimSpace(r.PostForm.Get("email")),
		Password: r.PostForm.Get("password"),
	}

	if err := s.client.Register(r.Context(), reg); err != nil {
		zerolog.Ctx(r.Context()).Info().Err(err).Str("user", reg.Username).Msg("Registration failed")
		s.page(w, r, formErrorStatus(err), "login", loginPage{
			layout:   layout{Title: "Create account", Active: "login"},
			Register: true,
			Username: reg.Username,
			Email:    reg.Email,
			Error:    backendDetail(err, "Could not create account"),
		})
		return
	}

	http.Redirect(w, r, "/login?registered=1", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.Clear(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// backendDetail returns the backend's "detail" message or fallback.
func backendDetail(err error, fallback string) string {
	var status *apperrors.ErrBackendStatus
	if errors.As(err, &status) && status.Detail != "" {
		return status.Detail
	}
	return fallback
}

// formErrorStatus is 400 for rejected input and 502 when the backend itself failed.
func formErrorStatus(err error) int {
	var status *apperrors.ErrBackendStatus
	if errors.As(err, &status) && status.StatusCode < http.StatusInternalServerError {
		return http.StatusBadRequest
	}
	return http.StatusBadGateway
}

type myListPage struct {
	layout
	Items []models.ListItem
}

func (s *Server) handleMyList(w http.ResponseWriter, r *http.Request) {
	creds := credentials(r.Context())

	items, err := s.client.Watchlist(r.Context(), creds.Token)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.page(w, r, http.StatusOK, "mylist", myListPage{
		layout: layout{Title: "My List", Active: "my-list", User: creds},
		Items:  items,
	})
}

type profilePage struct {
	layout
	Profile   *models.User
	Favorites []models.ListItem
	History   []models.HistoryEntry
	Colors    []string
	Editing   bool
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)
	creds := credentials(ctx)

	user, err := s.client.Me(ctx, creds.Token)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	// Favorites and history are optional sections of the page.
	favorites, err := s.client.Favorites(ctx, creds.Token)
	if err != nil {
		if isUnauthorized(err) {
			s.fail(w, r, err)
			return
		}
		logger.Warn().Err(err).Msg("Failed to load favorites for profile")
	}
	if len(favorites) > topFavorites {
		favorites = favorites[:topFavorites]
	}

	history, err := s.client.History(ctx, creds.Token)
	if err != nil {
		if isUnauthorized(err) {
			s.fail(w, r, err)
			return
		}
		logger.Warn().Err(err).Msg("Failed to load history for profile")
	}

	s.page(w, r, http.StatusOK, "profile", profilePage{
		layout:    layout{Title: user.Username, Active: "profile", User: creds},
		Profile:   user,
		Favorites: favorites,
		History:   history,
		Colors:    models.AvatarColors,
		Editing:   r.URL.Query().Has("edit"),
	})
}

func (s *Server) handleProfileUpdate(w http.ResponseWriter, r *http.Request) {
	creds := credentials(r.Context())
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, http.StatusBadRequest, "Bad request", "The form could not be read.")
		return
	}

	update := models.ProfileUpdate{
		Bio:         strings.TrimSpace(r.PostForm.Get("bio")),
		AvatarColor: r.PostForm.Get("avatar_color"),
	}
	if !models.IsAvatarColor(update.AvatarColor) {
		update.AvatarColor = models.DefaultAvatarColor
	}

	if err := s.client.UpdateProfile(r.Context(), creds.Token, update); err != nil {
		s.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}
