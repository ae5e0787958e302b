package backend

import (
	"context"
	"net/http"
	"strconv"

	"github.com/anihub/anihub-web/internal/apperrors"
	"github.com/anihub/anihub-web/internal/models"
)

// Login exchanges credentials for a bearer token
func (c *client) Login(ctx context.Context, creds models.Credentials) (*models.Token, error) {
	var token models.Token
	if err := c.do(ctx, call{op: "login", method: http.MethodPost, path: "/login", body: creds}, &token); err != nil {
		return nil, err
	}
	if token.AccessToken == "" {
		return nil, &apperrors.ErrBackendStatus{Endpoint: "/login", StatusCode: http.StatusOK, Detail: "no access token in response"}
	}
	if token.Username == "" {
		token.Username = creds.Username
	}
	return &token, nil
}

// Register creates an account. The caller logs in separately afterwards.
func (c *client) Register(ctx context.Context, reg models.Registration) error {
	return c.do(ctx, call{op: "register", method: http.MethodPost, path: "/register", body: reg}, nil)
}

// Me fetches the profile of the token's owner
func (c *client) Me(ctx context.Context, token string) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, call{op: "me", method: http.MethodGet, path: "/users/me", token: token}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile changes bio and avatar color
func (c *client) UpdateProfile(ctx context.Context, token string, update models.ProfileUpdate) error {
	return c.do(ctx, call{op: "update_profile", method: http.MethodPut, path: "/users/me", token: token, body: update}, nil)
}

func (c *client) Favorites(ctx context.Context, token string) ([]models.ListItem, error) {
	return c.listItems(ctx, "favorites", "/users/me/favorites", token)
}

func (c *client) AddFavorite(ctx context.Context, token string, item models.ListItem) error {
	return c.addItem(ctx, "add_favorite", "/users/favorites", token, item)
}

func (c *client) RemoveFavorite(ctx context.Context, token string, animeID int) error {
	return c.removeItem(ctx, "remove_favorite", "/users/favorites/", token, animeID)
}

func (c *client) Watchlist(ctx context.Context, token string) ([]models.ListItem, error) {
	return c.listItems(ctx, "watchlist", "/users/me/watchlist", token)
}

func (c *client) AddWatchlist(ctx context.Context, token string, item models.ListItem) error {
	return c.addItem(ctx, "add_watchlist", "/users/watchlist", token, item)
}

func (c *client) RemoveWatchlist(ctx context.Context, token string, animeID int) error {
	return c.removeItem(ctx, "remove_watchlist", "/users/watchlist/", token, animeID)
}

// History lists the episodes the user watched, most recent first as sent by the backend
func (c *client) History(ctx context.Context, token string) ([]models.HistoryEntry, error) {
	var entries []models.HistoryEntry
	if err := c.do(ctx, call{op: "history", method: http.MethodGet, path: "/users/me/history", token: token}, &entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []models.HistoryEntry{}
	}
	return entries, nil
}

// RecordHistory stores the episode being watched
func (c *client) RecordHistory(ctx context.Context, token string, entry models.HistoryEntry) error {
	return c.do(ctx, call{op: "record_history", method: http.MethodPost, path: "/users/history", token: token, body: entry}, nil)
}

func (c *client) listItems(ctx context.Context, op, path, token string) ([]models.ListItem, error) {
	var items []models.ListItem
	if err := c.do(ctx, call{op: op, method: http.MethodGet, path: path, token: token}, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.ListItem{}
	}
	return items, nil
}

func (c *client) addItem(ctx context.Context, op, path, token string, item models.ListItem) error {
	if item.Format == "" {
		item.Format = models.DefaultFormat
	}
	return c.do(ctx, call{op: op, method: http.MethodPost, path: path, token: token, body: item}, nil)
}

func (c *client) removeItem(ctx context.Context, op, prefix, token string, animeID int) error {
	return c.do(ctx, call{op: op, method: http.MethodDelete, path: prefix + strconv.Itoa(animeID), token: token}, nil)
}
