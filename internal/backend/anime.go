package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/anihub/anihub-web/internal/apperrors"
	"github.com/anihub/anihub-web/internal/models"
)

// MinSuggestLength is the shortest trimmed query that is sent to /search/suggest.
const MinSuggestLength = 3

// Home fetches the home feed buckets
func (c *client) Home(ctx context.Context) (*models.HomeData, error) {
	if cached, ok := c.home.Get(""); ok {
		return &cached, nil
	}

	var home models.HomeData
	if err := c.do(ctx, call{op: "home", method: http.MethodGet, path: "/home"}, &home); err != nil {
		return nil, err
	}
	c.home.Set("", home)
	return &home, nil
}

// Ping checks the backend through the home feed without touching the cache
func (c *client) Ping(ctx context.Context) error {
	return c.do(ctx, call{op: "ping", method: http.MethodGet, path: "/home"}, nil)
}

// Suggest returns live search matches. Queries shorter than MinSuggestLength
// after trimming yield no results and no backend call.
func (c *client) Suggest(ctx context.Context, query string) ([]models.Anime, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < MinSuggestLength {
		return []models.Anime{}, nil
	}

	key := strings.ToLower(query)
	if cached, ok := c.suggest.Get(key); ok {
		return cached, nil
	}

	var results []models.Anime
	path := "/search/suggest/" + url.PathEscape(query)
	if err := c.do(ctx, call{op: "suggest", method: http.MethodGet, path: path}, &results); err != nil {
		return nil, err
	}
	if results == nil {
		results = []models.Anime{}
	}
	c.suggest.Set(key, results)
	return results, nil
}

// Catalog fetches one filtered page. params are sent as-is; see catalog.Query.Values.
func (c *client) Catalog(ctx context.Context, params url.Values) (*models.CatalogPage, error) {
	encoded := params.Encode()
	if cached, ok := c.catalog.Get(encoded); ok {
		return &cached, nil
	}

	path := "/catalog"
	if encoded != "" {
		path += "?" + encoded
	}

	var page models.CatalogPage
	if err := c.do(ctx, call{op: "catalog", method: http.MethodGet, path: path}, &page); err != nil {
		return nil, err
	}
	c.catalog.Set(encoded, page)
	return &page, nil
}

// AnimeDetail resolves an anime by name. The backend reports unknown names either
// with 404 or with a 200 body carrying "error"; both become ErrNotFound.
func (c *client) AnimeDetail(ctx context.Context, name string) (*models.AnimeDetail, error) {
	if cached, ok := c.anime.Get(name); ok {
		return &cached, nil
	}

	var detail models.AnimeDetail
	err := c.do(ctx, call{op: "anime", method: http.MethodGet, path: "/anime/" + url.PathEscape(name)}, &detail)
	if errors.Is(err, &apperrors.ErrNotFound{}) {
		return nil, apperrors.NewAnimeNotFoundError(name)
	}
	if err != nil {
		return nil, err
	}
	if detail.Error != "" {
		return nil, apperrors.NewAnimeNotFoundError(name)
	}

	c.anime.Set(name, detail)
	return &detail, nil
}

// Stream resolves the playable URL of one episode. Stream links expire upstream and are not cached.
func (c *client) Stream(ctx context.Context, name string, episode int) (*models.StreamLink, error) {
	if episode < 1 {
		return nil, fmt.Errorf("invalid episode %d", episode)
	}

	path := "/watch/" + url.PathEscape(name) + "/" + strconv.Itoa(episode)
	var link models.StreamLink
	if err := c.do(ctx, call{op: "watch", method: http.MethodGet, path: path}, &link); err != nil {
		return nil, err
	}
	return &link, nil
}
