package testutil

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/anihub/anihub-web/internal/models"
)

// StringPtr is a helper for creating *string values in tests
func StringPtr(v string) *string {
	return &v
}

// AnimeOptions contains options for generating an anime card
type AnimeOptions struct {
	ID      int
	Romaji  string
	English string
	Format  string
	Genres  []string
	Score   int
}

// Anime builds a catalog/home card with predictable cover URLs
func Anime(opts AnimeOptions) models.Anime {
	if opts.Romaji == "" {
		opts.Romaji = fmt.Sprintf("Anime %d", opts.ID)
	}
	return models.Anime{
		ID:    opts.ID,
		Title: models.Title{Romaji: opts.Romaji, English: opts.English},
		CoverImage: models.CoverImage{
			Large:  fmt.Sprintf("https://img.example/%d/large.jpg", opts.ID),
			Medium: fmt.Sprintf("https://img.example/%d/medium.jpg", opts.ID),
		},
		Description:  "<p>Description of " + opts.Romaji + "<br>with a break.</p>",
		AverageScore: opts.Score,
		Genres:       opts.Genres,
		Format:       opts.Format,
		Status:       "FINISHED",
	}
}

// AnimeList builds n cards with ids starting at firstID
func AnimeList(firstID, n int) []models.Anime {
	list := make([]models.Anime, 0, n)
	for i := 0; i < n; i++ {
		list = append(list, Anime(AnimeOptions{ID: firstID + i, Format: "TV", Score: 70 + i%30}))
	}
	return list
}

// HomeData builds a home feed with n entries in every bucket
func HomeData(n int) models.HomeData {
	return models.HomeData{
		Trending: models.MediaList{Media: AnimeList(100, n)},
		Popular:  models.MediaList{Media: AnimeList(200, n)},
		Action:   models.MediaList{Media: AnimeList(300, n)},
		Romance:  models.MediaList{Media: AnimeList(400, n)},
		Horror:   models.MediaList{Media: AnimeList(500, n)},
		Sports:   models.MediaList{Media: AnimeList(600, n)},
	}
}

// CatalogPage builds one catalog page of n entries
func CatalogPage(n, currentPage, lastPage int) models.CatalogPage {
	return models.CatalogPage{
		Media: AnimeList(1000+currentPage*100, n),
		PageInfo: &models.PageInfo{
			Total:       lastPage * 20,
			CurrentPage: currentPage,
			LastPage:    lastPage,
			HasNextPage: currentPage < lastPage,
		},
	}
}

// AnimeDetail builds a detail record with a sequel and a spin-off relation
func AnimeDetail(id int, title string, episodes int) models.AnimeDetail {
	return models.AnimeDetail{
		ID:          id,
		Title:       title,
		Cover:       fmt.Sprintf("https://img.example/%d/cover.jpg", id),
		Banner:      fmt.Sprintf("https://img.example/%d/banner.jpg", id),
		Description: "<p>" + title + " <b>story</b></p><script>alert(1)</script>",
		Score:       81,
		Episodes:    episodes,
		Status:      "FINISHED",
		Year:        2020,
		Genres:      []string{"Action", "Drama"},
		Studio:      "Studio Example",
		Relations: []models.Relation{
			{Type: "SEQUEL", Title: title + " Season 2", Format: "TV", Cover: "https://img.example/seq.jpg"},
			{Type: "SPIN_OFF", Title: title + " Picture Drama", Format: "SPECIAL", Cover: "https://img.example/spin.jpg"},
		},
	}
}

// Token signs a JWT for username expiring at exp. The signing key is irrelevant:
// the frontend only reads the expiry.
func Token(username string, exp time.Time) string {
	claims := jwt.RegisteredClaims{
		Subject:   username,
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		panic(err)
	}
	return signed
}
