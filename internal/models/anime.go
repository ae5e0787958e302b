package models

import (
	"net/url"
	"strings"
)

// Title holds the localized names of an anime
type Title struct {
	Romaji  string `json:"romaji"`
	English string `json:"english,omitempty"`
	Native  string `json:"native,omitempty"`
}

// DisplayTitle returns the romaji title, falling back to English then native
func (t Title) DisplayTitle() string {
	switch {
	case t.Romaji != "":
		return t.Romaji
	case t.English != "":
		return t.English
	default:
		return t.Native
	}
}

// CoverImage holds the cover art in the resolutions the backend provides
type CoverImage struct {
	ExtraLarge string `json:"extraLarge,omitempty"`
	Large      string `json:"large,omitempty"`
	Medium     string `json:"medium,omitempty"`
}

// Trailer references a promotional video hosted on a third-party site
type Trailer struct {
	ID        string `json:"id"`
	Site      string `json:"site"`
	Thumbnail string `json:"thumbnail,omitempty"`
}

// URL returns the watch page of the trailer, or "" for sites we cannot link
func (t Trailer) URL() string {
	if t.ID == "" {
		return ""
	}
	switch strings.ToLower(t.Site) {
	case "youtube":
		return "https://www.youtube.com/watch?v=" + url.QueryEscape(t.ID)
	case "dailymotion":
		return "https://www.dailymotion.com/video/" + url.PathEscape(t.ID)
	default:
		return ""
	}
}

// Anime is the card-shaped entry returned by /home, /catalog and /search/suggest
type Anime struct {
	ID           int        `json:"id"`
	Title        Title      `json:"title"`
	CoverImage   CoverImage `json:"coverImage"`
	BannerImage  string     `json:"bannerImage,omitempty"`
	Description  string     `json:"description,omitempty"`
	AverageScore int        `json:"averageScore,omitempty"`
	Genres       []string   `json:"genres,omitempty"`
	SeasonYear   int        `json:"seasonYear,omitempty"`
	Episodes     int        `json:"episodes,omitempty"`
	Format       string     `json:"format,omitempty"`
	Status       string     `json:"status,omitempty"`
	Trailer      *Trailer   `json:"trailer,omitempty"`
}

// Cover returns the best available cover, preferring the largest resolution
func (a Anime) Cover() string {
	return firstNonEmpty(a.CoverImage.ExtraLarge, a.CoverImage.Large, a.CoverImage.Medium)
}

// CardCover returns the cover used by thumbnail rows (large, then medium)
func (a Anime) CardCover() string {
	return firstNonEmpty(a.CoverImage.Large, a.CoverImage.Medium, a.CoverImage.ExtraLarge)
}

// Banner returns the banner image, falling back to the cover
func (a Anime) Banner() string {
	return firstNonEmpty(a.BannerImage, a.Cover())
}

// TrailerURL returns the trailer link when the backend sent a linkable one
func (a Anime) TrailerURL() string {
	if a.Trailer == nil {
		return ""
	}
	return a.Trailer.URL()
}

// FormatOrDefault returns the format, defaulting to "TV" like the backend does
func (a Anime) FormatOrDefault() string {
	return formatOrDefault(a.Format)
}

func formatOrDefault(format string) string {
	if format == "" {
		return DefaultFormat
	}
	return format
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
