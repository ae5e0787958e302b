package models

// DefaultFormat is the format assumed when the backend does not provide one
const DefaultFormat = "TV"

// ListItem is a favorite or watchlist entry
type ListItem struct {
	AnimeID int    `json:"anime_id"`
	Title   string `json:"title"`
	Cover   string `json:"cover"`
	Format  string `json:"format"`
}

// FormatOrDefault returns the format, defaulting to "TV"
func (l ListItem) FormatOrDefault() string {
	return formatOrDefault(l.Format)
}

// HistoryEntry records the last watched episode of an anime
type HistoryEntry struct {
	AnimeID int    `json:"anime_id"`
	Title   string `json:"title"`
	Cover   string `json:"cover"`
	Episode int    `json:"episode"`
}

// ContainsAnime reports whether items holds an entry for animeID
func ContainsAnime(items []ListItem, animeID int) bool {
	for _, item := range items {
		if item.AnimeID == animeID {
			return true
		}
	}
	return false
}
