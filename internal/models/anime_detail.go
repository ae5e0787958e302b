package models

// Relation types that belong to the same franchise timeline ("seasons")
const (
	RelationPrequel = "PREQUEL"
	RelationSequel  = "SEQUEL"
	RelationParent  = "PARENT"
)

// Relation is an anime linked to another one (prequel, sequel, side story...)
type Relation struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Format string `json:"format,omitempty"`
	Cover  string `json:"cover,omitempty"`
}

// IsSeason reports whether the relation is part of the main timeline
func (r Relation) IsSeason() bool {
	switch r.Type {
	case RelationPrequel, RelationSequel, RelationParent:
		return true
	default:
		return false
	}
}

// AnimeDetail is the flattened anime returned by /anime/{name}
type AnimeDetail struct {
	ID          int        `json:"id"`
	Title       string     `json:"title"`
	Cover       string     `json:"cover"`
	Banner      string     `json:"banner,omitempty"`
	Description string     `json:"description"`
	Score       int        `json:"score"`
	Episodes    int        `json:"episodes"`
	Status      string     `json:"status"`
	Year        int        `json:"year,omitempty"`
	Genres      []string   `json:"genres,omitempty"`
	Studio      string     `json:"studio,omitempty"`
	Relations   []Relation `json:"relations,omitempty"`
	Format      string     `json:"format,omitempty"`

	// Error is set by the backend instead of a 404 when the lookup fails
	Error string `json:"error,omitempty"`
}

// FormatOrDefault returns the format, defaulting to "TV"
func (a AnimeDetail) FormatOrDefault() string {
	return formatOrDefault(a.Format)
}

// BannerOrCover returns the banner image, falling back to the cover
func (a AnimeDetail) BannerOrCover() string {
	return firstNonEmpty(a.Banner, a.Cover)
}

// Seasons returns prequels, sequels and parents
func (a AnimeDetail) Seasons() []Relation {
	out := make([]Relation, 0, len(a.Relations))
	for _, r := range a.Relations {
		if r.IsSeason() {
			out = append(out, r)
		}
	}
	return out
}

// Related returns every relation that is not a season
func (a AnimeDetail) Related() []Relation {
	out := make([]Relation, 0, len(a.Relations))
	for _, r := range a.Relations {
		if !r.IsSeason() {
			out = append(out, r)
		}
	}
	return out
}

// MaxEpisodes caps the episode picker whatever count the backend reports.
const MaxEpisodes = 3000

// EpisodeNumbers lists the selectable episodes, at most MaxEpisodes of them.
// Unknown counts yield a single episode.
func (a AnimeDetail) EpisodeNumbers() []int {
	n := min(max(a.Episodes, 1), MaxEpisodes)
	eps := make([]int, n)
	for i := range eps {
		eps[i] = i + 1
	}
	return eps
}

// ListItem builds the favorite/watchlist payload for this anime
func (a AnimeDetail) ListItem() ListItem {
	return ListItem{
		AnimeID: a.ID,
		Title:   a.Title,
		Cover:   a.Cover,
		Format:  a.FormatOrDefault(),
	}
}

// HistoryEntry builds the watch-history payload for the given episode
func (a AnimeDetail) HistoryEntry(episode int) HistoryEntry {
	return HistoryEntry{
		AnimeID: a.ID,
		Title:   a.Title,
		Cover:   a.Cover,
		Episode: episode,
	}
}
