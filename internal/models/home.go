package models

// MediaList wraps a bucket of anime as the backend nests it ({"media": [...]})
type MediaList struct {
	Media []Anime `json:"media"`
}

// HomeData holds the named buckets of the home feed. Missing buckets decode as empty.
type HomeData struct {
	Trending MediaList `json:"trending"`
	Popular  MediaList `json:"popular"`
	Action   MediaList `json:"action"`
	Romance  MediaList `json:"romance"`
	Horror   MediaList `json:"horror"`
	Sports   MediaList `json:"sports"`
}

// HomeRow is one labelled row of the home page
type HomeRow struct {
	Key   string
	Label string
	Media []Anime
}

// Hero returns the featured anime (first trending entry), or nil when there is none
func (h HomeData) Hero() *Anime {
	if len(h.Trending.Media) == 0 {
		return nil
	}
	hero := h.Trending.Media[0]
	return &hero
}

// Rows returns the buckets in display order
func (h HomeData) Rows() []HomeRow {
	return []HomeRow{
		{Key: "trending", Label: "Trending Now", Media: h.Trending.Media},
		{Key: "popular", Label: "Most Popular", Media: h.Popular.Media},
		{Key: "action", Label: "Action & Adventure", Media: h.Action.Media},
		{Key: "romance", Label: "Romance", Media: h.Romance.Media},
		{Key: "horror", Label: "Horror & Suspense", Media: h.Horror.Media},
		{Key: "sports", Label: "Sports", Media: h.Sports.Media},
	}
}

// Empty reports whether every bucket is empty
func (h HomeData) Empty() bool {
	for _, row := range h.Rows() {
		if len(row.Media) > 0 {
			return false
		}
	}
	return true
}
