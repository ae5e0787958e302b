// Package catalog holds the catalog filter vocabulary and turns browser query
// strings into backend /catalog parameters.
package catalog

import (
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// All is the filter value meaning "no restriction"; it is never sent to the backend.
const All = "All"

// DefaultSort is used when no valid sort is given.
const DefaultSort = "POPULARITY_DESC"

// Genres lists the genre filter options in display order.
var Genres = []string{
	All, "Action", "Adventure", "Comedy", "Drama", "Fantasy", "Horror", "Mecha",
	"Mystery", "Romance", "Sci-Fi", "Slice of Life", "Sports", "Supernatural",
}

// Formats lists the format filter options in display order.
var Formats = []string{All, "TV", "MOVIE", "OVA", "SPECIAL"}

// Option is a sort choice with its label.
type Option struct {
	Value string
	Label string
}

// Sorts lists the sort options in display order.
var Sorts = []Option{
	{Value: "POPULARITY_DESC", Label: "Most Popular"},
	{Value: "TRENDING_DESC", Label: "Trending"},
	{Value: "SCORE_DESC", Label: "Highest Rated"},
	{Value: "START_DATE_DESC", Label: "Newest"},
	{Value: "TITLE_ROMAJI", Label: "A-Z"},
}

// Query is the state of the catalog filters.
type Query struct {
	Genre  string
	Format string
	Sort   string
	Page   int
}

// DefaultQuery is the catalog as first opened.
func DefaultQuery() Query {
	return Query{Genre: All, Format: All, Sort: DefaultSort, Page: 1}
}

// ParseQuery reads the filters from browser query values. Unknown values fall
// back to their defaults and pages below 1 become 1.
func ParseQuery(values url.Values) Query {
	q := DefaultQuery()

	if g := values.Get("genre"); g != "" {
		if i := slices.IndexFunc(Genres, func(v string) bool { return strings.EqualFold(v, g) }); i >= 0 {
			q.Genre = Genres[i]
		}
	}
	if f := strings.ToUpper(values.Get("format")); slices.Contains(Formats, f) {
		q.Format = f
	}
	if s := strings.ToUpper(values.Get("sort")); IsSort(s) {
		q.Sort = s
	}
	if p, err := strconv.Atoi(values.Get("page")); err == nil && p > 1 {
		q.Page = p
	}
	return q
}

// IsSort reports whether s is one of Sorts.
func IsSort(s string) bool {
	return slices.ContainsFunc(Sorts, func(o Option) bool { return o.Value == s })
}

// Values returns the backend request parameters: page and sort always, genre and
// format only when they restrict the listing.
func (q Query) Values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(max(q.Page, 1)))
	v.Set("sort", q.sortOrDefault())
	if q.Genre != "" && q.Genre != All {
		v.Set("genre", q.Genre)
	}
	if q.Format != "" && q.Format != All {
		v.Set("format", q.Format)
	}
	return v
}

// URL returns the browser link to this state of the catalog.
func (q Query) URL() string {
	return "/catalog?" + q.Values().Encode()
}

// WithGenre changes the genre and goes back to the first page.
func (q Query) WithGenre(genre string) Query {
	q.Genre = genre
	q.Page = 1
	return q
}

// WithFormat changes the format and goes back to the first page.
func (q Query) WithFormat(format string) Query {
	q.Format = format
	q.Page = 1
	return q
}

// WithSort changes the sort order and goes back to the first page.
func (q Query) WithSort(sort string) Query {
	q.Sort = sort
	q.Page = 1
	return q
}

// WithPage moves to page, keeping the filters.
func (q Query) WithPage(page int) Query {
	q.Page = max(page, 1)
	return q
}

func (q Query) sortOrDefault() string {
	if q.Sort == "" {
		return DefaultSort
	}
	return q.Sort
}

// JumpTarget parses a jump-to-page input. It accepts only integers within [1, lastPage].
func JumpTarget(input string, lastPage int) (int, bool) {
	page, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || page < 1 || page > lastPage {
		return 0, false
	}
	return page, true
}
