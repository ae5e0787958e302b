package models

// PageInfo holds pagination data for a catalog page
type PageInfo struct {
	Total       int  `json:"total"`
	CurrentPage int  `json:"currentPage"`
	LastPage    int  `json:"lastPage"`
	HasNextPage bool `json:"hasNextPage"`
}

// CatalogPage is one page of the filterable catalog
type CatalogPage struct {
	Media    []Anime   `json:"media"`
	PageInfo *PageInfo `json:"pageInfo,omitempty"`
}

// LastPage returns the last page number, defaulting to 1 when unknown
func (p CatalogPage) LastPage() int {
	if p.PageInfo == nil || p.PageInfo.LastPage < 1 {
		return 1
	}
	return p.PageInfo.LastPage
}

// Empty reports whether the page has no results
func (p CatalogPage) Empty() bool {
	return len(p.Media) == 0
}
