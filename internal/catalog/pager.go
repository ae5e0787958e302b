package catalog

// Pager describes the pagination controls under the grid.
type Pager struct {
	Current  int
	Last     int
	Prev     string // empty on the first page
	Next     string // empty on the last page
	Pages    []PageLink
	JumpBase Query
}

// PageLink is one numbered page button. Gap marks an ellipsis.
type PageLink struct {
	Number  int
	URL     string
	Current bool
	Gap     bool
}

// pagerWindow is how many pages are shown on each side of the current one.
const pagerWindow = 2

// NewPager builds the controls for q on a catalog with lastPage pages.
func NewPager(q Query, lastPage int) Pager {
	lastPage = max(lastPage, 1)
	current := min(max(q.Page, 1), lastPage)

	p := Pager{Current: current, Last: lastPage, JumpBase: q.WithPage(1)}
	if current > 1 {
		p.Prev = q.WithPage(current - 1).URL()
	}
	if current < lastPage {
		p.Next = q.WithPage(current + 1).URL()
	}

	// First page, the window around the current one, and the last page.
	numbers := []int{1}
	for n := max(current-pagerWindow, 2); n <= min(current+pagerWindow, lastPage-1); n++ {
		numbers = append(numbers, n)
	}
	if lastPage > 1 {
		numbers = append(numbers, lastPage)
	}

	prev := 0
	for _, n := range numbers {
		if prev != 0 && n > prev+1 {
			p.Pages = append(p.Pages, PageLink{Gap: true})
		}
		p.Pages = append(p.Pages, PageLink{Number: n, URL: q.WithPage(n).URL(), Current: n == current})
		prev = n
	}
	return p
}
