package urlstate

// Ellipsis markers in a page list.
const (
	EllipsisStart = -1
	EllipsisEnd   = -2
)

// MaxPagesShown is the largest page count rendered without ellipses.
const MaxPagesShown = 5

// Pages returns the page links to render for current out of total.
//
// Up to MaxPagesShown pages are all listed. Beyond that the list is the first
// page, a three page window around current, the last page, and an ellipsis
// marker wherever pages are skipped. The window is shifted right on the first
// two pages and left on the last two, so it always holds three pages.
func Pages(current, total int) []int {
	if total < 1 {
		return nil
	}
	current = min(max(current, 1), total)

	if total <= MaxPagesShown {
		out := make([]int, total)
		for i := range out {
			out[i] = i + 1
		}
		return out
	}

	ws, we := current-1, current+1
	if ws < 1 {
		ws, we = 1, 3
	}
	if we > total {
		ws, we = total-2, total
	}
	start, end := max(ws, 2), min(we, total-1)

	out := []int{1}
	if start > 2 {
		out = append(out, EllipsisStart)
	}
	for p := start; p <= end; p++ {
		out = append(out, p)
	}
	if end < total-1 {
		out = append(out, EllipsisEnd)
	}
	return append(out, total)
}

// PageLink is one rendered pagination item.
type PageLink struct {
	URL      string
	Page     int
	Current  bool
	Ellipsis bool
}

// Links resolves Pages into URLs relative to the current query string.
func Links(f Filter, total int) []PageLink {
	values := f.Values()
	pages := Pages(f.Page, total)
	links := make([]PageLink, 0, len(pages))
	for _, p := range pages {
		if p < 0 {
			links = append(links, PageLink{Page: p, Ellipsis: true})
			continue
		}
		links = append(links, PageLink{
			Page:    p,
			URL:     PageURL(values, p),
			Current: p == f.Page,
		})
	}
	return links
}
