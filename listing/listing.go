// Package listing windows, deduplicates and merges post lists for display.
package listing

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/eringen/pressfront/content"
)

// PageSize is the number of posts on a paginated listing page.
const PageSize = 12

// Window is a 1-based page translated to item indexes. End is inclusive.
type Window struct {
	Page  int
	Size  int
	Start int
	End   int
}

// NewWindow computes the window for page at size. Pages below 1 become 1.
func NewWindow(page, size int) Window {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = PageSize
	}
	start := (page - 1) * size
	return Window{Page: page, Size: size, Start: start, End: start + size - 1}
}

// Range converts the inclusive window to the store's half-open range.
func (w Window) Range() content.Range {
	return content.Range{Start: w.Start, End: w.End + 1}
}

// ParsePage reads a page query value. Anything that is not a positive
// integer yields 1.
func ParsePage(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// HasNextPage infers another page from a full result. When the total is an
// exact multiple of size the next page turns out empty.
func HasNextPage(n, size int) bool {
	return size > 0 && n == size
}

// Dedupe concatenates sets in order, keeping the first post for each slug
// and dropping posts without a slug.
func Dedupe(sets ...[]content.Post) []content.Post {
	total := 0
	for _, s := range sets {
		total += len(s)
	}
	seen := make(map[string]struct{}, total)
	out := make([]content.Post, 0, total)
	for _, s := range sets {
		for _, p := range s {
			if !p.Slug.Defined() {
				continue
			}
			if _, ok := seen[p.Slug.Current]; ok {
				continue
			}
			seen[p.Slug.Current] = struct{}{}
			out = append(out, p)
		}
	}
	return out
}

// MergeSplit dedupes featured and recent together, then splits the result
// back by each post's own Featured flag. Each side is capped at the length
// originally requested, so no post shows up in both sections.
func MergeSplit(featured, recent []content.Post) ([]content.Post, []content.Post) {
	all := Dedupe(featured, recent)
	f := make([]content.Post, 0, len(featured))
	r := make([]content.Post, 0, len(recent))
	for _, p := range all {
		if p.Featured {
			if len(f) < len(featured) {
				f = append(f, p)
			}
			continue
		}
		if len(r) < len(recent) {
			r = append(r, p)
		}
	}
	return f, r
}

// Pager holds the previous/next links for a listing page.
type Pager struct {
	Page    int
	HasPrev bool
	HasNext bool
	PrevURL string
	NextURL string
}

// NewPager builds links under base for a window that returned n posts.
func NewPager(base string, w Window, n int) Pager {
	p := Pager{
		Page:    w.Page,
		HasPrev: w.Page > 1,
		HasNext: HasNextPage(n, w.Size),
	}
	if p.HasPrev {
		p.PrevURL = pageURL(base, w.Page-1)
	}
	if p.HasNext {
		p.NextURL = pageURL(base, w.Page+1)
	}
	return p
}

func pageURL(base string, page int) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.String()
}
