package views

import (
	"html/template"

	"github.com/eringen/pressfront/listing"
	"github.com/eringen/pressfront/seo"
)

// Page carries what every page needs in its <head> and chrome.
type Page struct {
	Site   seo.Site
	Meta   seo.Meta
	JSONLD []string
	Path   string
	// CSRF is the token for the newsletter form.
	CSRF  string
	Flash string
}

// Badge is a category pill.
type Badge struct {
	Title   string
	URL     string
	Classes string
}

// Card is a post as shown in lists.
type Card struct {
	Title       string
	URL         string
	Excerpt     string
	ImageURL    string
	ImageAlt    string
	Date        string
	DateTime    string
	ReadingTime int
	Featured    bool
	Categories  []Badge
	Tags        []string
}

// HomePage is the landing page.
type HomePage struct {
	Page
	Featured []Card
	Recent   []Card
}

// BlogPage is the paginated index of all posts.
type BlogPage struct {
	Page
	Posts      []Card
	Categories []CategorySummary
	PostCount  int
	Pager      listing.Pager
}

// ListingPage is a paginated list filtered by category, tag or author.
type ListingPage struct {
	Page
	Heading     string
	Description string
	Badge       *Badge
	Posts       []Card
	Pager       listing.Pager
	Empty       string
}

// CategorySummary is a category with its published post count.
type CategorySummary struct {
	Badge
	Description string
	PostCount   int
}

// CategoriesPage lists every category.
type CategoriesPage struct {
	Page
	Categories []CategorySummary
}

// PostPage is a single article.
type PostPage struct {
	Page
	Post     Card
	Author   string
	Body     template.HTML
	ShareURL string
	Related  []Card
}

// SearchPage shows results for a query. NoQuery is set when the query was
// too short to run.
type SearchPage struct {
	Page
	Query   string
	NoQuery bool
	Results []Card
}

// ErrorPage backs the 404 and 500 pages.
type ErrorPage struct {
	Page
	Status  int
	Message string
}
