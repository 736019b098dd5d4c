// Package content defines the documents read from the CMS, the fixed catalog
// of queries run against it and a typed repository over any Fetcher.
package content

import (
	"strings"
	"time"

	"github.com/eringen/pressfront/imageurl"
	"github.com/eringen/pressfront/richtext"
)

// DraftPrefix marks unpublished document IDs.
const DraftPrefix = "drafts."

// Document holds the fields shared by every CMS record.
type Document struct {
	ID        string    `json:"_id"`
	CreatedAt time.Time `json:"_createdAt"`
	UpdatedAt time.Time `json:"_updatedAt"`
}

// IsDraft reports whether the document ID is a draft ID.
func (d Document) IsDraft() bool {
	return strings.HasPrefix(d.ID, DraftPrefix)
}

// Slug is the routing key of a document.
type Slug struct {
	Current string `json:"current"`
}

// Defined reports whether the slug is set.
func (s Slug) Defined() bool {
	return strings.TrimSpace(s.Current) != ""
}

// CategoryRef is a category as embedded in a post.
type CategoryRef struct {
	ID    string `json:"_id"`
	Title string `json:"title"`
	Slug  Slug   `json:"slug"`
	Color string `json:"color,omitempty"`
}

// AuthorRef is the author embedded in a post.
type AuthorRef struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
	Slug Slug   `json:"slug"`
}

// SEO holds optional per-post overrides.
type SEO struct {
	MetaTitle       string `json:"metaTitle,omitempty"`
	MetaDescription string `json:"metaDescription,omitempty"`
}

// Post is an article.
type Post struct {
	Document
	Title                string          `json:"title"`
	Slug                 Slug            `json:"slug"`
	Excerpt              string          `json:"excerpt,omitempty"`
	MainImage            *imageurl.Image `json:"mainImage,omitempty"`
	Categories           []CategoryRef   `json:"categories,omitempty"`
	Tags                 []string        `json:"tags,omitempty"`
	Author               *AuthorRef      `json:"author,omitempty"`
	PublishedAt          time.Time       `json:"publishedAt"`
	EstimatedReadingTime int             `json:"estimatedReadingTime,omitempty"`
	Featured             bool            `json:"featured,omitempty"`
	Body                 richtext.Body   `json:"body,omitempty"`
	SEO                  *SEO            `json:"seo,omitempty"`
}

// Published reports whether the post is visible at now: not a draft, with a
// slug, and a publish time that is not in the future.
func (p Post) Published(now time.Time) bool {
	return !p.IsDraft() && p.Slug.Defined() && !p.PublishedAt.IsZero() && !p.PublishedAt.After(now)
}

// ReadingTime returns the stored estimate, or one derived from the body.
func (p Post) ReadingTime() int {
	if p.EstimatedReadingTime > 0 {
		return p.EstimatedReadingTime
	}
	return richtext.ReadingTime(p.Body)
}

// CategoryIDs returns the IDs of the post's categories.
func (p Post) CategoryIDs() []string {
	ids := make([]string, 0, len(p.Categories))
	for _, c := range p.Categories {
		if c.ID != "" {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

// Category groups posts.
type Category struct {
	Document
	Title       string `json:"title"`
	Slug        Slug   `json:"slug"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
	PostCount   int    `json:"postCount,omitempty"`
}

// Ref returns the category as embedded in posts.
func (c Category) Ref() CategoryRef {
	return CategoryRef{ID: c.ID, Title: c.Title, Slug: c.Slug, Color: c.Color}
}

// SitemapPost is the sitemap projection of a post.
type SitemapPost struct {
	Slug        string    `json:"slug"`
	PublishedAt time.Time `json:"publishedAt"`
	UpdatedAt   time.Time `json:"_updatedAt"`
}

// LastModified is the update time, falling back to the publish time.
func (p SitemapPost) LastModified() time.Time {
	if !p.UpdatedAt.IsZero() {
		return p.UpdatedAt
	}
	return p.PublishedAt
}

// SitemapCategory is the sitemap projection of a category.
type SitemapCategory struct {
	Slug      string    `json:"slug"`
	UpdatedAt time.Time `json:"_updatedAt"`
}

// SitemapData aggregates everything the sitemap lists.
type SitemapData struct {
	Posts      []SitemapPost     `json:"posts"`
	Categories []SitemapCategory `json:"categories"`
}

// Counts holds totals of published posts and categories.
type Counts struct {
	Posts      int `json:"posts"`
	Categories int `json:"categories"`
}

// Range is a half-open index range [Start, End).
type Range struct {
	Start int
	End   int
}

// Len returns the number of items the range covers.
func (r Range) Len() int {
	if r.End <= r.Start {
		return 0
	}
	return r.End - r.Start
}
