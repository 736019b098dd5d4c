// Package seo builds page metadata and structured data for posts, categories
// and plain site pages.
package seo

import (
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/eringen/pressfront/content"
	"github.com/eringen/pressfront/imageurl"
	"github.com/eringen/pressfront/richtext"
)

// Site is the site-wide identity used as a fallback everywhere.
type Site struct {
	Name        string
	URL         string
	Description string
	Author      string
	// Image is an absolute or site-relative default social image.
	Image string
}

// Meta is everything rendered into a page <head>.
type Meta struct {
	Title       string
	Description string
	Canonical   string
	OpenGraph   OpenGraph
	Twitter     Twitter
}

// OpenGraph holds the og:* properties of a page.
type OpenGraph struct {
	Title         string
	Description   string
	Type          string
	URL           string
	SiteName      string
	PublishedTime string
	Tags          []string
	Images        []OGImage
}

// OGImage is one og:image with its dimensions.
type OGImage struct {
	URL    string
	Width  int
	Height int
	Alt    string
}

// Twitter holds the twitter:* card properties.
type Twitter struct {
	Card        string
	Title       string
	Description string
	Images      []string
}

const summaryLargeImage = "summary_large_image"

// Abs joins path segments onto the site URL.
func (s Site) Abs(segments ...string) string {
	return BuildURL(s.URL, segments...)
}

// BuildURL joins path segments onto base. Unlike a plain path.Join it keeps
// the scheme and host of base intact.
func BuildURL(base string, segments ...string) string {
	u, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil {
		return base
	}
	u.Path = path.Join("/", u.Path, path.Join(segments...))
	if len(segments) == 0 {
		u.Path = strings.TrimSuffix(u.Path, "/")
		if u.Path == "" {
			u.Path = "/"
		}
	}
	return u.String()
}

// PageTitle suffixes title with the site name. An empty title yields the
// site name alone.
func PageTitle(title string, site Site) string {
	if title == "" {
		return site.Name
	}
	if site.Name == "" {
		return title
	}
	return title + " | " + site.Name
}

// ForPost builds metadata for an article page. SEO overrides win over the
// post's own title and excerpt; with neither, the description is an excerpt
// of the body.
func ForPost(p content.Post, site Site, images *imageurl.Builder) Meta {
	title := p.Title
	description := p.Excerpt
	if p.SEO != nil {
		if p.SEO.MetaTitle != "" {
			title = p.SEO.MetaTitle
		}
		if p.SEO.MetaDescription != "" {
			description = p.SEO.MetaDescription
		}
	}
	if description == "" {
		description = richtext.Excerpt(p.Body, richtext.DefaultExcerptLength)
	}

	canonical := site.Abs("blog", p.Slug.Current)
	m := Meta{
		Title:       PageTitle(title, site),
		Description: description,
		Canonical:   canonical,
		OpenGraph: OpenGraph{
			Title:       title,
			Description: description,
			Type:        "article",
			URL:         canonical,
			SiteName:    site.Name,
			Tags:        p.Tags,
		},
		Twitter: Twitter{
			Card:        summaryLargeImage,
			Title:       title,
			Description: description,
		},
	}
	if !p.PublishedAt.IsZero() {
		m.OpenGraph.PublishedTime = p.PublishedAt.UTC().Format(time.RFC3339)
	}

	if images != nil && p.MainImage != nil {
		if u, ok := images.URL(*p.MainImage, imageurl.SocialWidth, imageurl.SocialHeight); ok {
			alt := p.MainImage.Alt
			if alt == "" {
				alt = p.Title
			}
			m.OpenGraph.Images = []OGImage{{URL: u, Width: imageurl.SocialWidth, Height: imageurl.SocialHeight, Alt: alt}}
			m.Twitter.Images = []string{u}
		}
	}
	if len(m.OpenGraph.Images) == 0 {
		m.withDefaultImage(site, title)
	}
	return m
}

// ForPage builds metadata for a website page at path.
func ForPage(title, description, pagePath string, site Site) Meta {
	if description == "" {
		description = site.Description
	}
	ogTitle := title
	if ogTitle == "" {
		ogTitle = site.Name
	}
	canonical := site.Abs(pagePath)
	m := Meta{
		Title:       PageTitle(title, site),
		Description: description,
		Canonical:   canonical,
		OpenGraph: OpenGraph{
			Title:       ogTitle,
			Description: description,
			Type:        "website",
			URL:         canonical,
			SiteName:    site.Name,
		},
		Twitter: Twitter{
			Card:        summaryLargeImage,
			Title:       ogTitle,
			Description: description,
		},
	}
	m.withDefaultImage(site, ogTitle)
	return m
}

// ForCategory builds metadata for a category listing.
func ForCategory(c content.Category, site Site) Meta {
	description := c.Description
	if description == "" {
		description = "Browse all articles in the " + c.Title + " category."
	}
	return ForPage(c.Title, description, path.Join("categories", c.Slug.Current), site)
}

func (m *Meta) withDefaultImage(site Site, alt string) {
	if site.Image == "" {
		return
	}
	u := site.Image
	if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		u = site.Abs(u)
	}
	m.OpenGraph.Images = []OGImage{{URL: u, Width: imageurl.SocialWidth, Height: imageurl.SocialHeight, Alt: alt}}
	m.Twitter.Images = []string{u}
}
