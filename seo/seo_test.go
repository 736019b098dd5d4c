package seo

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/eringen/pressfront/content"
	"github.com/eringen/pressfront/imageurl"
	"github.com/eringen/pressfront/richtext"
)

var testSite = Site{
	Name:        "Test Blog",
	URL:         "https://example.com/",
	Description: "A blog for tests.",
	Author:      "Jane",
}

func body(t *testing.T, raw string) richtext.Body {
	t.Helper()
	var b richtext.Body
	if err := json.Unmarshal([]byte(raw), &b); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	return b
}

func TestBuildURL(t *testing.T) {
	tests := []struct {
		base string
		segs []string
		want string
	}{
		{"https://example.com", nil, "https://example.com/"},
		{"https://example.com/", []string{"blog", "hello"}, "https://example.com/blog/hello"},
		{"https://example.com/sub/", []string{"/categories/"}, "https://example.com/sub/categories"},
		{"http://localhost:3000", []string{"/"}, "http://localhost:3000/"},
	}
	for _, tt := range tests {
		if got := BuildURL(tt.base, tt.segs...); got != tt.want {
			t.Errorf("BuildURL(%q, %v) = %q, want %q", tt.base, tt.segs, got, tt.want)
		}
	}
}

func TestForPostUsesOverrides(t *testing.T) {
	p := content.Post{
		Title:   "Original",
		Slug:    content.Slug{Current: "original"},
		Excerpt: "post excerpt",
		SEO:     &content.SEO{MetaTitle: "Better Title", MetaDescription: "Better description"},
	}
	m := ForPost(p, testSite, nil)
	if m.Title != "Better Title | Test Blog" {
		t.Errorf("Title = %q", m.Title)
	}
	if m.Description != "Better description" || m.OpenGraph.Description != "Better description" {
		t.Errorf("Description = %q / %q", m.Description, m.OpenGraph.Description)
	}
	if m.OpenGraph.Title != "Better Title" || m.Twitter.Title != "Better Title" {
		t.Errorf("og/twitter title = %q / %q", m.OpenGraph.Title, m.Twitter.Title)
	}
	if m.Canonical != "https://example.com/blog/original" {
		t.Errorf("Canonical = %q", m.Canonical)
	}
}

func TestForPostDescriptionFallbacks(t *testing.T) {
	p := content.Post{Title: "T", Slug: content.Slug{Current: "t"}, Excerpt: "from excerpt"}
	if got := ForPost(p, testSite, nil).Description; got != "from excerpt" {
		t.Errorf("excerpt fallback = %q", got)
	}

	p.Excerpt = ""
	p.Body = body(t, `[{"_type":"block","children":[{"_type":"span","text":"From the body."}]}]`)
	if got := ForPost(p, testSite, nil).Description; got != "From the body." {
		t.Errorf("body fallback = %q", got)
	}
}

func TestForPostArticleFields(t *testing.T) {
	published := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	p := content.Post{
		Title:       "Yoga Basics",
		Slug:        content.Slug{Current: "yoga-basics"},
		Tags:        []string{"yoga", "mobility"},
		PublishedAt: published,
		MainImage: &imageurl.Image{
			Asset: &imageurl.Asset{ID: "image-abc123-2000x1000-jpg"},
		},
	}
	images := imageurl.NewBuilder("proj", "production")
	m := ForPost(p, testSite, images)

	if m.OpenGraph.Type != "article" {
		t.Errorf("og type = %q", m.OpenGraph.Type)
	}
	if m.OpenGraph.PublishedTime != "2024-03-01T09:30:00Z" {
		t.Errorf("published time = %q", m.OpenGraph.PublishedTime)
	}
	if len(m.OpenGraph.Tags) != 2 {
		t.Errorf("tags = %v", m.OpenGraph.Tags)
	}
	if m.Twitter.Card != "summary_large_image" {
		t.Errorf("twitter card = %q", m.Twitter.Card)
	}
	if len(m.OpenGraph.Images) != 1 {
		t.Fatalf("og images = %+v", m.OpenGraph.Images)
	}
	img := m.OpenGraph.Images[0]
	if img.Width != 1200 || img.Height != 630 || img.Alt != "Yoga Basics" {
		t.Errorf("og image = %+v", img)
	}
	if !strings.Contains(img.URL, "w=1200") || !strings.Contains(img.URL, "h=630") {
		t.Errorf("og image url = %q", img.URL)
	}
	if len(m.Twitter.Images) != 1 || m.Twitter.Images[0] != img.URL {
		t.Errorf("twitter images = %v", m.Twitter.Images)
	}
}

func TestForPostWithoutImageUsesSiteDefault(t *testing.T) {
	site := testSite
	site.Image = "/og/default.png"
	m := ForPost(content.Post{Title: "T", Slug: content.Slug{Current: "t"}}, site, imageurl.NewBuilder("p", "d"))
	if len(m.OpenGraph.Images) != 1 || m.OpenGraph.Images[0].URL != "https://example.com/og/default.png" {
		t.Errorf("og images = %+v", m.OpenGraph.Images)
	}

	m = ForPost(content.Post{Title: "T", Slug: content.Slug{Current: "t"}}, testSite, nil)
	if len(m.OpenGraph.Images) != 0 || len(m.Twitter.Images) != 0 {
		t.Errorf("expected no images without a site default, got %+v", m.OpenGraph.Images)
	}
}

func TestForPage(t *testing.T) {
	m := ForPage("", "", "/", testSite)
	if m.Title != "Test Blog" {
		t.Errorf("Title = %q", m.Title)
	}
	if m.Description != testSite.Description {
		t.Errorf("Description = %q", m.Description)
	}
	if m.OpenGraph.Type != "website" || m.Canonical != "https://example.com/" {
		t.Errorf("og = %+v canonical = %q", m.OpenGraph, m.Canonical)
	}
}

func TestForCategoryDescriptionFallback(t *testing.T) {
	c := content.Category{Title: "Yoga", Slug: content.Slug{Current: "yoga"}}
	m := ForCategory(c, testSite)
	if m.Description != "Browse all articles in the Yoga category." {
		t.Errorf("Description = %q", m.Description)
	}
	if m.Title != "Yoga | Test Blog" || m.Canonical != "https://example.com/categories/yoga" {
		t.Errorf("Title = %q Canonical = %q", m.Title, m.Canonical)
	}

	c.Description = "All about yoga."
	if got := ForCategory(c, testSite).Description; got != "All about yoga." {
		t.Errorf("Description = %q", got)
	}
}

func TestBlogPostingJSONLD(t *testing.T) {
	p := content.Post{
		Title:       "Hello <World>",
		Slug:        content.Slug{Current: "hello"},
		Excerpt:     "Intro",
		Tags:        []string{"a", "b"},
		Author:      &content.AuthorRef{Name: "Sam"},
		PublishedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	raw := BlogPostingJSONLD(p, testSite, nil)
	if strings.Contains(raw, "<World>") {
		t.Errorf("angle brackets should be escaped: %s", raw)
	}
	var got map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &got); err != nil {
		t.Fatalf("invalid JSON-LD: %v", err)
	}
	if got["@type"] != "BlogPosting" || got["headline"] != "Hello <World>" {
		t.Errorf("got %v", got)
	}
	if got["url"] != "https://example.com/blog/hello" || got["keywords"] != "a, b" {
		t.Errorf("url/keywords = %v / %v", got["url"], got["keywords"])
	}
	if author, _ := got["author"].(map[string]interface{}); author["name"] != "Sam" {
		t.Errorf("author = %v", got["author"])
	}
	if got["datePublished"] != "2024-01-01T00:00:00Z" {
		t.Errorf("datePublished = %v", got["datePublished"])
	}
}

func TestWebsiteJSONLD(t *testing.T) {
	var got map[string]interface{}
	if err := json.Unmarshal([]byte(WebsiteJSONLD(testSite)), &got); err != nil {
		t.Fatalf("invalid JSON-LD: %v", err)
	}
	if got["@type"] != "WebSite" || got["name"] != "Test Blog" || got["url"] != "https://example.com/" {
		t.Errorf("got %v", got)
	}
	action, _ := got["potentialAction"].(map[string]interface{})
	if action["target"] != "https://example.com/search?q={search_term_string}" {
		t.Errorf("search target = %v", action["target"])
	}
}
