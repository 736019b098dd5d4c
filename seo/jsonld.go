package seo

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/eringen/pressfront/content"
	"github.com/eringen/pressfront/imageurl"
)

// WebsiteJSONLD returns a Schema.org WebSite object for the site, including
// a search action pointing at /search.
func WebsiteJSONLD(site Site) string {
	data := map[string]interface{}{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     site.Name,
		"url":      site.Abs(),
		"potentialAction": map[string]string{
			"@type":       "SearchAction",
			"target":      site.Abs("search") + "?q={search_term_string}",
			"query-input": "required name=search_term_string",
		},
	}
	if site.Description != "" {
		data["description"] = site.Description
	}
	if site.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  site.Author,
		}
	}
	return marshal(data)
}

// BlogPostingJSONLD returns a Schema.org BlogPosting object for p.
func BlogPostingJSONLD(p content.Post, site Site, images *imageurl.Builder) string {
	m := ForPost(p, site, images)
	postURL := m.Canonical
	data := map[string]interface{}{
		"@context":    "https://schema.org",
		"@type":       "BlogPosting",
		"headline":    p.Title,
		"description": m.Description,
		"url":         postURL,
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   postURL,
		},
		"publisher": map[string]string{
			"@type": "Organization",
			"name":  site.Name,
		},
	}
	if !p.PublishedAt.IsZero() {
		data["datePublished"] = p.PublishedAt.UTC().Format(time.RFC3339)
	}
	if !p.UpdatedAt.IsZero() {
		data["dateModified"] = p.UpdatedAt.UTC().Format(time.RFC3339)
	}
	author := site.Author
	if p.Author != nil && p.Author.Name != "" {
		author = p.Author.Name
	}
	if author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  author,
		}
	}
	if len(m.OpenGraph.Images) > 0 {
		data["image"] = m.OpenGraph.Images[0].URL
	}
	if len(p.Tags) > 0 {
		data["keywords"] = strings.Join(p.Tags, ", ")
	}
	if n := p.ReadingTime(); n > 0 {
		data["timeRequired"] = "PT" + strconv.Itoa(n) + "M"
	}
	return marshal(data)
}

func marshal(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}
