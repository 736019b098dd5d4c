package pressfront

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/pressfront/content"
	"github.com/eringen/pressfront/seo"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

func (a *App) handleSitemap(c echo.Context) error {
	data, err := a.Repo.Sitemap(c.Request().Context())
	if err != nil {
		a.Logger.ErrorContext(c.Request().Context(), "generating sitemap", "err", err)
		return c.String(http.StatusInternalServerError, "Error generating sitemap")
	}
	return renderSitemap(c, a.Config.URL, data)
}

func buildSitemap(base string, data content.SitemapData) sitemapURLSet {
	urls := []sitemapURL{
		{Loc: seo.BuildURL(base), ChangeFreq: "daily", Priority: "1.0"},
		{Loc: seo.BuildURL(base, "blog"), ChangeFreq: "daily", Priority: "0.9"},
		{Loc: seo.BuildURL(base, "categories"), ChangeFreq: "weekly", Priority: "0.8"},
	}
	for _, p := range data.Posts {
		if p.Slug == "" {
			continue
		}
		urls = append(urls, sitemapURL{
			Loc:        seo.BuildURL(base, "blog", p.Slug),
			LastMod:    lastMod(p.LastModified()),
			ChangeFreq: "monthly",
			Priority:   "0.7",
		})
	}
	for _, cat := range data.Categories {
		if cat.Slug == "" {
			continue
		}
		urls = append(urls, sitemapURL{
			Loc:        seo.BuildURL(base, "categories", cat.Slug),
			LastMod:    lastMod(cat.UpdatedAt),
			ChangeFreq: "weekly",
			Priority:   "0.6",
		})
	}
	return sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
}

func lastMod(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func renderSitemap(c echo.Context, base string, data content.SitemapData) error {
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	if _, err := c.Response().Write([]byte(xml.Header)); err != nil {
		return err
	}
	return xml.NewEncoder(c.Response()).Encode(buildSitemap(base, data))
}
