package pressfront

import (
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/eringen/pressfront/content"
	"github.com/eringen/pressfront/imageurl"
	"github.com/eringen/pressfront/seo"
	"github.com/eringen/pressfront/views"
)

const (
	displayDate = "January 2, 2006"
	isoDate     = "2006-01-02"
)

// basePage fills the page chrome and consumes any pending flash message.
func (a *App) basePage(c echo.Context, meta seo.Meta) views.Page {
	return views.Page{
		Site:  a.site(),
		Meta:  meta,
		Path:  c.Request().URL.Path,
		CSRF:  CsrfToken(c),
		Flash: popFlash(c),
	}
}

// errorPage is basePage without touching the session.
func (a *App) errorPage(c echo.Context, meta seo.Meta) views.Page {
	return views.Page{
		Site: a.site(),
		Meta: meta,
		Path: c.Request().URL.Path,
		CSRF: CsrfToken(c),
	}
}

func (a *App) card(p content.Post, featured bool) views.Card {
	w, h := imageurl.CardWidth, imageurl.CardHeight
	if featured {
		w, h = imageurl.FeaturedCardWidth, imageurl.FeaturedCardHeight
	}
	c := views.Card{
		Title:       p.Title,
		URL:         "/blog/" + url.PathEscape(p.Slug.Current),
		Excerpt:     p.Excerpt,
		ImageURL:    a.Images.URLOrEmpty(p.MainImage, w, h),
		ReadingTime: p.ReadingTime(),
		Featured:    p.Featured,
		Tags:        p.Tags,
	}
	if c.ImageURL != "" {
		c.ImageAlt = p.Title
		if p.MainImage.Alt != "" {
			c.ImageAlt = p.MainImage.Alt
		}
	}
	if !p.PublishedAt.IsZero() {
		c.Date = p.PublishedAt.Format(displayDate)
		c.DateTime = p.PublishedAt.Format(isoDate)
	}
	for _, ref := range p.Categories {
		if ref.Slug.Defined() {
			c.Categories = append(c.Categories, categoryBadge(ref))
		}
	}
	return c
}

func (a *App) cards(posts []content.Post, featured bool) []views.Card {
	out := make([]views.Card, 0, len(posts))
	for _, p := range posts {
		out = append(out, a.card(p, featured))
	}
	return out
}

func categoryBadge(ref content.CategoryRef) views.Badge {
	return views.Badge{
		Title:   ref.Title,
		URL:     "/categories/" + url.PathEscape(ref.Slug.Current),
		Classes: content.CategoryColor(ref.Color).Classes(),
	}
}

func categorySummaries(cats []content.Category) []views.CategorySummary {
	out := make([]views.CategorySummary, 0, len(cats))
	for _, cat := range cats {
		if !cat.Slug.Defined() {
			continue
		}
		out = append(out, views.CategorySummary{
			Badge:       categoryBadge(cat.Ref()),
			Description: cat.Description,
			PostCount:   cat.PostCount,
		})
	}
	return out
}
