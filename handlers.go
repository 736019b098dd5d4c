package pressfront

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/a-h/templ"
	"github.com/gosimple/slug"
	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/eringen/pressfront/content"
	"github.com/eringen/pressfront/listing"
	"github.com/eringen/pressfront/richtext"
	"github.com/eringen/pressfront/seo"
	"github.com/eringen/pressfront/views"
)

// Number of recent posts on the home page.
const homeRecent = 6

// Queries shorter than this many characters are not run.
const minSearchLen = 2

func (a *App) handleHome(c echo.Context) error {
	ctx := c.Request().Context()
	var featured, recent []content.Post
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		featured, err = a.Repo.FeaturedPosts(gctx)
		return err
	})
	g.Go(func() (err error) {
		recent, err = a.Repo.RecentPosts(gctx, homeRecent)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}
	featured, recent = listing.MergeSplit(featured, recent)

	site := a.site()
	page := a.basePage(c, seo.ForPage("", "", "/", site))
	page.JSONLD = []string{seo.WebsiteJSONLD(site)}
	return Render(c, a.Views.Home(views.HomePage{
		Page:     page,
		Featured: a.cards(featured, true),
		Recent:   a.cards(recent, false),
	}))
}

func (a *App) handleBlog(c echo.Context) error {
	ctx := c.Request().Context()
	w := listing.NewWindow(listing.ParsePage(c.QueryParam("page")), listing.PageSize)

	var (
		raw    []content.Post
		cats   []content.Category
		counts content.Counts
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		raw, err = a.Repo.ListPosts(gctx, w.Range())
		return err
	})
	g.Go(func() (err error) {
		cats, err = a.Repo.Categories(gctx)
		return err
	})
	g.Go(func() (err error) {
		counts, err = a.Repo.Counts(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	return Render(c, a.Views.Blog(views.BlogPage{
		Page:       a.basePage(c, seo.ForPage("Blog", "", "/blog", a.site())),
		Posts:      a.cards(listing.Dedupe(raw), false),
		Categories: categorySummaries(cats),
		PostCount:  counts.Posts,
		Pager:      listing.NewPager("/blog", w, len(raw)),
	}))
}

func (a *App) handlePost(c echo.Context) error {
	ctx := c.Request().Context()
	s := c.Param("slug")
	if !slug.IsSlug(s) {
		return echo.ErrNotFound
	}
	post, err := a.Repo.PostBySlug(ctx, s)
	if err != nil {
		return err
	}
	related, err := a.Repo.RelatedPosts(ctx, post)
	if err != nil {
		return err
	}
	body, err := templ.ToGoHTML(ctx, richtext.Render(post.Body, richtext.RenderOptions{ImageURL: a.Images.URL}))
	if err != nil {
		return err
	}

	site := a.site()
	page := a.basePage(c, seo.ForPost(post, site, a.Images))
	page.JSONLD = []string{seo.BlogPostingJSONLD(post, site, a.Images)}
	author := ""
	if post.Author != nil {
		author = post.Author.Name
	}
	return Render(c, a.Views.Post(views.PostPage{
		Page:     page,
		Post:     a.card(post, false),
		Author:   author,
		Body:     body,
		ShareURL: site.Abs("blog", post.Slug.Current),
		Related:  a.cards(related, false),
	}))
}

// handlePostRedirect keeps old /post/:slug links working.
func handlePostRedirect(c echo.Context) error {
	return c.Redirect(http.StatusMovedPermanently, "/blog/"+url.PathEscape(c.Param("slug")))
}

func (a *App) handleCategories(c echo.Context) error {
	cats, err := a.Repo.Categories(c.Request().Context())
	if err != nil {
		return err
	}
	meta := seo.ForPage("Categories", "Browse articles by topic.", "/categories", a.site())
	return Render(c, a.Views.Categories(views.CategoriesPage{
		Page:       a.basePage(c, meta),
		Categories: categorySummaries(cats),
	}))
}

func (a *App) handleCategory(c echo.Context) error {
	ctx := c.Request().Context()
	s := c.Param("slug")
	if !slug.IsSlug(s) {
		return echo.ErrNotFound
	}
	cat, err := a.Repo.CategoryBySlug(ctx, s)
	if err != nil {
		return err
	}
	w := listing.NewWindow(listing.ParsePage(c.QueryParam("page")), listing.PageSize)
	posts, err := a.Repo.PostsByCategory(ctx, cat.ID, w.Range())
	if err != nil {
		return err
	}
	b := categoryBadge(cat.Ref())
	return Render(c, a.Views.Listing(views.ListingPage{
		Page:        a.basePage(c, seo.ForCategory(cat, a.site())),
		Heading:     cat.Title,
		Description: cat.Description,
		Badge:       &b,
		Posts:       a.cards(listing.Dedupe(posts), false),
		Pager:       listing.NewPager(c.Request().URL.Path, w, len(posts)),
		Empty:       "No articles in this category yet.",
	}))
}

func (a *App) handleTag(c echo.Context) error {
	ctx := c.Request().Context()
	tag, err := url.PathUnescape(c.Param("tag"))
	if err != nil || strings.TrimSpace(tag) == "" {
		return echo.ErrNotFound
	}
	w := listing.NewWindow(listing.ParsePage(c.QueryParam("page")), listing.PageSize)
	posts, err := a.Repo.PostsByTag(ctx, tag, w.Range())
	if err != nil {
		return err
	}
	heading := "Tagged “" + tag + "”"
	meta := seo.ForPage(heading, "Articles tagged "+tag+".", "/tags/"+url.PathEscape(tag), a.site())
	return Render(c, a.Views.Listing(views.ListingPage{
		Page:    a.basePage(c, meta),
		Heading: heading,
		Posts:   a.cards(listing.Dedupe(posts), false),
		Pager:   listing.NewPager(c.Request().URL.Path, w, len(posts)),
		Empty:   "No articles with this tag yet.",
	}))
}

func (a *App) handleAuthor(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")
	if strings.TrimSpace(id) == "" {
		return echo.ErrNotFound
	}
	w := listing.NewWindow(listing.ParsePage(c.QueryParam("page")), listing.PageSize)
	posts, err := a.Repo.PostsByAuthor(ctx, id, w.Range())
	if err != nil {
		return err
	}
	name := ""
	for _, p := range posts {
		if p.Author != nil && p.Author.Name != "" {
			name = p.Author.Name
			break
		}
	}
	// The catalog has no author lookup; an unknown author with no posts is a 404.
	if name == "" && len(posts) == 0 && w.Page == 1 {
		return echo.ErrNotFound
	}
	heading := "Articles"
	if name != "" {
		heading = "Articles by " + name
	}
	meta := seo.ForPage(heading, "", "/authors/"+url.PathEscape(id), a.site())
	return Render(c, a.Views.Listing(views.ListingPage{
		Page:    a.basePage(c, meta),
		Heading: heading,
		Posts:   a.cards(listing.Dedupe(posts), false),
		Pager:   listing.NewPager(c.Request().URL.Path, w, len(posts)),
		Empty:   "No more articles.",
	}))
}

func (a *App) handleSearch(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	data := views.SearchPage{Query: q}

	title := "Search"
	if utf8.RuneCountInString(q) < minSearchLen {
		data.NoQuery = true
	} else {
		results, err := a.Repo.SearchPosts(c.Request().Context(), q)
		if err != nil {
			return err
		}
		data.Results = a.cards(listing.Dedupe(results), false)
		title = "Search results for “" + q + "”"
	}
	meta := seo.ForPage(title, "Search all articles.", "/search", a.site())
	data.Page = a.basePage(c, meta)
	return Render(c, a.Views.Search(data))
}

func handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func (a *App) handleRobots(c echo.Context) error {
	return c.String(http.StatusOK, robotsTxt(a.Config.URL))
}

func robotsTxt(base string) string {
	return `User-agent: *
Allow: /

Sitemap: ` + seo.BuildURL(base, "sitemap.xml") + `

Disallow: /admin/
Disallow: /api/
Disallow: /_next/
Disallow: /studio/

Crawl-delay: 1
`
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	isHTTP := errors.As(err, &he)
	if errors.Is(err, content.ErrNotFound) || (isHTTP && he.Code == http.StatusNotFound) {
		meta := seo.ForPage("Not Found", "", c.Request().URL.Path, a.site())
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound(views.ErrorPage{
			Page:   a.errorPage(c, meta),
			Status: http.StatusNotFound,
		}))
		return
	}
	code := http.StatusInternalServerError
	if isHTTP {
		code = he.Code
	}
	if code >= http.StatusInternalServerError {
		a.Logger.ErrorContext(c.Request().Context(), "server error",
			"err", err,
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
		)
		meta := seo.ForPage("Error", "", c.Request().URL.Path, a.site())
		_ = RenderStatus(c, code, a.Views.ServerError(views.ErrorPage{
			Page:    a.errorPage(c, meta),
			Status:  code,
			Message: "Please try again in a moment.",
		}))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
