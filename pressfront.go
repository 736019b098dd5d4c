// Package pressfront is the public website of a headless-CMS blog built with
// Go, Echo, and templ.
//
// Content is read from the CMS through a fixed catalog of queries (see the
// content package); pressfront wires the backend, cache, middleware, and
// handlers, and renders pages through the components in ViewFuncs.
package pressfront

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/eringen/pressfront/cms"
	"github.com/eringen/pressfront/content"
	"github.com/eringen/pressfront/imageurl"
	"github.com/eringen/pressfront/seo"
	"github.com/eringen/pressfront/views"
)

// ViewFuncs holds the templ components pressfront renders pages with.
// Replace any of them with WithViews to own the markup.
type ViewFuncs struct {
	Home        func(views.HomePage) templ.Component
	Blog        func(views.BlogPage) templ.Component
	Post        func(views.PostPage) templ.Component
	Listing     func(views.ListingPage) templ.Component
	Categories  func(views.CategoriesPage) templ.Component
	Search      func(views.SearchPage) templ.Component
	NotFound    func(views.ErrorPage) templ.Component
	ServerError func(views.ErrorPage) templ.Component
}

// DefaultViews returns the built-in page components.
func DefaultViews() ViewFuncs {
	return ViewFuncs{
		Home:        views.Home,
		Blog:        views.Blog,
		Post:        views.Post,
		Listing:     views.Listing,
		Categories:  views.Categories,
		Search:      views.Search,
		NotFound:    views.NotFound,
		ServerError: views.ServerError,
	}
}

func (v ViewFuncs) withDefaults() ViewFuncs {
	d := DefaultViews()
	if v.Home == nil {
		v.Home = d.Home
	}
	if v.Blog == nil {
		v.Blog = d.Blog
	}
	if v.Post == nil {
		v.Post = d.Post
	}
	if v.Listing == nil {
		v.Listing = d.Listing
	}
	if v.Categories == nil {
		v.Categories = d.Categories
	}
	if v.Search == nil {
		v.Search = d.Search
	}
	if v.NotFound == nil {
		v.NotFound = d.NotFound
	}
	if v.ServerError == nil {
		v.ServerError = d.ServerError
	}
	return v
}

// App is the central pressfront application. It wires together the content
// repository, subscriber store, handlers, middleware, and page components.
type App struct {
	Config      SiteConfig
	Echo        *echo.Echo
	Repo        *content.Repository
	Subscribers *SubscriberStore
	Images      *imageurl.Builder
	Views       ViewFuncs
	Logger      *slog.Logger

	registry     *prometheus.Registry
	metrics      *cms.Metrics
	fetcher      content.Fetcher
	cache        *cms.CachedFetcher
	limiter      *RateLimiter
	ogImage      ogImage
	customRoutes []func(*App)
	now          func() time.Time
}

// New creates a new App with the given configuration.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
		Views:  DefaultViews(),
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(a)
	}
	if a.Logger == nil {
		a.Logger = NewLogger(a.Config.Debug, os.Stderr)
	}
	a.Echo.HideBanner = true
	a.Echo.HidePort = true
	a.Images = imageurl.NewBuilder(a.Config.CMS.ProjectID, a.Config.CMS.Dataset)

	return a
}

// Setup opens the subscriber store, builds the content backend, and
// registers middleware and routes. Start calls it; tests may call it
// directly and drive a.Echo with httptest.
func (a *App) Setup() error {
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("pressfront: SessionSecret is required")
	}

	subscribers, err := NewSubscriberStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("pressfront: init subscriber store: %w", err)
	}
	a.Subscribers = subscribers

	a.registry = prometheus.NewRegistry()
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	a.metrics = cms.NewMetrics(a.registry)

	backend, err := a.backend()
	if err != nil {
		return err
	}
	cache, err := cms.NewCachedFetcher(cms.Instrument(backend, a.metrics), cms.DefaultCacheSize, a.metrics)
	if err != nil {
		return fmt.Errorf("pressfront: %w", err)
	}
	a.cache = cache
	a.Repo = content.NewRepository(cache,
		content.WithRevalidate(nonNegative(a.Config.Revalidate)),
		content.WithCategoriesRevalidate(nonNegative(a.Config.CategoriesRevalidate)),
	)

	a.limiter = NewRateLimiter(subscribeLimit, subscribeWindow)

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

func (a *App) backend() (content.Fetcher, error) {
	if a.fetcher != nil {
		return a.fetcher, nil
	}
	return NewBackend(a.Config, a.Logger)
}

// NewBackend returns the content store selected by cfg.Backend.
func NewBackend(cfg SiteConfig, logger *slog.Logger) (content.Fetcher, error) {
	switch cfg.Backend {
	case BackendFile:
		if cfg.ContentFile == "" {
			return nil, fmt.Errorf("pressfront: CMS_CONTENT_FILE is required for the file backend")
		}
		store, err := cms.LoadFile(cfg.ContentFile)
		if err != nil {
			return nil, fmt.Errorf("pressfront: %w", err)
		}
		logger.Info("serving content from file", "path", cfg.ContentFile)
		return store, nil
	case BackendHTTP:
		store, err := cms.NewHTTPStore(cfg.CMS, logger)
		if err != nil {
			return nil, fmt.Errorf("pressfront: %w", err)
		}
		return store, nil
	}
	return nil, fmt.Errorf("pressfront: unknown CMS backend %q", cfg.Backend)
}

// Start sets the app up and serves until the server is shut down.
func (a *App) Start() error {
	if err := a.Setup(); err != nil {
		return err
	}

	s := a.Echo.Server
	s.ReadHeaderTimeout = 10 * time.Second
	s.ReadTimeout = 15 * time.Second
	s.WriteTimeout = 30 * time.Second
	s.IdleTimeout = 60 * time.Second

	a.Logger.Info("listening", "addr", a.Config.Addr, "site", a.Config.URL)
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (a *App) Shutdown(ctx context.Context) error {
	return a.Echo.Shutdown(ctx)
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.Static("/public", a.Config.StaticDir)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/og/default.png", a.handleDefaultOGImage)
	e.GET("/healthz", handleHealth)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})))

	e.GET("/", a.handleHome)
	e.GET("/blog", a.handleBlog)
	e.GET("/blog/:slug", a.handlePost)
	e.GET("/post/:slug", handlePostRedirect)
	e.GET("/categories", a.handleCategories)
	e.GET("/categories/:slug", a.handleCategory)
	e.GET("/tags/:tag", a.handleTag)
	e.GET("/authors/:id", a.handleAuthor)
	e.GET("/search", a.handleSearch)

	e.POST("/subscribe", a.handleSubscribe)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.limiter != nil {
		a.limiter.Stop()
	}
	if a.cache != nil {
		a.cache.Close()
	}
	if a.Subscribers != nil {
		return a.Subscribers.Close()
	}
	return nil
}

func (a *App) site() seo.Site {
	return seo.Site{
		Name:        a.Config.Name,
		URL:         a.Config.URL,
		Description: a.Config.Description,
		Author:      a.Config.Author,
		Image:       defaultOGImagePath,
	}
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func nonNegative(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}
