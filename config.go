package pressfront

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/eringen/pressfront/cms"
	"github.com/eringen/pressfront/content"
)

// Content backends.
const (
	BackendHTTP = "http"
	BackendFile = "file"
)

// SiteConfig holds all configuration for a pressfront site.
type SiteConfig struct {
	Name        string // Site name (default "Blog")
	URL         string // Canonical URL (default "http://localhost:3000")
	Description string // Site description for RSS and meta tags
	Author      string // Author name for JSON-LD
	LogoPath    string // Image drawn on the fallback social card

	Addr         string // Listen address (default ":3000")
	DatabasePath string // Subscribers SQLite path (default "data/subscribers.db")
	StaticDir    string // Static assets served under /public (default "public")
	Debug        bool

	Revalidate           time.Duration // Cache lifetime of post queries (default 30s, negative disables)
	CategoriesRevalidate time.Duration // Cache lifetime of the category list (default 1h, negative disables)

	Backend     string // "http" (default) or "file"
	ContentFile string // JSON dataset for the file backend
	CMS         cms.Config

	SessionSecret string // Required: session encryption secret
	CookieSecure  bool   // Set true for HTTPS
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	c.URL = strings.TrimRight(c.URL, "/")
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/subscribers.db"
	}
	if c.StaticDir == "" {
		c.StaticDir = "public"
	}
	if c.Revalidate == 0 {
		c.Revalidate = content.DefaultRevalidate
	}
	if c.CategoriesRevalidate == 0 {
		c.CategoriesRevalidate = content.CategoriesRevalidate
	}
	if c.Backend == "" {
		c.Backend = BackendHTTP
	}
}

// LoadConfig reads a .env file if one exists, then the environment, and
// applies defaults.
func LoadConfig() SiteConfig {
	_ = godotenv.Load()

	cfg := SiteConfig{
		Name:          os.Getenv("SITE_NAME"),
		URL:           os.Getenv("SITE_URL"),
		Description:   os.Getenv("SITE_DESCRIPTION"),
		Author:        os.Getenv("SITE_AUTHOR"),
		LogoPath:      os.Getenv("SITE_LOGO"),
		Addr:          os.Getenv("ADDR"),
		DatabasePath:  os.Getenv("DATABASE_PATH"),
		StaticDir:     os.Getenv("STATIC_DIR"),
		Debug:         envBool("DEBUG"),
		Backend:       strings.ToLower(os.Getenv("CMS_BACKEND")),
		ContentFile:   os.Getenv("CMS_CONTENT_FILE"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		CookieSecure:  envBool("COOKIE_SECURE"),
		CMS: cms.Config{
			ProjectID:  os.Getenv("SANITY_PROJECT_ID"),
			Dataset:    EnvOr("SANITY_DATASET", "production"),
			APIVersion: os.Getenv("SANITY_API_VERSION"),
			Token:      os.Getenv("SANITY_API_TOKEN"),
			UseCDN:     envBool("SANITY_USE_CDN"),
		},
	}
	if d, ok := envSeconds("REVALIDATE_SECONDS"); ok {
		cfg.Revalidate = d
	}
	if d, ok := envSeconds("CATEGORIES_REVALIDATE_SECONDS"); ok {
		cfg.CategoriesRevalidate = d
	}
	cfg.setDefaults()
	return cfg
}

// envSeconds reads a non-negative number of seconds. Zero disables caching
// and is returned as a negative duration so defaults do not replace it.
func envSeconds(key string) (time.Duration, bool) {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n < 0 {
		return 0, false
	}
	if n == 0 {
		return -1, true
	}
	return time.Duration(n) * time.Second, true
}

func envBool(key string) bool {
	b, _ := strconv.ParseBool(os.Getenv(key))
	return b
}

// Option configures additional App behavior.
type Option func(*App)

// WithViews replaces the page components. Nil fields keep the defaults.
func WithViews(v ViewFuncs) Option {
	return func(a *App) {
		a.Views = v.withDefaults()
	}
}

// WithFetcher uses f instead of the configured backend.
func WithFetcher(f content.Fetcher) Option {
	return func(a *App) {
		a.fetcher = f
	}
}

// WithLogger sets the application logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		a.Logger = l
	}
}

// WithClock sets the clock used for dates shown on pages.
func WithClock(now func() time.Time) Option {
	return func(a *App) {
		a.now = now
	}
}

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App after the built-in routes are set up.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.Config.StaticDir = dir
	}
}
