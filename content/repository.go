package content

import (
	"bytes"
	"context"
	"encoding/json"
	"time"
)

// Default revalidation hints.
const (
	DefaultRevalidate    = 30 * time.Second
	CategoriesRevalidate = time.Hour
)

// Repository runs the query catalog against a Fetcher and decodes results.
type Repository struct {
	f                    Fetcher
	revalidate           time.Duration
	categoriesRevalidate time.Duration
}

// RepositoryOption configures a Repository.
type RepositoryOption func(*Repository)

// WithRevalidate sets the revalidation hint for post queries.
func WithRevalidate(d time.Duration) RepositoryOption {
	return func(r *Repository) {
		r.revalidate = d
	}
}

// WithCategoriesRevalidate sets the hint for the category list.
func WithCategoriesRevalidate(d time.Duration) RepositoryOption {
	return func(r *Repository) {
		r.categoriesRevalidate = d
	}
}

// NewRepository returns a Repository over f.
func NewRepository(f Fetcher, opts ...RepositoryOption) *Repository {
	r := &Repository{
		f:                    f,
		revalidate:           DefaultRevalidate,
		categoriesRevalidate: CategoriesRevalidate,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Repository) fetch(ctx context.Context, q Query, params Params, ttl time.Duration, dst any) (bool, error) {
	if params == nil {
		params = Params{}
	}
	raw, err := r.f.Fetch(ctx, q, params, FetchOptions{Revalidate: ttl})
	if err != nil {
		return false, err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, &StoreQueryError{Query: q.Name, Message: "decode result", Err: err}
	}
	return true, nil
}

func (r *Repository) posts(ctx context.Context, q Query, params Params) ([]Post, error) {
	var posts []Post
	if _, err := r.fetch(ctx, q, params, r.revalidate, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func rangeParams(rg Range, extra Params) Params {
	p := Params{"start": rg.Start, "end": rg.End}
	for k, v := range extra {
		p[k] = v
	}
	return p
}

// ListPosts returns published posts in rg.
func (r *Repository) ListPosts(ctx context.Context, rg Range) ([]Post, error) {
	return r.posts(ctx, PostsQuery, rangeParams(rg, nil))
}

// FeaturedPosts returns up to FeaturedLimit featured posts.
func (r *Repository) FeaturedPosts(ctx context.Context) ([]Post, error) {
	return r.posts(ctx, FeaturedPostsQuery, nil)
}

// RecentPosts returns the newest limit posts.
func (r *Repository) RecentPosts(ctx context.Context, limit int) ([]Post, error) {
	return r.posts(ctx, RecentPostsQuery, Params{"limit": limit})
}

// FeedPosts returns the newest limit posts with their bodies, for
// syndication.
func (r *Repository) FeedPosts(ctx context.Context, limit int) ([]Post, error) {
	return r.posts(ctx, FeedPostsQuery, Params{"limit": limit})
}

// PostBySlug returns the published post with slug or ErrNotFound.
func (r *Repository) PostBySlug(ctx context.Context, slug string) (Post, error) {
	var p Post
	ok, err := r.fetch(ctx, PostQuery, Params{"slug": slug}, r.revalidate, &p)
	if err != nil {
		return Post{}, err
	}
	if !ok {
		return Post{}, ErrNotFound
	}
	return p, nil
}

// PostSlugs returns every published post slug.
func (r *Repository) PostSlugs(ctx context.Context) ([]string, error) {
	return r.slugs(ctx, PostPathsQuery)
}

// CategorySlugs returns every category slug.
func (r *Repository) CategorySlugs(ctx context.Context) ([]string, error) {
	return r.slugs(ctx, CategoryPathsQuery)
}

func (r *Repository) slugs(ctx context.Context, q Query) ([]string, error) {
	var rows []struct {
		Slug string `json:"slug"`
	}
	if _, err := r.fetch(ctx, q, nil, r.revalidate, &rows); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		if row.Slug != "" {
			out = append(out, row.Slug)
		}
	}
	return out, nil
}

// PostsByCategory returns published posts referencing categoryID.
func (r *Repository) PostsByCategory(ctx context.Context, categoryID string, rg Range) ([]Post, error) {
	return r.posts(ctx, PostsByCategoryQuery, rangeParams(rg, Params{"categoryId": categoryID}))
}

// PostsByTag returns published posts carrying tag exactly.
func (r *Repository) PostsByTag(ctx context.Context, tag string, rg Range) ([]Post, error) {
	return r.posts(ctx, PostsByTagQuery, rangeParams(rg, Params{"tag": tag}))
}

// PostsByAuthor returns published posts by authorID.
func (r *Repository) PostsByAuthor(ctx context.Context, authorID string, rg Range) ([]Post, error) {
	return r.posts(ctx, PostsByAuthorQuery, rangeParams(rg, Params{"authorId": authorID}))
}

// SearchPosts returns up to SearchLimit posts whose title, excerpt or a tag
// starts with term, case-insensitively.
func (r *Repository) SearchPosts(ctx context.Context, term string) ([]Post, error) {
	return r.posts(ctx, SearchPostsQuery, Params{"searchTerm": term})
}

// RelatedPosts returns up to RelatedLimit posts sharing a category or tag
// with p, excluding p itself.
func (r *Repository) RelatedPosts(ctx context.Context, p Post) ([]Post, error) {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return r.posts(ctx, RelatedPostsQuery, Params{
		"currentPostId": p.ID,
		"categoryIds":   p.CategoryIDs(),
		"tags":          tags,
	})
}

// Categories returns all categories alphabetically with published post counts.
func (r *Repository) Categories(ctx context.Context) ([]Category, error) {
	var cats []Category
	if _, err := r.fetch(ctx, CategoriesQuery, nil, r.categoriesRevalidate, &cats); err != nil {
		return nil, err
	}
	return cats, nil
}

// CategoryBySlug returns the category with slug or ErrNotFound.
func (r *Repository) CategoryBySlug(ctx context.Context, slug string) (Category, error) {
	var c Category
	ok, err := r.fetch(ctx, CategoryQuery, Params{"slug": slug}, r.revalidate, &c)
	if err != nil {
		return Category{}, err
	}
	if !ok {
		return Category{}, ErrNotFound
	}
	return c, nil
}

// Sitemap returns the sitemap aggregate. It is never cached.
func (r *Repository) Sitemap(ctx context.Context) (SitemapData, error) {
	var data SitemapData
	if _, err := r.fetch(ctx, SitemapQuery, nil, 0, &data); err != nil {
		return SitemapData{}, err
	}
	return data, nil
}

// Counts returns totals of published posts and categories.
func (r *Repository) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	if _, err := r.fetch(ctx, CountsQuery, nil, r.revalidate, &c); err != nil {
		return Counts{}, err
	}
	return c, nil
}
