package cms

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/eringen/pressfront/content"
)

// Dataset is the on-disk shape read by LoadFile.
type Dataset struct {
	Posts      []content.Post     `json:"posts"`
	Categories []content.Category `json:"categories"`
}

// MemoryStore evaluates the query catalog in process over a fixed set of
// documents. It is safe for concurrent use.
type MemoryStore struct {
	mu         sync.RWMutex
	posts      []content.Post
	categories []content.Category
	now        func() time.Time
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithNow sets the clock used by the published filter.
func WithNow(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		s.now = now
	}
}

// NewMemoryStore returns a store holding copies of posts and categories.
func NewMemoryStore(posts []content.Post, categories []content.Category, opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.Replace(posts, categories)
	return s
}

// LoadFile reads a Dataset from a JSON file.
func LoadFile(path string, opts ...MemoryOption) (*MemoryStore, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read content file: %w", err)
	}
	var ds Dataset
	if err := json.Unmarshal(b, &ds); err != nil {
		return nil, fmt.Errorf("parse content file %s: %w", path, err)
	}
	return NewMemoryStore(ds.Posts, ds.Categories, opts...), nil
}

// Replace swaps the stored documents.
func (s *MemoryStore) Replace(posts []content.Post, categories []content.Category) {
	p := append([]content.Post(nil), posts...)
	c := append([]content.Category(nil), categories...)
	s.mu.Lock()
	s.posts, s.categories = p, c
	s.mu.Unlock()
}

// Fetch implements content.Fetcher.
func (s *MemoryStore) Fetch(ctx context.Context, q content.Query, params content.Params, _ content.FetchOptions) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, ok := content.Lookup(q.Name); !ok {
		return nil, &content.StoreQueryError{Query: q.Name, Message: "unknown query"}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	ev := evaluator{store: s, now: s.now(), params: params, query: q.Name}
	v, err := ev.run()
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, &content.StoreQueryError{Query: q.Name, Message: "encode result", Err: err}
	}
	return b, nil
}

type evaluator struct {
	store  *MemoryStore
	now    time.Time
	params content.Params
	query  string
}

func (e *evaluator) run() (any, error) {
	switch e.query {
	case content.PostsQuery.Name:
		return e.window(e.published(nil))
	case content.FeaturedPostsQuery.Name:
		return limit(e.published(func(p content.Post) bool { return p.Featured }), content.FeaturedLimit), nil
	case content.RecentPostsQuery.Name:
		n, err := e.intParam("limit")
		if err != nil {
			return nil, err
		}
		return limit(e.published(nil), n), nil
	case content.FeedPostsQuery.Name:
		n, err := e.intParam("limit")
		if err != nil {
			return nil, err
		}
		posts := e.published(nil)
		if n >= 0 && len(posts) > n {
			posts = posts[:n]
		}
		for i := range posts {
			posts[i].SEO = nil
		}
		return posts, nil
	case content.PostQuery.Name:
		slug, err := e.stringParam("slug")
		if err != nil {
			return nil, err
		}
		for _, p := range e.published(nil) {
			if p.Slug.Current == slug {
				return p, nil
			}
		}
		return nil, nil
	case content.PostPathsQuery.Name:
		posts := e.published(nil)
		out := make([]map[string]string, 0, len(posts))
		for _, p := range posts {
			out = append(out, map[string]string{"slug": p.Slug.Current})
		}
		return out, nil
	case content.PostsByCategoryQuery.Name:
		id, err := e.stringParam("categoryId")
		if err != nil {
			return nil, err
		}
		return e.window(e.published(func(p content.Post) bool { return hasCategory(p, id) }))
	case content.PostsByTagQuery.Name:
		tag, err := e.stringParam("tag")
		if err != nil {
			return nil, err
		}
		return e.window(e.published(func(p content.Post) bool { return contains(p.Tags, tag) }))
	case content.PostsByAuthorQuery.Name:
		id, err := e.stringParam("authorId")
		if err != nil {
			return nil, err
		}
		return e.window(e.published(func(p content.Post) bool { return p.Author != nil && p.Author.ID == id }))
	case content.SearchPostsQuery.Name:
		term, err := e.stringParam("searchTerm")
		if err != nil {
			return nil, err
		}
		return limit(e.published(func(p content.Post) bool { return matchesSearch(p, term) }), content.SearchLimit), nil
	case content.RelatedPostsQuery.Name:
		return e.related()
	case content.CategoriesQuery.Name:
		return e.categoriesWithCounts(), nil
	case content.CategoryQuery.Name:
		slug, err := e.stringParam("slug")
		if err != nil {
			return nil, err
		}
		for _, c := range e.store.categories {
			if c.Slug.Current == slug {
				return c, nil
			}
		}
		return nil, nil
	case content.CategoryPathsQuery.Name:
		out := make([]map[string]string, 0, len(e.store.categories))
		for _, c := range e.store.categories {
			if c.Slug.Defined() {
				out = append(out, map[string]string{"slug": c.Slug.Current})
			}
		}
		return out, nil
	case content.SitemapQuery.Name:
		return e.sitemap(), nil
	case content.CountsQuery.Name:
		return content.Counts{Posts: len(e.published(nil)), Categories: len(e.store.categories)}, nil
	}
	return nil, &content.StoreQueryError{Query: e.query, Message: "unknown query"}
}

// published returns matching published posts, newest first.
func (e *evaluator) published(keep func(content.Post) bool) []content.Post {
	out := make([]content.Post, 0, len(e.store.posts))
	for _, p := range e.store.posts {
		if !p.Published(e.now) {
			continue
		}
		if keep != nil && !keep(p) {
			continue
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PublishedAt.After(out[j].PublishedAt)
	})
	return out
}

// listProjection drops the fields only the single-post query selects.
func listProjection(posts []content.Post) []content.Post {
	for i := range posts {
		posts[i].Body = nil
		posts[i].SEO = nil
	}
	return posts
}

func (e *evaluator) window(posts []content.Post) ([]content.Post, error) {
	start, err := e.intParam("start")
	if err != nil {
		return nil, err
	}
	end, err := e.intParam("end")
	if err != nil {
		return nil, err
	}
	if start < 0 {
		start = 0
	}
	if end > len(posts) {
		end = len(posts)
	}
	if start >= end {
		return []content.Post{}, nil
	}
	return listProjection(posts[start:end]), nil
}

func limit(posts []content.Post, n int) []content.Post {
	if n < 0 {
		n = 0
	}
	if len(posts) > n {
		posts = posts[:n]
	}
	return listProjection(posts)
}

func (e *evaluator) related() ([]content.Post, error) {
	current, err := e.stringParam("currentPostId")
	if err != nil {
		return nil, err
	}
	catIDs, err := e.listParam("categoryIds")
	if err != nil {
		return nil, err
	}
	tags, err := e.listParam("tags")
	if err != nil {
		return nil, err
	}
	posts := e.published(func(p content.Post) bool {
		if p.ID == current {
			return false
		}
		for _, id := range catIDs {
			if hasCategory(p, id) {
				return true
			}
		}
		for _, t := range tags {
			if contains(p.Tags, t) {
				return true
			}
		}
		return false
	})
	return limit(posts, content.RelatedLimit), nil
}

func (e *evaluator) categoriesWithCounts() []content.Category {
	counts := make(map[string]int, len(e.store.categories))
	for _, p := range e.published(nil) {
		seen := map[string]bool{}
		for _, c := range p.Categories {
			if c.ID != "" && !seen[c.ID] {
				seen[c.ID] = true
				counts[c.ID]++
			}
		}
	}
	out := make([]content.Category, 0, len(e.store.categories))
	for _, c := range e.store.categories {
		c.PostCount = counts[c.ID]
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Title < out[j].Title
	})
	return out
}

func (e *evaluator) sitemap() content.SitemapData {
	posts := e.published(nil)
	data := content.SitemapData{
		Posts:      make([]content.SitemapPost, 0, len(posts)),
		Categories: make([]content.SitemapCategory, 0, len(e.store.categories)),
	}
	for _, p := range posts {
		data.Posts = append(data.Posts, content.SitemapPost{Slug: p.Slug.Current, PublishedAt: p.PublishedAt, UpdatedAt: p.UpdatedAt})
	}
	for _, c := range e.store.categories {
		if c.Slug.Defined() {
			data.Categories = append(data.Categories, content.SitemapCategory{Slug: c.Slug.Current, UpdatedAt: c.UpdatedAt})
		}
	}
	return data
}

func hasCategory(p content.Post, id string) bool {
	for _, c := range p.Categories {
		if c.ID == id {
			return true
		}
	}
	return false
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// matchesSearch reports whether the title, the excerpt, or a tag starts
// with term, ignoring case.
func matchesSearch(p content.Post, term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return false
	}
	if hasPrefixFold(p.Title, term) || hasPrefixFold(p.Excerpt, term) {
		return true
	}
	for _, t := range p.Tags {
		if hasPrefixFold(t, term) {
			return true
		}
	}
	return false
}

func hasPrefixFold(field, lowerTerm string) bool {
	return strings.HasPrefix(strings.ToLower(field), lowerTerm)
}

func (e *evaluator) missing(name string) error {
	return &content.StoreQueryError{Query: e.query, Message: "param $" + name + " referenced, but not provided"}
}

func (e *evaluator) intParam(name string) (int, error) {
	v, ok := e.params[name]
	if !ok {
		return 0, e.missing(name)
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, &content.StoreQueryError{Query: e.query, Message: "param $" + name + " is not an integer", Err: err}
		}
		return int(i), nil
	}
	return 0, &content.StoreQueryError{Query: e.query, Message: "param $" + name + " is not an integer"}
}

func (e *evaluator) stringParam(name string) (string, error) {
	v, ok := e.params[name]
	if !ok {
		return "", e.missing(name)
	}
	s, ok := v.(string)
	if !ok {
		return "", &content.StoreQueryError{Query: e.query, Message: "param $" + name + " is not a string"}
	}
	return s, nil
}

func (e *evaluator) listParam(name string) ([]string, error) {
	v, ok := e.params[name]
	if !ok {
		return nil, e.missing(name)
	}
	switch list := v.(type) {
	case nil:
		return nil, nil
	case []string:
		return list, nil
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out, nil
	}
	return nil, &content.StoreQueryError{Query: e.query, Message: "param $" + name + " is not a list"}
}
