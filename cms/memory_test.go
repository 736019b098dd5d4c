package cms

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/eringen/pressfront/content"
	"github.com/eringen/pressfront/richtext"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

var (
	catYoga     = content.CategoryRef{ID: "cat-yoga", Title: "Yoga", Slug: content.Slug{Current: "yoga"}, Color: "green"}
	catStrength = content.CategoryRef{ID: "cat-strength", Title: "Strength", Slug: content.Slug{Current: "strength"}, Color: "red"}
)

func testPost(id, slug string, daysAgo int, mut ...func(*content.Post)) content.Post {
	p := content.Post{
		Document:    content.Document{ID: id},
		Title:       slug,
		Slug:        content.Slug{Current: slug},
		PublishedAt: testNow.AddDate(0, 0, -daysAgo),
	}
	for _, m := range mut {
		m(&p)
	}
	return p
}

func fixtureStore() *MemoryStore {
	posts := []content.Post{
		testPost("p1", "yoga-for-beginners", 1, func(p *content.Post) {
			p.Title = "Yoga for Beginners"
			p.Categories = []content.CategoryRef{catYoga}
			p.Tags = []string{"yoga", "mobility"}
			p.Featured = true
		}),
		testPost("p2", "deadlift-basics", 2, func(p *content.Post) {
			p.Title = "Deadlift Basics"
			p.Excerpt = "Everything about the hinge."
			p.Categories = []content.CategoryRef{catStrength}
			p.Tags = []string{"strength"}
			p.Featured = true
		}),
		testPost("p3", "morning-stretch", 3, func(p *content.Post) {
			p.Title = "Morning Stretch"
			p.Tags = []string{"yoga"}
			p.Author = &content.AuthorRef{ID: "author-1", Name: "Sam"}
		}),
		testPost("p4", "squat-depth", 4, func(p *content.Post) {
			p.Title = "Squat Depth"
			p.Categories = []content.CategoryRef{catStrength}
			p.Author = &content.AuthorRef{ID: "author-1", Name: "Sam"}
			p.Featured = true
		}),
		testPost("p5", "rest-days", 5, func(p *content.Post) {
			p.Title = "Rest Days"
			p.Featured = true
		}),
		testPost("drafts.p6", "draft-post", 1, func(p *content.Post) {
			p.Title = "Yoga Draft"
			p.Categories = []content.CategoryRef{catYoga}
		}),
		testPost("p7", "future-post", -3, func(p *content.Post) {
			p.Title = "Yoga in the Future"
			p.Categories = []content.CategoryRef{catYoga}
		}),
		testPost("p8", "", 1, func(p *content.Post) { p.Title = "No slug" }),
	}
	cats := []content.Category{
		{Document: content.Document{ID: "cat-yoga"}, Title: "Yoga", Slug: content.Slug{Current: "yoga"}, Color: "green"},
		{Document: content.Document{ID: "cat-strength"}, Title: "Strength", Slug: content.Slug{Current: "strength"}, Color: "red"},
		{Document: content.Document{ID: "cat-empty"}, Title: "Cardio", Slug: content.Slug{Current: "cardio"}},
	}
	return NewMemoryStore(posts, cats, WithNow(func() time.Time { return testNow }))
}

func repo() *content.Repository {
	return content.NewRepository(fixtureStore())
}

func postSlugs(posts []content.Post) []string {
	out := make([]string, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.Slug.Current)
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestMemoryListPostsPublishedNewestFirst(t *testing.T) {
	posts, err := repo().ListPosts(context.Background(), content.Range{Start: 0, End: 12})
	if err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
	want := []string{"yoga-for-beginners", "deadlift-basics", "morning-stretch", "squat-depth", "rest-days"}
	if got := postSlugs(posts); !equalStrings(got, want) {
		t.Errorf("ListPosts = %v, want %v", got, want)
	}
}

func TestMemoryListPostsRange(t *testing.T) {
	posts, err := repo().ListPosts(context.Background(), content.Range{Start: 2, End: 4})
	if err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
	if got, want := postSlugs(posts), []string{"morning-stretch", "squat-depth"}; !equalStrings(got, want) {
		t.Errorf("ListPosts = %v, want %v", got, want)
	}

	posts, err = repo().ListPosts(context.Background(), content.Range{Start: 12, End: 24})
	if err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
	if len(posts) != 0 {
		t.Errorf("past the end = %v, want empty", postSlugs(posts))
	}
}

func TestMemoryFeaturedCapped(t *testing.T) {
	posts, err := repo().FeaturedPosts(context.Background())
	if err != nil {
		t.Fatalf("FeaturedPosts: %v", err)
	}
	if got, want := postSlugs(posts), []string{"yoga-for-beginners", "deadlift-basics", "squat-depth"}; !equalStrings(got, want) {
		t.Errorf("FeaturedPosts = %v, want %v", got, want)
	}
}

func TestMemoryRecentPosts(t *testing.T) {
	posts, err := repo().RecentPosts(context.Background(), 2)
	if err != nil {
		t.Fatalf("RecentPosts: %v", err)
	}
	if len(posts) != 2 || posts[0].Slug.Current != "yoga-for-beginners" {
		t.Errorf("RecentPosts = %v", postSlugs(posts))
	}
}

func TestMemoryFeedPostsKeepBody(t *testing.T) {
	body := richtext.Body{&richtext.TextBlock{Style: "normal", Children: []richtext.Span{{Text: "Breathe in, breathe out."}}}}
	posts := []content.Post{
		testPost("p1", "breathing", 1, func(p *content.Post) {
			p.Body = body
			p.SEO = &content.SEO{MetaTitle: "Breathing"}
		}),
		testPost("p2", "older", 2),
	}
	r := content.NewRepository(NewMemoryStore(posts, nil, WithNow(func() time.Time { return testNow })))

	feed, err := r.FeedPosts(context.Background(), 1)
	if err != nil {
		t.Fatalf("FeedPosts: %v", err)
	}
	if len(feed) != 1 || feed[0].Slug.Current != "breathing" {
		t.Fatalf("FeedPosts = %v", postSlugs(feed))
	}
	if got := richtext.PlainText(feed[0].Body); got != "Breathe in, breathe out." {
		t.Errorf("feed body = %q", got)
	}
	if feed[0].SEO != nil {
		t.Error("feed posts should not carry SEO overrides")
	}

	recent, err := r.RecentPosts(context.Background(), 1)
	if err != nil {
		t.Fatalf("RecentPosts: %v", err)
	}
	if len(recent) != 1 || len(recent[0].Body) != 0 {
		t.Errorf("recent posts should not carry a body: %+v", recent)
	}
}

func TestMemoryPostBySlug(t *testing.T) {
	r := repo()
	p, err := r.PostBySlug(context.Background(), "deadlift-basics")
	if err != nil {
		t.Fatalf("PostBySlug: %v", err)
	}
	if p.ID != "p2" || p.Title != "Deadlift Basics" {
		t.Errorf("post = %+v", p)
	}
	for _, slug := range []string{"missing", "draft-post", "future-post", ""} {
		if _, err := r.PostBySlug(context.Background(), slug); !errors.Is(err, content.ErrNotFound) {
			t.Errorf("PostBySlug(%q) err = %v, want ErrNotFound", slug, err)
		}
	}
}

func TestMemorySearch(t *testing.T) {
	tests := []struct {
		term string
		want []string
	}{
		{"Yoga", []string{"yoga-for-beginners", "morning-stretch"}},
		{"yo", []string{"yoga-for-beginners", "morning-stretch"}},
		{"everything about", []string{"deadlift-basics"}},
		{"hinge", nil},
		{"squat dep", []string{"squat-depth"}},
		{"depth", nil},
		{"MOB", []string{"yoga-for-beginners"}},
		{"oga", nil},
		{"zzz", nil},
	}
	r := repo()
	for _, tt := range tests {
		posts, err := r.SearchPosts(context.Background(), tt.term)
		if err != nil {
			t.Fatalf("SearchPosts(%q): %v", tt.term, err)
		}
		if got := postSlugs(posts); !equalStrings(got, tt.want) && !(len(got) == 0 && len(tt.want) == 0) {
			t.Errorf("SearchPosts(%q) = %v, want %v", tt.term, got, tt.want)
		}
	}
}

func TestMemorySearchMatchesFieldStartOnly(t *testing.T) {
	posts := []content.Post{
		testPost("p1", "yoga-basics", 1, func(p *content.Post) { p.Title = "Yoga Basics" }),
		testPost("p2", "basics-of-yoga", 2, func(p *content.Post) { p.Title = "Basics of Yoga" }),
	}
	s := NewMemoryStore(posts, nil, WithNow(func() time.Time { return testNow }))
	got, err := content.NewRepository(s).SearchPosts(context.Background(), "yo")
	if err != nil {
		t.Fatalf("SearchPosts: %v", err)
	}
	if want := []string{"yoga-basics"}; !equalStrings(postSlugs(got), want) {
		t.Errorf("SearchPosts(%q) = %v, want %v", "yo", postSlugs(got), want)
	}
}

func TestMemorySearchCapped(t *testing.T) {
	var posts []content.Post
	for i := 0; i < 30; i++ {
		posts = append(posts, testPost(fmt.Sprintf("p%d", i), fmt.Sprintf("post-%d", i), i+1, func(p *content.Post) {
			p.Title = "Yoga session"
		}))
	}
	s := NewMemoryStore(posts, nil, WithNow(func() time.Time { return testNow }))
	got, err := content.NewRepository(s).SearchPosts(context.Background(), "yoga")
	if err != nil {
		t.Fatalf("SearchPosts: %v", err)
	}
	if len(got) != content.SearchLimit {
		t.Errorf("len = %d, want %d", len(got), content.SearchLimit)
	}
}

func TestMemoryRelated(t *testing.T) {
	r := repo()
	current, err := r.PostBySlug(context.Background(), "yoga-for-beginners")
	if err != nil {
		t.Fatalf("PostBySlug: %v", err)
	}
	related, err := r.RelatedPosts(context.Background(), current)
	if err != nil {
		t.Fatalf("RelatedPosts: %v", err)
	}
	if got, want := postSlugs(related), []string{"morning-stretch"}; !equalStrings(got, want) {
		t.Errorf("RelatedPosts = %v, want %v", got, want)
	}

	strength, _ := r.PostBySlug(context.Background(), "deadlift-basics")
	related, err = r.RelatedPosts(context.Background(), strength)
	if err != nil {
		t.Fatalf("RelatedPosts: %v", err)
	}
	for _, p := range related {
		if p.ID == strength.ID {
			t.Errorf("related includes the current post")
		}
	}
	if got, want := postSlugs(related), []string{"squat-depth"}; !equalStrings(got, want) {
		t.Errorf("RelatedPosts = %v, want %v", got, want)
	}
}

func TestMemoryByCategoryTagAuthor(t *testing.T) {
	r := repo()
	all := content.Range{Start: 0, End: 12}

	byCat, err := r.PostsByCategory(context.Background(), "cat-strength", all)
	if err != nil {
		t.Fatalf("PostsByCategory: %v", err)
	}
	if got, want := postSlugs(byCat), []string{"deadlift-basics", "squat-depth"}; !equalStrings(got, want) {
		t.Errorf("PostsByCategory = %v, want %v", got, want)
	}

	byTag, err := r.PostsByTag(context.Background(), "yoga", all)
	if err != nil {
		t.Fatalf("PostsByTag: %v", err)
	}
	if got, want := postSlugs(byTag), []string{"yoga-for-beginners", "morning-stretch"}; !equalStrings(got, want) {
		t.Errorf("PostsByTag = %v, want %v", got, want)
	}

	byAuthor, err := r.PostsByAuthor(context.Background(), "author-1", all)
	if err != nil {
		t.Fatalf("PostsByAuthor: %v", err)
	}
	if got, want := postSlugs(byAuthor), []string{"morning-stretch", "squat-depth"}; !equalStrings(got, want) {
		t.Errorf("PostsByAuthor = %v, want %v", got, want)
	}
}

func TestMemoryCategories(t *testing.T) {
	cats, err := repo().Categories(context.Background())
	if err != nil {
		t.Fatalf("Categories: %v", err)
	}
	var titles []string
	counts := map[string]int{}
	for _, c := range cats {
		titles = append(titles, c.Title)
		counts[c.ID] = c.PostCount
	}
	if want := []string{"Cardio", "Strength", "Yoga"}; !equalStrings(titles, want) {
		t.Errorf("titles = %v, want %v", titles, want)
	}
	if counts["cat-yoga"] != 1 || counts["cat-strength"] != 2 || counts["cat-empty"] != 0 {
		t.Errorf("counts = %v", counts)
	}
}

func TestMemoryCategoryBySlug(t *testing.T) {
	r := repo()
	c, err := r.CategoryBySlug(context.Background(), "yoga")
	if err != nil || c.ID != "cat-yoga" {
		t.Fatalf("CategoryBySlug = %+v, %v", c, err)
	}
	if _, err := r.CategoryBySlug(context.Background(), "nope"); !errors.Is(err, content.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestMemorySitemapAndCounts(t *testing.T) {
	r := repo()
	data, err := r.Sitemap(context.Background())
	if err != nil {
		t.Fatalf("Sitemap: %v", err)
	}
	if len(data.Posts) != 5 || len(data.Categories) != 3 {
		t.Errorf("sitemap = %d posts, %d categories", len(data.Posts), len(data.Categories))
	}
	counts, err := r.Counts(context.Background())
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if counts.Posts != 5 || counts.Categories != 3 {
		t.Errorf("counts = %+v", counts)
	}

	slugs, err := r.PostSlugs(context.Background())
	if err != nil || len(slugs) != 5 {
		t.Errorf("PostSlugs = %v, %v", slugs, err)
	}
	catSlugs, err := r.CategorySlugs(context.Background())
	if err != nil || len(catSlugs) != 3 {
		t.Errorf("CategorySlugs = %v, %v", catSlugs, err)
	}
}

func TestMemoryUnknownQueryAndMissingParam(t *testing.T) {
	s := fixtureStore()
	_, err := s.Fetch(context.Background(), content.Query{Name: "nope"}, nil, content.FetchOptions{})
	if !errors.Is(err, content.ErrStoreQuery) {
		t.Errorf("unknown query err = %v, want ErrStoreQuery", err)
	}
	_, err = s.Fetch(context.Background(), content.PostQuery, content.Params{}, content.FetchOptions{})
	if !errors.Is(err, content.ErrStoreQuery) {
		t.Errorf("missing param err = %v, want ErrStoreQuery", err)
	}
}

func TestMemoryCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := fixtureStore().Fetch(ctx, content.CountsQuery, nil, content.FetchOptions{}); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "content.json")
	data := `{
  "posts": [
    {
      "_id": "a",
      "title": "Hello world",
      "slug": {"current": "hello-world"},
      "publishedAt": "2024-01-01T00:00:00Z",
      "body": [{"_type": "block", "children": [{"_type": "span", "text": "Hi there"}]}]
    }
  ],
  "categories": [{"_id": "c", "title": "General", "slug": {"current": "general"}}]
}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := LoadFile(path, WithNow(func() time.Time { return testNow }))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	p, err := content.NewRepository(s).PostBySlug(context.Background(), "hello-world")
	if err != nil {
		t.Fatalf("PostBySlug: %v", err)
	}
	if p.Title != "Hello world" || len(p.Body) != 1 {
		t.Errorf("post = %+v", p)
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}
