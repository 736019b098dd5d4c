package content

import (
	"context"
	"encoding/json"
	"time"
)

// Params are named query parameters. Values are passed to the store as
// parameters and never spliced into query text.
type Params map[string]any

// FetchOptions carries hints for the store or transport.
type FetchOptions struct {
	// Revalidate is how long a cached result may be served before refetching.
	// Zero disables caching.
	Revalidate time.Duration
}

// Fetcher executes catalog queries. A JSON null result means no document.
type Fetcher interface {
	Fetch(ctx context.Context, q Query, params Params, opts FetchOptions) (json.RawMessage, error)
}

// Query is a named entry of the query catalog.
type Query struct {
	Name string
	GROQ string
}

func (q Query) String() string { return q.Name }

const published = `_type == "post" && !(_id in path("drafts.**")) && defined(slug.current) && publishedAt <= now()`

const postFields = `
  _id,
  title,
  slug,
  excerpt,
  mainImage { asset-> { _id, url }, alt },
  categories[]-> { _id, title, slug, color },
  tags,
  author-> { _id, name, slug },
  publishedAt,
  estimatedReadingTime,
  featured,
  _createdAt,
  _updatedAt
`

const postDetailFields = postFields + `,
  body,
  seo { metaTitle, metaDescription }
`

const categoryFields = `
  _id,
  title,
  slug,
  description,
  color,
  _createdAt,
  _updatedAt
`

// The query catalog. Every post query is restricted to published posts and
// ordered by publish time, newest first. Ranges are half-open.
var (
	PostsQuery = Query{"posts", `*[` + published + `] | order(publishedAt desc) [$start...$end] {` + postFields + `}`}

	FeaturedPostsQuery = Query{"featuredPosts", `*[` + published + ` && featured == true] | order(publishedAt desc) [0...3] {` + postFields + `}`}

	RecentPostsQuery = Query{"recentPosts", `*[` + published + `] | order(publishedAt desc) [0...$limit] {` + postFields + `}`}

	FeedPostsQuery = Query{"feedPosts", `*[` + published + `] | order(publishedAt desc) [0...$limit] {` + postFields + `, body}`}

	PostQuery = Query{"post", `*[` + published + ` && slug.current == $slug][0] {` + postDetailFields + `}`}

	PostPathsQuery = Query{"postPaths", `*[` + published + `] { "slug": slug.current }`}

	PostsByCategoryQuery = Query{"postsByCategory", `*[` + published + ` && $categoryId in categories[]._ref] | order(publishedAt desc) [$start...$end] {` + postFields + `}`}

	PostsByTagQuery = Query{"postsByTag", `*[` + published + ` && $tag in tags] | order(publishedAt desc) [$start...$end] {` + postFields + `}`}

	PostsByAuthorQuery = Query{"postsByAuthor", `*[` + published + ` && author._ref == $authorId] | order(publishedAt desc) [$start...$end] {` + postFields + `}`}

	SearchPostsQuery = Query{"searchPosts", `*[` + published + ` && (
    string::startsWith(lower(title), lower($searchTerm)) ||
    string::startsWith(lower(excerpt), lower($searchTerm)) ||
    count(tags[string::startsWith(lower(@), lower($searchTerm))]) > 0
  )] | order(publishedAt desc) [0...20] {` + postFields + `}`}

	RelatedPostsQuery = Query{"relatedPosts", `*[` + published + ` && _id != $currentPostId && (
    count(categories[@._ref in $categoryIds]) > 0 ||
    count(tags[@ in $tags]) > 0
  )] | order(publishedAt desc) [0...3] {` + postFields + `}`}

	CategoriesQuery = Query{"categories", `*[_type == "category"] | order(title asc) {` + categoryFields + `,
  "postCount": count(*[` + published + ` && references(^._id)])
}`}

	CategoryQuery = Query{"category", `*[_type == "category" && slug.current == $slug][0] {` + categoryFields + `}`}

	CategoryPathsQuery = Query{"categoryPaths", `*[_type == "category" && defined(slug.current)] { "slug": slug.current }`}

	SitemapQuery = Query{"sitemap", `{
  "posts": *[` + published + `] { "slug": slug.current, publishedAt, _updatedAt },
  "categories": *[_type == "category" && defined(slug.current)] { "slug": slug.current, _updatedAt }
}`}

	CountsQuery = Query{"counts", `{
  "posts": count(*[` + published + `]),
  "categories": count(*[_type == "category"])
}`}
)

// Catalog lists every query, for backends that dispatch by name.
var Catalog = []Query{
	PostsQuery, FeaturedPostsQuery, RecentPostsQuery, FeedPostsQuery, PostQuery, PostPathsQuery,
	PostsByCategoryQuery, PostsByTagQuery, PostsByAuthorQuery, SearchPostsQuery,
	RelatedPostsQuery, CategoriesQuery, CategoryQuery, CategoryPathsQuery,
	SitemapQuery, CountsQuery,
}

// Lookup returns the catalog query called name.
func Lookup(name string) (Query, bool) {
	for _, q := range Catalog {
		if q.Name == name {
			return q, true
		}
	}
	return Query{}, false
}

// Caps applied by the catalog.
const (
	FeaturedLimit = 3
	SearchLimit   = 20
	RelatedLimit  = 3
)
