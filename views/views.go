// Package views renders the site's pages. Each page function takes a fully
// prepared view model and returns a templ.Component; no page reaches back
// into the content store.
package views

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/a-h/templ"
)

//go:embed templates/*.html
var files embed.FS

var pages = mustParse(
	"home", "blog", "post", "listing", "categories", "search", "notfound", "error",
)

func mustParse(names ...string) map[string]*template.Template {
	base := template.Must(template.New("layout.html").Funcs(funcs).ParseFS(files, "templates/layout.html", "templates/partials.html"))
	out := make(map[string]*template.Template, len(names))
	for _, name := range names {
		t := template.Must(base.Clone())
		out[name] = template.Must(t.ParseFS(files, "templates/"+name+".html"))
	}
	return out
}

func currentYear() int {
	return time.Now().Year()
}

func page(name string, data any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		t, ok := pages[name]
		if !ok {
			return fmt.Errorf("views: unknown page %q", name)
		}
		return t.ExecuteTemplate(w, "layout", data)
	})
}

func Home(p HomePage) templ.Component             { return page("home", p) }
func Blog(p BlogPage) templ.Component             { return page("blog", p) }
func Post(p PostPage) templ.Component             { return page("post", p) }
func Listing(p ListingPage) templ.Component       { return page("listing", p) }
func Categories(p CategoriesPage) templ.Component { return page("categories", p) }
func Search(p SearchPage) templ.Component         { return page("search", p) }
func NotFound(p ErrorPage) templ.Component        { return page("notfound", p) }
func ServerError(p ErrorPage) templ.Component     { return page("error", p) }
