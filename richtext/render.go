package richtext

import (
	"bytes"
	"context"
	"html"
	"io"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"github.com/microcosm-cc/bluemonday"

	"github.com/eringen/pressfront/imageurl"
)

// ImageURLFunc resolves an embedded image to a URL at the given size.
type ImageURLFunc func(img imageurl.Image, width, height int) (string, bool)

// RenderOptions configures Render.
type RenderOptions struct {
	ImageURL ImageURLFunc
}

var policy = newPolicy()

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Globally()
	p.AllowElements("figure", "figcaption")
	p.AllowAttrs("target").Matching(regexp.MustCompile(`^_blank$`)).OnElements("a")
	p.AllowAttrs("loading", "decoding", "fetchpriority").OnElements("img")
	return p
}

// Render returns a templ.Component that writes b as sanitized HTML.
func Render(b Body, opts RenderOptions) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		RenderHTML(&buf, b, opts)
		_, err := w.Write(policy.SanitizeBytes(buf.Bytes()))
		return err
	})
}

// RenderHTML writes the unsanitized HTML representation of b to buf.
func RenderHTML(buf *bytes.Buffer, b Body, opts RenderOptions) {
	imageCount := 0
	list := ""

	flushList := func() {
		if list != "" {
			buf.WriteString("</" + list + ">")
			list = ""
		}
	}

	for _, blk := range b {
		switch v := blk.(type) {
		case *TextBlock:
			if v.ListItem != "" {
				tag := "ul"
				if v.ListItem == "number" {
					tag = "ol"
				}
				if list != tag {
					flushList()
					buf.WriteString(`<` + tag + ` class="` + listClass(tag) + `">`)
					list = tag
				}
				buf.WriteString("<li>")
				buf.WriteString(FormatSpans(v))
				buf.WriteString("</li>")
				continue
			}
			flushList()
			tag, class := blockTag(v.Style)
			buf.WriteString(`<` + tag + ` class="` + class + `">`)
			buf.WriteString(FormatSpans(v))
			buf.WriteString("</" + tag + ">")
		case *ImageBlock:
			flushList()
			if opts.ImageURL == nil {
				continue
			}
			src, ok := opts.ImageURL(v.Image(), imageurl.InlineWidth, imageurl.InlineHeight)
			if !ok {
				continue
			}
			imageCount++
			loadAttr := `loading="lazy"`
			if imageCount == 1 {
				loadAttr = `fetchpriority="high"`
			}
			buf.WriteString(`<figure class="my-8">`)
			buf.WriteString(`<img ` + loadAttr + ` width="` + strconv.Itoa(imageurl.InlineWidth) + `" height="` + strconv.Itoa(imageurl.InlineHeight) +
				`" alt="` + html.EscapeString(v.Alt) + `" src="` + html.EscapeString(src) + `" class="rounded-lg w-full" decoding="async"/>`)
			if v.Caption != "" {
				buf.WriteString(`<figcaption class="mt-2 text-center text-sm text-gray-600">` + html.EscapeString(v.Caption) + `</figcaption>`)
			}
			buf.WriteString(`</figure>`)
		default:
			// unknown kinds render nothing
		}
	}
	flushList()
}

func blockTag(style string) (string, string) {
	switch style {
	case "h1":
		return "h1", "text-4xl font-bold mt-8 mb-4"
	case "h2":
		return "h2", "text-3xl font-bold mt-8 mb-4"
	case "h3":
		return "h3", "text-2xl font-semibold mt-6 mb-3"
	case "h4":
		return "h4", "text-xl font-semibold mt-6 mb-3"
	case "blockquote":
		return "blockquote", "border-l-4 border-blue-500 pl-4 italic my-6"
	default:
		return "p", "mb-4 leading-relaxed"
	}
}

func listClass(tag string) string {
	if tag == "ol" {
		return "list-decimal pl-6 mb-4"
	}
	return "list-disc pl-6 mb-4"
}

// FormatSpans renders the spans of a text block with their marks applied.
func FormatSpans(tb *TextBlock) string {
	defs := make(map[string]MarkDef, len(tb.MarkDefs))
	for _, d := range tb.MarkDefs {
		defs[d.Key] = d
	}
	var sb strings.Builder
	for _, s := range tb.Children {
		if s.Unknown {
			continue
		}
		text := html.EscapeString(s.Text)
		for _, m := range s.Marks {
			text = applyMark(text, m, defs)
		}
		sb.WriteString(text)
	}
	return sb.String()
}

func applyMark(text, mark string, defs map[string]MarkDef) string {
	switch mark {
	case "strong":
		return "<strong>" + text + "</strong>"
	case "em":
		return "<em>" + text + "</em>"
	case "code":
		return `<code class="bg-gray-100 rounded px-1 py-0.5 text-sm">` + text + "</code>"
	case "underline":
		return "<u>" + text + "</u>"
	case "strike-through":
		return "<s>" + text + "</s>"
	}
	def, ok := defs[mark]
	if !ok || def.Type != "link" {
		return text
	}
	href := SafeURL(def.Href)
	if href == "" {
		return text
	}
	attrs := `class="text-blue-600 underline"`
	if def.Blank {
		attrs += ` target="_blank" rel="noopener noreferrer"`
	}
	return `<a href="` + href + `" ` + attrs + `>` + text + `</a>`
}

// SafeURL validates a link target for use in an href attribute. Relative
// paths, fragments and http(s)/mailto/tel URLs are allowed.
func SafeURL(raw string) string {
	val := strings.TrimSpace(raw)
	if val == "" {
		return ""
	}
	if strings.HasPrefix(val, "/") || strings.HasPrefix(val, "#") {
		return html.EscapeString(val)
	}
	parsed, err := url.Parse(val)
	if err != nil || parsed.Scheme == "" {
		return ""
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https", "mailto", "tel":
		return html.EscapeString(val)
	default:
		return ""
	}
}
