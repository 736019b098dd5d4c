package views

import (
	"html/template"
	"net/url"
	"strconv"
	"strings"
)

// PathEscape wraps url.PathEscape for use in templates.
func PathEscape(s string) string {
	return url.PathEscape(s)
}

// JoinTags formats a tag slice as a comma-separated string.
func JoinTags(tags []string) string {
	return strings.Join(tags, ", ")
}

// TagClass returns CSS classes for a tag pill, with active variant.
func TagClass(active bool) string {
	base := "inline-flex items-center rounded-full border border-gray-300 px-3 py-1 text-xs font-medium text-gray-700 hover:bg-gray-100 transition"
	if active {
		base += " bg-gray-900 text-white hover:bg-gray-800"
	}
	return base
}

// jsonLD marks a marshaled JSON-LD document as safe script content.
// encoding/json escapes <, > and & so the value cannot close the script.
func jsonLD(s string) template.JS {
	return template.JS(s)
}

func minutes(n int) string {
	if n <= 0 {
		return ""
	}
	if n == 1 {
		return "1 min read"
	}
	return strconv.Itoa(n) + " min read"
}

var funcs = template.FuncMap{
	"pathEscape": PathEscape,
	"joinTags":   JoinTags,
	"tagClass":   TagClass,
	"jsonLD":     jsonLD,
	"minutes":    minutes,
	"year":       currentYear,
}
