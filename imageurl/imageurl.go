// Package imageurl builds image CDN URLs for CMS image assets.
//
// Every URL requests a center-anchored crop to the exact target size in WebP
// format. Only the dimensions are chosen by callers.
package imageurl

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// DefaultBaseURL is the image CDN host.
const DefaultBaseURL = "https://cdn.sanity.io"

// Sizes used across the site.
const (
	CardWidth          = 400
	CardHeight         = 300
	FeaturedCardWidth  = 600
	FeaturedCardHeight = 400
	SocialWidth        = 1200
	SocialHeight       = 630
	InlineWidth        = 800
	InlineHeight       = 600
)

// Asset is a dereferenced image asset. Either field may be empty.
type Asset struct {
	ID  string `json:"_id,omitempty"`
	URL string `json:"url,omitempty"`
}

// Image is an image reference with optional alt text.
type Image struct {
	Asset *Asset `json:"asset,omitempty"`
	Alt   string `json:"alt,omitempty"`
}

// image-<hash>-<width>x<height>-<format>
var reAssetID = regexp.MustCompile(`^image-([A-Za-z0-9]+)-(\d+x\d+)-([a-z0-9]+)$`)

// Builder derives CDN URLs for a project's dataset.
type Builder struct {
	BaseURL   string
	ProjectID string
	Dataset   string
}

// NewBuilder returns a Builder pointed at DefaultBaseURL.
func NewBuilder(projectID, dataset string) *Builder {
	return &Builder{BaseURL: DefaultBaseURL, ProjectID: projectID, Dataset: dataset}
}

// URL returns the cropped WebP URL for img at width×height. The boolean is
// false when the image has no usable asset, in which case callers render a
// fallback.
func (b *Builder) URL(img Image, width, height int) (string, bool) {
	if img.Asset == nil {
		return "", false
	}
	base, ok := b.assetBase(*img.Asset)
	if !ok {
		return "", false
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", false
	}
	q := u.Query()
	if width > 0 {
		q.Set("w", strconv.Itoa(width))
	}
	if height > 0 {
		q.Set("h", strconv.Itoa(height))
	}
	q.Set("fit", "crop")
	q.Set("crop", "center")
	q.Set("fm", "webp")
	u.RawQuery = q.Encode()
	return u.String(), true
}

// URLOrEmpty is URL without the boolean, for templates.
func (b *Builder) URLOrEmpty(img *Image, width, height int) string {
	if img == nil {
		return ""
	}
	s, _ := b.URL(*img, width, height)
	return s
}

func (b *Builder) assetBase(a Asset) (string, bool) {
	if a.URL != "" {
		return a.URL, true
	}
	m := reAssetID.FindStringSubmatch(a.ID)
	if m == nil || b.ProjectID == "" || b.Dataset == "" {
		return "", false
	}
	base := b.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	return strings.TrimSuffix(base, "/") + "/images/" + b.ProjectID + "/" + b.Dataset + "/" + m[1] + "-" + m[2] + "." + m[3], true
}
