package imageurl

import (
	"net/url"
	"testing"
)

func TestURLFromAssetID(t *testing.T) {
	b := NewBuilder("abc123", "production")
	img := Image{Asset: &Asset{ID: "image-f00ba4-2000x1333-jpg"}}

	got, ok := b.URL(img, 1200, 630)
	if !ok {
		t.Fatalf("expected url for asset id")
	}
	u, err := url.Parse(got)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	if u.Host != "cdn.sanity.io" {
		t.Errorf("host = %q, want cdn.sanity.io", u.Host)
	}
	if u.Path != "/images/abc123/production/f00ba4-2000x1333.jpg" {
		t.Errorf("path = %q", u.Path)
	}
	q := u.Query()
	want := map[string]string{"w": "1200", "h": "630", "fit": "crop", "crop": "center", "fm": "webp"}
	for k, v := range want {
		if q.Get(k) != v {
			t.Errorf("query %s = %q, want %q", k, q.Get(k), v)
		}
	}
}

func TestURLPrefersAssetURL(t *testing.T) {
	b := NewBuilder("abc123", "production")
	img := Image{Asset: &Asset{ID: "image-f00ba4-2000x1333-jpg", URL: "https://cdn.example.com/a.jpg"}}

	got, ok := b.URL(img, 400, 300)
	if !ok {
		t.Fatalf("expected url")
	}
	if got != "https://cdn.example.com/a.jpg?crop=center&fit=crop&fm=webp&h=300&w=400" {
		t.Errorf("url = %q", got)
	}
}

func TestURLMissingAsset(t *testing.T) {
	b := NewBuilder("abc123", "production")
	tests := []struct {
		name string
		img  Image
	}{
		{"nil asset", Image{Alt: "nothing"}},
		{"unparseable id", Image{Asset: &Asset{ID: "file-xyz"}}},
		{"empty asset", Image{Asset: &Asset{}}},
	}
	for _, tt := range tests {
		if got, ok := b.URL(tt.img, 10, 10); ok || got != "" {
			t.Errorf("%s: URL = %q, %v; want empty, false", tt.name, got, ok)
		}
	}
}

func TestURLOrEmptyNilImage(t *testing.T) {
	b := NewBuilder("p", "d")
	if got := b.URLOrEmpty(nil, 10, 10); got != "" {
		t.Errorf("URLOrEmpty(nil) = %q, want empty", got)
	}
}
