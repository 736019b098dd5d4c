// Package richtext models block-structured rich-text bodies as delivered by the
// CMS and derives plain text, excerpts, reading time and HTML from them.
package richtext

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/eringen/pressfront/imageurl"
)

const (
	// DefaultExcerptLength is the excerpt size used when callers pass a non-positive max.
	DefaultExcerptLength = 160
	// Ellipsis is appended to truncated excerpts.
	Ellipsis = "..."
	// WordsPerMinute is the reading speed used by ReadingTime.
	WordsPerMinute = 200
)

// Block is one entry of a rich-text body: a *TextBlock, *ImageBlock or *UnknownBlock.
type Block interface {
	blockType() string
}

// TextBlock is a paragraph, heading, quote or list item made of spans.
type TextBlock struct {
	Key      string    `json:"_key,omitempty"`
	Style    string    `json:"style,omitempty"`
	ListItem string    `json:"listItem,omitempty"`
	Level    int       `json:"level,omitempty"`
	Children []Span    `json:"children"`
	MarkDefs []MarkDef `json:"markDefs,omitempty"`
}

// ImageBlock is an embedded image asset.
type ImageBlock struct {
	Key     string          `json:"_key,omitempty"`
	Asset   *imageurl.Asset `json:"asset,omitempty"`
	Alt     string          `json:"alt,omitempty"`
	Caption string          `json:"caption,omitempty"`
}

// UnknownBlock keeps blocks of a kind this package does not understand.
// It contributes nothing to text extraction or rendering.
type UnknownBlock struct {
	Type string
	Raw  json.RawMessage
}

func (*TextBlock) blockType() string { return "block" }
func (*ImageBlock) blockType() string { return "image" }
func (b *UnknownBlock) blockType() string { return b.Type }

// Image returns the block as an imageurl.Image.
func (b *ImageBlock) Image() imageurl.Image {
	return imageurl.Image{Asset: b.Asset, Alt: b.Alt}
}

// Span is a run of text with inline marks. Non-span children decode with
// Unknown set and are ignored.
type Span struct {
	Key     string   `json:"_key,omitempty"`
	Text    string   `json:"text"`
	Marks   []string `json:"marks,omitempty"`
	Unknown bool     `json:"-"`
}

// MarkDef is an annotation referenced from Span.Marks, e.g. a link.
type MarkDef struct {
	Key   string `json:"_key"`
	Type  string `json:"_type"`
	Href  string `json:"href,omitempty"`
	Blank bool   `json:"blank,omitempty"`
}

// Body is an ordered sequence of blocks.
type Body []Block

type rawNode struct {
	Type string `json:"_type"`
}

// UnmarshalJSON decodes a block array. It never fails on unknown or
// malformed blocks; those become *UnknownBlock entries.
func (b *Body) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		// null, a bare object or any other non-array value: treat as empty.
		*b = nil
		return nil
	}
	out := make(Body, 0, len(raws))
	for _, raw := range raws {
		out = append(out, decodeBlock(raw))
	}
	*b = out
	return nil
}

func decodeBlock(raw json.RawMessage) Block {
	var node rawNode
	if err := json.Unmarshal(raw, &node); err != nil {
		return &UnknownBlock{Raw: raw}
	}
	switch node.Type {
	case "block":
		var tb struct {
			TextBlock
			Children []json.RawMessage `json:"children"`
		}
		if err := json.Unmarshal(raw, &tb); err != nil {
			return &UnknownBlock{Type: node.Type, Raw: raw}
		}
		blk := tb.TextBlock
		blk.Children = make([]Span, 0, len(tb.Children))
		for _, c := range tb.Children {
			blk.Children = append(blk.Children, decodeSpan(c))
		}
		return &blk
	case "image":
		var ib ImageBlock
		if err := json.Unmarshal(raw, &ib); err != nil {
			return &UnknownBlock{Type: node.Type, Raw: raw}
		}
		return &ib
	default:
		return &UnknownBlock{Type: node.Type, Raw: raw}
	}
}

func decodeSpan(raw json.RawMessage) Span {
	var node rawNode
	if err := json.Unmarshal(raw, &node); err != nil || node.Type != "span" {
		return Span{Unknown: true}
	}
	var s Span
	if err := json.Unmarshal(raw, &s); err != nil {
		return Span{Unknown: true}
	}
	return s
}

// MarshalJSON writes the body back in its wire shape.
func (b Body) MarshalJSON() ([]byte, error) {
	out := make([]json.RawMessage, 0, len(b))
	for _, blk := range b {
		var (
			data []byte
			err  error
		)
		switch v := blk.(type) {
		case *TextBlock:
			data, err = json.Marshal(struct {
				Type string `json:"_type"`
				*TextBlock
				Children []spanJSON `json:"children"`
			}{"block", v, spansJSON(v.Children)})
		case *ImageBlock:
			data, err = json.Marshal(struct {
				Type string `json:"_type"`
				*ImageBlock
			}{"image", v})
		case *UnknownBlock:
			if len(v.Raw) == 0 {
				continue
			}
			data = v.Raw
		}
		if err != nil {
			return nil, err
		}
		if data != nil {
			out = append(out, data)
		}
	}
	return json.Marshal(out)
}

type spanJSON struct {
	Type string `json:"_type"`
	Span
}

func spansJSON(spans []Span) []spanJSON {
	out := make([]spanJSON, 0, len(spans))
	for _, s := range spans {
		if s.Unknown {
			continue
		}
		out = append(out, spanJSON{Type: "span", Span: s})
	}
	return out
}

// PlainText concatenates the span text of every text block. Spans are joined
// without a separator, blocks with a blank line.
func PlainText(b Body) string {
	if len(b) == 0 {
		return ""
	}
	parts := make([]string, 0, len(b))
	for _, blk := range b {
		tb, ok := blk.(*TextBlock)
		if !ok || tb == nil {
			continue
		}
		parts = append(parts, blockText(tb))
	}
	return strings.Join(parts, "\n\n")
}

func blockText(tb *TextBlock) string {
	var sb strings.Builder
	for _, s := range tb.Children {
		if s.Unknown {
			continue
		}
		sb.WriteString(s.Text)
	}
	return sb.String()
}

// Excerpt returns the plain text cut to max characters with Ellipsis
// appended. The cut is not word aware and may split a word.
func Excerpt(b Body, max int) string {
	if max <= 0 {
		max = DefaultExcerptLength
	}
	text := PlainText(b)
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return strings.TrimRight(string(runes[:max]), " \t\r\n") + Ellipsis
}

// WordCount counts whitespace separated words in the plain text.
func WordCount(b Body) int {
	return len(strings.Fields(PlainText(b)))
}

// ReadingTime estimates minutes at WordsPerMinute, rounded up.
func ReadingTime(b Body) int {
	words := WordCount(b)
	if words == 0 {
		return 0
	}
	return int(math.Ceil(float64(words) / WordsPerMinute))
}
