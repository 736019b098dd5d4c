package content

// Palette is the background/foreground class pair for a category badge.
type Palette struct {
	Background string
	Foreground string
}

// Classes joins the pair for a class attribute.
func (p Palette) Classes() string {
	return p.Background + " " + p.Foreground
}

// DefaultColor is used for absent or unknown color identifiers.
const DefaultColor = "blue"

var palettes = map[string]Palette{
	"red":    {"bg-red-100", "text-red-800"},
	"orange": {"bg-orange-100", "text-orange-800"},
	"yellow": {"bg-yellow-100", "text-yellow-800"},
	"green":  {"bg-green-100", "text-green-800"},
	"blue":   {"bg-blue-100", "text-blue-800"},
	"purple": {"bg-purple-100", "text-purple-800"},
	"pink":   {"bg-pink-100", "text-pink-800"},
}

// CategoryColor maps a color identifier to its palette entry.
func CategoryColor(id string) Palette {
	if p, ok := palettes[id]; ok {
		return p
	}
	return palettes[DefaultColor]
}
