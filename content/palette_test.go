package content

import "testing"

func TestCategoryColorKnown(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"red", "bg-red-100 text-red-800"},
		{"orange", "bg-orange-100 text-orange-800"},
		{"yellow", "bg-yellow-100 text-yellow-800"},
		{"green", "bg-green-100 text-green-800"},
		{"blue", "bg-blue-100 text-blue-800"},
		{"purple", "bg-purple-100 text-purple-800"},
		{"pink", "bg-pink-100 text-pink-800"},
	}
	for _, tt := range tests {
		if got := CategoryColor(tt.id).Classes(); got != tt.want {
			t.Errorf("CategoryColor(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestCategoryColorFallsBackToBlue(t *testing.T) {
	blue := CategoryColor("blue")
	for _, id := range []string{"", "teal", "Blue", "RED", " red"} {
		if got := CategoryColor(id); got != blue {
			t.Errorf("CategoryColor(%q) = %+v, want blue %+v", id, got, blue)
		}
	}
}
