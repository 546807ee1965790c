package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"plain", "Can my landlord keep my deposit?", 0, "Can my landlord keep my deposit?"},
		{"tags stripped", "<b>Hello</b> <i>world</i>", 0, "Hello world"},
		{"script dropped", "hi<script>alert(1)</script> there", 0, "hi there"},
		{"entities restored", "Tom & Jerry", 0, "Tom & Jerry"},
		{"whitespace collapsed", "  a \t\n b  ", 0, "a b"},
		{"control chars", "a\x07b\x1bc", 0, "abc"},
		{"capped in runes", "héllo wörld", 5, "héllo"},
		{"cap trims trailing space", "abc def", 4, "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeText(tt.in, tt.max))
		})
	}
}

func TestSanitizeMultiline(t *testing.T) {
	in := "First  line\r\nsecond\n\n\n\n<p>third</p>\n"
	assert.Equal(t, "First line\nsecond\n\nthird", SanitizeMultiline(in, 0))
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "jane@firm.com", NormalizeEmail("  Jane@Firm.COM "))
}
