package utils

import "github.com/rivo/uniseg"

// Graphemes splits text into user-perceived characters (extended grapheme
// clusters). Combining marks stay attached to their base character, so a
// cluster like "é" is one element.
func Graphemes(text string) []string {
	if text == "" {
		return nil
	}
	out := make([]string, 0, len(text)/3+1)
	gr := uniseg.NewGraphemes(text)
	for gr.Next() {
		out = append(out, gr.Str())
	}
	return out
}
