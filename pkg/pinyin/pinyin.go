/*
Package pinyin normalizes mixed Chinese/English text into canonical
sequences of pinyin syllable tokens.

Han characters resolve to their first dictionary reading via go-pinyin.
Runs of Latin letters are treated as already-romanized pinyin and split
into syllables; runs that are not valid pinyin stay whole as a single
token. Anything else passes through one grapheme per token.
*/
package pinyin

import (
	"strings"
	"unicode"
	"unicode/utf8"

	gopinyin "github.com/mozillazg/go-pinyin"

	"github.com/youhengchan/mohu/internal/utils"
)

// Converter turns text into pinyin token sequences. A converter is
// immutable and safe for concurrent use.
type Converter struct {
	ignoreTones bool
	args        gopinyin.Args
}

// NewConverter returns a converter. With ignoreTones, syllables are bare
// letters ("bei"); otherwise they carry a trailing tone digit ("bei3").
func NewConverter(ignoreTones bool) *Converter {
	args := gopinyin.NewArgs()
	if ignoreTones {
		args.Style = gopinyin.Normal
	} else {
		args.Style = gopinyin.Tone3
	}
	return &Converter{ignoreTones: ignoreTones, args: args}
}

// IgnoreTones reports the tone handling this converter was built with.
func (c *Converter) IgnoreTones() bool {
	return c.ignoreTones
}

// Convert maps text to its ordered pinyin token sequence. Empty input
// yields nil; any other input yields at least one token.
func (c *Converter) Convert(text string) []string {
	if text == "" {
		return nil
	}
	var tokens []string
	var run strings.Builder

	flush := func() {
		if run.Len() == 0 {
			return
		}
		tokens = append(tokens, c.splitRun(run.String())...)
		run.Reset()
	}

	for _, cluster := range utils.Graphemes(text) {
		r, size := utf8.DecodeRuneInString(cluster)
		single := size == len(cluster)
		switch {
		case unicode.Is(unicode.Han, r):
			flush()
			if readings := gopinyin.SinglePinyin(r, c.args); len(readings) > 0 {
				tokens = append(tokens, readings[0])
			} else {
				// No reading, keep the character itself.
				tokens = append(tokens, cluster)
			}
		case single && isASCIILetter(r):
			run.WriteRune(unicode.ToLower(r))
		case single && isToneDigit(r) && endsWithLetter(run.String()):
			// A tone digit directly after letters annotates the syllable
			// it follows; the segmenter decides whether to keep it.
			run.WriteRune(r)
		default:
			flush()
			tokens = append(tokens, cluster)
		}
	}
	flush()
	return tokens
}

// splitRun segments a romanized run into syllable tokens. Longest syllables
// are preferred, with backtracking so "beijing" resolves to bei+jing even
// though no 4-letter prefix is a syllable. A run that cannot be fully
// segmented is returned unchanged as one token.
func (c *Converter) splitRun(run string) []string {
	src := run
	if c.ignoreTones {
		src = stripToneDigits(src)
		if src == "" {
			return nil
		}
	}
	if tokens, ok := segment(src, !c.ignoreTones); ok {
		return tokens
	}
	return []string{run}
}

func segment(s string, keepTones bool) ([]string, bool) {
	if s == "" {
		return nil, true
	}
	limit := maxSyllableLen
	if limit > len(s) {
		limit = len(s)
	}
	for l := limit; l >= 1; l-- {
		head := s[:l]
		if !syllables[head] {
			continue
		}
		next := l
		if keepTones && next < len(s) && isToneDigit(rune(s[next])) {
			head = s[:next+1]
			next++
		}
		rest, ok := segment(s[next:], keepTones)
		if ok {
			return append([]string{head}, rest...), true
		}
	}
	return nil, false
}

func stripToneDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if isToneDigit(r) {
			return -1
		}
		return r
	}, s)
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isToneDigit(r rune) bool {
	return r >= '1' && r <= '5'
}

func endsWithLetter(s string) bool {
	if s == "" {
		return false
	}
	last := s[len(s)-1]
	return last >= 'a' && last <= 'z'
}
