// Package textnorm folds text for case and accent insensitive comparison,
// so that "CAFÉ", "Café" and "cafe" all compare equal.
package textnorm

import (
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// transform.Chain keeps state between calls, so each goroutine needs its own.
var foldPool = sync.Pool{
	New: func() interface{} {
		return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	},
}

// Normalize lowercases s and strips combining marks.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	lower := strings.ToLower(s)
	if isASCII(lower) {
		return lower
	}

	t := foldPool.Get().(transform.Transformer)
	defer foldPool.Put(t)

	out, _, err := transform.String(t, lower)
	if err != nil {
		return lower
	}
	return out
}

// Value normalizes v when it is a string. Any other value, nil included,
// normalizes to the empty string.
func Value(v interface{}) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return Normalize(s)
}

// Find returns the byte ranges of s covered by each non-overlapping
// occurrence of needle, where needle is already normalized and the
// comparison happens on the normalized form of s.
func Find(s, needle string) [][2]int {
	if s == "" || needle == "" {
		return nil
	}

	var (
		folded strings.Builder
		starts []int
		ends   []int
	)
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		f := Normalize(string(r))
		for j := 0; j < len(f); j++ {
			starts = append(starts, i)
			ends = append(ends, i+size)
		}
		folded.WriteString(f)
		i += size
	}

	hay := folded.String()
	var spans [][2]int
	for off := 0; off < len(hay); {
		k := strings.Index(hay[off:], needle)
		if k < 0 {
			break
		}
		k += off
		last := k + len(needle) - 1
		spans = append(spans, [2]int{starts[k], extendMarks(s, ends[last])})
		off = k + len(needle)
	}
	return spans
}

// extendMarks moves end past combining marks that fold to nothing.
func extendMarks(s string, end int) int {
	for end < len(s) {
		r, size := utf8.DecodeRuneInString(s[end:])
		if !unicode.Is(unicode.Mn, r) {
			break
		}
		end += size
	}
	return end
}

// Highlight wraps every occurrence of needle in s with open and close.
func Highlight(s, needle, open, close string) string {
	spans := Find(s, needle)
	if len(spans) == 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + len(spans)*(len(open)+len(close)))
	prev := 0
	for _, sp := range spans {
		b.WriteString(s[prev:sp[0]])
		b.WriteString(open)
		b.WriteString(s[sp[0]:sp[1]])
		b.WriteString(close)
		prev = sp[1]
	}
	b.WriteString(s[prev:])
	return b.String()
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
