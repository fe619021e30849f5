// Package tokenizer splits free text into lower-cased word tokens.
package tokenizer

import (
	"iter"
	"strings"
	"unicode"
)

// IsWordRune reports whether r belongs to a word: any unicode letter or
// number, or underscore.
func IsWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

// Tokens returns the words of line, lower-cased, in order. The sequence is
// produced on demand and can be ranged over any number of times.
func Tokens(line string) iter.Seq[string] {
	return func(yield func(string) bool) {
		lowered := strings.ToLower(line)
		start := -1
		for i, r := range lowered {
			if IsWordRune(r) {
				if start < 0 {
					start = i
				}
				continue
			}
			if start >= 0 {
				if !yield(lowered[start:i]) {
					return
				}
				start = -1
			}
		}
		if start >= 0 {
			yield(lowered[start:])
		}
	}
}
