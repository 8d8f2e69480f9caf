// Package analysis holds the word-frequency pipeline: tokenizing article
// text, stopword filtering, counting and source attribution.
package analysis

import (
	"regexp"
	"strings"
)

// MinTokenLength is the shortest run of letters kept as a word
const MinTokenLength = 3

var tagPattern = regexp.MustCompile(`<[^<]+?>`)

// StripTags removes markup tags from text. It works on characters only and
// never builds a tree, so malformed markup may leave fragments behind.
func StripTags(text string) string {
	if text == "" {
		return ""
	}
	return tagPattern.ReplaceAllString(text, "")
}

// Tokenize lowercases text and returns every maximal run of ASCII letters
// that is at least MinTokenLength long, in the order they appear. Any other
// character separates words.
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}

	lower := strings.ToLower(text)

	var tokens []string
	start := -1
	for i := 0; i < len(lower); i++ {
		if isLetter(lower[i]) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 && i-start >= MinTokenLength {
			tokens = append(tokens, lower[start:i])
		}
		start = -1
	}
	if start >= 0 && len(lower)-start >= MinTokenLength {
		tokens = append(tokens, lower[start:])
	}

	return tokens
}

func isLetter(b byte) bool {
	return b >= 'a' && b <= 'z'
}
