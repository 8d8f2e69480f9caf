package analysis

import (
	"sort"
	"strings"

	"github.com/samber/lo"
)

// builtinStopwords are common English words that never make it into results
var builtinStopwords = []string{
	"a", "able", "after", "also", "am", "an", "and", "any", "are", "as", "at", "back",
	"bad", "be", "become", "been", "before", "being", "big", "but", "by", "came", "can",
	"come", "could", "day", "did", "different", "do", "does", "down", "early", "end", "few",
	"first", "for", "from", "get", "give", "go", "going", "good", "great", "had", "hand",
	"has", "have", "he", "her", "here", "high", "him", "his", "how", "i", "important", "in",
	"into", "is", "it", "its", "just", "know", "large", "last", "life", "like", "little",
	"long", "look", "made", "make", "man", "many", "may", "me", "might", "more", "much",
	"must", "my", "new", "next", "now", "of", "old", "on", "only", "or", "other", "our",
	"out", "over", "own", "part", "people", "place", "public", "put", "right", "said",
	"same", "say", "says", "see", "she", "should", "small", "so", "some", "still", "such",
	"take", "than", "that", "the", "their", "them", "then", "these", "they", "think",
	"this", "those", "through", "time", "to", "too", "try", "turn", "two", "up", "us",
	"use", "very", "want", "was", "way", "we", "well", "went", "were", "what", "when",
	"where", "why", "will", "with", "woman", "work", "would", "you", "young", "your",
}

var builtinSet = newSet(builtinStopwords)

// StopwordSet is the combined built-in and custom stopword set used for a pass.
// It is not modified after construction.
type StopwordSet struct {
	words map[string]struct{}
}

// NewStopwordSet returns the built-in stopwords plus the given custom words.
// Custom words are trimmed and lowercased, blanks are dropped.
func NewStopwordSet(custom []string) *StopwordSet {
	words := make(map[string]struct{}, len(builtinSet)+len(custom))
	for w := range builtinSet {
		words[w] = struct{}{}
	}
	for _, w := range NormalizeStopwords(custom) {
		words[w] = struct{}{}
	}
	return &StopwordSet{words: words}
}

// NormalizeStopwords lowercases, trims and deduplicates user supplied words,
// keeping the first occurrence order.
func NormalizeStopwords(words []string) []string {
	normalized := lo.FilterMap(words, func(w string, _ int) (string, bool) {
		w = strings.ToLower(strings.TrimSpace(w))
		return w, w != ""
	})
	return lo.Uniq(normalized)
}

func (s *StopwordSet) Contains(word string) bool {
	if s == nil {
		return false
	}
	_, ok := s.words[word]
	return ok
}

func (s *StopwordSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.words)
}

// Filter returns the tokens that are not stopwords, keeping order and repeats
func (s *StopwordSet) Filter(tokens []string) []string {
	filtered := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if !s.Contains(t) {
			filtered = append(filtered, t)
		}
	}
	return filtered
}

// BuiltinStopwords returns a sorted copy of the built-in list
func BuiltinStopwords() []string {
	words := lo.Keys(builtinSet)
	sort.Strings(words)
	return words
}

func BuiltinStopwordCount() int {
	return len(builtinSet)
}

func newSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
