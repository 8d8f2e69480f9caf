package analysis

import (
	"feedwords/models"
	"sort"
)

// FrequencyTable counts words and remembers the order in which each distinct
// word was first seen, which breaks ties when ranking.
type FrequencyTable struct {
	counts map[string]int
	order  []string
}

func NewFrequencyTable() *FrequencyTable {
	return &FrequencyTable{counts: make(map[string]int)}
}

func (f *FrequencyTable) Add(word string) {
	if _, ok := f.counts[word]; !ok {
		f.order = append(f.order, word)
	}
	f.counts[word]++
}

func (f *FrequencyTable) AddAll(words []string) {
	for _, w := range words {
		f.Add(w)
	}
}

func (f *FrequencyTable) Count(word string) int {
	if f == nil {
		return 0
	}
	return f.counts[word]
}

// Len is the number of distinct words
func (f *FrequencyTable) Len() int {
	if f == nil {
		return 0
	}
	return len(f.order)
}

// Words returns the distinct words in first-seen order
func (f *FrequencyTable) Words() []string {
	if f == nil {
		return nil
	}
	words := make([]string, len(f.order))
	copy(words, f.order)
	return words
}

// Top returns the n most frequent words, highest first. Words with equal
// counts keep their first-seen order. n <= 0 returns every word.
func (f *FrequencyTable) Top(n int) []models.WordCount {
	if f == nil {
		return []models.WordCount{}
	}

	ranked := make([]models.WordCount, len(f.order))
	for i, w := range f.order {
		ranked[i] = models.WordCount{Word: w, Frequency: f.counts[w]}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Frequency > ranked[j].Frequency
	})

	if n > 0 && n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}
