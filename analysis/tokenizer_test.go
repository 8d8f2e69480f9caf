package analysis_test

import (
	"feedwords/analysis"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected []string
	}{
		{
			name:     "empty string",
			text:     "",
			expected: nil,
		},
		{
			name:     "only short words",
			text:     "a an of to",
			expected: nil,
		},
		{
			name:     "lowercases words",
			text:     "Cats and DOGS",
			expected: []string{"cats", "and", "dogs"},
		},
		{
			name:     "keeps repeats",
			text:     "climate climate Climate",
			expected: []string{"climate", "climate", "climate"},
		},
		{
			name:     "digits separate words",
			text:     "abc123def covid19",
			expected: []string{"abc", "def", "covid"},
		},
		{
			name:     "punctuation separates words",
			text:     "hello,world! don't re-use e-mail",
			expected: []string{"hello", "world", "don", "use", "mail"},
		},
		{
			name:     "non ascii letters separate words",
			text:     "café naïve Blåbær",
			expected: []string{"caf"},
		},
		{
			name:     "whitespace and newlines",
			text:     "\tfirst\nsecond  third\r\n",
			expected: []string{"first", "second", "third"},
		},
		{
			name:     "word at end of input",
			text:     "...end",
			expected: []string{"end"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, analysis.Tokenize(tt.text))
		})
	}
}

func TestTokenizeOnlyYieldsLowercaseLetterRuns(t *testing.T) {
	valid := regexp.MustCompile(`^[a-z]{3,}$`)
	inputs := []string{
		"The Quick Brown Fox Jumps Over 13 Lazy Dogs!",
		"<p>Markup &amp; entities &#8217; survive as text</p>",
		"Ünïcödé ☕ emoji 🎉 and TABS\tand 2024-01-01",
		"snake_case camelCase kebab-case UPPER",
	}

	for _, input := range inputs {
		for _, token := range analysis.Tokenize(input) {
			assert.Regexp(t, valid, token, "input %q", input)
		}
	}
}

func TestStripTags(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{
			name:     "empty string",
			text:     "",
			expected: "",
		},
		{
			name:     "plain text",
			text:     "no markup here",
			expected: "no markup here",
		},
		{
			name:     "simple tags",
			text:     "<p>Dogs are <b>great</b> pets</p>",
			expected: "Dogs are great pets",
		},
		{
			name:     "tags with attributes",
			text:     `<a href="http://a/1" class="x">link</a> text`,
			expected: "link text",
		},
		{
			name:     "unclosed tag is kept",
			text:     "broken <img src='x' and more",
			expected: "broken <img src='x' and more",
		},
		{
			name:     "nested brackets leave fragments",
			text:     "<<a>b>",
			expected: "<b>",
		},
		{
			name:     "empty brackets are not a tag",
			text:     "a <> b",
			expected: "a <> b",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, analysis.StripTags(tt.text))
		})
	}
}
