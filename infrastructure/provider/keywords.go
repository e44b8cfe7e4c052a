package provider

import (
	"sort"
	"strings"
	"unicode"
)

// stopwords excluded from keyword candidates.
var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "but": true, "by": true, "for": true, "from": true,
	"has": true, "have": true, "in": true, "is": true, "it": true,
	"its": true, "of": true, "on": true, "or": true, "that": true,
	"the": true, "this": true, "to": true, "was": true, "were": true,
	"which": true, "with": true, "will": true, "not": true, "no": true,
}

// FrequencyKeywordExtractor ranks words by occurrence count. Ties break
// on first appearance so extraction is deterministic.
type FrequencyKeywordExtractor struct {
	minWordLength int
}

// NewFrequencyKeywordExtractor creates an extractor ignoring words
// shorter than three characters.
func NewFrequencyKeywordExtractor() *FrequencyKeywordExtractor {
	return &FrequencyKeywordExtractor{minWordLength: 3}
}

// Extract returns the top-n keywords by descending frequency.
func (e *FrequencyKeywordExtractor) Extract(text string, n int) []string {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)

	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
	for i, w := range words {
		if len(w) < e.minWordLength || stopwords[w] {
			continue
		}
		if _, seen := counts[w]; !seen {
			firstSeen[w] = i
		}
		counts[w]++
	}

	keywords := make([]string, 0, len(counts))
	for w := range counts {
		keywords = append(keywords, w)
	}
	sort.Slice(keywords, func(i, j int) bool {
		if counts[keywords[i]] != counts[keywords[j]] {
			return counts[keywords[i]] > counts[keywords[j]]
		}
		return firstSeen[keywords[i]] < firstSeen[keywords[j]]
	})

	if n > 0 && len(keywords) > n {
		keywords = keywords[:n]
	}
	return keywords
}
