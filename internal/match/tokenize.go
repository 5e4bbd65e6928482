package match

import (
	"strings"
	"unicode"
)

// stopWords are filtered out before similarity scoring. The list covers
// English; tokens of length two or less never survive tokenization, so
// short function words need no entry.
var stopWords = map[string]bool{
	"about": true, "above": true, "after": true, "again": true,
	"against": true, "all": true, "and": true, "any": true, "are": true,
	"because": true, "been": true, "before": true, "being": true,
	"below": true, "between": true, "both": true, "but": true, "can": true,
	"did": true, "does": true, "doing": true, "down": true, "during": true,
	"each": true, "few": true, "for": true, "from": true, "further": true,
	"had": true, "has": true, "have": true, "having": true, "her": true,
	"here": true, "hers": true, "him": true, "his": true, "how": true,
	"into": true, "its": true, "itself": true, "just": true, "more": true,
	"most": true, "not": true, "now": true, "off": true, "once": true,
	"only": true, "other": true, "our": true, "ours": true, "out": true,
	"over": true, "own": true, "same": true, "she": true, "should": true,
	"some": true, "such": true, "than": true, "that": true, "the": true,
	"their": true, "theirs": true, "them": true, "then": true,
	"there": true, "these": true, "they": true, "this": true,
	"those": true, "through": true, "too": true, "under": true,
	"until": true, "very": true, "was": true, "were": true, "what": true,
	"when": true, "where": true, "which": true, "while": true, "who": true,
	"whom": true, "why": true, "will": true, "with": true, "you": true,
	"your": true,
}

// Tokenize lowercases text, splits it on non-alphanumeric runs, and keeps
// keyword tokens: longer than two characters, not purely numeric, not a
// stop word. The result is deduplicated in first-occurrence order.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	seen := make(map[string]bool, len(fields))
	var tokens []string
	for _, field := range fields {
		if len(field) <= 2 || stopWords[field] || isNumeric(field) {
			continue
		}
		if seen[field] {
			continue
		}
		seen[field] = true
		tokens = append(tokens, field)
	}
	return tokens
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return len(s) > 0
}

// Similarity scores two token sets: an exact token match counts 1, a
// substring containment between tokens counts 0.5, normalized by the size
// of the smaller set. Empty input on either side scores 0.
func Similarity(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	smaller, larger := a, b
	if len(b) < len(a) {
		smaller, larger = b, a
	}

	largerSet := make(map[string]bool, len(larger))
	for _, tok := range larger {
		largerSet[tok] = true
	}

	var sum float64
	for _, tok := range smaller {
		if largerSet[tok] {
			sum += 1
			continue
		}
		for _, other := range larger {
			if strings.Contains(other, tok) || strings.Contains(tok, other) {
				sum += 0.5
				break
			}
		}
	}
	return sum / float64(len(smaller))
}
