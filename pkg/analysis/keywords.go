package analysis

import (
	"sort"
	"strings"
)

const (
	DefaultKeywordCount = 10
	minKeywordLength    = 3
)

var stopwords = map[string]bool{}

func init() {
	for _, w := range strings.Fields(`a about above after again against all am an and any are as at be
		because been before being below between both but by can could did do does doing down during
		each few for from further had has have having he her here hers herself him himself his how i
		if in into is it its itself just me more most my myself no nor not now of off on once only or
		other our ours ourselves out over own same she should so some such than that the their theirs
		them themselves then there these they this those through to too under until up very was we
		were what when where which while who whom why will with would you your yours yourself
		yourselves also get got one much many really still even well i'm it's don't can't dont cant
		thanks thank please hi hello hey`) {
		stopwords[w] = true
	}
}

// ExtractKeywords returns up to n of the most frequent non-stopword terms,
// ties broken by first appearance.
func ExtractKeywords(text string, n int) []string {
	return topTerms(tokenize(text), n)
}

// TrendingTopics aggregates keywords across many texts, counting each
// term at most once per text.
func TrendingTopics(texts []string, n int) []string {
	var terms []string
	for _, t := range texts {
		seen := map[string]bool{}
		for _, w := range tokenize(t) {
			if !seen[w] {
				seen[w] = true
				terms = append(terms, w)
			}
		}
	}
	return topTerms(terms, n)
}

func topTerms(words []string, n int) []string {
	if n <= 0 {
		return []string{}
	}

	counts := map[string]int{}
	order := map[string]int{}
	for _, w := range words {
		w = strings.Trim(w, "'")
		if len([]rune(w)) < minKeywordLength || stopwords[w] || isNumber(w) {
			continue
		}
		if _, ok := order[w]; !ok {
			order[w] = len(order)
		}
		counts[w]++
	}

	terms := make([]string, 0, len(counts))
	for w := range counts {
		terms = append(terms, w)
	}
	sort.Slice(terms, func(i, j int) bool {
		if counts[terms[i]] != counts[terms[j]] {
			return counts[terms[i]] > counts[terms[j]]
		}
		return order[terms[i]] < order[terms[j]]
	})

	if len(terms) > n {
		terms = terms[:n]
	}
	return terms
}

func isNumber(w string) bool {
	for _, r := range w {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
