package extract

import (
	"regexp"
	"sort"
	"strings"
)

// MaxKeywords is the default cap on keywords extracted per article.
const MaxKeywords = 10

const cveWeight = 5

var (
	cvePattern  = regexp.MustCompile(`\b(?i:CVE)-\d{4}-\d{4,}\b`)
	wordPattern = regexp.MustCompile(`\b[a-zA-Z][a-zA-Z0-9]{2,}\b`)
)

var stopwords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(
		"the and is in it to of for with on that this be are as at have has was " +
			"were from by not or an but a they we their our you i he she will would " +
			"could can may should been his her them about there these those who what " +
			"when where") {
		stopwords[w] = struct{}{}
	}
}

// Keywords extracts up to max keywords from text by frequency analysis.
// Security advisory identifiers (CVE-YYYY-NNNN+) carry extra weight per
// occurrence. Ties keep first-encountered order, so output is
// deterministic for identical input.
func Keywords(text string, max int) []string {
	counts := make(map[string]int)
	var order []string

	bump := func(term string, n int) {
		if _, seen := counts[term]; !seen {
			order = append(order, term)
		}
		counts[term] += n
	}

	for _, word := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		if _, skip := stopwords[word]; skip {
			continue
		}
		bump(word, 1)
	}

	for _, id := range cvePattern.FindAllString(text, -1) {
		bump(id, cveWeight)
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if len(order) > max {
		order = order[:max]
	}
	return order
}
