package utils

import (
	"strings"
)

// NormalizeTerm canonicalizes a facet term (specialty, insurer, language) for
// comparison: lowercased, trimmed, inner whitespace collapsed.
func NormalizeTerm(term string) string {
	return strings.Join(strings.Fields(strings.ToLower(term)), " ")
}

// NormalizeTerms canonicalizes a term list, dropping empties and duplicates
// while preserving first-seen order.
func NormalizeTerms(terms []string) []string {
	seen := make(map[string]struct{}, len(terms))
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		n := NormalizeTerm(t)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// CountMatches returns how many requested terms appear in the candidate list,
// comparing normalized forms.
func CountMatches(requested, candidates []string) int {
	if len(requested) == 0 || len(candidates) == 0 {
		return 0
	}

	have := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		have[NormalizeTerm(c)] = struct{}{}
	}

	matched := 0
	for _, r := range NormalizeTerms(requested) {
		if _, ok := have[r]; ok {
			matched++
		}
	}
	return matched
}
