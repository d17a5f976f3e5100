package profiler

import (
	"sort"
	"unicode"
)

const maxPatternExamples = 3

// patternOf reduces a value to its structural signature: every decimal digit
// becomes '9', every letter becomes 'A', everything else stays verbatim.
func patternOf(s string) string {
	out := []rune(s)
	for i, r := range out {
		switch {
		case unicode.IsDigit(r):
			out[i] = '9'
		case unicode.IsLetter(r):
			out[i] = 'A'
		}
	}
	return string(out)
}

// MinePatterns ranks the structural patterns of up to sampleSize values and
// returns the top maxPatterns by frequency, each with up to three example
// values in original scan order. The sample cap keeps cost bounded on long
// columns; pattern statistics are approximate for larger inputs by design.
func MinePatterns(values []string, sampleSize, maxPatterns int) []Pattern {
	if len(values) == 0 {
		return []Pattern{}
	}
	if sampleSize > 0 && len(values) > sampleSize {
		values = values[:sampleSize]
	}

	counts := make(map[string]int64)
	examples := make(map[string][]string)
	for _, v := range values {
		p := patternOf(v)
		counts[p]++
		if len(examples[p]) < maxPatternExamples {
			examples[p] = append(examples[p], v)
		}
	}

	ranked := make([]Pattern, 0, len(counts))
	for p, c := range counts {
		ranked = append(ranked, Pattern{
			Pattern:    p,
			Count:      c,
			Percentage: percentOf(c, int64(len(values))),
			Examples:   examples[p],
		})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Pattern < ranked[j].Pattern
	})

	if maxPatterns > 0 && len(ranked) > maxPatterns {
		ranked = ranked[:maxPatterns]
	}
	return ranked
}
