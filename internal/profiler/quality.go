package profiler

import "math"

const (
	maxNullPenalty  = 30.0
	maxBlankPenalty = 20.0
)

// scoreQuality derives the quality score, completeness, uniqueness, and
// flagged issues for one column and writes them onto the profile.
//
// The diversity bonus is intentionally not capped: a complete, highly
// diverse column can score above 100. Clamping would change observable
// output, so only the floor at 0 is applied.
//
// Empty columns (totalValues == 0) follow a fixed convention instead of
// dividing by zero: score 100, completeness 100, uniqueness 0, no issues.
func scoreQuality(p *ColumnProfile) {
	p.PotentialIssues = []string{}

	if p.TotalValues == 0 {
		p.QualityScore = 100
		p.Completeness = 100
		p.Uniqueness = 0
		return
	}

	total := float64(p.TotalValues)
	nullPct := float64(p.NullCount) / total * 100
	blankPct := float64(p.BlankCount) / total * 100
	diversityPct := float64(p.DistinctCount) / total * 100

	score := 100.0
	if nullPct > 0 {
		score -= math.Min(nullPct, maxNullPenalty)
	}
	if blankPct > 0 {
		score -= math.Min(blankPct, maxBlankPenalty)
	}
	if diversityPct > 80 {
		score += 5
	} else if diversityPct < 10 {
		score -= 10
	}
	if score < 0 {
		score = 0
	}
	p.QualityScore = math.Round(score*10) / 10

	p.Completeness = round2(float64(p.TotalValues-p.NullCount) / total * 100)
	p.Uniqueness = round2(diversityPct)

	if nullPct > 50 {
		p.PotentialIssues = append(p.PotentialIssues, "High null percentage")
	}
	if blankPct > 20 {
		p.PotentialIssues = append(p.PotentialIssues, "High blank percentage")
	}
	if diversityPct < 5 {
		p.PotentialIssues = append(p.PotentialIssues, "Low data diversity")
	}
}
