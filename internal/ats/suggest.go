package ats

import (
	"fmt"
	"strings"
)

const (
	highImportance  = 2.0
	passingScore    = 70
	weakCategoryMax = 50.0
)

var genericAdvice = []string{
	`Add quantifiable achievements (e.g., "Improved performance by 25%")`,
	"Use action verbs and specific examples",
}

// generateSuggestions appends gap-driven advice to the missing-skill suggestions
// already in res. A skill can be reported both as missing and as high importance.
func generateSuggestions(res AnalysisResult, kw JobKeywords, categories []string) []string {
	out := make([]string, 0, len(res.Suggestions)+4)
	out = append(out, res.Suggestions...)

	for _, category := range categories {
		for _, r := range kw.Skills[category] {
			if r.Importance > highImportance && !isMatched(res.MatchedSkills[category], r.Skill) {
				out = append(out, fmt.Sprintf("Consider adding %q — high importance skill", r.Skill))
			}
		}
	}

	if res.OverallScore < passingScore {
		out = append(out, genericAdvice...)
	}

	var weak []string
	for _, category := range categories {
		if score, ok := res.SkillScores[category]; ok && score < weakCategoryMax {
			weak = append(weak, category)
		}
	}
	if len(weak) > 0 {
		out = append(out, fmt.Sprintf("Focus on improving %s sections", strings.Join(weak, ", ")))
	}
	return out
}

func isMatched(matches []SkillMatch, skill string) bool {
	for _, m := range matches {
		if m.Skill == skill {
			return true
		}
	}
	return false
}
