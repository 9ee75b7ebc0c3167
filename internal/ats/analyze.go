package ats

import "fmt"

// AnalyzeResume scores resume text against extracted job keywords.
func (e *Engine) AnalyzeResume(resume string, kw JobKeywords) AnalysisResult {
	text := e.clip(resume)
	res := AnalysisResult{
		MatchedSkills: make(map[string][]SkillMatch),
		SkillScores:   make(map[string]float64),
		Suggestions:   make([]string, 0, 4),
	}

	categories := e.tax.orderedCategories(kw.Skills)
	for _, category := range categories {
		reqs := kw.Skills[category]
		if len(reqs) == 0 {
			continue
		}
		matched, score, missing := matchCategory(text, reqs)
		res.MatchedSkills[category] = matched
		res.SkillScores[category] = score
		for _, skill := range missing {
			res.Suggestions = append(res.Suggestions, fmt.Sprintf("Add required skill: %s", skill))
		}
	}

	res.ExperienceScore = experienceScore(text, kw.MinExperience, e.now().Year())
	res.EducationScore = e.tax.educationScore(text, kw.Education)

	weights := map[string]float64{}
	var order []string
	if role, ok := e.tax.Role(kw.RoleType); ok {
		for _, w := range role.Weights {
			weights[w.Category] = w.Weight
			order = append(order, w.Category)
		}
	}
	res.OverallScore = aggregate(weights, order, res.SkillScores, res.ExperienceScore, res.EducationScore)

	res.Suggestions = generateSuggestions(res, kw, categories)
	return res
}

// matchCategory checks each requirement against text. It returns the matches,
// the category score on a 0-100 scale and the required skills that are missing.
func matchCategory(text string, reqs []ExtractedRequirement) ([]SkillMatch, float64, []string) {
	matched := make([]SkillMatch, 0, len(reqs))
	var missing []string
	var got, possible float64
	for _, r := range reqs {
		possible += r.Importance
		if !hasVariant(text, r.Variants) {
			if r.Required {
				missing = append(missing, r.Skill)
			}
			continue
		}
		ctx := contextScore(text, r.Variants)
		final := r.Importance * ctx
		matched = append(matched, SkillMatch{
			Skill:        r.Skill,
			Score:        final,
			ContextScore: ctx,
			Required:     r.Required,
		})
		got += final
	}
	if possible <= 0 {
		return matched, 0, missing
	}
	return matched, clamp(got/possible*100, 0, 100), missing
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
