package ats

// ExtractJobKeywords parses a job description into weighted skill requirements,
// a role type, a minimum experience figure and the education levels it names.
func (e *Engine) ExtractJobKeywords(jobDescription string) JobKeywords {
	text := e.clip(jobDescription)
	kw := JobKeywords{
		Skills:          make(map[string][]ExtractedRequirement, len(e.tax.Categories)),
		RoleType:        e.tax.DetectRoleType(text),
		MinExperience:   minExperience(text),
		Education:       e.tax.EducationLevels(text),
		SkillImportance: make(map[string]float64),
	}

	for _, c := range e.tax.Categories {
		reqs := make([]ExtractedRequirement, 0)
		for _, s := range c.Skills {
			importance := importanceScore(text, s.Variants, e.tax.Emphasis)
			if importance <= 0 {
				continue
			}
			reqs = append(reqs, ExtractedRequirement{
				Skill:      s.Name,
				Variants:   s.Variants,
				Importance: importance,
				Required:   isRequired(text, s.Variants, e.tax.RequiredCues),
			})
			kw.SkillImportance[s.Name] = importance
		}
		kw.Skills[c.Name] = reqs
	}
	return kw
}
