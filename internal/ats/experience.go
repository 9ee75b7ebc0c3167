package ats

// experienceScore compares the most experience the resume claims with the
// years the job asks for. No requirement earns full credit.
func experienceScore(resume string, requiredYears, currentYear int) float64 {
	if requiredYears <= 0 {
		return 100
	}
	candidate := maxSubmatchInt(yearsOfExperienceRe, resume)
	if n := maxSubmatchInt(experienceLabelRe, resume); n > candidate {
		candidate = n
	}
	if n := longestYearRange(resume, currentYear); n > candidate {
		candidate = n
	}
	return clamp(float64(candidate)/float64(requiredYears)*100, 0, 100)
}

// educationScore is 100 when the resume's highest level reaches the lowest
// level the job names, and 50 otherwise. One level short gets no partial credit.
func (t *Taxonomy) educationScore(resume string, required []string) float64 {
	minRequired, found := -1, false
	for _, level := range required {
		rank, ok := t.educationRank(level)
		if !ok {
			continue
		}
		if !found || rank < minRequired {
			minRequired = rank
			found = true
		}
	}
	if !found {
		return 100
	}

	maxHeld := -1
	for _, level := range t.EducationLevels(resume) {
		if rank, ok := t.educationRank(level); ok && rank > maxHeld {
			maxHeld = rank
		}
	}
	if maxHeld >= minRequired {
		return 100
	}
	return 50
}
