package ats

const maxImportance = 5.0

// ExtractedRequirement is one skill a job description asks for.
type ExtractedRequirement struct {
	Skill      string   `json:"skill"`
	Variants   []string `json:"variants"`
	Importance float64  `json:"importance"`
	Required   bool     `json:"required"`
}

// JobKeywords is everything the extractor learned from a job description.
type JobKeywords struct {
	Skills          map[string][]ExtractedRequirement `json:"skills"`
	RoleType        string                            `json:"roleType"`
	MinExperience   int                               `json:"minExperience"`
	Education       []string                          `json:"education"`
	SkillImportance map[string]float64                `json:"skillImportance"`
}

// SkillMatch is a required skill found in the resume.
type SkillMatch struct {
	Skill        string  `json:"skill"`
	Score        float64 `json:"score"`
	ContextScore float64 `json:"contextScore"`
	Required     bool    `json:"required"`
}

// AnalysisResult holds the intermediate and final scores for one resume.
type AnalysisResult struct {
	MatchedSkills   map[string][]SkillMatch
	SkillScores     map[string]float64
	ExperienceScore float64
	EducationScore  float64
	OverallScore    int
	Suggestions     []string
}

// Report is the serializable result of scoring a resume against a job description.
type Report struct {
	Score           int                     `json:"score"`
	Breakdown       map[string]float64      `json:"breakdown"`
	Matched         map[string][]SkillMatch `json:"matched"`
	Suggestions     []string                `json:"suggestions"`
	ExperienceScore float64                 `json:"experienceScore"`
	EducationScore  float64                 `json:"educationScore"`
	JobAnalysis     *JobKeywords            `json:"jobAnalysis,omitempty"`
}

const errorSuggestion = "Error analyzing resume. Please try again."

func degradedReport() Report {
	return Report{
		Breakdown:   map[string]float64{},
		Matched:     map[string][]SkillMatch{},
		Suggestions: []string{errorSuggestion},
	}
}
