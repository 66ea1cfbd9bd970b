package analyses

// JobMatch compares a resume against one job description.
type JobMatch struct {
	MatchPercentage float64         `json:"matchPercentage"`
	MatchLevel      string          `json:"matchLevel"`
	MissingSkills   SkillGaps       `json:"missingSkills"`
	PresentSkills   SkillMatches    `json:"presentSkills"`
	Suggestions     []Suggestion    `json:"suggestions"`
	KeywordAnalysis KeywordAnalysis `json:"keyword_analysis"`
	ExperienceGap   ExperienceGap   `json:"experience_gap"`
	Recommendation  string          `json:"recommendation"`

	UnknownEnums []string `json:"-"`
}

type SkillGaps struct {
	Critical   []string `json:"critical"`
	Important  []string `json:"important"`
	NiceToHave []string `json:"nice_to_have"`
}

type SkillMatches struct {
	ExactMatches       []string `json:"exact_matches"`
	PartialMatches     []string `json:"partial_matches"`
	TransferableSkills []string `json:"transferable_skills"`
}

type Suggestion struct {
	Priority string `json:"priority"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

type KeywordAnalysis struct {
	TotalKeywords   float64  `json:"total_keywords"`
	MatchedKeywords float64  `json:"matched_keywords"`
	MissingKeywords []string `json:"missing_keywords"`
}

type ExperienceGap struct {
	RequiredYears  float64 `json:"required_years"`
	CandidateYears float64 `json:"candidate_years"`
	Gap            float64 `json:"gap"`
	Assessment     string  `json:"assessment"`
}

// NormalizeJobMatch maps raw provider text for a job comparison.
func NormalizeJobMatch(raw string) (*JobMatch, error) {
	obj, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}
	root := newFields("", obj)
	missing := root.object("missingSkills")
	present := root.object("presentSkills")
	keywords := root.object("keyword_analysis")
	gap := root.object("experience_gap")

	out := &JobMatch{
		MatchPercentage: root.requiredNumber("matchPercentage"),
		MatchLevel:      root.str("matchLevel"),
		MissingSkills: SkillGaps{
			Critical:   missing.strings("critical"),
			Important:  missing.strings("important"),
			NiceToHave: missing.strings("nice_to_have"),
		},
		PresentSkills: SkillMatches{
			ExactMatches:       present.strings("exact_matches"),
			PartialMatches:     present.strings("partial_matches"),
			TransferableSkills: present.strings("transferable_skills"),
		},
		Suggestions: []Suggestion{},
		KeywordAnalysis: KeywordAnalysis{
			TotalKeywords:   keywords.number("total_keywords"),
			MatchedKeywords: keywords.number("matched_keywords"),
			MissingKeywords: keywords.strings("missing_keywords"),
		},
		ExperienceGap: ExperienceGap{
			RequiredYears:  gap.number("required_years"),
			CandidateYears: gap.number("candidate_years"),
			Gap:            gap.number("gap"),
			Assessment:     gap.str("assessment"),
		},
		Recommendation: root.str("recommendation"),
		UnknownEnums:   []string{},
	}
	if err := root.Err(); err != nil {
		return nil, malformed("schema mismatch", err)
	}
	checkEnum(&out.UnknownEnums, "matchLevel", out.MatchLevel, matchLevels)
	for _, s := range root.objects("suggestions") {
		item := Suggestion{
			Priority: s.str("priority"),
			Category: s.str("category"),
			Action:   s.str("action"),
		}
		checkEnum(&out.UnknownEnums, s.name("priority"), item.Priority, priorities)
		out.Suggestions = append(out.Suggestions, item)
	}
	return out, nil
}
