package analyses

import (
	"bytes"
	"encoding/json"
	"strings"
)

// StripCodeFences removes markdown fences and any prose around the outermost
// JSON object.
func StripCodeFences(raw string) string {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if nl := strings.IndexByte(text, '\n'); nl >= 0 {
			// drop the language tag line, e.g. ```json
			if !strings.Contains(text[:nl], "{") {
				text = text[nl+1:]
			}
		}
		text = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text), "```"))
	}
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start >= 0 && end > start {
		return text[start : end+1]
	}
	return text
}

func decodeObject(raw string) (map[string]any, error) {
	text := StripCodeFences(raw)
	if text == "" {
		return nil, malformed("empty response", nil)
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, malformed("invalid json", err)
	}
	if obj == nil {
		return nil, malformed("top-level value is not an object", nil)
	}
	return obj, nil
}

// Normalize maps raw provider text for a resume analysis to an Outcome.
// It never fabricates a Success: unreadable or incomplete payloads return
// a *MalformedResponseError.
func Normalize(raw string) (Outcome, error) {
	obj, err := decodeObject(raw)
	if err != nil {
		return Outcome{}, err
	}
	root := newFields("", obj)
	if code := root.str("error"); code == NotAResumeCode {
		return Outcome{
			Kind: KindNotAResume,
			NotAResume: &NotAResume{
				Error:        NotAResumeCode,
				Message:      root.str("message"),
				DetectedType: root.str("detectedType"),
			},
		}, nil
	}

	scores := root.object("scores")
	skills := root.object("detectedSkills")
	recs := root.object("recommendations")
	ats := root.object("atsCompatibility")
	out := &Success{
		OverallScore: root.requiredNumber("overallScore"),
		Scores: Scores{
			TechnicalSkills: scores.requiredNumber("technicalSkills"),
			Experience:      scores.requiredNumber("experience"),
			Presentation:    scores.requiredNumber("presentation"),
			Education:       scores.requiredNumber("education"),
			Leadership:      scores.requiredNumber("leadership"),
		},
		ExperienceLevel:   root.str("experienceLevel"),
		YearsOfExperience: root.requiredNumber("yearsOfExperience"),
		StrengthAreas:     root.strings("strengthAreas"),
		ImprovementAreas:  root.strings("improvementAreas"),
		MissingSkills:     root.strings("missingSkills"),
		RedFlags:          root.strings("redFlags"),
		DetectedSkills: DetectedSkills{
			Technical: skills.strings("technical"),
			Soft:      skills.strings("soft"),
		},
		KeyAchievements: root.strings("keyAchievements"),
		Recommendations: Recommendations{
			Immediate: recs.strings("immediate"),
			ShortTerm: recs.strings("shortTerm"),
			LongTerm:  recs.strings("longTerm"),
		},
		ATSCompatibility: ATSCompatibility{
			Score:  ats.requiredNumber("score"),
			Issues: ats.strings("issues"),
		},
		HiringRecommendation: root.str("hiringRecommendation"),
		Summary:              root.str("summary"),
		UnknownEnums:         []string{},
	}
	if err := root.Err(); err != nil {
		return Outcome{}, malformed("schema mismatch", err)
	}
	checkEnum(&out.UnknownEnums, "experienceLevel", out.ExperienceLevel, experienceLevels)
	checkEnum(&out.UnknownEnums, "hiringRecommendation", out.HiringRecommendation, hiringVerdicts)
	return Outcome{Kind: KindSuccess, Success: out}, nil
}
