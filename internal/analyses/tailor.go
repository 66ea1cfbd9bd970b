package analyses

// Tailoring rewrites resume content toward one job description.
type Tailoring struct {
	TailoredSummary   string           `json:"tailoredSummary"`
	TailoredBullets   []TailoredBullet `json:"tailoredBullets"`
	KeywordsAdded     []string         `json:"keywordsAdded"`
	SkillsToHighlight []string         `json:"skillsToHighlight"`
	MatchScoreBefore  float64          `json:"matchScoreBefore"`
	MatchScoreAfter   float64          `json:"matchScoreAfter"`
	Recommendations   []string         `json:"recommendations"`
}

type TailoredBullet struct {
	Original string `json:"original"`
	Tailored string `json:"tailored"`
	Reason   string `json:"reason"`
}

// NormalizeTailor maps raw provider text for a tailoring request.
func NormalizeTailor(raw string) (*Tailoring, error) {
	obj, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}
	root := newFields("", obj)
	out := &Tailoring{
		TailoredSummary:   root.str("tailoredSummary"),
		TailoredBullets:   []TailoredBullet{},
		KeywordsAdded:     root.strings("keywordsAdded"),
		SkillsToHighlight: root.strings("skillsToHighlight"),
		MatchScoreBefore:  root.requiredNumber("matchScoreBefore"),
		MatchScoreAfter:   root.requiredNumber("matchScoreAfter"),
		Recommendations:   root.strings("recommendations"),
	}
	if err := root.Err(); err != nil {
		return nil, malformed("schema mismatch", err)
	}
	for _, b := range root.objects("tailoredBullets") {
		bullet := TailoredBullet{
			Original: b.str("original"),
			Tailored: b.str("tailored"),
			Reason:   b.str("reason"),
		}
		if bullet.Tailored == "" {
			continue
		}
		out.TailoredBullets = append(out.TailoredBullets, bullet)
	}
	return out, nil
}
