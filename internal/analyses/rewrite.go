package analyses

// Rewrite holds alternative phrasings of one resume passage.
type Rewrite struct {
	Original        string             `json:"original"`
	Variations      []RewriteVariation `json:"variations"`
	KeywordsMatched []string           `json:"keywords_matched"`
	ATSScore        RewriteATSScore    `json:"ats_score"`
	Recommendation  string             `json:"recommendation"`

	UnknownEnums []string `json:"-"`
}

type RewriteVariation struct {
	Style   string   `json:"style"`
	Text    string   `json:"text"`
	Changes []string `json:"changes"`
	Impact  string   `json:"impact"`
}

type RewriteATSScore struct {
	Conservative float64 `json:"conservative"`
	Balanced     float64 `json:"balanced"`
	Aggressive   float64 `json:"aggressive"`
}

// NormalizeRewrite maps raw provider text for a bullet rewrite. When the
// provider omits the original passage, original is used.
func NormalizeRewrite(raw, original string) (*Rewrite, error) {
	obj, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}
	root := newFields("", obj)
	ats := root.object("ats_score")
	out := &Rewrite{
		Original:        root.str("original"),
		Variations:      []RewriteVariation{},
		KeywordsMatched: root.strings("keywords_matched"),
		ATSScore: RewriteATSScore{
			Conservative: ats.requiredNumber("conservative"),
			Balanced:     ats.requiredNumber("balanced"),
			Aggressive:   ats.requiredNumber("aggressive"),
		},
		Recommendation: root.str("recommendation"),
		UnknownEnums:   []string{},
	}
	if err := root.Err(); err != nil {
		return nil, malformed("schema mismatch", err)
	}
	if out.Original == "" {
		out.Original = original
	}
	for _, v := range root.objects("variations") {
		variation := RewriteVariation{
			Style:   v.str("style"),
			Text:    v.str("text"),
			Changes: v.strings("changes"),
			Impact:  v.str("impact"),
		}
		if variation.Text == "" {
			continue
		}
		checkEnum(&out.UnknownEnums, v.name("style"), variation.Style, rewriteStyles)
		checkEnum(&out.UnknownEnums, v.name("impact"), variation.Impact, difficulties)
		out.Variations = append(out.Variations, variation)
	}
	if len(out.Variations) == 0 {
		return nil, malformed("no rewrite variations", nil)
	}
	return out, nil
}
