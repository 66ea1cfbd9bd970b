package analyses

// CareerMap proposes career paths from the current resume.
type CareerMap struct {
	Paths           []CareerPath `json:"paths"`
	CurrentRole     string       `json:"currentRole"`
	CurrentSkills   []string     `json:"currentSkills"`
	Recommendations []string     `json:"recommendations"`

	UnknownEnums []string `json:"-"`
}

type CareerPath struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Difficulty  string       `json:"difficulty"`
	TimeToGoal  string       `json:"timeToGoal"`
	Steps       []CareerStep `json:"steps"`
}

type CareerStep struct {
	Role         string   `json:"role"`
	Status       string   `json:"status"`
	SkillsNeeded []string `json:"skills_needed"`
	Timeframe    string   `json:"timeframe,omitempty"`
	SalaryRange  string   `json:"salary_range,omitempty"`
}

// NormalizeCareerMap maps raw provider text for a career map. Paths without
// a name are dropped.
func NormalizeCareerMap(raw string) (*CareerMap, error) {
	obj, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}
	root := newFields("", obj)
	out := &CareerMap{
		Paths:           []CareerPath{},
		CurrentRole:     root.str("currentRole"),
		CurrentSkills:   root.strings("currentSkills"),
		Recommendations: root.strings("recommendations"),
		UnknownEnums:    []string{},
	}
	for _, p := range root.objects("paths") {
		path := CareerPath{
			Name:        p.str("name"),
			Description: p.str("description"),
			Difficulty:  p.str("difficulty"),
			TimeToGoal:  p.str("timeToGoal"),
			Steps:       []CareerStep{},
		}
		if path.Name == "" {
			continue
		}
		checkEnum(&out.UnknownEnums, p.name("difficulty"), path.Difficulty, difficulties)
		for _, s := range p.objects("steps") {
			step := CareerStep{
				Role:         s.str("role"),
				Status:       s.str("status"),
				SkillsNeeded: s.strings("skills_needed"),
				Timeframe:    s.str("timeframe"),
				SalaryRange:  s.str("salary_range"),
			}
			checkEnum(&out.UnknownEnums, s.name("status"), step.Status, stepStatuses)
			path.Steps = append(path.Steps, step)
		}
		out.Paths = append(out.Paths, path)
	}
	return out, nil
}
