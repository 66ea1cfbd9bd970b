package analyses

import (
	"errors"
	"fmt"
)

// Kind discriminates an Outcome.
type Kind int

const (
	KindSuccess Kind = iota + 1
	KindNotAResume
)

// NotAResumeCode is the sentinel the provider uses for non-resume input.
const NotAResumeCode = "NOT_A_RESUME"

// ErrMalformedProviderResponse matches every *MalformedResponseError.
var ErrMalformedProviderResponse = errors.New("malformed provider response")

// MalformedResponseError reports provider text that could not be mapped to a result.
type MalformedResponseError struct {
	Reason string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed provider response: %s: %v", e.Reason, e.Err)
	}
	return "malformed provider response: " + e.Reason
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrMalformedProviderResponse) match.
func (e *MalformedResponseError) Is(target error) bool {
	return target == ErrMalformedProviderResponse
}

func malformed(reason string, err error) error {
	return &MalformedResponseError{Reason: reason, Err: err}
}

// Outcome is either a Success or a NotAResume verdict.
type Outcome struct {
	Kind       Kind
	Success    *Success
	NotAResume *NotAResume
}

// NotAResume is the provider's verdict that the input was not a resume.
type NotAResume struct {
	Error        string `json:"error"`
	Message      string `json:"message"`
	DetectedType string `json:"detectedType,omitempty"`
}

// Success is a full resume analysis.
type Success struct {
	OverallScore         float64          `json:"overallScore"`
	Scores               Scores           `json:"scores"`
	ExperienceLevel      string           `json:"experienceLevel"`
	YearsOfExperience    float64          `json:"yearsOfExperience"`
	StrengthAreas        []string         `json:"strengthAreas"`
	ImprovementAreas     []string         `json:"improvementAreas"`
	MissingSkills        []string         `json:"missingSkills"`
	RedFlags             []string         `json:"redFlags"`
	DetectedSkills       DetectedSkills   `json:"detectedSkills"`
	KeyAchievements      []string         `json:"keyAchievements"`
	Recommendations      Recommendations  `json:"recommendations"`
	ATSCompatibility     ATSCompatibility `json:"atsCompatibility"`
	HiringRecommendation string           `json:"hiringRecommendation"`
	Summary              string           `json:"summary"`

	// UnknownEnums lists enumeration values outside their known sets, for logging.
	UnknownEnums []string `json:"-"`
}

type Scores struct {
	TechnicalSkills float64 `json:"technicalSkills"`
	Experience      float64 `json:"experience"`
	Presentation    float64 `json:"presentation"`
	Education       float64 `json:"education"`
	Leadership      float64 `json:"leadership"`
}

type DetectedSkills struct {
	Technical []string `json:"technical"`
	Soft      []string `json:"soft"`
}

type Recommendations struct {
	Immediate []string `json:"immediate"`
	ShortTerm []string `json:"shortTerm"`
	LongTerm  []string `json:"longTerm"`
}

type ATSCompatibility struct {
	Score  float64  `json:"score"`
	Issues []string `json:"issues"`
}

var (
	experienceLevels = []string{"Entry-Level", "Junior", "Mid-Level", "Senior", "Lead/Principal", "Executive"}
	hiringVerdicts   = []string{"Strong Hire", "Hire", "Maybe", "No Hire", "Needs More Info"}
	priorities       = []string{"High", "Medium", "Low"}
	matchLevels      = []string{"Poor", "Fair", "Good", "Excellent"}
	difficulties     = []string{"Low", "Medium", "High"}
	stepStatuses     = []string{"current", "future", "goal"}
	rewriteStyles    = []string{"Conservative", "Balanced", "Aggressive"}
)
