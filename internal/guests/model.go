package guests

import "time"

// Quota is the number of free analyses an anonymous identity may run.
const Quota = 1

const (
	// LimitMessage is returned once an identity has used its free analysis.
	LimitMessage = "You've reached your free resume analysis limit. Please login to analyze more resumes."
	// UnavailableMessage is returned when usage cannot be verified.
	UnavailableMessage = "Unable to verify guest usage. Please try again or login."
)

// Record is the persisted usage row for one anonymous identity.
type Record struct {
	ID             string
	NetworkAddress string
	HardwareTag    string
	UserAgent      string
	AnalysisCount  int
	LastAnalysisAt time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Result is the outcome of CheckAndConsume.
type Result struct {
	Allowed         bool
	RecordID        string
	UsageCountAfter int
	Message         string
}

// Remaining reports how many free analyses are left after this result.
func (r Result) Remaining() int {
	return max(0, Quota-r.UsageCountAfter)
}

// Status is the read-only view served by GET /guest-status.
type Status struct {
	Allowed           bool   `json:"allowed"`
	Message           string `json:"message,omitempty"`
	RequiresLogin     bool   `json:"requiresLogin"`
	RemainingAnalyses int    `json:"remainingAnalyses"`
}
