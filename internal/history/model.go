package history

import (
	"encoding/json"
	"time"
)

const (
	DefaultLimit = 50
	MaxLimit     = 100

	trendPoints = 10
)

// Entry is one persisted analysis.
type Entry struct {
	ID                string          `json:"id"`
	UserID            string          `json:"user_id"`
	ResumeText        string          `json:"resume_text"`
	EducationScore    int             `json:"education_score"`
	LeadershipScore   int             `json:"leadership_score"`
	OverallScore      float64         `json:"overall_score"`
	ExperienceLevel   string          `json:"experience_level"`
	YearsOfExperience int             `json:"years_of_experience"`
	MissingSkills     []string        `json:"missing_skills"`
	Suggestions       []string        `json:"suggestions"`
	FullAnalysis      json.RawMessage `json:"full_analysis"`
	CreatedAt         time.Time       `json:"created_at"`
}

// RecordInput is the caller-supplied part of an entry. Analysis is the
// normalized analysis object as returned by POST /analyze.
type RecordInput struct {
	ID          string
	UserID      string
	ResumeText  string
	Analysis    map[string]any
	Suggestions []string
}

type Pagination struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"hasMore"`
}

type Page struct {
	Data       []Entry    `json:"data"`
	Pagination Pagination `json:"pagination"`
}

type ScorePoint struct {
	Date  time.Time `json:"date"`
	Score float64   `json:"score"`
}

type Summary struct {
	TotalAnalyses  int          `json:"total_analyses"`
	LatestAnalysis *time.Time   `json:"latest_analysis"`
	AverageScore   float64      `json:"average_score"`
	BestScore      float64      `json:"best_score"`
	ScoreTrend     []ScorePoint `json:"score_trend"`
}

type SkillFrequency struct {
	Skill     string `json:"skill"`
	Frequency int    `json:"frequency"`
}

type SkillTrends struct {
	Trends []SkillFrequency `json:"trends"`
}

type ProgressionPoint struct {
	Date              time.Time `json:"date"`
	ExperienceLevel   string    `json:"experience_level"`
	Score             float64   `json:"score"`
	YearsOfExperience int       `json:"years_of_experience"`
}

type Progression struct {
	Progression []ProgressionPoint `json:"progression"`
}
