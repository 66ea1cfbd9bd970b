package history

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"resume-insights/internal/shared/telemetry"
)

// Service records analyses for signed-in users and derives their analytics.
type Service struct {
	Repo Repo
	now  func() time.Time
}

// notAResumeCode marks a provider verdict rather than an analysis.
const notAResumeCode = "NOT_A_RESUME"

// NewService constructs a Service.
func NewService(repo Repo) *Service {
	return &Service{Repo: repo, now: time.Now}
}

// Record sanitizes and stores one analysis. The caller supplies the id; a
// reused id returns ErrConflict.
func (s *Service) Record(ctx context.Context, in RecordInput) (Entry, error) {
	id := strings.TrimSpace(in.ID)
	if id == "" || strings.TrimSpace(in.UserID) == "" {
		return Entry{}, fmt.Errorf("%w: id is required", ErrInvalidInput)
	}
	resume := SanitizeText(in.ResumeText)
	if strings.TrimSpace(resume) == "" {
		return Entry{}, fmt.Errorf("%w: resumeText is required", ErrInvalidInput)
	}
	if in.Analysis == nil {
		return Entry{}, fmt.Errorf("%w: analysis must be an object", ErrInvalidInput)
	}
	if code, _ := in.Analysis["error"].(string); code == notAResumeCode {
		return Entry{}, fmt.Errorf("%w: a not-a-resume verdict cannot be recorded", ErrInvalidInput)
	}
	if in.Analysis["overallScore"] == nil {
		return Entry{}, fmt.Errorf("%w: analysis.overallScore is required", ErrInvalidInput)
	}
	scores, ok := in.Analysis["scores"].(map[string]any)
	if !ok {
		return Entry{}, fmt.Errorf("%w: analysis.scores must be an object", ErrInvalidInput)
	}

	analysis, _ := sanitizeValue(in.Analysis).(map[string]any)
	full, err := json.Marshal(analysis)
	if err != nil {
		return Entry{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	suggestions := in.Suggestions
	if suggestions == nil {
		suggestions = deriveSuggestions(analysis)
	}
	level, _ := analysis["experienceLevel"].(string)

	e := Entry{
		ID:                id,
		UserID:            in.UserID,
		ResumeText:        resume,
		EducationScore:    SanitizeScore(scores["education"]),
		LeadershipScore:   SanitizeScore(scores["leadership"]),
		OverallScore:      SanitizeOverallScore(analysis["overallScore"]),
		ExperienceLevel:   strings.TrimSpace(level),
		YearsOfExperience: SanitizeYears(analysis["yearsOfExperience"]),
		MissingSkills:     sanitizeStrings(stringItems(analysis["missingSkills"])),
		Suggestions:       sanitizeStrings(suggestions),
		FullAnalysis:      full,
		CreatedAt:         s.now().UTC(),
	}
	if err := s.Repo.Create(ctx, e); err != nil {
		return Entry{}, err
	}
	telemetry.Info("history.recorded", map[string]any{
		"user_id":       e.UserID,
		"entry_id":      e.ID,
		"overall_score": e.OverallScore,
	})
	return e, nil
}

// List returns one page of the user's entries, newest first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) (Page, error) {
	if limit < 1 || limit > MaxLimit || offset < 0 {
		return Page{}, fmt.Errorf("%w: limit must be 1-%d and offset >= 0", ErrInvalidInput, MaxLimit)
	}
	entries, total, err := s.Repo.List(ctx, userID, limit, offset)
	if err != nil {
		return Page{}, err
	}
	if entries == nil {
		entries = []Entry{}
	}
	return Page{
		Data: entries,
		Pagination: Pagination{
			Total:   total,
			Limit:   limit,
			Offset:  offset,
			HasMore: offset+len(entries) < total,
		},
	}, nil
}

// Get returns one of the user's entries or ErrNotFound.
func (s *Service) Get(ctx context.Context, id, userID string) (Entry, error) {
	return s.Repo.Get(ctx, id, userID)
}

// Summarize returns score aggregates. Empty history yields zero values.
func (s *Service) Summarize(ctx context.Context, userID string) (Summary, error) {
	entries, err := s.Repo.Timeline(ctx, userID)
	if err != nil {
		return Summary{}, err
	}
	out := Summary{ScoreTrend: []ScorePoint{}}
	if len(entries) == 0 {
		return out, nil
	}
	var sum float64
	for _, e := range entries {
		sum += e.OverallScore
		if e.OverallScore > out.BestScore {
			out.BestScore = e.OverallScore
		}
	}
	latest := entries[len(entries)-1].CreatedAt
	out.TotalAnalyses = len(entries)
	out.LatestAnalysis = &latest
	out.AverageScore = math.Round(sum/float64(len(entries))*10) / 10

	start := 0
	if len(entries) > trendPoints {
		start = len(entries) - trendPoints
	}
	for _, e := range entries[start:] {
		out.ScoreTrend = append(out.ScoreTrend, ScorePoint{Date: e.CreatedAt, Score: e.OverallScore})
	}
	return out, nil
}

// SkillTrends counts technical skills across the user's analyses. Skills
// are grouped case-insensitively under their first-seen spelling.
func (s *Service) SkillTrends(ctx context.Context, userID string) (SkillTrends, error) {
	entries, err := s.Repo.Timeline(ctx, userID)
	if err != nil {
		return SkillTrends{}, err
	}
	counts := map[string]*SkillFrequency{}
	for _, e := range entries {
		seen := map[string]bool{}
		for _, skill := range technicalSkills(e.FullAnalysis) {
			key := strings.ToLower(skill)
			if seen[key] {
				continue
			}
			seen[key] = true
			if f, ok := counts[key]; ok {
				f.Frequency++
				continue
			}
			counts[key] = &SkillFrequency{Skill: skill, Frequency: 1}
		}
	}
	out := SkillTrends{Trends: make([]SkillFrequency, 0, len(counts))}
	for _, f := range counts {
		out.Trends = append(out.Trends, *f)
	}
	sort.Slice(out.Trends, func(i, j int) bool {
		a, b := out.Trends[i], out.Trends[j]
		if a.Frequency != b.Frequency {
			return a.Frequency > b.Frequency
		}
		return strings.ToLower(a.Skill) < strings.ToLower(b.Skill)
	})
	return out, nil
}

// ExperienceProgression lists level, score and years per analysis, oldest first.
func (s *Service) ExperienceProgression(ctx context.Context, userID string) (Progression, error) {
	entries, err := s.Repo.Timeline(ctx, userID)
	if err != nil {
		return Progression{}, err
	}
	out := Progression{Progression: make([]ProgressionPoint, 0, len(entries))}
	for _, e := range entries {
		out.Progression = append(out.Progression, ProgressionPoint{
			Date:              e.CreatedAt,
			ExperienceLevel:   e.ExperienceLevel,
			Score:             e.OverallScore,
			YearsOfExperience: e.YearsOfExperience,
		})
	}
	return out, nil
}

// Delete removes one of the user's entries. Entries owned by someone else
// report false, same as missing ones.
func (s *Service) Delete(ctx context.Context, id, userID string) (bool, error) {
	return s.Repo.Delete(ctx, id, userID)
}

// DeleteAll removes every entry of the user and returns how many were removed.
func (s *Service) DeleteAll(ctx context.Context, userID string) (int64, error) {
	n, err := s.Repo.DeleteAll(ctx, userID)
	if err != nil {
		return 0, err
	}
	telemetry.Info("history.cleared", map[string]any{"user_id": userID, "deleted": n})
	return n, nil
}

func deriveSuggestions(analysis map[string]any) []string {
	var out []string
	if recs, ok := analysis["recommendations"].(map[string]any); ok {
		out = append(out, stringItems(recs["immediate"])...)
	}
	return append(out, stringItems(analysis["improvementAreas"])...)
}

func technicalSkills(full json.RawMessage) []string {
	var doc struct {
		DetectedSkills struct {
			Technical []any `json:"technical"`
		} `json:"detectedSkills"`
	}
	if len(full) == 0 || json.Unmarshal(full, &doc) != nil {
		return nil
	}
	skills := stringItems(doc.DetectedSkills.Technical)
	out := skills[:0]
	for _, skill := range skills {
		if skill = strings.TrimSpace(skill); skill != "" {
			out = append(out, skill)
		}
	}
	return out
}

func stringItems(v any) []string {
	items, _ := v.([]any)
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
