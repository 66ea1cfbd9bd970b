package history

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func newTestService() *Service {
	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := NewService(NewMemoryRepo())
	svc.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return svc
}

func sampleAnalysis(overall any, technical ...any) map[string]any {
	return map[string]any{
		"overallScore":      overall,
		"scores":            map[string]any{"technicalSkills": 8.0, "experience": 7.0, "presentation": 6.0, "education": 12.0, "leadership": "4.4"},
		"experienceLevel":   "Senior",
		"yearsOfExperience": 6.7,
		"missingSkills":     []any{"Kubernetes", "  ", "Terraform\x00"},
		"improvementAreas":  []any{"Quantify results"},
		"recommendations":   map[string]any{"immediate": []any{"Add a summary"}},
		"detectedSkills":    map[string]any{"technical": technical},
		"summary":           "Strong\x00 engineer",
	}
}

func TestRecordSanitizesEntry(t *testing.T) {
	svc := newTestService()
	e, err := svc.Record(context.Background(), RecordInput{
		ID:         "h-1",
		UserID:     "user-a",
		ResumeText: "Jane\x00 Doe",
		Analysis:   sampleAnalysis(10.07),
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if e.ResumeText != "Jane Doe" {
		t.Fatalf("resume text not sanitized: %q", e.ResumeText)
	}
	if e.EducationScore != 1 || e.LeadershipScore != 4 || e.OverallScore != 10.0 || e.YearsOfExperience != 6 {
		t.Fatalf("unexpected scores: %+v", e)
	}
	if len(e.MissingSkills) != 2 || e.MissingSkills[1] != "Terraform" {
		t.Fatalf("unexpected missing skills: %v", e.MissingSkills)
	}
	if len(e.Suggestions) != 2 || e.Suggestions[0] != "Add a summary" || e.Suggestions[1] != "Quantify results" {
		t.Fatalf("unexpected derived suggestions: %v", e.Suggestions)
	}
	if len(e.FullAnalysis) == 0 || strings.Contains(string(e.FullAnalysis), `\u0000`) {
		t.Fatalf("full analysis not sanitized: %s", e.FullAnalysis)
	}
}

func TestRecordLeavesCallerAnalysisUntouched(t *testing.T) {
	svc := newTestService()
	analysis := sampleAnalysis(7.0)
	if _, err := svc.Record(context.Background(), RecordInput{ID: "h-2", UserID: "user-a", ResumeText: "r", Analysis: analysis}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	missing, _ := analysis["missingSkills"].([]any)
	if len(missing) != 3 || missing[2] != "Terraform\x00" {
		t.Fatalf("caller slice was modified: %q", missing)
	}
	if analysis["summary"] != "Strong\x00 engineer" {
		t.Fatalf("caller map was modified: %q", analysis["summary"])
	}
}

func TestRecordRejectsBadInputAndDuplicates(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	bad := []RecordInput{
		{UserID: "user-a", ResumeText: "r", Analysis: sampleAnalysis(5)},
		{ID: "x", UserID: "user-a", ResumeText: "\x00 ", Analysis: sampleAnalysis(5)},
		{ID: "x", UserID: "user-a", ResumeText: "r"},
		{ID: "x", UserID: "user-a", ResumeText: "r", Analysis: map[string]any{"overallScore": 5}},
		{ID: "x", UserID: "user-a", ResumeText: "r", Analysis: map[string]any{"scores": map[string]any{}}},
		{ID: "x", UserID: "user-a", ResumeText: "r", Analysis: map[string]any{
			"error": "NOT_A_RESUME", "message": "Looks like a cover letter", "overallScore": 0, "scores": map[string]any{},
		}},
	}
	for i, in := range bad {
		if _, err := svc.Record(ctx, in); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("case %d: expected ErrInvalidInput, got %v", i, err)
		}
	}

	in := RecordInput{ID: "dup", UserID: "user-a", ResumeText: "r", Analysis: sampleAnalysis(5)}
	if _, err := svc.Record(ctx, in); err != nil {
		t.Fatalf("first record: %v", err)
	}
	in.UserID = "user-b"
	if _, err := svc.Record(ctx, in); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestHistoryIsolation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	if _, err := svc.Record(ctx, RecordInput{ID: "b-1", UserID: "user-b", ResumeText: "r", Analysis: sampleAnalysis(9.0, "Rust")}); err != nil {
		t.Fatalf("record: %v", err)
	}

	if _, err := svc.Get(ctx, "b-1", "user-a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign get, got %v", err)
	}
	if deleted, err := svc.Delete(ctx, "b-1", "user-a"); err != nil || deleted {
		t.Fatalf("foreign delete must report not found, got %v %v", deleted, err)
	}
	page, err := svc.List(ctx, "user-a", DefaultLimit, 0)
	if err != nil || page.Pagination.Total != 0 || len(page.Data) != 0 {
		t.Fatalf("expected empty page for user-a, got %+v %v", page, err)
	}
	sum, err := svc.Summarize(ctx, "user-a")
	if err != nil || sum.TotalAnalyses != 0 {
		t.Fatalf("expected empty summary, got %+v %v", sum, err)
	}
	if n, err := svc.DeleteAll(ctx, "user-a"); err != nil || n != 0 {
		t.Fatalf("expected nothing deleted for user-a, got %d %v", n, err)
	}
	if _, err := svc.Get(ctx, "b-1", "user-b"); err != nil {
		t.Fatalf("owner should still see entry: %v", err)
	}
}

func TestListPagination(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	for _, id := range []string{"e1", "e2", "e3"} {
		if _, err := svc.Record(ctx, RecordInput{ID: id, UserID: "u", ResumeText: "r", Analysis: sampleAnalysis(5)}); err != nil {
			t.Fatalf("record %s: %v", id, err)
		}
	}
	page, err := svc.List(ctx, "u", 2, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page.Data) != 2 || page.Data[0].ID != "e3" || !page.Pagination.HasMore || page.Pagination.Total != 3 {
		t.Fatalf("unexpected first page: %+v", page)
	}
	page, err = svc.List(ctx, "u", 2, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page.Data) != 1 || page.Data[0].ID != "e1" || page.Pagination.HasMore {
		t.Fatalf("unexpected second page: %+v", page)
	}
	for _, bad := range [][2]int{{0, 0}, {101, 0}, {10, -1}} {
		if _, err := svc.List(ctx, "u", bad[0], bad[1]); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("limit=%d offset=%d: expected ErrInvalidInput, got %v", bad[0], bad[1], err)
		}
	}
}

func TestAggregatesOnEmptyHistory(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	sum, err := svc.Summarize(ctx, "nobody")
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if sum.TotalAnalyses != 0 || sum.LatestAnalysis != nil || sum.ScoreTrend == nil || len(sum.ScoreTrend) != 0 {
		t.Fatalf("unexpected empty summary: %+v", sum)
	}
	trends, err := svc.SkillTrends(ctx, "nobody")
	if err != nil || trends.Trends == nil || len(trends.Trends) != 0 {
		t.Fatalf("unexpected empty trends: %+v %v", trends, err)
	}
	prog, err := svc.ExperienceProgression(ctx, "nobody")
	if err != nil || prog.Progression == nil || len(prog.Progression) != 0 {
		t.Fatalf("unexpected empty progression: %+v %v", prog, err)
	}
}

func TestAggregates(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	inputs := []struct {
		id     string
		score  float64
		skills []any
	}{
		{id: "a", score: 6.0, skills: []any{"Go", "SQL"}},
		{id: "b", score: 8.0, skills: []any{"go", "Docker", "GO"}},
		{id: "c", score: 7.5, skills: []any{"Docker", "Go", "Kafka"}},
	}
	for _, in := range inputs {
		if _, err := svc.Record(ctx, RecordInput{ID: in.id, UserID: "u", ResumeText: "r", Analysis: sampleAnalysis(in.score, in.skills...)}); err != nil {
			t.Fatalf("record %s: %v", in.id, err)
		}
	}

	sum, err := svc.Summarize(ctx, "u")
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if sum.TotalAnalyses != 3 || sum.BestScore != 8.0 || sum.AverageScore != 7.2 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	if len(sum.ScoreTrend) != 3 || sum.ScoreTrend[0].Score != 6.0 || sum.ScoreTrend[2].Score != 7.5 {
		t.Fatalf("trend should be oldest first: %+v", sum.ScoreTrend)
	}
	if sum.LatestAnalysis == nil || !sum.LatestAnalysis.Equal(sum.ScoreTrend[2].Date) {
		t.Fatalf("latest analysis mismatch: %+v", sum.LatestAnalysis)
	}

	trends, err := svc.SkillTrends(ctx, "u")
	if err != nil {
		t.Fatalf("SkillTrends: %v", err)
	}
	want := []SkillFrequency{{Skill: "Go", Frequency: 3}, {Skill: "Docker", Frequency: 2}, {Skill: "Kafka", Frequency: 1}, {Skill: "SQL", Frequency: 1}}
	if len(trends.Trends) != len(want) {
		t.Fatalf("unexpected trends: %+v", trends.Trends)
	}
	for i := range want {
		if trends.Trends[i] != want[i] {
			t.Fatalf("trend %d = %+v, want %+v", i, trends.Trends[i], want[i])
		}
	}

	prog, err := svc.ExperienceProgression(ctx, "u")
	if err != nil {
		t.Fatalf("ExperienceProgression: %v", err)
	}
	if len(prog.Progression) != 3 || prog.Progression[1].Score != 8.0 || prog.Progression[1].ExperienceLevel != "Senior" || prog.Progression[1].YearsOfExperience != 6 {
		t.Fatalf("unexpected progression: %+v", prog.Progression)
	}
}

func TestDeleteAndDeleteAll(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	for _, id := range []string{"d1", "d2"} {
		if _, err := svc.Record(ctx, RecordInput{ID: id, UserID: "u", ResumeText: "r", Analysis: sampleAnalysis(5)}); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	if deleted, err := svc.Delete(ctx, "d1", "u"); err != nil || !deleted {
		t.Fatalf("expected delete, got %v %v", deleted, err)
	}
	if deleted, _ := svc.Delete(ctx, "d1", "u"); deleted {
		t.Fatal("second delete should report false")
	}
	if n, err := svc.DeleteAll(ctx, "u"); err != nil || n != 1 {
		t.Fatalf("expected 1 deleted, got %d %v", n, err)
	}
}
