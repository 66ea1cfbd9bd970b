package analyses

import (
	"context"
	"fmt"
	"time"

	"resume-insights/internal/llm"
	"resume-insights/internal/shared/metrics"
	"resume-insights/internal/shared/telemetry"
)

const rawLogLimit = 500

// Service runs provider calls and normalizes their output.
type Service struct {
	LLM llm.Client
	now func() time.Time
}

// NewService constructs a Service.
func NewService(client llm.Client) *Service {
	return &Service{LLM: client, now: time.Now}
}

// Analyze scores a resume.
func (s *Service) Analyze(ctx context.Context, resumeText string) (Outcome, error) {
	raw, err := s.generate(ctx, llm.TaskAnalyze, llm.PromptInputs{ResumeText: resumeText})
	if err != nil {
		return Outcome{}, err
	}
	out, err := Normalize(raw)
	if err != nil {
		s.recordMalformed(llm.TaskAnalyze, raw, err)
		return Outcome{}, err
	}
	switch out.Kind {
	case KindNotAResume:
		metrics.IncNotAResume()
	case KindSuccess:
		metrics.IncAnalysisCompleted()
		s.logUnknownEnums(llm.TaskAnalyze, out.Success.UnknownEnums)
	}
	return out, nil
}

// JobMatch compares a resume with a job description.
func (s *Service) JobMatch(ctx context.Context, resumeText, jobDescription string) (*JobMatch, error) {
	raw, err := s.generate(ctx, llm.TaskJobMatch, llm.PromptInputs{ResumeText: resumeText, JobDescription: jobDescription})
	if err != nil {
		return nil, err
	}
	out, err := NormalizeJobMatch(raw)
	if err != nil {
		s.recordMalformed(llm.TaskJobMatch, raw, err)
		return nil, err
	}
	s.logUnknownEnums(llm.TaskJobMatch, out.UnknownEnums)
	return out, nil
}

// CareerMap proposes career paths for a resume.
func (s *Service) CareerMap(ctx context.Context, resumeText string) (*CareerMap, error) {
	raw, err := s.generate(ctx, llm.TaskCareerMap, llm.PromptInputs{ResumeText: resumeText})
	if err != nil {
		return nil, err
	}
	out, err := NormalizeCareerMap(raw)
	if err != nil {
		s.recordMalformed(llm.TaskCareerMap, raw, err)
		return nil, err
	}
	s.logUnknownEnums(llm.TaskCareerMap, out.UnknownEnums)
	return out, nil
}

// Rewrite rephrases a resume passage, optionally toward a job description.
func (s *Service) Rewrite(ctx context.Context, originalText, jobDescription string) (*Rewrite, error) {
	raw, err := s.generate(ctx, llm.TaskRewrite, llm.PromptInputs{OriginalText: originalText, JobDescription: jobDescription})
	if err != nil {
		return nil, err
	}
	out, err := NormalizeRewrite(raw, originalText)
	if err != nil {
		s.recordMalformed(llm.TaskRewrite, raw, err)
		return nil, err
	}
	s.logUnknownEnums(llm.TaskRewrite, out.UnknownEnums)
	return out, nil
}

// Tailor rewrites resume content toward a job description.
func (s *Service) Tailor(ctx context.Context, resumeText, jobDescription string) (*Tailoring, error) {
	raw, err := s.generate(ctx, llm.TaskTailor, llm.PromptInputs{ResumeText: resumeText, JobDescription: jobDescription})
	if err != nil {
		return nil, err
	}
	out, err := NormalizeTailor(raw)
	if err != nil {
		s.recordMalformed(llm.TaskTailor, raw, err)
		return nil, err
	}
	return out, nil
}

// generate counts every failure toward analysis_failed_total.
func (s *Service) generate(ctx context.Context, task llm.Task, in llm.PromptInputs) (raw string, err error) {
	defer func() {
		if err != nil {
			metrics.IncAnalysisFailed()
		}
	}()
	if s.LLM == nil {
		return "", llm.ErrNotConfigured
	}
	in.Today = s.now().UTC().Format("2006-01-02")
	prompt, err := llm.BuildPrompt(task, in)
	if err != nil {
		return "", err
	}
	start := time.Now()
	raw, err = s.LLM.Generate(ctx, llm.Request{Task: task, Prompt: prompt})
	metrics.ObserveProviderDurationMs(float64(time.Since(start).Milliseconds()))
	if err != nil {
		return "", fmt.Errorf("%s provider call: %w", task, err)
	}
	return raw, nil
}

func (s *Service) recordMalformed(task llm.Task, raw string, err error) {
	metrics.IncAnalysisFailed()
	telemetry.Error("analyses.malformed_response", map[string]any{
		"task":  string(task),
		"error": err,
		"raw":   telemetry.Truncate(raw, rawLogLimit),
	})
}

func (s *Service) logUnknownEnums(task llm.Task, values []string) {
	if len(values) == 0 {
		return
	}
	telemetry.Warn("analyses.unknown_enum", map[string]any{
		"task":   string(task),
		"values": values,
	})
}
