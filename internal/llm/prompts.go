package llm

import (
	_ "embed"
	"fmt"
	"strings"
)

var (
	//go:embed prompts/analyze.txt
	promptAnalyze string
	//go:embed prompts/job_match.txt
	promptJobMatch string
	//go:embed prompts/career_map.txt
	promptCareerMap string
	//go:embed prompts/rewrite.txt
	promptRewrite string
	//go:embed prompts/tailor.txt
	promptTailor string
)

// PromptInputs are the values substituted into a prompt template.
type PromptInputs struct {
	ResumeText     string
	JobDescription string
	OriginalText   string
	// Today is an ISO date used to compute durations of current positions.
	Today string
}

// PromptTemplate returns the template for task and whether the task is known.
func PromptTemplate(task Task) (string, bool) {
	switch task {
	case TaskAnalyze:
		return promptAnalyze, true
	case TaskJobMatch:
		return promptJobMatch, true
	case TaskCareerMap:
		return promptCareerMap, true
	case TaskRewrite:
		return promptRewrite, true
	case TaskTailor:
		return promptTailor, true
	default:
		return "", false
	}
}

// BuildPrompt renders the prompt for task.
func BuildPrompt(task Task, in PromptInputs) (string, error) {
	template, ok := PromptTemplate(task)
	if !ok {
		return "", fmt.Errorf("unknown task %q", task)
	}
	replacer := strings.NewReplacer(
		"{{TODAY}}", in.Today,
		"{{RESUME_TEXT}}", in.ResumeText,
		"{{JOB_DESCRIPTION}}", in.JobDescription,
		"{{ORIGINAL_TEXT}}", in.OriginalText,
	)
	return replacer.Replace(template), nil
}
