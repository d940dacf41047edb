package user

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"text/template"
)

// DiffPlaceholder is replaced in the configured commit prompt.
const DiffPlaceholder = "{diff}"

//go:embed segment_prompt_template.md
var segmentPromptTemplateText string

//go:embed summary_template.md
var summaryTemplateText string

var (
	segmentPromptTemplate = template.Must(template.New("segment_prompt").Parse(segmentPromptTemplateText))
	summaryTemplate       = template.Must(template.New("summary").Parse(summaryTemplateText))
)

// SegmentPromptData holds the data for the segment summary prompt template
type SegmentPromptData struct {
	Instructions string
	Part         int // 1-based
	Total        int
	Paths        []string
	Diff         string
}

// RenderSegmentPrompt builds the summarization request for one segment of a large diff.
func RenderSegmentPrompt(data SegmentPromptData) (string, error) {
	var buf bytes.Buffer
	if err := segmentPromptTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute segment prompt template: %w", err)
	}
	return buf.String(), nil
}

// RenderCommitPrompt substitutes diff into the configured commit prompt.
func RenderCommitPrompt(commitPrompt, diff string) string {
	return strings.ReplaceAll(commitPrompt, DiffPlaceholder, diff)
}

// RenderSummaryCommitPrompt is RenderCommitPrompt for diffs that went through the
// segment pipeline: the structured summary stands in for the raw diff.
func RenderSummaryCommitPrompt(commitPrompt, summary string) (string, error) {
	var buf bytes.Buffer
	if err := summaryTemplate.Execute(&buf, struct{ Summary string }{summary}); err != nil {
		return "", fmt.Errorf("failed to execute summary template: %w", err)
	}
	return RenderCommitPrompt(commitPrompt, buf.String()), nil
}
