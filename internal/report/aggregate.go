// Package report merges whole-diff statistics with per-file summaries into the
// structured summary handed to the commit message prompt.
package report

import (
	"bytes"
	_ "embed"
	"strings"
	"text/template"

	"github.com/medopaw/ai-cli/internal/diff"
	"github.com/medopaw/ai-cli/internal/summarize"
)

//go:embed summary_template.md
var summaryTemplateText string

var summaryTemplate = template.Must(
	template.New("summary").Funcs(templateFuncs()).Parse(summaryTemplateText),
)

// templateFuncs returns all custom template functions
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"join": func(items []string) string {
			if len(items) == 0 {
				return "none"
			}
			return strings.Join(items, ", ")
		},
		"pathOf": func(p string) string {
			if p == "" {
				return "(unnamed change)"
			}
			return p
		},
		"describe": func(d string) string {
			if d == "" {
				return "no description"
			}
			return d
		},
	}
}

// StructuredSummary is the input of the final message-generation step for diffs
// that were too large to send whole.
type StructuredSummary struct {
	Stats diff.Stats              `json:"stats" yaml:"stats"`
	Files []summarize.FileSummary `json:"files" yaml:"files"`
}

// Aggregate combines stats with summaries, keeping the order in which files first
// appear. A path reported more than once is merged into its first entry with the
// descriptions joined by "; ".
func Aggregate(stats diff.Stats, summaries []summarize.FileSummary) *StructuredSummary {
	files := make([]summarize.FileSummary, 0, len(summaries))
	index := make(map[string]int, len(summaries))
	described := make(map[string]map[string]struct{}, len(summaries))

	for _, s := range summaries {
		if s.Path == "" {
			files = append(files, s)
			continue
		}
		i, seen := index[s.Path]
		if !seen {
			index[s.Path] = len(files)
			files = append(files, s)
			described[s.Path] = map[string]struct{}{}
			if s.Description != "" {
				described[s.Path][s.Description] = struct{}{}
			}
			continue
		}
		if s.Description == "" {
			continue
		}
		if _, dup := described[s.Path][s.Description]; dup {
			continue
		}
		described[s.Path][s.Description] = struct{}{}
		if files[i].Description == "" {
			files[i].Description = s.Description
		} else {
			files[i].Description += "; " + s.Description
		}
	}

	return &StructuredSummary{Stats: stats, Files: files}
}

// String renders the summary as prompt text.
func (s *StructuredSummary) String() string {
	var buf bytes.Buffer
	if err := summaryTemplate.Execute(&buf, s); err != nil {
		// the template is static and its data fully typed
		panic(err)
	}
	return buf.String()
}
