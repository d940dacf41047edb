package report

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/medopaw/ai-cli/internal/diff"
	"github.com/medopaw/ai-cli/internal/summarize"
)

func TestAggregateKeepsOrderAndMergesDuplicates(t *testing.T) {
	summaries := []summarize.FileSummary{
		{Path: "b.go", Description: "add cache"},
		{Path: "a.go", Description: ""},
		{Path: "b.go", Description: "expose metrics"},
		{Path: "a.go", Description: "fix typo"},
		{Path: "b.go", Description: "add cache"},
	}

	got := Aggregate(diff.Stats{FilesChanged: 2}, summaries)

	assert.Equal(t, []summarize.FileSummary{
		{Path: "b.go", Description: "add cache; expose metrics"},
		{Path: "a.go", Description: "fix typo"},
	}, got.Files)
	assert.Equal(t, 2, got.Stats.FilesChanged)
}

func TestAggregateSkipsDescriptionsAlreadyMerged(t *testing.T) {
	summaries := []summarize.FileSummary{
		{Path: "x.go", Description: "a"},
		{Path: "x.go", Description: "b"},
		{Path: "x.go", Description: "a"},
		{Path: "x.go", Description: "b"},
		{Path: "x.go", Description: "c"},
	}

	got := Aggregate(diff.Stats{}, summaries)

	assert.Equal(t, []summarize.FileSummary{{Path: "x.go", Description: "a; b; c"}}, got.Files)
}

func TestAggregateDoesNotMutateInput(t *testing.T) {
	summaries := []summarize.FileSummary{
		{Path: "a.go", Description: "one"},
		{Path: "a.go", Description: "two"},
	}

	Aggregate(diff.Stats{}, summaries)

	assert.Equal(t, "one", summaries[0].Description)
}

func TestAggregateIsDeterministic(t *testing.T) {
	stats := diff.Stats{FilesChanged: 3, LinesAdded: 10, FileTypes: []string{"go"}}
	summaries := []summarize.FileSummary{{Path: "x.go", Description: "d"}, {Path: "y.go"}}

	assert.Equal(t, Aggregate(stats, summaries).String(), Aggregate(stats, summaries).String())
}

func TestStructuredSummaryString(t *testing.T) {
	summary := Aggregate(diff.Stats{
		FilesChanged: 2,
		LinesAdded:   11,
		LinesDeleted: 2,
		FileTypes:    []string{"rs", "toml"},
		Languages:    []string{"Rust", "TOML"},
	}, []summarize.FileSummary{
		{Path: "src/a.rs", Description: "parse config lazily"},
		{Path: "b.toml"},
	})

	want := `Change statistics:
- Files changed: 2
- Lines added: 11
- Lines deleted: 2
- File types: rs, toml
- Languages: Rust, TOML

File summaries:
- src/a.rs: parse config lazily
- b.toml: no description
`
	assert.Equal(t, want, summary.String())
}

func TestStructuredSummaryStringEmpty(t *testing.T) {
	out := Aggregate(diff.Stats{}, nil).String()

	assert.Contains(t, out, "- File types: none\n")
	assert.NotContains(t, out, "Languages")
	assert.Contains(t, out, "File summaries:\n")
}
