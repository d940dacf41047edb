package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/medopaw/ai-cli/internal/diff"
)

var statsFormats = []string{"text", "json", "yaml"}

func (a *app) statsCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "stats [URL|-]",
		Short: "Print change statistics for a diff",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var arg string
			if len(args) == 1 {
				arg = args[0]
			}

			raw, err := a.readDiff(cmd.Context(), arg)
			if err != nil {
				return err
			}

			stats := diff.ExtractStats(raw)
			segments := len(diff.Segment(raw, a.cfg.Pipeline.MaxDiffLength))
			if diff.Length(raw) < a.cfg.Pipeline.MaxDiffLength {
				segments = 0
			}
			return writeStats(a.stdout, format, stats, segments)
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "output format: "+strings.Join(statsFormats, ", "))
	return cmd
}

// statsReport is the machine readable stats output
type statsReport struct {
	diff.Stats `yaml:",inline"`
	Segments   int `json:"segments" yaml:"segments"`
}

func writeStats(w io.Writer, format string, stats diff.Stats, segments int) error {
	report := statsReport{Stats: stats, Segments: segments}

	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return err
		}
		return enc.Close()
	case "text":
		tbl := table.NewWriter()
		tbl.SetOutputMirror(w)
		tbl.SetStyle(table.StyleLight)
		tbl.AppendHeader(table.Row{"Metric", "Value"})
		tbl.AppendRows([]table.Row{
			{"Files changed", stats.FilesChanged},
			{"Lines added", stats.LinesAdded},
			{"Lines deleted", stats.LinesDeleted},
			{"File types", joinOrNone(stats.FileTypes)},
			{"Languages", joinOrNone(stats.Languages)},
			{"Size", humanize.Bytes(uint64(stats.Bytes))},
			{"Segments", segmentsLabel(segments)},
		})
		tbl.Render()
		return nil
	default:
		return fmt.Errorf("unknown format %q: must be one of %v", format, statsFormats)
	}
}

func joinOrNone(values []string) string {
	if len(values) == 0 {
		return "none"
	}
	return strings.Join(values, ", ")
}

func segmentsLabel(n int) string {
	if n == 0 {
		return "none (single request)"
	}
	return fmt.Sprint(n)
}
