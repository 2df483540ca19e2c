// Package report renders matching results for people and scripts.
package report

import (
	"fmt"
	"io"
	"strings"

	"docmatch/internal/matching"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Separator ends every block of the plain report.
const Separator = "----------------"

// Format renders results as blocks of source path, target path and separator,
// one line each, joined by newlines with no trailing newline. No results
// yields the empty string.
func Format(results []matching.Result) string {
	if len(results) == 0 {
		return ""
	}

	lines := make([]string, 0, len(results)*3)
	for _, r := range results {
		lines = append(lines, r.Source.Path, r.Target.Path, Separator)
	}
	return strings.Join(lines, "\n")
}

// WriteTable writes results as an aligned table with scores.
func WriteTable(w io.Writer, results []matching.Result) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Source", "Target", "Score"})
	for i, r := range results {
		t.AppendRow(table.Row{i + 1, r.Source.Path, r.Target.Path, fmt.Sprintf("%.3f", r.Score)})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight},
	})
	t.AppendFooter(table.Row{"", "", "Matches", len(results)})
	t.Render()
}
