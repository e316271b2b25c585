// Package report renders ordered findings and the graph summary.
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/phobologic/depscope/internal/model"
)

// Dedupe drops repeated findings (same rule, file, line, and message),
// keeping the first occurrence so the ordering contract is preserved.
func Dedupe(findings []model.Finding) []model.Finding {
	type key struct {
		rule, path, msg string
		line            int
	}
	seen := make(map[key]struct{}, len(findings))
	out := findings[:0:0]
	for _, f := range findings {
		k := key{f.RuleID, f.Path, f.Message, f.Line}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, f)
	}
	return out
}

var severityColors = map[model.Severity]*color.Color{
	model.SeverityCritical: color.New(color.FgRed, color.Bold),
	model.SeverityHigh:     color.New(color.FgRed),
	model.SeverityMedium:   color.New(color.FgYellow),
	model.SeverityLow:      color.New(color.FgCyan),
}

// RenderText writes one record per finding followed by the graph
// summary table.
func RenderText(w io.Writer, findings []model.Finding, sum model.Summary, noColor bool) {
	for _, f := range findings {
		sev := f.Severity.String()
		if !noColor {
			if c, ok := severityColors[f.Severity]; ok {
				sev = c.Sprint(sev)
			}
		}
		loc := f.Path
		if f.Line > 0 {
			loc = fmt.Sprintf("%s:%d", f.Path, f.Line)
		}
		fmt.Fprintf(w, "%-8s  %-20s  %s  [%s] %s\n", sev, f.Category, loc, f.RuleID, f.Message)
	}

	if len(findings) == 0 {
		fmt.Fprintln(w, "No findings.")
	}
	fmt.Fprintln(w)
	renderSummary(w, sum)
}

func renderSummary(w io.Writer, sum model.Summary) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Nodes", "Edges", "Unresolved", "Cyclic", "Truncated", "Analyzed"})
	t.AppendRow(table.Row{
		sum.Nodes,
		sum.Edges,
		sum.Unresolved,
		sum.Cyclic,
		sum.Truncated,
		humanize.Bytes(uint64(sum.Bytes)),
	})
	t.Render()
}

// document is the JSON output shape.
type document struct {
	Findings []model.Finding `json:"findings"`
	Summary  model.Summary   `json:"summary"`
}

// RenderJSON writes the findings and summary as one JSON document.
func RenderJSON(w io.Writer, findings []model.Finding, sum model.Summary) error {
	if findings == nil {
		findings = []model.Finding{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(document{Findings: findings, Summary: sum})
}
