// Package display renders engine results for people. Machine formats
// (json, yaml) are serialized directly at the command layer; this package
// covers the styled terminal shape and the pipe-friendly plain one.
package display

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"

	"github.com/arthur-debert/pez/pkg/types"
	"github.com/arthur-debert/pez/pkg/ui"
	"github.com/arthur-debert/pez/pkg/ui/styles"
)

// Renderer turns engine results into printable output.
type Renderer interface {
	// RenderReport renders a batch command's per-target outcomes.
	RenderReport(command string, report types.Report) string

	// RenderPlugins renders the list output.
	RenderPlugins(rows []PluginRow) string

	// RenderChecks renders the doctor report.
	RenderChecks(rows []CheckRow) string
}

// NewRenderer picks the renderer for a resolved output format. JSON and
// YAML never reach this; the command layer serializes those itself.
func NewRenderer(format ui.Format) Renderer {
	if format == ui.FormatTerminal {
		return NewRichRenderer()
	}
	return NewPlainRenderer()
}

// RichRenderer renders styled terminal output.
type RichRenderer struct{}

// NewRichRenderer creates the styled terminal renderer.
func NewRichRenderer() *RichRenderer {
	return &RichRenderer{}
}

// RenderReport renders per-target outcomes with status glyphs and a
// trailing summary line.
func (r *RichRenderer) RenderReport(command string, report types.Report) string {
	var out strings.Builder
	out.WriteString(styles.Get("Header").Render(titleCase(command)) + "\n\n")

	width := nameColumnWidth(report)
	for _, res := range report.Results {
		glyph, detail := r.decorate(res)
		out.WriteString(fmt.Sprintf("  %s %-*s  %s\n", glyph, width, res.Name, detail))
	}
	if len(report.Results) > 0 {
		out.WriteString("\n")
	}
	out.WriteString(styles.Get("Muted").Render(summaryLine(Summarize(report))) + "\n")
	return out.String()
}

func (r *RichRenderer) decorate(res types.TargetResult) (glyph, detail string) {
	switch res.State {
	case types.StateRecorded:
		glyph = pterm.NewStyle(pterm.FgGreen).Sprint("✔")
		detail = styles.Get("Commit").Render(shortSHA(res.CommitSHA))
		if res.PreviousSHA != "" && res.PreviousSHA != res.CommitSHA {
			detail += styles.Get("Muted").Render(" (was " + shortSHA(res.PreviousSHA) + ")")
		}
	case types.StateSkipped:
		glyph = pterm.NewStyle(pterm.FgGray).Sprint("○")
		detail = styles.Get("Muted").Render(res.Reason)
	case types.StateFailed:
		glyph = pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint("✖")
		if res.Err != nil {
			detail = styles.Get("Error").Render(res.Err.Error())
		}
	default:
		glyph = pterm.NewStyle(pterm.FgCyan).Sprint("•")
		detail = string(res.State)
	}
	return glyph, detail
}

// RenderPlugins renders an aligned plugin table.
func (r *RichRenderer) RenderPlugins(rows []PluginRow) string {
	if len(rows) == 0 {
		return styles.Get("Muted").Render("no plugins installed") + "\n"
	}

	cols := pluginColumns(rows)
	var out strings.Builder
	out.WriteString(styles.Get("Muted").Render(cols.format("NAME", "REPO", "COMMIT", "LATEST")) + "\n")
	for _, row := range rows {
		name := styles.Get("Plugin").Render(padRight(row.Name, cols.name))
		repo := padRight(row.Repo, cols.repo)
		if row.Local {
			repo = styles.Get("FilePath").Render(repo)
		}
		commit := styles.Get("Commit").Render(padRight(shortSHA(row.Commit), cols.commit))
		line := strings.TrimRight(strings.Join([]string{name, repo, commit}, "  "), " ")
		if cols.latest > 0 {
			line = line + "  " + styles.Get("Warning").Render(shortSHA(row.Latest))
			line = strings.TrimRight(line, " ")
		}
		out.WriteString(line + "\n")
	}
	return out.String()
}

// RenderChecks renders the doctor table with one glyph-prefixed line per
// check.
func (r *RichRenderer) RenderChecks(rows []CheckRow) string {
	var out strings.Builder
	for _, row := range rows {
		var glyph string
		switch row.Status {
		case CheckOK:
			glyph = pterm.NewStyle(pterm.FgGreen).Sprint("✔")
		case CheckWarn:
			glyph = pterm.NewStyle(pterm.FgYellow).Sprint("⚠")
		default:
			glyph = pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint("✖")
		}
		out.WriteString(fmt.Sprintf("%s %-12s - %s\n", glyph, row.Name, row.Details))
	}
	return out.String()
}

// PlainRenderer renders unstyled text for pipes and NO_COLOR terminals.
type PlainRenderer struct{}

// NewPlainRenderer creates the plain text renderer.
func NewPlainRenderer() *PlainRenderer {
	return &PlainRenderer{}
}

// RenderReport renders per-target outcomes as plain rows.
func (r *PlainRenderer) RenderReport(command string, report types.Report) string {
	var out strings.Builder
	out.WriteString(strings.ToUpper(command) + "\n")

	width := nameColumnWidth(report)
	for _, res := range report.Results {
		word, detail := plainOutcome(res)
		out.WriteString(strings.TrimRight(
			fmt.Sprintf("  %-*s  %-8s %s", width, res.Name, word, detail), " ") + "\n")
	}
	if len(report.Results) > 0 {
		out.WriteString("\n")
	}
	out.WriteString(summaryLine(Summarize(report)) + "\n")
	return out.String()
}

// RenderPlugins renders an aligned plain plugin table.
func (r *PlainRenderer) RenderPlugins(rows []PluginRow) string {
	if len(rows) == 0 {
		return "no plugins installed\n"
	}

	cols := pluginColumns(rows)
	var out strings.Builder
	out.WriteString(cols.format("NAME", "REPO", "COMMIT", "LATEST") + "\n")
	for _, row := range rows {
		out.WriteString(cols.format(row.Name, row.Repo, shortSHA(row.Commit), shortSHA(row.Latest)) + "\n")
	}
	return out.String()
}

// RenderChecks renders the doctor table without styling.
func (r *PlainRenderer) RenderChecks(rows []CheckRow) string {
	var out strings.Builder
	for _, row := range rows {
		prefix := "✖"
		switch row.Status {
		case CheckOK:
			prefix = "✔"
		case CheckWarn:
			prefix = "⚠"
		}
		out.WriteString(fmt.Sprintf("%s %-12s - %s\n", prefix, row.Name, row.Details))
	}
	return out.String()
}

func plainOutcome(res types.TargetResult) (word, detail string) {
	switch res.State {
	case types.StateRecorded:
		detail = shortSHA(res.CommitSHA)
		if res.PreviousSHA != "" && res.PreviousSHA != res.CommitSHA {
			detail += " (was " + shortSHA(res.PreviousSHA) + ")"
		}
		return "ok", detail
	case types.StateSkipped:
		return "skipped", res.Reason
	case types.StateFailed:
		if res.Err != nil {
			detail = res.Err.Error()
		}
		return "failed", detail
	}
	return string(res.State), ""
}

func summaryLine(s Summary) string {
	return fmt.Sprintf("%d completed, %d skipped, %d failed", s.Completed, s.Skipped, s.Failed)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}

func nameColumnWidth(report types.Report) int {
	width := 0
	for _, res := range report.Results {
		if len(res.Name) > width {
			width = len(res.Name)
		}
	}
	return width
}

// pluginTableColumns holds per-column widths for the list output. A zero
// latest width means the column is omitted entirely.
type pluginTableColumns struct {
	name, repo, commit, latest int
}

func pluginColumns(rows []PluginRow) pluginTableColumns {
	cols := pluginTableColumns{name: len("NAME"), repo: len("REPO"), commit: len("COMMIT")}
	hasLatest := false
	for _, row := range rows {
		cols.name = max(cols.name, len(row.Name))
		cols.repo = max(cols.repo, len(row.Repo))
		cols.commit = max(cols.commit, len(shortSHA(row.Commit)))
		if row.Latest != "" {
			hasLatest = true
			cols.latest = max(cols.latest, len(shortSHA(row.Latest)))
		}
	}
	if hasLatest {
		cols.latest = max(cols.latest, len("LATEST"))
	}
	return cols
}

func (c pluginTableColumns) format(name, repo, commit, latest string) string {
	line := fmt.Sprintf("%-*s  %-*s  %-*s", c.name, name, c.repo, repo, c.commit, commit)
	if c.latest > 0 {
		line += "  " + latest
	}
	return strings.TrimRight(line, " ")
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
