package display

import (
	"strings"
	"testing"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pezerrors "github.com/arthur-debert/pez/pkg/errors"
	"github.com/arthur-debert/pez/pkg/types"
	"github.com/arthur-debert/pez/pkg/ui"
)

func sampleReport() types.Report {
	var report types.Report
	report.Add(types.TargetResult{Name: "tide", State: types.StateRecorded, CommitSHA: "aabbccddeeff00112233"})
	report.Add(types.TargetResult{Name: "z", State: types.StateRecorded,
		CommitSHA: "1111111222333", PreviousSHA: "9999999888777"})
	report.Add(types.TargetResult{Name: "fzf", State: types.StateSkipped, Reason: "already installed"})
	report.Add(types.TargetResult{Name: "broken", State: types.StateFailed,
		Err: pezerrors.New(pezerrors.ErrCloneFailed, "clone failed")})
	return report
}

func TestNewRendererPicksByFormat(t *testing.T) {
	_, rich := NewRenderer(ui.FormatTerminal).(*RichRenderer)
	assert.True(t, rich)
	_, plain := NewRenderer(ui.FormatText).(*PlainRenderer)
	assert.True(t, plain)
	_, auto := NewRenderer(ui.FormatAuto).(*PlainRenderer)
	assert.True(t, auto)
}

func TestPlainRenderReport(t *testing.T) {
	out := NewPlainRenderer().RenderReport("install", sampleReport())
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 7)

	assert.Equal(t, "INSTALL", lines[0])
	assert.Contains(t, lines[1], "tide")
	assert.Contains(t, lines[1], "ok")
	assert.Contains(t, lines[1], "aabbccd")
	assert.NotContains(t, lines[1], "aabbccdd")
	assert.Contains(t, lines[2], "(was 9999999)")
	assert.Contains(t, lines[3], "skipped")
	assert.Contains(t, lines[3], "already installed")
	assert.Contains(t, lines[4], "failed")
	assert.Contains(t, lines[4], "CLONE_FAILED")
	assert.Equal(t, "", lines[5])
	assert.Equal(t, "2 completed, 1 skipped, 1 failed", lines[6])
}

func TestPlainRenderReportEmpty(t *testing.T) {
	out := NewPlainRenderer().RenderReport("prune", types.Report{})
	assert.Equal(t, "PRUNE\n0 completed, 0 skipped, 0 failed\n", out)
}

func TestPlainRenderPlugins(t *testing.T) {
	rows := []PluginRow{
		{Name: "tide", Repo: "ilancosman/tide", Commit: "aabbccddeeff"},
		{Name: "dev", Repo: "/home/u/dev", Commit: "local", Local: true},
	}
	out := NewPlainRenderer().RenderPlugins(rows)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)

	// Columns line up under their headers.
	assert.Equal(t, strings.Index(lines[0], "REPO"), strings.Index(lines[1], "ilancosman/tide"))
	assert.Equal(t, strings.Index(lines[0], "COMMIT"), strings.Index(lines[1], "aabbccd"))
	assert.NotContains(t, lines[0], "LATEST")
	assert.Contains(t, lines[2], "local")
}

func TestPlainRenderPluginsOutdatedColumn(t *testing.T) {
	rows := []PluginRow{
		{Name: "tide", Repo: "ilancosman/tide", Commit: "aabbccddeeff", Latest: "f00dfacebeef"},
	}
	out := NewPlainRenderer().RenderPlugins(rows)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "LATEST")
	assert.Equal(t, strings.Index(lines[0], "LATEST"), strings.Index(lines[1], "f00dfac"))
}

func TestPlainRenderPluginsEmpty(t *testing.T) {
	assert.Equal(t, "no plugins installed\n", NewPlainRenderer().RenderPlugins(nil))
}

func TestPlainRenderChecks(t *testing.T) {
	rows := []CheckRow{
		{Name: "config", Status: CheckOK, Details: "found: x"},
		{Name: "repos", Status: CheckWarn, Details: "missing: a"},
		{Name: "duplicates", Status: CheckError, Details: "boom"},
	}
	out := NewPlainRenderer().RenderChecks(rows)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "✔ config       - found: x", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "⚠ repos"))
	assert.True(t, strings.HasSuffix(lines[1], "- missing: a"))
	assert.True(t, strings.HasPrefix(lines[2], "✖ duplicates"))
}

func TestRichRendererContent(t *testing.T) {
	// Glyph coloring is terminal-dependent; the textual content is not.
	pterm.DisableStyling()

	rich := NewRichRenderer()
	report := rich.RenderReport("upgrade", sampleReport())
	assert.Contains(t, report, "Upgrade")
	assert.Contains(t, report, "tide")
	assert.Contains(t, report, "(was 9999999)")
	assert.Contains(t, report, "2 completed, 1 skipped, 1 failed")

	plugins := rich.RenderPlugins([]PluginRow{
		{Name: "tide", Repo: "ilancosman/tide", Commit: "aabbccddeeff"},
	})
	assert.Contains(t, plugins, "NAME")
	assert.Contains(t, plugins, "aabbccd")

	checks := rich.RenderChecks([]CheckRow{{Name: "config", Status: CheckOK, Details: "found"}})
	assert.Contains(t, checks, "config")
	assert.Contains(t, checks, "found")

	assert.Contains(t, rich.RenderPlugins(nil), "no plugins installed")
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleReport())
	assert.Equal(t, Summary{Completed: 2, Skipped: 1, Failed: 1}, s)
}
