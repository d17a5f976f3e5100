// Package export renders a completed profiling report as JSON, CSV, or HTML.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"go.uber.org/zap"

	"github.com/CharlesDeJager/dprof/internal/profiler"
)

// FormatVersion is stamped into the export envelope.
const FormatVersion = "1.0"

// Supported output formats.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatHTML = "html"
)

// Envelope wraps a report with export metadata, the shape a downstream
// consumer sees in a JSON export.
type Envelope struct {
	ExportedAt   time.Time       `json:"exported_at"`
	ExportFormat string          `json:"export_format"`
	Version      string          `json:"version"`
	RunID        string          `json:"run_id"`
	TotalTables  int             `json:"total_tables"`
	Tables       profiler.Report `json:"tables"`
}

// Exporter writes reports to files or streams.
type Exporter struct {
	logger *zap.Logger
	now    func() time.Time
}

func New(logger *zap.Logger) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{logger: logger, now: time.Now}
}

// Filename builds the default timestamped output name for a format.
func (e *Exporter) Filename(format string) string {
	return fmt.Sprintf("data_profile_%s.%s", e.now().Format("20060102_150405"), format)
}

// Export renders the report in the requested format and writes it to
// outPath. An empty outPath selects a timestamped filename in the working
// directory. The written path is returned.
func (e *Exporter) Export(report profiler.Report, format, outPath string) (string, error) {
	format = strings.ToLower(format)
	if outPath == "" {
		outPath = e.Filename(format)
	}

	f, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("error creating export file %s: %w", outPath, err)
	}
	defer f.Close()

	switch format {
	case FormatJSON:
		err = e.WriteJSON(f, report)
	case FormatCSV:
		err = e.WriteCSV(f, report)
	case FormatHTML:
		err = e.WriteHTML(f, report)
	default:
		err = fmt.Errorf("unsupported export format: %s", format)
	}
	if err != nil {
		return "", err
	}

	e.logger.Info("report exported",
		zap.String("format", format),
		zap.String("path", outPath),
		zap.Int("tables", len(report)))
	return outPath, nil
}

// WriteJSON emits the metadata envelope with the full report inside.
func (e *Exporter) WriteJSON(w io.Writer, report profiler.Report) error {
	env := Envelope{
		ExportedAt:   e.now().UTC(),
		ExportFormat: FormatJSON,
		Version:      FormatVersion,
		RunID:        uuid.NewString(),
		TotalTables:  len(report),
		Tables:       report,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(env); err != nil {
		return fmt.Errorf("error encoding JSON export: %w", err)
	}
	return nil
}

// WriteCSV emits a summary block followed by one column-detail block per
// table, separated by blank lines.
func (e *Exporter) WriteCSV(w io.Writer, report profiler.Report) error {
	var blocks []string
	blocks = append(blocks, summaryTable(report).RenderCSV())
	for _, name := range sortedTables(report) {
		entry := report[name]
		if entry.Err != nil {
			continue
		}
		blocks = append(blocks, columnTable(entry.Profile).RenderCSV())
	}
	_, err := io.WriteString(w, strings.Join(blocks, "\n\n")+"\n")
	if err != nil {
		return fmt.Errorf("error writing CSV export: %w", err)
	}
	return nil
}

// WriteHTML emits a single navigable page with a summary table and a
// section per profiled table.
func (e *Exporter) WriteHTML(w io.Writer, report profiler.Report) error {
	var body strings.Builder
	body.WriteString("<h2>Summary</h2>\n")
	body.WriteString(summaryTable(report).RenderHTML())
	body.WriteString("\n")

	for _, name := range sortedTables(report) {
		entry := report[name]
		fmt.Fprintf(&body, "<h2 id=%q>%s</h2>\n", anchor(name), htmlEscape(name))
		if entry.Err != nil {
			fmt.Fprintf(&body, "<p class=\"error\">%s</p>\n", htmlEscape(entry.Err.Error()))
			continue
		}
		body.WriteString(columnTable(entry.Profile).RenderHTML())
		body.WriteString("\n")
	}

	_, err := fmt.Fprintf(w, pageTemplate, e.now().UTC().Format(time.RFC3339), body.String())
	if err != nil {
		return fmt.Errorf("error writing HTML export: %w", err)
	}
	return nil
}

// LoadJSON reads a previously exported JSON report back, accepting either
// the envelope form or a bare report object.
func LoadJSON(r io.Reader) (profiler.Report, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading report: %w", err)
	}

	var env Envelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Tables != nil {
		return env.Tables, nil
	}

	var report profiler.Report
	if err := json.Unmarshal(raw, &report); err != nil {
		return nil, fmt.Errorf("error parsing report: %w", err)
	}
	return report, nil
}

func sortedTables(report profiler.Report) []string {
	names := make([]string, 0, len(report))
	for name := range report {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func summaryTable(report profiler.Report) table.Writer {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Table", "Rows", "Columns", "Avg Quality", "Status"})
	for _, name := range sortedTables(report) {
		entry := report[name]
		if entry.Err != nil {
			t.AppendRow(table.Row{name, "-", "-", "-", entry.Err.Error()})
			continue
		}
		p := entry.Profile
		t.AppendRow(table.Row{
			name,
			p.TotalRecords,
			p.TotalColumns,
			fmt.Sprintf("%.1f", averageQuality(p)),
			"ok",
		})
	}
	t.SetStyle(table.StyleDefault)
	return t
}

func columnTable(p *profiler.TableProfile) table.Writer {
	t := table.NewWriter()
	t.SetTitle(p.TableName)
	t.AppendHeader(table.Row{"Column", "Type", "Nulls %", "Blanks %", "Distinct %", "Quality", "Issues"})

	names := make([]string, 0, len(p.Columns))
	for name := range p.Columns {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		entry := p.Columns[name]
		if entry.Err != nil {
			t.AppendRow(table.Row{name, "-", "-", "-", "-", "-", entry.Err.Error()})
			continue
		}
		c := entry.Profile
		t.AppendRow(table.Row{
			c.ColumnName,
			c.DataType,
			fmt.Sprintf("%.2f", c.NullPercentage),
			fmt.Sprintf("%.2f", c.BlankPercentage),
			fmt.Sprintf("%.2f", c.DistinctPercentage),
			fmt.Sprintf("%.1f", c.QualityScore),
			strings.Join(c.PotentialIssues, "; "),
		})
	}
	t.SetStyle(table.StyleDefault)
	return t
}

// averageQuality is the mean quality score over successfully profiled
// columns, 0 when none succeeded.
func averageQuality(p *profiler.TableProfile) float64 {
	var sum float64
	var n int
	for _, entry := range p.Columns {
		if entry.Err != nil || entry.Profile == nil {
			continue
		}
		sum += entry.Profile.QualityScore
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func anchor(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, " ", "-"))
}

func htmlEscape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}

const pageTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Data Profile</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; margin-bottom: 1.5em; }
th, td { border: 1px solid #ccc; padding: 4px 8px; text-align: left; }
th { background: #f0f0f0; }
.error { color: #b00; }
</style>
</head>
<body>
<h1>Data Profile</h1>
<p>Generated at %s</p>
%s
</body>
</html>
`
