package formats

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"shadowmap/internal/engine/shadow"
)

type MarkdownReportData struct {
	TotalFiles  int
	TotalMixins int
	Stats       shadow.Stats

	Diagnostics []shadow.Diagnostic
	Records     []shadow.Record
}

type MarkdownReportOptions struct {
	ProjectName string
	ProjectRoot string
	Version     string
	GeneratedAt time.Time
}

type MarkdownGenerator struct{}

func NewMarkdownGenerator() *MarkdownGenerator {
	return &MarkdownGenerator{}
}

func (m *MarkdownGenerator) Generate(data MarkdownReportData, opts MarkdownReportOptions) (string, error) {
	if opts.GeneratedAt.IsZero() {
		opts.GeneratedAt = time.Now().UTC()
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("title: Shadow Mapping Report\n")
	b.WriteString("project: " + nonEmpty(opts.ProjectName, "unknown") + "\n")
	b.WriteString("generated_at: " + opts.GeneratedAt.UTC().Format(time.RFC3339) + "\n")
	b.WriteString("version: " + nonEmpty(opts.Version, "unknown") + "\n")
	b.WriteString("---\n\n")

	b.WriteString("# Shadow Mapping Report\n\n")

	b.WriteString("## Executive Summary\n")
	b.WriteString("| Metric | Value |\n")
	b.WriteString("| --- | --- |\n")
	b.WriteString(fmt.Sprintf("| Total Files | %d |\n", data.TotalFiles))
	b.WriteString(fmt.Sprintf("| Mixin Classes | %d |\n", data.TotalMixins))
	b.WriteString(fmt.Sprintf("| Shadow Members | %d |\n", data.Stats.Elements))
	b.WriteString(fmt.Sprintf("| Skipped (remap=false) | %d |\n", data.Stats.Skipped))
	b.WriteString(fmt.Sprintf("| Mapping Lookups | %d |\n", data.Stats.Lookups))
	b.WriteString(fmt.Sprintf("| Accepted Mappings | %d |\n", data.Stats.Accepted))
	b.WriteString(fmt.Sprintf("| Conflicts | %d |\n", data.Stats.Conflicts))
	b.WriteString(fmt.Sprintf("| Missing Mappings | %d |\n", data.Stats.Missing))
	b.WriteString(fmt.Sprintf("| Invalid Targets | %d |\n\n", data.Stats.Invalid))

	m.writeDiagnostics(&b, "Errors", diagnosticsOf(data.Diagnostics, shadow.SeverityError), opts.ProjectRoot)
	m.writeDiagnostics(&b, "Warnings", diagnosticsOf(data.Diagnostics, shadow.SeverityWarning), opts.ProjectRoot)
	m.writeRecords(&b, data.Records)

	return b.String(), nil
}

func (m *MarkdownGenerator) writeDiagnostics(b *strings.Builder, title string, rows []shadow.Diagnostic, projectRoot string) {
	b.WriteString("## " + title + "\n")
	if len(rows) == 0 {
		b.WriteString("None.\n\n")
		return
	}
	b.WriteString("| Mixin | Element | Target | Message | Location |\n")
	b.WriteString("| --- | --- | --- | --- | --- |\n")
	for _, d := range rows {
		b.WriteString(fmt.Sprintf(
			"| `%s` | `%s` | `%s` | %s | `%s:%d:%d` |\n",
			nonEmpty(d.Mixin, "-"),
			nonEmpty(d.Element, "-"),
			nonEmpty(d.Target, "-"),
			d.Message,
			relPath(projectRoot, d.Location.File),
			d.Location.Line,
			d.Location.Column,
		))
	}
	b.WriteString("\n")
}

func (m *MarkdownGenerator) writeRecords(b *strings.Builder, records []shadow.Record) {
	b.WriteString("## Resolved Mappings\n")
	if len(records) == 0 {
		b.WriteString("No mappings resolved.\n\n")
		return
	}
	b.WriteString("| Environment | Mixin | Member | Kind | Obfuscated |\n")
	b.WriteString("| --- | --- | --- | --- | --- |\n")
	for _, r := range records {
		b.WriteString(fmt.Sprintf(
			"| `%s` | `%s` | `%s` | %s | `%s` |\n",
			r.Environment,
			r.Owner,
			r.Name,
			r.Kind,
			r.Renamed.Name,
		))
	}
	b.WriteString("\n")
}

func diagnosticsOf(rows []shadow.Diagnostic, sev shadow.Severity) []shadow.Diagnostic {
	out := make([]shadow.Diagnostic, 0, len(rows))
	for _, d := range rows {
		if d.Severity == sev {
			out = append(out, d)
		}
	}
	return out
}

func relPath(root, path string) string {
	root = strings.TrimSpace(root)
	path = strings.TrimSpace(path)
	if root == "" || path == "" {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func nonEmpty(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
