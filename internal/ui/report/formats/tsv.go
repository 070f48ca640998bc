// # internal/ui/report/formats/tsv.go
package formats

import (
	"fmt"
	"strings"

	"shadowmap/internal/engine/shadow"
)

type TSVGenerator struct{}

func NewTSVGenerator() *TSVGenerator {
	return &TSVGenerator{}
}

// Generate renders the accepted mapping table, one row per (environment,
// element) pair, in the Records() sort order.
func (t *TSVGenerator) Generate(records []shadow.Record) (string, error) {
	var buf strings.Builder

	buf.WriteString("Environment\tMixin\tName\tDescriptor\tKind\tObfuscatedOwner\tObfuscatedName\tObfuscatedDescriptor\n")
	for _, r := range records {
		buf.WriteString(fmt.Sprintf("%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Environment,
			r.Owner,
			r.Name,
			r.Descriptor,
			r.Kind,
			r.Renamed.Owner,
			r.Renamed.Name,
			r.Renamed.Descriptor,
		))
	}

	return buf.String(), nil
}

// GenerateDiagnostics renders diagnostics for machine consumption.
func (t *TSVGenerator) GenerateDiagnostics(rows []shadow.Diagnostic) (string, error) {
	var buf strings.Builder

	buf.WriteString("Severity\tKind\tMixin\tElement\tTarget\tEnvironment\tFile\tLine\tColumn\tMessage\n")
	for _, d := range rows {
		buf.WriteString(fmt.Sprintf("%s\t%s\t%s\t%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
			d.Severity,
			d.Kind,
			d.Mixin,
			d.Element,
			d.Target,
			d.Environment,
			d.Location.File,
			d.Location.Line,
			d.Location.Column,
			d.Message,
		))
	}

	return buf.String(), nil
}
