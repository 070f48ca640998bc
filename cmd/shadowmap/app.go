// # cmd/shadowmap/app.go
package main

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gobwas/glob"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"shadowmap/internal/core/config"
	"shadowmap/internal/core/errors"
	"shadowmap/internal/core/ports"
	"shadowmap/internal/data/store"
	"shadowmap/internal/engine/mapping"
	"shadowmap/internal/engine/parser"
	"shadowmap/internal/engine/shadow"
	"shadowmap/internal/shared/observability"
	"shadowmap/internal/shared/util"
	"shadowmap/internal/shared/version"
	"shadowmap/internal/ui/report/formats"
	"shadowmap/internal/watcher"
)

type App struct {
	Config     *config.Config
	Parser     ports.CodeParser
	Envs       *mapping.EnvironmentSet
	Store      ports.PassStore
	teaProgram *tea.Program
	limiter    *util.Limiter

	// Parsed files keyed by path so watch-mode changes reparse only what
	// actually changed.
	files map[string]*parser.File

	// Mapping file path -> environment names that load from it, used to
	// reload environments when watch mode sees a mapping change.
	mappingFiles map[string]bool
}

func NewApp(cfg *config.Config) (*App, error) {
	p := parser.NewParser(parser.NewGrammarLoader())
	p.RegisterExtractor("java", parser.NewMixinExtractor(cfg.Resolve.Prefix))

	envs, mappingFiles, err := loadEnvironments(cfg.Environments)
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:       cfg,
		Parser:       p,
		Envs:         envs,
		limiter:      util.NewLimiter(cfg.Watch.RateLimit, cfg.Watch.Burst),
		files:        make(map[string]*parser.File),
		mappingFiles: mappingFiles,
	}

	if cfg.DB.Enabled {
		s, err := store.Open(cfg.DB.Path)
		if err != nil {
			return nil, err
		}
		a.Store = s
	}

	return a, nil
}

// loadEnvironments builds the environment set in two passes: table-backed
// environments first, then csv overlays that rename over a loaded base.
func loadEnvironments(specs []config.Environment) (*mapping.EnvironmentSet, map[string]bool, error) {
	set := mapping.NewEnvironmentSet()
	byName := make(map[string]*mapping.Environment, len(specs))
	files := make(map[string]bool, len(specs))

	for _, spec := range specs {
		files[spec.File] = true

		var (
			table *mapping.Table
			err   error
		)
		switch strings.ToLower(spec.Type) {
		case "srg":
			table, err = mapping.LoadSRGFile(spec.File)
		case "tsrg":
			table, err = mapping.LoadTSRGFile(spec.File)
		default:
			continue
		}
		if err != nil {
			return nil, nil, errors.AddContext(err, errors.CtxEnvironment, spec.Name)
		}

		env := mapping.NewEnvironment(spec.Name, table)
		byName[spec.Name] = env
		if err := set.Add(env); err != nil {
			return nil, nil, err
		}
		observability.EnvironmentEntries.WithLabelValues(spec.Name).Set(float64(env.Len()))
	}

	for _, spec := range specs {
		if strings.ToLower(spec.Type) != "csv" {
			continue
		}
		base, ok := byName[spec.Base]
		if !ok {
			return nil, nil, errors.New(errors.CodeValidationError,
				fmt.Sprintf("environment %q: base %q is not loaded", spec.Name, spec.Base))
		}
		renames, err := mapping.LoadMemberCSVFile(spec.File)
		if err != nil {
			return nil, nil, errors.AddContext(err, errors.CtxEnvironment, spec.Name)
		}
		env := mapping.NewOverlayEnvironment(spec.Name, base, renames)
		if err := set.Add(env); err != nil {
			return nil, nil, err
		}
		observability.EnvironmentEntries.WithLabelValues(spec.Name).Set(float64(env.Len()))
	}

	return set, files, nil
}

func (a *App) Close() error {
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}

func (a *App) InitialScan() error {
	files, err := a.ScanDirectories(a.Config.Sources.Roots, a.Config.Exclude.Dirs, a.Config.Exclude.Files)
	if err != nil {
		return err
	}

	for _, filePath := range files {
		if err := a.ProcessFile(filePath); err != nil {
			slog.Warn("failed to process file", "path", filePath, "error", err)
		}
	}
	return nil
}

func (a *App) ScanDirectories(paths []string, excludeDirs, excludeFiles []string) ([]string, error) {
	var files []string

	dirGlobs := make([]glob.Glob, 0, len(excludeDirs))
	for _, p := range excludeDirs {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude dir pattern %q: %w", p, err)
		}
		dirGlobs = append(dirGlobs, g)
	}

	fileGlobs := make([]glob.Glob, 0, len(excludeFiles))
	for _, p := range excludeFiles {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude file pattern %q: %w", p, err)
		}
		fileGlobs = append(fileGlobs, g)
	}

	for _, root := range paths {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			base := filepath.Base(path)

			if d.IsDir() {
				for _, g := range dirGlobs {
					if g.Match(base) {
						return filepath.SkipDir
					}
				}
				return nil
			}

			if !a.Parser.IsSupportedPath(path) {
				return nil
			}

			for _, g := range fileGlobs {
				if g.Match(base) {
					return nil
				}
			}

			files = append(files, path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return files, nil
}

func (a *App) ProcessFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	start := time.Now()
	file, err := a.Parser.ParseFile(path, content)
	if err != nil {
		return err
	}
	observability.ParsingDuration.Observe(time.Since(start).Seconds())

	a.files[path] = file
	return nil
}

// PassOutcome bundles everything one resolution pass produced.
type PassOutcome struct {
	RunID       string
	Stats       shadow.Stats
	Diagnostics []shadow.Diagnostic
	Records     []shadow.Record
	Files       int
	Mixins      int
	Duration    time.Duration
}

func (o PassOutcome) Warnings() int {
	n := 0
	for _, d := range o.Diagnostics {
		if d.Severity == shadow.SeverityWarning {
			n++
		}
	}
	return n
}

func (o PassOutcome) Errors() int {
	n := 0
	for _, d := range o.Diagnostics {
		if d.Severity == shadow.SeverityError {
			n++
		}
	}
	return n
}

// RunPass resolves every shadow member of every parsed mixin class against
// the loaded environments, in deterministic file order.
func (a *App) RunPass(ctx context.Context) (PassOutcome, error) {
	ctx, span := observability.Tracer.Start(ctx, "app.RunPass", trace.WithAttributes(
		attribute.Int("files", len(a.files)),
		attribute.Int("environments", a.Envs.Len()),
	))
	defer span.End()

	if err := ctx.Err(); err != nil {
		return PassOutcome{}, err
	}

	start := time.Now()

	index := parser.NewClassIndex()
	for _, file := range a.files {
		index.AddFile(file)
	}

	collector := shadow.NewCollector()
	table := shadow.NewTable()
	resolver := shadow.NewResolver(a.Envs, index, collector, table)

	mixins := 0
	for _, path := range util.SortedStringKeys(a.files) {
		file := a.files[path]
		for _, cls := range file.Classes {
			if !cls.IsMixin {
				continue
			}
			mixins++
			for _, sm := range cls.Shadows {
				elem := shadow.NewElement(cls.Name, sm.Name, sm.Descriptor, sm.Kind, sm.Remap, shadow.DeclRef{
					File:   sm.Location.File,
					Line:   sm.Location.Line,
					Column: sm.Location.Column,
				})
				resolver.Resolve(elem, cls.Targets)
			}
		}
	}

	outcome := PassOutcome{
		RunID:       uuid.NewString(),
		Stats:       resolver.Stats(),
		Diagnostics: collector.Sorted(),
		Records:     table.Records(),
		Files:       len(a.files),
		Mixins:      mixins,
		Duration:    time.Since(start),
	}

	observability.PassDuration.Observe(outcome.Duration.Seconds())
	observability.LookupsTotal.Add(float64(outcome.Stats.Lookups))
	observability.ConflictsTotal.Add(float64(outcome.Stats.Conflicts))
	observability.MissingMappingsTotal.Add(float64(outcome.Stats.Missing))
	observability.MappingTableSize.Set(float64(table.Len()))

	span.SetAttributes(
		attribute.Int("lookups", outcome.Stats.Lookups),
		attribute.Int("conflicts", outcome.Stats.Conflicts),
	)

	return outcome, nil
}

func (a *App) GenerateOutputs(outcome PassOutcome) error {
	projectRoot := ""
	if len(a.Config.Sources.Roots) > 0 {
		projectRoot = a.Config.Sources.Roots[0]
	}

	if a.Config.Output.SARIF != "" {
		data, err := formats.GenerateSARIF(projectRoot, outcome.RunID, outcome.Diagnostics)
		if err != nil {
			return err
		}
		if err := util.WriteFileWithDirs(a.Config.Output.SARIF, data, 0o644); err != nil {
			return err
		}
	}

	if a.Config.Output.Markdown != "" {
		md, err := formats.NewMarkdownGenerator().Generate(
			formats.MarkdownReportData{
				TotalFiles:  outcome.Files,
				TotalMixins: outcome.Mixins,
				Stats:       outcome.Stats,
				Diagnostics: outcome.Diagnostics,
				Records:     outcome.Records,
			},
			formats.MarkdownReportOptions{
				ProjectRoot: projectRoot,
				Version:     version.Version,
			},
		)
		if err != nil {
			return err
		}
		if err := util.WriteStringWithDirs(a.Config.Output.Markdown, md, 0o644); err != nil {
			return err
		}
	}

	if a.Config.Output.TSV != "" {
		tsvGen := formats.NewTSVGenerator()
		mappingsTSV, err := tsvGen.Generate(outcome.Records)
		if err != nil {
			return err
		}
		tsv := mappingsTSV

		if len(outcome.Diagnostics) > 0 {
			diagTSV, err := tsvGen.GenerateDiagnostics(outcome.Diagnostics)
			if err != nil {
				return err
			}
			tsv = strings.TrimRight(mappingsTSV, "\n") + "\n\n" + strings.TrimRight(diagTSV, "\n") + "\n"
		}

		if err := util.WriteStringWithDirs(a.Config.Output.TSV, tsv, 0o644); err != nil {
			return err
		}
	}

	return nil
}

func (a *App) PersistPass(outcome PassOutcome) error {
	if a.Store == nil {
		return nil
	}

	rows := make([]store.Mapping, 0, len(outcome.Records))
	for _, r := range outcome.Records {
		rows = append(rows, store.Mapping{
			Environment:       r.Environment,
			Owner:             r.Owner,
			Name:              r.Name,
			Descriptor:        r.Descriptor,
			Kind:              r.Kind.String(),
			RenamedOwner:      r.Renamed.Owner,
			RenamedName:       r.Renamed.Name,
			RenamedDescriptor: r.Renamed.Descriptor,
		})
	}

	return a.Store.SavePass(store.Pass{
		RunID:        outcome.RunID,
		Files:        outcome.Files,
		Mixins:       outcome.Mixins,
		Elements:     outcome.Stats.Elements,
		Skipped:      outcome.Stats.Skipped,
		Lookups:      outcome.Stats.Lookups,
		Accepted:     outcome.Stats.Accepted,
		Conflicts:    outcome.Stats.Conflicts,
		Missing:      outcome.Stats.Missing,
		Invalid:      outcome.Stats.Invalid,
		WarningCount: outcome.Warnings(),
		ErrorCount:   outcome.Errors(),
	}, rows)
}

func (a *App) HandleChanges(paths []string) {
	observability.WatcherEventsTotal.Add(float64(len(paths)))

	if !a.limiter.Allow(1) {
		slog.Debug("change pass rate limited", "pending", len(paths))
		if err := a.limiter.Wait(context.Background(), 1); err != nil {
			return
		}
	}

	slog.Info("detected changes", "count", len(paths))

	reloadEnvs := false
	for _, path := range paths {
		if a.mappingFiles[path] {
			reloadEnvs = true
			continue
		}
		if !a.Parser.IsSupportedPath(path) {
			continue
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			delete(a.files, path)
			continue
		}
		if err := a.ProcessFile(path); err != nil {
			slog.Warn("failed to re-process file", "path", path, "error", err)
		}
	}

	if reloadEnvs {
		envs, mappingFiles, err := loadEnvironments(a.Config.Environments)
		if err != nil {
			slog.Error("failed to reload mapping environments", "error", err)
		} else {
			a.Envs = envs
			a.mappingFiles = mappingFiles
		}
	}

	outcome, err := a.RunPass(context.Background())
	if err != nil {
		slog.Error("resolution pass failed", "error", err)
		return
	}

	if err := a.GenerateOutputs(outcome); err != nil {
		slog.Error("failed to generate outputs", "error", err)
	}
	if err := a.PersistPass(outcome); err != nil {
		slog.Error("failed to persist pass", "error", err)
	}

	a.PrintSummary(outcome)

	if a.teaProgram != nil {
		a.teaProgram.Send(updateMsg{outcome: outcome})
	}
}

func (a *App) PrintSummary(outcome PassOutcome) {
	fmt.Println(strings.Repeat("-", 40))
	fmt.Printf("Pass %s: %d files, %d mixins, %d shadow members in %v\n",
		shortRunID(outcome.RunID), outcome.Files, outcome.Mixins, outcome.Stats.Elements, outcome.Duration.Round(time.Millisecond))
	fmt.Printf("   %d lookups, %d accepted, %d skipped (remap=false)\n",
		outcome.Stats.Lookups, outcome.Stats.Accepted, outcome.Stats.Skipped)

	errs := diagnosticsBySeverity(outcome.Diagnostics, shadow.SeverityError)
	warns := diagnosticsBySeverity(outcome.Diagnostics, shadow.SeverityWarning)

	if len(errs) > 0 {
		fmt.Printf("❌ %d ERRORS:\n", len(errs))
		for _, d := range errs {
			fmt.Printf("   %s (%s:%d)\n", d.Message, d.Location.File, d.Location.Line)
		}
	} else {
		fmt.Println("✅ No errors.")
	}

	if len(warns) > 0 {
		fmt.Printf("⚠️  %d WARNINGS:\n", len(warns))
		for _, d := range warns {
			fmt.Printf("   %s (%s:%d)\n", d.Message, d.Location.File, d.Location.Line)
		}
	} else {
		fmt.Println("✅ No warnings.")
	}

	if len(outcome.Records) > 0 {
		byEnv := make(map[string]int)
		for _, r := range outcome.Records {
			byEnv[r.Environment]++
		}
		parts := make([]string, 0, len(byEnv))
		for _, env := range util.SortedStringKeys(byEnv) {
			parts = append(parts, fmt.Sprintf("%s=%d", env, byEnv[env]))
		}
		fmt.Printf("📊 Accepted mappings per environment: %s\n", strings.Join(parts, ", "))
	}
	fmt.Println(strings.Repeat("-", 40))
}

func (a *App) StartWatcher() error {
	w, err := watcher.NewWatcher(
		a.Config.Watch.Debounce,
		a.Config.Exclude.Dirs,
		a.Config.Exclude.Files,
		a.HandleChanges,
	)
	if err != nil {
		return err
	}

	roots := append([]string(nil), a.Config.Sources.Roots...)
	for _, env := range a.Config.Environments {
		dir := filepath.Dir(env.File)
		if dir != "" {
			roots = append(roots, dir)
		}
	}
	sort.Strings(roots)
	roots = dedupe(roots)

	// Note: the watcher is not closed here, it runs for the process lifetime.
	return w.Watch(roots)
}

func (a *App) RunUI() error {
	m := initialModel()
	p := tea.NewProgram(m, tea.WithAltScreen())
	a.teaProgram = p

	go func() {
		outcome, err := a.RunPass(context.Background())
		if err != nil {
			slog.Error("resolution pass failed", "error", err)
			return
		}
		a.teaProgram.Send(updateMsg{outcome: outcome})
	}()

	_, err := p.Run()
	return err
}

func diagnosticsBySeverity(rows []shadow.Diagnostic, sev shadow.Severity) []shadow.Diagnostic {
	out := make([]shadow.Diagnostic, 0, len(rows))
	for _, d := range rows {
		if d.Severity == sev {
			out = append(out, d)
		}
	}
	return out
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func dedupe(sorted []string) []string {
	out := sorted[:0]
	var last string
	for i, s := range sorted {
		if i == 0 || s != last {
			out = append(out, s)
		}
		last = s
	}
	return out
}
