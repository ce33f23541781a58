// Package analyzer parses the JavaScript and TypeScript files of a
// workspace concurrently and collects their diagnostics and dependencies.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/hannajonsd/jsparse/manifest"
	"github.com/hannajonsd/jsparse/mediatype"
	"github.com/hannajonsd/jsparse/parser"
	"github.com/hannajonsd/jsparse/reachability"
	"github.com/hannajonsd/jsparse/sourcetext"
	"github.com/hannajonsd/jsparse/telemetry"
)

var (
	ErrFileTooLarge         = errors.New("file too large")
	ErrUnsupportedMediaType = errors.New("unsupported media type")
)

// skippedDirs are never descended into.
var skippedDirs = map[string]bool{
	"node_modules":     true,
	"bower_components": true,
	"vendor":           true,
	"dist":             true,
	"build":            true,
	"coverage":         true,
}

type Options struct {
	// Mode forces module or script parsing. ModeProgram defers to the
	// file extension and the nearest package.json.
	Mode          parser.Mode
	CaptureTokens bool
	ScopeAnalysis bool
	Dependencies  bool
	Jobs          int
	MaxFileSize   int64
	Exclude       []string
	// Syntax overrides the grammar configuration per media type.
	Syntax func(mediatype.MediaType) parser.Syntax
}

// Analyzer runs parses over many files. It is safe for concurrent use.
type Analyzer struct {
	opts      Options
	runID     string
	manifests *manifest.Lookup
	tracer    trace.Tracer
}

func New(opts Options) *Analyzer {
	if opts.Jobs <= 0 {
		opts.Jobs = runtime.NumCPU()
	}
	return &Analyzer{
		opts:      opts,
		runID:     uuid.NewString(),
		manifests: manifest.NewLookup(),
		tracer:    telemetry.Tracer(),
	}
}

// RunID identifies this analyzer's run in logs and spans.
func (a *Analyzer) RunID() string {
	return a.runID
}

// Run finds the source files under roots, parses them and assembles a
// report.
func (a *Analyzer) Run(ctx context.Context, roots ...string) (*Report, error) {
	paths, err := a.FindSourceFiles(roots...)
	if err != nil {
		return nil, fmt.Errorf("failed to find source files: %w", err)
	}
	slog.Info("analyzing files", slog.String("run_id", a.runID), slog.Int("files", len(paths)))

	results, err := a.AnalyzeFiles(ctx, paths)
	if err != nil {
		return nil, err
	}

	report := &Report{RunID: a.runID, Files: results}
	if a.opts.Dependencies {
		report.Dependencies = a.DiscoverDependencies(results)
	}
	report.Summary = summarize(report)
	return report, nil
}

// FindSourceFiles expands roots into parseable files. Files named directly
// are kept as given; directories are walked honoring .gitignore and the
// exclude patterns.
func (a *Analyzer) FindSourceFiles(roots ...string) ([]string, error) {
	var files []string
	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, root)
			continue
		}

		ignore := newIgnoreMatcher(root, a.opts.Exclude)
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if path == root {
				return nil
			}
			if d.IsDir() {
				if strings.HasPrefix(d.Name(), ".") || skippedDirs[d.Name()] || ignore.Ignored(path, true) {
					return filepath.SkipDir
				}
				return nil
			}
			if ignore.Ignored(path, false) {
				return nil
			}
			if mediatype.FromPath(path).IsParseable() {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

// AnalyzeFiles parses paths with at most Jobs files in flight. Results are
// in the order of paths. Per-file failures are recorded in the results;
// the returned error is only the context's.
func (a *Analyzer) AnalyzeFiles(ctx context.Context, paths []string) ([]FileResult, error) {
	results := make([]FileResult, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.Jobs)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = a.AnalyzeFile(ctx, path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// AnalyzeFile reads and parses one file.
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string) FileResult {
	mt := mediatype.FromPath(path)
	_, span := a.tracer.Start(ctx, "analyzer.parseFile", trace.WithAttributes(
		attribute.String("file.path", path),
		attribute.String("media_type", mt.String()),
		attribute.String("run.id", a.runID),
	))
	defer span.End()

	start := time.Now()
	result, size, err := a.parseFile(path, mt)
	result.Duration = time.Since(start)

	span.SetAttributes(
		attribute.String("status", result.Status),
		attribute.Int("diagnostics", len(result.Diagnostics)),
	)
	if err != nil {
		result.Error = err.Error()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.Warn("file not parsed",
			slog.String("run_id", a.runID),
			slog.String("path", path),
			slog.String("status", result.Status),
			slog.String("error", err.Error()))
	}

	telemetry.RecordFile(mt.String(), result.Status, size, result.Duration)
	for _, d := range result.Diagnostics {
		telemetry.RecordDiagnostics(d.Severity.String(), 1)
	}
	return result
}

func (a *Analyzer) parseFile(path string, mt mediatype.MediaType) (FileResult, int, error) {
	result := FileResult{Path: path, MediaType: mt, Status: telemetry.StatusSkipped}

	if !mt.IsParseable() {
		return result, 0, fmt.Errorf("%w: %s", ErrUnsupportedMediaType, path)
	}

	info, err := os.Stat(path)
	if err != nil {
		result.Status = telemetry.StatusError
		return result, 0, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if a.opts.MaxFileSize > 0 && info.Size() > a.opts.MaxFileSize {
		return result, 0, fmt.Errorf("%w: %s is %d bytes", ErrFileTooLarge, path, info.Size())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Status = telemetry.StatusError
		return result, 0, fmt.Errorf("failed to read %s: %w", path, err)
	}
	text, err := sourcetext.FromBytes(data)
	if err != nil {
		result.Status = telemetry.StatusError
		return result, len(data), fmt.Errorf("failed to decode %s: %w", path, err)
	}

	mode := a.opts.Mode
	if mode == parser.ModeProgram {
		if mode, err = a.manifests.ModeFor(path, mt); err != nil {
			slog.Warn("ignoring package.json", slog.String("path", path), slog.String("error", err.Error()))
		}
	}
	result.Mode = mode

	params := parser.ParseParams{
		Specifier:     specifierFor(path),
		TextInfo:      text,
		MediaType:     mt,
		CaptureTokens: a.opts.CaptureTokens,
		ScopeAnalysis: a.opts.ScopeAnalysis,
	}
	if a.opts.Syntax != nil {
		params.Syntax = a.opts.Syntax(mt)
	}

	ps, err := parser.Parse(params, mode)
	if err != nil {
		var diag *parser.Diagnostic
		if errors.As(err, &diag) {
			result.Status = telemetry.StatusFatal
			result.Diagnostics = []DiagnosticInfo{diagnosticInfo(diag)}
			return result, len(data), err
		}
		result.Status = telemetry.StatusError
		return result, len(data), err
	}

	result.parsed = ps
	result.Module = ps.IsModule()
	result.Statements = len(ps.Program().Body())
	result.Comments = ps.Comments().Len()
	if ps.HasTokens() {
		result.Tokens = ps.Tokens()
	}
	for _, d := range ps.Diagnostics() {
		result.Diagnostics = append(result.Diagnostics, diagnosticInfo(d))
	}
	result.Status = telemetry.StatusOK
	if len(result.Diagnostics) > 0 {
		result.Status = telemetry.StatusRecovered
	}
	if a.opts.Dependencies {
		deps := reachability.Analyze(ps)
		result.Deps = &deps
	}
	return result, len(data), nil
}

// SyntaxEntries reports the grammar configuration each path would be
// parsed with.
func (a *Analyzer) SyntaxEntries(paths []string) []SyntaxEntry {
	entries := make([]SyntaxEntry, 0, len(paths))
	for _, path := range paths {
		mt := mediatype.FromPath(path)
		var syntax parser.Syntax
		if a.opts.Syntax != nil {
			syntax = a.opts.Syntax(mt)
		} else {
			syntax = parser.GetSyntax(mt)
		}
		entries = append(entries, SyntaxEntry{Path: path, MediaType: mt, Flavor: syntax.Flavor(), Syntax: syntax})
	}
	return entries
}

func diagnosticInfo(d *parser.Diagnostic) DiagnosticInfo {
	pos := d.DisplayPosition()
	return DiagnosticInfo{
		Message:  d.Message(),
		Severity: d.Severity,
		Line:     pos.Line,
		Column:   pos.Column,
		Span:     d.Range,
		LineText: d.LineText(),
	}
}

// specifierFor turns a file path into a file: URL specifier.
func specifierFor(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return "file://" + filepath.ToSlash(abs)
}

func summarize(report *Report) Summary {
	s := Summary{Files: len(report.Files), Dependencies: len(report.Dependencies)}
	for _, f := range report.Files {
		s.Diagnostics += len(f.Diagnostics)
		switch f.Status {
		case telemetry.StatusOK:
			s.Parsed++
		case telemetry.StatusRecovered:
			s.Parsed++
			s.Recovered++
		case telemetry.StatusFatal:
			s.Fatal++
		case telemetry.StatusSkipped:
			s.Skipped++
		default:
			s.Errors++
		}
	}
	return s
}
