package analyzer

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/hannajonsd/jsparse/ast"
	"github.com/hannajonsd/jsparse/parser"
	"github.com/hannajonsd/jsparse/telemetry"
)

// Formats accepted by NewPrinter.
const (
	FormatText    = "text"
	FormatJSON    = "json"
	FormatMsgpack = "msgpack"
)

// Printer renders reports as colored text, JSON or MessagePack.
type Printer struct {
	w      io.Writer
	format string

	ok, warn, fail, dim, bold *color.Color
}

func NewPrinter(w io.Writer, format string, colored bool) (*Printer, error) {
	switch format {
	case FormatText, FormatJSON, FormatMsgpack:
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}

	p := &Printer{
		w:      w,
		format: format,
		ok:     color.New(color.FgGreen),
		warn:   color.New(color.FgYellow),
		fail:   color.New(color.FgRed, color.Bold),
		dim:    color.New(color.Faint),
		bold:   color.New(color.Bold),
	}
	for _, c := range []*color.Color{p.ok, p.warn, p.fail, p.dim, p.bold} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p, nil
}

func (p *Printer) encode(v any) error {
	switch p.format {
	case FormatJSON:
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatMsgpack:
		return msgpack.NewEncoder(p.w).Encode(v)
	}
	return fmt.Errorf("format %q cannot encode values", p.format)
}

// Report writes a full report.
func (p *Printer) Report(report *Report) error {
	if p.format != FormatText {
		return p.encode(report)
	}

	for i := range report.Files {
		p.file(&report.Files[i])
	}
	if len(report.Dependencies) > 0 {
		p.dependencies(report.Dependencies)
	}
	p.summary(report)
	return nil
}

func (p *Printer) file(f *FileResult) {
	var status *color.Color
	switch f.Status {
	case telemetry.StatusOK:
		status = p.ok
	case telemetry.StatusRecovered, telemetry.StatusSkipped:
		status = p.warn
	default:
		status = p.fail
	}

	kind := "script"
	if f.Module {
		kind = "module"
	}
	fmt.Fprintf(p.w, "%s ", p.bold.Sprint(f.Path))
	if f.Status == telemetry.StatusOK || f.Status == telemetry.StatusRecovered {
		fmt.Fprintf(p.w, "%s ", p.dim.Sprintf("[%s %s, %d statements, %d comments]", f.MediaType, kind, f.Statements, f.Comments))
	}
	fmt.Fprintln(p.w, status.Sprint(f.Status))

	for _, d := range f.Diagnostics {
		label := p.warn.Sprint("warning")
		if d.Severity == parser.Fatal {
			label = p.fail.Sprint("error")
		}
		fmt.Fprintf(p.w, "  %s: %s at %d:%d\n", label, d.Message, d.Line, d.Column)
		if d.LineText != "" {
			fmt.Fprintf(p.w, "    %s %s\n", p.dim.Sprint("|"), d.LineText)
			fmt.Fprintf(p.w, "    %s %s^\n", p.dim.Sprint("|"), caretPadding(d.LineText, d.Column))
		}
	}
	if f.Error != "" && len(f.Diagnostics) == 0 {
		fmt.Fprintf(p.w, "  %s\n", p.dim.Sprint(f.Error))
	}
}

// caretPadding returns the whitespace placing a caret under column,
// keeping tabs and the cell width of wide characters so the caret lines up.
func caretPadding(line string, column uint32) string {
	var b strings.Builder
	var col uint32 = 1
	for _, r := range line {
		if col >= column {
			break
		}
		if r == '\t' {
			b.WriteByte('\t')
		} else {
			b.WriteString(strings.Repeat(" ", max(runewidth.RuneWidth(r), 1)))
		}
		col++
	}
	return b.String()
}

func (p *Printer) dependencies(deps []DiscoveredDependency) {
	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, p.bold.Sprint("DEPENDENCIES"))
	for _, dep := range deps {
		version := dep.Version
		if version == "" {
			version = "unknown"
		}
		note := fmt.Sprintf("used in %d files", len(dep.FoundInFiles))
		if !dep.IsInManifest {
			note += ", not in manifest"
		}
		fmt.Fprintf(p.w, "  - %s@%s %s\n", dep.Name, version, p.dim.Sprintf("(%s)", note))
		for _, call := range dep.Calls {
			fmt.Fprintf(p.w, "     %s\n", call)
		}
	}
}

func (p *Printer) summary(report *Report) {
	s := report.Summary
	fmt.Fprintln(p.w, strings.Repeat("-", 60))
	fmt.Fprintln(p.w, p.bold.Sprint("SUMMARY"))
	fmt.Fprintf(p.w, "Run: %s\n", report.RunID)
	fmt.Fprintf(p.w, "Files: %d\n", s.Files)
	fmt.Fprintf(p.w, "  - Parsed: %s\n", p.ok.Sprint(s.Parsed))
	fmt.Fprintf(p.w, "  - With recoverable errors: %s\n", p.warn.Sprint(s.Recovered))
	fmt.Fprintf(p.w, "  - Fatal: %s\n", p.fail.Sprint(s.Fatal))
	fmt.Fprintf(p.w, "  - Skipped: %d\n", s.Skipped)
	fmt.Fprintf(p.w, "  - Errors: %d\n", s.Errors)
	fmt.Fprintf(p.w, "Diagnostics: %d\n", s.Diagnostics)

	if len(report.Dependencies) == 0 {
		return
	}
	exact, ranges, codeOnly := 0, 0, 0
	for _, dep := range report.Dependencies {
		switch {
		case !dep.IsInManifest:
			codeOnly++
		case isSemverRange(dep.Version):
			ranges++
		default:
			exact++
		}
	}
	fmt.Fprintf(p.w, "External dependencies: %d\n", s.Dependencies)
	fmt.Fprintf(p.w, "  - With exact versions: %d\n", exact)
	fmt.Fprintf(p.w, "  - With semver ranges: %d\n", ranges)
	fmt.Fprintf(p.w, "  - Not in manifest: %d\n", codeOnly)
}

// TokenInfo is a token with its source text.
type TokenInfo struct {
	Kind string   `json:"kind" msgpack:"kind"`
	Span ast.Span `json:"span" msgpack:"span"`
	Text string   `json:"text" msgpack:"text"`
}

type FileTokens struct {
	Path   string      `json:"path" msgpack:"path"`
	Tokens []TokenInfo `json:"tokens" msgpack:"tokens"`
}

// Tokens writes the captured tokens of every parsed file.
func (p *Printer) Tokens(results []FileResult) error {
	var files []FileTokens
	for i := range results {
		ps := results[i].Parsed()
		if ps == nil || !ps.HasTokens() {
			continue
		}
		ft := FileTokens{Path: results[i].Path}
		for _, tok := range ps.Tokens() {
			ft.Tokens = append(ft.Tokens, TokenInfo{
				Kind: tok.Kind,
				Span: tok.Span,
				Text: ps.TextInfo().Slice(tok.Span.Lo, tok.Span.Hi),
			})
		}
		files = append(files, ft)
	}

	if p.format != FormatText {
		return p.encode(files)
	}
	for _, ft := range files {
		fmt.Fprintln(p.w, p.bold.Sprint(ft.Path))
		for _, tok := range ft.Tokens {
			fmt.Fprintf(p.w, "  %-8s %-24s %q\n", p.dim.Sprint(tok.Span), tok.Kind, tok.Text)
		}
	}
	return nil
}

// Syntax writes the grammar configuration used for each file.
func (p *Printer) Syntax(entries []SyntaxEntry) error {
	if p.format != FormatText {
		return p.encode(entries)
	}
	for _, e := range entries {
		fmt.Fprintf(p.w, "%s %s\n", p.bold.Sprint(e.Path), p.dim.Sprintf("[%s]", e.MediaType))
		out, err := json.MarshalIndent(e.Syntax, "  ", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintf(p.w, "  %s: %s\n", e.Syntax.Flavor(), out)
	}
	return nil
}
