package reporter

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// TerminalReporter outputs results to the terminal with colors
type TerminalReporter struct {
	cfg *Config
}

func (r *TerminalReporter) paint(s string, attrs ...color.Attribute) string {
	c := color.New(attrs...)
	if r.cfg.UseColors {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c.Sprint(s)
}

// Report outputs the parse results
func (r *TerminalReporter) Report(results []Result) error {
	w := r.cfg.Writer

	for _, res := range results {
		if !res.Failed() {
			if r.cfg.Verbose {
				fmt.Fprintf(w, "%s %s (%d image(s))\n", r.paint("✓", color.FgGreen), res.Filename, len(res.File.Body.Images))
			}
			continue
		}

		pe := res.ParseError()
		if pe == nil {
			fmt.Fprintf(w, "%s %s: %s\n\n", res.Filename, r.paint("error", color.FgRed, color.Bold), res.Err)
			continue
		}

		loc := fmt.Sprintf("%s:%d:%d", res.Filename, pe.Line, pe.Column)
		fmt.Fprintf(w, "%s %s: %s\n", loc, r.paint("error", color.FgRed, color.Bold), pe.Message)
		r.printContext(res.Source, pe.Line, pe.Column)
		fmt.Fprintln(w)
	}

	failed := countFailed(results)
	if failed > 0 {
		fmt.Fprintf(w, "Found %s in %d file(s)\n", r.paint(fmt.Sprintf("%d syntax error(s)", failed), color.FgRed), len(results))
	} else {
		fmt.Fprintf(w, "%s No syntax errors in %d file(s)\n", r.paint("✓", color.FgHiBlack), len(results))
	}

	return nil
}

// printContext prints the source line with a caret under the column
func (r *TerminalReporter) printContext(source string, line, column int) {
	lines := strings.Split(source, "\n")
	if line < 1 || line > len(lines) {
		return
	}
	text := strings.TrimSuffix(lines[line-1], "\r")

	gutter := fmt.Sprintf("%4d", line)
	fmt.Fprintf(r.cfg.Writer, "  %s │ %s\n", r.paint(gutter, color.FgHiBlack), text)

	if column < 1 {
		return
	}
	var padding strings.Builder
	for i, c := range []rune(text) {
		if i >= column-1 {
			break
		}
		// Keep tabs so the caret lines up with the source
		if c == '\t' {
			padding.WriteRune('\t')
		} else {
			padding.WriteRune(' ')
		}
	}
	fmt.Fprintf(r.cfg.Writer, "       │ %s%s\n", padding.String(), r.paint("^", color.FgRed))
}
