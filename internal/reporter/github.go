package reporter

import (
	"fmt"
	"strings"
)

// GitHubReporter outputs results as GitHub Actions workflow commands
type GitHubReporter struct {
	cfg *Config
}

// Report outputs the parse results as GitHub workflow commands
func (r *GitHubReporter) Report(results []Result) error {
	w := r.cfg.Writer

	for _, res := range results {
		if !res.Failed() {
			continue
		}
		// Format: ::error file={name},line={line},col={col}::{message}
		if pe := res.ParseError(); pe != nil {
			fmt.Fprintf(w, "::error file=%s,line=%d,col=%d,title=syntax error::%s\n",
				res.Filename,
				pe.Line,
				pe.Column,
				escapeData(pe.Message),
			)
			continue
		}
		fmt.Fprintf(w, "::error file=%s::%s\n", res.Filename, escapeData(res.Err.Error()))
	}

	// Summary
	if failed := countFailed(results); failed > 0 {
		fmt.Fprintf(w, "::group::Summary\n")
		fmt.Fprintf(w, "%d of %d file(s) failed to parse\n", failed, len(results))
		fmt.Fprintf(w, "::endgroup::\n")
	}

	return nil
}

// escapeData escapes a workflow command message
func escapeData(s string) string {
	s = strings.ReplaceAll(s, "%", "%25")
	s = strings.ReplaceAll(s, "\r", "%0D")
	return strings.ReplaceAll(s, "\n", "%0A")
}
