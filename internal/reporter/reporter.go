// Package reporter writes the outcome of parsing a set of Dockerfiles.
package reporter

import (
	"io"

	"github.com/pkg/errors"

	"github.com/HueCodes/keelson/internal/parser"
)

// Result is the outcome of parsing one file
type Result struct {
	Filename string
	Source   string
	File     *parser.File
	Err      error
	Cached   bool
}

// Failed reports whether the file could not be read or parsed
func (r Result) Failed() bool { return r.Err != nil }

// ParseError returns the syntax error of a failed parse, or nil when the
// failure was of another kind
func (r Result) ParseError() *parser.ParseError {
	var pe *parser.ParseError
	if errors.As(r.Err, &pe) {
		return pe
	}
	return nil
}

// Reporter is the interface for outputting parse results
type Reporter interface {
	Report(results []Result) error
}

// Format represents the output format
type Format string

const (
	FormatTerminal Format = "terminal"
	FormatJSON     Format = "json"
	FormatGitHub   Format = "github"
)

// Formats lists the supported output formats
var Formats = []Format{FormatTerminal, FormatJSON, FormatGitHub}

// ParseFormat validates a format name
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", errors.Errorf("unknown output format %q", s)
}

// New creates a reporter for the given format
func New(format Format, w io.Writer, opts ...Option) Reporter {
	cfg := &Config{
		Writer:    w,
		UseColors: true,
		Verbose:   false,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	switch format {
	case FormatJSON:
		return &JSONReporter{cfg: cfg}
	case FormatGitHub:
		return &GitHubReporter{cfg: cfg}
	default:
		return &TerminalReporter{cfg: cfg}
	}
}

// Config holds reporter configuration
type Config struct {
	Writer    io.Writer
	UseColors bool
	Verbose   bool
}

// Option is a function that configures a reporter
type Option func(*Config)

// WithColors enables or disables colors
func WithColors(enabled bool) Option {
	return func(c *Config) {
		c.UseColors = enabled
	}
}

// WithVerbose enables verbose output
func WithVerbose(enabled bool) Option {
	return func(c *Config) {
		c.Verbose = enabled
	}
}

// countFailed returns the number of failed results
func countFailed(results []Result) int {
	n := 0
	for _, r := range results {
		if r.Failed() {
			n++
		}
	}
	return n
}
