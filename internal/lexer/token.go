package lexer

import (
	"fmt"
	"strings"
)

// instructionKeywords maps upper-case instruction names to themselves
var instructionKeywords = map[string]string{
	"FROM":        "FROM",
	"RUN":         "RUN",
	"CMD":         "CMD",
	"LABEL":       "LABEL",
	"MAINTAINER":  "MAINTAINER", // deprecated but still parsed
	"EXPOSE":      "EXPOSE",
	"ENV":         "ENV",
	"ADD":         "ADD",
	"COPY":        "COPY",
	"ENTRYPOINT":  "ENTRYPOINT",
	"VOLUME":      "VOLUME",
	"USER":        "USER",
	"WORKDIR":     "WORKDIR",
	"ARG":         "ARG",
	"ONBUILD":     "ONBUILD",
	"STOPSIGNAL":  "STOPSIGNAL",
	"HEALTHCHECK": "HEALTHCHECK",
	"SHELL":       "SHELL",
}

// LookupKeyword returns the canonical upper-case name of an instruction
// keyword. Keywords are matched case-insensitively.
func LookupKeyword(word string) (string, bool) {
	name, ok := instructionKeywords[strings.ToUpper(word)]
	return name, ok
}

// Position represents a position in the source
type Position struct {
	Line   int // 1-based line number
	Column int // 0-based column, counted in runes
	Offset int // 0-based byte offset
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Before reports whether p comes strictly before o.
func (p Position) Before(o Position) bool {
	if p.Line != o.Line {
		return p.Line < o.Line
	}
	return p.Column < o.Column
}

// TextRange is a half-open source range [Start, End).
type TextRange struct {
	Start Position
	End   Position
}

// Point returns an empty range located at p.
func Point(p Position) TextRange {
	return TextRange{Start: p, End: p}
}

func (r TextRange) String() string {
	return fmt.Sprintf("(%d,%d)-(%d,%d)", r.Start.Line, r.Start.Column, r.End.Line, r.End.Column)
}

// Union returns the smallest range covering both r and o.
func (r TextRange) Union(o TextRange) TextRange {
	out := r
	if o.Start.Before(out.Start) {
		out.Start = o.Start
	}
	if out.End.Before(o.End) {
		out.End = o.End
	}
	return out
}

// Contains reports whether p lies inside r.
func (r TextRange) Contains(p Position) bool {
	return !p.Before(r.Start) && p.Before(r.End)
}

// Comment is a `#` comment line. Comments are trivia: they are attached to
// the token that follows them and never appear as tree nodes.
type Comment struct {
	Text    string // raw text including the leading #
	Content string // text after # with leading blanks removed
	Range   TextRange
}

func (c Comment) String() string {
	return fmt.Sprintf("%s %q", c.Range, c.Text)
}
