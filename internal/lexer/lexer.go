package lexer

import (
	"slices"
	"strings"
	"unicode/utf8"
)

// EOF is returned by Peek when the input is exhausted
const EOF rune = -1

const byteOrderMark = "\uFEFF"

// Lexer is a rune cursor over Dockerfile source. It tracks line and column,
// understands line continuations and buffers the comments it skips so they
// can be attached to the next token.
type Lexer struct {
	input   string
	pos     int  // current byte offset
	line    int  // current line number (1-based)
	column  int  // current column (0-based)
	escape  rune // escape character (default \)
	pending []Comment
}

// State is a saved cursor position, used for backtracking
type State struct {
	pos     int
	line    int
	column  int
	pending []Comment
}

// New creates a new Lexer for the given input. A leading byte-order mark is
// skipped and does not count as a column.
func New(input string) *Lexer {
	l := &Lexer{
		input:  input,
		line:   1,
		escape: '\\',
	}
	if strings.HasPrefix(input, byteOrderMark) {
		l.pos = len(byteOrderMark)
	}
	return l
}

// SetEscape changes the escape character
func (l *Lexer) SetEscape(r rune) {
	l.escape = r
}

// Escape returns the escape character in effect
func (l *Lexer) Escape() rune {
	return l.escape
}

// Pos returns the current position
func (l *Lexer) Pos() Position {
	return Position{Line: l.line, Column: l.column, Offset: l.pos}
}

// Save captures the cursor, including buffered comments
func (l *Lexer) Save() State {
	return State{
		pos:     l.pos,
		line:    l.line,
		column:  l.column,
		pending: slices.Clone(l.pending),
	}
}

// Restore rewinds the cursor to a saved state
func (l *Lexer) Restore(s State) {
	l.pos = s.pos
	l.line = s.line
	l.column = s.column
	l.pending = s.pending
}

// Slice returns the source text between two byte offsets
func (l *Lexer) Slice(from, to int) string {
	return l.input[from:to]
}

// Peek returns the current rune without advancing
func (l *Lexer) Peek() rune {
	if l.pos >= len(l.input) {
		return EOF
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.pos:])
	return r
}

// PeekAt returns the rune n runes ahead of the current one
func (l *Lexer) PeekAt(n int) rune {
	pos := l.pos
	for i := 0; i < n; i++ {
		if pos >= len(l.input) {
			return EOF
		}
		_, size := utf8.DecodeRuneInString(l.input[pos:])
		pos += size
	}
	if pos >= len(l.input) {
		return EOF
	}
	r, _ := utf8.DecodeRuneInString(l.input[pos:])
	return r
}

// HasPrefix reports whether the remaining input starts with s
func (l *Lexer) HasPrefix(s string) bool {
	return strings.HasPrefix(l.input[l.pos:], s)
}

// Next consumes one rune. CRLF is consumed as a single line terminator.
func (l *Lexer) Next() rune {
	if l.pos >= len(l.input) {
		return EOF
	}
	r, size := utf8.DecodeRuneInString(l.input[l.pos:])
	l.pos += size
	switch r {
	case '\r':
		if l.pos < len(l.input) && l.input[l.pos] == '\n' {
			l.pos++
		}
		l.line++
		l.column = 0
	case '\n':
		l.line++
		l.column = 0
	default:
		l.column++
	}
	return r
}

// AtEOF reports whether the input is exhausted
func (l *Lexer) AtEOF() bool {
	return l.pos >= len(l.input)
}

// AtLineEnd reports whether the cursor is on a line terminator or at EOF
func (l *Lexer) AtLineEnd() bool {
	return IsLineTerminator(l.Peek()) || l.AtEOF()
}

// ConsumeLineTerminator consumes LF, CR or CRLF if present
func (l *Lexer) ConsumeLineTerminator() bool {
	if !IsLineTerminator(l.Peek()) {
		return false
	}
	l.Next()
	return true
}

// ReadWhile consumes runes while pred holds and returns them
func (l *Lexer) ReadWhile(pred func(rune) bool) string {
	start := l.pos
	for !l.AtEOF() && pred(l.Peek()) {
		l.Next()
	}
	return l.input[start:l.pos]
}

// RestOfLine returns the text up to the next line terminator without moving
func (l *Lexer) RestOfLine() string {
	rest := l.input[l.pos:]
	if i := strings.IndexAny(rest, "\r\n"); i >= 0 {
		return rest[:i]
	}
	return rest
}

// SkipBlanks skips spaces and tabs and reports whether anything was skipped
func (l *Lexer) SkipBlanks() bool {
	moved := false
	for IsBlank(l.Peek()) {
		l.Next()
		moved = true
	}
	return moved
}

// AtContinuation reports whether the cursor is on an escape character that
// is followed only by blanks up to the end of the line.
func (l *Lexer) AtContinuation() bool {
	if l.Peek() != l.escape {
		return false
	}
	for i := 1; ; i++ {
		r := l.PeekAt(i)
		if IsBlank(r) {
			continue
		}
		return r == EOF || IsLineTerminator(r)
	}
}

// SkipSeparators skips blanks and line continuations. Comment lines and
// empty lines inside a continuation are skipped too; the comments are
// buffered for the next token.
func (l *Lexer) SkipSeparators() bool {
	moved := false
	for {
		if l.SkipBlanks() {
			moved = true
		}
		if !l.AtContinuation() {
			return moved
		}
		l.SkipContinuation()
		moved = true
	}
}

// SkipContinuation consumes the continuation under the cursor and the
// comment and empty lines that follow it. Skipped comments are buffered.
func (l *Lexer) SkipContinuation() {
	l.Next() // consume escape
	l.SkipBlanks()
	if !l.ConsumeLineTerminator() {
		return
	}
	for {
		l.SkipBlanks()
		switch {
		case l.Peek() == '#':
			l.pending = append(l.pending, l.ReadComment())
			if !l.ConsumeLineTerminator() {
				return
			}
		case IsLineTerminator(l.Peek()):
			l.Next()
		default:
			return
		}
	}
}

// StripContinuations removes every line continuation in text together with
// the empty and comment lines it skips. Indentation of the continued line is
// kept. An escape followed by a rune that pair reports true for is copied as
// is and never starts a continuation.
func StripContinuations(text string, escape rune, pair func(rune) bool) string {
	if !strings.ContainsAny(text, "\r\n") {
		return text
	}
	l := &Lexer{input: text, line: 1, escape: escape}
	var b strings.Builder
	for !l.AtEOF() {
		if l.AtContinuation() {
			l.Next()
			l.SkipBlanks()
			l.ConsumeLineTerminator()
			l.skipTrappedLines()
			continue
		}
		start := l.pos
		r := l.Next()
		if r == escape && !l.AtEOF() && pair(l.Peek()) {
			l.Next()
		}
		b.WriteString(text[start:l.pos])
	}
	return b.String()
}

// skipTrappedLines skips whole empty and comment lines, leaving the cursor
// at the start of the next content line. Blanks at the end of the input are
// content.
func (l *Lexer) skipTrappedLines() {
	for !l.AtEOF() {
		line := l.RestOfLine()
		rest := strings.TrimLeft(line, " \t")
		if rest == "" && l.pos+len(line) == len(l.input) {
			return
		}
		if rest != "" && rest[0] != '#' {
			return
		}
		for !l.AtLineEnd() {
			l.Next()
		}
		l.ConsumeLineTerminator()
	}
}

// ReadComment reads a comment from # to the end of the line. The line
// terminator is not consumed.
func (l *Lexer) ReadComment() Comment {
	start := l.Pos()
	for !l.AtLineEnd() {
		l.Next()
	}
	text := l.input[start.Offset:l.pos]
	return Comment{
		Text:    text,
		Content: strings.TrimLeft(strings.TrimPrefix(text, "#"), " \t"),
		Range:   TextRange{Start: start, End: l.Pos()},
	}
}

// Buffer queues a comment for the next token
func (l *Lexer) Buffer(c Comment) {
	l.pending = append(l.pending, c)
}

// TakeComments returns and clears the buffered comments
func (l *Lexer) TakeComments() []Comment {
	c := l.pending
	l.pending = nil
	return c
}

// IsBlank returns true for spaces and tabs
func IsBlank(r rune) bool {
	return r == ' ' || r == '\t'
}

// IsLineTerminator returns true for LF and CR
func IsLineTerminator(r rune) bool {
	return r == '\n' || r == '\r'
}

// IsNameChar returns true if r can be part of a variable name
func IsNameChar(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
