package lexer

import (
	"testing"
)

func TestLexerNextTracksPosition(t *testing.T) {
	l := New("ab\ncd")

	expected := []struct {
		r    rune
		line int
		col  int
	}{
		{'a', 1, 1},
		{'b', 1, 2},
		{'\n', 2, 0},
		{'c', 2, 1},
		{'d', 2, 2},
	}

	for i, exp := range expected {
		if r := l.Next(); r != exp.r {
			t.Fatalf("rune %d: expected %q, got %q", i, exp.r, r)
		}
		pos := l.Pos()
		if pos.Line != exp.line || pos.Column != exp.col {
			t.Errorf("rune %d: expected %d:%d, got %s", i, exp.line, exp.col, pos)
		}
	}
	if l.Next() != EOF {
		t.Error("expected EOF")
	}
}

func TestLexerCRLF(t *testing.T) {
	l := New("a\r\nb\rc")

	l.Next()
	if r := l.Next(); r != '\r' {
		t.Fatalf("expected CR, got %q", r)
	}
	if pos := l.Pos(); pos.Line != 2 || pos.Column != 0 || pos.Offset != 3 {
		t.Errorf("expected 2:0 at offset 3 after CRLF, got %s at %d", pos, pos.Offset)
	}
	l.Next()
	l.Next()
	if pos := l.Pos(); pos.Line != 3 {
		t.Errorf("expected line 3 after lone CR, got %d", pos.Line)
	}
}

func TestLexerByteOrderMark(t *testing.T) {
	l := New("\uFEFFFROM")

	pos := l.Pos()
	if pos.Column != 0 || pos.Line != 1 {
		t.Errorf("expected 1:0 after BOM, got %s", pos)
	}
	if pos.Offset != 3 {
		t.Errorf("expected offset 3 after BOM, got %d", pos.Offset)
	}
	if r := l.Peek(); r != 'F' {
		t.Errorf("expected 'F', got %q", r)
	}
}

func TestLexerMultibyteColumns(t *testing.T) {
	l := New("héllo")
	l.ReadWhile(func(r rune) bool { return r != 'l' })

	pos := l.Pos()
	if pos.Column != 2 {
		t.Errorf("expected column 2, got %d", pos.Column)
	}
	if pos.Offset != 3 {
		t.Errorf("expected offset 3, got %d", pos.Offset)
	}
}

func TestLexerContinuation(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		escape rune
		want   bool
	}{
		{"backslash newline", "\\\nx", '\\', true},
		{"trailing blanks", "\\  \t\nx", '\\', true},
		{"at eof", "\\", '\\', true},
		{"escaped char", "\\x", '\\', false},
		{"backtick", "`\r\nx", '`', true},
		{"backslash with backtick escape", "\\\nx", '`', false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New(tt.input)
			l.SetEscape(tt.escape)
			if got := l.AtContinuation(); got != tt.want {
				t.Errorf("AtContinuation() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLexerSkipSeparatorsBuffersComments(t *testing.T) {
	input := "  \\\n# first\n\n  # second\n  next"
	l := New(input)

	if !l.SkipSeparators() {
		t.Fatal("expected separators to be skipped")
	}
	if r := l.Peek(); r != 'n' {
		t.Fatalf("expected cursor on 'n', got %q", r)
	}
	if pos := l.Pos(); pos.Line != 5 || pos.Column != 2 {
		t.Errorf("expected 5:2, got %s", pos)
	}

	comments := l.TakeComments()
	if len(comments) != 2 {
		t.Fatalf("expected 2 comments, got %d", len(comments))
	}
	if comments[0].Content != "first" || comments[1].Content != "second" {
		t.Errorf("unexpected comment contents %q, %q", comments[0].Content, comments[1].Content)
	}
	if comments[1].Range.Start.Line != 4 || comments[1].Range.Start.Column != 2 {
		t.Errorf("expected second comment at 4:2, got %s", comments[1].Range.Start)
	}
	if len(l.TakeComments()) != 0 {
		t.Error("expected comment buffer to be cleared")
	}
}

func TestStripContinuations(t *testing.T) {
	all := func(rune) bool { return true }
	quote := func(r rune) bool { return r == '"' }
	tests := []struct {
		name   string
		input  string
		escape rune
		pair   func(rune) bool
		want   string
	}{
		{"single line", "a \\ b", '\\', all, "a \\ b"},
		{"continuation keeps indent", "a \\\n  b", '\\', all, "a   b"},
		{"trailing blanks after escape", "a\\ \t\r\nb", '\\', all, "ab"},
		{"comment and empty lines", "a\\\n  # c\n\n\tb", '\\', all, "a\tb"},
		{"indent at end of input", "a\\\n  ", '\\', all, "a  "},
		{"escaped escape is kept", `a\\`+"\nb", '\\', all, "a\\\\\nb"},
		{"unpaired escape continues", `a\\`+"\nb", '\\', quote, `a\b`},
		{"backtick escape", "a`\nb\\", '`', all, "ab\\"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripContinuations(tt.input, tt.escape, tt.pair); got != tt.want {
				t.Errorf("StripContinuations(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestLexerSaveRestore(t *testing.T) {
	l := New("abc \\\n# c\ndef")
	l.Next()
	st := l.Save()

	l.ReadWhile(func(r rune) bool { return r != ' ' })
	l.SkipSeparators()
	if len(l.TakeComments()) != 1 {
		t.Fatal("expected one buffered comment")
	}

	l.Restore(st)
	if r := l.Peek(); r != 'b' {
		t.Errorf("expected 'b' after restore, got %q", r)
	}
	if pos := l.Pos(); pos.Column != 1 || pos.Line != 1 {
		t.Errorf("expected 1:1 after restore, got %s", pos)
	}

	l.SkipSeparators()
	if len(l.TakeComments()) != 0 {
		t.Error("expected no comments after restore")
	}
}

func TestLexerReadComment(t *testing.T) {
	l := New("#   hello world  \nFROM")
	c := l.ReadComment()

	if c.Text != "#   hello world  " {
		t.Errorf("unexpected text %q", c.Text)
	}
	if c.Content != "hello world  " {
		t.Errorf("unexpected content %q", c.Content)
	}
	if c.Range.End.Column != 17 {
		t.Errorf("expected end column 17, got %d", c.Range.End.Column)
	}
	if !l.AtLineEnd() {
		t.Error("expected line terminator to be left in place")
	}
}

func TestLookupKeyword(t *testing.T) {
	tests := []struct {
		word string
		want string
		ok   bool
	}{
		{"FROM", "FROM", true},
		{"from", "FROM", true},
		{"HealthCheck", "HEALTHCHECK", true},
		{"maintainer", "MAINTAINER", true},
		{"FROMX", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := LookupKeyword(tt.word)
		if got != tt.want || ok != tt.ok {
			t.Errorf("LookupKeyword(%q) = %q, %v; want %q, %v", tt.word, got, ok, tt.want, tt.ok)
		}
	}
}

func TestTextRange(t *testing.T) {
	a := TextRange{Start: Position{Line: 1, Column: 4}, End: Position{Line: 1, Column: 8}}
	b := TextRange{Start: Position{Line: 2, Column: 0}, End: Position{Line: 3, Column: 5}}

	u := a.Union(b)
	if u.String() != "(1,4)-(3,5)" {
		t.Errorf("unexpected union %s", u)
	}
	if !u.Contains(Position{Line: 2, Column: 10}) {
		t.Error("expected union to contain 2:10")
	}
	if u.Contains(Position{Line: 3, Column: 5}) {
		t.Error("range end must be exclusive")
	}
	if p := Point(a.Start); p.Start != p.End {
		t.Error("expected an empty range")
	}
}
