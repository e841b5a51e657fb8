package parser

import (
	"strings"

	"github.com/HueCodes/keelson/internal/lexer"
)

// Expression is one fragment of an Argument
type Expression interface {
	Node
	// Text returns the fragment exactly as written in the source
	Text() string
	expressionNode()
}

// Literal is raw unquoted text or a single-quoted string
type Literal struct {
	Token *Token

	escape   rune
	verbatim bool // heredoc body word, escapes and quotes are not interpreted
}

func (*Literal) Kind() Kind                   { return KindLiteral }
func (l *Literal) TextRange() lexer.TextRange { return l.Token.Range }
func (l *Literal) Children() []Node           { return []Node{l.Token} }
func (l *Literal) Text() string               { return l.Token.Text }
func (*Literal) expressionNode()              {}

// Value returns the literal text. Single quotes and continuations inside
// them are removed and an escaped single quote is unescaped. Outside quotes
// the escape character is dropped and the rune after it kept.
func (l *Literal) Value() string {
	s := l.Token.Text
	if l.verbatim {
		return s
	}
	esc := escapeOrDefault(l.escape)
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		inner := lexer.StripContinuations(s[1:len(s)-1], esc, func(r rune) bool { return r == '\'' })
		return strings.ReplaceAll(inner, string(esc)+"'", "'")
	}
	return unescape(s, esc, func(rune) bool { return true })
}

// ExpandableStringCharacters is a run of literal text inside a
// double-quoted string
type ExpandableStringCharacters struct {
	Token *Token

	escape rune
}

func (*ExpandableStringCharacters) Kind() Kind                   { return KindExpandableStringCharacters }
func (c *ExpandableStringCharacters) TextRange() lexer.TextRange { return c.Token.Range }
func (c *ExpandableStringCharacters) Children() []Node           { return []Node{c.Token} }
func (c *ExpandableStringCharacters) Text() string               { return c.Token.Text }
func (*ExpandableStringCharacters) expressionNode()              {}

// Value returns the characters with continuations removed and escaped
// quotes, dollars and backslashes unescaped
func (c *ExpandableStringCharacters) Value() string {
	esc := escapeOrDefault(c.escape)
	escapable := func(r rune) bool { return isQuotedEscapable(r, esc) }
	return unescape(lexer.StripContinuations(c.Token.Text, esc, escapable), esc, escapable)
}

// unescape drops each escape character that precedes a rune accepted by
// escapable
func unescape(s string, esc rune, escapable func(rune) bool) string {
	if !strings.ContainsRune(s, esc) {
		return s
	}
	runes := []rune(s)
	var b strings.Builder
	for i := 0; i < len(runes); i++ {
		if runes[i] == esc && i+1 < len(runes) && escapable(runes[i+1]) {
			i++
		}
		b.WriteRune(runes[i])
	}
	return b.String()
}

func escapeOrDefault(r rune) rune {
	if r == 0 {
		return '\\'
	}
	return r
}

// isQuotedEscapable reports whether r can be escaped inside double quotes
func isQuotedEscapable(r, esc rune) bool {
	return r == '"' || r == '$' || r == esc
}

// RegularVariable is a $NAME reference
type RegularVariable struct {
	Token *Token // $NAME
}

func (*RegularVariable) Kind() Kind                   { return KindRegularVariable }
func (v *RegularVariable) TextRange() lexer.TextRange { return v.Token.Range }
func (v *RegularVariable) Children() []Node           { return []Node{v.Token} }
func (v *RegularVariable) Text() string               { return v.Token.Text }
func (*RegularVariable) expressionNode()              {}

// Identifier returns the variable name without the dollar sign
func (v *RegularVariable) Identifier() string {
	return strings.TrimPrefix(v.Token.Text, "$")
}

// EncapsulatedVariable is a ${NAME}, ${NAME:-DEFAULT} or ${NAME:+ALT}
// reference
type EncapsulatedVariable struct {
	Open      *Token    // ${
	Name      *Token    // NAME
	Separator *Token    // :- or :+, nil when absent
	Modifier  *Argument // nil when Separator is nil
	Close     *Token    // }
}

func (*EncapsulatedVariable) Kind() Kind      { return KindEncapsulatedVariable }
func (*EncapsulatedVariable) expressionNode() {}

func (v *EncapsulatedVariable) TextRange() lexer.TextRange {
	return v.Open.Range.Union(v.Close.Range)
}

func (v *EncapsulatedVariable) Children() []Node {
	nodes := []Node{v.Open, v.Name}
	if v.Separator != nil {
		nodes = append(nodes, v.Separator, v.Modifier)
	}
	return append(nodes, v.Close)
}

// Identifier returns the variable name
func (v *EncapsulatedVariable) Identifier() string { return v.Name.Text }

// ModifierSeparator returns ":-", ":+" or "" when there is no modifier
func (v *EncapsulatedVariable) ModifierSeparator() string {
	if v.Separator == nil {
		return ""
	}
	return v.Separator.Text
}

func (v *EncapsulatedVariable) Text() string {
	var b strings.Builder
	b.WriteString(v.Open.Text)
	b.WriteString(v.Name.Text)
	if v.Separator != nil {
		b.WriteString(v.Separator.Text)
		b.WriteString(v.Modifier.Text())
	}
	b.WriteString(v.Close.Text)
	return b.String()
}

// ExpandableStringLiteral is a double-quoted string
type ExpandableStringLiteral struct {
	Open      *Token
	Fragments []Expression // ExpandableStringCharacters and variables
	Close     *Token
}

func (*ExpandableStringLiteral) Kind() Kind      { return KindExpandableStringLiteral }
func (*ExpandableStringLiteral) expressionNode() {}

func (s *ExpandableStringLiteral) TextRange() lexer.TextRange {
	return s.Open.Range.Union(s.Close.Range)
}

func (s *ExpandableStringLiteral) Children() []Node {
	nodes := make([]Node, 0, len(s.Fragments)+2)
	nodes = append(nodes, s.Open)
	for _, f := range s.Fragments {
		nodes = append(nodes, f)
	}
	return append(nodes, s.Close)
}

func (s *ExpandableStringLiteral) Text() string {
	var b strings.Builder
	b.WriteString(s.Open.Text)
	for _, f := range s.Fragments {
		b.WriteString(f.Text())
	}
	b.WriteString(s.Close.Text)
	return b.String()
}

// Value returns the string content without quotes; variables are kept as
// written
func (s *ExpandableStringLiteral) Value() string {
	var b strings.Builder
	for _, f := range s.Fragments {
		b.WriteString(fragmentValue(f))
	}
	return b.String()
}

// Argument is one shell word made of adjacent expression fragments. An
// Argument without fragments is explicitly empty, e.g. the value in `KEY=`.
type Argument struct {
	Fragments []Expression

	at lexer.Position
}

func (*Argument) Kind() Kind { return KindArgument }

func (a *Argument) TextRange() lexer.TextRange { return span(a.at, a.Children()) }

func (a *Argument) Children() []Node {
	nodes := make([]Node, len(a.Fragments))
	for i, f := range a.Fragments {
		nodes[i] = f
	}
	return nodes
}

// Text returns the argument as written in the source
func (a *Argument) Text() string {
	var b strings.Builder
	for _, f := range a.Fragments {
		b.WriteString(f.Text())
	}
	return b.String()
}

// Value returns the unresolved value of the argument: quotes are removed
// and variables are kept as written
func (a *Argument) Value() string {
	var b strings.Builder
	for _, f := range a.Fragments {
		b.WriteString(fragmentValue(f))
	}
	return b.String()
}

// HasVariables reports whether any fragment references a variable
func (a *Argument) HasVariables() bool {
	for _, f := range a.Fragments {
		switch f := f.(type) {
		case *RegularVariable, *EncapsulatedVariable:
			return true
		case *ExpandableStringLiteral:
			for _, inner := range f.Fragments {
				if _, ok := inner.(*ExpandableStringCharacters); !ok {
					return true
				}
			}
		}
	}
	return false
}

func fragmentValue(e Expression) string {
	switch e := e.(type) {
	case *Literal:
		return e.Value()
	case *ExpandableStringCharacters:
		return e.Value()
	case *ExpandableStringLiteral:
		return e.Value()
	default:
		return e.Text()
	}
}

// SeparatedList keeps list elements and the separator tokens between them
type SeparatedList[T Node] struct {
	Elements   []T
	Separators []*Token

	at lexer.Position
}

func (*SeparatedList[T]) Kind() Kind { return KindSeparatedList }

func (l *SeparatedList[T]) TextRange() lexer.TextRange { return span(l.at, l.Children()) }

// Children interleaves elements and separators in source order
func (l *SeparatedList[T]) Children() []Node {
	nodes := make([]Node, 0, len(l.Elements)+len(l.Separators))
	for i, e := range l.Elements {
		nodes = append(nodes, e)
		if i < len(l.Separators) {
			nodes = append(nodes, l.Separators[i])
		}
	}
	return nodes
}

// Flag is an instruction option such as --platform=linux/amd64
type Flag struct {
	Prefix *Token    // --
	Name   *Token    // platform
	Equals *Token    // nil for a bare flag such as --link
	Value  *Argument // nil when Equals is nil
}

func (*Flag) Kind() Kind                   { return KindFlag }
func (f *Flag) TextRange() lexer.TextRange { return span(f.Prefix.Range.Start, f.Children()) }

func (f *Flag) Children() []Node {
	nodes := []Node{f.Prefix, f.Name}
	if f.Equals != nil {
		nodes = append(nodes, f.Equals, f.Value)
	}
	return nodes
}

// Key returns the flag name without dashes
func (f *Flag) Key() string { return f.Name.Text }

// ValueString returns the unresolved flag value or ""
func (f *Flag) ValueString() string {
	if f.Value == nil {
		return ""
	}
	return f.Value.Value()
}

// FindFlag returns the first flag with the given name, matched
// case-insensitively
func FindFlag(flags []*Flag, name string) *Flag {
	for _, f := range flags {
		if strings.EqualFold(f.Name.Text, name) {
			return f
		}
	}
	return nil
}

// KeyValuePair is one entry of an ARG, ENV or LABEL instruction. Equals
// and Value are both nil for a bare key. The legacy `ENV KEY value` form has
// a Value but no Equals.
type KeyValuePair struct {
	Key    *Argument
	Equals *Token
	Value  *Argument
}

func (*KeyValuePair) Kind() Kind { return KindKeyValuePair }

func (kv *KeyValuePair) TextRange() lexer.TextRange {
	return span(kv.Key.TextRange().Start, kv.Children())
}

func (kv *KeyValuePair) Children() []Node {
	nodes := []Node{kv.Key}
	if kv.Equals != nil {
		nodes = append(nodes, kv.Equals)
	}
	if kv.Value != nil {
		nodes = append(nodes, kv.Value)
	}
	return nodes
}

// Name returns the unresolved key
func (kv *KeyValuePair) Name() string { return kv.Key.Value() }

// Code is the argument body of RUN, CMD, ENTRYPOINT, ADD, COPY and VOLUME:
// either an *ExecForm or a *ShellForm
type Code interface {
	Node
	// Arguments returns the words of the body in source order
	Arguments() []*Argument
	codeNode()
}

// ExecForm is a bracketed list of double-quoted arguments
type ExecForm struct {
	Open     *Token // [
	Elements *SeparatedList[*Argument]
	Close    *Token // ]
}

func (*ExecForm) Kind() Kind                   { return KindExecForm }
func (e *ExecForm) TextRange() lexer.TextRange { return e.Open.Range.Union(e.Close.Range) }
func (e *ExecForm) Children() []Node           { return []Node{e.Open, e.Elements, e.Close} }
func (e *ExecForm) Arguments() []*Argument     { return e.Elements.Elements }
func (*ExecForm) codeNode()                    {}

// ShellForm is a whitespace separated list of arguments, optionally
// followed by heredoc bodies
type ShellForm struct {
	Words    []*Argument // arguments on the instruction line, heredoc markers included
	Heredocs []*HereDocument

	at lexer.Position
}

func (*ShellForm) Kind() Kind                   { return KindShellForm }
func (s *ShellForm) TextRange() lexer.TextRange { return span(s.at, s.Children()) }
func (*ShellForm) codeNode()                    {}

func (s *ShellForm) Children() []Node {
	nodes := make([]Node, 0, len(s.Words)+len(s.Heredocs))
	for _, w := range s.Words {
		nodes = append(nodes, w)
	}
	for _, h := range s.Heredocs {
		nodes = append(nodes, h)
	}
	return nodes
}

// Arguments returns the line words followed by the words of every heredoc
// body
func (s *ShellForm) Arguments() []*Argument {
	args := append([]*Argument(nil), s.Words...)
	for _, h := range s.Heredocs {
		args = append(args, h.Content...)
	}
	return args
}

// Text returns the line words joined by single spaces
func (s *ShellForm) Text() string {
	parts := make([]string, len(s.Words))
	for i, w := range s.Words {
		parts[i] = w.Text()
	}
	return strings.Join(parts, " ")
}

// HereDocument is the body of a <<NAME redirect. Its range covers the body
// lines through the terminator line; the marker lives on the instruction
// line and is one of the ShellForm words.
type HereDocument struct {
	Marker     *Argument   // the <<NAME word, shared with ShellForm.Words
	Name       string      // terminator name without quotes
	StripTabs  bool        // <<- form
	Quoted     bool        // terminator was quoted; informational, bodies are never expanded
	Lines      []string    // raw body lines, terminator excluded
	Content    []*Argument // whitespace separated body words, terminator word last
	Terminator *Argument   // the terminator word, also the last Content element
}

func (*HereDocument) Kind() Kind { return KindHereDocument }

func (h *HereDocument) TextRange() lexer.TextRange {
	return span(h.Terminator.TextRange().Start, h.Children())
}

func (h *HereDocument) Children() []Node {
	nodes := make([]Node, len(h.Content))
	for i, a := range h.Content {
		nodes[i] = a
	}
	return nodes
}

// Body returns the heredoc content with lines joined by newlines
func (h *HereDocument) Body() string {
	if len(h.Lines) == 0 {
		return ""
	}
	return strings.Join(h.Lines, "\n") + "\n"
}
