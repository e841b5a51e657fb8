package parser

import (
	"github.com/HueCodes/keelson/internal/lexer"
)

// wordMode selects where a word stops
type wordMode int

const (
	modeShell    wordMode = iota // blanks, line end and continuations
	modeKey                      // as modeShell, and also at '='
	modeModifier                 // at '}' or line end; blanks are literal
	modeLegacy                   // at line end; inner blanks are literal, continuations are skipped
)

// parseWord parses one Argument. It returns an empty Argument when the
// cursor is already at a word boundary.
func (p *parser) parseWord(mode wordMode) *Argument {
	arg := &Argument{at: p.lx.Pos()}
	for !p.atWordEnd(mode) {
		if mode == modeLegacy && p.lx.AtContinuation() {
			p.lx.SkipSeparators()
			continue
		}
		var frag Expression
		var ok bool
		switch p.lx.Peek() {
		case '"':
			frag, ok = p.tryDoubleQuoted()
		case '\'':
			frag, ok = p.trySingleQuoted()
		case '$':
			frag, ok = p.tryVariable()
		}
		if !ok {
			frag = p.readLiteral(mode)
		}
		arg.push(frag)
	}
	return arg
}

// push appends a fragment, merging it into a preceding unquoted literal
// when the two are adjacent in the source
func (a *Argument) push(frag Expression) {
	if n := len(a.Fragments); n > 0 {
		prev, ok1 := a.Fragments[n-1].(*Literal)
		next, ok2 := frag.(*Literal)
		if ok1 && ok2 && !isSingleQuoted(prev) && !isSingleQuoted(next) &&
			prev.Token.Range.End.Offset == next.Token.Range.Start.Offset {
			prev.Token = &Token{
				Text:     prev.Token.Text + next.Token.Text,
				Range:    prev.Token.Range.Union(next.Token.Range),
				Comments: append(prev.Token.Comments, next.Token.Comments...),
			}
			return
		}
	}
	a.Fragments = append(a.Fragments, frag)
}

func isSingleQuoted(l *Literal) bool {
	s := l.Token.Text
	return len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\''
}

func (p *parser) atWordEnd(mode wordMode) bool {
	if p.lx.AtLineEnd() {
		return true
	}
	r := p.lx.Peek()
	switch mode {
	case modeModifier:
		return r == '}' || p.lx.AtContinuation()
	case modeLegacy:
		if !lexer.IsBlank(r) && !p.lx.AtContinuation() {
			return false
		}
		st := p.lx.Save()
		p.lx.SkipSeparators()
		end := p.lx.AtLineEnd()
		p.lx.Restore(st)
		return end
	case modeKey:
		if r == '=' {
			return true
		}
	}
	return lexer.IsBlank(r) || p.lx.AtContinuation()
}

// readLiteral reads unquoted text up to the next quote, dollar sign or word
// boundary. The first rune is always consumed. An escape character makes
// the rune after it literal. In legacy mode a continuation ends the literal
// and is skipped by the caller.
func (p *parser) readLiteral(mode wordMode) *Literal {
	start := p.lx.Pos()
	first := true
	for !p.atWordEnd(mode) {
		r := p.lx.Peek()
		if !first && (r == '"' || r == '\'' || r == '$') {
			break
		}
		if !first && mode == modeLegacy && p.lx.AtContinuation() {
			break
		}
		first = false
		p.lx.Next()
		if r == p.lx.Escape() && !p.lx.AtLineEnd() {
			p.lx.Next()
		}
	}
	return &Literal{Token: p.token(start), escape: p.lx.Escape()}
}

// trySingleQuoted parses '...'. The string may span continuations but must
// close on the same logical line.
func (p *parser) trySingleQuoted() (*Literal, bool) {
	st := p.lx.Save()
	start := p.lx.Pos()
	p.lx.Next()
	for {
		r := p.lx.Peek()
		switch {
		case p.lx.AtContinuation():
			p.lx.SkipContinuation()
		case p.lx.AtLineEnd():
			p.lx.Restore(st)
			return nil, false
		case r == '\'':
			p.lx.Next()
			return &Literal{Token: p.token(start), escape: p.lx.Escape()}, true
		case r == p.lx.Escape() && p.lx.PeekAt(1) == '\'':
			p.lx.Next()
			p.lx.Next()
		default:
			p.lx.Next()
		}
	}
}

// tryDoubleQuoted parses "..." with variable expansion. The string may span
// continuations but must close on the same logical line.
func (p *parser) tryDoubleQuoted() (*ExpandableStringLiteral, bool) {
	st := p.lx.Save()
	start := p.lx.Pos()
	p.lx.Next()
	str := &ExpandableStringLiteral{Open: p.token(start)}

	runStart := p.lx.Pos()
	flush := func() {
		if p.lx.Pos().Offset > runStart.Offset {
			str.Fragments = append(str.Fragments, &ExpandableStringCharacters{
				Token:  p.token(runStart),
				escape: p.lx.Escape(),
			})
		}
	}

	for {
		r := p.lx.Peek()
		switch {
		case p.lx.AtContinuation():
			p.lx.SkipContinuation()
		case p.lx.AtLineEnd():
			p.lx.Restore(st)
			return nil, false
		case r == '"':
			flush()
			closeStart := p.lx.Pos()
			p.lx.Next()
			str.Close = p.token(closeStart)
			return str, true
		case r == '$':
			n := len(str.Fragments)
			flush()
			if v, ok := p.tryVariable(); ok {
				str.Fragments = append(str.Fragments, v)
				runStart = p.lx.Pos()
				continue
			}
			str.Fragments = str.Fragments[:n]
			p.lx.Next()
		case r == p.lx.Escape() && isQuotedEscapable(p.lx.PeekAt(1), p.lx.Escape()):
			p.lx.Next()
			p.lx.Next()
		default:
			p.lx.Next()
		}
	}
}

// tryVariable parses $NAME, ${NAME}, ${NAME:-word} or ${NAME:+word}
func (p *parser) tryVariable() (Expression, bool) {
	st := p.lx.Save()
	start := p.lx.Pos()
	p.lx.Next()

	if p.lx.Peek() != '{' {
		if p.lx.ReadWhile(lexer.IsNameChar) == "" {
			p.lx.Restore(st)
			return nil, false
		}
		return &RegularVariable{Token: p.token(start)}, true
	}

	p.lx.Next()
	v := &EncapsulatedVariable{Open: p.token(start)}
	nameStart := p.lx.Pos()
	if p.lx.ReadWhile(lexer.IsNameChar) == "" {
		p.lx.Restore(st)
		return nil, false
	}
	v.Name = p.token(nameStart)

	if p.lx.HasPrefix(":-") || p.lx.HasPrefix(":+") {
		sepStart := p.lx.Pos()
		p.lx.Next()
		p.lx.Next()
		v.Separator = p.token(sepStart)
		v.Modifier = p.parseWord(modeModifier)
	}
	if p.lx.Peek() != '}' {
		p.lx.Restore(st)
		return nil, false
	}
	closeStart := p.lx.Pos()
	p.lx.Next()
	v.Close = p.token(closeStart)
	return v, true
}
