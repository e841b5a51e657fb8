package parser

import (
	"github.com/HueCodes/keelson/internal/lexer"
)

// parseFlags parses --name[=value] options left to right
func (p *parser) parseFlags() []*Flag {
	var flags []*Flag
	for p.lx.HasPrefix("--") {
		st := p.lx.Save()
		start := p.lx.Pos()
		p.lx.Next()
		p.lx.Next()
		prefix := p.token(start)

		nameStart := p.lx.Pos()
		if p.lx.ReadWhile(isFlagNameChar) == "" {
			p.lx.Restore(st)
			break
		}
		flag := &Flag{Prefix: prefix, Name: p.token(nameStart)}
		if p.lx.Peek() == '=' {
			eqStart := p.lx.Pos()
			p.lx.Next()
			flag.Equals = p.token(eqStart)
			flag.Value = p.parseWord(modeShell)
		} else if !p.atSeparator() {
			p.lx.Restore(st)
			break
		}
		flags = append(flags, flag)
		p.lx.SkipSeparators()
	}
	return flags
}

func isFlagNameChar(r rune) bool {
	return lexer.IsNameChar(r) || r == '-'
}

// parseCode parses an exec form, falling back to shell form from the same
// position when the exec form is malformed or followed by anything but
// blanks
func (p *parser) parseCode(heredocs bool) Code {
	if exec, ok := p.tryExecForm(); ok {
		return exec
	}
	return p.parseShellForm(heredocs)
}

// tryExecForm parses ["a", "b"] up to the end of the logical line. On any
// violation the cursor is restored and false is returned.
func (p *parser) tryExecForm() (*ExecForm, bool) {
	if p.lx.Peek() != '[' {
		return nil, false
	}
	st := p.lx.Save()
	fail := func() (*ExecForm, bool) {
		p.lx.Restore(st)
		return nil, false
	}

	start := p.lx.Pos()
	p.lx.Next()
	exec := &ExecForm{Open: p.token(start)}
	list := &SeparatedList[*Argument]{at: p.lx.Pos()}
	exec.Elements = list

	p.lx.SkipSeparators()
	if p.lx.Peek() != ']' {
		for {
			if p.lx.Peek() != '"' {
				return fail()
			}
			str, ok := p.tryDoubleQuoted()
			if !ok {
				return fail()
			}
			list.Elements = append(list.Elements, &Argument{Fragments: []Expression{str}})
			p.lx.SkipSeparators()
			if p.lx.Peek() != ',' {
				break
			}
			sepStart := p.lx.Pos()
			p.lx.Next()
			list.Separators = append(list.Separators, p.token(sepStart))
			p.lx.SkipSeparators()
		}
	}
	if p.lx.Peek() != ']' {
		return fail()
	}
	closeStart := p.lx.Pos()
	p.lx.Next()
	exec.Close = p.token(closeStart)

	p.lx.SkipSeparators()
	if !p.lx.AtLineEnd() {
		return fail()
	}
	return exec, true
}

// parseShellForm splits the rest of the logical line into arguments and
// reads heredoc bodies when enabled
func (p *parser) parseShellForm(heredocs bool) *ShellForm {
	shell := &ShellForm{at: p.lx.Pos(), Words: p.parseWords()}
	if heredocs {
		p.parseHeredocs(shell)
	}
	return shell
}

// parseWords parses whitespace separated arguments to the end of the
// logical line
func (p *parser) parseWords() []*Argument {
	var words []*Argument
	for !p.lx.AtLineEnd() {
		words = append(words, p.parseWord(modeShell))
		p.lx.SkipSeparators()
	}
	return words
}

// parsePairs parses KEY=VALUE pairs. With legacy set, a first key that is
// not followed by '=' takes the rest of the line as its value.
func (p *parser) parsePairs(kw *Token, legacy bool) ([]*KeyValuePair, error) {
	var pairs []*KeyValuePair
	for !p.lx.AtLineEnd() {
		pos := p.lx.Pos()
		key := p.parseWord(modeKey)
		if len(key.Fragments) == 0 {
			return nil, p.errorf(pos, "%s: missing name before '='", kw.Text)
		}
		kv := &KeyValuePair{Key: key}
		if p.lx.Peek() == '=' {
			eqStart := p.lx.Pos()
			p.lx.Next()
			kv.Equals = p.token(eqStart)
			kv.Value = p.parseWord(modeShell)
		} else if legacy && len(pairs) == 0 {
			p.lx.SkipSeparators()
			if !p.lx.AtLineEnd() {
				kv.Value = p.parseWord(modeLegacy)
				return append(pairs, kv), nil
			}
		}
		pairs = append(pairs, kv)
		p.lx.SkipSeparators()
	}
	if len(pairs) == 0 {
		return nil, p.errorf(p.lx.Pos(), "%s requires at least one argument", kw.Text)
	}
	return pairs, nil
}
