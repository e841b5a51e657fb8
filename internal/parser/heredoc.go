package parser

import (
	"regexp"
	"strings"

	"github.com/HueCodes/keelson/internal/lexer"
)

var heredocMarker = regexp.MustCompile(`^<<(-?)(?:"([^"]+)"|'([^']+)'|([A-Za-z0-9_.\-]+))$`)

type marker struct {
	word      *Argument
	name      string
	stripTabs bool
	quoted    bool
}

func findMarkers(words []*Argument) []marker {
	var markers []marker
	for _, w := range words {
		m := heredocMarker.FindStringSubmatch(w.Text())
		if m == nil {
			continue
		}
		mk := marker{word: w, stripTabs: m[1] == "-"}
		switch {
		case m[2] != "":
			mk.name, mk.quoted = m[2], true
		case m[3] != "":
			mk.name, mk.quoted = m[3], true
		default:
			mk.name = m[4]
		}
		markers = append(markers, mk)
	}
	return markers
}

// parseHeredocs reads the bodies for every heredoc marker in the shell
// form, in declaration order. If any body has no terminator, no heredoc is
// recognised and the cursor is left at the end of the instruction line.
func (p *parser) parseHeredocs(shell *ShellForm) {
	markers := findMarkers(shell.Words)
	if len(markers) == 0 {
		return
	}
	st := p.lx.Save()
	docs := make([]*HereDocument, 0, len(markers))
	for _, m := range markers {
		doc, ok := p.readHeredoc(m)
		if !ok {
			p.lx.Restore(st)
			return
		}
		docs = append(docs, doc)
	}
	shell.Heredocs = docs
}

// readHeredoc consumes the line terminator before the body, the body lines
// and the terminator line. The newline after the terminator is left in
// place.
func (p *parser) readHeredoc(m marker) (*HereDocument, bool) {
	if !p.lx.ConsumeLineTerminator() {
		return nil, false
	}
	doc := &HereDocument{
		Marker:    m.word,
		Name:      m.name,
		StripTabs: m.stripTabs,
		Quoted:    m.quoted,
	}
	for !p.lx.AtEOF() {
		line := p.lx.RestOfLine()
		candidate := strings.TrimRight(line, " \t")
		if m.stripTabs {
			candidate = strings.TrimLeft(candidate, "\t")
		}
		words := p.heredocWords()
		doc.Content = append(doc.Content, words...)
		if candidate == m.name {
			doc.Terminator = words[len(words)-1]
			return doc, true
		}
		doc.Lines = append(doc.Lines, line)
		p.lx.ConsumeLineTerminator()
	}
	return nil, false
}

// heredocWords splits the current physical line into single-literal
// arguments. Quotes, escapes and variables are not interpreted.
func (p *parser) heredocWords() []*Argument {
	var args []*Argument
	for {
		p.lx.SkipBlanks()
		if p.lx.AtLineEnd() {
			return args
		}
		start := p.lx.Pos()
		p.lx.ReadWhile(func(r rune) bool {
			return !lexer.IsBlank(r) && !lexer.IsLineTerminator(r)
		})
		lit := &Literal{Token: p.token(start), escape: p.lx.Escape(), verbatim: true}
		args = append(args, &Argument{Fragments: []Expression{lit}, at: start})
	}
}
