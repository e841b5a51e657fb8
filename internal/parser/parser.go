package parser

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/HueCodes/keelson/internal/lexer"
)

// DefaultMaxDepth bounds ONBUILD nesting
const DefaultMaxDepth = 32

// Option configures a parse
type Option func(*parser)

// WithFilename sets the filename reported in errors
func WithFilename(name string) Option {
	return func(p *parser) {
		p.filename = name
	}
}

// WithMaxDepth sets the maximum ONBUILD nesting depth
func WithMaxDepth(depth int) Option {
	return func(p *parser) {
		if depth > 0 {
			p.maxDepth = depth
		}
	}
}

// parser holds the state of a single parse
type parser struct {
	lx       *lexer.Lexer
	filename string
	maxDepth int
}

// Parse parses a Dockerfile into a syntax tree. On failure the error is a
// *ParseError and no tree is returned.
func Parse(input string, opts ...Option) (*File, error) {
	p := &parser{
		lx:       lexer.New(input),
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p.parseFile()
}

func (p *parser) parseFile() (*File, error) {
	file := &File{Escape: '\\'}
	if err := p.parseDirectives(file); err != nil {
		return nil, err
	}

	body := &Body{at: p.lx.Pos()}
	var current *Image
	for {
		p.skipTrivia()
		if p.lx.AtEOF() {
			break
		}
		inst, err := p.parseInstruction(0)
		if err != nil {
			return nil, err
		}
		if err := p.expectLineEnd(); err != nil {
			return nil, err
		}

		switch inst := inst.(type) {
		case *FromInstruction:
			current = &Image{From: inst}
			body.Images = append(body.Images, current)
		case *ArgInstruction:
			if current == nil {
				body.GlobalArgs = append(body.GlobalArgs, inst)
			} else {
				current.Instructions = append(current.Instructions, inst)
			}
		default:
			if current == nil {
				return nil, p.errorf(inst.KeywordToken().Range.Start,
					"%s instruction before the first FROM", strings.ToUpper(inst.KeywordToken().Text))
			}
			current.Instructions = append(current.Instructions, inst)
		}
	}

	if len(body.Images) == 0 && len(body.GlobalArgs) > 0 {
		return nil, p.errorf(body.GlobalArgs[0].Keyword.Range.Start, "no FROM instruction after global ARG instructions")
	}

	file.Body = body
	end := p.lx.Pos()
	file.EOF = &Token{Range: lexer.Point(end), Comments: p.lx.TakeComments()}
	return file, nil
}

var directivePattern = regexp.MustCompile(`^#[ \t]*([a-zA-Z][a-zA-Z0-9]*)[ \t]*=[ \t]*(.*?)[ \t]*$`)

var knownDirectives = map[string]bool{
	"escape": true,
	"syntax": true,
	"check":  true,
}

// parseDirectives reads parser directives from the leading comment block.
// Reading stops at the first line that is not a directive. Directive
// comments are kept as trivia of the first token.
func (p *parser) parseDirectives(file *File) error {
	seen := make(map[string]bool)
	for {
		st := p.lx.Save()
		p.lx.SkipBlanks()
		if p.lx.Peek() != '#' {
			p.lx.Restore(st)
			return nil
		}
		c := p.lx.ReadComment()
		m := directivePattern.FindStringSubmatch(c.Text)
		if m == nil {
			p.lx.Restore(st)
			return nil
		}
		name := strings.ToLower(m[1])
		if !knownDirectives[name] || seen[name] {
			p.lx.Restore(st)
			return nil
		}
		seen[name] = true

		if name == "escape" {
			if m[2] != `\` && m[2] != "`" {
				return p.errorf(c.Range.Start, "invalid escape directive %q: must be \\ or `", m[2])
			}
			file.Escape = rune(m[2][0])
			p.lx.SetEscape(file.Escape)
		}
		file.Directives = append(file.Directives, Directive{Name: name, Value: m[2], Range: c.Range})
		p.lx.Buffer(c)
		p.lx.ConsumeLineTerminator()
	}
}

// skipTrivia skips blank lines and comment lines between instructions,
// buffering the comments for the next token
func (p *parser) skipTrivia() {
	for {
		p.lx.SkipBlanks()
		switch {
		case p.lx.Peek() == '#':
			p.lx.Buffer(p.lx.ReadComment())
			p.lx.ConsumeLineTerminator()
		case p.lx.ConsumeLineTerminator():
		default:
			return
		}
	}
}

// expectLineEnd requires the logical line to be finished and consumes the
// line terminator
func (p *parser) expectLineEnd() error {
	p.lx.SkipSeparators()
	if !p.lx.AtLineEnd() {
		return p.errorf(p.lx.Pos(), "unexpected %q", firstField(p.lx.RestOfLine()))
	}
	p.lx.ConsumeLineTerminator()
	return nil
}

// token builds a token from start to the cursor, attaching buffered comments
func (p *parser) token(start lexer.Position) *Token {
	end := p.lx.Pos()
	return &Token{
		Text:     p.lx.Slice(start.Offset, end.Offset),
		Range:    lexer.TextRange{Start: start, End: end},
		Comments: p.lx.TakeComments(),
	}
}

// atSeparator reports whether the cursor ends a word: blank, line end or
// continuation
func (p *parser) atSeparator() bool {
	return p.lx.AtLineEnd() || lexer.IsBlank(p.lx.Peek()) || p.lx.AtContinuation()
}

// readKeyword reads a run of letters followed by a separator
func (p *parser) readKeyword() (*Token, bool) {
	st := p.lx.Save()
	start := p.lx.Pos()
	if p.lx.ReadWhile(unicode.IsLetter) == "" || !p.atSeparator() {
		p.lx.Restore(st)
		return nil, false
	}
	return p.token(start), true
}

// parseInstruction parses one instruction starting at its keyword
func (p *parser) parseInstruction(depth int) (Instruction, error) {
	start := p.lx.Pos()
	kw, ok := p.readKeyword()
	if !ok {
		return nil, p.errorf(start, "unknown instruction %q", firstField(p.lx.RestOfLine()))
	}
	name, ok := lexer.LookupKeyword(kw.Text)
	if !ok {
		return nil, p.errorf(start, "unknown instruction %q", kw.Text)
	}
	p.lx.SkipSeparators()

	base := BaseInstruction{Keyword: kw}
	switch name {
	case "FROM":
		return p.parseFrom(base)
	case "RUN":
		flags := p.parseFlags()
		return &RunInstruction{BaseInstruction: base, Flags: flags, Code: p.parseCode(true)}, nil
	case "CMD":
		return &CmdInstruction{BaseInstruction: base, Code: p.parseCode(true)}, nil
	case "ENTRYPOINT":
		flags := p.parseFlags()
		return &EntrypointInstruction{BaseInstruction: base, Flags: flags, Code: p.parseCode(true)}, nil
	case "ADD":
		flags := p.parseFlags()
		return &AddInstruction{BaseInstruction: base, Flags: flags, Code: p.parseCode(true)}, nil
	case "COPY":
		flags := p.parseFlags()
		return &CopyInstruction{BaseInstruction: base, Flags: flags, Code: p.parseCode(true)}, nil
	case "ENV":
		pairs, err := p.parsePairs(kw, true)
		if err != nil {
			return nil, err
		}
		return &EnvInstruction{BaseInstruction: base, Pairs: pairs}, nil
	case "ARG":
		pairs, err := p.parsePairs(kw, false)
		if err != nil {
			return nil, err
		}
		return &ArgInstruction{BaseInstruction: base, Pairs: pairs}, nil
	case "LABEL":
		pairs, err := p.parsePairs(kw, true)
		if err != nil {
			return nil, err
		}
		return &LabelInstruction{BaseInstruction: base, Pairs: pairs}, nil
	case "EXPOSE":
		return &ExposeInstruction{BaseInstruction: base, Ports: p.parseWords()}, nil
	case "VOLUME":
		return &VolumeInstruction{BaseInstruction: base, Code: p.parseCode(false)}, nil
	case "WORKDIR":
		return &WorkdirInstruction{BaseInstruction: base, Paths: p.parseWords()}, nil
	case "USER":
		return &UserInstruction{BaseInstruction: base, Arguments: p.parseWords()}, nil
	case "MAINTAINER":
		return &MaintainerInstruction{BaseInstruction: base, Authors: p.parseWords()}, nil
	case "STOPSIGNAL":
		return &StopsignalInstruction{BaseInstruction: base, Signals: p.parseWords()}, nil
	case "SHELL":
		exec, ok := p.tryExecForm()
		if !ok {
			return nil, p.errorf(p.lx.Pos(), "SHELL requires the arguments in JSON array form")
		}
		return &ShellInstruction{BaseInstruction: base, Code: exec}, nil
	case "HEALTHCHECK":
		return p.parseHealthcheck(base)
	case "ONBUILD":
		return p.parseOnbuild(base, depth)
	}
	return nil, p.errorf(start, "unknown instruction %q", kw.Text)
}

func (p *parser) parseFrom(base BaseInstruction) (*FromInstruction, error) {
	from := &FromInstruction{BaseInstruction: base, Flags: p.parseFlags()}
	if p.lx.AtLineEnd() {
		return nil, p.errorf(p.lx.Pos(), "FROM requires an image")
	}
	from.Image = p.parseWord(modeShell)
	p.lx.SkipSeparators()
	if p.lx.AtLineEnd() {
		return from, nil
	}

	pos := p.lx.Pos()
	as, ok := p.readKeyword()
	if !ok || !strings.EqualFold(as.Text, "AS") {
		return nil, p.errorf(pos, "unexpected %q after image, expected AS", firstField(p.lx.RestOfLine()))
	}
	from.As = as
	p.lx.SkipSeparators()
	if p.lx.AtLineEnd() {
		return nil, p.errorf(p.lx.Pos(), "AS requires a stage name")
	}
	from.Alias = p.parseWord(modeShell)
	p.lx.SkipSeparators()
	if !p.lx.AtLineEnd() {
		return nil, p.errorf(p.lx.Pos(), "unexpected %q after stage name", firstField(p.lx.RestOfLine()))
	}
	return from, nil
}

func (p *parser) parseHealthcheck(base BaseInstruction) (*HealthcheckInstruction, error) {
	hc := &HealthcheckInstruction{BaseInstruction: base}
	st := p.lx.Save()
	if none, ok := p.readKeyword(); ok && strings.EqualFold(none.Text, "NONE") {
		hc.None = none
		return hc, nil
	}
	p.lx.Restore(st)

	hc.Flags = p.parseFlags()
	pos := p.lx.Pos()
	cmd, ok := p.readKeyword()
	if !ok || !strings.EqualFold(cmd.Text, "CMD") {
		return nil, p.errorf(pos, "HEALTHCHECK requires NONE or CMD")
	}
	p.lx.SkipSeparators()
	hc.Cmd = &CmdInstruction{BaseInstruction: BaseInstruction{Keyword: cmd}, Code: p.parseCode(false)}
	return hc, nil
}

func (p *parser) parseOnbuild(base BaseInstruction, depth int) (*OnbuildInstruction, error) {
	if depth >= p.maxDepth {
		return nil, p.errorf(base.Keyword.Range.Start, "ONBUILD nesting exceeds %d levels", p.maxDepth)
	}
	if p.lx.AtLineEnd() {
		return nil, p.errorf(p.lx.Pos(), "ONBUILD requires an instruction")
	}
	inner, err := p.parseInstruction(depth + 1)
	if err != nil {
		return nil, err
	}
	return &OnbuildInstruction{BaseInstruction: base, Instruction: inner}, nil
}

func firstField(s string) string {
	if f := strings.Fields(s); len(f) > 0 {
		return f[0]
	}
	return s
}
