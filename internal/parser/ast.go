package parser

import (
	"fmt"

	"github.com/HueCodes/keelson/internal/lexer"
)

// Kind identifies the variant of a syntax tree node
type Kind int

const (
	KindFile Kind = iota
	KindBody
	KindImage
	KindToken

	// Expressions
	KindLiteral
	KindExpandableStringCharacters
	KindRegularVariable
	KindEncapsulatedVariable
	KindExpandableStringLiteral

	// Arguments and shared sub-grammars
	KindArgument
	KindSeparatedList
	KindFlag
	KindKeyValuePair
	KindExecForm
	KindShellForm
	KindHereDocument

	// Instructions
	KindFrom
	KindRun
	KindCmd
	KindEntrypoint
	KindAdd
	KindCopy
	KindEnv
	KindArg
	KindLabel
	KindExpose
	KindVolume
	KindWorkdir
	KindUser
	KindMaintainer
	KindShell
	KindHealthcheck
	KindStopsignal
	KindOnbuild

	kindCount
)

var kindNames = [...]string{
	KindFile:                       "File",
	KindBody:                       "Body",
	KindImage:                      "Image",
	KindToken:                      "Token",
	KindLiteral:                    "Literal",
	KindExpandableStringCharacters: "ExpandableStringCharacters",
	KindRegularVariable:            "RegularVariable",
	KindEncapsulatedVariable:       "EncapsulatedVariable",
	KindExpandableStringLiteral:    "ExpandableStringLiteral",
	KindArgument:                   "Argument",
	KindSeparatedList:              "SeparatedList",
	KindFlag:                       "Flag",
	KindKeyValuePair:               "KeyValuePair",
	KindExecForm:                   "ExecForm",
	KindShellForm:                  "ShellForm",
	KindHereDocument:               "HereDocument",
	KindFrom:                       "FROM",
	KindRun:                        "RUN",
	KindCmd:                        "CMD",
	KindEntrypoint:                 "ENTRYPOINT",
	KindAdd:                        "ADD",
	KindCopy:                       "COPY",
	KindEnv:                        "ENV",
	KindArg:                        "ARG",
	KindLabel:                      "LABEL",
	KindExpose:                     "EXPOSE",
	KindVolume:                     "VOLUME",
	KindWorkdir:                    "WORKDIR",
	KindUser:                       "USER",
	KindMaintainer:                 "MAINTAINER",
	KindShell:                      "SHELL",
	KindHealthcheck:                "HEALTHCHECK",
	KindStopsignal:                 "STOPSIGNAL",
	KindOnbuild:                    "ONBUILD",
}

func (k Kind) String() string {
	if k >= 0 && k < kindCount {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsInstruction returns true for instruction kinds
func (k Kind) IsInstruction() bool {
	return k >= KindFrom && k <= KindOnbuild
}

// Kinds returns every node kind in declaration order
func Kinds() []Kind {
	kinds := make([]Kind, 0, kindCount)
	for k := KindFile; k < kindCount; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// Node is the interface implemented by all syntax tree nodes. Kind never
// dereferences its receiver, so it can be called on a nil pointer of a
// concrete node type.
type Node interface {
	Kind() Kind
	TextRange() lexer.TextRange
	Children() []Node
}

// Token is a leaf of the syntax tree. Comments that precede the token are
// carried as trivia.
type Token struct {
	Text     string
	Range    lexer.TextRange
	Comments []lexer.Comment
}

func (*Token) Kind() Kind                   { return KindToken }
func (t *Token) TextRange() lexer.TextRange { return t.Range }
func (*Token) Children() []Node             { return nil }

func (t *Token) String() string {
	return fmt.Sprintf("%q at %s", t.Text, t.Range)
}

// span returns the union of the ranges of nodes, or an empty range at
// fallback when there are none.
func span(fallback lexer.Position, nodes []Node) lexer.TextRange {
	if len(nodes) == 0 {
		return lexer.Point(fallback)
	}
	r := nodes[0].TextRange()
	for _, n := range nodes[1:] {
		r = r.Union(n.TextRange())
	}
	return r
}

// File is the root of the syntax tree
type File struct {
	Body       *Body
	EOF        *Token // end of input, carries trailing comments
	Directives []Directive
	Escape     rune // escape character in effect (default \)
}

// Directive is a parser directive such as `# escape=` or `# syntax=` read
// from the leading comment block. The comment itself stays trivia of the
// first token.
type Directive struct {
	Name  string // lower-case directive name
	Value string
	Range lexer.TextRange
}

func (*File) Kind() Kind                   { return KindFile }
func (f *File) TextRange() lexer.TextRange { return span(f.EOF.Range.Start, f.Children()) }
func (f *File) Children() []Node           { return []Node{f.Body, f.EOF} }

// Directive returns the value of the named parser directive
func (f *File) Directive(name string) (string, bool) {
	for _, d := range f.Directives {
		if d.Name == name {
			return d.Value, true
		}
	}
	return "", false
}

// Instructions returns every top-level instruction in source order
func (f *File) Instructions() []Instruction {
	var out []Instruction
	for _, arg := range f.Body.GlobalArgs {
		out = append(out, arg)
	}
	for _, img := range f.Body.Images {
		out = append(out, img.From)
		out = append(out, img.Instructions...)
	}
	return out
}

// Body holds the global ARG instructions and the images
type Body struct {
	GlobalArgs []*ArgInstruction // ARG instructions before the first FROM
	Images     []*Image

	at lexer.Position
}

func (*Body) Kind() Kind                   { return KindBody }
func (b *Body) TextRange() lexer.TextRange { return span(b.at, b.Children()) }

func (b *Body) Children() []Node {
	nodes := make([]Node, 0, len(b.GlobalArgs)+len(b.Images))
	for _, arg := range b.GlobalArgs {
		nodes = append(nodes, arg)
	}
	for _, img := range b.Images {
		nodes = append(nodes, img)
	}
	return nodes
}

// Image is a build stage: a FROM instruction and the instructions that
// follow it up to the next FROM or the end of the file
type Image struct {
	From         *FromInstruction
	Instructions []Instruction
}

func (*Image) Kind() Kind                   { return KindImage }
func (i *Image) TextRange() lexer.TextRange { return span(i.From.Keyword.Range.Start, i.Children()) }

func (i *Image) Children() []Node {
	nodes := make([]Node, 0, len(i.Instructions)+1)
	nodes = append(nodes, i.From)
	for _, inst := range i.Instructions {
		nodes = append(nodes, inst)
	}
	return nodes
}

// Name returns the stage alias (from the AS clause) or ""
func (i *Image) Name() string {
	if i.From.Alias == nil {
		return ""
	}
	return i.From.Alias.Value()
}

// Instructions returns all instructions of a specific type, including the
// instructions wrapped by ONBUILD
func Instructions[T Instruction](f *File) []T {
	var result []T
	var visit func(inst Instruction)
	visit = func(inst Instruction) {
		if typed, ok := inst.(T); ok {
			result = append(result, typed)
		}
		if onbuild, ok := inst.(*OnbuildInstruction); ok {
			visit(onbuild.Instruction)
		}
	}
	for _, inst := range f.Instructions() {
		visit(inst)
	}
	return result
}
