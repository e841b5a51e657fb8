package parser

import (
	"strconv"
	"strings"

	"github.com/opencontainers/go-digest"
	"github.com/pkg/errors"

	"github.com/HueCodes/keelson/internal/lexer"
)

// Instruction is implemented by every Dockerfile instruction. The set of
// implementations is closed; switch on Kind or on the concrete type.
type Instruction interface {
	Node
	KeywordToken() *Token
	instructionNode()
}

// BaseInstruction holds the keyword shared by all instructions
type BaseInstruction struct {
	Keyword *Token
}

// KeywordToken returns the instruction keyword as written
func (b *BaseInstruction) KeywordToken() *Token { return b.Keyword }

func (*BaseInstruction) instructionNode() {}

func instructionRange(kw *Token, children []Node) lexer.TextRange {
	return span(kw.Range.Start, children)
}

func appendFlags(nodes []Node, flags []*Flag) []Node {
	for _, f := range flags {
		nodes = append(nodes, f)
	}
	return nodes
}

func appendArgs(nodes []Node, args []*Argument) []Node {
	for _, a := range args {
		nodes = append(nodes, a)
	}
	return nodes
}

func appendPairs(nodes []Node, pairs []*KeyValuePair) []Node {
	for _, kv := range pairs {
		nodes = append(nodes, kv)
	}
	return nodes
}

// FromInstruction represents FROM [--platform=...] image [AS name]
type FromInstruction struct {
	BaseInstruction
	Flags []*Flag
	Image *Argument
	As    *Token    // nil without an AS clause
	Alias *Argument // nil without an AS clause
}

func (*FromInstruction) Kind() Kind                   { return KindFrom }
func (i *FromInstruction) TextRange() lexer.TextRange { return instructionRange(i.Keyword, i.Children()) }

func (i *FromInstruction) Children() []Node {
	nodes := appendFlags([]Node{i.Keyword}, i.Flags)
	nodes = append(nodes, i.Image)
	if i.As != nil {
		nodes = append(nodes, i.As, i.Alias)
	}
	return nodes
}

// Platform returns the --platform flag or nil
func (i *FromInstruction) Platform() *Flag { return FindFlag(i.Flags, "platform") }

// ImageName returns the image reference without tag or digest
func (i *FromInstruction) ImageName() string {
	name, _, _ := splitImageRef(i.Image.Value())
	return name
}

// Tag returns the image tag or ""
func (i *FromInstruction) Tag() string {
	_, tag, _ := splitImageRef(i.Image.Value())
	return tag
}

// Digest returns the image digest or ""
func (i *FromInstruction) Digest() string {
	_, _, d := splitImageRef(i.Image.Value())
	return d
}

// ParsedDigest validates and returns the image digest
func (i *FromInstruction) ParsedDigest() (digest.Digest, error) {
	raw := i.Digest()
	if raw == "" {
		return "", errors.Errorf("image %q has no digest", i.Image.Value())
	}
	d, err := digest.Parse(raw)
	if err != nil {
		return "", errors.Wrapf(err, "invalid digest in image %q", i.Image.Value())
	}
	return d, nil
}

// IsScratch returns true for FROM scratch
func (i *FromInstruction) IsScratch() bool {
	return strings.EqualFold(i.Image.Value(), "scratch")
}

// splitImageRef splits name[:tag][@digest]. A colon belongs to the tag only
// when it follows the last slash, so registry ports are kept in the name.
func splitImageRef(ref string) (name, tag, dgst string) {
	if at := strings.Index(ref, "@"); at >= 0 {
		ref, dgst = ref[:at], ref[at+1:]
	}
	if colon := strings.LastIndex(ref, ":"); colon > strings.LastIndex(ref, "/") {
		ref, tag = ref[:colon], ref[colon+1:]
	}
	return ref, tag, dgst
}

// RunInstruction represents RUN
type RunInstruction struct {
	BaseInstruction
	Flags []*Flag
	Code  Code
}

func (*RunInstruction) Kind() Kind                   { return KindRun }
func (i *RunInstruction) TextRange() lexer.TextRange { return instructionRange(i.Keyword, i.Children()) }

func (i *RunInstruction) Children() []Node {
	return append(appendFlags([]Node{i.Keyword}, i.Flags), i.Code)
}

func (i *RunInstruction) IsExec() bool              { return isExec(i.Code) }
func (i *RunInstruction) Arguments() []*Argument    { return i.Code.Arguments() }
func (i *RunInstruction) Heredocs() []*HereDocument { return heredocsOf(i.Code) }

// Mounts returns every --mount flag in order
func (i *RunInstruction) Mounts() []*Flag {
	var mounts []*Flag
	for _, f := range i.Flags {
		if strings.EqualFold(f.Key(), "mount") {
			mounts = append(mounts, f)
		}
	}
	return mounts
}

// CmdInstruction represents CMD
type CmdInstruction struct {
	BaseInstruction
	Code Code
}

func (*CmdInstruction) Kind() Kind                   { return KindCmd }
func (i *CmdInstruction) TextRange() lexer.TextRange { return instructionRange(i.Keyword, i.Children()) }
func (i *CmdInstruction) Children() []Node           { return []Node{i.Keyword, i.Code} }
func (i *CmdInstruction) IsExec() bool               { return isExec(i.Code) }
func (i *CmdInstruction) Arguments() []*Argument     { return i.Code.Arguments() }
func (i *CmdInstruction) Heredocs() []*HereDocument  { return heredocsOf(i.Code) }

// EntrypointInstruction represents ENTRYPOINT
type EntrypointInstruction struct {
	BaseInstruction
	Flags []*Flag
	Code  Code
}

func (*EntrypointInstruction) Kind() Kind { return KindEntrypoint }

func (i *EntrypointInstruction) TextRange() lexer.TextRange {
	return instructionRange(i.Keyword, i.Children())
}

func (i *EntrypointInstruction) Children() []Node {
	return append(appendFlags([]Node{i.Keyword}, i.Flags), i.Code)
}

func (i *EntrypointInstruction) IsExec() bool              { return isExec(i.Code) }
func (i *EntrypointInstruction) Arguments() []*Argument    { return i.Code.Arguments() }
func (i *EntrypointInstruction) Heredocs() []*HereDocument { return heredocsOf(i.Code) }

// AddInstruction represents ADD
type AddInstruction struct {
	BaseInstruction
	Flags []*Flag
	Code  Code
}

func (*AddInstruction) Kind() Kind                   { return KindAdd }
func (i *AddInstruction) TextRange() lexer.TextRange { return instructionRange(i.Keyword, i.Children()) }

func (i *AddInstruction) Children() []Node {
	return append(appendFlags([]Node{i.Keyword}, i.Flags), i.Code)
}

func (i *AddInstruction) IsExec() bool              { return isExec(i.Code) }
func (i *AddInstruction) Heredocs() []*HereDocument { return heredocsOf(i.Code) }

// Sources returns every argument except the destination
func (i *AddInstruction) Sources() []*Argument {
	srcs, _ := sourcesAndDestination(i.Code)
	return srcs
}

// Destination returns the last argument, or nil when the only operand is a
// heredoc
func (i *AddInstruction) Destination() *Argument {
	_, dest := sourcesAndDestination(i.Code)
	return dest
}

// CopyInstruction represents COPY
type CopyInstruction struct {
	BaseInstruction
	Flags []*Flag
	Code  Code
}

func (*CopyInstruction) Kind() Kind                   { return KindCopy }
func (i *CopyInstruction) TextRange() lexer.TextRange { return instructionRange(i.Keyword, i.Children()) }

func (i *CopyInstruction) Children() []Node {
	return append(appendFlags([]Node{i.Keyword}, i.Flags), i.Code)
}

func (i *CopyInstruction) IsExec() bool              { return isExec(i.Code) }
func (i *CopyInstruction) Heredocs() []*HereDocument { return heredocsOf(i.Code) }

// Arguments returns the operands including heredoc content
func (i *CopyInstruction) Arguments() []*Argument { return i.Code.Arguments() }

// From returns the --from flag or nil
func (i *CopyInstruction) From() *Flag { return FindFlag(i.Flags, "from") }

// Sources returns every argument except the destination
func (i *CopyInstruction) Sources() []*Argument {
	srcs, _ := sourcesAndDestination(i.Code)
	return srcs
}

// Destination returns the last argument, or nil when the only operand is a
// heredoc
func (i *CopyInstruction) Destination() *Argument {
	_, dest := sourcesAndDestination(i.Code)
	return dest
}

func isExec(c Code) bool {
	_, ok := c.(*ExecForm)
	return ok
}

func heredocsOf(c Code) []*HereDocument {
	if sf, ok := c.(*ShellForm); ok {
		return sf.Heredocs
	}
	return nil
}

func sourcesAndDestination(c Code) ([]*Argument, *Argument) {
	var words []*Argument
	switch c := c.(type) {
	case *ExecForm:
		words = c.Arguments()
	case *ShellForm:
		words = c.Words
		if n := len(words); n > 0 {
			for _, h := range c.Heredocs {
				if h.Marker == words[n-1] {
					return words, nil
				}
			}
		}
	}
	if len(words) == 0 {
		return nil, nil
	}
	return words[:len(words)-1], words[len(words)-1]
}

// EnvInstruction represents ENV
type EnvInstruction struct {
	BaseInstruction
	Pairs []*KeyValuePair
}

func (*EnvInstruction) Kind() Kind                   { return KindEnv }
func (i *EnvInstruction) TextRange() lexer.TextRange { return instructionRange(i.Keyword, i.Children()) }
func (i *EnvInstruction) Children() []Node           { return appendPairs([]Node{i.Keyword}, i.Pairs) }

// ArgInstruction represents ARG
type ArgInstruction struct {
	BaseInstruction
	Pairs []*KeyValuePair
}

func (*ArgInstruction) Kind() Kind                   { return KindArg }
func (i *ArgInstruction) TextRange() lexer.TextRange { return instructionRange(i.Keyword, i.Children()) }
func (i *ArgInstruction) Children() []Node           { return appendPairs([]Node{i.Keyword}, i.Pairs) }

// LabelInstruction represents LABEL
type LabelInstruction struct {
	BaseInstruction
	Pairs []*KeyValuePair
}

func (*LabelInstruction) Kind() Kind                   { return KindLabel }
func (i *LabelInstruction) TextRange() lexer.TextRange { return instructionRange(i.Keyword, i.Children()) }
func (i *LabelInstruction) Children() []Node           { return appendPairs([]Node{i.Keyword}, i.Pairs) }

// ExposeInstruction represents EXPOSE
type ExposeInstruction struct {
	BaseInstruction
	Ports []*Argument
}

func (*ExposeInstruction) Kind() Kind                   { return KindExpose }
func (i *ExposeInstruction) TextRange() lexer.TextRange { return instructionRange(i.Keyword, i.Children()) }
func (i *ExposeInstruction) Children() []Node           { return appendArgs([]Node{i.Keyword}, i.Ports) }

// PortSpecs parses every port argument. Arguments that contain variables or
// are not PORT[-PORT][/PROTOCOL] are skipped.
func (i *ExposeInstruction) PortSpecs() []PortSpec {
	var specs []PortSpec
	for _, arg := range i.Ports {
		if arg.HasVariables() {
			continue
		}
		if spec, err := ParsePort(arg.Value()); err == nil {
			specs = append(specs, spec)
		}
	}
	return specs
}

// PortSpec is a parsed EXPOSE entry
type PortSpec struct {
	Start    int
	End      int // equal to Start for a single port
	Protocol string
}

// IsPrivileged returns true if the range starts below 1024
func (p PortSpec) IsPrivileged() bool {
	return p.Start > 0 && p.Start < 1024
}

func (p PortSpec) String() string {
	s := strconv.Itoa(p.Start)
	if p.End != p.Start {
		s += "-" + strconv.Itoa(p.End)
	}
	return s + "/" + p.Protocol
}

// ParsePort parses PORT[-PORT][/PROTOCOL]. The protocol defaults to tcp.
func ParsePort(s string) (PortSpec, error) {
	spec := PortSpec{Protocol: "tcp"}
	ports := s
	if slash := strings.Index(s, "/"); slash >= 0 {
		ports, spec.Protocol = s[:slash], strings.ToLower(s[slash+1:])
		if spec.Protocol == "" {
			return PortSpec{}, errors.Errorf("missing protocol in %q", s)
		}
	}
	first, last, isRange := strings.Cut(ports, "-")
	var err error
	if spec.Start, err = strconv.Atoi(first); err != nil {
		return PortSpec{}, errors.Wrapf(err, "invalid port %q", s)
	}
	spec.End = spec.Start
	if isRange {
		if spec.End, err = strconv.Atoi(last); err != nil {
			return PortSpec{}, errors.Wrapf(err, "invalid port range %q", s)
		}
		if spec.End < spec.Start {
			return PortSpec{}, errors.Errorf("invalid port range %q", s)
		}
	}
	if spec.Start < 0 || spec.End > 65535 {
		return PortSpec{}, errors.Errorf("port out of range in %q", s)
	}
	return spec, nil
}

// VolumeInstruction represents VOLUME
type VolumeInstruction struct {
	BaseInstruction
	Code Code
}

func (*VolumeInstruction) Kind() Kind                   { return KindVolume }
func (i *VolumeInstruction) TextRange() lexer.TextRange { return instructionRange(i.Keyword, i.Children()) }
func (i *VolumeInstruction) Children() []Node           { return []Node{i.Keyword, i.Code} }
func (i *VolumeInstruction) Paths() []*Argument         { return i.Code.Arguments() }

// WorkdirInstruction represents WORKDIR
type WorkdirInstruction struct {
	BaseInstruction
	Paths []*Argument
}

func (*WorkdirInstruction) Kind() Kind                   { return KindWorkdir }
func (i *WorkdirInstruction) TextRange() lexer.TextRange { return instructionRange(i.Keyword, i.Children()) }
func (i *WorkdirInstruction) Children() []Node           { return appendArgs([]Node{i.Keyword}, i.Paths) }

// UserInstruction represents USER user[:group]
type UserInstruction struct {
	BaseInstruction
	Arguments []*Argument
}

func (*UserInstruction) Kind() Kind                   { return KindUser }
func (i *UserInstruction) TextRange() lexer.TextRange { return instructionRange(i.Keyword, i.Children()) }
func (i *UserInstruction) Children() []Node           { return appendArgs([]Node{i.Keyword}, i.Arguments) }

// User returns the user part of the first argument
func (i *UserInstruction) User() string {
	user, _ := i.split()
	return user
}

// Group returns the group part of the first argument or ""
func (i *UserInstruction) Group() string {
	_, group := i.split()
	return group
}

func (i *UserInstruction) split() (string, string) {
	if len(i.Arguments) == 0 {
		return "", ""
	}
	user, group, _ := strings.Cut(i.Arguments[0].Value(), ":")
	return user, group
}

// IsRoot returns true when the user is root or uid 0
func (i *UserInstruction) IsRoot() bool {
	user := i.User()
	return user == "root" || user == "0"
}

// MaintainerInstruction represents the deprecated MAINTAINER
type MaintainerInstruction struct {
	BaseInstruction
	Authors []*Argument
}

func (*MaintainerInstruction) Kind() Kind { return KindMaintainer }

func (i *MaintainerInstruction) TextRange() lexer.TextRange {
	return instructionRange(i.Keyword, i.Children())
}

func (i *MaintainerInstruction) Children() []Node { return appendArgs([]Node{i.Keyword}, i.Authors) }

// Name returns the authors joined by spaces
func (i *MaintainerInstruction) Name() string {
	parts := make([]string, len(i.Authors))
	for n, a := range i.Authors {
		parts[n] = a.Value()
	}
	return strings.Join(parts, " ")
}

// StopsignalInstruction represents STOPSIGNAL
type StopsignalInstruction struct {
	BaseInstruction
	Signals []*Argument
}

func (*StopsignalInstruction) Kind() Kind { return KindStopsignal }

func (i *StopsignalInstruction) TextRange() lexer.TextRange {
	return instructionRange(i.Keyword, i.Children())
}

func (i *StopsignalInstruction) Children() []Node { return appendArgs([]Node{i.Keyword}, i.Signals) }

// ShellInstruction represents SHELL, which only accepts the exec form
type ShellInstruction struct {
	BaseInstruction
	Code *ExecForm
}

func (*ShellInstruction) Kind() Kind                   { return KindShell }
func (i *ShellInstruction) TextRange() lexer.TextRange { return instructionRange(i.Keyword, i.Children()) }
func (i *ShellInstruction) Children() []Node           { return []Node{i.Keyword, i.Code} }
func (i *ShellInstruction) Arguments() []*Argument     { return i.Code.Arguments() }

// HealthcheckInstruction represents HEALTHCHECK NONE or
// HEALTHCHECK [flags] CMD ...
type HealthcheckInstruction struct {
	BaseInstruction
	Flags []*Flag
	None  *Token          // set for HEALTHCHECK NONE
	Cmd   *CmdInstruction // set otherwise
}

func (*HealthcheckInstruction) Kind() Kind { return KindHealthcheck }

func (i *HealthcheckInstruction) TextRange() lexer.TextRange {
	return instructionRange(i.Keyword, i.Children())
}

func (i *HealthcheckInstruction) Children() []Node {
	nodes := appendFlags([]Node{i.Keyword}, i.Flags)
	if i.None != nil {
		return append(nodes, i.None)
	}
	return append(nodes, i.Cmd)
}

// IsNone returns true for HEALTHCHECK NONE
func (i *HealthcheckInstruction) IsNone() bool { return i.None != nil }

// OnbuildInstruction represents ONBUILD wrapping one instruction
type OnbuildInstruction struct {
	BaseInstruction
	Instruction Instruction
}

func (*OnbuildInstruction) Kind() Kind                   { return KindOnbuild }
func (i *OnbuildInstruction) TextRange() lexer.TextRange { return instructionRange(i.Keyword, i.Children()) }
func (i *OnbuildInstruction) Children() []Node           { return []Node{i.Keyword, i.Instruction} }
