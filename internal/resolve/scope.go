package resolve

import (
	"github.com/HueCodes/keelson/internal/parser"
)

// Scope tracks the bindings visible while a file is processed in order.
// Global ARGs are visible to FROM lines. Inside an image only ARGs declared
// in the image and ENV values are visible; an ARG without a default inherits
// the global value of the same name.
type Scope struct {
	buildArgs Map
	globals   Map
	vars      Map
	inImage   bool
}

// NewScope creates a scope with build arguments that override ARG defaults
func NewScope(buildArgs map[string]string) *Scope {
	return &Scope{
		buildArgs: Map(buildArgs),
		globals:   Map{},
		vars:      Map{},
	}
}

// Lookup implements Lookup for the current position
func (s *Scope) Lookup(name string) (string, bool) {
	if s.inImage {
		return s.vars.Lookup(name)
	}
	return s.globals.Lookup(name)
}

// EnterImage starts a new image: bindings of the previous image are dropped
func (s *Scope) EnterImage() {
	s.inImage = true
	s.vars = Map{}
}

// Apply records the bindings declared by an ARG or ENV instruction. Other
// instructions are ignored. FROM starts a new image.
func (s *Scope) Apply(inst parser.Instruction) {
	switch inst := inst.(type) {
	case *parser.FromInstruction:
		s.EnterImage()
	case *parser.ArgInstruction:
		for _, kv := range inst.Pairs {
			s.declareArg(kv)
		}
	case *parser.EnvInstruction:
		for _, kv := range inst.Pairs {
			s.set(kv.Name(), Argument(kv.Value, s))
		}
	}
}

func (s *Scope) declareArg(kv *parser.KeyValuePair) {
	name := kv.Name()
	if v, ok := s.buildArgs[name]; ok {
		s.set(name, resolved(v))
		return
	}
	if kv.Value != nil {
		s.set(name, Argument(kv.Value, s))
		return
	}
	if s.inImage {
		if v, ok := s.globals[name]; ok {
			s.vars[name] = v
		}
	}
}

func (s *Scope) set(name string, r Result) {
	target := s.globals
	if s.inImage {
		target = s.vars
	}
	if !r.Resolved {
		delete(target, name)
		return
	}
	target[name] = r.Value
}
