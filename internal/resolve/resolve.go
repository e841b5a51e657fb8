// Package resolve computes the effective value of arguments from variable
// bindings.
package resolve

import (
	"strings"

	"github.com/HueCodes/keelson/internal/parser"
)

// Lookup returns the value bound to a variable name
type Lookup interface {
	Lookup(name string) (string, bool)
}

// Map is a Lookup backed by a map
type Map map[string]string

func (m Map) Lookup(name string) (string, bool) {
	v, ok := m[name]
	return v, ok
}

// Func adapts a function to a Lookup
type Func func(name string) (string, bool)

func (f Func) Lookup(name string) (string, bool) {
	return f(name)
}

// Chain consults each Lookup in order and returns the first binding
type Chain []Lookup

func (c Chain) Lookup(name string) (string, bool) {
	for _, l := range c {
		if l == nil {
			continue
		}
		if v, ok := l.Lookup(name); ok {
			return v, true
		}
	}
	return "", false
}

// Result is the outcome of resolving an argument. An unresolved result has
// no value and lists the variables that had no binding.
type Result struct {
	Value    string
	Resolved bool
	Missing  []string
}

// Unresolved reports whether a referenced variable had no binding
func (r Result) Unresolved() bool { return !r.Resolved }

func (r Result) String() string {
	if !r.Resolved {
		return "<unresolved: " + strings.Join(r.Missing, ", ") + ">"
	}
	return r.Value
}

func resolved(v string) Result { return Result{Value: v, Resolved: true} }

func unresolved(name string) Result { return Result{Missing: []string{name}} }

// Argument resolves every fragment of arg and concatenates the values. If
// any fragment is unresolved the whole argument is unresolved.
func Argument(arg *parser.Argument, lookup Lookup) Result {
	if arg == nil {
		return resolved("")
	}
	return join(arg.Fragments, lookup)
}

// Arguments resolves each argument
func Arguments(args []*parser.Argument, lookup Lookup) []Result {
	out := make([]Result, len(args))
	for i, a := range args {
		out[i] = Argument(a, lookup)
	}
	return out
}

// Expression resolves a single fragment
func Expression(e parser.Expression, lookup Lookup) Result {
	if lookup == nil {
		lookup = Map(nil)
	}
	switch e := e.(type) {
	case *parser.Literal:
		return resolved(e.Value())
	case *parser.ExpandableStringCharacters:
		return resolved(e.Value())
	case *parser.ExpandableStringLiteral:
		return join(e.Fragments, lookup)
	case *parser.RegularVariable:
		if v, ok := lookup.Lookup(e.Identifier()); ok {
			return resolved(v)
		}
		return unresolved(e.Identifier())
	case *parser.EncapsulatedVariable:
		return encapsulated(e, lookup)
	}
	return resolved(e.Text())
}

func encapsulated(e *parser.EncapsulatedVariable, lookup Lookup) Result {
	v, ok := lookup.Lookup(e.Identifier())
	set := ok && v != ""
	switch e.ModifierSeparator() {
	case ":-":
		if set {
			return resolved(v)
		}
		return Argument(e.Modifier, lookup)
	case ":+":
		if set {
			return Argument(e.Modifier, lookup)
		}
		return resolved("")
	}
	if !ok {
		return unresolved(e.Identifier())
	}
	return resolved(v)
}

func join(frags []parser.Expression, lookup Lookup) Result {
	var b strings.Builder
	var missing []string
	for _, f := range frags {
		r := Expression(f, lookup)
		if !r.Resolved {
			missing = append(missing, r.Missing...)
			continue
		}
		b.WriteString(r.Value)
	}
	if missing != nil {
		return Result{Missing: missing}
	}
	return resolved(b.String())
}
