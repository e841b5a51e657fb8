package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HueCodes/keelson/internal/parser"
)

// parseWord returns the first WORKDIR argument of a one-line stage
func parseWord(t *testing.T, word string) *parser.Argument {
	t.Helper()
	f, err := parser.Parse("FROM scratch\nWORKDIR " + word)
	require.NoError(t, err)
	workdir := f.Body.Images[0].Instructions[0].(*parser.WorkdirInstruction)
	require.Len(t, workdir.Paths, 1)
	return workdir.Paths[0]
}

func TestArgumentModifiers(t *testing.T) {
	tests := []struct {
		name     string
		word     string
		bindings Map
		want     string
	}{
		{"default when unbound", "${foo:-bar}", Map{}, "bar"},
		{"default when empty", "${foo:-bar}", Map{"foo": ""}, "bar"},
		{"value when set", "${foo:-bar}", Map{"foo": "x"}, "x"},
		{"alternate when set", "${foo:+bar}", Map{"foo": "x"}, "bar"},
		{"alternate when unbound", "${foo:+bar}", Map{}, ""},
		{"alternate when empty", "${foo:+bar}", Map{"foo": ""}, ""},
		{"nested default", "${a:-${b:-deep}}", Map{}, "deep"},
		{"plain braces", "${foo}", Map{"foo": "v"}, "v"},
		{"empty binding", "$foo", Map{"foo": ""}, ""},
		{"concatenation", `pre$foo"-${bar}"'$lit'`, Map{"foo": "1", "bar": "2"}, "pre1-2$lit"},
		{"pattern kept literal", "${foo%%x}", Map{"foo": "v"}, "${foo%%x}"},
		{"escaped dollar", `\$foo`, Map{"foo": "v"}, "$foo"},
		{"quoted continuation", "\"a \\\n  $foo\"", Map{"foo": "v"}, "a   v"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Argument(parseWord(t, tt.word), tt.bindings)
			require.True(t, r.Resolved, "expected %q to resolve, missing %v", tt.word, r.Missing)
			assert.Equal(t, tt.want, r.Value)
		})
	}
}

func TestArgumentUnresolved(t *testing.T) {
	tests := []struct {
		name    string
		word    string
		missing []string
	}{
		{"regular", "$dest", []string{"dest"}},
		{"braces", "/app/${dir}/bin", []string{"dir"}},
		{"inside quotes", `"$a and $b"`, []string{"a", "b"}},
		{"unbound default variable", "${x:-$y}", []string{"y"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Argument(parseWord(t, tt.word), Map{})
			assert.True(t, r.Unresolved())
			assert.Empty(t, r.Value)
			assert.Equal(t, tt.missing, r.Missing)
		})
	}
}

func TestAddDestinationUnresolved(t *testing.T) {
	f, err := parser.Parse("FROM scratch\nADD src $dest")
	require.NoError(t, err)
	add := f.Body.Images[0].Instructions[0].(*parser.AddInstruction)

	r := Argument(add.Destination(), Map{"src": "ignored"})
	assert.True(t, r.Unresolved())
	assert.Equal(t, "<unresolved: dest>", r.String())

	srcs := Arguments(add.Sources(), nil)
	require.Len(t, srcs, 1)
	assert.Equal(t, "src", srcs[0].Value)
}

func TestArgumentIsPure(t *testing.T) {
	arg := parseWord(t, "${a:-x}$b")
	first := Map{"b": "1"}
	second := Map{"a": "y", "b": "2"}

	assert.Equal(t, Argument(arg, first), Argument(arg, first))
	assert.Equal(t, "x1", Argument(arg, first).Value)
	assert.Equal(t, "y2", Argument(arg, second).Value)
	assert.Equal(t, "x1", Argument(arg, first).Value)
}

func TestLookups(t *testing.T) {
	calls := 0
	fn := Func(func(name string) (string, bool) {
		calls++
		if name == "dyn" {
			return "d", true
		}
		return "", false
	})
	chain := Chain{Map{"a": "1"}, nil, fn, Map{"a": "shadowed", "b": "2"}}

	v, ok := chain.Lookup("a")
	assert.True(t, ok)
	assert.Equal(t, "1", v)

	v, ok = chain.Lookup("dyn")
	assert.True(t, ok)
	assert.Equal(t, "d", v)

	v, ok = chain.Lookup("b")
	assert.True(t, ok)
	assert.Equal(t, "2", v)

	_, ok = chain.Lookup("none")
	assert.False(t, ok)
	assert.Equal(t, 3, calls)
}

func TestScope(t *testing.T) {
	input := `ARG BASE=alpine
ARG TAG
FROM ${BASE}:${TAG:-latest}
ARG BASE
ARG LEVEL=info
ENV HOME=/srv/${BASE} MODE=$LEVEL
ENV BROKEN=$nothing
WORKDIR $HOME
FROM scratch
WORKDIR ${HOME:-none}
`
	f, err := parser.Parse(input)
	require.NoError(t, err)

	scope := NewScope(map[string]string{"LEVEL": "debug"})
	for _, arg := range f.Body.GlobalArgs {
		scope.Apply(arg)
	}
	from := f.Body.Images[0].From
	assert.Equal(t, "alpine:latest", Argument(from.Image, scope).Value)

	var workdirs []string
	for _, img := range f.Body.Images {
		scope.Apply(img.From)
		for _, inst := range img.Instructions {
			if w, ok := inst.(*parser.WorkdirInstruction); ok {
				workdirs = append(workdirs, Argument(w.Paths[0], scope).String())
			}
			scope.Apply(inst)
		}
	}
	assert.Equal(t, []string{"/srv/alpine", "none"}, workdirs)

	_, ok := scope.Lookup("BROKEN")
	assert.False(t, ok)
}
