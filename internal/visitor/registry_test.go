package visitor

import (
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/HueCodes/keelson/internal/parser"
)

const input = `ARG VERSION=3.19
FROM alpine:${VERSION} AS base
RUN apk add curl
ONBUILD RUN echo later

FROM base
COPY --from=base /etc/os-release /tmp/
CMD ["sh"]
`

func mustParse(t *testing.T) *parser.File {
	t.Helper()
	f, err := parser.Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return f
}

func TestRegistryOnTyped(t *testing.T) {
	f := mustParse(t)
	r := NewRegistry()

	var runs []string
	On(r, func(ctx *Context, run *parser.RunInstruction) {
		runs = append(runs, run.Code.(*parser.ShellForm).Text())
	})
	var images []string
	On(r, func(ctx *Context, from *parser.FromInstruction) {
		images = append(images, from.Image.Text())
	})

	r.Walk(f, nil)

	if diff := cmp.Diff([]string{"apk add curl", "echo later"}, runs); diff != "" {
		t.Errorf("RUN mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"alpine:${VERSION}", "base"}, images); diff != "" {
		t.Errorf("FROM mismatch (-want +got):\n%s", diff)
	}
	if r.Count() != 2 {
		t.Errorf("expected 2 handlers, got %d", r.Count())
	}
	if diff := cmp.Diff([]parser.Kind{parser.KindFrom, parser.KindRun}, r.Kinds()); diff != "" {
		t.Errorf("kinds mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistryOrderAndContext(t *testing.T) {
	f := mustParse(t)
	r := NewRegistry()

	var order []string
	r.Register(parser.KindCopy, func(ctx *Context, n parser.Node) {
		order = append(order, "first")
		if ctx.Image() == nil || ctx.Image().From.Image.Text() != "base" {
			t.Error("expected COPY inside the second image")
		}
		if _, ok := ctx.Parent().(*parser.Image); !ok {
			t.Errorf("expected Image parent, got %T", ctx.Parent())
		}
		line := ctx.GetLine(n.TextRange().Start.Line)
		if line != "COPY --from=base /etc/os-release /tmp/" {
			t.Errorf("unexpected source line %q", line)
		}
	})
	r.Register(parser.KindCopy, func(*Context, parser.Node) {
		order = append(order, "second")
	})
	r.Register(parser.KindFlag, func(ctx *Context, n parser.Node) {
		if _, ok := ctx.Instruction().(*parser.CopyInstruction); !ok {
			t.Errorf("expected flag inside COPY, got %T", ctx.Instruction())
		}
	})
	r.Register(parser.KindRun, func(ctx *Context, n parser.Node) {
		if n.TextRange().Start.Line == 4 {
			if _, ok := ctx.Instruction().(*parser.OnbuildInstruction); !ok {
				t.Error("expected wrapped RUN to report its ONBUILD")
			}
		}
	})

	r.Walk(f, NewContext("Dockerfile", input))

	if diff := cmp.Diff([]string{"first", "second"}, order); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestStats(t *testing.T) {
	f := mustParse(t)
	r := NewRegistry()
	stats := NewStats(r)

	r.Walk(f, nil)

	tests := []struct {
		kind parser.Kind
		want int
	}{
		{parser.KindFile, 1},
		{parser.KindImage, 2},
		{parser.KindFrom, 2},
		{parser.KindRun, 2},
		{parser.KindArg, 1},
		{parser.KindOnbuild, 1},
		{parser.KindExecForm, 1},
		{parser.KindEncapsulatedVariable, 1},
		{parser.KindHereDocument, 0},
	}
	for _, tt := range tests {
		if got := stats.Count(tt.kind); got != tt.want {
			t.Errorf("%s: expected %d, got %d", tt.kind, tt.want, got)
		}
	}
	if _, ok := stats.Counts()[parser.KindHereDocument]; ok {
		t.Error("expected zero counts to be absent")
	}
}

func TestRegistryConcurrentWalks(t *testing.T) {
	f := mustParse(t)
	r := NewRegistry()
	stats := NewStats(r, parser.KindToken)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Walk(f, nil)
		}()
		r.Register(parser.KindCmd, func(*Context, parser.Node) {})
	}
	wg.Wait()

	single := NewRegistry()
	one := NewStats(single, parser.KindToken)
	single.Walk(f, nil)
	if stats.Count(parser.KindToken) != 8*one.Count(parser.KindToken) {
		t.Errorf("expected %d tokens, got %d", 8*one.Count(parser.KindToken), stats.Count(parser.KindToken))
	}
}

func TestContextLines(t *testing.T) {
	ctx := NewContext("x", "a\r\nb\nc\n")
	if diff := cmp.Diff([]string{"b", "c"}, ctx.GetLines(2, 10)); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}
	if ctx.GetLine(0) != "" || ctx.GetLine(4) != "" {
		t.Error("expected empty lines out of range")
	}
	if ctx.Parent() != nil || ctx.Depth() != 0 {
		t.Error("expected no ancestors outside a walk")
	}
}
