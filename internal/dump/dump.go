// Package dump renders a syntax tree as an indented outline, JSON or YAML.
package dump

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/HueCodes/keelson/internal/parser"
)

// Format selects the dump encoding
type Format string

const (
	FormatTree Format = "tree"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Options controls what a dump includes
type Options struct {
	// Comments includes the comment trivia attached to tokens
	Comments bool
}

// Node is the serializable form of a syntax tree node
type Node struct {
	Kind       string   `json:"kind" yaml:"kind"`
	Range      string   `json:"range" yaml:"range"`
	Text       string   `json:"text,omitempty" yaml:"text,omitempty"`
	Comments   []string `json:"comments,omitempty" yaml:"comments,omitempty"`
	Directives []string `json:"directives,omitempty" yaml:"directives,omitempty"`
	Children   []*Node  `json:"children,omitempty" yaml:"children,omitempty"`
}

// Build converts a syntax tree into its serializable form
func Build(n parser.Node, opts Options) *Node {
	out := &Node{
		Kind:  n.Kind().String(),
		Range: n.TextRange().String(),
	}
	switch n := n.(type) {
	case *parser.Token:
		out.Text = n.Text
		if opts.Comments {
			for _, c := range n.Comments {
				out.Comments = append(out.Comments, c.Text)
			}
		}
	case *parser.File:
		for _, d := range n.Directives {
			out.Directives = append(out.Directives, d.Name+"="+d.Value)
		}
	}
	for _, c := range n.Children() {
		out.Children = append(out.Children, Build(c, opts))
	}
	return out
}

// Write dumps root to w in the given format
func Write(w io.Writer, format Format, root parser.Node, opts Options) error {
	tree := Build(root, opts)
	switch format {
	case FormatTree:
		return writeTree(w, tree)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(tree), "encoding JSON")
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(tree); err != nil {
			return errors.Wrap(err, "encoding YAML")
		}
		return errors.Wrap(enc.Close(), "encoding YAML")
	}
	return errors.Errorf("unknown dump format %q", format)
}

func writeTree(w io.Writer, root *Node) error {
	var b strings.Builder
	var visit func(n *Node, depth int)
	visit = func(n *Node, depth int) {
		indent := strings.Repeat("  ", depth)
		for _, c := range n.Comments {
			fmt.Fprintf(&b, "%s%s\n", indent, c)
		}
		fmt.Fprintf(&b, "%s%s %s", indent, n.Kind, n.Range)
		if n.Kind == parser.KindToken.String() {
			fmt.Fprintf(&b, " %q", n.Text)
		}
		for _, d := range n.Directives {
			fmt.Fprintf(&b, " [%s]", d)
		}
		b.WriteByte('\n')
		for _, c := range n.Children {
			visit(c, depth+1)
		}
	}
	visit(root, 0)
	_, err := io.WriteString(w, b.String())
	return errors.Wrap(err, "writing tree")
}
