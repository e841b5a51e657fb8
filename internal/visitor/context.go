package visitor

import (
	"strings"

	"github.com/HueCodes/keelson/internal/parser"
)

// Context provides source access and the ancestor chain to handlers
type Context struct {
	// Filename is the name of the Dockerfile being walked
	Filename string

	// Source is the original source code
	Source string

	// SourceLines is the source split by lines
	SourceLines []string

	parents []parser.Node
}

// NewContext creates a new context
func NewContext(filename, source string) *Context {
	return &Context{
		Filename:    filename,
		Source:      source,
		SourceLines: splitLines(source),
	}
}

// GetLine returns the source line at the given line number (1-based)
func (c *Context) GetLine(lineNum int) string {
	if lineNum < 1 || lineNum > len(c.SourceLines) {
		return ""
	}
	return c.SourceLines[lineNum-1]
}

// GetLines returns a range of source lines (1-based, inclusive)
func (c *Context) GetLines(startLine, endLine int) []string {
	if startLine < 1 {
		startLine = 1
	}
	if endLine > len(c.SourceLines) {
		endLine = len(c.SourceLines)
	}
	if startLine > endLine {
		return nil
	}
	return c.SourceLines[startLine-1 : endLine]
}

// Parent returns the parent of the node being visited, or nil at the root
func (c *Context) Parent() parser.Node {
	if len(c.parents) == 0 {
		return nil
	}
	return c.parents[len(c.parents)-1]
}

// Depth returns the number of ancestors of the node being visited
func (c *Context) Depth() int { return len(c.parents) }

// Instruction returns the innermost instruction enclosing the node being
// visited, or nil
func (c *Context) Instruction() parser.Instruction {
	for i := len(c.parents) - 1; i >= 0; i-- {
		if inst, ok := c.parents[i].(parser.Instruction); ok {
			return inst
		}
	}
	return nil
}

// Image returns the image enclosing the node being visited, or nil
func (c *Context) Image() *parser.Image {
	for i := len(c.parents) - 1; i >= 0; i-- {
		if img, ok := c.parents[i].(*parser.Image); ok {
			return img
		}
	}
	return nil
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
