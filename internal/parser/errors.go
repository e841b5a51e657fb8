package parser

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/HueCodes/keelson/internal/lexer"
)

// ParseError is returned when the input cannot be parsed. Line and Column
// are 1-based.
type ParseError struct {
	Filename string
	Line     int
	Column   int
	Message  string
}

func (e *ParseError) Error() string {
	if e.Filename != "" {
		return fmt.Sprintf("%s:%d:%d: %s", e.Filename, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}

// IsParseError reports whether err is or wraps a *ParseError
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

func (p *parser) errorf(pos lexer.Position, format string, args ...any) *ParseError {
	return &ParseError{
		Filename: p.filename,
		Line:     pos.Line,
		Column:   pos.Column + 1,
		Message:  fmt.Sprintf(format, args...),
	}
}
