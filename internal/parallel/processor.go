// Package parallel runs a function over many files with a bounded number of
// concurrent workers.
package parallel

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"
)

// FileResult holds the result of processing a single file
type FileResult[T any] struct {
	Filename string
	Result   T
	Error    error
}

// ProcessFunc is the function type for processing a single file
type ProcessFunc[T any] func(ctx context.Context, filename string) (T, error)

// Processor handles parallel file processing
type Processor struct {
	workers int
}

// Option configures a Processor
type Option func(*Processor)

// New creates a new Processor with the given options
func New(opts ...Option) *Processor {
	p := &Processor{
		workers: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// WithWorkers sets the number of workers
func WithWorkers(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.workers = n
		}
	}
}

// Workers returns the configured worker limit
func (p *Processor) Workers() int { return p.workers }

// Process runs fn for every file and returns the results in input order. A
// failing file does not stop the others. Files not started before ctx is
// cancelled get ctx.Err() as their error.
func Process[T any](ctx context.Context, p *Processor, files []string, fn ProcessFunc[T]) []FileResult[T] {
	if len(files) == 0 {
		return nil
	}

	results := make([]FileResult[T], len(files))

	var g errgroup.Group
	g.SetLimit(min(p.workers, len(files)))

	for i, f := range files {
		g.Go(func() error {
			results[i].Filename = f
			if err := ctx.Err(); err != nil {
				results[i].Error = err
				return nil
			}
			results[i].Result, results[i].Error = fn(ctx, f)
			return nil
		})
	}
	// Workers never return errors; failures live in the results
	_ = g.Wait()

	return results
}

// AggregateError collects multiple errors from parallel processing
type AggregateError struct {
	Errors []error
}

// Error implements the error interface
func (e *AggregateError) Error() string {
	switch len(e.Errors) {
	case 0:
		return "no errors"
	case 1:
		return e.Errors[0].Error()
	}
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%d errors: %s", len(e.Errors), strings.Join(msgs, "; "))
}

// Unwrap returns the collected errors for errors.Is and errors.As
func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

// HasErrors returns true if there are any errors
func (e *AggregateError) HasErrors() bool {
	return len(e.Errors) > 0
}

// ErrOrNil returns e when it holds errors and nil otherwise
func (e *AggregateError) ErrOrNil() error {
	if !e.HasErrors() {
		return nil
	}
	return e
}

// CollectErrors extracts errors from file results
func CollectErrors[T any](results []FileResult[T]) *AggregateError {
	var errs []error
	for _, r := range results {
		if r.Error != nil {
			errs = append(errs, r.Error)
		}
	}
	return &AggregateError{Errors: errs}
}
