package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/HueCodes/keelson/internal/cache"
	"github.com/HueCodes/keelson/internal/parallel"
	"github.com/HueCodes/keelson/internal/parser"
	"github.com/HueCodes/keelson/internal/reporter"
)

func checkCmd(a *app) *cobra.Command {
	var (
		output  string
		workers int
	)

	cmd := &cobra.Command{
		Use:   "check [files...]",
		Short: "Check Dockerfiles for syntax errors",
		Long: `Parse one or more Dockerfiles in parallel and report syntax errors.
Exits with status 1 when any file fails to parse.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			files := args
			if len(files) == 0 {
				files = []string{"Dockerfile"}
			}
			if !cmd.Flags().Changed("output") {
				output = a.cfg.Output
			}
			format, err := reporter.ParseFormat(output)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("workers") {
				workers = a.cfg.Workers
			}

			results := a.check(cmd, files, workers)

			rep := reporter.New(format, cmd.OutOrStdout(),
				reporter.WithColors(a.useColors()),
				reporter.WithVerbose(a.verbose),
			)
			if err := rep.Report(results); err != nil {
				return err
			}
			for _, r := range results {
				if r.Failed() {
					return errFailed
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "terminal", "Output format: terminal|json|github")
	cmd.Flags().IntVarP(&workers, "workers", "j", 0, "Files parsed concurrently (default GOMAXPROCS)")

	return cmd
}

// check parses files concurrently through a shared AST cache
func (a *app) check(cmd *cobra.Command, files []string, workers int) []reporter.Result {
	cp := cache.NewCachedParser(
		cache.NewASTCache(
			cache.WithMaxEntries(a.cfg.Cache.Entries),
			cache.WithMaxAge(a.cfg.Cache.TTL),
		),
		parser.WithMaxDepth(a.cfg.MaxDepth),
	)
	proc := parallel.New(parallel.WithWorkers(workers))
	a.logger.Debug("checking files", "files", len(files), "workers", proc.Workers())

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	parsed := parallel.Process(ctx, proc, files, func(ctx context.Context, filename string) (reporter.Result, error) {
		res := reporter.Result{Filename: filename}
		source, err := readSource(cmd, filename)
		if err != nil {
			a.logger.Warn("cannot read file", "file", filename, "error", err)
			res.Err = err
			return res, err
		}
		res.Source = source
		res.File, res.Cached, res.Err = cp.Parse(filename, source)
		a.logger.Debug("parsed file", "file", filename, "cached", res.Cached, "ok", res.Err == nil)
		return res, res.Err
	})

	results := make([]reporter.Result, len(parsed))
	for i, p := range parsed {
		results[i] = p.Result
		if results[i].Filename == "" {
			// Not started before cancellation
			results[i] = reporter.Result{Filename: p.Filename, Err: p.Error}
		}
	}

	stats := cp.Stats()
	a.logger.Debug("cache", "entries", stats.Entries, "hits", stats.Hits, "misses", stats.Misses)
	if errs := parallel.CollectErrors(parsed); errs.HasErrors() {
		a.logger.Info("check finished with failures", "failed", len(errs.Errors), "files", len(files))
	}
	return results
}
