package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/HueCodes/keelson/internal/config"
	"github.com/HueCodes/keelson/internal/parser"
)

var version = "0.1.0"

// errFailed signals a non-zero exit after the command already reported why
var errFailed = errors.New("failed")

// app carries the state shared by all subcommands
type app struct {
	configPath string
	noColor    bool
	quiet      bool
	verbose    bool

	cfg    *config.Config
	logger *slog.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "keelson",
		Short: "Lossless Dockerfile parser",
		Long: `Keelson parses Dockerfiles into a lossless syntax tree with exact
source positions.

It can dump the tree, check many files for syntax errors in parallel,
resolve ARG and ENV variables in arguments, and count nodes by kind.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.ErrOrStderr())
		},
	}

	rootCmd.AddCommand(
		parseCmd(a),
		checkCmd(a),
		resolveCmd(a),
		statsCmd(a),
		initCmd(a),
	)

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Config file path (default .keelson.yaml)")
	rootCmd.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&a.quiet, "quiet", "q", false, "Only output errors")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Show additional context")

	return rootCmd
}

// setup loads the configuration and installs the logger
func (a *app) setup(logW io.Writer) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level := cfg.Log.Level
	switch {
	case a.verbose:
		level = "debug"
	case a.quiet:
		level = "error"
	}
	a.logger = newLogger(level, cfg.Log.Format, logW)
	slog.SetDefault(a.logger)

	if a.noColor {
		color.NoColor = true
	}
	return nil
}

// useColors reports whether terminal output should be colored
func (a *app) useColors() bool {
	return !a.noColor && !color.NoColor
}

// parserOptions returns the parser options for a file
func (a *app) parserOptions(filename string) []parser.Option {
	return []parser.Option{
		parser.WithFilename(filename),
		parser.WithMaxDepth(a.cfg.MaxDepth),
	}
}

// readSource reads a Dockerfile; "-" reads standard input
func readSource(cmd *cobra.Command, filename string) (string, error) {
	if filename == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", errors.Wrap(err, "failed to read standard input")
		}
		return string(data), nil
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read %s", filename)
	}
	return string(data), nil
}

// parseFile reads and parses a single file
func (a *app) parseFile(cmd *cobra.Command, filename string) (*parser.File, string, error) {
	source, err := readSource(cmd, filename)
	if err != nil {
		return nil, "", err
	}
	file, err := parser.Parse(source, a.parserOptions(filename)...)
	if err != nil {
		return nil, source, err
	}
	a.logger.Debug("parsed file", "file", filename, "images", len(file.Body.Images))
	return file, source, nil
}

// fileArg returns the file argument or the default Dockerfile
func fileArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "Dockerfile"
}
