package main

import (
	"github.com/spf13/cobra"

	"github.com/HueCodes/keelson/internal/dump"
)

func parseCmd(a *app) *cobra.Command {
	var (
		format   string
		comments bool
	)

	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Dump the syntax tree of a Dockerfile",
		Long: `Parse a Dockerfile and print its syntax tree with the source range of
every node. Use "-" to read from standard input.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _, err := a.parseFile(cmd, fileArg(args))
			if err != nil {
				return err
			}
			return dump.Write(cmd.OutOrStdout(), dump.Format(format), file, dump.Options{Comments: comments})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "tree", "Output format: tree|json|yaml")
	cmd.Flags().BoolVar(&comments, "comments", false, "Include comments attached to tokens")

	return cmd
}
