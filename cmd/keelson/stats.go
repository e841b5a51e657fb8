package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/HueCodes/keelson/internal/parser"
	"github.com/HueCodes/keelson/internal/visitor"
)

func statsCmd(a *app) *cobra.Command {
	var instructionsOnly bool

	cmd := &cobra.Command{
		Use:   "stats [file]",
		Short: "Count syntax tree nodes by kind",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filename := fileArg(args)
			file, source, err := a.parseFile(cmd, filename)
			if err != nil {
				return err
			}

			var kinds []parser.Kind
			if instructionsOnly {
				for _, k := range parser.Kinds() {
					if k.IsInstruction() {
						kinds = append(kinds, k)
					}
				}
			}

			r := visitor.NewRegistry()
			stats := visitor.NewStats(r, kinds...)
			r.Walk(file, visitor.NewContext(filename, source))

			counts := stats.Counts()
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, k := range parser.Kinds() {
				if n := counts[k]; n > 0 {
					fmt.Fprintf(tw, "%s\t%d\n", k, n)
				}
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&instructionsOnly, "instructions", false, "Only count instructions")

	return cmd
}
