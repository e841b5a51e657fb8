package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/HueCodes/keelson/internal/config"
	"github.com/HueCodes/keelson/internal/parser"
	"github.com/HueCodes/keelson/internal/resolve"
)

func resolveCmd(a *app) *cobra.Command {
	var buildArgs []string

	cmd := &cobra.Command{
		Use:   "resolve [file]",
		Short: "Print instruction arguments with variables resolved",
		Long: `Resolve the arguments of every instruction using build arguments, global
ARG defaults and the ARG and ENV declarations of each image in order.
Arguments that reference an unbound variable are shown as <unresolved: ...>.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _, err := a.parseFile(cmd, fileArg(args))
			if err != nil {
				return err
			}

			bindings, err := a.cfg.BuildArgMap()
			if err != nil {
				return err
			}
			overrides, err := config.ParseBuildArgs(buildArgs)
			if err != nil {
				return err
			}
			for k, v := range overrides {
				bindings[k] = v
			}

			writeResolved(cmd.OutOrStdout(), file, resolve.NewScope(bindings))
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&buildArgs, "build-arg", nil, "Build argument KEY=VALUE (repeatable)")

	return cmd
}

// writeResolved prints one line per instruction in source order, applying
// each instruction to the scope after printing it
func writeResolved(w io.Writer, file *parser.File, scope *resolve.Scope) {
	for _, arg := range file.Body.GlobalArgs {
		writeInstruction(w, arg, scope)
		scope.Apply(arg)
	}
	for _, img := range file.Body.Images {
		writeInstruction(w, img.From, scope)
		scope.Apply(img.From)
		for _, inst := range img.Instructions {
			writeInstruction(w, inst, scope)
			scope.Apply(inst)
		}
	}
}

func writeInstruction(w io.Writer, inst parser.Instruction, scope resolve.Lookup) {
	kw := inst.KeywordToken()
	fmt.Fprintf(w, "%d\t%s", kw.Range.Start.Line, strings.ToUpper(kw.Text))
	for _, word := range resolvedWords(inst, scope) {
		fmt.Fprintf(w, " %s", word)
	}
	fmt.Fprintln(w)
}

// resolvedWords returns the resolved arguments of an instruction. Key/value
// instructions print NAME=VALUE per pair.
func resolvedWords(inst parser.Instruction, scope resolve.Lookup) []string {
	switch inst := inst.(type) {
	case *parser.EnvInstruction:
		return pairWords(inst.Pairs, scope)
	case *parser.ArgInstruction:
		return pairWords(inst.Pairs, scope)
	case *parser.LabelInstruction:
		return pairWords(inst.Pairs, scope)
	case *parser.OnbuildInstruction:
		return append([]string{strings.ToUpper(inst.Instruction.KeywordToken().Text)},
			resolvedWords(inst.Instruction, scope)...)
	case *parser.HealthcheckInstruction:
		if inst.IsNone() {
			return []string{"NONE"}
		}
		return append([]string{"CMD"}, argWords(inst.Cmd.Arguments(), scope)...)
	}
	return argWords(instructionArguments(inst), scope)
}

// instructionArguments returns the operands of an instruction, excluding
// flags
func instructionArguments(inst parser.Instruction) []*parser.Argument {
	switch inst := inst.(type) {
	case *parser.FromInstruction:
		args := []*parser.Argument{inst.Image}
		if inst.Alias != nil {
			args = append(args, inst.Alias)
		}
		return args
	case *parser.RunInstruction:
		return inst.Arguments()
	case *parser.CmdInstruction:
		return inst.Arguments()
	case *parser.EntrypointInstruction:
		return inst.Arguments()
	case *parser.AddInstruction:
		return inst.Code.Arguments()
	case *parser.CopyInstruction:
		return inst.Arguments()
	case *parser.ExposeInstruction:
		return inst.Ports
	case *parser.VolumeInstruction:
		return inst.Paths()
	case *parser.WorkdirInstruction:
		return inst.Paths
	case *parser.UserInstruction:
		return inst.Arguments
	case *parser.MaintainerInstruction:
		return inst.Authors
	case *parser.StopsignalInstruction:
		return inst.Signals
	case *parser.ShellInstruction:
		return inst.Arguments()
	}
	return nil
}

func argWords(args []*parser.Argument, scope resolve.Lookup) []string {
	words := make([]string, 0, len(args))
	for _, r := range resolve.Arguments(args, scope) {
		words = append(words, r.String())
	}
	return words
}

func pairWords(pairs []*parser.KeyValuePair, scope resolve.Lookup) []string {
	words := make([]string, 0, len(pairs))
	for _, kv := range pairs {
		if kv.Value == nil && kv.Equals == nil {
			words = append(words, kv.Name())
			continue
		}
		words = append(words, kv.Name()+"="+resolve.Argument(kv.Value, scope).String())
	}
	return words
}
