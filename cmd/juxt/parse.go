package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vito/juxt/pkg/diag"
	"github.com/vito/juxt/pkg/grammar"
	"github.com/vito/juxt/pkg/host"
	"github.com/vito/juxt/pkg/ioctx"
	"github.com/vito/juxt/pkg/syntax"
)

func parseCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "parse [flags] file",
		Short: "Print the syntax tree of a source file",
		Example: `  # Show how tuples and bindings were parsed
  juxt parse src/demo/Box.java`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			config, err := loadConfig(cfg)
			if err != nil {
				return err
			}

			path := args[0]
			source, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			tree, err := grammar.New(host.New(), config.Features()).ParseFile(path, string(source))
			if err != nil {
				return err
			}

			fmt.Fprint(ioctx.Stdout(ctx), syntax.Dump(tree.Root))

			problems := diag.Syntax(tree)
			for _, d := range problems {
				fmt.Fprintln(ioctx.Stderr(ctx), diag.NewSourceError(d, tree.Source, ioctx.Color(ctx)).Format())
			}
			if problems.HasErrors() {
				return fmt.Errorf("%s: %s", path, plural(len(problems), "syntax error"))
			}
			return nil
		},
	}
}
