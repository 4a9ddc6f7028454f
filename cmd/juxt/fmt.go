package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vito/juxt/pkg/check"
	"github.com/vito/juxt/pkg/diag"
	"github.com/vito/juxt/pkg/grammar"
	"github.com/vito/juxt/pkg/host"
	"github.com/vito/juxt/pkg/ioctx"
	"github.com/vito/juxt/pkg/syntax"
)

func fmtCmd(cfg *Config) *cobra.Command {
	var (
		write bool
		list  bool
	)

	cmd := &cobra.Command{
		Use:   "fmt [flags] [path...]",
		Short: "Format tuples and argument lists",
		Long: `Normalize the spacing of tuples, labeled arguments and argument lists.
Everything else is left as written.

By default, fmt prints the formatted source to stdout.
Use -w to write the result back to the source file.
Use -l to list files that would be changed.`,
		Example: `  # Format a file and print to stdout
  juxt fmt Box.java

  # Format all .java files in a directory in place
  juxt fmt -w ./src

  # List files that need formatting
  juxt fmt -l ./src`,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig(cfg)
			if err != nil {
				return err
			}
			paths, err := inputs(config, args)
			if err != nil {
				return err
			}
			files, err := check.Expand(paths...)
			if err != nil {
				return err
			}
			parser := grammar.New(host.New(), config.Features())
			for _, file := range files {
				if err := formatFile(cmd.Context(), parser, file, write, list); err != nil {
					return fmt.Errorf("formatting %s: %w", file, err)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&write, "write", "w", false, "Write result to source file instead of stdout")
	cmd.Flags().BoolVarP(&list, "list", "l", false, "List files that would be formatted")

	return cmd
}

func formatFile(ctx context.Context, parser *grammar.Parser, path string, write, list bool) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	tree, err := parser.ParseFile(path, string(source))
	if err != nil {
		return err
	}
	if problems := diag.Syntax(tree); problems.HasErrors() {
		return diag.NewSourceError(problems[0], tree.Source, ioctx.Color(ctx))
	}

	formatted := syntax.Format(tree)
	changed := string(source) != formatted
	stdout := ioctx.Stdout(ctx)

	if list && !write {
		if changed {
			fmt.Fprintln(stdout, path)
		}
		return nil
	}

	if write {
		if changed {
			if err := os.WriteFile(path, []byte(formatted), 0644); err != nil {
				return err
			}
			if list {
				fmt.Fprintln(stdout, path)
			}
		}
		return nil
	}

	fmt.Fprint(stdout, formatted)
	return nil
}
