package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"charm.land/lipgloss/v2"
	"github.com/kr/pretty"
	"github.com/spf13/cobra"

	"github.com/vito/juxt/pkg/check"
	"github.com/vito/juxt/pkg/diag"
	"github.com/vito/juxt/pkg/ioctx"
	"github.com/vito/juxt/pkg/namedargs"
)

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	callStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("117"))
)

func checkCmd(cfg *Config) *cobra.Command {
	var resolutions bool

	cmd := &cobra.Command{
		Use:   "check [flags] [path...]",
		Short: "Report problems in source files",
		Long: `Parse and resolve source files, reporting syntax errors, unmatched
named arguments and incompatible argument types.

Directories are searched recursively for .java files. Without paths, the
sources listed in juxt.toml are checked. The exit status is non-zero when
any error is reported.`,
		Example: `  # Check the configured sources
  juxt check

  # Check files and show how each call was resolved
  juxt check -r src/demo/Box.java src/demo/User.java`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			config, err := loadConfig(cfg)
			if err != nil {
				return err
			}
			paths, err := inputs(config, args)
			if err != nil {
				return err
			}
			res, err := check.Files(ctx, check.OptionsFrom(config), paths...)
			if err != nil {
				return err
			}
			if resolutions {
				printResolutions(ioctx.Stdout(ctx), res.Resolutions, cfg.Debug)
			}
			return report(ctx, res)
		},
	}

	cmd.Flags().BoolVarP(&resolutions, "resolutions", "r", false, "Print the bundle instantiation each call resolves to")

	return cmd
}

// report prints the diagnostics of res and a summary, returning an error
// when any of them is an error.
func report(ctx context.Context, res *check.Result) error {
	w := ioctx.Stderr(ctx)
	color := ioctx.Color(ctx)

	var errs, warnings int
	for _, d := range res.Diagnostics {
		switch d.Severity {
		case diag.Error:
			errs++
		case diag.Warning:
			warnings++
		}
		fmt.Fprintln(w, diag.NewSourceError(d, res.Source(d.Filename), color).Format())
	}

	files := plural(len(res.Trees), "file")
	switch {
	case errs > 0:
		summary := errorStyle.Render(plural(errs, "error"))
		if warnings > 0 {
			summary += ", " + warningStyle.Render(plural(warnings, "warning"))
		}
		lipgloss.Fprintln(w, summary+dimStyle.Render(" in "+files))
		return fmt.Errorf("check failed: %s", plural(errs, "error"))
	case warnings > 0:
		lipgloss.Fprintln(w, warningStyle.Render(plural(warnings, "warning"))+dimStyle.Render(" in "+files))
	default:
		lipgloss.Fprintln(w, okStyle.Render("no problems")+dimStyle.Render(" in "+files))
	}
	return nil
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// resolved is the printable form of a resolution.
type resolved struct {
	Location      string
	Call          string
	Bundle        string
	Args          []resolvedArg
	Instantiation string
	Result        string
}

type resolvedArg struct {
	Param string
	Text  string
	Type  string
}

func summarize(r *namedargs.Resolution) resolved {
	pos := r.Call.Tree().Position(r.Call.Range().Start)
	out := resolved{
		Location:      fmt.Sprintf("%s:%d:%d", filepath.ToSlash(r.Call.Tree().Filename), pos.Line, pos.Column),
		Call:          r.Call.Text(),
		Bundle:        r.Bundle.String(),
		Instantiation: r.Instantiation,
	}
	if r.Result != nil {
		out.Result = r.Result.Name()
	}
	for _, arg := range r.Args {
		a := resolvedArg{Text: arg.Text}
		if arg.Param != nil {
			a.Param = arg.Param.Name
		}
		if arg.Type != nil {
			a.Type = arg.Type.Name()
		}
		out.Args = append(out.Args, a)
	}
	return out
}

func printResolutions(w io.Writer, resolutions []*namedargs.Resolution, debug bool) {
	for _, r := range resolutions {
		s := summarize(r)
		if debug {
			fmt.Fprintf(w, "%# v\n", pretty.Formatter(s))
			continue
		}
		lipgloss.Fprintln(w, dimStyle.Render(s.Location+":")+" "+callStyle.Render(s.Call)+" => "+s.Instantiation)
	}
}
