package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/channel"
	"github.com/spf13/cobra"

	"github.com/vito/juxt/pkg/ioctx"
	"github.com/vito/juxt/pkg/lsp"
	"github.com/vito/juxt/pkg/project"
)

// Config holds the application configuration
type Config struct {
	Debug      bool
	ConfigFile string
	LSP        bool
	LSPLogFile string
}

func main() {
	var cfg Config

	rootCmd := &cobra.Command{
		Use:   "juxt [flags]",
		Short: "Tuples, named arguments and default parameters for Java sources",
		Long: `juxt checks Java sources written with tuple expressions, labeled
arguments, default parameters and binding expressions.`,
		Example: `  # Check the sources configured in juxt.toml
  juxt check

  # Check a directory
  juxt check ./src

  # Start the language server
  juxt --lsp`,
		Args: cobra.NoArgs,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if !cfg.LSP {
				setupLogging(os.Stderr, cfg.Debug)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.LSP {
				return runLSP(cmd.Context(), cfg)
			}
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&cfg.Debug, "debug", "d", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&cfg.ConfigFile, "config", "c", "", "Path to juxt.toml (found by walking up from the working directory if not specified)")
	rootCmd.Flags().BoolVar(&cfg.LSP, "lsp", false, "Run in Language Server Protocol mode")
	rootCmd.Flags().StringVar(&cfg.LSPLogFile, "lsp-log-file", "", "Path to LSP log file (stderr if not specified)")

	rootCmd.AddCommand(
		parseCmd(&cfg),
		checkCmd(&cfg),
		fmtCmd(&cfg),
		watchCmd(&cfg),
	)

	ctx := context.Background()
	ctx = ioctx.WithStdout(ctx, os.Stdout)
	ctx = ioctx.WithStderr(ctx, os.Stderr)
	if err := fang.Execute(ctx, rootCmd,
		fang.WithVersion("v0.1.0"),
		fang.WithCommit("dev"),
		fang.WithErrorHandler(func(w io.Writer, styles fang.Styles, err error) {
			_, _ = fmt.Fprintln(w, err.Error())
		}),
	); err != nil {
		os.Exit(1)
	}
}

func setupLogging(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// loadConfig reads the --config file, or finds juxt.toml from the working
// directory.
func loadConfig(cfg *Config) (*project.Config, error) {
	if cfg.ConfigFile != "" {
		return project.Load(cfg.ConfigFile)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return project.Find(cwd)
}

// inputs returns the paths to work on: the arguments, or else the
// configured sources.
func inputs(config *project.Config, args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	paths := config.SourcePaths()
	if len(paths) == 0 {
		return nil, fmt.Errorf("no paths given and no sources configured in %s", project.FileName)
	}
	return paths, nil
}

func runLSP(ctx context.Context, cfg Config) error {
	var logDest io.Writer
	if cfg.LSPLogFile != "" {
		logFile, err := os.Create(cfg.LSPLogFile)
		if err != nil {
			return fmt.Errorf("open lsp log: %w", err)
		}
		defer logFile.Close() //nolint:errcheck
		logDest = logFile
	} else {
		logDest = os.Stderr
	}

	logger := setupLogging(logDest, cfg.Debug)
	logger.InfoContext(ctx, "starting LSP server")

	handler := lsp.NewHandler(ctx)
	srv := jrpc2.NewServer(handler, &jrpc2.ServerOptions{
		AllowPush: true,
		Logger:    func(text string) { logger.Debug(text) },
	})

	// Store server reference in handler for callbacks
	handler.SetServer(srv)

	srv.Start(channel.LSP(stdrwc{}, stdrwc{}))

	logger.InfoContext(ctx, "LSP server closed", "error", srv.Wait())
	return nil
}

type stdrwc struct{}

func (stdrwc) Read(p []byte) (int, error) {
	return os.Stdin.Read(p)
}

func (stdrwc) Write(p []byte) (int, error) {
	return os.Stdout.Write(p)
}

func (stdrwc) Close() error {
	if err := os.Stdin.Close(); err != nil {
		return err
	}
	return os.Stdout.Close()
}
