// Package ioctx carries the command's output streams on a context.
package ioctx

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/x/term"
)

type stdoutKey struct{}
type stderrKey struct{}
type colorKey struct{}

// Stdout returns the writer for regular output, discarding when unset.
func Stdout(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(stdoutKey{}).(io.Writer); ok {
		return w
	}
	return io.Discard
}

func WithStdout(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, stdoutKey{}, w)
}

// Stderr returns the writer for diagnostics, discarding when unset.
func Stderr(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(stderrKey{}).(io.Writer); ok {
		return w
	}
	return io.Discard
}

func WithStderr(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, stderrKey{}, w)
}

// Color reports whether diagnostics should be highlighted. Without an
// explicit setting it is true when stderr is a terminal.
func Color(ctx context.Context) bool {
	if color, ok := ctx.Value(colorKey{}).(bool); ok {
		return color
	}
	f, ok := Stderr(ctx).(*os.File)
	return ok && term.IsTerminal(f.Fd())
}

func WithColor(ctx context.Context, color bool) context.Context {
	return context.WithValue(ctx, colorKey{}, color)
}
