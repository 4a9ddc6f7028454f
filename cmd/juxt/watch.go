package main

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/vito/juxt/pkg/check"
	"github.com/vito/juxt/pkg/ioctx"
	"github.com/vito/juxt/pkg/project"
)

// settle is how long events are coalesced before re-checking.
const settle = 100 * time.Millisecond

func watchCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [flags] [path...]",
		Short: "Re-check source files whenever they change",
		Example: `  # Watch the configured sources
  juxt watch

  # Watch a directory
  juxt watch ./src`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			config, err := loadConfig(cfg)
			if err != nil {
				return err
			}
			paths, err := inputs(config, args)
			if err != nil {
				return err
			}
			return watch(ctx, config, paths)
		},
	}
}

func watch(ctx context.Context, config *project.Config, paths []string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close() //nolint:errcheck

	watched := append([]string{}, paths...)
	if config.Path != "" {
		watched = append(watched, config.Path)
	}
	dirs, err := watchDirs(watched)
	if err != nil {
		return err
	}
	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
	}
	slog.DebugContext(ctx, "watching", "dirs", dirs)

	recheck(ctx, config, paths)

	var timer <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !relevant(ev) {
				continue
			}
			slog.DebugContext(ctx, "changed", "path", ev.Name, "op", ev.Op.String())
			if ev.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := w.Add(ev.Name); err != nil {
						slog.WarnContext(ctx, "failed to watch new directory", "path", ev.Name, "error", err)
					}
				}
			}
			if filepath.Base(ev.Name) == project.FileName && config.Path != "" {
				if reloaded, err := project.Load(config.Path); err != nil {
					slog.WarnContext(ctx, "failed to reload config", "error", err)
				} else {
					config = reloaded
				}
			}
			timer = time.After(settle)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.WarnContext(ctx, "watch error", "error", err)
		case <-timer:
			timer = nil
			recheck(ctx, config, paths)
		}
	}
}

// recheck checks paths and reports the result; failures are reported,
// not returned, so watching continues.
func recheck(ctx context.Context, config *project.Config, paths []string) {
	w := ioctx.Stderr(ctx)
	lipgloss.Fprintln(w, dimStyle.Render(fmt.Sprintf("[%s] checking", time.Now().Format(time.TimeOnly))))

	res, err := check.Files(ctx, check.OptionsFrom(config), paths...)
	if err != nil {
		if ctx.Err() == nil {
			lipgloss.Fprintln(w, errorStyle.Render(err.Error()))
		}
		return
	}
	report(ctx, res) //nolint:errcheck
}

// relevant reports whether ev can change the result of a check.
func relevant(ev fsnotify.Event) bool {
	if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	base := filepath.Base(ev.Name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	if base == project.FileName || filepath.Ext(base) == check.Extension {
		return true
	}
	return filepath.Ext(base) == ""
}

// watchDirs returns every directory that paths cover: each file's parent,
// and each directory with its non-hidden subdirectories.
func watchDirs(paths []string) ([]string, error) {
	seen := map[string]bool{}
	var dirs []string
	add := func(dir string) {
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			add(filepath.Dir(path))
			continue
		}
		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				return nil
			}
			if strings.HasPrefix(d.Name(), ".") && p != path {
				return filepath.SkipDir
			}
			add(p)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return dirs, nil
}
