// Package project loads juxt.toml project configuration.
package project

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"

	"github.com/vito/juxt/pkg/grammar"
)

// FileName is the name of the project configuration file.
const FileName = "juxt.toml"

// Config represents a juxt.toml project configuration file.
type Config struct {
	// Path is the file the configuration was loaded from, empty for the
	// defaults.
	Path string `toml:"-"`

	Dialect Dialect `toml:"dialect"`
	Check   Check   `toml:"check"`

	// Bundles lists external bundle manifests, relative to the config file.
	Bundles []string `toml:"bundles"`

	// Sources are the default inputs for `juxt check`, relative to the
	// config file.
	Sources []string `toml:"sources"`
}

// Dialect toggles the language extensions.
type Dialect struct {
	Tuples        bool `toml:"tuples"`
	Bindings      bool `toml:"bindings"`
	DefaultParams bool `toml:"default_params"`
}

// Check configures the checker.
type Check struct {
	// Concurrency is the most call sites resolved at once.
	Concurrency int `toml:"concurrency"`

	// TypeCheck reports arguments not assignable to their parameter.
	TypeCheck bool `toml:"type_check"`
}

// Default returns the configuration used without a juxt.toml.
func Default() *Config {
	return &Config{
		Dialect: Dialect{
			Tuples:        true,
			Bindings:      true,
			DefaultParams: true,
		},
		Check: Check{
			Concurrency: runtime.GOMAXPROCS(0),
			TypeCheck:   true,
		},
	}
}

// Load loads a juxt.toml file from the given path. Keys it leaves out keep
// their default.
func Load(path string) (*Config, error) {
	config := Default()
	md, err := toml.DecodeFile(path, config)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	for _, key := range md.Undecoded() {
		slog.Warn("unknown configuration key", "path", path, "key", key.String())
	}
	if config.Check.Concurrency <= 0 {
		config.Check.Concurrency = runtime.GOMAXPROCS(0)
	}
	config.Path = path
	return config, nil
}

// Find searches for a juxt.toml file starting from dir and walking up to
// parent directories, stopping at a .git boundary. Without one it returns
// the defaults.
func Find(dir string) (*Config, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}

		// Stop at .git boundary
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return Default(), nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return Default(), nil
		}
		dir = parent
	}
}

// Features returns the grammar features the dialect enables.
func (c *Config) Features() grammar.Features {
	return grammar.Features{
		Tuples:        c.Dialect.Tuples,
		Bindings:      c.Dialect.Bindings,
		DefaultParams: c.Dialect.DefaultParams,
	}
}

// Dir is the directory relative paths are resolved against.
func (c *Config) Dir() string {
	if c.Path == "" {
		return "."
	}
	return filepath.Dir(c.Path)
}

// BundlePaths returns the manifest paths, resolved against Dir.
func (c *Config) BundlePaths() []string {
	return c.resolve(c.Bundles)
}

// SourcePaths returns the source paths, resolved against Dir.
func (c *Config) SourcePaths() []string {
	return c.resolve(c.Sources)
}

func (c *Config) resolve(paths []string) []string {
	var out []string
	for _, p := range paths {
		if !filepath.IsAbs(p) {
			p = filepath.Join(c.Dir(), p)
		}
		out = append(out, p)
	}
	return out
}
