// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OneBot Contributors

package module

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/gobwas/glob"
	"github.com/samber/oops"
)

// Entry is a discoverable module package.
type Entry struct {
	Manifest *Manifest
	// Dir is the module directory, empty for compiled modules.
	Dir string
}

// Name returns the module name declared by the manifest.
func (e Entry) Name() string {
	if e.Manifest == nil {
		return ""
	}
	return e.Manifest.Name
}

// Source lists module packages and opens their entry points.
//
// Entries reads manifests only; it never runs module code.
type Source interface {
	Entries(ctx context.Context) ([]Entry, error)
	Open(ctx context.Context, name string) (Factory, error)
}

// Runtime turns a manifest found on disk into a factory.
type Runtime func(m *Manifest, dir string) (Factory, error)

// DirSource discovers modules in subdirectories of a directory. Each
// subdirectory holding a module.yaml is one module.
type DirSource struct {
	dir      string
	runtimes map[Type]Runtime
	logger   *slog.Logger
}

// DirOption configures a DirSource.
type DirOption func(*DirSource)

// WithRuntime sets the runtime used for manifests of type t.
func WithRuntime(t Type, r Runtime) DirOption {
	return func(s *DirSource) {
		s.runtimes[t] = r
	}
}

// WithDirLogger sets the logger used for skipped entries.
func WithDirLogger(l *slog.Logger) DirOption {
	return func(s *DirSource) {
		s.logger = l
	}
}

// NewDirSource creates a source rooted at dir. Manifests of type builtin
// enable the compiled module of the same name.
func NewDirSource(dir string, opts ...DirOption) *DirSource {
	s := &DirSource{
		dir:      dir,
		runtimes: map[Type]Runtime{TypeBuiltin: builtinRuntime},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func builtinRuntime(m *Manifest, _ string) (Factory, error) {
	b, ok := lookupBuiltin(m.Name)
	if !ok {
		return nil, oops.In("module").
			Code(CodeModuleNotFound).
			With("module", m.Name).
			Hint("builtin manifests must name a module compiled into the binary").
			Errorf("no builtin module named %q", m.Name)
	}
	return b.factory, nil
}

// Entries finds all valid modules in the directory. Invalid entries are
// logged and skipped. A missing directory yields no entries.
func (s *DirSource) Entries(_ context.Context) ([]Entry, error) {
	dirents, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, oops.In("module").With("dir", s.dir).Wrapf(err, "read modules directory")
	}

	var entries []Entry
	for _, d := range dirents {
		if !d.IsDir() {
			continue
		}

		moduleDir := filepath.Join(s.dir, d.Name())
		data, err := os.ReadFile(filepath.Join(moduleDir, ManifestFile)) //nolint:gosec // path built from ReadDir entries
		if err != nil {
			s.logger.Warn("skipping module without manifest", "dir", d.Name(), "error", err)
			continue
		}

		m, err := ParseManifest(data)
		if err != nil {
			s.logger.Warn("skipping module with invalid manifest", "dir", d.Name(), "error", err)
			continue
		}

		entries = append(entries, Entry{Manifest: m, Dir: moduleDir})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	return entries, nil
}

// Open resolves the named module through the runtime for its type.
func (s *DirSource) Open(ctx context.Context, name string) (Factory, error) {
	entries, err := s.Entries(ctx)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.Name() != name {
			continue
		}
		rt, ok := s.runtimes[e.Manifest.Type]
		if !ok {
			return nil, oops.In("module").
				Code(CodeInstantiationFailed).
				With("module", name).
				With("type", e.Manifest.Type).
				Errorf("no runtime for module type %q", e.Manifest.Type)
		}
		return rt(e.Manifest, e.Dir)
	}
	return nil, ErrModuleNotFound(name)
}

// Union chains sources. When several sources provide the same name the
// first one wins.
func Union(sources ...Source) Source {
	return union(sources)
}

type union []Source

func (u union) Entries(ctx context.Context) ([]Entry, error) {
	seen := make(map[string]bool)
	var out []Entry
	for _, src := range u {
		entries, err := src.Entries(ctx)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if seen[e.Name()] {
				continue
			}
			seen[e.Name()] = true
			out = append(out, e)
		}
	}
	return out, nil
}

func (u union) Open(ctx context.Context, name string) (Factory, error) {
	for _, src := range u {
		entries, err := src.Entries(ctx)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.Name() == name {
				return src.Open(ctx, name)
			}
		}
	}
	return nil, ErrModuleNotFound(name)
}

// Exclude hides modules whose names match any of the glob patterns.
func Exclude(src Source, patterns ...string) (Source, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, oops.In("module").With("pattern", p).Wrapf(err, "compile exclude pattern")
		}
		globs = append(globs, g)
	}
	return &excluded{src: src, globs: globs}, nil
}

type excluded struct {
	src   Source
	globs []glob.Glob
}

func (x *excluded) hidden(name string) bool {
	for _, g := range x.globs {
		if g.Match(name) {
			return true
		}
	}
	return false
}

func (x *excluded) Entries(ctx context.Context) ([]Entry, error) {
	entries, err := x.src.Entries(ctx)
	if err != nil {
		return nil, err
	}
	out := entries[:0:0]
	for _, e := range entries {
		if !x.hidden(e.Name()) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (x *excluded) Open(ctx context.Context, name string) (Factory, error) {
	if x.hidden(name) {
		return nil, ErrModuleNotFound(name)
	}
	return x.src.Open(ctx, name)
}
