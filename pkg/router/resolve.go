package router

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Resolver maps request paths onto the filesystem. Request paths are taken
// relative to a base directory, normally the working directory, and must
// land inside the document root.
type Resolver struct {
	base string // canonical
	root string // canonical, base or below it
}

// NewResolver canonicalises root and base. An empty base selects the working
// directory, and a relative root is taken relative to base. Both must exist
// and root has to lie within base, otherwise nothing would be reachable.
func NewResolver(root, base string) (*Resolver, error) {
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("working directory: %w", err)
		}
		base = wd
	}
	b, err := canonicalize(base)
	if err != nil {
		return nil, fmt.Errorf("base directory %q: %w", base, err)
	}

	full := root
	if !filepath.IsAbs(full) {
		full = filepath.Join(b, full)
	}
	abs, err := canonicalize(full)
	if err != nil {
		return nil, fmt.Errorf("document root %q: %w", root, err)
	}

	if !within(b, abs) {
		return nil, fmt.Errorf("document root %q is outside %q", abs, b)
	}
	return &Resolver{base: b, root: abs}, nil
}

// Root returns the canonical document root.
func (r *Resolver) Root() string {
	return r.root
}

// Base returns the canonical directory request paths are resolved against.
func (r *Resolver) Base() string {
	return r.base
}

// Resolve maps a decoded request path to a canonical path under the root.
//
// The target has to exist: anything that cannot be canonicalised, and
// anything whose canonical form lies outside the root (through "..", a
// symlink, or simply naming something next to the root), yields ErrNotFound.
// Callers cannot tell these apart.
func (r *Resolver) Resolve(reqPath string) (string, error) {
	rel := strings.TrimPrefix(reqPath, "/")

	// ".." is applied by EvalSymlinks after earlier components have been
	// resolved, so the joined path must not be cleaned lexically first.
	full := r.base + string(filepath.Separator) + filepath.FromSlash(rel)
	p, err := canonicalize(full)
	if err != nil {
		return "", wrap(ErrNotFound, err)
	}
	if !within(r.root, p) {
		return "", wrap(ErrNotFound, fmt.Errorf("%s escapes document root", p))
	}
	return p, nil
}

// Rel returns p relative to the base directory using forward slashes, or ""
// for the base itself. It is the inverse of Resolve for paths under the root.
func (r *Resolver) Rel(p string) (string, error) {
	rel, err := filepath.Rel(r.base, p)
	if err != nil {
		return "", err
	}
	if rel == "." {
		return "", nil
	}
	return filepath.ToSlash(rel), nil
}

// within reports whether p is dir or lies below it.
func within(dir, p string) bool {
	if p == dir {
		return true
	}
	prefix := dir
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(p, prefix)
}

func canonicalize(p string) (string, error) {
	if !filepath.IsAbs(p) {
		abs, err := filepath.Abs(p)
		if err != nil {
			return "", err
		}
		p = abs
	}
	return filepath.EvalSymlinks(p)
}
