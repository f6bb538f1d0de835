package router

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTree builds:
//
//	<tmp>/outside.txt
//	<tmp>/public/index.html
//	<tmp>/public/sub/file.txt
//	<tmp>/public/link-out -> <tmp>/outside.txt
//	<tmp>/public/link-in  -> <tmp>/public/sub
func newTree(t *testing.T) (base, root string) {
	t.Helper()
	base, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	root = filepath.Join(base, "public")

	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(base, "outside.txt"), []byte("secret"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "index.html"), []byte("<h1>hi</h1>"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "file.txt"), []byte("text"), 0644))
	require.NoError(t, os.Symlink(filepath.Join(base, "outside.txt"), filepath.Join(root, "link-out")))
	require.NoError(t, os.Symlink(filepath.Join(root, "sub"), filepath.Join(root, "link-in")))
	return base, root
}

func TestResolve(t *testing.T) {
	_, root := newTree(t)
	res, err := NewResolver(root, root)
	require.NoError(t, err)
	assert.Equal(t, root, res.Root())

	tt := []struct {
		Name string
		Path string
		Want string
	}{
		{"Root", "/", root},
		{"Root without slash", "", root},
		{"File", "/index.html", filepath.Join(root, "index.html")},
		{"Nested file", "/sub/file.txt", filepath.Join(root, "sub", "file.txt")},
		{"Dot segments inside root", "/sub/../index.html", filepath.Join(root, "index.html")},
		{"Symlink staying inside root", "/link-in/file.txt", filepath.Join(root, "sub", "file.txt")},
		{"Trailing slash on directory", "/sub/", filepath.Join(root, "sub")},
	}
	for _, tc := range tt {
		t.Run(tc.Name, func(t *testing.T) {
			got, err := res.Resolve(tc.Path)
			require.NoError(t, err)
			assert.Equal(t, tc.Want, got)
		})
	}
}

func TestResolveRejects(t *testing.T) {
	base, root := newTree(t)
	res, err := NewResolver(root, root)
	require.NoError(t, err)

	for _, p := range []string{
		"/missing.txt",
		"/../outside.txt",
		"/../../../../../../etc/passwd",
		"/sub/../../outside.txt",
		"/link-out",
		"/..",
		"/../public2",
		"/nul\x00byte",
	} {
		t.Run(p, func(t *testing.T) {
			_, err := res.Resolve(p)
			require.ErrorIs(t, err, ErrNotFound)
		})
	}

	// A sibling sharing the root's name as a prefix is still outside.
	require.NoError(t, os.MkdirAll(filepath.Join(base, "public2"), 0755))
	_, err = res.Resolve("/../public2")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestResolveSymlinkThenDotDot(t *testing.T) {
	base, root := newTree(t)

	// <root>/deep -> <base>/x/y ; "deep/.." is <base>/x physically.
	require.NoError(t, os.MkdirAll(filepath.Join(base, "x", "y"), 0755))
	require.NoError(t, os.Symlink(filepath.Join(base, "x", "y"), filepath.Join(root, "deep")))

	res, err := NewResolver(root, root)
	require.NoError(t, err)
	_, err = res.Resolve("/deep/..")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestNewResolverMissingRoot(t *testing.T) {
	dir := t.TempDir()
	_, err := NewResolver(filepath.Join(dir, "nope"), dir)
	require.Error(t, err)
}

func TestNewResolverRootOutsideBase(t *testing.T) {
	base, root := newTree(t)
	_, err := NewResolver(base, root)
	require.Error(t, err)
}

// chdir switches the working directory for the rest of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })
}

func TestResolveFromWorkingDirectory(t *testing.T) {
	base, root := newTree(t)
	chdir(t, base)

	res, err := NewResolver("public", "")
	require.NoError(t, err)
	assert.Equal(t, base, res.Base())
	assert.Equal(t, root, res.Root())

	tt := []struct {
		Name string
		Path string
		Want string
	}{
		{"Root", "/public", root},
		{"Root with slash", "/public/", root},
		{"File", "/public/index.html", filepath.Join(root, "index.html")},
		{"Nested file", "/public/sub/file.txt", filepath.Join(root, "sub", "file.txt")},
		{"Dot segments", "/public/sub/../index.html", filepath.Join(root, "index.html")},
	}
	for _, tc := range tt {
		t.Run(tc.Name, func(t *testing.T) {
			got, err := res.Resolve(tc.Path)
			require.NoError(t, err)
			assert.Equal(t, tc.Want, got)
		})
	}

	for _, p := range []string{
		"/",
		"/index.html",
		"/outside.txt",
		"/public/../outside.txt",
		"/public/link-out",
	} {
		t.Run(p, func(t *testing.T) {
			_, err := res.Resolve(p)
			require.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestRelFromBase(t *testing.T) {
	base, root := newTree(t)
	res, err := NewResolver("public", base)
	require.NoError(t, err)

	rel, err := res.Rel(root)
	require.NoError(t, err)
	assert.Equal(t, "public", rel)

	rel, err = res.Rel(base)
	require.NoError(t, err)
	assert.Equal(t, "", rel)
}

func TestRel(t *testing.T) {
	_, root := newTree(t)
	res, err := NewResolver(root, root)
	require.NoError(t, err)

	rel, err := res.Rel(root)
	require.NoError(t, err)
	assert.Equal(t, "", rel)

	rel, err = res.Rel(filepath.Join(root, "sub", "file.txt"))
	require.NoError(t, err)
	assert.Equal(t, "sub/file.txt", rel)
}
