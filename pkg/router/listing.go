package router

import (
	"fmt"
	"html"
	"os"
	"path"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/raphaelreyna/ez-httpd/pkg/message"
)

type listEntry struct {
	name string
	rel  string // slash-separated, relative to the base directory
	key  string // lowercased name
	ext  string // lowercased extension without the dot
}

// ListDirectory renders the entries of dir as a standalone HTML page.
// Subdirectories come first, sorted by name; regular files follow, sorted by
// extension and then by name, both ignoring case. Other entry kinds, including
// symlinks, are left out. Links are the request paths that resolve back to
// each entry.
func (r *Resolver) ListDirectory(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	current, err := r.Rel(dir)
	if err != nil {
		return "", err
	}
	top, err := r.Rel(r.root)
	if err != nil {
		return "", err
	}

	lower := cases.Lower(language.Und)
	var dirs, files []listEntry
	for _, e := range entries {
		name := e.Name()
		le := listEntry{
			name: name,
			rel:  path.Join(current, name),
			key:  lower.String(name),
			ext:  lower.String(extension(name)),
		}
		switch t := e.Type(); {
		case t.IsDir():
			dirs = append(dirs, le)
		case t.IsRegular():
			files = append(files, le)
		}
	}

	slices.SortStableFunc(dirs, func(a, b listEntry) int {
		return strings.Compare(a.key, b.key)
	})
	slices.SortStableFunc(files, func(a, b listEntry) int {
		if c := strings.Compare(a.ext, b.ext); c != 0 {
			return c
		}
		return strings.Compare(a.key, b.key)
	})

	title := html.EscapeString("Directory listing for /" + current)

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n")
	b.WriteString("<html>\n")
	b.WriteString("<head>\n<meta charset=\"UTF-8\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", title)
	b.WriteString("</head>\n")
	b.WriteString("<body>\n")
	fmt.Fprintf(&b, "<h1>%s</h1>\n", title)
	b.WriteString("<hr>\n")
	b.WriteString("<pre>\n")

	if current != top {
		parent := path.Dir(current)
		if parent == "." {
			parent = ""
		}
		fmt.Fprintf(&b, "<a href=\"/%s\">[Parent Directory]</a>\n", message.EscapePath(parent))
	}
	for _, d := range dirs {
		fmt.Fprintf(&b, "<a href=\"/%s\">[DIR] %s/</a>\n", message.EscapePath(d.rel), html.EscapeString(d.name))
	}
	for _, f := range files {
		fmt.Fprintf(&b, "<a href=\"/%s\">%s</a>\n", message.EscapePath(f.rel), html.EscapeString(f.name))
	}

	b.WriteString("</pre>\n")
	b.WriteString("<hr>\n")
	b.WriteString("</body>\n")
	b.WriteString("</html>\n")
	return b.String(), nil
}

// extension returns the text after the last dot of name, or "" when name has
// no dot or its only dot is the leading one.
func extension(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i <= 0 {
		return ""
	}
	return name[i+1:]
}
