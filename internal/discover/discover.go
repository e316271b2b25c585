// Package discover builds an index of repository files used by the
// path resolver. Ignored and hidden files never become resolution
// candidates.
package discover

import (
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

var skipDirs = map[string]struct{}{
	"__pycache__":   {},
	"node_modules":  {},
	".git":          {},
	".hg":           {},
	".svn":          {},
	"venv":          {},
	".venv":         {},
	"env":           {},
	".env":          {},
	"dist":          {},
	".tox":          {},
	".mypy_cache":   {},
	".ruff_cache":   {},
	".pytest_cache": {},
	"egg-info":      {},
}

// Index is a snapshot of the repository's files, keyed by slash-form
// paths relative to the root.
type Index struct {
	root  string
	files map[string]struct{}
	dirs  map[string][]string // relative dir -> sorted file names
}

// Build walks root and indexes every regular file that is not hidden,
// ignored, or inside a well-known generated directory.
func Build(root string) (*Index, error) {
	ix := &Index{
		root:  root,
		files: make(map[string]struct{}),
		dirs:  make(map[string][]string),
	}

	gi := loadGitignore(root)

	err := filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable entries
		}

		name := d.Name()

		if d.IsDir() {
			if p == root {
				return nil
			}
			if _, skip := skipDirs[name]; skip || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(name, ".") {
			return nil
		}
		if d.Type()&os.ModeSymlink != 0 {
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if gi != nil && gi.MatchesPath(rel) {
			return nil
		}

		ix.files[rel] = struct{}{}
		dir := path.Dir(rel)
		ix.dirs[dir] = append(ix.dirs[dir], name)
		return nil
	})
	if err != nil {
		return nil, err
	}

	for dir := range ix.dirs {
		sort.Strings(ix.dirs[dir])
	}

	return ix, nil
}

// Root returns the absolute repository root the index was built from.
func (ix *Index) Root() string {
	return ix.root
}

// Len returns the number of indexed files.
func (ix *Index) Len() int {
	return len(ix.files)
}

// Contains reports whether the slash-form relative path is an indexed
// file.
func (ix *Index) Contains(rel string) bool {
	_, ok := ix.files[rel]
	return ok
}

// FilesIn returns the sorted file names directly inside the slash-form
// relative directory ("." for the root).
func (ix *Index) FilesIn(relDir string) []string {
	return ix.dirs[relDir]
}

// Abs converts a slash-form relative path back to an absolute path
// under the root.
func (ix *Index) Abs(rel string) string {
	return filepath.Join(ix.root, filepath.FromSlash(rel))
}

func loadGitignore(root string) *ignore.GitIgnore {
	gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	return gi
}
