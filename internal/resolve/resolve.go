// Package resolve maps raw import specifiers to repository files.
package resolve

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/phobologic/depscope/internal/discover"
	"github.com/phobologic/depscope/internal/lang"
	"github.com/phobologic/depscope/internal/model"
)

// Resolution is the outcome of resolving one specifier. Path is the
// chosen candidate (slash-form, repo-relative), empty when nothing
// matched. When several distinct candidates exist the first in
// priority order wins and Reason records the ambiguity.
type Resolution struct {
	Path       string
	Reason     model.EdgeReason
	Candidates []string // every existing candidate, priority order
}

// Resolver resolves specifiers against a repository file index.
type Resolver struct {
	index       *discover.Index
	sourceRoots []string // slash-form relative dirs; "." is always first
}

// New creates a resolver. sourceRoots are extra root-like directories
// (e.g. "src", "lib") tried after the repository root for package-style
// specifiers.
func New(index *discover.Index, sourceRoots []string) *Resolver {
	roots := []string{"."}
	for _, sr := range sourceRoots {
		sr = path.Clean(strings.TrimPrefix(filepath.ToSlash(sr), "./"))
		if sr != "" && sr != "." {
			roots = append(roots, sr)
		}
	}
	return &Resolver{index: index, sourceRoots: roots}
}

// Resolve applies the resolution strategy for one raw specifier from
// the given importing file (slash-form, repo-relative). Strategy:
// relative specifiers resolve against the importer's directory,
// package-style ones against the source roots; per base the priority
// is exact path, path + conventional extension, directory entry file.
func (r *Resolver) Resolve(spec string, l *lang.Language, importerRel string) Resolution {
	p, kind := l.ToPath(spec)

	var bases []string
	switch kind {
	case lang.SpecRelative:
		bases = []string{path.Dir(importerRel)}
	case lang.SpecRoot:
		bases = r.sourceRoots
	case lang.SpecBoth:
		bases = append([]string{path.Dir(importerRel)}, r.sourceRoots...)
	}

	var existing []string
	seen := make(map[string]struct{})
	add := func(rel string) {
		if _, dup := seen[rel]; dup {
			return
		}
		seen[rel] = struct{}{}
		existing = append(existing, rel)
	}

	for _, base := range bases {
		target := path.Join(base, p)
		if target == ".." || strings.HasPrefix(target, "../") {
			continue // escapes the repository
		}
		for _, cand := range r.candidates(target, l) {
			add(cand)
		}
	}

	res := Resolution{Candidates: existing}
	switch len(existing) {
	case 0:
		res.Reason = model.ReasonNotFound
	case 1:
		res.Path = existing[0]
	default:
		res.Path = existing[0]
		res.Reason = model.ReasonAmbiguous
	}
	return res
}

// candidates returns the existing files matching target, in priority
// order: exact, extension-elided, conventional entry file, directory
// entry by extension.
func (r *Resolver) candidates(target string, l *lang.Language) []string {
	var out []string

	if r.index.Contains(target) {
		out = append(out, target)
	}

	for _, ext := range l.Extensions {
		if cand := target + ext; r.index.Contains(cand) {
			out = append(out, cand)
		}
	}

	for _, entry := range l.EntryNames {
		if cand := path.Join(target, entry); r.index.Contains(cand) {
			out = append(out, cand)
		}
	}

	if l.EntryByExt {
		for _, name := range r.index.FilesIn(target) {
			if hasExt(name, l.Extensions) {
				out = append(out, path.Join(target, name))
				break // names are sorted; first match is the entry
			}
		}
	}

	return out
}

func hasExt(name string, exts []string) bool {
	for _, ext := range exts {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}
