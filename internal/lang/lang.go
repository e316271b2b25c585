// Package lang provides a language registry mapping file extensions to
// import extractors and resolution conventions.
package lang

import (
	"bufio"
	"bytes"
	"path/filepath"
	"strings"
	"sync"

	"github.com/src-d/enry/v2"

	"github.com/phobologic/depscope/internal/model"
)

// Import is one raw import specifier extracted from source text.
type Import struct {
	Specifier string
	Line      int // 1-based
	// Dynamic marks a suspicious computed specifier (non-literal
	// argument to a require/import call). Recorded, never resolved.
	Dynamic bool
}

// SpecKind tells the resolver which bases a specifier resolves against.
type SpecKind int

const (
	// SpecRelative resolves against the importing file's directory.
	SpecRelative SpecKind = iota
	// SpecRoot resolves against the repository root and source roots.
	SpecRoot
	// SpecBoth tries the importing file's directory first, then the
	// roots (C include semantics).
	SpecBoth
)

// Language holds extraction and resolution conventions for one
// supported language.
type Language struct {
	Name       model.Language
	Extensions []string

	// EntryNames are conventional entry files tried when a specifier
	// resolves to a directory (e.g. __init__.py, index.js).
	EntryNames []string

	// EntryByExt means a directory import resolves to the lexically
	// first file in the directory carrying one of Extensions (Go
	// packages have no index-file convention).
	EntryByExt bool

	// Extract returns the ordered raw import specifiers in src.
	Extract func(src []byte) []Import

	// ToPath converts a raw specifier into a slash path and reports
	// which bases it resolves against.
	ToPath func(spec string) (string, SpecKind)
}

// Languages maps language tags to their configuration.
// Populated by init() functions in per-language files.
var Languages = map[model.Language]*Language{}

// ambiguousExts maps extensions claimed by more than one language;
// content decides via enry.
var ambiguousExts = map[string][]model.Language{
	".h": {model.LangC, model.LangCPP},
}

// extensionMap is built lazily after all init() functions have run.
var (
	extensionMap  map[string]model.Language
	extensionOnce sync.Once
)

func getExtensionMap() map[string]model.Language {
	extensionOnce.Do(func() {
		extensionMap = make(map[string]model.Language)
		for tag, l := range Languages {
			for _, ext := range l.Extensions {
				if _, amb := ambiguousExts[ext]; amb {
					continue
				}
				extensionMap[ext] = tag
			}
		}
	})
	return extensionMap
}

// enryToTag maps enry's language names onto depscope tags.
var enryToTag = map[string]model.Language{
	"Go":         model.LangGo,
	"Python":     model.LangPython,
	"JavaScript": model.LangJavaScript,
	"TypeScript": model.LangTypeScript,
	"Ruby":       model.LangRuby,
	"Java":       model.LangJava,
	"C":          model.LangC,
	"C++":        model.LangCPP,
}

// ForExtension returns the language tag for an unambiguous file
// extension, or LangUnknown.
func ForExtension(ext string) model.Language {
	if tag, ok := getExtensionMap()[strings.ToLower(ext)]; ok {
		return tag
	}
	return model.LangUnknown
}

// Detect classifies a file. The extension decides when it is
// unambiguous; otherwise enry breaks the tie from the content (".h"
// headers, extensionless well-known filenames).
func Detect(path string, content []byte) model.Language {
	ext := strings.ToLower(filepath.Ext(path))

	if candidates, ok := ambiguousExts[ext]; ok {
		if tag, ok := enryToTag[enry.GetLanguage(filepath.Base(path), content)]; ok {
			for _, c := range candidates {
				if c == tag {
					return tag
				}
			}
		}
		return candidates[0]
	}

	if tag := ForExtension(ext); tag != model.LangUnknown {
		return tag
	}

	if ext == "" {
		if tag, ok := enryToTag[enry.GetLanguage(filepath.Base(path), content)]; ok {
			return tag
		}
	}

	return model.LangUnknown
}

// Get returns the configuration for a language tag, or nil for
// unknown/unsupported tags.
func Get(tag model.Language) *Language {
	return Languages[tag]
}

// eachLine calls fn for every line of src with a 1-based line number.
func eachLine(src []byte, fn func(line string, n int)) {
	sc := bufio.NewScanner(bytes.NewReader(src))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	n := 0
	for sc.Scan() {
		n++
		fn(sc.Text(), n)
	}
}
