package lang

import (
	"regexp"
	"strings"

	"github.com/phobologic/depscope/internal/model"
)

func init() {
	Languages[model.LangPython] = &Language{
		Name:       model.LangPython,
		Extensions: []string{".py"},
		EntryNames: []string{"__init__.py"},
		Extract:    pyExtract,
		ToPath:     pyToPath,
	}
}

var (
	pyImportRe  = regexp.MustCompile(`^\s*import\s+([\w.]+(?:\s*,\s*[\w.]+)*)`)
	pyFromRe    = regexp.MustCompile(`^\s*from\s+(\.*[\w.]*)\s+import\b`)
	pyDynamicRe = regexp.MustCompile(`importlib\.import_module\(\s*([^'")][^)]*)\)`)
)

// pyExtract recognizes "import a.b", comma-separated import lists,
// "from a.b import x", and relative "from .a import x" forms. A
// non-literal importlib.import_module argument is flagged dynamic.
func pyExtract(src []byte) []Import {
	var imports []Import

	eachLine(src, func(line string, n int) {
		if m := pyFromRe.FindStringSubmatch(line); m != nil {
			imports = append(imports, Import{Specifier: m[1], Line: n})
			return
		}
		if m := pyImportRe.FindStringSubmatch(line); m != nil {
			for _, mod := range strings.Split(m[1], ",") {
				mod = strings.TrimSpace(mod)
				if mod != "" {
					imports = append(imports, Import{Specifier: mod, Line: n})
				}
			}
			return
		}
		if m := pyDynamicRe.FindStringSubmatch(line); m != nil {
			imports = append(imports, Import{
				Specifier: strings.TrimSpace(m[1]),
				Line:      n,
				Dynamic:   true,
			})
		}
	})

	return imports
}

// pyToPath converts dotted module specifiers to slash paths. Leading
// dots mark a relative import: one dot is the importing file's
// package, each further dot climbs one package up.
func pyToPath(spec string) (string, SpecKind) {
	if !strings.HasPrefix(spec, ".") {
		return strings.ReplaceAll(spec, ".", "/"), SpecRoot
	}

	dots := 0
	for dots < len(spec) && spec[dots] == '.' {
		dots++
	}
	rest := strings.ReplaceAll(spec[dots:], ".", "/")

	prefix := strings.Repeat("../", dots-1)
	if rest == "" {
		if prefix == "" {
			return ".", SpecRelative
		}
		return strings.TrimSuffix(prefix, "/"), SpecRelative
	}
	return prefix + rest, SpecRelative
}
