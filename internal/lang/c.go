package lang

import (
	"regexp"

	"github.com/phobologic/depscope/internal/model"
)

func init() {
	Languages[model.LangC] = &Language{
		Name:       model.LangC,
		Extensions: []string{".c", ".h"},
		Extract:    cExtract,
		ToPath:     cToPath,
	}
	Languages[model.LangCPP] = &Language{
		Name:       model.LangCPP,
		Extensions: []string{".cpp", ".cc", ".cxx", ".hpp", ".hh", ".h"},
		Extract:    cExtract,
		ToPath:     cToPath,
	}
}

var cIncludeRe = regexp.MustCompile(`^\s*#\s*include\s+["<]([^">]+)[">]`)

// cExtract recognizes #include directives in both quote and bracket
// forms. System headers resolve like project headers and simply stay
// unresolved when absent from the repository.
func cExtract(src []byte) []Import {
	var imports []Import

	eachLine(src, func(line string, n int) {
		if m := cIncludeRe.FindStringSubmatch(line); m != nil {
			imports = append(imports, Import{Specifier: m[1], Line: n})
		}
	})

	return imports
}

// cToPath keeps the include path as written. Includes resolve against
// the including file's directory first, then the source roots.
func cToPath(spec string) (string, SpecKind) {
	return spec, SpecBoth
}
