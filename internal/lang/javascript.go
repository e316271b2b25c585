package lang

import (
	"regexp"
	"strings"

	"github.com/phobologic/depscope/internal/model"
)

func init() {
	Languages[model.LangJavaScript] = &Language{
		Name:       model.LangJavaScript,
		Extensions: []string{".js", ".jsx", ".mjs", ".cjs"},
		EntryNames: []string{"index.js", "index.jsx", "index.mjs", "index.cjs"},
		Extract:    jsExtract,
		ToPath:     jsToPath,
	}
	Languages[model.LangTypeScript] = &Language{
		Name:       model.LangTypeScript,
		Extensions: []string{".ts", ".tsx"},
		EntryNames: []string{"index.ts", "index.tsx"},
		Extract:    jsExtract,
		ToPath:     jsToPath,
	}
}

var (
	jsImportFromRe = regexp.MustCompile(`(?:^|\s)import\s+[^'"]*?\bfrom\s+['"]([^'"]+)['"]`)
	jsImportBareRe = regexp.MustCompile(`^\s*import\s+['"]([^'"]+)['"]`)
	jsExportFromRe = regexp.MustCompile(`(?:^|\s)export\s+[^'"]*?\bfrom\s+['"]([^'"]+)['"]`)
	jsRequireRe    = regexp.MustCompile(`\brequire\s*\(\s*['"]([^'"]+)['"]\s*\)`)
	jsImportCallRe = regexp.MustCompile(`\bimport\s*\(\s*['"]([^'"]+)['"]\s*\)`)
	jsDynamicRe    = regexp.MustCompile("(?:\\brequire|\\bimport)\\s*\\(\\s*([^'\")][^)]*)\\)")
)

// jsExtract recognizes ES module imports, re-exports, CommonJS
// require calls, and dynamic import() with a literal argument.
// Non-literal arguments (identifiers, template strings) are flagged
// dynamic.
func jsExtract(src []byte) []Import {
	var imports []Import

	eachLine(src, func(line string, n int) {
		matched := false
		for _, re := range []*regexp.Regexp{jsImportFromRe, jsImportBareRe, jsExportFromRe, jsRequireRe, jsImportCallRe} {
			for _, m := range re.FindAllStringSubmatch(line, -1) {
				imports = append(imports, Import{Specifier: m[1], Line: n})
				matched = true
			}
		}
		if matched {
			return
		}
		if m := jsDynamicRe.FindStringSubmatch(line); m != nil {
			imports = append(imports, Import{
				Specifier: strings.TrimSpace(m[1]),
				Line:      n,
				Dynamic:   true,
			})
		}
	})

	return imports
}

func jsToPath(spec string) (string, SpecKind) {
	if strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../") || spec == "." || spec == ".." {
		return spec, SpecRelative
	}
	// Bare specifiers are package imports (node_modules); they resolve
	// against source roots only and usually stay unresolved.
	return spec, SpecRoot
}
