package lang

import (
	"regexp"
	"strings"

	"github.com/phobologic/depscope/internal/model"
)

func init() {
	Languages[model.LangJava] = &Language{
		Name:       model.LangJava,
		Extensions: []string{".java"},
		Extract:    javaExtract,
		ToPath:     javaToPath,
	}
}

var javaImportRe = regexp.MustCompile(`^\s*import\s+(?:static\s+)?([\w.]+(?:\.\*)?)\s*;`)

// javaExtract recognizes import declarations, including static and
// wildcard forms.
func javaExtract(src []byte) []Import {
	var imports []Import

	eachLine(src, func(line string, n int) {
		if m := javaImportRe.FindStringSubmatch(line); m != nil {
			imports = append(imports, Import{Specifier: m[1], Line: n})
		}
	})

	return imports
}

// javaToPath converts package.Class to package/Class. Wildcard imports
// resolve to the package directory.
func javaToPath(spec string) (string, SpecKind) {
	spec = strings.TrimSuffix(spec, ".*")
	return strings.ReplaceAll(spec, ".", "/"), SpecRoot
}
