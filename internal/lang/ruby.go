package lang

import (
	"regexp"
	"strings"

	"github.com/phobologic/depscope/internal/model"
)

func init() {
	Languages[model.LangRuby] = &Language{
		Name:       model.LangRuby,
		Extensions: []string{".rb"},
		Extract:    rbExtract,
		ToPath:     rbToPath,
	}
}

var (
	rbRequireRelRe = regexp.MustCompile(`^\s*require_relative\s+['"]([^'"]+)['"]`)
	rbRequireRe    = regexp.MustCompile(`^\s*require\s+['"]([^'"]+)['"]`)
)

// rbExtract recognizes require and require_relative with literal
// arguments. require_relative keeps a marker prefix so ToPath can
// distinguish the two forms.
func rbExtract(src []byte) []Import {
	var imports []Import

	eachLine(src, func(line string, n int) {
		if m := rbRequireRelRe.FindStringSubmatch(line); m != nil {
			spec := m[1]
			if !strings.HasPrefix(spec, ".") {
				spec = "./" + spec
			}
			imports = append(imports, Import{Specifier: spec, Line: n})
			return
		}
		if m := rbRequireRe.FindStringSubmatch(line); m != nil {
			imports = append(imports, Import{Specifier: m[1], Line: n})
		}
	})

	return imports
}

func rbToPath(spec string) (string, SpecKind) {
	if strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../") {
		return spec, SpecRelative
	}
	return spec, SpecRoot
}
