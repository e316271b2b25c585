package lang

import (
	"regexp"
	"strings"

	"github.com/phobologic/depscope/internal/model"
)

func init() {
	Languages[model.LangGo] = &Language{
		Name:       model.LangGo,
		Extensions: []string{".go"},
		EntryByExt: true,
		Extract:    goExtract,
		ToPath:     goToPath,
	}
}

var (
	goSingleImportRe = regexp.MustCompile(`^\s*import\s+(?:[\w.]+\s+)?"([^"]+)"`)
	goBlockOpenRe    = regexp.MustCompile(`^\s*import\s*\(`)
	goBlockEntryRe   = regexp.MustCompile(`^\s*(?:[\w.]+\s+)?"([^"]+)"`)
)

// goExtract recognizes single-line imports and import blocks. Blocks
// are tracked with a small line-level state machine rather than a
// parse.
func goExtract(src []byte) []Import {
	var imports []Import
	inBlock := false

	eachLine(src, func(line string, n int) {
		if inBlock {
			if strings.Contains(line, ")") {
				inBlock = false
			}
			if m := goBlockEntryRe.FindStringSubmatch(line); m != nil {
				imports = append(imports, Import{Specifier: m[1], Line: n})
			}
			return
		}
		if m := goSingleImportRe.FindStringSubmatch(line); m != nil {
			imports = append(imports, Import{Specifier: m[1], Line: n})
			return
		}
		if goBlockOpenRe.MatchString(line) {
			inBlock = true
		}
	})

	return imports
}

func goToPath(spec string) (string, SpecKind) {
	if strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../") || spec == "." || spec == ".." {
		return spec, SpecRelative
	}
	return spec, SpecRoot
}
