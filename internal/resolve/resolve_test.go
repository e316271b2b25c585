package resolve

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/depscope/internal/discover"
	"github.com/phobologic/depscope/internal/lang"
	"github.com/phobologic/depscope/internal/model"
)

func buildIndex(t *testing.T, files map[string]string) *discover.Index {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	ix, err := discover.Build(root)
	require.NoError(t, err)
	return ix
}

func TestResolveRelative(t *testing.T) {
	t.Parallel()

	ix := buildIndex(t, map[string]string{
		"src/app.js":     "",
		"src/lib/api.js": "",
	})
	r := New(ix, nil)
	js := lang.Get(model.LangJavaScript)

	res := r.Resolve("./lib/api", js, "src/app.js")
	assert.Equal(t, "src/lib/api.js", res.Path)
	assert.Equal(t, model.ReasonNone, res.Reason)
}

func TestResolvePackageStyle(t *testing.T) {
	t.Parallel()

	ix := buildIndex(t, map[string]string{
		"main.py":         "",
		"lib/a.py":        "",
		"pkg/__init__.py": "",
	})
	r := New(ix, nil)
	py := lang.Get(model.LangPython)

	res := r.Resolve("lib.a", py, "main.py")
	assert.Equal(t, "lib/a.py", res.Path)

	res = r.Resolve("pkg", py, "main.py")
	assert.Equal(t, "pkg/__init__.py", res.Path)
}

func TestResolveNotFound(t *testing.T) {
	t.Parallel()

	ix := buildIndex(t, map[string]string{"main.py": ""})
	r := New(ix, nil)
	py := lang.Get(model.LangPython)

	res := r.Resolve("does_not_exist", py, "main.py")
	assert.Empty(t, res.Path)
	assert.Equal(t, model.ReasonNotFound, res.Reason)
	assert.Empty(t, res.Candidates)
}

func TestResolvePrecedenceFileOverDirectory(t *testing.T) {
	t.Parallel()

	// Both util.py and util/__init__.py exist; the exact-file form wins
	// and the edge records the ambiguity.
	ix := buildIndex(t, map[string]string{
		"main.py":          "",
		"util.py":          "",
		"util/__init__.py": "",
	})
	r := New(ix, nil)
	py := lang.Get(model.LangPython)

	res := r.Resolve("util", py, "main.py")
	assert.Equal(t, "util.py", res.Path)
	assert.Equal(t, model.ReasonAmbiguous, res.Reason)
	assert.Equal(t, []string{"util.py", "util/__init__.py"}, res.Candidates)
}

func TestResolveSourceRoots(t *testing.T) {
	t.Parallel()

	ix := buildIndex(t, map[string]string{
		"app/main.py":   "",
		"src/core/x.py": "",
	})
	r := New(ix, []string{"src"})
	py := lang.Get(model.LangPython)

	res := r.Resolve("core.x", py, "app/main.py")
	assert.Equal(t, "src/core/x.py", res.Path)
}

func TestResolveRelativeEscapeIsNotFound(t *testing.T) {
	t.Parallel()

	ix := buildIndex(t, map[string]string{"main.py": ""})
	r := New(ix, nil)
	py := lang.Get(model.LangPython)

	res := r.Resolve("...outside", py, "main.py")
	assert.Empty(t, res.Path)
	assert.Equal(t, model.ReasonNotFound, res.Reason)
}

func TestResolveGoDirectoryEntry(t *testing.T) {
	t.Parallel()

	ix := buildIndex(t, map[string]string{
		"cmd/main.go":        "",
		"internal/util/b.go": "",
		"internal/util/a.go": "",
	})
	r := New(ix, nil)
	goLang := lang.Get(model.LangGo)

	// Directory import resolves to the lexically first Go file.
	res := r.Resolve("internal/util", goLang, "cmd/main.go")
	assert.Equal(t, "internal/util/a.go", res.Path)
}

func TestResolveCIncludeImporterDirFirst(t *testing.T) {
	t.Parallel()

	ix := buildIndex(t, map[string]string{
		"src/main.c":  "",
		"src/util.h":  "",
		"util.h":      "",
		"include/x.h": "",
	})
	r := New(ix, []string{"include"})
	c := lang.Get(model.LangC)

	// Quote include prefers the including file's directory; the root
	// copy makes it ambiguous.
	res := r.Resolve("util.h", c, "src/main.c")
	assert.Equal(t, "src/util.h", res.Path)
	assert.Equal(t, model.ReasonAmbiguous, res.Reason)

	res = r.Resolve("x.h", c, "src/main.c")
	assert.Equal(t, "include/x.h", res.Path)
	assert.Equal(t, model.ReasonNone, res.Reason)
}

func TestResolveJSIndexEntry(t *testing.T) {
	t.Parallel()

	ix := buildIndex(t, map[string]string{
		"app.js":           "",
		"widgets/index.js": "",
	})
	r := New(ix, nil)
	js := lang.Get(model.LangJavaScript)

	res := r.Resolve("./widgets", js, "app.js")
	assert.Equal(t, "widgets/index.js", res.Path)
}
