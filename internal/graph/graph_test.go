package graph

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/depscope/internal/model"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return root
}

func relPaths(g *model.DependencyGraph) []string {
	out := make([]string, 0, len(g.NodeOrder))
	for _, p := range g.NodeOrder {
		out = append(out, g.Nodes[p].Rel)
	}
	return out
}

func TestBuildFatalErrors(t *testing.T) {
	t.Parallel()

	_, err := Build(filepath.Join(t.TempDir(), "nope"), "main.py", Options{})
	assert.ErrorIs(t, err, ErrRepoRoot)

	root := writeTree(t, map[string]string{"main.py": ""})
	_, err = Build(root, "missing.py", Options{})
	assert.ErrorIs(t, err, ErrFocusFile)

	_, err = Build(root, "../outside.py", Options{})
	assert.ErrorIs(t, err, ErrFocusFile)
}

func TestBuildSimpleChain(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{
		"main.py":  "import lib.a\n",
		"lib/a.py": "import lib.b\n",
		"lib/b.py": "x = 1\n",
	})

	g, err := Build(root, "main.py", Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"main.py", "lib/a.py", "lib/b.py"}, relPaths(g))
	require.Len(t, g.Edges, 2)
	assert.False(t, g.Truncated)

	main := g.Node(g.Root)
	assert.Equal(t, model.LangPython, main.Language)
	assert.Equal(t, 0, main.Order)
	assert.Equal(t, 2, g.Nodes[g.NodeOrder[2]].Depth)
}

func TestBuildBFSOrderBeforeDepth(t *testing.T) {
	t.Parallel()

	// Both depth-1 files come before the depth-2 file, in specifier
	// order from the source.
	root := writeTree(t, map[string]string{
		"main.py": "import zz\nimport aa\n",
		"zz.py":   "import deep\n",
		"aa.py":   "",
		"deep.py": "",
	})

	g, err := Build(root, "main.py", Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"main.py", "zz.py", "aa.py", "deep.py"}, relPaths(g))
}

func TestBuildCycle(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{
		"a.py": "import b\n",
		"b.py": "import a\n",
	})

	g, err := Build(root, "a.py", Options{})
	require.NoError(t, err)

	// Both nodes exactly once, and exactly one cyclic edge.
	assert.Equal(t, []string{"a.py", "b.py"}, relPaths(g))
	require.Len(t, g.Edges, 2)

	cyclic := 0
	for _, e := range g.Edges {
		if e.Cyclic {
			cyclic++
			assert.Equal(t, filepath.Join(root, "b.py"), e.From)
		}
	}
	assert.Equal(t, 1, cyclic)
	assert.Equal(t, 1, g.Summarize().Cyclic)
}

func TestBuildSelfImport(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{"a.py": "import a\n"})

	g, err := Build(root, "a.py", Options{})
	require.NoError(t, err)
	require.Len(t, g.Edges, 1)
	assert.True(t, g.Edges[0].Cyclic)
}

func TestBuildUnresolvedImport(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{"main.py": "import does_not_exist\n"})

	g, err := Build(root, "main.py", Options{})
	require.NoError(t, err)

	// No node is created for the missing target.
	assert.Equal(t, []string{"main.py"}, relPaths(g))
	require.Len(t, g.Edges, 1)
	e := g.Edges[0]
	assert.Equal(t, model.ReasonNotFound, e.Reason)
	assert.Equal(t, "does_not_exist", e.Specifier)
	assert.Equal(t, 1, e.Line)
	assert.False(t, e.Resolved())
}

func TestBuildDynamicImport(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{
		"main.py": "import importlib\nm = importlib.import_module(name)\n",
	})

	g, err := Build(root, "main.py", Options{})
	require.NoError(t, err)

	var dynamic int
	for _, e := range g.Edges {
		if e.Reason == model.ReasonDynamic {
			dynamic++
			assert.Equal(t, "name", e.Specifier)
		}
	}
	assert.Equal(t, 1, dynamic)
}

func TestBuildTruncation(t *testing.T) {
	t.Parallel()

	// main imports 7 files; with a ceiling of 3 only two of them join
	// main as expanded nodes, the rest become placeholders.
	files := map[string]string{}
	mainSrc := ""
	for i := 0; i < 7; i++ {
		mainSrc += fmt.Sprintf("import dep%d\n", i)
		files[fmt.Sprintf("dep%d.py", i)] = ""
	}
	files["main.py"] = mainSrc

	root := writeTree(t, files)
	g, err := Build(root, "main.py", Options{MaxNodes: 3})
	require.NoError(t, err)

	sum := g.Summarize()
	assert.True(t, sum.Truncated)
	assert.Equal(t, 3, sum.Nodes)
	assert.Equal(t, 5, sum.Placeholders)
	assert.Len(t, g.Edges, 7) // every edge stays representable

	for _, p := range g.NodeOrder[3:] {
		assert.Equal(t, model.StatusTruncated, g.Nodes[p].Status)
	}
}

func TestBuildUnreadableNodeRecovered(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{
		"main.py":   "import lib.bin\nimport lib.ok\n",
		"lib/ok.py": "",
	})
	binPath := filepath.Join(root, "lib", "bin.py")
	require.NoError(t, os.MkdirAll(filepath.Dir(binPath), 0o755))
	require.NoError(t, os.WriteFile(binPath, []byte{0x7f, 'E', 'L', 'F', 0x00, 0x01}, 0o644))

	g, err := Build(root, "main.py", Options{})
	require.NoError(t, err)

	bin := g.Nodes[binPath]
	require.NotNil(t, bin)
	assert.Equal(t, model.StatusParseError, bin.Status)

	ok := g.Nodes[filepath.Join(root, "lib", "ok.py")]
	require.NotNil(t, ok)
	assert.Equal(t, model.StatusOK, ok.Status)
}

func TestBuildMaxFileSize(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{
		"main.py":   "import big\n",
		"big.py":    "import hidden\nx = '0123456789012345678901234567890123456789'\n",
		"hidden.py": "",
	})

	g, err := Build(root, "main.py", Options{MaxFileSize: 16})
	require.NoError(t, err)

	big := g.Nodes[filepath.Join(root, "big.py")]
	require.NotNil(t, big)
	assert.Equal(t, model.StatusUnreadable, big.Status)
	// hidden is never reached because big was not expanded.
	assert.Nil(t, g.Nodes[filepath.Join(root, "hidden.py")])
}

func TestBuildDeterministic(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{
		"main.py":  "import lib.a\nimport lib.b\nimport missing\n",
		"lib/a.py": "import lib.b\n",
		"lib/b.py": "import main\n",
	})

	g1, err := Build(root, "main.py", Options{Workers: 4})
	require.NoError(t, err)
	g2, err := Build(root, "main.py", Options{Workers: 4})
	require.NoError(t, err)

	assert.Equal(t, g1.NodeOrder, g2.NodeOrder)
	assert.Equal(t, g1.Edges, g2.Edges)
}

func TestBuildNoDuplicateNodes(t *testing.T) {
	t.Parallel()

	// b is imported twice via different specifier styles.
	root := writeTree(t, map[string]string{
		"main.py":         "import lib.b\nfrom lib import b\nimport lib.a\n",
		"lib/a.py":        "import lib.b\n",
		"lib/b.py":        "",
		"lib/__init__.py": "",
	})

	g, err := Build(root, "main.py", Options{})
	require.NoError(t, err)

	seen := map[string]int{}
	for _, p := range g.NodeOrder {
		seen[p]++
	}
	for p, n := range seen {
		assert.Equal(t, 1, n, p)
	}
}
