package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/depscope/internal/lang"
	"github.com/phobologic/depscope/internal/model"
)

func TestImportsUnsupportedLanguage(t *testing.T) {
	t.Parallel()

	imports, err := Imports(nil, []byte("anything"))
	require.NoError(t, err)
	assert.Empty(t, imports)
}

func TestImportsBinaryContent(t *testing.T) {
	t.Parallel()

	py := lang.Get(model.LangPython)
	_, err := Imports(py, []byte{0x89, 'P', 'N', 'G', 0x00, 0x1a})
	assert.ErrorIs(t, err, ErrBinary)
}

func TestImportsText(t *testing.T) {
	t.Parallel()

	py := lang.Get(model.LangPython)
	imports, err := Imports(py, []byte("import os\n"))
	require.NoError(t, err)
	require.Len(t, imports, 1)
	assert.Equal(t, "os", imports[0].Specifier)
}

func TestIsBinarySniffWindow(t *testing.T) {
	t.Parallel()

	assert.False(t, IsBinary([]byte("plain text")))

	// NUL past the sniff window is ignored.
	big := make([]byte, binarySniffLen+10)
	for i := range big {
		big[i] = 'a'
	}
	big[len(big)-1] = 0
	assert.False(t, IsBinary(big))

	big[100] = 0
	assert.True(t, IsBinary(big))
}
