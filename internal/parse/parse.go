// Package parse extracts raw import specifiers from source files.
package parse

import (
	"bytes"
	"errors"

	"github.com/phobologic/depscope/internal/lang"
)

// ErrBinary is returned when content cannot be treated as source text.
var ErrBinary = errors.New("binary content")

// binarySniffLen bounds how much of a file is inspected for binary
// content, mirroring git's heuristic.
const binarySniffLen = 8000

// IsBinary reports whether src looks like binary data (NUL byte within
// the sniff window).
func IsBinary(src []byte) bool {
	n := len(src)
	if n > binarySniffLen {
		n = binarySniffLen
	}
	return bytes.IndexByte(src[:n], 0) >= 0
}

// Imports runs the language's extractor over src. A nil language (an
// unsupported file) yields no imports; binary content is an error so
// the caller can mark the node and keep going.
func Imports(l *lang.Language, src []byte) ([]lang.Import, error) {
	if l == nil {
		return nil, nil
	}
	if IsBinary(src) {
		return nil, ErrBinary
	}
	return l.Extract(src), nil
}
