package core

// sanitize.go cleans uploaded text before it is split into rows.
//
// Spreadsheet tools on Windows prepend a UTF-8 BOM and legacy encodings leak
// invalid byte sequences into exports. Imports are small and held in memory,
// so cleaning happens on the whole buffer.

import (
	"bytes"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// sanitizeText strips a leading BOM, replaces invalid UTF-8 with U+FFFD and
// removes NUL bytes.
func sanitizeText(data []byte) string {
	data = bytes.TrimPrefix(data, utf8BOM)
	if isAllASCII(data) {
		if bytes.IndexByte(data, 0) < 0 {
			return string(data)
		}
		return string(bytes.ReplaceAll(data, []byte{0}, nil))
	}
	if !utf8.Valid(data) {
		data = bytes.ToValidUTF8(data, []byte(string(utf8.RuneError)))
	}
	return string(bytes.ReplaceAll(data, []byte{0}, nil))
}

// isAllASCII is the fast path: most lead sheets are plain ASCII.
func isAllASCII(data []byte) bool {
	for _, b := range data {
		if b >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
