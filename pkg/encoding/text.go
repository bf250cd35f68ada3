// Package encoding normalizes the text encodings room files arrive in.
package encoding

import (
	"bytes"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ToUTF8 returns data as UTF-8 without a byte order mark.
// UTF-16 files (either byte order) are recognized by their BOM; anything
// else is assumed to be UTF-8 already. If conversion fails the input is
// returned unchanged.
func ToUTF8(data []byte) []byte {
	if !hasUTF16BOM(data) {
		return bytes.TrimPrefix(data, utf8BOM)
	}

	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	result, _, err := transform.Bytes(decoder, data)
	if err != nil {
		return data
	}
	return result
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func hasUTF16BOM(data []byte) bool {
	if len(data) < 2 {
		return false
	}
	return (data[0] == 0xFF && data[1] == 0xFE) || (data[0] == 0xFE && data[1] == 0xFF)
}
