package app

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

const EncodingUTF8 = "utf-8"

// encodings lists the accepted sheet file encodings by lower-case name
var encodings = map[string]encoding.Encoding{
	EncodingUTF8:   unicode.UTF8BOM,
	"utf8":         unicode.UTF8BOM,
	"latin1":       charmap.ISO8859_1,
	"iso-8859-1":   charmap.ISO8859_1,
	"windows-1252": charmap.Windows1252,
	"cp1252":       charmap.Windows1252,
}

func lookupEncoding(name string) (encoding.Encoding, error) {
	enc, ok := encodings[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
	return enc, nil
}

// decode converts raw sheet bytes to UTF-8 text. a UTF-8 byte order mark is
// dropped.
func decode(raw []byte, name string) (string, error) {
	enc, err := lookupEncoding(name)
	if err != nil {
		return "", err
	}
	out, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("failed to decode sheet as %s: %w", name, err)
	}
	return string(out), nil
}
