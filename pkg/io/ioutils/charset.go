package ioutils

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

// DefaultFallbacks are tried when a file is not valid in its primary
// charset.
var DefaultFallbacks = []string{"latin-1", "windows-1252"}

var utf8BOM = []byte{0xef, 0xbb, 0xbf}

// Lookup resolves a charset label. latin-1 is true ISO 8859-1; everything
// else goes through the WHATWG label index.
func Lookup(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return unicode.UTF8, nil
	case "latin-1", "latin1", "iso-8859-1", "iso8859-1":
		return charmap.ISO8859_1, nil
	}
	return htmlindex.Get(name)
}

// Decode converts raw into UTF-8 using primary, then each fallback in
// order. It returns the text and the charset that worked.
func Decode(raw []byte, primary string, fallbacks []string) ([]byte, string, error) {
	if primary == "" {
		primary = "utf-8"
	}
	var errs []string
	for _, name := range append([]string{primary}, fallbacks...) {
		out, err := decodeAs(raw, name)
		if err == nil {
			return out, name, nil
		}
		errs = append(errs, fmt.Sprintf("%s: %v", name, err))
	}
	return nil, "", fmt.Errorf("no charset could decode input (%s)", strings.Join(errs, "; "))
}

func decodeAs(raw []byte, name string) ([]byte, error) {
	enc, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	if enc == unicode.UTF8 {
		raw = bytes.TrimPrefix(raw, utf8BOM)
		if !utf8.Valid(raw) {
			return nil, fmt.Errorf("invalid utf-8 sequence")
		}
		return raw, nil
	}
	out, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(out) {
		return nil, fmt.Errorf("decoded text is not valid utf-8")
	}
	return out, nil
}

// Encode converts UTF-8 text into the named charset for writing.
func Encode(text []byte, name string) ([]byte, error) {
	enc, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	if enc == unicode.UTF8 {
		return text, nil
	}
	return enc.NewEncoder().Bytes(text)
}
