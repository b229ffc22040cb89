package codec

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

const DefaultTextEncoding = "utf-8"

// LookupEncoding resolves an IANA/WHATWG encoding label such as "utf-8",
// "latin1" or "shift_jis". An empty name selects UTF-8.
func LookupEncoding(name string) (encoding.Encoding, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return unicode.UTF8, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unknown text encoding %q: %w", name, err)
	}
	return enc, nil
}

var errInvalidUTF8 = errors.New("invalid utf-8")

func isUTF8(enc encoding.Encoding) bool {
	if enc == unicode.UTF8 {
		return true
	}
	name, err := htmlindex.Name(enc)
	return err == nil && name == "utf-8"
}

// EncodeText rejects strings that are not valid UTF-8 instead of
// substituting U+FFFD.
func EncodeText(s, encodingName string) ([]byte, error) {
	enc, err := LookupEncoding(encodingName)
	if err != nil {
		return nil, err
	}
	if !utf8.ValidString(s) {
		return nil, fmt.Errorf("encode text as %s: %w", encodingName, errInvalidUTF8)
	}
	out, err := enc.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("encode text as %s: %w", encodingName, err)
	}
	return out, nil
}

// DecodeText fails on bytes that are not valid UTF-8 when the encoding is
// UTF-8; the x/text decoder would replace them silently.
func DecodeText(data []byte, encodingName string) (string, error) {
	enc, err := LookupEncoding(encodingName)
	if err != nil {
		return "", err
	}
	if isUTF8(enc) {
		if !utf8.Valid(data) {
			return "", fmt.Errorf("decode text as %s: %w", encodingName, errInvalidUTF8)
		}
		return string(data), nil
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decode text as %s: %w", encodingName, err)
	}
	return string(out), nil
}
