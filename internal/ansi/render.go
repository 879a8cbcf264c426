// Package ansi renders terminal output containing ANSI SGR escape
// sequences as static, escaped HTML.
//
// Only Select Graphic Rendition is interpreted: bold, italic, underline,
// strikethrough and foreground/background colors in their 3-bit, 8-bit and
// 24-bit forms. Every other escape is lexed and dropped. Colors are emitted
// as references to stylesheet variables (--color-{name} and
// --terminal-color-{n}) or literal rgb() values, so the page supplies the
// palette.
package ansi

import (
	"errors"
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

const (
	openContainer  = `<pre class="ansi_output"><code>`
	closeContainer = `</code></pre>`
)

var (
	ErrInvalidUTF8 = errors.New("input is not valid UTF-8")
	ErrCharset     = errors.New("unsupported charset")
)

// Charset names the byte encoding of an ANSI output file.
type Charset string

const (
	CharsetUTF8   Charset = "utf-8"      // default; invalid bytes are an error
	CharsetCP437  Charset = "cp437"      // IBM Code Page 437, DOS era output
	CharsetLatin1 Charset = "iso-8859-1" // Latin 1, Amiga era output
)

// ParseCharset maps a configuration value to a Charset. Empty means UTF-8.
func ParseCharset(name string) (Charset, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return CharsetUTF8, nil
	case "cp437", "ibm437", "codepage437":
		return CharsetCP437, nil
	case "iso-8859-1", "latin1", "latin-1":
		return CharsetLatin1, nil
	}
	return "", fmt.Errorf("%w: %q", ErrCharset, name)
}

// Decode converts raw file bytes in the given charset to a UTF-8 string.
func Decode(b []byte, cs Charset) (string, error) {
	switch cs {
	case "", CharsetUTF8:
		if !utf8.Valid(b) {
			return "", ErrInvalidUTF8
		}
		return string(b), nil
	case CharsetCP437:
		return decodeWith(charmap.CodePage437, b)
	case CharsetLatin1:
		return decodeWith(charmap.ISO8859_1, b)
	}
	return "", fmt.Errorf("%w: %q", ErrCharset, cs)
}

func decodeWith(cm *charmap.Charmap, b []byte) (string, error) {
	out, err := cm.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", cm, err)
	}
	return string(out), nil
}

// Render converts input to an HTML fragment wrapped in
// <pre class="ansi_output"><code>. It never fails: unknown escapes are
// dropped and malformed SGR parameters are skipped.
//
// Style carries across escapes and only a reset parameter clears it, so
// several escapes in a row without text between them accumulate.
func Render(input string) string {
	var b strings.Builder
	b.Grow(len(input) + len(openContainer) + len(closeContainer))
	b.WriteString(openContainer)

	var state GraphicsModeState
	for block := range Lex(input) {
		switch block.Kind {
		case BlockSGR:
			state = state.Scan(block.Params)
		case BlockText:
			open, close := state.Tags()
			b.WriteString(open)
			b.WriteString(html.EscapeString(block.Text))
			b.WriteString(close)
		}
	}

	b.WriteString(closeContainer)
	return b.String()
}

// RenderBytes decodes b from cs and renders it.
func RenderBytes(b []byte, cs Charset) (string, error) {
	s, err := Decode(b, cs)
	if err != nil {
		return "", err
	}
	return Render(s), nil
}
