package ansi

import (
	"iter"
	"strings"
)

const (
	ESC = 0x1b // ESC is the escape control character code
	BEL = 0x07 // BEL terminates OSC strings
)

// BlockKind separates the pieces of a lexed input.
type BlockKind uint8

const (
	BlockText  BlockKind = iota // literal text
	BlockSGR                    // CSI ... m, SetGraphicsMode
	BlockOther                  // any other escape, including truncated ones
)

// Block is one element of a lexed input: either literal text or an escape.
type Block struct {
	Kind   BlockKind
	Params []uint8 // BlockSGR only
	Text   string  // BlockText text, or the raw escape for the others
}

// Lex splits input into alternating text and escape blocks.
//
// Only CSI sequences ending in 'm' without private markers or
// intermediate bytes become BlockSGR. Empty parameter fields read as 0, so
// "ESC[m" is a reset. A parameter above 255 is dropped from Params and the
// rest of the sequence is kept. OSC strings, two byte escapes, charset designations and
// truncated sequences are all BlockOther.
func Lex(input string) iter.Seq[Block] {
	return func(yield func(Block) bool) {
		for i := 0; i < len(input); {
			if input[i] != ESC {
				end := strings.IndexByte(input[i:], ESC)
				if end < 0 {
					end = len(input)
				} else {
					end += i
				}
				if !yield(Block{Kind: BlockText, Text: input[i:end]}) {
					return
				}
				i = end
				continue
			}
			block, n := lexEscape(input[i:])
			if !yield(block) {
				return
			}
			i += n
		}
	}
}

// lexEscape reads one escape sequence from the start of s, which begins
// with ESC, and returns it with the number of bytes it spans.
func lexEscape(s string) (Block, int) {
	if len(s) < 2 {
		return Block{Kind: BlockOther, Text: s}, len(s)
	}
	switch s[1] {
	case '[':
		return lexCSI(s)
	case ']', 'P', '_', '^', 'X':
		return lexString(s)
	}
	if s[1] < 0x20 || s[1] >= 0x80 {
		// lone ESC followed by a control byte or the start of a multi-byte
		// rune, which stays in the text
		return Block{Kind: BlockOther, Text: s[:1]}, 1
	}
	// ESC, any intermediates 0x20-0x2f, then one final byte.
	i := 1
	for i < len(s) && 0x20 <= s[i] && s[i] <= 0x2f {
		i++
	}
	if i < len(s) {
		i++
	}
	return Block{Kind: BlockOther, Text: s[:i]}, i
}

// lexCSI reads ESC [ params intermediates final.
func lexCSI(s string) (Block, int) {
	i := 2
	paramStart := i
	for i < len(s) && 0x30 <= s[i] && s[i] <= 0x3f {
		i++
	}
	paramEnd := i
	for i < len(s) && 0x20 <= s[i] && s[i] <= 0x2f {
		i++
	}
	if i >= len(s) || s[i] < 0x40 || s[i] > 0x7e {
		// truncated or broken by a control byte: swallow what we read
		return Block{Kind: BlockOther, Text: s[:i]}, i
	}
	final := s[i]
	i++

	raw := s[:i]
	if final != 'm' || paramEnd != i-1 {
		return Block{Kind: BlockOther, Text: raw}, i
	}
	params, ok := parseParams(s[paramStart:paramEnd])
	if !ok {
		return Block{Kind: BlockOther, Text: raw}, i
	}
	return Block{Kind: BlockSGR, Params: params, Text: raw}, i
}

// lexString reads an OSC, DCS, APC, PM or SOS string up to BEL or ST.
func lexString(s string) (Block, int) {
	for i := 2; i < len(s); i++ {
		if s[i] == BEL {
			return Block{Kind: BlockOther, Text: s[:i+1]}, i + 1
		}
		if s[i] == ESC && i+1 < len(s) && s[i+1] == '\\' {
			return Block{Kind: BlockOther, Text: s[:i+2]}, i + 2
		}
	}
	return Block{Kind: BlockOther, Text: s}, len(s)
}

// parseParams parses ';' or ':' separated decimal fields. Fields above 255
// are skipped.
func parseParams(field string) ([]uint8, bool) {
	if field == "" {
		return []uint8{Reset}, true
	}
	params := make([]uint8, 0, 5)
	val, overflow := 0, false
	for i := 0; i <= len(field); i++ {
		if i == len(field) || field[i] == ';' || field[i] == ':' {
			if !overflow {
				params = append(params, uint8(val))
			}
			val, overflow = 0, false
			continue
		}
		c := field[i]
		if c < '0' || c > '9' {
			// private markers such as '?' or '<'
			return nil, false
		}
		if overflow {
			continue
		}
		val = val*10 + int(c-'0') //nolint:mnd
		overflow = val > 255
	}
	return params, true
}
