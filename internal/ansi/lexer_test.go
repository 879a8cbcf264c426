package ansi

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLex(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected []Block
	}{
		{
			name:     "plain text",
			input:    "hello",
			expected: []Block{{Kind: BlockText, Text: "hello"}},
		},
		{
			name:  "sgr between text",
			input: "a\x1b[1;31mb",
			expected: []Block{
				{Kind: BlockText, Text: "a"},
				{Kind: BlockSGR, Params: []uint8{1, 31}, Text: "\x1b[1;31m"},
				{Kind: BlockText, Text: "b"},
			},
		},
		{
			name:  "empty parameters read as reset",
			input: "\x1b[m",
			expected: []Block{
				{Kind: BlockSGR, Params: []uint8{0}, Text: "\x1b[m"},
			},
		},
		{
			name:  "empty fields read as zero",
			input: "\x1b[;1m",
			expected: []Block{
				{Kind: BlockSGR, Params: []uint8{0, 1}, Text: "\x1b[;1m"},
			},
		},
		{
			name:  "colon separated extended color",
			input: "\x1b[38:5:200m",
			expected: []Block{
				{Kind: BlockSGR, Params: []uint8{38, 5, 200}, Text: "\x1b[38:5:200m"},
			},
		},
		{
			name:  "cursor movement is other",
			input: "\x1b[2Jx",
			expected: []Block{
				{Kind: BlockOther, Text: "\x1b[2J"},
				{Kind: BlockText, Text: "x"},
			},
		},
		{
			name:  "private mode is other",
			input: "\x1b[?25l",
			expected: []Block{
				{Kind: BlockOther, Text: "\x1b[?25l"},
			},
		},
		{
			name:  "parameter overflow drops only that field",
			input: "\x1b[1;300;4m",
			expected: []Block{
				{Kind: BlockSGR, Params: []uint8{1, 4}, Text: "\x1b[1;300;4m"},
			},
		},
		{
			name:  "long overflowing field",
			input: "\x1b[99999999999999999999;3m",
			expected: []Block{
				{Kind: BlockSGR, Params: []uint8{3}, Text: "\x1b[99999999999999999999;3m"},
			},
		},
		{
			name:  "escape before a multi-byte rune keeps the rune",
			input: "\x1b\u00e9t\u00e9",
			expected: []Block{
				{Kind: BlockOther, Text: "\x1b"},
				{Kind: BlockText, Text: "\u00e9t\u00e9"},
			},
		},
		{
			name:  "osc title terminated by bel",
			input: "\x1b]0;title\x07text",
			expected: []Block{
				{Kind: BlockOther, Text: "\x1b]0;title\x07"},
				{Kind: BlockText, Text: "text"},
			},
		},
		{
			name:  "osc terminated by string terminator",
			input: "\x1b]8;;http://x\x1b\\link",
			expected: []Block{
				{Kind: BlockOther, Text: "\x1b]8;;http://x\x1b\\"},
				{Kind: BlockText, Text: "link"},
			},
		},
		{
			name:  "charset designation",
			input: "\x1b(Bok",
			expected: []Block{
				{Kind: BlockOther, Text: "\x1b(B"},
				{Kind: BlockText, Text: "ok"},
			},
		},
		{
			name:  "truncated csi at end of input",
			input: "x\x1b[38;5",
			expected: []Block{
				{Kind: BlockText, Text: "x"},
				{Kind: BlockOther, Text: "\x1b[38;5"},
			},
		},
		{
			name:  "csi broken by newline keeps the newline",
			input: "\x1b[1\nx",
			expected: []Block{
				{Kind: BlockOther, Text: "\x1b[1"},
				{Kind: BlockText, Text: "\nx"},
			},
		},
		{
			name:     "lone escape",
			input:    "\x1b",
			expected: []Block{{Kind: BlockOther, Text: "\x1b"}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, slices.Collect(Lex(tc.input)))
		})
	}
}

func TestLexStopsEarly(t *testing.T) {
	var seen int
	for range Lex("a\x1b[1mb\x1b[0mc") {
		seen++
		if seen == 2 {
			break
		}
	}
	assert.Equal(t, 2, seen)
}
