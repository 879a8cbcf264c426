package ansi

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScanConsoleColors(t *testing.T) {
	var state GraphicsModeState
	for code := uint8(FG1st); code <= FGEnd; code++ {
		state = state.Scan([]uint8{code})
		assert.Equal(t, Console(code-FG1st), state.Color, "code %d", code)
	}
	for code := uint8(BG1st); code <= BGEnd; code++ {
		state = state.Scan([]uint8{code})
		assert.Equal(t, Console(code-BG1st), state.Background, "code %d", code)
	}
}

func TestScanExpandedColors(t *testing.T) {
	var state GraphicsModeState
	for n := 0; n <= 255; n++ {
		state = state.Scan([]uint8{SetFG, 5, uint8(n)})
		assert.Equal(t, Expanded(uint8(n)), state.Color)

		state = state.Scan([]uint8{SetBG, 5, uint8(n)})
		assert.Equal(t, Expanded(uint8(n)), state.Background)
	}
}

func TestScanTrueColors(t *testing.T) {
	testCases := [][3]uint8{
		{0, 0, 0},
		{255, 255, 255},
		{0, 175, 135},
		{215, 0, 0},
		{1, 2, 3},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("%v", tc), func(t *testing.T) {
			r, g, b := tc[0], tc[1], tc[2]
			state := GraphicsModeState{}.Scan([]uint8{SetFG, 2, r, g, b})
			assert.Equal(t, TrueColor(r, g, b), state.Color)
			assert.True(t, state.Background.IsReset())

			state = GraphicsModeState{}.Scan([]uint8{SetBG, 2, r, g, b})
			assert.Equal(t, TrueColor(r, g, b), state.Background)
			assert.True(t, state.Color.IsReset())
		})
	}
}

func TestScanStyling(t *testing.T) {
	state := GraphicsModeState{}.Scan([]uint8{Bold, Italic, Underline})
	assert.Equal(t, GraphicsModeState{Bold: true, Italic: true, Underline: true}, state)

	state = state.Scan([]uint8{Strikethrough})
	assert.True(t, state.Strikethrough)
	assert.True(t, state.Bold, "earlier attributes persist across escapes")

	state = state.Scan([]uint8{Reset})
	assert.True(t, state.IsDefault())
}

func TestScanReset(t *testing.T) {
	styled := GraphicsModeState{
		Bold:          true,
		Italic:        true,
		Underline:     true,
		Strikethrough: true,
		Color:         TrueColor(1, 2, 3),
		Background:    Expanded(9),
	}

	t.Run("reset clears everything", func(t *testing.T) {
		assert.Equal(t, GraphicsModeState{}, styled.Scan([]uint8{0}))
	})

	t.Run("double reset equals single reset", func(t *testing.T) {
		assert.Equal(t, styled.Scan([]uint8{0}), styled.Scan([]uint8{0, 0}))
	})

	t.Run("parameters after a reset still apply", func(t *testing.T) {
		state := styled.Scan([]uint8{0, 1, 31})
		assert.Equal(t, GraphicsModeState{Bold: true, Color: Console(1)}, state)
	})
}

func TestScanDefaultColorsAreIndependent(t *testing.T) {
	state := GraphicsModeState{Color: Console(1), Background: Console(2)}

	fg := state.Scan([]uint8{DefaultFG})
	assert.True(t, fg.Color.IsReset())
	assert.Equal(t, Console(2), fg.Background, "39 must not touch the background")

	bg := state.Scan([]uint8{DefaultBG})
	assert.True(t, bg.Background.IsReset())
	assert.Equal(t, Console(1), bg.Color, "49 must not touch the foreground")
}

func TestScanMalformed(t *testing.T) {
	testCases := []struct {
		name     string
		params   []uint8
		expected GraphicsModeState
	}{
		{
			name:     "unknown parameters are skipped",
			params:   []uint8{2, 5, 7, 1},
			expected: GraphicsModeState{Bold: true},
		},
		{
			name:     "dangling extended color",
			params:   []uint8{SetFG},
			expected: GraphicsModeState{},
		},
		{
			name:     "truncated 256 color falls through element by element",
			params:   []uint8{SetFG, 5},
			expected: GraphicsModeState{},
		},
		{
			name: "truncated true color falls through element by element",
			// 38 skipped, 2 skipped, 1 bold, 3 italic
			params:   []uint8{SetFG, 2, 1, 3},
			expected: GraphicsModeState{Bold: true, Italic: true},
		},
		{
			name:     "unknown color mode",
			params:   []uint8{SetBG, 7, 4},
			expected: GraphicsModeState{Underline: true},
		},
		{
			name:     "later parameters override earlier ones",
			params:   []uint8{31, 32, SetFG, 5, 100},
			expected: GraphicsModeState{Color: Expanded(100)},
		},
		{
			name:     "multi element form consumes its operands",
			params:   []uint8{SetFG, 5, 1},
			expected: GraphicsModeState{Color: Expanded(1)},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, GraphicsModeState{}.Scan(tc.params))
		})
	}
}

func TestScanDoesNotMutateInput(t *testing.T) {
	params := []uint8{SetFG, 2, 10, 20, 30, 1}
	before := append([]uint8(nil), params...)
	original := GraphicsModeState{Italic: true}

	_ = original.Scan(params)

	assert.Equal(t, before, params)
	assert.Equal(t, GraphicsModeState{Italic: true}, original)
}
